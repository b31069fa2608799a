package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	apphttp "findash/internal/http"
	"findash/internal/models"
	"findash/internal/services/chat"
	"findash/internal/services/session"
)

// ErrRateLimited is returned when a session posts messages too quickly
var ErrRateLimited = errors.New("too many messages, slow down")

var (
	store     *session.Store
	assistant *chat.Assistant
	log       *logrus.Logger

	limit    rate.Limit
	burst    int
	limiters *cache.Cache

	upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
)

// Initialize sets up the chat package. perSecond bounds how fast a single
// session may post messages.
func Initialize(st *session.Store, a *chat.Assistant, perSecond float64, l *logrus.Logger) {
	store = st
	assistant = a
	log = l

	if perSecond <= 0 {
		perSecond = 1
	}
	limit = rate.Limit(perSecond)
	burst = int(perSecond*3) + 1
	limiters = cache.New(30*time.Minute, 10*time.Minute)
}

// RegisterRoutes registers the chat routes
func RegisterRoutes(r chi.Router) {
	r.Get("/chat/prompts", handlePrompts)
	r.Get("/sessions/{id}/chat/messages", handleMessages)
	r.Post("/sessions/{id}/chat/messages", handlePost)
	r.Get("/sessions/{id}/chat/ws", handleWebSocket)
}

// PromptsResponse carries the greeting and quick questions
type PromptsResponse struct {
	Greeting string   `json:"greeting"`
	Prompts  []string `json:"prompts"`
}

// PostRequest is a user message
type PostRequest struct {
	Text string `json:"text"`
}

// PostResponse is the user's message and the assistant's reply
type PostResponse struct {
	Message models.ChatMessage `json:"message"`
	Reply   models.ChatMessage `json:"reply"`
}

// Frame is one WebSocket message in either direction
type Frame struct {
	Type    string              `json:"type"` // message, typing, error
	Text    string              `json:"text,omitempty"`
	Message *models.ChatMessage `json:"message,omitempty"`
	Error   string              `json:"error,omitempty"`
}

func handlePrompts(w http.ResponseWriter, r *http.Request) {
	apphttp.WriteJSON(w, http.StatusOK, PromptsResponse{
		Greeting: chat.Greeting,
		Prompts:  chat.SamplePrompts,
	})
}

func handleMessages(w http.ResponseWriter, r *http.Request) {
	sess, err := apphttp.SessionFrom(store, r)
	if err != nil {
		apphttp.Error(w, err)
		return
	}
	apphttp.WriteJSON(w, http.StatusOK, sess.Messages())
}

func handlePost(w http.ResponseWriter, r *http.Request) {
	sess, err := apphttp.SessionFrom(store, r)
	if err != nil {
		apphttp.Error(w, err)
		return
	}

	var req PostRequest
	if err := apphttp.DecodeJSON(w, r, &req); err != nil {
		apphttp.ErrorResponse(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if !allow(sess.ID()) {
		apphttp.ErrorResponse(w, ErrRateLimited.Error(), http.StatusTooManyRequests)
		return
	}

	msg, reply, err := converse(r.Context(), sess, req.Text, nil)
	if err != nil {
		apphttp.Error(w, err)
		return
	}
	apphttp.WriteJSON(w, http.StatusOK, PostResponse{Message: msg, Reply: reply})
}

// converse records the user message, waits for the assistant and records its
// reply. typing, when set, is called once the user message is stored.
func converse(ctx context.Context, sess *session.Session, text string, typing func(models.ChatMessage)) (models.ChatMessage, models.ChatMessage, error) {
	if strings.TrimSpace(text) == "" {
		return models.ChatMessage{}, models.ChatMessage{}, chat.ErrEmptyMessage
	}

	msg := sess.AppendMessage(models.SenderUser, text)
	if typing != nil {
		typing(msg)
	}

	reply, err := assistant.Reply(ctx, text, sess.Record())
	if err != nil {
		return msg, models.ChatMessage{}, err
	}
	return msg, sess.AppendMessage(models.SenderBot, reply), nil
}

func handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sess, err := apphttp.SessionFrom(store, r)
	if err != nil {
		apphttp.Error(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	log.WithField("session_id", sess.ID()).Info("chat websocket connected")

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).Warn("websocket read failed")
			}
			return
		}

		var in Frame
		if err := json.Unmarshal(data, &in); err != nil || in.Type != "message" {
			send(conn, Frame{Type: "error", Error: "expected {\"type\":\"message\",\"text\":...}"})
			continue
		}
		if !allow(sess.ID()) {
			send(conn, Frame{Type: "error", Error: ErrRateLimited.Error()})
			continue
		}

		_, reply, err := converse(r.Context(), sess, in.Text, func(msg models.ChatMessage) {
			send(conn, Frame{Type: "message", Message: &msg})
			send(conn, Frame{Type: "typing"})
		})
		if err != nil {
			send(conn, Frame{Type: "error", Error: err.Error()})
			if r.Context().Err() != nil {
				return
			}
			continue
		}
		send(conn, Frame{Type: "message", Message: &reply})
	}
}

func send(conn *websocket.Conn, f Frame) {
	if err := conn.WriteJSON(f); err != nil {
		log.WithError(err).Debug("websocket write failed")
	}
}

// allow takes a token from the session's limiter
func allow(id string) bool {
	v, ok := limiters.Get(id)
	if !ok {
		l := rate.NewLimiter(limit, burst)
		if err := limiters.Add(id, l, cache.DefaultExpiration); err != nil {
			// lost the race to another request
			v, _ = limiters.Get(id)
		} else {
			v = l
		}
	}
	return v.(*rate.Limiter).Allow()
}
