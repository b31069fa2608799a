package sessions

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	apphttp "findash/internal/http"
	"findash/internal/services/session"
	"findash/internal/services/simulate"
)

var (
	store *session.Store
	sim   *simulate.Simulator
	log   *logrus.Logger
)

// Initialize sets up the sessions package with required dependencies
func Initialize(st *session.Store, s *simulate.Simulator, l *logrus.Logger) {
	store = st
	sim = s
	log = l
}

// RegisterRoutes registers session lifecycle and page-flow routes
func RegisterRoutes(r chi.Router) {
	r.Post("/sessions", handleCreate)
	r.Get("/sessions/{id}", handleGet)
	r.Delete("/sessions/{id}", handleDelete)
	r.Post("/sessions/{id}/login", handleLogin)
	r.Post("/sessions/{id}/upload", handleUpload)
	r.Post("/sessions/{id}/skip", handleSkip)
	r.Post("/sessions/{id}/chat/toggle", handleToggleChat)
}

// UploadRequest names the file (or the Sheets token) being "uploaded"
type UploadRequest struct {
	Source string `json:"source"`
}

// UploadResponse reports a finished upload with the refreshed session
type UploadResponse struct {
	Source     string           `json:"source"`
	LoadedFrom string           `json:"loaded_from"`
	Session    session.Snapshot `json:"session"`
}

func handleCreate(w http.ResponseWriter, r *http.Request) {
	sess := store.Create()
	apphttp.WriteJSON(w, http.StatusCreated, sess.Snapshot())
}

func handleGet(w http.ResponseWriter, r *http.Request) {
	sess, err := apphttp.SessionFrom(store, r)
	if err != nil {
		apphttp.Error(w, err)
		return
	}
	apphttp.WriteJSON(w, http.StatusOK, sess.Snapshot())
}

func handleDelete(w http.ResponseWriter, r *http.Request) {
	if _, err := apphttp.SessionFrom(store, r); err != nil {
		apphttp.Error(w, err)
		return
	}
	store.Delete(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func handleLogin(w http.ResponseWriter, r *http.Request) {
	sess, err := apphttp.SessionFrom(store, r)
	if err != nil {
		apphttp.Error(w, err)
		return
	}
	sess.Login()
	apphttp.WriteJSON(w, http.StatusOK, sess.Snapshot())
}

func handleUpload(w http.ResponseWriter, r *http.Request) {
	sess, err := apphttp.SessionFrom(store, r)
	if err != nil {
		apphttp.Error(w, err)
		return
	}

	var req UploadRequest
	if err := apphttp.DecodeJSON(w, r, &req); err != nil {
		apphttp.ErrorResponse(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	result, err := sim.RequestUpload(r.Context(), req.Source)
	if err != nil {
		apphttp.Error(w, err)
		return
	}
	sess.ReplaceRecord(result.Record)

	log.WithFields(logrus.Fields{
		"session_id": sess.ID(),
		"source":     result.Source,
	}).Info("record replaced by upload")

	apphttp.WriteJSON(w, http.StatusOK, UploadResponse{
		Source:     result.Source,
		LoadedFrom: result.LoadedFrom,
		Session:    sess.Snapshot(),
	})
}

func handleSkip(w http.ResponseWriter, r *http.Request) {
	sess, err := apphttp.SessionFrom(store, r)
	if err != nil {
		apphttp.Error(w, err)
		return
	}
	sess.ReplaceRecord(sim.Skip())
	apphttp.WriteJSON(w, http.StatusOK, sess.Snapshot())
}

func handleToggleChat(w http.ResponseWriter, r *http.Request) {
	sess, err := apphttp.SessionFrom(store, r)
	if err != nil {
		apphttp.Error(w, err)
		return
	}
	apphttp.WriteJSON(w, http.StatusOK, map[string]bool{"chat_open": sess.ToggleChat()})
}
