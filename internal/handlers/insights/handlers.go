package insights

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	apphttp "findash/internal/http"
	"findash/internal/models"
	"findash/internal/services/session"
)

var (
	store *session.Store
	log   *logrus.Logger
)

// Initialize sets up the insights package with required dependencies
func Initialize(st *session.Store, l *logrus.Logger) {
	store = st
	log = l
}

// RegisterRoutes registers the suggestion routes
func RegisterRoutes(r chi.Router) {
	r.Get("/sessions/{id}/suggestions", handleList)
	r.Post("/sessions/{id}/suggestions/{sid}/save", handleSave)
	r.Post("/sessions/{id}/suggestions/{sid}/apply", handleApply)
	r.Delete("/sessions/{id}/suggestions/{sid}", handleIgnore)
}

func handleList(w http.ResponseWriter, r *http.Request) {
	sess, err := apphttp.SessionFrom(store, r)
	if err != nil {
		apphttp.Error(w, err)
		return
	}
	apphttp.WriteJSON(w, http.StatusOK, sess.Insights())
}

func handleSave(w http.ResponseWriter, r *http.Request) {
	update(w, r, "save", (*session.Session).SaveSuggestion)
}

func handleApply(w http.ResponseWriter, r *http.Request) {
	update(w, r, "apply", (*session.Session).ApplySuggestion)
}

func update(w http.ResponseWriter, r *http.Request, action string, fn func(*session.Session, string) (models.TrackedSuggestion, error)) {
	sess, err := apphttp.SessionFrom(store, r)
	if err != nil {
		apphttp.Error(w, err)
		return
	}

	sg, err := fn(sess, chi.URLParam(r, "sid"))
	if err != nil {
		apphttp.Error(w, err)
		return
	}

	log.WithFields(logrus.Fields{
		"session_id": sess.ID(),
		"suggestion": sg.Title,
		"action":     action,
	}).Debug("suggestion updated")

	apphttp.WriteJSON(w, http.StatusOK, sg)
}

func handleIgnore(w http.ResponseWriter, r *http.Request) {
	sess, err := apphttp.SessionFrom(store, r)
	if err != nil {
		apphttp.Error(w, err)
		return
	}
	if err := sess.IgnoreSuggestion(chi.URLParam(r, "sid")); err != nil {
		apphttp.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
