package export

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apphttp "findash/internal/http"
	"findash/internal/services/session"
	"findash/internal/services/simulate"
)

var (
	store *session.Store
	sim   *simulate.Simulator
)

// Initialize sets up the export package with required dependencies
func Initialize(st *session.Store, s *simulate.Simulator) {
	store = st
	sim = s
}

// RegisterRoutes registers the export dialog routes
func RegisterRoutes(r chi.Router) {
	r.Get("/export/options", handleOptions)
	r.Post("/sessions/{id}/export/open", handleOpen)
	r.Post("/sessions/{id}/export/close", handleClose)
	r.Post("/sessions/{id}/export", handleExport)
}

// Options lists what the export dialog offers
type Options struct {
	Sections []simulate.SectionOption `json:"sections"`
	Formats  []simulate.Format        `json:"formats"`
}

// Request is the export dialog's submission
type Request struct {
	Sections []string `json:"sections"`
	Format   string   `json:"format"`
}

func handleOptions(w http.ResponseWriter, r *http.Request) {
	apphttp.WriteJSON(w, http.StatusOK, Options{
		Sections: simulate.Sections,
		Formats:  []simulate.Format{simulate.FormatExcel, simulate.FormatSheets},
	})
}

func handleOpen(w http.ResponseWriter, r *http.Request) {
	setOpen(w, r, true)
}

func handleClose(w http.ResponseWriter, r *http.Request) {
	setOpen(w, r, false)
}

func setOpen(w http.ResponseWriter, r *http.Request, open bool) {
	sess, err := apphttp.SessionFrom(store, r)
	if err != nil {
		apphttp.Error(w, err)
		return
	}
	sess.SetExportOpen(open)
	apphttp.WriteJSON(w, http.StatusOK, map[string]bool{"export_open": open})
}

// handleExport runs the simulated export; the dialog closes only on success
func handleExport(w http.ResponseWriter, r *http.Request) {
	sess, err := apphttp.SessionFrom(store, r)
	if err != nil {
		apphttp.Error(w, err)
		return
	}

	var req Request
	if err := apphttp.DecodeJSON(w, r, &req); err != nil {
		apphttp.ErrorResponse(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	receipt, err := sim.RequestExport(r.Context(), req.Sections, req.Format)
	if err != nil {
		apphttp.Error(w, err)
		return
	}
	sess.SetExportOpen(false)

	apphttp.WriteJSON(w, http.StatusOK, receipt)
}
