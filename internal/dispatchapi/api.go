// Package dispatchapi exposes the dispatch coordinator, officer roster, and
// SOS board over HTTP/JSON.
package dispatchapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/linnemanlabs/unilert/internal/dispatch"
	"github.com/linnemanlabs/unilert/internal/incident"
	"github.com/linnemanlabs/unilert/internal/roster"
	"github.com/linnemanlabs/unilert/internal/sos"
)

// API holds dependencies for HTTP handlers.
type API struct {
	logger     log.Logger
	roster     *roster.Registry
	incidents  *incident.Registry
	dispatcher *dispatch.Coordinator
	sosCoord   *sos.Coordinator
}

// New creates a new API handler.
func New(logger log.Logger, r *roster.Registry, inc *incident.Registry, d *dispatch.Coordinator, s *sos.Coordinator) *API {
	if logger == nil {
		logger = log.Nop()
	}
	if r == nil || inc == nil || d == nil || s == nil {
		panic(xerrors.New("all registries and coordinators are required"))
	}
	return &API{
		logger:     logger,
		roster:     r,
		incidents:  inc,
		dispatcher: d,
		sosCoord:   s,
	}
}

// RegisterRoutes attaches API endpoints to the router.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/officers", a.handleListOfficers)

		r.Get("/incidents", a.handleListIncidents)
		r.Post("/incidents", a.handleReportIncident)
		r.Get("/incidents/{id}", a.handleGetIncident)
		r.Post("/incidents/{id}/status", a.handleSetIncidentStatus)

		r.Post("/dispatch", a.handleDispatch)

		r.Get("/sos", a.handleListSOS)
		r.Post("/sos/ingest", a.handleIngestSOS)
		r.Post("/sos/{id}/dispatch", a.handleDispatchSOS)
		r.Post("/sos/{id}/resolve", a.handleResolveSOS)
	})
}

// errorBody is the JSON error envelope.
type errorBody struct {
	Code             string   `json:"code"`
	Message          string   `json:"message"`
	FailedOfficerIDs []string `json:"failed_officer_ids,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, body errorBody) {
	writeJSON(w, status, map[string]errorBody{"error": body})
}

// writeDomainError maps domain errors to HTTP statuses and the stable error
// codes callers branch on. Conflicts are expected outcomes, not faults: only
// unrecognized errors are logged as server errors.
func (a *API) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var notAvailable *roster.NotAvailableError

	switch {
	case errors.As(err, &notAvailable):
		writeError(w, http.StatusConflict, errorBody{
			Code:             "OFFICERS_UNAVAILABLE",
			Message:          notAvailable.Error(),
			FailedOfficerIDs: notAvailable.IDs,
		})
	case errors.Is(err, incident.ErrNotFound), errors.Is(err, sos.ErrNotFound):
		writeError(w, http.StatusNotFound, errorBody{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, roster.ErrUnknownOfficer):
		writeError(w, http.StatusNotFound, errorBody{Code: "UNKNOWN_OFFICER", Message: err.Error()})
	case errors.Is(err, incident.ErrResolved), errors.Is(err, sos.ErrResolved):
		writeError(w, http.StatusConflict, errorBody{Code: "ALREADY_RESOLVED", Message: err.Error()})
	case errors.Is(err, incident.ErrInvalidTransition), errors.Is(err, sos.ErrAlreadyResponded):
		writeError(w, http.StatusConflict, errorBody{Code: "INVALID_TRANSITION", Message: err.Error()})
	case errors.Is(err, dispatch.ErrNoOfficers):
		writeError(w, http.StatusBadRequest, errorBody{Code: "INVALID_PAYLOAD", Message: err.Error()})
	default:
		a.logger.Error(r.Context(), err, "request failed", "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, errorBody{Code: "INTERNAL", Message: "internal error"})
	}
}

func writeInvalidPayload(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusBadRequest, errorBody{Code: "INVALID_PAYLOAD", Message: msg})
}
