package dispatchapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/linnemanlabs/unilert/internal/incident"
)

func (a *API) handleListIncidents(w http.ResponseWriter, r *http.Request) {
	f := incident.Filter{
		Status:   incident.Status(r.URL.Query().Get("status")),
		Priority: incident.Priority(r.URL.Query().Get("priority")),
	}

	incidents, err := a.incidents.List(r.Context(), f)
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"incidents": incidents})
}

func (a *API) handleGetIncident(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("unilert.incident.id", id))

	inc, err := a.incidents.Get(r.Context(), id)
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}

	span.SetAttributes(attribute.String("unilert.incident.status", string(inc.Status)))
	writeJSON(w, http.StatusOK, inc)
}

func (a *API) handleReportIncident(w http.ResponseWriter, r *http.Request) {
	var n incident.NewIncident
	if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
		writeInvalidPayload(w, "invalid incident payload")
		return
	}
	if n.Type == "" || n.Location == "" {
		writeInvalidPayload(w, "type and location are required")
		return
	}

	inc, err := a.incidents.Report(r.Context(), n)
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, inc)
}

func (a *API) handleSetIncidentStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		Status incident.Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidPayload(w, "invalid status payload")
		return
	}
	switch req.Status {
	case incident.StatusPending, incident.StatusInProgress, incident.StatusResolved:
	default:
		writeInvalidPayload(w, "unknown status "+string(req.Status))
		return
	}

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(
		attribute.String("unilert.incident.id", id),
		attribute.String("unilert.incident.target_status", string(req.Status)),
	)

	inc, err := a.incidents.SetStatus(r.Context(), id, req.Status)
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, inc)
}
