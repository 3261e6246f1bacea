package dispatchapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/linnemanlabs/unilert/internal/sos"
)

func (a *API) handleListSOS(w http.ResponseWriter, r *http.Request) {
	status := sos.Status(r.URL.Query().Get("status"))

	alerts, err := a.sosCoord.List(r.Context(), status)
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"alerts": alerts})
}

func (a *API) handleIngestSOS(w http.ResponseWriter, r *http.Request) {
	var n sos.NewAlert
	if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
		writeInvalidPayload(w, "invalid sos payload")
		return
	}
	if n.Location.Description == "" {
		writeInvalidPayload(w, "location description is required")
		return
	}

	alert, err := a.sosCoord.Ingest(r.Context(), n)
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": alert.ID})
}

func (a *API) handleDispatchSOS(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		OfficerID string `json:"officer_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidPayload(w, "invalid sos dispatch payload")
		return
	}
	if req.OfficerID == "" {
		writeInvalidPayload(w, "officer_id is required")
		return
	}

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(
		attribute.String("unilert.sos.id", id),
		attribute.String("unilert.sos.officer", req.OfficerID),
	)

	alert, err := a.sosCoord.DispatchOfficer(r.Context(), id, req.OfficerID)
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, alert)
}

func (a *API) handleResolveSOS(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("unilert.sos.id", id))

	alert, err := a.sosCoord.Resolve(r.Context(), id)
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, alert)
}
