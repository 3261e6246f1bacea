package dispatchapi

import (
	"encoding/json"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

func (a *API) handleDispatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IncidentID string   `json:"incident_id"`
		OfficerIDs []string `json:"officer_ids"`
		Note       string   `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidPayload(w, "invalid dispatch payload")
		return
	}
	if req.IncidentID == "" {
		writeInvalidPayload(w, "incident_id is required")
		return
	}

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(
		attribute.String("unilert.incident.id", req.IncidentID),
		attribute.Int("unilert.dispatch.officers", len(req.OfficerIDs)),
	)

	rec, err := a.dispatcher.Dispatch(r.Context(), req.IncidentID, req.OfficerIDs, req.Note)
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}

	span.SetAttributes(attribute.String("unilert.dispatch.id", rec.ID))
	writeJSON(w, http.StatusCreated, rec)
}
