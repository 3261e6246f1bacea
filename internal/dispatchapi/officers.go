package dispatchapi

import (
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/linnemanlabs/unilert/internal/roster"
)

func (a *API) handleListOfficers(w http.ResponseWriter, r *http.Request) {
	status := roster.Status(r.URL.Query().Get("status"))

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("unilert.officer.status_filter", string(status)))

	officers, err := a.roster.List(r.Context(), status)
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"officers": officers})
}
