package dispatchapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/linnemanlabs/unilert/internal/dispatch"
	"github.com/linnemanlabs/unilert/internal/dispatchapi"
	"github.com/linnemanlabs/unilert/internal/incident"
	incidentmem "github.com/linnemanlabs/unilert/internal/incident/memstore"
	"github.com/linnemanlabs/unilert/internal/roster"
	rostermem "github.com/linnemanlabs/unilert/internal/roster/memstore"
	"github.com/linnemanlabs/unilert/internal/sos"
	sosmem "github.com/linnemanlabs/unilert/internal/sos/memstore"
)

type testServer struct {
	srv    *httptest.Server
	roster *roster.Registry
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	officerRegistry := roster.NewRegistry(rostermem.New(), nil)
	if err := officerRegistry.Seed(context.Background(), []roster.Officer{
		{ID: "officer-1", Name: "Officer One", Badge: "B-1"},
		{ID: "officer-2", Name: "Officer Two", Badge: "B-2"},
		{ID: "officer-3", Name: "Officer Three", Badge: "B-3", Status: roster.StatusOffDuty},
	}); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	incidentRegistry := incident.NewRegistry(incidentmem.New(), nil, nil, nil)
	dispatcher := dispatch.NewCoordinator(officerRegistry, incidentRegistry, nil, nil, nil)
	sosCoordinator := sos.NewCoordinator(sosmem.New(), officerRegistry, nil, nil, nil)

	r := chi.NewRouter()
	api := dispatchapi.New(nil, officerRegistry, incidentRegistry, dispatcher, sosCoordinator)
	api.RegisterRoutes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &testServer{
		srv:    srv,
		roster: officerRegistry,
	}
}

// doJSON issues a request and decodes the response body into out.
func (ts *testServer) doJSON(t *testing.T, method, path, body string, out any) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, ts.srv.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := ts.srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s response: %v", method, path, err)
		}
	}
	return resp
}

type errEnvelope struct {
	Error struct {
		Code             string   `json:"code"`
		Message          string   `json:"message"`
		FailedOfficerIDs []string `json:"failed_officer_ids"`
	} `json:"error"`
}

func (ts *testServer) reportIncident(t *testing.T) string {
	t.Helper()
	var inc incident.Incident
	resp := ts.doJSON(t, http.MethodPost, "/api/v1/incidents",
		`{"type":"Suspicious Activity","location":"Library","priority":"high"}`, &inc)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("report incident status = %d", resp.StatusCode)
	}
	return inc.ID
}

func (ts *testServer) ingestSOS(t *testing.T) string {
	t.Helper()
	var out map[string]string
	resp := ts.doJSON(t, http.MethodPost, "/api/v1/sos/ingest",
		`{"user_name":"Michael Brown","location":{"lat":6.8957,"lng":3.7142,"description":"Campus Gym"}}`, &out)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("ingest sos status = %d", resp.StatusCode)
	}
	if out["id"] == "" {
		t.Fatal("ingest returned no id")
	}
	return out["id"]
}

func TestListOfficers(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)

	var out struct {
		Officers []roster.Officer `json:"officers"`
	}
	resp := ts.doJSON(t, http.MethodGet, "/api/v1/officers", "", &out)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if len(out.Officers) != 3 {
		t.Errorf("officers = %d, want 3", len(out.Officers))
	}

	// status filter
	resp = ts.doJSON(t, http.MethodGet, "/api/v1/officers?status=available", "", &out)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if len(out.Officers) != 2 {
		t.Errorf("available officers = %d, want 2", len(out.Officers))
	}
}

func TestReportAndGetIncident(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	id := ts.reportIncident(t)

	var inc incident.Incident
	resp := ts.doJSON(t, http.MethodGet, "/api/v1/incidents/"+id, "", &inc)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if inc.Type != "Suspicious Activity" || inc.Status != incident.StatusPending {
		t.Errorf("incident = %+v", inc)
	}
	if inc.Priority != incident.PriorityHigh {
		t.Errorf("priority = %q, want high", inc.Priority)
	}
}

func TestReportIncidentValidation(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)

	var env errEnvelope
	resp := ts.doJSON(t, http.MethodPost, "/api/v1/incidents", `{"description":"no type"}`, &env)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if env.Error.Code != "INVALID_PAYLOAD" {
		t.Errorf("code = %q, want INVALID_PAYLOAD", env.Error.Code)
	}
}

func TestGetIncidentNotFound(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)

	var env errEnvelope
	resp := ts.doJSON(t, http.MethodGet, "/api/v1/incidents/nope", "", &env)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if env.Error.Code != "NOT_FOUND" {
		t.Errorf("code = %q, want NOT_FOUND", env.Error.Code)
	}
}

func TestSetIncidentStatus(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	id := ts.reportIncident(t)

	var inc incident.Incident
	resp := ts.doJSON(t, http.MethodPost, "/api/v1/incidents/"+id+"/status", `{"status":"resolved"}`, &inc)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if inc.Status != incident.StatusResolved {
		t.Errorf("incident status = %q", inc.Status)
	}

	// resolved is terminal
	var env errEnvelope
	resp = ts.doJSON(t, http.MethodPost, "/api/v1/incidents/"+id+"/status", `{"status":"pending"}`, &env)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want 409", resp.StatusCode)
	}
	if env.Error.Code != "INVALID_TRANSITION" {
		t.Errorf("code = %q, want INVALID_TRANSITION", env.Error.Code)
	}

	// unknown enum value
	resp = ts.doJSON(t, http.MethodPost, "/api/v1/incidents/"+id+"/status", `{"status":"bogus"}`, &env)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestDispatch(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	id := ts.reportIncident(t)

	var rec dispatch.Record
	resp := ts.doJSON(t, http.MethodPost, "/api/v1/dispatch",
		`{"incident_id":"`+id+`","officer_ids":["officer-1","officer-2"],"note":"east entrance"}`, &rec)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	if rec.IncidentID != id || len(rec.OfficerIDs) != 2 {
		t.Errorf("record = %+v", rec)
	}

	// the incident moved to in-progress with snapshots attached
	var inc incident.Incident
	ts.doJSON(t, http.MethodGet, "/api/v1/incidents/"+id, "", &inc)
	if inc.Status != incident.StatusInProgress || len(inc.AssignedOfficers) != 2 {
		t.Errorf("incident after dispatch = %+v", inc)
	}
}

func TestDispatchOfficersUnavailable(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	id := ts.reportIncident(t)

	var env errEnvelope
	resp := ts.doJSON(t, http.MethodPost, "/api/v1/dispatch",
		`{"incident_id":"`+id+`","officer_ids":["officer-1","officer-3"]}`, &env)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want 409", resp.StatusCode)
	}
	if env.Error.Code != "OFFICERS_UNAVAILABLE" {
		t.Errorf("code = %q, want OFFICERS_UNAVAILABLE", env.Error.Code)
	}
	if len(env.Error.FailedOfficerIDs) != 1 || env.Error.FailedOfficerIDs[0] != "officer-3" {
		t.Errorf("failed_officer_ids = %v, want [officer-3]", env.Error.FailedOfficerIDs)
	}
}

func TestDispatchValidation(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	id := ts.reportIncident(t)

	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{"missing incident id", `{"officer_ids":["officer-1"]}`, "INVALID_PAYLOAD"},
		{"empty officer list", `{"incident_id":"` + id + `","officer_ids":[]}`, "INVALID_PAYLOAD"},
		{"bad json", `{`, "INVALID_PAYLOAD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var env errEnvelope
			resp := ts.doJSON(t, http.MethodPost, "/api/v1/dispatch", tt.body, &env)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", resp.StatusCode)
			}
			if env.Error.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", env.Error.Code, tt.wantCode)
			}
		})
	}
}

func TestDispatchToResolvedIncident(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	id := ts.reportIncident(t)
	ts.doJSON(t, http.MethodPost, "/api/v1/incidents/"+id+"/status", `{"status":"resolved"}`, nil)

	var env errEnvelope
	resp := ts.doJSON(t, http.MethodPost, "/api/v1/dispatch",
		`{"incident_id":"`+id+`","officer_ids":["officer-1"]}`, &env)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want 409", resp.StatusCode)
	}
	if env.Error.Code != "ALREADY_RESOLVED" {
		t.Errorf("code = %q, want ALREADY_RESOLVED", env.Error.Code)
	}
}

func TestSOSLifecycle(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	id := ts.ingestSOS(t)

	// dispatch an officer to the alert
	var alert sos.Alert
	resp := ts.doJSON(t, http.MethodPost, "/api/v1/sos/"+id+"/dispatch", `{"officer_id":"officer-1"}`, &alert)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("dispatch status = %d", resp.StatusCode)
	}
	if !alert.Responded || alert.RespondingOfficer == nil {
		t.Errorf("alert after dispatch = %+v", alert)
	}

	// second dispatch conflicts
	var env errEnvelope
	resp = ts.doJSON(t, http.MethodPost, "/api/v1/sos/"+id+"/dispatch", `{"officer_id":"officer-2"}`, &env)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("second dispatch status = %d, want 409", resp.StatusCode)
	}
	if env.Error.Code != "INVALID_TRANSITION" {
		t.Errorf("code = %q, want INVALID_TRANSITION", env.Error.Code)
	}

	// resolve releases the officer
	resp = ts.doJSON(t, http.MethodPost, "/api/v1/sos/"+id+"/resolve", "", &alert)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("resolve status = %d", resp.StatusCode)
	}
	if alert.Status != sos.StatusResolved {
		t.Errorf("alert status = %q", alert.Status)
	}
	o, _, err := ts.roster.Get(context.Background(), "officer-1")
	if err != nil {
		t.Fatalf("Get officer: %v", err)
	}
	if o.Status != roster.StatusAvailable {
		t.Errorf("officer status = %q, want available after resolve", o.Status)
	}

	// resolve is idempotent
	resp = ts.doJSON(t, http.MethodPost, "/api/v1/sos/"+id+"/resolve", "", &alert)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("second resolve status = %d, want 200", resp.StatusCode)
	}
}

func TestSOSDispatchErrors(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	id := ts.ingestSOS(t)

	var env errEnvelope

	// unknown alert
	resp := ts.doJSON(t, http.MethodPost, "/api/v1/sos/nope/dispatch", `{"officer_id":"officer-1"}`, &env)
	if resp.StatusCode != http.StatusNotFound || env.Error.Code != "NOT_FOUND" {
		t.Errorf("unknown alert: status=%d code=%q", resp.StatusCode, env.Error.Code)
	}

	// unknown officer
	resp = ts.doJSON(t, http.MethodPost, "/api/v1/sos/"+id+"/dispatch", `{"officer_id":"officer-99"}`, &env)
	if resp.StatusCode != http.StatusNotFound || env.Error.Code != "UNKNOWN_OFFICER" {
		t.Errorf("unknown officer: status=%d code=%q", resp.StatusCode, env.Error.Code)
	}

	// missing officer_id
	resp = ts.doJSON(t, http.MethodPost, "/api/v1/sos/"+id+"/dispatch", `{}`, &env)
	if resp.StatusCode != http.StatusBadRequest || env.Error.Code != "INVALID_PAYLOAD" {
		t.Errorf("missing officer_id: status=%d code=%q", resp.StatusCode, env.Error.Code)
	}
}

func TestSOSIngestValidation(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)

	var env errEnvelope
	resp := ts.doJSON(t, http.MethodPost, "/api/v1/sos/ingest", `{"user_name":"x","location":{"lat":1,"lng":2}}`, &env)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if env.Error.Code != "INVALID_PAYLOAD" {
		t.Errorf("code = %q, want INVALID_PAYLOAD", env.Error.Code)
	}
}

func TestListSOS(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	id := ts.ingestSOS(t)
	ts.doJSON(t, http.MethodPost, "/api/v1/sos/"+id+"/resolve", "", nil)
	ts.ingestSOS(t)

	var out struct {
		Alerts []sos.Alert `json:"alerts"`
	}
	resp := ts.doJSON(t, http.MethodGet, "/api/v1/sos", "", &out)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if len(out.Alerts) != 2 {
		t.Errorf("alerts = %d, want 2", len(out.Alerts))
	}

	resp = ts.doJSON(t, http.MethodGet, "/api/v1/sos?status=active", "", &out)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if len(out.Alerts) != 1 {
		t.Errorf("active alerts = %d, want 1", len(out.Alerts))
	}
}

func TestListIncidentsFiltered(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	ts.reportIncident(t)
	id := ts.reportIncident(t)
	ts.doJSON(t, http.MethodPost, "/api/v1/incidents/"+id+"/status", `{"status":"resolved"}`, nil)

	var out struct {
		Incidents []incident.Incident `json:"incidents"`
	}
	resp := ts.doJSON(t, http.MethodGet, "/api/v1/incidents?status=pending", "", &out)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if len(out.Incidents) != 1 {
		t.Errorf("pending incidents = %d, want 1", len(out.Incidents))
	}
}
