package probe

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// managementStub mimics the app-server management API: a list operation
// returning deployment names, then per-deployment resource reads.
func managementStub(t *testing.T, states map[string]struct {
	Status  string
	Enabled bool
}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "monitor" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		var op managementOp
		if err := json.NewDecoder(r.Body).Decode(&op); err != nil {
			t.Errorf("bad request body: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		switch op.Operation {
		case "read-children-names":
			names := make([]string, 0, len(states))
			for name := range states {
				names = append(names, name)
			}
			json.NewEncoder(w).Encode(map[string]interface{}{"result": names})
		case "read-resource":
			name := op.Address[0]["deployment"]
			state, found := states[name]
			if !found {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"result": map[string]interface{}{"status": state.Status, "enabled": state.Enabled},
			})
		default:
			t.Errorf("unexpected operation %q", op.Operation)
			w.WriteHeader(http.StatusBadRequest)
		}
	}
}

func TestAppServerProbe_ReadsDeployments(t *testing.T) {
	states := map[string]struct {
		Status  string
		Enabled bool
	}{
		"hub-server.ear": {Status: "OK", Enabled: true},
		"hub-console.war": {Status: "STOPPED", Enabled: false},
	}
	srv := httptest.NewServer(managementStub(t, states))
	defer srv.Close()

	p := NewAppServerProbe([]AppServerTarget{
		{Environment: "PRD", URL: srv.URL, Username: "monitor", Password: "secret"},
	}, 5*time.Second, probeLogger())

	rows := p.Check(context.Background())
	if len(rows) != 2 {
		t.Fatalf("expected 2 deployment rows, got %d", len(rows))
	}
	byName := map[string]bool{}
	for _, row := range rows {
		if row.Environment != "PRD" {
			t.Errorf("row %q tagged with environment %q", row.Name, row.Environment)
		}
		byName[row.Name] = row.OK && row.Enabled
	}
	if !byName["hub-server.ear"] {
		t.Error("hub-server.ear should be OK and enabled")
	}
	if byName["hub-console.war"] {
		t.Error("stopped deployment must not report healthy")
	}
}

func TestAppServerProbe_UnreachableYieldsSentinel(t *testing.T) {
	p := NewAppServerProbe([]AppServerTarget{
		{Environment: "SIT", URL: "http://127.0.0.1:1", Username: "monitor", Password: "secret"},
	}, 2*time.Second, probeLogger())

	rows := p.Check(context.Background())
	if len(rows) != 1 {
		t.Fatalf("unreachable environment must yield exactly one sentinel row, got %d", len(rows))
	}
	row := rows[0]
	if row.Environment != "SIT" || row.Name != "N/A" || row.OK || row.Enabled {
		t.Errorf("unexpected sentinel row %+v", row)
	}
}

func TestAppServerProbe_BadCredentials(t *testing.T) {
	srv := httptest.NewServer(managementStub(t, nil))
	defer srv.Close()

	p := NewAppServerProbe([]AppServerTarget{
		{Environment: "DEV", URL: srv.URL, Username: "monitor", Password: "wrong"},
	}, 5*time.Second, probeLogger())

	rows := p.Check(context.Background())
	if len(rows) != 1 || rows[0].Name != "N/A" {
		t.Errorf("auth failure must degrade to a sentinel row, got %+v", rows)
	}
}
