package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewValidatesURL(t *testing.T) {
	if _, err := New("ftp://backend", "", zerolog.Nop()); err == nil {
		t.Fatalf("expected scheme rejection")
	}
	c, err := New("http://backend:8000/", "", zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := c.WebSocketURL(); got != "ws://backend:8000/ws/updates" {
		t.Fatalf("unexpected ws url %q", got)
	}
}

func TestWebSocketURLSecure(t *testing.T) {
	c, err := New("https://backend", "/stream", zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := c.WebSocketURL(); got != "wss://backend/stream" {
		t.Fatalf("unexpected ws url %q", got)
	}
}

func TestTopologyFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/topology" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"clusters":[],"devices":{"sw-1":{"id":"sw-1","display_name":"Switch 1","device_type":"switch","status":"up"}},"connections":[],"external_links":[]}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL, "", zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	topology, err := c.Topology(context.Background())
	if err != nil {
		t.Fatalf("Topology: %v", err)
	}
	if len(topology.Devices) != 1 || topology.Devices["sw-1"].DisplayName != "Switch 1" {
		t.Fatalf("unexpected topology: %+v", topology)
	}
}

func TestAlertsStatusFilter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("status"); got != "active" {
			t.Errorf("expected status filter, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"1","device_id":"sw-1","severity":"warning","message":"flap","status":"active"}]`))
	}))
	defer srv.Close()

	c, err := New(srv.URL, "", zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	list, err := c.Alerts(context.Background(), "active")
	if err != nil {
		t.Fatalf("Alerts: %v", err)
	}
	if len(list) != 1 || list[0].ID != "1" {
		t.Fatalf("unexpected alerts: %+v", list)
	}
}

func TestAcknowledgeAlert(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, err := New(srv.URL, "", zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.AcknowledgeAlert(context.Background(), "42"); err != nil {
		t.Fatalf("AcknowledgeAlert: %v", err)
	}
	if gotPath != "/api/alert/42/acknowledge" {
		t.Fatalf("unexpected path %q", gotPath)
	}
}

func TestErrorStatusSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := New(srv.URL, "", zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.Topology(context.Background()); err == nil {
		t.Fatalf("expected error for 502")
	}
	if err := c.AcknowledgeAlert(context.Background(), "1"); err == nil {
		t.Fatalf("expected error for 502")
	}
}
