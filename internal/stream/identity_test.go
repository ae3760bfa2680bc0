package stream

import (
	"testing"

	"watchtower/dashd/internal/topo"
)

func identList() []topo.DeviceIdentity {
	return []topo.DeviceIdentity{
		{ID: "cat-1", IP: "10.0.0.5"},
		{ID: "fw-1", IP: "10.0.0.1"},
		{ID: "sw-1", IP: "10.0.1.1"},
		{ID: "sw-10", IP: "10.0.1.10"},
	}
}

func TestFindTopologyDeviceID(t *testing.T) {
	cases := []struct {
		name     string
		hostname string
		want     string
		ok       bool
	}{
		{"ip equality", "10.0.0.5", "cat-1", true},
		{"id substring of hostname", "cat-1.example.lan", "cat-1", true},
		{"case insensitive", "CAT-1.EXAMPLE.LAN", "cat-1", true},
		{"longest id wins", "sw-10.lan", "sw-10", true},
		{"shorter id still matches its own host", "sw-1.lan", "sw-1", true},
		{"unrelated host", "printer-3.lan", "", false},
		{"empty hostname", "", "", false},
		{"whitespace only", "   ", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := FindTopologyDeviceID(tc.hostname, identList())
			if ok != tc.ok || got != tc.want {
				t.Fatalf("FindTopologyDeviceID(%q) = (%q,%v), want (%q,%v)",
					tc.hostname, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestFindTopologyDeviceID_ipBeatsSubstring(t *testing.T) {
	idents := []topo.DeviceIdentity{
		{ID: "10", IP: ""},
		{ID: "core-1", IP: "10.0.0.9"},
	}
	got, ok := FindTopologyDeviceID("10.0.0.9", idents)
	if !ok || got != "core-1" {
		t.Fatalf("expected exact IP match to win, got (%q,%v)", got, ok)
	}
}

func TestMapSeverity(t *testing.T) {
	cases := map[string]topo.AlertSeverity{
		"critical": topo.SeverityCritical,
		"Alert":    topo.SeverityCritical,
		"warning":  topo.SeverityWarning,
		"WARN":     topo.SeverityWarning,
		"ok":       topo.SeverityRecovery,
		"Recovery": topo.SeverityRecovery,
		"foo":      topo.SeverityInfo,
		"":         topo.SeverityInfo,
	}
	for raw, want := range cases {
		if got := MapSeverity(raw); got != want {
			t.Fatalf("MapSeverity(%q) = %q, want %q", raw, got, want)
		}
	}
}
