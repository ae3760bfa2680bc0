package topo

import "testing"

func counters(t *testing.T, top *Topology, up, down int) {
	t.Helper()
	if top.DevicesUp != up || top.DevicesDown != down {
		t.Fatalf("counters: got %d up / %d down, want %d/%d", top.DevicesUp, top.DevicesDown, up, down)
	}
}

func TestRecountExcludesDegradedAndUnknown(t *testing.T) {
	top := &Topology{Devices: map[string]*Device{
		"a": {ID: "a", Status: StatusUp},
		"b": {ID: "b", Status: StatusDown},
		"c": {ID: "c", Status: StatusDegraded},
		"d": {ID: "d", Status: StatusUnknown},
	}}
	top.Recount()
	if top.TotalDevices != 4 {
		t.Fatalf("total: got %d", top.TotalDevices)
	}
	counters(t, top, 1, 1)
}

func TestSetDeviceStatusMovesCounters(t *testing.T) {
	top := &Topology{Devices: map[string]*Device{
		"a": {ID: "a", Status: StatusUp},
		"b": {ID: "b", Status: StatusUp},
	}}
	top.Recount()

	if !top.SetDeviceStatus("a", StatusDown) {
		t.Fatalf("expected known device")
	}
	counters(t, top, 1, 1)

	// Through degraded and back: neither bucket while degraded.
	top.SetDeviceStatus("a", StatusDegraded)
	counters(t, top, 1, 0)
	top.SetDeviceStatus("a", StatusUp)
	counters(t, top, 2, 0)

	// No-op transition is still a success and moves nothing.
	if !top.SetDeviceStatus("a", StatusUp) {
		t.Fatalf("no-op transition must succeed")
	}
	counters(t, top, 2, 0)

	if top.SetDeviceStatus("ghost", StatusDown) {
		t.Fatalf("unknown device must be rejected")
	}
	counters(t, top, 2, 0)
}

func TestIdentitiesSortedByID(t *testing.T) {
	ip := "10.0.0.5"
	top := &Topology{Devices: map[string]*Device{
		"sw-10": {ID: "sw-10"},
		"cat-1": {ID: "cat-1", IP: &ip},
		"sw-1":  {ID: "sw-1"},
	}}
	idents := top.Identities()
	want := []string{"cat-1", "sw-1", "sw-10"}
	for i, id := range want {
		if idents[i].ID != id {
			t.Fatalf("position %d: got %q want %q", i, idents[i].ID, id)
		}
	}
	if idents[0].IP != "10.0.0.5" {
		t.Fatalf("expected IP carried, got %q", idents[0].IP)
	}
}

func TestPositionIsOrigin(t *testing.T) {
	if !(Position{}).IsOrigin() {
		t.Fatalf("zero position must be origin")
	}
	if (Position{X: 1}).IsOrigin() {
		t.Fatalf("non-zero position must not be origin")
	}
}
