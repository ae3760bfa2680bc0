package graphview

import (
	"testing"

	"watchtower/dashd/internal/topo"
)

func testL3() *topo.L3Topology {
	servers := "Servers"
	return &topo.L3Topology{
		VLANGroups: []topo.VLANGroup{
			{VLANID: 30, GatewayDevices: []string{"fw-1"}},
			{VLANID: 10, VLANName: &servers, GatewayDevices: []string{"core-1", "fw-1"}},
			{VLANID: 20, GatewayDevices: []string{"core-1"}},
		},
	}
}

func TestProjectLogical_sortedByVLANID(t *testing.T) {
	v := ProjectLogical(testL3(), nil, mapPositions{})
	if len(v.Nodes) != 3 {
		t.Fatalf("expected 3 vlan nodes, got %d", len(v.Nodes))
	}
	// Node sort is by id; "vlan:10" < "vlan:20" < "vlan:30" lexically here.
	want := []string{"vlan:10", "vlan:20", "vlan:30"}
	for i, n := range v.Nodes {
		if n.ID != want[i] {
			t.Fatalf("node %d: got %q want %q", i, n.ID, want[i])
		}
	}
	if v.Nodes[0].Label != "Servers" {
		t.Fatalf("expected vlan name used as label, got %q", v.Nodes[0].Label)
	}
	if v.Nodes[1].Label != "VLAN 20" {
		t.Fatalf("expected fallback label, got %q", v.Nodes[1].Label)
	}
}

func TestProjectLogical_gatewayEdges(t *testing.T) {
	v := ProjectLogical(testL3(), nil, mapPositions{})

	// vlan 10 shares fw-1 with vlan 30 and core-1 with vlan 20;
	// vlans 20 and 30 share nothing.
	wantIDs := map[string]bool{"vlan-link:10:20": true, "vlan-link:10:30": true}
	if len(v.Edges) != len(wantIDs) {
		t.Fatalf("expected %d gateway edges, got %d", len(wantIDs), len(v.Edges))
	}
	for _, e := range v.Edges {
		if !wantIDs[e.ID] {
			t.Fatalf("unexpected edge %q", e.ID)
		}
		if e.Kind != "gateway" {
			t.Fatalf("unexpected edge kind %q", e.Kind)
		}
	}
}

func TestProjectLogical_vlanFilter(t *testing.T) {
	v := ProjectLogical(testL3(), map[int]bool{10: true, 20: true}, mapPositions{})
	if len(v.Nodes) != 2 {
		t.Fatalf("expected filter to keep 2 nodes, got %d", len(v.Nodes))
	}
	for _, n := range v.Nodes {
		if n.ID == "vlan:30" {
			t.Fatalf("filtered vlan still present")
		}
	}
	// Edges to the filtered-out group disappear with it.
	for _, e := range v.Edges {
		if e.ID == "vlan-link:10:30" {
			t.Fatalf("edge to filtered vlan still present")
		}
	}
}

func TestProjectLogical_nilTopology(t *testing.T) {
	v := ProjectLogical(nil, nil, mapPositions{})
	if len(v.Nodes) != 0 || len(v.Edges) != 0 {
		t.Fatalf("expected empty view")
	}
}

func TestProjectLogical_persistedPositionWins(t *testing.T) {
	v := ProjectLogical(testL3(), nil, mapPositions{"vlan:20": {5, 6}})
	for _, n := range v.Nodes {
		if n.ID == "vlan:20" {
			if n.X != 5 || n.Y != 6 {
				t.Fatalf("expected persisted position, got (%v,%v)", n.X, n.Y)
			}
			return
		}
	}
	t.Fatalf("vlan:20 missing")
}
