package graphview

import (
	"fmt"
	"sort"
	"strconv"

	"watchtower/dashd/internal/topo"
)

const (
	vlanGridOriginX  = 120
	vlanGridOriginY  = 80
	vlanGridSpacingX = 300
	vlanGridSpacingY = 220
)

// VLANNodeID names the node for one VLAN group.
func VLANNodeID(vlanID int) string { return "vlan:" + strconv.Itoa(vlanID) }

// ProjectLogical builds the logical (L3) view: one node per VLAN group laid
// out in a square grid, with an edge between any two groups that share at
// least one gateway device.
func ProjectLogical(l3 *topo.L3Topology, vlanFilter map[int]bool, pos PositionSource) View {
	view := View{Nodes: []Node{}, Edges: []Edge{}}
	if l3 == nil {
		return view
	}

	groups := make([]topo.VLANGroup, 0, len(l3.VLANGroups))
	for _, g := range l3.VLANGroups {
		if len(vlanFilter) > 0 && !vlanFilter[g.VLANID] {
			continue
		}
		groups = append(groups, g)
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].VLANID < groups[j].VLANID })

	cols := fallbackColumns(len(groups))
	for i, g := range groups {
		id := VLANNodeID(g.VLANID)
		x := float64(vlanGridOriginX + (i%cols)*vlanGridSpacingX)
		y := float64(vlanGridOriginY + (i/cols)*vlanGridSpacingY)
		if px, py, ok := pos.Position(id); ok {
			x, y = px, py
		}
		label := "VLAN " + strconv.Itoa(g.VLANID)
		if g.VLANName != nil && *g.VLANName != "" {
			label = *g.VLANName
		}
		view.Nodes = append(view.Nodes, Node{
			ID:    id,
			Kind:  KindVLANGroup,
			Label: label,
			X:     x,
			Y:     y,
			Meta: map[string]any{
				"vlan_id":       g.VLANID,
				"device_count":  len(g.Devices),
				"gateway_count": len(g.GatewayDevices),
			},
		})
	}

	for i := 0; i < len(groups); i++ {
		for j := i + 1; j < len(groups); j++ {
			shared := sharedGateways(groups[i], groups[j])
			if len(shared) == 0 {
				continue
			}
			a, b := groups[i].VLANID, groups[j].VLANID
			view.Edges = append(view.Edges, Edge{
				ID:     fmt.Sprintf("vlan-link:%d:%d", a, b),
				Kind:   "gateway",
				From:   VLANNodeID(a),
				To:     VLANNodeID(b),
				Status: string(topo.LinkUp),
				Meta:   map[string]any{"gateways": shared},
			})
		}
	}

	sortView(&view)
	return view
}

func sharedGateways(a, b topo.VLANGroup) []string {
	inA := make(map[string]bool, len(a.GatewayDevices))
	for _, id := range a.GatewayDevices {
		inA[id] = true
	}
	var shared []string
	for _, id := range b.GatewayDevices {
		if inA[id] {
			shared = append(shared, id)
		}
	}
	sort.Strings(shared)
	return shared
}
