package graphview

import (
	"fmt"
	"math"
	"sort"

	"watchtower/dashd/internal/topo"
)

const (
	clusterGridOriginX  = 120
	clusterGridOriginY  = 80
	clusterGridSpacingX = 340
	clusterGridSpacingY = 260

	memberGridColumns  = 3
	memberGridSpacingX = 170
	memberGridSpacingY = 120

	externalStackX       = -280
	externalStackTop     = 60
	externalStackSpacing = 120
)

// ProjectPhysical builds the physical (L2) view: one collapsed node per
// cluster, or one node per member device when the cluster is expanded, plus
// a deduplicated left-hand stack of external endpoints. Connections are
// rolled up to cluster granularity unless an endpoint cluster is expanded.
func ProjectPhysical(t *topo.Topology, expanded map[string]bool, pos PositionSource) View {
	view := View{Nodes: []Node{}, Edges: []Edge{}}
	if t == nil {
		return view
	}

	emitted := make(map[string]bool)
	gridIndex := 0

	for _, cluster := range t.Clusters {
		anchorX, anchorY := clusterAnchor(cluster, gridIndex, len(t.Clusters), pos)
		gridIndex++

		if expanded[cluster.ID] {
			members := presentMembers(t, cluster)
			for i, d := range members {
				x, y := memberGridSlot(anchorX, anchorY, i, len(members))
				if px, py, ok := pos.Position(d.ID); ok {
					x, y = px, py
				}
				view.Nodes = append(view.Nodes, Node{
					ID:        d.ID,
					Kind:      KindDevice,
					Label:     d.DisplayName,
					X:         x,
					Y:         y,
					Status:    string(d.Status),
					ClusterID: cluster.ID,
					Meta:      map[string]any{"device_type": string(d.Type)},
				})
				emitted[d.ID] = true
			}
			continue
		}

		view.Nodes = append(view.Nodes, Node{
			ID:     cluster.ID,
			Kind:   KindCluster,
			Label:  cluster.Name,
			X:      anchorX,
			Y:      anchorY,
			Status: clusterStatus(t, cluster),
			Meta: map[string]any{
				"cluster_type": cluster.ClusterType,
				"icon":         cluster.Icon,
				"device_count": len(cluster.DeviceIDs),
			},
		})
		emitted[cluster.ID] = true
	}

	// Devices with no cluster membership render as free-standing nodes in the
	// same fallback grid, after the clusters.
	for _, id := range sortedDeviceIDs(t) {
		d := t.Devices[id]
		if d.ClusterID != nil {
			continue
		}
		x := float64(clusterGridOriginX + (gridIndex%fallbackColumns(len(t.Clusters)))*clusterGridSpacingX)
		y := float64(clusterGridOriginY + (gridIndex/fallbackColumns(len(t.Clusters)))*clusterGridSpacingY)
		if px, py, ok := pos.Position(d.ID); ok {
			x, y = px, py
		}
		gridIndex++
		view.Nodes = append(view.Nodes, Node{
			ID:     d.ID,
			Kind:   KindDevice,
			Label:  d.DisplayName,
			X:      x,
			Y:      y,
			Status: string(d.Status),
			Meta:   map[string]any{"device_type": string(d.Type)},
		})
		emitted[d.ID] = true
	}

	externalSlots := make(map[string]int)
	for _, link := range t.ExternalLinks {
		label := link.Target.Label
		if _, seen := externalSlots[label]; seen {
			continue
		}
		slot := len(externalSlots)
		externalSlots[label] = slot

		id := ExternalNodeID(label)
		x, y := float64(externalStackX), float64(externalStackTop+slot*externalStackSpacing)
		if px, py, ok := pos.Position(id); ok {
			x, y = px, py
		}
		view.Nodes = append(view.Nodes, Node{
			ID:    id,
			Kind:  KindExternal,
			Label: label,
			X:     x,
			Y:     y,
			Meta:  map[string]any{"target_type": link.Target.Type, "icon": link.Target.Icon},
		})
		emitted[id] = true
	}

	edges := make(map[string]Edge)
	for _, conn := range t.Connections {
		from, srcDev, ok := resolveEndpoint(t, expanded, emitted, conn.Source)
		if !ok {
			continue
		}
		to, dstDev, ok := resolveEndpoint(t, expanded, emitted, conn.Target)
		if !ok || from == to {
			continue
		}
		putEdge(edges, Edge{
			ID:          "link:" + conn.ID,
			Kind:        "link",
			From:        from,
			To:          to,
			Status:      deriveEdgeStatus(conn.Status, srcDev, dstDev),
			SpeedMbps:   conn.SpeedMbps,
			Utilization: conn.Utilization,
			Meta:        map[string]any{"connection_type": conn.Type},
		})
	}

	for _, link := range t.ExternalLinks {
		from, srcDev, ok := resolveEndpoint(t, expanded, emitted, link.Source)
		if !ok {
			continue
		}
		to := ExternalNodeID(link.Target.Label)
		if !emitted[to] {
			continue
		}
		e := Edge{
			ID:          "extlink:" + link.ID,
			Kind:        "external",
			From:        from,
			To:          to,
			Status:      deriveEdgeStatus(link.Status, srcDev, nil),
			SpeedMbps:   link.SpeedMbps,
			Utilization: link.Utilization,
		}
		if link.Provider != nil {
			e.Meta = map[string]any{"provider": *link.Provider}
		}
		putEdge(edges, e)
	}

	for _, e := range edges {
		view.Edges = append(view.Edges, e)
	}
	sortView(&view)
	return view
}

// clusterAnchor resolves a cluster's anchor position: persisted position
// first, then the configured upstream position when non-origin, then a
// square-grid fallback indexed by cluster order.
func clusterAnchor(c topo.Cluster, index, total int, pos PositionSource) (float64, float64) {
	if x, y, ok := pos.Position(c.ID); ok {
		return x, y
	}
	if !c.Position.IsOrigin() {
		return c.Position.X, c.Position.Y
	}
	cols := fallbackColumns(total)
	return float64(clusterGridOriginX + (index%cols)*clusterGridSpacingX),
		float64(clusterGridOriginY + (index/cols)*clusterGridSpacingY)
}

func fallbackColumns(total int) int {
	if total < 1 {
		return 1
	}
	return int(math.Ceil(math.Sqrt(float64(total))))
}

// memberGridSlot places member i of n in a column-bounded grid centered on
// the cluster anchor.
func memberGridSlot(anchorX, anchorY float64, i, n int) (float64, float64) {
	cols := memberGridColumns
	if n < cols {
		cols = n
	}
	if cols < 1 {
		cols = 1
	}
	rows := (n + cols - 1) / cols
	col := i % cols
	row := i / cols
	x := anchorX + (float64(col)-float64(cols-1)/2)*memberGridSpacingX
	y := anchorY + (float64(row)-float64(rows-1)/2)*memberGridSpacingY
	return x, y
}

// presentMembers filters the cluster's device id list down to devices that
// exist in the topology; absent ids are skipped, not an error.
func presentMembers(t *topo.Topology, c topo.Cluster) []*topo.Device {
	out := make([]*topo.Device, 0, len(c.DeviceIDs))
	for _, id := range c.DeviceIDs {
		if d, ok := t.Devices[id]; ok {
			out = append(out, d)
		}
	}
	return out
}

func clusterStatus(t *topo.Topology, c topo.Cluster) string {
	down, degraded := 0, 0
	for _, id := range c.DeviceIDs {
		d, ok := t.Devices[id]
		if !ok {
			continue
		}
		switch d.Status {
		case topo.StatusDown:
			down++
		case topo.StatusDegraded:
			degraded++
		}
	}
	switch {
	case down > 0:
		return string(topo.StatusDown)
	case degraded > 0:
		return string(topo.StatusDegraded)
	default:
		return string(topo.StatusUp)
	}
}

// resolveEndpoint maps a connection endpoint to the node that represents it
// in this projection: the device itself when its cluster is expanded (or it
// has no cluster), otherwise the collapsed cluster node.
func resolveEndpoint(t *topo.Topology, expanded, emitted map[string]bool, ep topo.Endpoint) (string, *topo.Device, bool) {
	if ep.Device == nil {
		return "", nil, false
	}
	d, ok := t.Devices[*ep.Device]
	if !ok {
		return "", nil, false
	}
	nodeID := d.ID
	if d.ClusterID != nil && !expanded[*d.ClusterID] {
		nodeID = *d.ClusterID
	}
	if !emitted[nodeID] {
		return "", nil, false
	}
	return nodeID, d, true
}

// deriveEdgeStatus recomputes edge status from the endpoint devices so that
// a device going down darkens all of its edges on the next projection.
func deriveEdgeStatus(raw topo.ConnectionStatus, src, dst *topo.Device) string {
	if deviceIs(src, topo.StatusDown) || deviceIs(dst, topo.StatusDown) {
		return string(topo.LinkDown)
	}
	if deviceIs(src, topo.StatusDegraded) || deviceIs(dst, topo.StatusDegraded) {
		return string(topo.LinkDegraded)
	}
	return string(raw)
}

func deviceIs(d *topo.Device, s topo.DeviceStatus) bool {
	return d != nil && d.Status == s
}

// putEdge collapses duplicate edges between the same resolved pair, keeping
// the duplicate with the highest utilization.
func putEdge(edges map[string]Edge, e Edge) {
	key := pairKey(e.From, e.To)
	if existing, ok := edges[key]; ok && existing.Utilization >= e.Utilization {
		return
	}
	edges[key] = e
}

func pairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return fmt.Sprintf("%s|%s", a, b)
}

func sortedDeviceIDs(t *topo.Topology) []string {
	ids := make([]string, 0, len(t.Devices))
	for id := range t.Devices {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func sortView(v *View) {
	sort.SliceStable(v.Nodes, func(i, j int) bool { return v.Nodes[i].ID < v.Nodes[j].ID })
	sort.SliceStable(v.Edges, func(i, j int) bool { return v.Edges[i].ID < v.Edges[j].ID })
}
