// Package graphview projects a topology snapshot plus UI state (expanded
// clusters, VLAN filter, persisted positions) into the node/edge set the
// dashboard renders. Projections are pure: they never touch shared state and
// an absent topology yields an empty view.
package graphview

type NodeKind string

const (
	KindCluster   NodeKind = "cluster"
	KindDevice    NodeKind = "device"
	KindExternal  NodeKind = "external"
	KindVLANGroup NodeKind = "vlan_group"
)

// Node is one render-time entity. ClusterID is set only on member devices of
// an expanded cluster; the layout resolver moves those as a rigid group.
type Node struct {
	ID        string         `json:"id"`
	Kind      NodeKind       `json:"kind"`
	Label     string         `json:"label"`
	X         float64        `json:"x"`
	Y         float64        `json:"y"`
	Status    string         `json:"status,omitempty"`
	ClusterID string         `json:"cluster_id,omitempty"`
	Meta      map[string]any `json:"meta,omitempty"`
}

// Edge connects two nodes by id. Status is derived from the endpoint devices
// on every projection, not copied from the raw connection.
type Edge struct {
	ID          string         `json:"id"`
	Kind        string         `json:"kind"`
	From        string         `json:"from"`
	To          string         `json:"to"`
	Status      string         `json:"status"`
	SpeedMbps   int            `json:"speed"`
	Utilization float64        `json:"utilization"`
	Meta        map[string]any `json:"meta,omitempty"`
}

// View is one complete projection.
type View struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// PositionSource resolves persisted node positions. The position store
// satisfies this; tests use a plain map.
type PositionSource interface {
	Position(id string) (x, y float64, ok bool)
}

// ExternalNodeID names the deduplicated node for an external endpoint label.
func ExternalNodeID(label string) string { return "ext:" + label }
