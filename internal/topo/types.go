// Package topo holds the wire-level topology documents produced by the
// monitoring backend, plus the small mutations the dashboard applies to them
// between full refreshes.
package topo

import (
	"sort"
	"time"
)

type DeviceStatus string

const (
	StatusUp       DeviceStatus = "up"
	StatusDown     DeviceStatus = "down"
	StatusDegraded DeviceStatus = "degraded"
	StatusUnknown  DeviceStatus = "unknown"
)

type DeviceType string

const (
	TypeSwitch      DeviceType = "switch"
	TypeFirewall    DeviceType = "firewall"
	TypeServer      DeviceType = "server"
	TypeRouter      DeviceType = "router"
	TypeAccessPoint DeviceType = "access_point"
	TypeOther       DeviceType = "other"
)

// Interface is one network interface on a device.
type Interface struct {
	Name        string       `json:"name"`
	Status      DeviceStatus `json:"status"`
	Alias       *string      `json:"alias,omitempty"`
	IsTrunk     bool         `json:"is_trunk"`
	SpeedMbps   int          `json:"speed"`
	InBps       int64        `json:"in_bps"`
	OutBps      int64        `json:"out_bps"`
	Utilization float64      `json:"utilization"`
	VLANID      *int         `json:"vlan_id,omitempty"`
	VLANName    *string      `json:"vlan_name,omitempty"`
	TaggedVLANs []int        `json:"tagged_vlans,omitempty"`
}

// Device is replaced wholesale on each topology fetch; only Status is mutated
// in place by the stream reconciler between fetches.
type Device struct {
	ID          string       `json:"id"`
	DisplayName string       `json:"display_name"`
	Model       *string      `json:"model,omitempty"`
	Type        DeviceType   `json:"device_type"`
	IP          *string      `json:"ip,omitempty"`
	Location    *string      `json:"location,omitempty"`
	Status      DeviceStatus `json:"status"`
	ClusterID   *string      `json:"cluster_id,omitempty"`
	Interfaces  []Interface  `json:"interfaces,omitempty"`
	AlertCount  int          `json:"alert_count"`
}

// Position is a canvas coordinate.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// IsOrigin reports whether the position was never set upstream.
func (p Position) IsOrigin() bool { return p.X == 0 && p.Y == 0 }

// Cluster is a named, collapsible group of devices.
type Cluster struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	ClusterType string   `json:"cluster_type"`
	Icon        string   `json:"icon"`
	Position    Position `json:"position"`
	DeviceIDs   []string `json:"device_ids"`
	Status      string   `json:"status"`
}

type ConnectionStatus string

const (
	LinkUp       ConnectionStatus = "up"
	LinkDown     ConnectionStatus = "down"
	LinkDegraded ConnectionStatus = "degraded"
)

// Endpoint is one end of a connection. Device is nil for external ends.
type Endpoint struct {
	Device   *string `json:"device,omitempty"`
	Port     *string `json:"port,omitempty"`
	Label    *string `json:"label,omitempty"`
	External bool    `json:"external"`
}

// Connection links two monitored devices.
type Connection struct {
	ID          string           `json:"id"`
	Source      Endpoint         `json:"source"`
	Target      Endpoint         `json:"target"`
	Type        string           `json:"connection_type"`
	SpeedMbps   int              `json:"speed"`
	Status      ConnectionStatus `json:"status"`
	Utilization float64          `json:"utilization"`
	InBps       int64            `json:"in_bps"`
	OutBps      int64            `json:"out_bps"`
}

// ExternalTarget is the unmonitored far end of an external link.
type ExternalTarget struct {
	Label    string `json:"label"`
	Type     string `json:"type"`
	Icon     string `json:"icon"`
	External bool   `json:"external"`
}

// ExternalLink connects a monitored device to an unmonitored endpoint
// (campus uplink, IX, cloud provider).
type ExternalLink struct {
	ID          string           `json:"id"`
	Source      Endpoint         `json:"source"`
	Target      ExternalTarget   `json:"target"`
	Provider    *string          `json:"provider,omitempty"`
	CircuitID   *string          `json:"circuit_id,omitempty"`
	SpeedMbps   int              `json:"speed"`
	Status      ConnectionStatus `json:"status"`
	Utilization float64          `json:"utilization"`
}

// Topology is the full snapshot document. Devices is keyed by stable device
// id; the aggregate counters must always match derived counts from the device
// map after any mutation.
type Topology struct {
	Clusters      []Cluster          `json:"clusters"`
	Devices       map[string]*Device `json:"devices"`
	Connections   []Connection       `json:"connections"`
	ExternalLinks []ExternalLink     `json:"external_links"`

	TotalDevices int `json:"total_devices"`
	DevicesUp    int `json:"devices_up"`
	DevicesDown  int `json:"devices_down"`
	ActiveAlerts int `json:"active_alerts"`
}

// Recount rebuilds the device counters from the device map. Degraded and
// unknown devices count in neither the up nor the down bucket.
func (t *Topology) Recount() {
	t.TotalDevices = len(t.Devices)
	t.DevicesUp = 0
	t.DevicesDown = 0
	for _, d := range t.Devices {
		switch d.Status {
		case StatusUp:
			t.DevicesUp++
		case StatusDown:
			t.DevicesDown++
		}
	}
}

// SetDeviceStatus mutates one device's status and moves the up/down counters
// transactionally. It reports whether the device exists; a no-op status is
// still a success.
func (t *Topology) SetDeviceStatus(id string, status DeviceStatus) bool {
	d, ok := t.Devices[id]
	if !ok {
		return false
	}
	if d.Status == status {
		return true
	}
	switch d.Status {
	case StatusUp:
		t.DevicesUp--
	case StatusDown:
		t.DevicesDown--
	}
	switch status {
	case StatusUp:
		t.DevicesUp++
	case StatusDown:
		t.DevicesDown++
	}
	d.Status = status
	return true
}

// DeviceIdentity is the slice of a device the stream reconciler matches
// foreign hostnames against.
type DeviceIdentity struct {
	ID string
	IP string
}

// Identities returns the device identity list sorted by id so that fuzzy
// hostname matching scans in a stable order.
func (t *Topology) Identities() []DeviceIdentity {
	out := make([]DeviceIdentity, 0, len(t.Devices))
	for id, d := range t.Devices {
		ident := DeviceIdentity{ID: id}
		if d.IP != nil {
			ident.IP = *d.IP
		}
		out = append(out, ident)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Summary carries the aggregate header stats.
type Summary struct {
	TotalDevices    int `json:"total_devices"`
	DevicesUp       int `json:"devices_up"`
	DevicesDown     int `json:"devices_down"`
	DevicesDegraded int `json:"devices_degraded"`
	ActiveAlerts    int `json:"active_alerts"`
	CriticalAlerts  int `json:"critical_alerts"`
	WarningAlerts   int `json:"warning_alerts"`
}

type AlertSeverity string

const (
	SeverityCritical AlertSeverity = "critical"
	SeverityWarning  AlertSeverity = "warning"
	SeverityInfo     AlertSeverity = "info"
	SeverityRecovery AlertSeverity = "recovery"
)

type AlertStatus string

const (
	AlertActive       AlertStatus = "active"
	AlertAcknowledged AlertStatus = "acknowledged"
	AlertResolved     AlertStatus = "resolved"
)

// Alert is one monitoring alert, created by the stream reconciler or the
// periodic alert pull.
type Alert struct {
	ID        string        `json:"id"`
	DeviceID  string        `json:"device_id"`
	Severity  AlertSeverity `json:"severity"`
	Message   string        `json:"message"`
	Status    AlertStatus   `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
}

// SpeedtestResult is carried opaquely through the stream side channel and
// retained as the latest sample for the dashboard widget.
type SpeedtestResult struct {
	Timestamp      string  `json:"timestamp"`
	DownloadMbps   float64 `json:"download_mbps"`
	UploadMbps     float64 `json:"upload_mbps"`
	PingMs         float64 `json:"ping_ms"`
	JitterMs       float64 `json:"jitter_ms"`
	PacketLossPct  float64 `json:"packet_loss_pct"`
	ServerID       int     `json:"server_id"`
	ServerName     string  `json:"server_name"`
	ServerLocation string  `json:"server_location"`
	ResultURL      string  `json:"result_url"`
	Status         string  `json:"status"`
}
