// Package state owns the process-wide dashboard state: the latest topology
// snapshots, the alert store, expand/collapse and filter UI state, and the
// position store. All mutation goes through methods on Store so that the two
// writers (the stream reconciler and the periodic refresher) and any number
// of readers see only complete intermediate states.
package state

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"watchtower/dashd/internal/alerts"
	"watchtower/dashd/internal/graphview"
	"watchtower/dashd/internal/layout"
	"watchtower/dashd/internal/positions"
	"watchtower/dashd/internal/topo"
)

// Selection is the UI's currently selected entity.
type Selection struct {
	Kind string `json:"kind"` // "device" or "connection"
	ID   string `json:"id"`
}

// Store is the composition root's single state object.
type Store struct {
	log zerolog.Logger

	mu        sync.Mutex
	topology  *topo.Topology
	l3        *topo.L3Topology
	alerts    *alerts.Store
	positions *positions.Store

	expanded   map[string]bool
	vlanFilter map[int]bool
	selection  *Selection
	speedtest  *topo.SpeedtestResult
	loadErr    error
	loaded     bool

	rev  uint64
	subs map[chan struct{}]struct{}

	lastPasses int
}

func New(log zerolog.Logger, alertStore *alerts.Store, posStore *positions.Store) *Store {
	return &Store{
		log:       log.With().Str("component", "state").Logger(),
		alerts:    alertStore,
		positions: posStore,
		expanded:  make(map[string]bool),
		subs:      make(map[chan struct{}]struct{}),
	}
}

// Subscribe returns a channel that receives a coalesced signal after every
// mutation, and a cancel function.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()
	return ch, func() {
		s.mu.Lock()
		delete(s.subs, ch)
		s.mu.Unlock()
	}
}

// Revision returns the mutation counter.
func (s *Store) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rev
}

func (s *Store) notifyLocked() {
	s.rev++
	for ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// SetTopology replaces the topology snapshot. Counters are rebuilt from the
// device map so the counter invariant holds regardless of what the fetch
// carried.
func (s *Store) SetTopology(t *topo.Topology) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t != nil {
		if t.Devices == nil {
			t.Devices = make(map[string]*topo.Device)
		}
		t.Recount()
	}
	s.topology = t
	s.loaded = true
	s.loadErr = nil
	s.notifyLocked()
}

// SetL3Topology replaces the layer-3 snapshot.
func (s *Store) SetL3Topology(l3 *topo.L3Topology) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.l3 = l3
	s.notifyLocked()
}

// SetLoadError records an initial-load failure for the UI. Once any snapshot
// has loaded, later refresh failures are not surfaced.
func (s *Store) SetLoadError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return
	}
	s.loadErr = err
	s.notifyLocked()
}

// LoadError returns the initial-load error, if the first load failed.
func (s *Store) LoadError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

// ApplyDeviceStatus mutates one device's status, keeping the up/down
// counters in step. It reports whether the device exists.
func (s *Store) ApplyDeviceStatus(id string, status topo.DeviceStatus) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.topology == nil {
		return false
	}
	if !s.topology.SetDeviceStatus(id, status) {
		return false
	}
	s.notifyLocked()
	return true
}

// DeviceIdentities snapshots the identity list for fuzzy hostname matching.
func (s *Store) DeviceIdentities() []topo.DeviceIdentity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.topology == nil {
		return nil
	}
	return s.topology.Identities()
}

// AddAlerts pushes stream alerts into the alert store and raises the active
// counter by the batch size.
func (s *Store) AddAlerts(batch []topo.Alert) {
	if len(batch) == 0 {
		return
	}
	for _, a := range batch {
		s.alerts.Add(a)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.topology != nil {
		s.topology.ActiveAlerts += len(batch)
	}
	s.notifyLocked()
}

// ResolveAlerts removes resolved alerts and lowers the active counter,
// clamped at zero.
func (s *Store) ResolveAlerts(ids []string) {
	if len(ids) == 0 {
		return
	}
	for _, id := range ids {
		s.alerts.Remove(id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.topology != nil {
		s.topology.ActiveAlerts -= len(ids)
		if s.topology.ActiveAlerts < 0 {
			s.topology.ActiveAlerts = 0
		}
	}
	s.notifyLocked()
}

// SeedAlerts replaces the alert list from the periodic pull.
func (s *Store) SeedAlerts(list []topo.Alert) {
	s.alerts.Replace(list)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifyLocked()
}

// AcknowledgeAlert acknowledges locally; the upstream call is the caller's
// concern.
func (s *Store) AcknowledgeAlert(id string) bool {
	ok := s.alerts.Acknowledge(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifyLocked()
	return ok
}

// DismissToast forwards to the alert store.
func (s *Store) DismissToast(id string) {
	s.alerts.DismissToast(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifyLocked()
}

// SetSpeedtest stores the latest speedtest sample.
func (s *Store) SetSpeedtest(r topo.SpeedtestResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.speedtest = &r
	s.notifyLocked()
}

// Speedtest returns the latest sample, if any.
func (s *Store) Speedtest() *topo.SpeedtestResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.speedtest == nil {
		return nil
	}
	r := *s.speedtest
	return &r
}

// SetSelection records the selected device/connection; nil clears it.
func (s *Store) SetSelection(sel *Selection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = sel
	s.notifyLocked()
}

// Selection returns the current selection, if any.
func (s *Store) Selection() *Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selection == nil {
		return nil
	}
	sel := *s.selection
	return &sel
}

// SetVLANFilter sets the logical view's VLAN filter; empty means all VLANs.
func (s *Store) SetVLANFilter(vlanIDs []int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(vlanIDs) == 0 {
		s.vlanFilter = nil
	} else {
		s.vlanFilter = make(map[int]bool, len(vlanIDs))
		for _, id := range vlanIDs {
			s.vlanFilter[id] = true
		}
	}
	s.notifyLocked()
}

// SetPosition persists a drag-end coordinate for one node.
func (s *Store) SetPosition(ctx context.Context, id string, p topo.Position) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.positions.Set(ctx, id, p)
	s.notifyLocked()
}

// ToggleCluster flips a cluster's expanded state. Because that is a
// structural change, the physical projection is re-resolved once and the
// resolved positions persisted so later projections reuse the layout.
func (s *Store) ToggleCluster(ctx context.Context, clusterID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expanded[clusterID] = !s.expanded[clusterID]
	expanded := s.expanded[clusterID]
	s.resolveAndPersistLocked(ctx)
	s.notifyLocked()
	return expanded
}

// ExpandedClusters returns the expanded cluster ids.
func (s *Store) ExpandedClusters() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for id, on := range s.expanded {
		if on {
			out = append(out, id)
		}
	}
	return out
}

// ResetLayout clears the position store and forces one resolution pass over
// default placements.
func (s *Store) ResetLayout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.positions.Clear(ctx)
	s.resolveAndPersistLocked(ctx)
	s.notifyLocked()
}

// PhysicalView projects the current physical view. Layout resolution is not
// run here: it runs only on structural change or reset, so it never fights a
// user drag.
func (s *Store) PhysicalView() graphview.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return graphview.ProjectPhysical(s.topology, s.expanded, s.positions)
}

// LogicalView projects the current VLAN view.
func (s *Store) LogicalView() graphview.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return graphview.ProjectLogical(s.l3, s.vlanFilter, s.positions)
}

// Summary derives the header stats from the device map and the alert store.
func (s *Store) Summary() topo.Summary {
	s.mu.Lock()
	t := s.topology
	var sum topo.Summary
	if t != nil {
		sum.TotalDevices = t.TotalDevices
		sum.DevicesUp = t.DevicesUp
		sum.DevicesDown = t.DevicesDown
		for _, d := range t.Devices {
			if d.Status == topo.StatusDegraded {
				sum.DevicesDegraded++
			}
		}
		sum.ActiveAlerts = t.ActiveAlerts
	}
	s.mu.Unlock()

	counts := s.alerts.CountBySeverity()
	sum.CriticalAlerts = counts[topo.SeverityCritical]
	sum.WarningAlerts = counts[topo.SeverityWarning]
	return sum
}

// Alerts exposes the alert store for read access and direct lifecycle calls.
func (s *Store) Alerts() *alerts.Store { return s.alerts }

// LayoutPasses reports how many passes the last resolution took.
func (s *Store) LayoutPasses() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPasses
}

func (s *Store) resolveAndPersistLocked(ctx context.Context) {
	nodes := graphview.ProjectPhysical(s.topology, s.expanded, s.positions).Nodes
	resolved, passes := layout.Resolve(nodes, s.expanded)
	s.lastPasses = passes

	entries := make(map[string]topo.Position, len(resolved))
	for _, n := range resolved {
		entries[n.ID] = topo.Position{X: n.X, Y: n.Y}
	}
	s.positions.SetAll(ctx, entries)
}
