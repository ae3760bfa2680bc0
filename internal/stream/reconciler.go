// Package stream maintains the long-lived websocket to the monitoring
// backend and reconciles its event frames onto the shared dashboard state.
// Delivery is at-most-once and best-effort: the periodic full refresh is the
// correction mechanism, not retries here.
package stream

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"watchtower/dashd/internal/metrics"
	"watchtower/dashd/internal/topo"
)

// ConnState is the reconciler's connection state.
type ConnState string

const (
	StateDisconnected ConnState = "disconnected"
	StateConnecting   ConnState = "connecting"
	StateConnected    ConnState = "connected"
)

// PingInterval is the keepalive cadence while connected.
const PingInterval = 30 * time.Second

// maxBackoff caps the reconnect delay.
const maxBackoff = 30 * time.Second

// Backoff returns the reconnect delay for the given attempt count:
// min(1s * 2^attempts, 30s).
func Backoff(attempts int) time.Duration {
	if attempts >= 5 {
		return maxBackoff
	}
	return time.Duration(1<<attempts) * time.Second
}

// TopologyStore is the slice of the state store the reconciler writes to.
type TopologyStore interface {
	DeviceIdentities() []topo.DeviceIdentity
	ApplyDeviceStatus(id string, status topo.DeviceStatus) bool
	AddAlerts(batch []topo.Alert)
	ResolveAlerts(ids []string)
	SetSpeedtest(r topo.SpeedtestResult)
}

// Reconciler dials the stream endpoint and applies event frames to the
// store. It reconnects forever with exponential backoff; cancelling the Run
// context tears down the connection and every pending timer.
type Reconciler struct {
	log     zerolog.Logger
	url     string
	store   TopologyStore
	metrics *metrics.Metrics

	mu       sync.Mutex
	state    ConnState
	attempts int

	speedtests chan topo.SpeedtestResult
}

func New(url string, store TopologyStore, m *metrics.Metrics, log zerolog.Logger) *Reconciler {
	return &Reconciler{
		log:        log.With().Str("component", "stream").Logger(),
		url:        url,
		store:      store,
		metrics:    m,
		state:      StateDisconnected,
		speedtests: make(chan topo.SpeedtestResult, 8),
	}
}

// Speedtests is the side channel for speed-test results. Slow consumers lose
// samples rather than blocking dispatch.
func (r *Reconciler) Speedtests() <-chan topo.SpeedtestResult { return r.speedtests }

// Status reports the connection state and the current reconnect attempt
// counter.
func (r *Reconciler) Status() (ConnState, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state, r.attempts
}

// Run connects, serves, and reconnects until ctx is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	for {
		r.setState(StateConnecting)
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, r.url, nil)
		if err != nil {
			r.setState(StateDisconnected)
			if ctx.Err() != nil {
				return
			}
			r.log.Warn().Err(err).Str("url", r.url).Msg("stream dial failed")
			if !r.waitBackoff(ctx) {
				return
			}
			continue
		}

		r.setState(StateConnected)
		r.mu.Lock()
		r.attempts = 0
		r.mu.Unlock()
		r.log.Info().Str("url", r.url).Msg("stream connected")

		r.serve(ctx, conn)
		r.setState(StateDisconnected)
		if ctx.Err() != nil {
			return
		}
		r.metrics.IncStreamReconnect()
		if !r.waitBackoff(ctx) {
			return
		}
	}
}

// waitBackoff sleeps for the current backoff delay and bumps the attempt
// counter. It returns false when ctx is cancelled, with the timer stopped.
func (r *Reconciler) waitBackoff(ctx context.Context) bool {
	r.mu.Lock()
	delay := Backoff(r.attempts)
	r.attempts++
	r.mu.Unlock()

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// serve reads frames until the connection drops or ctx is cancelled. A
// keepalive ping goes out every PingInterval; the ping goroutine owns no
// state and dies with the connection.
func (r *Reconciler) serve(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close()
	done := make(chan struct{})
	defer close(done)

	go func() {
		ticker := time.NewTicker(PingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				conn.Close()
				return
			case <-ticker.C:
				if err := conn.WriteJSON(map[string]string{"type": "ping"}); err != nil {
					conn.Close()
					return
				}
			}
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				r.log.Warn().Err(err).Msg("stream read failed")
			}
			return
		}
		r.handleMessage(data)
	}
}

// handleMessage dispatches one frame. Malformed frames are dropped with a
// log line; the connection stays open.
func (r *Reconciler) handleMessage(data []byte) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		r.log.Warn().Err(err).Msg("dropping malformed stream frame")
		return
	}
	r.metrics.IncStreamMessage(env.Type)

	switch env.Type {
	case "device_status_change":
		var f statusChangeFrame
		if err := json.Unmarshal(data, &f); err != nil {
			r.log.Warn().Err(err).Msg("dropping malformed status-change frame")
			return
		}
		r.applyStatusChanges(f.Changes)

	case "new_alerts":
		var f newAlertsFrame
		if err := json.Unmarshal(data, &f); err != nil {
			r.log.Warn().Err(err).Msg("dropping malformed new-alerts frame")
			return
		}
		r.applyNewAlerts(f.Alerts)

	case "alerts_resolved":
		var f alertsResolvedFrame
		if err := json.Unmarshal(data, &f); err != nil {
			r.log.Warn().Err(err).Msg("dropping malformed alerts-resolved frame")
			return
		}
		ids := make([]string, 0, len(f.AlertIDs))
		for _, id := range f.AlertIDs {
			ids = append(ids, strconv.FormatInt(id, 10))
		}
		r.store.ResolveAlerts(ids)

	case "speedtest_result":
		var f speedtestFrame
		if err := json.Unmarshal(data, &f); err != nil {
			r.log.Warn().Err(err).Msg("dropping malformed speedtest frame")
			return
		}
		r.store.SetSpeedtest(f.Result)
		select {
		case r.speedtests <- f.Result:
		default:
		}

	case "pong", "connected":
		// keepalive / greeting, nothing to do

	default:
		r.log.Debug().Str("type", env.Type).Msg("ignoring unrecognized stream frame")
	}
}

// applyStatusChanges resolves each entry's hostname and mutates the device
// status. Unresolved entries are dropped individually, never the batch.
func (r *Reconciler) applyStatusChanges(changes []statusChange) {
	idents := r.store.DeviceIdentities()
	for _, c := range changes {
		id, ok := FindTopologyDeviceID(c.Hostname, idents)
		if !ok {
			r.log.Debug().Str("hostname", c.Hostname).Msg("dropping status change for unknown device")
			r.metrics.IncStreamDropped()
			continue
		}
		if !r.store.ApplyDeviceStatus(id, topo.DeviceStatus(c.NewStatus)) {
			r.metrics.IncStreamDropped()
		}
	}
}

// applyNewAlerts builds alerts from a push batch. A hostname that resolves
// to no device falls back to the foreign numeric device id as a string.
func (r *Reconciler) applyNewAlerts(events []alertEvent) {
	idents := r.store.DeviceIdentities()
	batch := make([]topo.Alert, 0, len(events))
	for _, e := range events {
		deviceID, ok := FindTopologyDeviceID(e.Hostname, idents)
		if !ok {
			deviceID = strconv.FormatInt(e.DeviceID, 10)
		}
		ts, err := time.Parse(time.RFC3339, e.Timestamp)
		if err != nil {
			ts = time.Now().UTC()
		}
		batch = append(batch, topo.Alert{
			ID:        strconv.FormatInt(e.ID, 10),
			DeviceID:  deviceID,
			Severity:  MapSeverity(e.Severity),
			Message:   e.Title,
			Status:    topo.AlertActive,
			Timestamp: ts,
		})
	}
	r.store.AddAlerts(batch)
}

func (r *Reconciler) setState(s ConnState) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}
