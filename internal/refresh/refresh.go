// Package refresh drives the periodic full-snapshot fetches that keep the
// dashboard state correct regardless of what the stream missed.
package refresh

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"watchtower/dashd/internal/metrics"
	"watchtower/dashd/internal/state"
	"watchtower/dashd/internal/topo"
)

// Source is the slice of the upstream client the refresher needs.
type Source interface {
	Topology(ctx context.Context) (*topo.Topology, error)
	L3Topology(ctx context.Context) (*topo.L3Topology, error)
	Alerts(ctx context.Context, status string) ([]topo.Alert, error)
}

// Options tune the refresh cadence.
type Options struct {
	TopologyInterval time.Duration
	AlertInterval    time.Duration
}

type Refresher struct {
	log     zerolog.Logger
	src     Source
	store   *state.Store
	metrics *metrics.Metrics

	topoInterval  time.Duration
	alertInterval time.Duration
}

func New(log zerolog.Logger, src Source, store *state.Store, m *metrics.Metrics, opts Options) *Refresher {
	ti := opts.TopologyInterval
	if ti <= 0 {
		ti = 60 * time.Second
	}
	ai := opts.AlertInterval
	if ai <= 0 {
		ai = 30 * time.Second
	}
	return &Refresher{
		log:           log.With().Str("component", "refresh").Logger(),
		src:           src,
		store:         store,
		metrics:       m,
		topoInterval:  ti,
		alertInterval: ai,
	}
}

// Run performs the initial load, then refreshes on the configured intervals
// until ctx is cancelled. Only the initial load surfaces an error state to
// the UI; later failures are logged and retried on the next interval.
func (r *Refresher) Run(ctx context.Context) {
	if err := r.refreshTopology(ctx); err != nil {
		r.store.SetLoadError(err)
		r.log.Error().Err(err).Msg("initial topology load failed")
	}
	r.refreshAlerts(ctx)

	topoTicker := time.NewTicker(r.topoInterval)
	defer topoTicker.Stop()
	alertTicker := time.NewTicker(r.alertInterval)
	defer alertTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-topoTicker.C:
			if err := r.refreshTopology(ctx); err != nil {
				r.log.Warn().Err(err).Msg("topology refresh failed")
			}
		case <-alertTicker.C:
			r.refreshAlerts(ctx)
		}
	}
}

func (r *Refresher) refreshTopology(ctx context.Context) error {
	t, err := r.src.Topology(ctx)
	if err != nil {
		r.metrics.IncRefreshFailure("topology")
		return err
	}
	r.store.SetTopology(t)

	l3, err := r.src.L3Topology(ctx)
	if err != nil {
		r.metrics.IncRefreshFailure("l3_topology")
		r.log.Warn().Err(err).Msg("l3 topology refresh failed")
		return nil
	}
	r.store.SetL3Topology(l3)
	return nil
}

func (r *Refresher) refreshAlerts(ctx context.Context) {
	list, err := r.src.Alerts(ctx, string(topo.AlertActive))
	if err != nil {
		r.metrics.IncRefreshFailure("alerts")
		r.log.Warn().Err(err).Msg("alert refresh failed")
		return
	}
	r.store.SeedAlerts(list)
}
