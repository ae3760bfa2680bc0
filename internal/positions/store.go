package positions

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"watchtower/dashd/internal/topo"
)

// StorageKey is the fixed namespace the coordinate map lives under.
const StorageKey = "watchtower:positions"

// Store is the persisted map of node id to coordinate. Storage failures are
// never surfaced to callers: a broken or missing backend behaves like an
// empty store.
type Store struct {
	log   zerolog.Logger
	kv    KV
	cache map[string]topo.Position
}

// New loads the persisted map. Corrupt documents are treated as empty;
// individually corrupt entries are dropped, falling back to the computed
// default for that id only.
func New(ctx context.Context, kv KV, log zerolog.Logger) *Store {
	s := &Store{
		log:   log.With().Str("component", "positions").Logger(),
		kv:    kv,
		cache: make(map[string]topo.Position),
	}

	raw, ok, err := kv.Get(ctx, StorageKey)
	if err != nil {
		s.log.Warn().Err(err).Msg("position storage unavailable, starting empty")
		return s
	}
	if !ok {
		return s
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		s.log.Warn().Err(err).Msg("position storage corrupt, starting empty")
		return s
	}
	for id, entry := range entries {
		var p topo.Position
		if err := json.Unmarshal(entry, &p); err != nil {
			s.log.Debug().Str("node_id", id).Msg("dropping corrupt position entry")
			continue
		}
		s.cache[id] = p
	}
	return s
}

// Get returns the stored position for a node id, if any.
func (s *Store) Get(id string) (topo.Position, bool) {
	p, ok := s.cache[id]
	return p, ok
}

// Position satisfies graphview.PositionSource.
func (s *Store) Position(id string) (float64, float64, bool) {
	p, ok := s.cache[id]
	return p.X, p.Y, ok
}

// Set stores one position and persists the map.
func (s *Store) Set(ctx context.Context, id string, p topo.Position) {
	s.cache[id] = p
	s.persist(ctx)
}

// SetAll stores a batch of positions and persists once.
func (s *Store) SetAll(ctx context.Context, entries map[string]topo.Position) {
	for id, p := range entries {
		s.cache[id] = p
	}
	s.persist(ctx)
}

// Clear empties the store and removes the persisted document.
func (s *Store) Clear(ctx context.Context) {
	s.cache = make(map[string]topo.Position)
	if err := s.kv.Delete(ctx, StorageKey); err != nil {
		s.log.Warn().Err(err).Msg("failed to clear persisted positions")
	}
}

// Len reports the number of stored entries.
func (s *Store) Len() int { return len(s.cache) }

func (s *Store) persist(ctx context.Context) {
	raw, err := json.Marshal(s.cache)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to encode positions")
		return
	}
	if err := s.kv.Set(ctx, StorageKey, string(raw)); err != nil {
		s.log.Warn().Err(err).Msg("failed to persist positions")
	}
}
