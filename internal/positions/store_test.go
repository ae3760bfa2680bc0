package positions

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"watchtower/dashd/internal/topo"
)

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()

	s := New(ctx, kv, zerolog.Nop())
	s.Set(ctx, "core", topo.Position{X: 10, Y: 20})
	s.SetAll(ctx, map[string]topo.Position{
		"edge":       {X: 30, Y: 40},
		"ext:Campus": {X: -280, Y: 60},
	})

	// A fresh store over the same backend sees everything persisted.
	reloaded := New(ctx, kv, zerolog.Nop())
	if reloaded.Len() != 3 {
		t.Fatalf("expected 3 entries after reload, got %d", reloaded.Len())
	}
	p, ok := reloaded.Get("core")
	if !ok || p.X != 10 || p.Y != 20 {
		t.Fatalf("core round trip failed: %+v ok=%v", p, ok)
	}
	x, y, ok := reloaded.Position("edge")
	if !ok || x != 30 || y != 40 {
		t.Fatalf("edge position lookup failed: (%v,%v) ok=%v", x, y, ok)
	}
}

func TestStoreClear(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()

	s := New(ctx, kv, zerolog.Nop())
	s.Set(ctx, "core", topo.Position{X: 1, Y: 2})
	s.Clear(ctx)

	if s.Len() != 0 {
		t.Fatalf("expected empty store after clear, got %d", s.Len())
	}
	if _, ok, _ := kv.Get(ctx, StorageKey); ok {
		t.Fatalf("expected persisted document removed")
	}
}

func TestStoreCorruptDocumentStartsEmpty(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	if err := kv.Set(ctx, StorageKey, "not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	s := New(ctx, kv, zerolog.Nop())
	if s.Len() != 0 {
		t.Fatalf("expected corrupt document treated as empty, got %d entries", s.Len())
	}
}

func TestStoreCorruptEntryDropped(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	doc := `{"good":{"x":7,"y":8},"bad":"nope"}`
	if err := kv.Set(ctx, StorageKey, doc); err != nil {
		t.Fatalf("seed: %v", err)
	}

	s := New(ctx, kv, zerolog.Nop())
	if s.Len() != 1 {
		t.Fatalf("expected only the valid entry kept, got %d", s.Len())
	}
	if p, ok := s.Get("good"); !ok || p.X != 7 || p.Y != 8 {
		t.Fatalf("valid entry lost: %+v ok=%v", p, ok)
	}
	if _, ok := s.Get("bad"); ok {
		t.Fatalf("corrupt entry retained")
	}
}

type failingKV struct{}

func (failingKV) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("backend down")
}
func (failingKV) Set(context.Context, string, string) error { return errors.New("backend down") }
func (failingKV) Delete(context.Context, string) error      { return errors.New("backend down") }

func TestStoreBackendFailureBehavesEmpty(t *testing.T) {
	ctx := context.Background()
	s := New(ctx, failingKV{}, zerolog.Nop())
	if s.Len() != 0 {
		t.Fatalf("expected empty store, got %d", s.Len())
	}

	// Writes are best effort; the cache still serves the session.
	s.Set(ctx, "core", topo.Position{X: 1, Y: 1})
	if _, ok := s.Get("core"); !ok {
		t.Fatalf("expected in-memory cache to hold the value")
	}
}
