// Package alerts keeps the live alert collection, the bounded toast queue,
// and the critical-overlay singleton.
package alerts

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"watchtower/dashd/internal/topo"
)

// MaxToasts caps the visible toast queue; the oldest toast beyond the cap is
// dropped outright, not hidden.
const MaxToasts = 5

// DismissDelay is how long a dismissed toast lingers for its exit animation
// before removal.
const DismissDelay = 300 * time.Millisecond

// Toast is an ephemeral wrapper around an alert, with its own id.
type Toast struct {
	ID        string     `json:"id"`
	Alert     topo.Alert `json:"alert"`
	Dismissed bool       `json:"dismissed"`
}

// Store holds alerts newest-first. All methods are safe for concurrent use.
type Store struct {
	log zerolog.Logger

	mu      sync.Mutex
	alerts  []topo.Alert
	toasts  []Toast
	overlay *topo.Alert
	timers  map[string]*time.Timer
	closed  bool
}

func New(log zerolog.Logger) *Store {
	return &Store{
		log:    log.With().Str("component", "alerts").Logger(),
		timers: make(map[string]*time.Timer),
	}
}

// Add prepends an alert, spawns its toast, and replaces the critical overlay
// when the severity is critical.
func (s *Store) Add(a topo.Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.alerts = append([]topo.Alert{a}, s.alerts...)

	s.toasts = append([]Toast{{ID: uuid.NewString(), Alert: a}}, s.toasts...)
	for len(s.toasts) > MaxToasts {
		dropped := s.toasts[len(s.toasts)-1]
		s.toasts = s.toasts[:len(s.toasts)-1]
		s.stopTimerLocked(dropped.ID)
	}

	if a.Severity == topo.SeverityCritical {
		overlay := a
		s.overlay = &overlay
	}
}

// Remove deletes an alert (stream-pushed resolution). A removed alert also
// clears the overlay if it was showing.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, a := range s.alerts {
		if a.ID == id {
			s.alerts = append(s.alerts[:i], s.alerts[i+1:]...)
			break
		}
	}
	if s.overlay != nil && s.overlay.ID == id {
		s.overlay = nil
	}
}

// Acknowledge marks an alert acknowledged and clears the overlay if it was
// the overlay alert. It reports whether the alert exists.
func (s *Store) Acknowledge(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for i := range s.alerts {
		if s.alerts[i].ID == id {
			s.alerts[i].Status = topo.AlertAcknowledged
			found = true
			break
		}
	}
	if s.overlay != nil && s.overlay.ID == id {
		s.overlay = nil
	}
	return found
}

// DismissToast marks a toast dismissed immediately so the UI can animate it
// out, then removes it after DismissDelay.
func (s *Store) DismissToast(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	for i := range s.toasts {
		if s.toasts[i].ID != id || s.toasts[i].Dismissed {
			continue
		}
		s.toasts[i].Dismissed = true
		s.timers[id] = time.AfterFunc(DismissDelay, func() {
			s.removeToast(id)
		})
		return
	}
}

// DismissOverlay clears the critical overlay without acknowledging the alert.
func (s *Store) DismissOverlay() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overlay = nil
}

// Replace swaps the alert list for the periodic-pull result. Toasts and the
// overlay belong to pushed alerts and are left alone.
func (s *Store) Replace(list []topo.Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append([]topo.Alert(nil), list...)
}

// List returns a copy of the alert list, newest first.
func (s *Store) List() []topo.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]topo.Alert(nil), s.alerts...)
}

// Toasts returns a copy of the visible toast queue, newest first.
func (s *Store) Toasts() []Toast {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Toast(nil), s.toasts...)
}

// Overlay returns the current critical-overlay alert, if any.
func (s *Store) Overlay() *topo.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.overlay == nil {
		return nil
	}
	overlay := *s.overlay
	return &overlay
}

// CountBySeverity tallies non-resolved alerts per severity.
func (s *Store) CountBySeverity() map[topo.AlertSeverity]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[topo.AlertSeverity]int)
	for _, a := range s.alerts {
		if a.Status == topo.AlertResolved {
			continue
		}
		out[a.Severity]++
	}
	return out
}

// Close cancels all pending toast-removal timers.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}

func (s *Store) removeToast(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.toasts {
		if s.toasts[i].ID == id {
			s.toasts = append(s.toasts[:i], s.toasts[i+1:]...)
			break
		}
	}
	delete(s.timers, id)
}

func (s *Store) stopTimerLocked(id string) {
	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
}
