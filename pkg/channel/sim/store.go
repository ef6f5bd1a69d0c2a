package sim

import (
	"sync"

	"github.com/sigflow/sigflow-go/pkg/channel"
)

// Store owns the simulated channels for one registry. Channels are
// deduplicated by pv name, so two signals naming the same pv observe a
// single shared backend value. Separate stores are fully isolated.
type Store struct {
	mu       sync.Mutex
	channels map[string]*Channel
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{channels: make(map[string]*Channel)}
}

// Channel returns the simulated channel for pv, creating it with kind on
// first use. A pv already held with a different kind is a wiring error
// and is reported as a type mismatch against the existing channel.
func (s *Store) Channel(pv string, kind channel.Kind) (*Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.channels[pv]; ok {
		if existing.kind != kind {
			return nil, &channel.TypeMismatchError{
				Source:    existing.Source(),
				Requested: kind,
				Actual:    existing.kind,
			}
		}
		return existing, nil
	}
	c := New(pv, kind)
	s.channels[pv] = c
	return c, nil
}

// Add registers a pre-built channel, typically one created with NewEnum
// or seeded by a profile. It replaces any channel already held for the pv.
func (s *Store) Add(c *Channel) {
	s.mu.Lock()
	s.channels[c.pv] = c
	s.mu.Unlock()
}

// Lookup returns the channel for pv if the store holds one.
func (s *Store) Lookup(pv string) (*Channel, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.channels[pv]
	return c, ok
}

// PVs returns the pv names the store currently holds.
func (s *Store) PVs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	pvs := make([]string, 0, len(s.channels))
	for pv := range s.channels {
		pvs = append(pvs, pv)
	}
	return pvs
}
