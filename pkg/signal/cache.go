package signal

import (
	"context"
	"sync"
	"time"

	"github.com/sigflow/sigflow-go/pkg/channel"
	"github.com/sigflow/sigflow-go/pkg/log"
)

// Subscription is the handle returned by Subscribe and SubscribeValue.
// Go funcs are not comparable, so listeners are identified by handle, not
// by callback identity.
type Subscription struct {
	wantValue bool
	fn        func(name string, reading channel.Reading)
	vfn       func(value any)
}

// cache is the reference-counted shared monitor of one SignalR. It is
// created lazily on the first Subscribe or Stage, holds exactly one
// backend monitor, and is torn down exactly once when the signal is
// unstaged and the last listener is gone.
type cache struct {
	signal *SignalR

	mu        sync.Mutex
	reading   channel.Reading
	validSet  bool
	valid     chan struct{}
	listeners map[*Subscription]struct{}
	staged    bool
	monitor   channel.Monitor
	closed    bool
}

func newCache(s *SignalR) *cache {
	return &cache{
		signal:    s,
		valid:     make(chan struct{}),
		listeners: make(map[*Subscription]struct{}),
	}
}

// onUpdate is the backend monitor callback. The first delivery marks the
// cache valid, releasing any reads waiting on it.
func (c *cache) onUpdate(reading channel.Reading, value any) {
	c.mu.Lock()
	c.reading = reading
	if !c.validSet {
		c.validSet = true
		close(c.valid)
	}
	subs := make([]*Subscription, 0, len(c.listeners))
	for sub := range c.listeners {
		subs = append(subs, sub)
	}
	c.mu.Unlock()

	name := c.signal.Name()
	for _, sub := range subs {
		sub.deliver(name, reading)
	}
}

func (sub *Subscription) deliver(name string, reading channel.Reading) {
	if sub.wantValue {
		sub.vfn(reading.Value)
		return
	}
	sub.fn(name, reading)
}

// get waits for the first monitor update, then returns the cached reading
// with no backend round trip.
func (c *cache) get(ctx context.Context) (channel.Reading, error) {
	select {
	case <-c.valid:
	case <-ctx.Done():
		return channel.Reading{}, ctx.Err()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reading, nil
}

// add registers a listener. If the cache is already valid the listener is
// invoked immediately with the current reading, before add returns.
func (c *cache) add(sub *Subscription) {
	c.mu.Lock()
	c.listeners[sub] = struct{}{}
	valid := c.validSet
	reading := c.reading
	c.mu.Unlock()

	if valid {
		sub.deliver(c.signal.Name(), reading)
	}
}

// ensureCache returns the signal's live cache, creating it and starting
// the single backend monitor on first use.
func (s *SignalR) ensureCache() (*cache, error) {
	s.mu.Lock()
	if s.cache != nil {
		c := s.cache
		s.mu.Unlock()
		return c, nil
	}
	c := newCache(s)
	s.cache = c
	ch := s.read
	s.mu.Unlock()

	// Starting the monitor outside the signal lock: backends may deliver
	// the priming update synchronously from inside Monitor.
	mon, err := ch.Monitor(c.onUpdate)
	if err != nil {
		s.mu.Lock()
		if s.cache == c {
			s.cache = nil
		}
		s.mu.Unlock()
		return nil, err
	}
	c.mu.Lock()
	if c.closed {
		// A concurrent release already retired this cache.
		c.mu.Unlock()
		mon.Close()
		return c, nil
	}
	c.monitor = mon
	c.mu.Unlock()

	s.logger.Log(log.Event{
		Timestamp: time.Now(),
		Category:  log.CategoryCache,
		Signal:    s.Name(),
		Source:    ch.Source(),
		Message:   "cache created",
	})
	return c, nil
}

// release re-evaluates the cache lifetime rule after a listener removal
// or unstage: once unstaged and listener-free, the cache detaches from
// the signal and its single monitor is closed exactly once.
func (s *SignalR) release(c *cache) {
	s.mu.Lock()
	c.mu.Lock()
	idle := !c.staged && len(c.listeners) == 0
	var mon channel.Monitor
	if idle && !c.closed {
		c.closed = true
		mon = c.monitor
		if s.cache == c {
			s.cache = nil
		}
	}
	c.mu.Unlock()
	s.mu.Unlock()

	if mon != nil {
		mon.Close()
		s.logger.Log(log.Event{
			Timestamp: time.Now(),
			Category:  log.CategoryCache,
			Signal:    s.Name(),
			Message:   "cache destroyed",
		})
	}
}
