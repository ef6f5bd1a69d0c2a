package signal

import (
	"context"
	"sync"
)

// ObserveValue subscribes to a signal and streams its values on a Go
// channel, starting with the current value once known. The subscription
// is released and the channel closed when ctx ends; the internal queue is
// unbounded so the backend monitor is never blocked by a slow consumer.
func ObserveValue(ctx context.Context, s *SignalR) (<-chan any, error) {
	var (
		mu      sync.Mutex
		queue   []any
		stopped bool
	)
	cond := sync.NewCond(&mu)

	sub, err := s.SubscribeValue(func(v any) {
		mu.Lock()
		if !stopped {
			queue = append(queue, v)
			cond.Signal()
		}
		mu.Unlock()
	})
	if err != nil {
		return nil, err
	}

	stop := func() {
		mu.Lock()
		stopped = true
		mu.Unlock()
		cond.Broadcast()
	}
	go func() {
		<-ctx.Done()
		s.ClearSub(sub)
		stop()
	}()

	out := make(chan any)
	go func() {
		defer close(out)
		for {
			mu.Lock()
			for len(queue) == 0 && !stopped {
				cond.Wait()
			}
			if len(queue) == 0 {
				mu.Unlock()
				return
			}
			v := queue[0]
			queue = queue[1:]
			mu.Unlock()

			select {
			case out <- v:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
