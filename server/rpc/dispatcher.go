package rpc

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
)

// Dispatcher runs detached background work and gives the host process a
// drain hook, since nothing else joins these tasks: the HTTP response that
// spawned them has already been sent.
type Dispatcher struct {
	wg sync.WaitGroup
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Go schedules fn on its own goroutine. Panics are recovered and logged so
// a single bad task cannot take the process down.
func (d *Dispatcher) Go(fn func()) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Error().Str("panic", fmt.Sprint(r)).Msg("background task panicked")
			}
		}()
		fn()
	}()
}

// Drain blocks until all outstanding tasks finish or ctx expires. The host
// must call this before terminating; detached work is invisible to the HTTP
// server's own shutdown.
func (d *Dispatcher) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("drain background tasks: %w", ctx.Err())
	}
}
