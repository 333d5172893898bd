package rpc

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestDispatcherDrainWaitsForTasks(t *testing.T) {
	t.Parallel()

	d := NewDispatcher()
	var done atomic.Bool
	d.Go(func() {
		time.Sleep(20 * time.Millisecond)
		done.Store(true)
	})

	if err := d.Drain(context.Background()); err != nil {
		t.Fatalf("Drain() error = %v", err)
	}
	if !done.Load() {
		t.Fatal("Drain() returned before task completed")
	}
}

func TestDispatcherDrainHonorsDeadline(t *testing.T) {
	t.Parallel()

	d := NewDispatcher()
	release := make(chan struct{})
	d.Go(func() {
		<-release
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := d.Drain(ctx); err == nil {
		t.Fatal("Drain() = nil, want deadline error")
	}
	close(release)
}

func TestDispatcherRecoversPanics(t *testing.T) {
	t.Parallel()

	d := NewDispatcher()
	d.Go(func() {
		panic("task exploded")
	})

	// A panicking task must neither crash the process nor wedge Drain.
	if err := d.Drain(context.Background()); err != nil {
		t.Fatalf("Drain() error = %v", err)
	}
}
