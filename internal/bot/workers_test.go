package bot

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/Franca20/telegram-motorista-bot/internal/infrastructure/config"
)

func TestPoolRunsTasks(t *testing.T) {
	pool := NewPool(context.Background(), config.WorkersConfig{PoolSize: 2, QueueDepth: 8}, nil)

	var ran atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 5; i++ {
		wg.Add(1)
		ok := pool.Submit(func(context.Context) {
			defer wg.Done()
			ran.Add(1)
		})
		if !ok {
			t.Fatal("Submit rejected task with free queue capacity")
		}
	}

	wg.Wait()
	if err := pool.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if ran.Load() != 5 {
		t.Fatalf("ran = %d, want 5", ran.Load())
	}
}

func TestPoolRecoversPanic(t *testing.T) {
	pool := NewPool(context.Background(), config.WorkersConfig{PoolSize: 1, QueueDepth: 4}, nil)

	var wg sync.WaitGroup
	wg.Add(2)

	pool.Submit(func(context.Context) {
		defer wg.Done()
		panic("task blew up")
	})

	var ran atomic.Bool
	pool.Submit(func(context.Context) {
		defer wg.Done()
		ran.Store(true)
	})

	wg.Wait()
	if err := pool.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if !ran.Load() {
		t.Fatal("worker did not survive a panicking task")
	}
}

func TestPoolRejectsWhenFull(t *testing.T) {
	pool := NewPool(context.Background(), config.WorkersConfig{PoolSize: 1, QueueDepth: 1}, nil)

	release := make(chan struct{})
	started := make(chan struct{})

	pool.Submit(func(context.Context) {
		close(started)
		<-release
	})
	<-started

	// Worker is busy; this occupies the single queue slot.
	if !pool.Submit(func(context.Context) {}) {
		t.Fatal("queue slot should have been free")
	}

	if pool.Submit(func(context.Context) {}) {
		t.Fatal("Submit accepted work beyond queue capacity")
	}

	close(release)
	if err := pool.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
