package bot

import (
	"context"
	"runtime/debug"

	"golang.org/x/sync/errgroup"

	"github.com/Franca20/telegram-motorista-bot/internal/infrastructure/config"
)

// Task is a unit of work executed by the pool. The context is the pool's
// lifecycle context and is cancelled when the pool shuts down.
type Task func(ctx context.Context)

// Pool runs command work on a fixed set of goroutines with a bounded
// queue. Searches and report generation go through the pool so the
// polling goroutine is never blocked on a slow upload.
type Pool struct {
	tasks  chan Task
	group  *errgroup.Group
	ctx    context.Context
	logger Logger
}

// NewPool starts cfg.PoolSize workers draining a queue of cfg.QueueDepth
// tasks. Workers exit when Close is called or ctx is cancelled.
func NewPool(ctx context.Context, cfg config.WorkersConfig, logger Logger) *Pool {
	if logger == nil {
		logger = noopLogger{}
	}

	group, groupCtx := errgroup.WithContext(ctx)

	p := &Pool{
		tasks:  make(chan Task, cfg.QueueDepth),
		group:  group,
		ctx:    groupCtx,
		logger: logger,
	}

	for i := 0; i < cfg.PoolSize; i++ {
		group.Go(p.worker)
	}

	return p
}

// Submit queues a task for execution. Returns false when the queue is
// full or the pool has shut down; callers fall back to running inline.
func (p *Pool) Submit(task Task) bool {
	select {
	case <-p.ctx.Done():
		return false
	case p.tasks <- task:
		return true
	default:
		return false
	}
}

// Close stops accepting work and waits for in-flight tasks to finish.
func (p *Pool) Close() error {
	close(p.tasks)
	return p.group.Wait()
}

func (p *Pool) worker() error {
	for {
		select {
		case <-p.ctx.Done():
			return nil
		case task, ok := <-p.tasks:
			if !ok {
				return nil
			}
			p.run(task)
		}
	}
}

// run executes one task, containing panics so a bad task never takes
// down the worker.
func (p *Pool) run(task Task) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("worker task panicked",
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()

	task(p.ctx)
}
