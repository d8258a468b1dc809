package parallel

import (
	"context"
	"sync"
	"time"
)

const idleTimeout = 5 * time.Second

// Pool runs queued jobs on at most N goroutines. The first job error
// cancels the pool context and is returned from Wait.
type Pool interface {
	Reset(ctx context.Context)
	Add(f func(ctx context.Context) error)
	Stop()
	Wait() error
}

type pool struct {
	ctxLock   sync.RWMutex
	ctx       context.Context
	ctxCancel func()

	wg sync.WaitGroup

	queue     []func(ctx context.Context) error
	queueLock sync.Mutex
	queueWake chan struct{}

	errLock   sync.Mutex
	lastError error

	workersLock sync.Mutex
	workers     int
	workersMax  int
}

func New(workers int) Pool {
	if workers < 1 {
		workers = 1
	}

	p := &pool{
		queue:      make([]func(ctx context.Context) error, 0, workers),
		queueWake:  make(chan struct{}, 1),
		workersMax: workers,
	}
	p.Reset(context.Background())

	return p
}

// Reset binds the pool to a new context and clears the last error.
func (p *pool) Reset(ctx context.Context) {
	p.errLock.Lock()
	p.lastError = nil
	p.errLock.Unlock()

	p.ctxLock.Lock()
	p.ctx, p.ctxCancel = context.WithCancel(ctx)
	p.ctxLock.Unlock()
}

func (p *pool) currentContext() (context.Context, func()) {
	p.ctxLock.RLock()
	defer p.ctxLock.RUnlock()
	return p.ctx, p.ctxCancel
}

func (p *pool) Add(f func(ctx context.Context) error) {
	p.wg.Add(1)

	p.queueLock.Lock()
	p.queue = append(p.queue, f)
	p.queueLock.Unlock()

	p.workersLock.Lock()
	if p.workers < p.workersMax {
		p.workers++
		go p.work()
	}
	p.workersLock.Unlock()

	select {
	case p.queueWake <- struct{}{}:
	default:
	}
}

func (p *pool) Stop() {
	_, cancel := p.currentContext()
	cancel()
}

func (p *pool) Wait() error {
	p.wg.Wait()

	p.errLock.Lock()
	defer p.errLock.Unlock()
	return p.lastError
}

func (p *pool) next() func(ctx context.Context) error {
	p.queueLock.Lock()
	defer p.queueLock.Unlock()

	if len(p.queue) == 0 {
		return nil
	}

	f := p.queue[0]
	copy(p.queue, p.queue[1:])
	p.queue = p.queue[:len(p.queue)-1]
	return f
}

func (p *pool) work() {
	for {
		ctx, cancel := p.currentContext()

		f := p.next()
		if f == nil {
			select {
			case <-p.queueWake:
				continue
			case <-ctx.Done():
			case <-time.After(idleTimeout):
			}

			p.workersLock.Lock()
			// a job may have been queued while stopping
			if p.hasQueued() {
				p.workersLock.Unlock()
				continue
			}
			p.workers--
			p.workersLock.Unlock()
			return
		}

		err := f(ctx)
		if err != nil && ctx.Err() == nil {
			p.errLock.Lock()
			if p.lastError == nil {
				p.lastError = err
			}
			p.errLock.Unlock()
			cancel()
		}
		p.wg.Done()
	}
}

func (p *pool) hasQueued() bool {
	p.queueLock.Lock()
	defer p.queueLock.Unlock()
	return len(p.queue) > 0
}
