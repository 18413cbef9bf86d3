// Package workpool provides bounded execution contexts. The editor keeps
// blocking syscalls and CPU bound pattern search on separate pools so one
// cannot starve the other.
package workpool

import (
	"context"
	"sync"
)

// Pool limits how many functions run at once
type Pool struct {
	name string
	sem  chan struct{}
}

// New creates a pool with size slots, at least one
func New(name string, size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{
		name: name,
		sem:  make(chan struct{}, size),
	}
}

func (p *Pool) Name() string {
	return p.name
}

func (p *Pool) Size() int {
	return cap(p.sem)
}

// acquire blocks until a slot is free or ctx is done
func (p *Pool) acquire(ctx context.Context) error {
	// a done context wins over a free slot
	if err := ctx.Err(); err != nil {
		return err
	}

	select {
	case p.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pool) release() {
	<-p.sem
}

// Do runs fn on the calling goroutine once a slot is free. fn is not run
// when ctx ends first.
func (p *Pool) Do(ctx context.Context, fn func() error) error {
	if err := p.acquire(ctx); err != nil {
		return err
	}
	defer p.release()

	return fn()
}

// Go waits for a slot and runs fn on a new goroutine tracked by wg. The
// wait for a slot is what bounds the work in flight.
func (p *Pool) Go(ctx context.Context, wg *sync.WaitGroup, fn func()) error {
	if err := p.acquire(ctx); err != nil {
		return err
	}

	wg.Add(1)
	go func() {
		defer func() {
			// Release the semaphore slot
			p.release()
			wg.Done()
		}()
		fn()
	}()

	return nil
}
