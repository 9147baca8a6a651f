package worker

import (
	"context"
	"sync"
)

// Job represents a unit of work to be executed
type Job interface {
	Execute(ctx context.Context) Result
}

// Result represents the result of a job execution
type Result interface {
	GetError() error
}

type indexedJob struct {
	index int
	job   Job
}

// Pool manages a pool of workers that execute jobs concurrently.
// Results are returned in submission order.
type Pool struct {
	workers    int
	jobQueue   chan indexedJob
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
	closeOnce  sync.Once

	mu        sync.Mutex
	results   []Result
	submitted int
}

// NewPool creates a new worker pool with the specified number of workers
func NewPool(workers int) *Pool {
	return NewPoolWithContext(context.Background(), workers)
}

// NewPoolWithContext creates a pool whose jobs see a context derived from ctx
func NewPoolWithContext(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Pool{
		workers:    workers,
		jobQueue:   make(chan indexedJob, workers*2),
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// Start starts the worker pool
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// worker is the worker goroutine that processes jobs
func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case item, ok := <-p.jobQueue:
			if !ok {
				return
			}
			result := item.job.Execute(p.ctx)

			p.mu.Lock()
			p.results[item.index] = result
			p.mu.Unlock()
		}
	}
}

// Submit submits a job to the pool for execution. Jobs submitted after
// Shutdown are dropped.
func (p *Pool) Submit(job Job) {
	if p.ctx.Err() != nil {
		return
	}

	p.mu.Lock()
	index := p.submitted
	p.submitted++
	p.results = append(p.results, nil)
	p.mu.Unlock()

	select {
	case <-p.ctx.Done():
		return
	case p.jobQueue <- indexedJob{index: index, job: job}:
	}
}

// Wait waits for all jobs to complete and returns their results in
// submission order. Jobs skipped by a shutdown have no result.
func (p *Pool) Wait() []Result {
	p.closeQueue()
	p.wg.Wait()
	return p.collect()
}

// Shutdown stops the pool; running jobs see a cancelled context and queued
// jobs are skipped
func (p *Pool) Shutdown() []Result {
	p.cancelFunc()
	p.wg.Wait()
	return p.collect()
}

func (p *Pool) closeQueue() {
	p.closeOnce.Do(func() {
		close(p.jobQueue)
	})
}

func (p *Pool) collect() []Result {
	p.mu.Lock()
	defer p.mu.Unlock()

	results := make([]Result, 0, len(p.results))
	for _, r := range p.results {
		if r != nil {
			results = append(results, r)
		}
	}
	return results
}
