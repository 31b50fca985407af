package emails

import (
	"context"
	"fmt"
	"sync"

	"github.com/brimhq/growth-engine/internal/scoring"
	"github.com/brimhq/growth-engine/pkg/logger"
)

const (
	defaultWorkers   = 4
	defaultQueueSize = 256
)

type generationTask struct {
	company scoring.CompanyInput
	result  scoring.ScoringOutput
}

// Pool runs content generation off the request path: tasks are enqueued
// without blocking and processed by a fixed set of workers, each task with
// its own failure boundary.
type Pool struct {
	generator Generator
	logg      *logger.Logger
	tasks     chan generationTask
	wg        sync.WaitGroup
	stopOnce  sync.Once
}

// NewPool builds a generation worker pool. workers and queueSize fall back to
// defaults when non-positive.
func NewPool(generator Generator, logg *logger.Logger, workers, queueSize int) (*Pool, error) {
	if generator == nil {
		return nil, fmt.Errorf("generator required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if workers <= 0 {
		workers = defaultWorkers
	}
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &Pool{
		generator: generator,
		logg:      logg,
		tasks:     make(chan generationTask, queueSize),
	}, nil
}

// Start launches the workers. ctx cancellation drains nothing further; tasks
// already picked up run to completion.
func (p *Pool) Start(ctx context.Context, workers int) {
	if workers <= 0 {
		workers = defaultWorkers
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.run(ctx)
	}
}

// Enqueue hands off one generation task. It never blocks: when the queue is
// full the task is dropped with a warning, since generation is best effort.
func (p *Pool) Enqueue(company scoring.CompanyInput, result scoring.ScoringOutput) bool {
	select {
	case p.tasks <- generationTask{company: company, result: result}:
		return true
	default:
		p.logg.Warn(context.Background(), "generation queue full, dropping task")
		return false
	}
}

// Stop closes the queue and waits for in-flight tasks to finish.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() { close(p.tasks) })
	p.wg.Wait()
}

func (p *Pool) run(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case task, ok := <-p.tasks:
			if !ok {
				return
			}
			p.process(ctx, task)
		}
	}
}

func (p *Pool) process(ctx context.Context, task generationTask) {
	defer func() {
		if r := recover(); r != nil {
			p.logg.Error(ctx, "generation task panicked", fmt.Errorf("%v", r))
		}
	}()
	if _, err := p.generator.Generate(ctx, task.company, task.result); err != nil {
		p.logg.Error(p.logg.WithCompanyID(ctx, task.result.CompanyID), "email generation failed", err)
	}
}
