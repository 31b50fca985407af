package emails

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/brimhq/growth-engine/internal/scoring"
	"github.com/brimhq/growth-engine/pkg/db/models"
)

type countingGenerator struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (g *countingGenerator) Generate(ctx context.Context, company scoring.CompanyInput, result scoring.ScoringOutput) (*models.OutboundEmail, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, result.CompanyID)
	if g.err != nil {
		return nil, g.err
	}
	return &models.OutboundEmail{CompanyID: result.CompanyID}, nil
}

func (g *countingGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

func TestPoolProcessesEnqueuedTasks(t *testing.T) {
	gen := &countingGenerator{}
	pool, err := NewPool(gen, testLogger(), 2, 16)
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	pool.Start(context.Background(), 2)

	for i := 0; i < 5; i++ {
		if !pool.Enqueue(scoring.CompanyInput{CompanyName: "c"}, scoring.ScoringOutput{CompanyID: "id"}) {
			t.Fatal("enqueue should succeed with spare capacity")
		}
	}
	pool.Stop()

	if gen.callCount() != 5 {
		t.Fatalf("expected 5 generations, got %d", gen.callCount())
	}
}

func TestPoolEnqueueNeverBlocksWhenFull(t *testing.T) {
	gen := &countingGenerator{}
	pool, err := NewPool(gen, testLogger(), 1, 1)
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	// Not started: the single queue slot fills and further enqueues must
	// return immediately.

	if !pool.Enqueue(scoring.CompanyInput{}, scoring.ScoringOutput{}) {
		t.Fatal("first enqueue should fill the queue")
	}

	done := make(chan bool, 1)
	go func() {
		done <- pool.Enqueue(scoring.CompanyInput{}, scoring.ScoringOutput{})
	}()
	select {
	case accepted := <-done:
		if accepted {
			t.Fatal("second enqueue should be dropped")
		}
	case <-time.After(time.Second):
		t.Fatal("enqueue blocked on a full queue")
	}
}

func TestPoolIsolatesTaskFailures(t *testing.T) {
	gen := &countingGenerator{err: errors.New("generation down")}
	pool, err := NewPool(gen, testLogger(), 1, 16)
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	pool.Start(context.Background(), 1)

	for i := 0; i < 3; i++ {
		pool.Enqueue(scoring.CompanyInput{}, scoring.ScoringOutput{CompanyID: "fails"})
	}
	pool.Stop()

	if gen.callCount() != 3 {
		t.Fatalf("failures should not stop the pool, got %d calls", gen.callCount())
	}
}
