// Package worker runs node decodes on a fixed set of goroutines.
//
// Decode itself is synchronous and shares nothing, so the pool needs no
// locking around the decode: isolation comes from every job owning its own
// buffer. The pool only coordinates queueing, lifecycle and reporting.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/pointcloud-decoder/internal/monitoring"
	"github.com/banshee-data/pointcloud-decoder/internal/timeutil"
	"github.com/banshee-data/pointcloud-decoder/internal/pointcloud/decode"
)

// ErrPoolStopped is returned for jobs submitted to, or still queued in, a
// stopped pool.
var ErrPoolStopped = errors.New("worker pool stopped")

// Config sizes the pool.
type Config struct {
	Workers   int // goroutines; values < 1 mean 1
	QueueSize int // buffered jobs before Submit blocks

	// Clock times each decode; nil uses the wall clock.
	Clock timeutil.Clock
}

// Result is the outcome of one job. Exactly one of Bundle and Err is set.
type Result struct {
	ID      string
	Name    string
	Bundle  *decode.Bundle
	Err     error
	Elapsed time.Duration
}

// Stats are cumulative counters since the pool was created.
type Stats struct {
	Decoded uint64
	Failed  uint64
	Points  uint64
}

type job struct {
	id     string
	ctx    context.Context
	req    decode.Request
	result chan Result
}

// Pool decodes submitted requests on Config.Workers goroutines.
type Pool struct {
	config Config
	jobs   chan *job

	// submitMu keeps Submit from racing Stop: Submit holds it shared while
	// enqueueing, Stop holds it exclusively while flipping running.
	submitMu sync.RWMutex

	// Stats
	decoded atomic.Uint64
	failed  atomic.Uint64
	points  atomic.Uint64

	// Lifecycle
	running atomic.Bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewPool creates a pool. Call Start before submitting.
func NewPool(cfg Config) *Pool {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.QueueSize < 0 {
		cfg.QueueSize = 0
	}
	if cfg.Clock == nil {
		cfg.Clock = timeutil.RealClock{}
	}
	return &Pool{
		config: cfg,
		jobs:   make(chan *job, cfg.QueueSize),
		stopCh: make(chan struct{}),
	}
}

// Start launches the worker goroutines.
func (p *Pool) Start() error {
	p.submitMu.Lock()
	defer p.submitMu.Unlock()

	if p.running.Load() {
		return fmt.Errorf("worker pool already running")
	}
	select {
	case <-p.stopCh:
		return fmt.Errorf("worker pool cannot be restarted")
	default:
	}

	p.running.Store(true)
	for i := 0; i < p.config.Workers; i++ {
		p.wg.Add(1)
		go p.loop(i)
	}
	monitoring.Logf("[Worker] pool started: workers=%d queue=%d", p.config.Workers, p.config.QueueSize)
	return nil
}

// Stop rejects new jobs, fails any still queued with ErrPoolStopped, and
// waits for in-flight decodes to finish.
func (p *Pool) Stop() {
	p.submitMu.Lock()
	if !p.running.Load() {
		p.submitMu.Unlock()
		return
	}
	p.running.Store(false)
	close(p.stopCh)
	p.submitMu.Unlock()

	p.wg.Wait()
	s := p.Stats()
	monitoring.Logf("[Worker] pool stopped: decoded=%d failed=%d points=%d", s.Decoded, s.Failed, s.Points)
}

// Submit queues req and returns a channel that receives exactly one Result.
// It blocks while the queue is full, until ctx is done.
func (p *Pool) Submit(ctx context.Context, req decode.Request) (<-chan Result, error) {
	p.submitMu.RLock()
	defer p.submitMu.RUnlock()

	if !p.running.Load() {
		return nil, ErrPoolStopped
	}

	j := &job{
		id:     uuid.NewString(),
		ctx:    ctx,
		req:    req,
		result: make(chan Result, 1),
	}
	select {
	case p.jobs <- j:
		monitoring.Debugf("[Worker] queued job %s node=%q bytes=%d", j.id, req.Name, len(req.Buffer))
		return j.result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Stats returns the cumulative counters.
func (p *Pool) Stats() Stats {
	return Stats{
		Decoded: p.decoded.Load(),
		Failed:  p.failed.Load(),
		Points:  p.points.Load(),
	}
}

func (p *Pool) loop(worker int) {
	defer p.wg.Done()
	for {
		select {
		case j := <-p.jobs:
			p.process(worker, j)
		case <-p.stopCh:
			for {
				select {
				case j := <-p.jobs:
					j.result <- Result{ID: j.id, Name: j.req.Name, Err: ErrPoolStopped}
				default:
					return
				}
			}
		}
	}
}

func (p *Pool) process(worker int, j *job) {
	// A single decode cannot be interrupted; only jobs that have not started
	// observe cancellation.
	if err := j.ctx.Err(); err != nil {
		p.failed.Add(1)
		j.result <- Result{ID: j.id, Name: j.req.Name, Err: err}
		return
	}

	start := p.config.Clock.Now()
	b, err := decode.Decode(j.req)
	elapsed := p.config.Clock.Since(start)

	if err != nil {
		p.failed.Add(1)
		monitoring.Logf("[Worker] job %s node=%q failed: %v", j.id, j.req.Name, err)
		j.result <- Result{ID: j.id, Name: j.req.Name, Err: err, Elapsed: elapsed}
		return
	}

	p.decoded.Add(1)
	p.points.Add(uint64(b.NumPoints))
	monitoring.Debugf("[Worker] w%d job %s node=%q points=%d columns=%d in %v",
		worker, j.id, j.req.Name, b.NumPoints, len(b.Columns), elapsed)
	j.result <- Result{ID: j.id, Name: j.req.Name, Bundle: b, Elapsed: elapsed}
}

// DecodeAll decodes reqs concurrently with at most limit in flight and
// returns bundles in input order. The first failure cancels requests that
// have not started yet and is returned wrapped with the node name.
func DecodeAll(ctx context.Context, reqs []decode.Request, limit int) ([]*decode.Bundle, error) {
	if limit < 1 {
		limit = 1
	}
	out := make([]*decode.Bundle, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := range reqs {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			b, err := decode.Decode(reqs[i])
			if err != nil {
				return fmt.Errorf("node %q: %w", reqs[i].Name, err)
			}
			out[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
