package worker

import (
	"context"
	"runtime"
	"strconv"
	"sync"

	"github.com/getsentry/sentry-go"
	"github.com/oomph-ac/ofly/oerror"
	"github.com/sirupsen/logrus"
	"github.com/zeebo/xxh3"
)

// laneQueueSize is the amount of tasks a lane buffers before Submit blocks.
const laneQueueSize = 256

// ErrClosed is returned when submitting to a closed Pool.
var ErrClosed = oerror.New("worker pool closed")

// Pool runs tasks on a fixed set of lanes. Tasks submitted with the same key always run on the same lane, in
// the order they were submitted, while tasks with different keys may run in parallel.
type Pool struct {
	lanes []chan func()
	log   *logrus.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// New starts a Pool with the given amount of lanes. A count of zero or less uses one lane per CPU.
func New(lanes int, log *logrus.Logger) *Pool {
	if lanes <= 0 {
		lanes = runtime.NumCPU()
	}
	if log == nil {
		log = logrus.New()
		log.SetLevel(logrus.PanicLevel)
	}

	p := &Pool{lanes: make([]chan func(), lanes), log: log}
	for i := range p.lanes {
		p.lanes[i] = make(chan func(), laneQueueSize)
		p.wg.Add(1)
		go p.worker(i)
	}
	return p
}

func (p *Pool) worker(lane int) {
	defer p.wg.Done()
	for f := range p.lanes[lane] {
		p.run(lane, f)
	}
}

func (p *Pool) run(lane int, f func()) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Errorf("worker lane %d recovered from panic: %v", lane, r)
			hub := sentry.CurrentHub().Clone()
			hub.ConfigureScope(func(scope *sentry.Scope) {
				scope.SetTag("lane", strconv.Itoa(lane))
			})
			hub.Recover(oerror.New("worker lane %d panic: %v", lane, r))
		}
	}()
	f()
}

// Lanes returns the amount of lanes of the Pool.
func (p *Pool) Lanes() int {
	return len(p.lanes)
}

// Lane returns the lane tasks submitted with key run on.
func (p *Pool) Lane(key string) int {
	return int(xxh3.HashString(key) % uint64(len(p.lanes)))
}

// Submit queues f on the lane of key, blocking while the lane is full.
func (p *Pool) Submit(key string, f func()) error {
	return p.SubmitContext(context.Background(), key, f)
}

// SubmitContext queues f on the lane of key, blocking while the lane is full or until ctx is done.
func (p *Pool) SubmitContext(ctx context.Context, key string, f func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}

	select {
	case p.lanes[p.Lane(key)] <- f:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting tasks and waits for every queued task to finish.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	for _, lane := range p.lanes {
		close(lane)
	}
	p.mu.Unlock()

	p.wg.Wait()
}
