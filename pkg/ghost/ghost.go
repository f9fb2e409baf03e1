// Package ghost schedules the deferred restyling of freshly created
// elements. Elements are first shown with a translucent ghost appearance
// and switched to their final appearance one by one, each after
// index × delay.
//
// All tasks of a Scheduler run on a single worker goroutine in due order,
// so restyling never runs concurrently with itself and never blocks the
// layout that scheduled it.
package ghost

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultDelay is the delay between two consecutive elements.
const DefaultDelay = 10 * time.Millisecond

// Task is a deferred action.
type Task func(ctx context.Context)

type item struct {
	due  time.Time
	seq  int
	task Task
}

// Scheduler runs tasks at start + index × delay.
type Scheduler struct {
	delay  time.Duration
	start  time.Time
	logger *log.Logger

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	wake   chan struct{}

	mu      sync.Mutex
	queue   []item
	seq     int
	fired   int
	dropped int
	running bool
	idle    *sync.Cond
}

// NewScheduler starts a scheduler whose worker stops when ctx ends or
// Cancel is called. A non-positive delay means DefaultDelay.
func NewScheduler(ctx context.Context, delay time.Duration, logger *log.Logger) *Scheduler {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if logger == nil {
		logger = log.Default()
	}
	ctx, cancel := context.WithCancel(ctx)
	s := &Scheduler{
		delay:  delay,
		start:  time.Now(),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
		wake:   make(chan struct{}, 1),
	}
	s.idle = sync.NewCond(&s.mu)
	go s.run()
	return s
}

// Delay returns the per-index delay.
func (s *Scheduler) Delay() time.Duration { return s.delay }

// Schedule queues task to run at start + index × delay. Tasks scheduled
// after Cancel are dropped.
func (s *Scheduler) Schedule(index int, task Task) {
	if index < 0 {
		index = 0
	}
	s.mu.Lock()
	if s.ctx.Err() != nil {
		s.dropped++
		s.mu.Unlock()
		return
	}
	it := item{due: s.start.Add(time.Duration(index) * s.delay), seq: s.seq, task: task}
	s.seq++
	i := sort.Search(len(s.queue), func(i int) bool {
		q := s.queue[i]
		return q.due.After(it.due) || (q.due.Equal(it.due) && q.seq > it.seq)
	})
	s.queue = append(s.queue, item{})
	copy(s.queue[i+1:], s.queue[i:])
	s.queue[i] = it
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Pending returns the number of queued tasks.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Fired returns the number of tasks that have run.
func (s *Scheduler) Fired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fired
}

// Dropped returns the number of tasks discarded by Cancel.
func (s *Scheduler) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Cancel drops every pending task and stops the worker. It blocks until
// a task in flight has returned and is safe to call more than once, but
// must not be called from inside a task.
func (s *Scheduler) Cancel() {
	s.cancel()
	<-s.done
}

// Wait blocks until every queued task has run, the scheduler is canceled,
// or ctx ends. It does not stop the scheduler.
func (s *Scheduler) Wait(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		s.mu.Lock()
		s.idle.Broadcast()
		s.mu.Unlock()
	})
	defer stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	for (len(s.queue) > 0 || s.running) && s.ctx.Err() == nil {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.idle.Wait()
	}
	return nil
}

func (s *Scheduler) run() {
	defer close(s.done)
	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		if s.ctx.Err() != nil {
			s.drain()
			return
		}

		wait := time.Hour
		s.mu.Lock()
		if len(s.queue) > 0 {
			wait = time.Until(s.queue[0].due)
		}
		s.mu.Unlock()

		if wait <= 0 {
			s.fire()
			continue
		}

		timer.Reset(wait)
		select {
		case <-s.ctx.Done():
		case <-s.wake:
			timer.Stop()
		case <-timer.C:
		}
	}
}

func (s *Scheduler) fire() {
	s.mu.Lock()
	if len(s.queue) == 0 {
		s.mu.Unlock()
		return
	}
	it := s.queue[0]
	s.queue = s.queue[1:]
	s.running = true
	s.mu.Unlock()

	it.task(s.ctx)

	s.mu.Lock()
	s.fired++
	s.running = false
	if len(s.queue) == 0 {
		s.idle.Broadcast()
	}
	s.mu.Unlock()
}

func (s *Scheduler) drain() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := len(s.queue); n > 0 {
		s.dropped += n
		s.logger.Debug("ghost schedule canceled", "dropped", n, "fired", s.fired)
	}
	s.queue = nil
	s.idle.Broadcast()
}
