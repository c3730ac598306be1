package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/meteo-station/internal/station"
)

// DefaultInterval is used when New is given a non-positive interval.
const DefaultInterval = time.Hour

// runTimeout bounds one scheduled collection, fetch and store included.
const runTimeout = 2 * time.Minute

// Status describes the outcome of a Start or Stop call.
type Status string

const (
	StatusStarted        Status = "started"
	StatusRestarted      Status = "restarted"
	StatusAlreadyRunning Status = "already running"
	StatusStopped        Status = "stopped"
	StatusNotRunning     Status = "not running"
)

// Collector runs one acquisition against the default station and persists it.
type Collector interface {
	Collect(ctx context.Context, source string) station.Reading
}

// Scheduler periodically collects a reading from the default station.
// It starts stopped; Start and Stop may be called any number of times.
type Scheduler struct {
	mu        sync.Mutex
	scheduler *gocron.Scheduler // nil while stopped
	collector Collector
	interval  time.Duration
	logger    *slog.Logger
	everRan   bool

	runMu   sync.Mutex
	runs    int
	drained chan struct{} // closed when runs drops to zero
}

// New creates a new Scheduler.
func New(collector Collector, interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		collector: collector,
		interval:  interval,
		logger:    logger.With("component", "scheduler"),
	}
}

// Interval returns the time between firings.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Running reports whether firings are scheduled.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scheduler != nil
}

// Start schedules a collection every interval, the first one interval from
// now. Firings are not serialized: a slow run may overlap the next one.
func (s *Scheduler) Start() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scheduler != nil {
		s.logger.Info("scheduler already running")
		return StatusAlreadyRunning
	}

	gs := gocron.NewScheduler(time.UTC)
	if _, err := gs.Every(s.interval).WaitForSchedule().Do(s.fire); err != nil {
		s.logger.Error("failed to schedule collection job", "error", err)
		return StatusNotRunning
	}
	gs.StartAsync()
	s.scheduler = gs

	status := StatusStarted
	if s.everRan {
		status = StatusRestarted
	}
	s.everRan = true
	s.logger.Info("scheduler "+string(status), "interval", s.interval)
	return status
}

// Stop cancels future firings and returns without waiting. A collection
// already in flight finishes and is persisted.
func (s *Scheduler) Stop() Status {
	s.mu.Lock()
	gs := s.scheduler
	s.scheduler = nil
	s.mu.Unlock()

	if gs == nil {
		s.logger.Info("scheduler not running")
		return StatusNotRunning
	}

	// gocron's Stop waits for running jobs; clearing cancels future firings
	// right away and the in-flight runs are left to Shutdown.
	gs.Clear()
	go gs.Stop()
	s.logger.Info("scheduler stopped")
	return StatusStopped
}

// Shutdown stops the scheduler and waits for in-flight collections. It
// returns ctx.Err() if ctx is done first.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	s.Stop()

	select {
	case <-s.idle():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) idle() <-chan struct{} {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if s.runs == 0 {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	if s.drained == nil {
		s.drained = make(chan struct{})
	}
	return s.drained
}

func (s *Scheduler) fire() {
	s.runMu.Lock()
	s.runs++
	s.runMu.Unlock()
	defer func() {
		s.runMu.Lock()
		s.runs--
		if s.runs == 0 && s.drained != nil {
			close(s.drained)
			s.drained = nil
		}
		s.runMu.Unlock()
	}()

	s.logger.Info("running scheduled collection")

	// Not derived from the scheduler: Stop must not cancel a running fetch.
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	r := s.collector.Collect(ctx, "")
	s.logger.Info("completed scheduled collection", "id", r.ID, "available", r.IsAvailable)
}
