package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
	"github.com/AntonStoeckl/lending-ledger-go/lending/features/command/recalculateoverdue"
	"github.com/AntonStoeckl/lending-ledger-go/lending/shared/shell"
)

const (
	defaultDailyAt      = "00:00"
	defaultSweepTimeout = 10 * time.Minute

	logMsgSchedulerStarted = "overdue sweep scheduler started"
	logMsgSchedulerStopped = "overdue sweep scheduler stopped"
	logMsgNextSweepPlanned = "next overdue sweep planned"
	logMsgSweepFailed      = "overdue sweep failed"

	logAttrNextRun = "next_run"
	logAttrTrigger = "trigger"
	logAttrError   = "error"
)

var (
	// ErrInvalidTimeOfDay is returned for a daily time that is not in HH:MM 24h format.
	ErrInvalidTimeOfDay = errors.New("time of day must be HH:MM")

	// ErrNilLocation is returned when WithLocation gets a nil location.
	ErrNilLocation = errors.New("location must not be nil")

	// ErrAlreadyStarted is returned when Start is called twice.
	ErrAlreadyStarted = errors.New("scheduler already started")

	// ErrStopTimeout is returned when a running sweep did not finish within the stop timeout.
	ErrStopTimeout = errors.New("scheduler did not stop in time")
)

// Sweeper runs one overdue sweep.
type Sweeper = shell.CommandHandler[recalculateoverdue.Command, recalculateoverdue.Result]

// Stats counts the sweeps the scheduler started.
type Stats struct {
	ScheduledRuns int64
	ManualRuns    int64
	FailedRuns    int64
	LastRunAt     time.Time
	NextRunAt     time.Time
}

// Scheduler plans the daily sweep and serves manual triggers.
type Scheduler struct {
	sweeper      Sweeper
	finePerDay   decimal.Decimal
	hour, minute int
	location     *time.Location
	sweepTimeout time.Duration
	clock        func() time.Time
	logger       ledger.Logger

	mu      sync.Mutex
	stats   Stats
	started bool
	cancel  context.CancelFunc
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// Option defines a functional option for configuring Scheduler.
type Option func(*Scheduler) error

// WithDailyAt sets the wall clock time of the scheduled sweep in HH:MM format.
func WithDailyAt(hhmm string) Option {
	return func(s *Scheduler) error {
		hour, minute, err := ParseTimeOfDay(hhmm)
		if err != nil {
			return err
		}

		s.hour, s.minute = hour, minute

		return nil
	}
}

// WithLocation sets the time zone the daily time refers to. The default is UTC.
func WithLocation(location *time.Location) Option {
	return func(s *Scheduler) error {
		if location == nil {
			return ErrNilLocation
		}

		s.location = location

		return nil
	}
}

// WithSweepTimeout bounds the duration of a single scheduled sweep.
func WithSweepTimeout(timeout time.Duration) Option {
	return func(s *Scheduler) error {
		s.sweepTimeout = timeout
		return nil
	}
}

// WithClock replaces time.Now, tests use it to control when the next sweep is due.
func WithClock(clock func() time.Time) Option {
	return func(s *Scheduler) error {
		s.clock = clock
		return nil
	}
}

// WithLogger sets the logger for the Scheduler.
func WithLogger(logger ledger.Logger) Option {
	return func(s *Scheduler) error {
		s.logger = logger
		return nil
	}
}

// NewScheduler creates a Scheduler that sweeps with the given rate. It does not plan anything before Start.
func NewScheduler(sweeper Sweeper, finePerDay decimal.Decimal, options ...Option) (*Scheduler, error) {
	if err := ledger.ValidateFinePerDay(finePerDay); err != nil {
		return nil, err
	}

	s := &Scheduler{
		sweeper:      sweeper,
		finePerDay:   finePerDay,
		location:     time.UTC,
		sweepTimeout: defaultSweepTimeout,
		clock:        time.Now,
	}

	s.hour, s.minute, _ = ParseTimeOfDay(defaultDailyAt)

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Start plans the daily sweep. The loop ends with Stop or when ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrAlreadyStarted
	}

	s.started = true
	s.stopCh = make(chan struct{})

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.loop(loopCtx, s.stopCh)

	s.logInfo(logMsgSchedulerStarted)

	return nil
}

// Stop ends the loop and cancels a running scheduled sweep.
// It waits at most timeout for the sweep to return and reports ErrStopTimeout otherwise.
func (s *Scheduler) Stop(timeout time.Duration) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}

	s.started = false
	close(s.stopCh)
	s.cancel()
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logInfo(logMsgSchedulerStopped)
		return nil
	case <-time.After(timeout):
		return ErrStopTimeout
	}
}

// Trigger runs a manual sweep right away and returns its result. A nil rate uses the configured one.
func (s *Scheduler) Trigger(ctx context.Context, finePerDay *decimal.Decimal) (recalculateoverdue.Result, error) {
	rate := s.finePerDay
	if finePerDay != nil {
		rate = *finePerDay
	}

	return s.sweep(ctx, rate, ledger.SweepTriggerManual)
}

// FinePerDay returns the rate scheduled sweeps use.
func (s *Scheduler) FinePerDay() decimal.Decimal {
	return s.finePerDay
}

// Stats returns a snapshot of the counters.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.stats
}

func (s *Scheduler) loop(ctx context.Context, stopCh <-chan struct{}) {
	defer s.wg.Done()

	for {
		next := NextRun(s.clock(), s.hour, s.minute, s.location)
		s.setNextRun(next)
		s.logDebug(logMsgNextSweepPlanned, logAttrNextRun, next.Format(time.RFC3339))

		timer := time.NewTimer(next.Sub(s.clock()))

		select {
		case <-stopCh:
			timer.Stop()
			return
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			sweepCtx, cancel := context.WithTimeout(ctx, s.sweepTimeout)
			_, _ = s.sweep(sweepCtx, s.finePerDay, ledger.SweepTriggerScheduled)
			cancel()
		}
	}
}

func (s *Scheduler) sweep(
	ctx context.Context,
	finePerDay decimal.Decimal,
	trigger ledger.SweepTrigger,
) (recalculateoverdue.Result, error) {

	result, err := s.sweeper.Handle(ctx, recalculateoverdue.BuildCommand(finePerDay, trigger, s.clock()))

	s.mu.Lock()
	if trigger == ledger.SweepTriggerScheduled {
		s.stats.ScheduledRuns++
	} else {
		s.stats.ManualRuns++
	}

	if err != nil {
		s.stats.FailedRuns++
	}

	s.stats.LastRunAt = s.clock()
	s.mu.Unlock()

	if err != nil {
		s.logError(logMsgSweepFailed, logAttrTrigger, string(trigger), logAttrError, err.Error())
	}

	return result, err
}

func (s *Scheduler) setNextRun(next time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats.NextRunAt = next
}

// NextRun returns the first instant strictly after now at which the wall clock in location shows hour:minute.
func NextRun(now time.Time, hour, minute int, location *time.Location) time.Time {
	local := now.In(location)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, location)

	if !next.After(now) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, hour, minute, 0, 0, location)
	}

	return next
}

// ParseTimeOfDay parses "HH:MM" in 24h format.
func ParseTimeOfDay(hhmm string) (int, int, error) {
	parsed, err := time.Parse("15:04", hhmm)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, hhmm)
	}

	return parsed.Hour(), parsed.Minute(), nil
}

func (s *Scheduler) logDebug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *Scheduler) logInfo(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func (s *Scheduler) logError(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Error(msg, args...)
	}
}
