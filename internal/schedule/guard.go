// Package schedule wraps the import orchestrator with a cron trigger and a
// single-flight guard so at most one run executes at a time, regardless of
// trigger source.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/estatelink/property-importer/internal/domain"
	"github.com/estatelink/property-importer/internal/logger"
)

// ErrAlreadyRunning is returned to manual triggers while a run is active.
// Scheduled triggers are skipped silently (with a log line) instead.
var ErrAlreadyRunning = errors.New("an import run is already in progress")

const stopPollInterval = 250 * time.Millisecond

// Runner executes one import run.
type Runner interface {
	Run(ctx context.Context, triggeredBy string) (*domain.ImportRun, error)
}

// Status is the non-blocking scheduler status snapshot.
type Status struct {
	IsRunning   bool   `json:"is_running"`
	IsScheduled bool   `json:"is_scheduled"`
	Schedule    string `json:"schedule"`
	Timezone    string `json:"timezone"`
}

// Guard owns the cron trigger and the single-flight mutex.
type Guard struct {
	runner      Runner
	schedule    string
	timezone    string
	stopTimeout time.Duration
	logger      logger.Interface

	cron *cron.Cron

	mu          sync.Mutex
	isRunning   bool
	isScheduled bool

	runCtx    context.Context
	cancelRun context.CancelFunc
}

// NewGuard creates a guard for the given runner and schedule.
func NewGuard(
	runner Runner,
	schedule, timezone string,
	stopTimeout time.Duration,
	log logger.Interface,
) *Guard {
	runCtx, cancel := context.WithCancel(context.Background())
	return &Guard{
		runner:      runner,
		schedule:    schedule,
		timezone:    timezone,
		stopTimeout: stopTimeout,
		logger:      log.WithComponent("schedule"),
		runCtx:      runCtx,
		cancelRun:   cancel,
	}
}

// Start registers the cron trigger and begins firing on schedule.
func (g *Guard) Start() error {
	location, err := time.LoadLocation(g.timezone)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", g.timezone, err)
	}

	g.cron = cron.New(cron.WithLocation(location))
	if _, addErr := g.cron.AddFunc(g.schedule, g.onCronTrigger); addErr != nil {
		return fmt.Errorf("register cron schedule %q: %w", g.schedule, addErr)
	}

	g.cron.Start()

	g.mu.Lock()
	g.isScheduled = true
	g.mu.Unlock()

	g.logger.Info("import schedule started",
		"schedule", g.schedule,
		"timezone", g.timezone)
	return nil
}

// onCronTrigger fires on schedule. An active run causes a logged skip, not
// a queued execution.
func (g *Guard) onCronTrigger() {
	if _, err := g.runOnce(domain.TriggerCron); err != nil {
		if errors.Is(err, ErrAlreadyRunning) {
			g.logger.Warn("scheduled import skipped: a run is already active")
			return
		}
		g.logger.Error("scheduled import failed", "error", err)
	}
}

// TriggerManually starts a run on behalf of an operator. It returns
// ErrAlreadyRunning instead of skipping, since a human explicitly asked.
func (g *Guard) TriggerManually(triggeredBy string) (*domain.ImportRun, error) {
	if triggeredBy == "" {
		triggeredBy = domain.TriggerManual
	}
	return g.runOnce(triggeredBy)
}

// runOnce is the single entry point both trigger paths share. The mutex is
// released in all exit paths, including a panicking run.
func (g *Guard) runOnce(triggeredBy string) (*domain.ImportRun, error) {
	g.mu.Lock()
	if g.isRunning {
		g.mu.Unlock()
		return nil, ErrAlreadyRunning
	}
	g.isRunning = true
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		g.isRunning = false
		g.mu.Unlock()
	}()

	return g.runner.Run(g.runCtx, triggeredBy)
}

// Status returns the current scheduler state without blocking on a run.
func (g *Guard) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Status{
		IsRunning:   g.isRunning,
		IsScheduled: g.isScheduled,
		Schedule:    g.schedule,
		Timezone:    g.timezone,
	}
}

// Stop halts future cron firings, then waits (bounded by the stop timeout)
// for an in-flight run to finish. On timeout the run context is canceled so
// per-listing work can wind down cooperatively.
func (g *Guard) Stop(ctx context.Context) error {
	g.mu.Lock()
	if g.isScheduled {
		g.isScheduled = false
		g.mu.Unlock()
		<-g.cron.Stop().Done()
	} else {
		g.mu.Unlock()
	}

	deadline := time.NewTimer(g.stopTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(stopPollInterval)
	defer ticker.Stop()

	for {
		g.mu.Lock()
		running := g.isRunning
		g.mu.Unlock()
		if !running {
			g.logger.Info("import schedule stopped")
			return nil
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			g.cancelRun()
			return ctx.Err()
		case <-deadline.C:
			g.logger.Warn("in-flight run did not finish before stop timeout, canceling")
			g.cancelRun()
			return nil
		}
	}
}
