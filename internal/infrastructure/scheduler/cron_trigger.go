package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/adhocore/gronx"
	"go.uber.org/zap"
)

// Entry binds a task to the cron expression that decides when it runs
type Entry struct {
	Task Task
	Expr string
}

// CronTriggerConfig holds configuration for the cron trigger
type CronTriggerConfig struct {
	// CheckInterval is how often due entries are evaluated. It must not
	// exceed one minute or minutes can be skipped.
	CheckInterval time.Duration
}

// DefaultCronTriggerConfig returns default cron trigger configuration
func DefaultCronTriggerConfig() CronTriggerConfig {
	return CronTriggerConfig{CheckInterval: 30 * time.Second}
}

// Locker grants a key to a single caller for ttl, across instances
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// lockTimeout bounds a single lock round trip
const lockTimeout = 5 * time.Second

type cronEntry struct {
	Entry
	lastFired time.Time
}

// CronTrigger submits tasks to the scheduler when their cron expression
// is due. Each entry fires at most once per calendar minute.
type CronTrigger struct {
	config    CronTriggerConfig
	scheduler *Scheduler
	logger    *zap.Logger
	now       func() time.Time
	locker    Locker
	lockTTL   time.Duration

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	entries   []*cronEntry
}

// NewCronTrigger creates a cron trigger over entries. Every expression
// is validated up front.
func NewCronTrigger(config CronTriggerConfig, scheduler *Scheduler, entries []Entry, logger *zap.Logger) (*CronTrigger, error) {
	if config.CheckInterval <= 0 || config.CheckInterval > time.Minute {
		return nil, fmt.Errorf("%w: check interval must be within (0, 1m]", ErrInvalidConfig)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &CronTrigger{
		config:    config,
		scheduler: scheduler,
		logger:    logger,
		now:       time.Now,
	}
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		name := e.Task.Name()
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: duplicate task %q", ErrInvalidConfig, name)
		}
		if !gronx.IsValid(e.Expr) {
			return nil, fmt.Errorf("%w: invalid cron expression %q for task %s", ErrInvalidConfig, e.Expr, name)
		}
		seen[name] = struct{}{}
		c.entries = append(c.entries, &cronEntry{Entry: e})
	}
	return c, nil
}

// UseLocker makes every firing claim "<task>:<minute unix>" in locker
// before it is submitted, so replicas sharing the locker run it once.
// Call it before Start.
func (c *CronTrigger) UseLocker(locker Locker, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.locker = locker
	c.lockTTL = ttl
}

// Start starts the trigger loop
func (c *CronTrigger) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.isRunning {
		return nil
	}
	c.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.wg.Add(1)
	go c.runLoop(ctx)

	c.logger.Info("Cron trigger started",
		zap.Int("entries", len(c.entries)),
		zap.Duration("check_interval", c.config.CheckInterval),
	)
	return nil
}

// Stop stops the trigger loop
func (c *CronTrigger) Stop() {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return
	}
	c.isRunning = false
	c.cancel()
	c.mu.Unlock()

	c.wg.Wait()
	c.logger.Info("Cron trigger stopped")
}

func (c *CronTrigger) runLoop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.CheckInterval)
	defer ticker.Stop()

	c.checkDue()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.checkDue()
		}
	}
}

// checkDue submits every entry whose expression matches the current
// minute and that has not fired in it yet
func (c *CronTrigger) checkDue() {
	minute := c.now().Truncate(time.Minute)

	gron := gronx.New()
	c.mu.Lock()
	var due []*cronEntry
	for _, e := range c.entries {
		if e.lastFired.Equal(minute) {
			continue
		}
		ok, err := gron.IsDue(e.Expr, minute)
		if err != nil {
			c.logger.Error("Failed to evaluate cron expression",
				zap.String("task", e.Task.Name()),
				zap.String("expr", e.Expr),
				zap.Error(err),
			)
			continue
		}
		if ok {
			e.lastFired = minute
			due = append(due, e)
		}
	}
	locker, ttl := c.locker, c.lockTTL
	c.mu.Unlock()

	for _, e := range due {
		if locker != nil && !c.claim(locker, ttl, e.Task.Name(), minute) {
			continue
		}
		c.submit(e.Task)
	}
}

// claim reports whether this instance owns the firing of task at minute.
// A lock backend failure does not suppress the run.
func (c *CronTrigger) claim(locker Locker, ttl time.Duration, task string, minute time.Time) bool {
	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()

	ok, err := locker.TryLock(ctx, fmt.Sprintf("%s:%d", task, minute.Unix()), ttl)
	if err != nil {
		c.logger.Warn("Failed to acquire task lock, running anyway",
			zap.String("task", task),
			zap.Error(err),
		)
		return true
	}
	if !ok {
		c.logger.Debug("Task firing claimed by another instance", zap.String("task", task))
	}
	return ok
}

// TriggerNow submits the named task immediately, outside its schedule
func (c *CronTrigger) TriggerNow(name string) error {
	for _, e := range c.entries {
		if e.Task.Name() == name {
			_, err := c.scheduler.Submit(e.Task)
			return err
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownTask, name)
}

// NextRun returns the next time the named task is due after ref
func (c *CronTrigger) NextRun(name string, ref time.Time) (time.Time, error) {
	for _, e := range c.entries {
		if e.Task.Name() == name {
			return gronx.NextTickAfter(e.Expr, ref, false)
		}
	}
	return time.Time{}, fmt.Errorf("%w: %s", ErrUnknownTask, name)
}

func (c *CronTrigger) submit(task Task) {
	job, err := c.scheduler.Submit(task)
	if err != nil {
		c.logger.Warn("Failed to submit scheduled task",
			zap.String("task", task.Name()),
			zap.Error(err),
		)
		return
	}
	c.logger.Debug("Scheduled task submitted",
		zap.String("task", task.Name()),
		zap.String("job_id", job.ID.String()),
	)
}
