package scheduler

import "errors"

var (
	ErrSchedulerNotRunning = errors.New("scheduler is not running")
	ErrJobQueueFull        = errors.New("job queue is full")
	// ErrUnknownTask names a task the cron trigger was never given
	ErrUnknownTask   = errors.New("unknown task")
	ErrInvalidConfig = errors.New("invalid scheduler configuration")
)
