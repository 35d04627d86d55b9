package jobs

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// HeartbeatName is the task name of the heartbeat job
const HeartbeatName = "heartbeat"

// HeartbeatConfig configures the heartbeat probe
type HeartbeatConfig struct {
	ProbeURL string
	Timeout  time.Duration
	Retries  int // extra attempts after the first failed probe
}

// HeartbeatJob records that the service is alive and whether its HTTP
// surface answers
type HeartbeatJob struct {
	config HeartbeatConfig
	client *http.Client
	sink   Sink
	logger *zap.Logger
	now    func() time.Time
}

// NewHeartbeatJob creates a heartbeat job. A nil client uses one with
// the configured timeout.
func NewHeartbeatJob(config HeartbeatConfig, client *http.Client, sink Sink, logger *zap.Logger) *HeartbeatJob {
	if client == nil {
		client = &http.Client{Timeout: config.Timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HeartbeatJob{
		config: config,
		client: client,
		sink:   sink,
		logger: logger.Named("jobs").With(zap.String("job", HeartbeatName)),
		now:    time.Now,
	}
}

// Name implements scheduler.Task
func (j *HeartbeatJob) Name() string {
	return HeartbeatName
}

// Run probes the endpoint and appends one heartbeat line. Probe
// failures are part of the line, not job failures.
func (j *HeartbeatJob) Run(ctx context.Context) error {
	line := j.now().Format(heartbeatLayout) + " CRM is alive" + j.probe(ctx)
	if err := j.sink.WriteLines(line); err != nil {
		j.logger.Error("failed to write heartbeat", zap.String("line", line), zap.Error(err))
		return err
	}
	return nil
}

func (j *HeartbeatJob) probe(ctx context.Context) string {
	if j.config.ProbeURL == "" {
		return ""
	}

	var status string
	for attempt := 0; attempt <= j.config.Retries; attempt++ {
		code, err := j.get(ctx)
		switch {
		case err != nil:
			status = fmt.Sprintf(" - endpoint unreachable: %v", err)
		case code == http.StatusOK:
			return " - endpoint responsive"
		default:
			status = fmt.Sprintf(" - endpoint returned status %d", code)
		}
		if ctx.Err() != nil {
			break
		}
		j.logger.Debug("heartbeat probe failed", zap.Int("attempt", attempt+1), zap.String("status", status))
	}
	return status
}

func (j *HeartbeatJob) get(ctx context.Context) (int, error) {
	if j.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.config.Timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, j.config.ProbeURL, nil)
	if err != nil {
		return 0, err
	}
	resp, err := j.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}
