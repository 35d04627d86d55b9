package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/crm/internal/application/report"
	"go.uber.org/zap"
)

// WeeklyReportName is the task name of the weekly report job
const WeeklyReportName = "weekly_report"

// Summarizer produces the customer and order totals
type Summarizer interface {
	Summary(ctx context.Context) (*report.SummaryResponse, error)
}

// WeeklyReportJob appends a customer, order and revenue summary
type WeeklyReportJob struct {
	summarizer Summarizer
	sink       Sink
	logger     *zap.Logger
	now        func() time.Time
}

// NewWeeklyReportJob creates a weekly report job
func NewWeeklyReportJob(summarizer Summarizer, sink Sink, logger *zap.Logger) *WeeklyReportJob {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WeeklyReportJob{
		summarizer: summarizer,
		sink:       sink,
		logger:     logger.Named("jobs").With(zap.String("job", WeeklyReportName)),
		now:        time.Now,
	}
}

// Name implements scheduler.Task
func (j *WeeklyReportJob) Name() string {
	return WeeklyReportName
}

// Run appends one report line, or an error line when the summary fails
func (j *WeeklyReportJob) Run(ctx context.Context) error {
	ts := j.now().Format(logLayout)

	summary, err := j.summarizer.Summary(ctx)
	if err != nil {
		j.logger.Error("failed to generate report", zap.Error(err))
		return j.sink.WriteLines(fmt.Sprintf("%s - ERROR: %v", ts, err))
	}

	j.logger.Info("weekly report generated",
		zap.Int64("customers", summary.CustomerCount),
		zap.Int64("orders", summary.OrderCount),
		zap.String("revenue", summary.Revenue.StringFixed(2)),
	)
	return j.sink.WriteLines(fmt.Sprintf("%s - Report: %s.", ts, summary.Line()))
}
