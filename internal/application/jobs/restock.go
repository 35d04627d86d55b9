package jobs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/erp/crm/internal/application/catalog"
	"go.uber.org/zap"
)

// RestockName is the task name of the low-stock restock job
const RestockName = "low_stock_restock"

// Restocker raises low-stock products to a level
type Restocker interface {
	RestockLowStock(ctx context.Context, level int) *catalog.RestockResult
}

// RestockJob restocks every low-stock product and logs what changed
type RestockJob struct {
	restocker Restocker
	level     int
	sink      Sink
	logger    *zap.Logger
	now       func() time.Time
}

// NewRestockJob creates a restock job raising products to level
func NewRestockJob(restocker Restocker, level int, sink Sink, logger *zap.Logger) *RestockJob {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RestockJob{
		restocker: restocker,
		level:     level,
		sink:      sink,
		logger:    logger.Named("jobs").With(zap.String("job", RestockName)),
		now:       time.Now,
	}
}

// Name implements scheduler.Task
func (j *RestockJob) Name() string {
	return RestockName
}

// Run restocks low-stock products and appends a summary line
func (j *RestockJob) Run(ctx context.Context) error {
	ts := j.now().Format(logLayout)
	result := j.restocker.RestockLowStock(ctx, j.level)
	if !result.Succeeded() {
		cause := strings.Join(result.Errors, "; ")
		j.logger.Error("restock failed", zap.String("cause", cause))
		return j.sink.WriteLines(fmt.Sprintf("%s - ERROR: %s", ts, cause))
	}

	line := fmt.Sprintf("%s - %s", ts, result.Message)
	if len(result.Products) > 0 {
		names := make([]string, len(result.Products))
		for i, p := range result.Products {
			names[i] = fmt.Sprintf("%s (stock: %d)", p.Name, p.Stock)
		}
		line += ": " + strings.Join(names, ", ")
	}
	j.logger.Info("low-stock products restocked", zap.Int("count", len(result.Products)), zap.Int("level", result.Level))
	return j.sink.WriteLines(line)
}
