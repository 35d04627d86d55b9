package telemetry

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type memoryLogExporter struct {
	mu     sync.Mutex
	bodies []string
}

func (e *memoryLogExporter) Export(_ context.Context, records []sdklog.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, r := range records {
		e.bodies = append(e.bodies, r.Body().AsString())
	}
	return nil
}

func (e *memoryLogExporter) Shutdown(context.Context) error   { return nil }
func (e *memoryLogExporter) ForceFlush(context.Context) error { return nil }

func (e *memoryLogExporter) exported() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.bodies...)
}

func TestNewLoggerProvider_Disabled(t *testing.T) {
	ctx := context.Background()

	lp, err := NewLoggerProvider(ctx, LogsConfig{Enabled: false, ServiceName: "crm"}, nil)

	require.NoError(t, err)
	assert.False(t, lp.IsEnabled())
	assert.NoError(t, lp.ForceFlush(ctx))
	assert.NoError(t, lp.Shutdown(ctx))
}

func TestNewZapOTELCore_DisabledIsNop(t *testing.T) {
	lp, err := NewLoggerProvider(context.Background(), LogsConfig{}, zap.NewNop())
	require.NoError(t, err)

	core := NewZapOTELCore(lp, zapcore.InfoLevel)

	assert.False(t, core.Enabled(zapcore.ErrorLevel))
	assert.False(t, NewZapOTELCore(nil, zapcore.InfoLevel).Enabled(zapcore.ErrorLevel))
}

func TestBridge_DisabledReturnsSameLogger(t *testing.T) {
	logger := zap.NewNop()
	lp, err := NewLoggerProvider(context.Background(), LogsConfig{}, logger)
	require.NoError(t, err)

	assert.Same(t, logger, Bridge(logger, lp, zapcore.InfoLevel))
}

func TestBridge_ForwardsToProviderAndBase(t *testing.T) {
	exporter := &memoryLogExporter{}
	provider := sdklog.NewLoggerProvider(sdklog.WithProcessor(sdklog.NewSimpleProcessor(exporter)))
	lp := newLoggerProviderWith(provider, LogsConfig{ServiceName: "crm"})
	t.Cleanup(func() { _ = lp.Shutdown(context.Background()) })

	baseCore, logs := observer.New(zapcore.DebugLevel)
	logger := Bridge(zap.New(baseCore), lp, zapcore.InfoLevel)

	logger.Debug("restock skipped")
	logger.Info("weekly report written", zap.Int("customers", 3))
	logger.Error("reminder failed")
	require.NoError(t, lp.ForceFlush(context.Background()))

	assert.Equal(t, 3, logs.Len(), "base core keeps every entry")
	assert.Equal(t, []string{"weekly report written", "reminder failed"}, exporter.exported())
}

func TestLevelFilterCore(t *testing.T) {
	inner, logs := observer.New(zapcore.DebugLevel)
	core := &levelFilterCore{Core: inner, minLevel: zapcore.WarnLevel}

	assert.False(t, core.Enabled(zapcore.InfoLevel))
	assert.True(t, core.Enabled(zapcore.WarnLevel))

	logger := zap.New(core.With([]zapcore.Field{zap.String("job", "heartbeat")}))
	logger.Info("dropped")
	logger.Warn("kept")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "kept", entry.Message)
	assert.Equal(t, "heartbeat", entry.ContextMap()["job"])
}
