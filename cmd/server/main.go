package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/erp/crm/internal/application/catalog"
	"github.com/erp/crm/internal/application/jobs"
	partnerapp "github.com/erp/crm/internal/application/partner"
	reportapp "github.com/erp/crm/internal/application/report"
	tradeapp "github.com/erp/crm/internal/application/trade"
	"github.com/erp/crm/internal/infrastructure/config"
	"github.com/erp/crm/internal/infrastructure/event"
	"github.com/erp/crm/internal/infrastructure/lock"
	"github.com/erp/crm/internal/infrastructure/logger"
	"github.com/erp/crm/internal/infrastructure/migration"
	"github.com/erp/crm/internal/infrastructure/persistence"
	"github.com/erp/crm/internal/infrastructure/scheduler"
	"github.com/erp/crm/internal/infrastructure/storage"
	"github.com/erp/crm/internal/infrastructure/telemetry"
	"github.com/erp/crm/internal/interfaces/http/handler"
	"github.com/erp/crm/internal/interfaces/http/middleware"
	"github.com/erp/crm/internal/interfaces/http/router"
	"github.com/erp/crm/migrations"
	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			CRM API
//	@version		1.0
//	@description	Customers, products and orders with periodic maintenance jobs
//	@BasePath		/api/v1

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting CRM",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx := context.Background()

	// Telemetry
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		if err := meterProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()
	meter := meterProvider.Meter(cfg.Telemetry.ServiceName)

	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	defer func() {
		if err := loggerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down logger provider", zap.Error(err))
		}
	}()
	log = telemetry.Bridge(log, loggerProvider, logger.ParseLevel(cfg.Log.Level))

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Profiling.Enabled,
		ServerAddress:     cfg.Profiling.ServerAddress,
		ApplicationName:   cfg.Telemetry.ServiceName,
		ProfileTypes:      cfg.Profiling.ProfileTypes,
		BasicAuthUser:     cfg.Profiling.BasicAuthUser,
		BasicAuthPassword: cfg.Profiling.BasicAuthPass,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
	}()
	if profiler.IsEnabled() && cfg.Profiling.SpanProfiles {
		tracerProvider.EnableSpanProfiles()
	}

	// Schema
	if cfg.Database.AutoMigrate {
		if err := migrateSchema(cfg, log); err != nil {
			log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithGormLogger(gormLog))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBName:          cfg.Database.DBName,
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	if meterProvider.IsEnabled() {
		sqlDB, err := db.DB.DB()
		if err != nil {
			log.Fatal("Failed to get sql.DB", zap.Error(err))
		}
		if _, err := telemetry.RegisterDBPoolMetrics(meter, sqlDB); err != nil {
			log.Warn("Failed to register database pool metrics", zap.Error(err))
		}
	}

	// Repositories and services
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	customerService := partnerapp.NewCustomerService(customerRepo, txScope, log)
	productService := catalogapp.NewProductService(productRepo, txScope, log)
	orderService := tradeapp.NewOrderService(orderRepo, txScope, log)
	summaryService := reportapp.NewSummaryService(orderRepo)

	// Domain events
	eventBus, closeSink, err := newEventBus(cfg.Events, log)
	if err != nil {
		log.Fatal("Failed to initialize event publisher", zap.Error(err))
	}
	defer closeSink()

	var businessMetrics *telemetry.BusinessMetrics
	if meterProvider.IsEnabled() {
		businessMetrics, err = telemetry.NewBusinessMetrics(meter)
		if err != nil {
			log.Fatal("Failed to create business metrics", zap.Error(err))
		}
		eventBus.Subscribe(businessMetrics)
	}

	customerService.SetEventPublisher(eventBus)
	productService.SetEventPublisher(eventBus)
	orderService.SetEventPublisher(eventBus)

	// Periodic jobs
	if cfg.Scheduler.Enabled {
		jobScheduler, err := scheduler.NewScheduler(scheduler.Config{
			Workers:       cfg.Scheduler.WorkerCount,
			QueueSize:     cfg.Scheduler.QueueSize,
			JobTimeout:    cfg.Scheduler.JobTimeout,
			RetryAttempts: cfg.Scheduler.RetryAttempts,
			RetryDelay:    cfg.Scheduler.RetryDelay,
		}, log)
		if err != nil {
			log.Fatal("Failed to create job scheduler", zap.Error(err))
		}
		if businessMetrics != nil {
			jobScheduler.SetObserver(businessMetrics)
		}

		reportSink, err := newReportArchive(ctx, cfg.Storage, log)
		if err != nil {
			log.Fatal("Failed to initialize report storage", zap.Error(err))
		}
		entries := jobEntries(cfg.Jobs, productService, orderService, summaryService, reportSink, log)
		if profiler.IsEnabled() {
			for i := range entries {
				entries[i].Task = profiledTask{entries[i].Task}
			}
		}
		trigger, err := scheduler.NewCronTrigger(scheduler.CronTriggerConfig{
			CheckInterval: cfg.Scheduler.CheckInterval,
		}, jobScheduler, entries, log)
		if err != nil {
			log.Fatal("Failed to create cron trigger", zap.Error(err))
		}
		if cfg.Scheduler.DistributedLock {
			locker, err := lock.NewRedisLocker(ctx, cfg.Redis)
			if err != nil {
				log.Fatal("Failed to connect to Redis for job locks", zap.Error(err))
			}
			defer func() { _ = locker.Close() }()
			trigger.UseLocker(locker, cfg.Scheduler.LockTTL)
			log.Info("Distributed job locking enabled", zap.String("redis", cfg.Redis.Addr()))
		}

		if err := jobScheduler.Start(ctx); err != nil {
			log.Fatal("Failed to start job scheduler", zap.Error(err))
		}
		defer func() {
			if err := jobScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping job scheduler", zap.Error(err))
			}
		}()
		if err := trigger.Start(ctx); err != nil {
			log.Fatal("Failed to start cron trigger", zap.Error(err))
		}
		defer trigger.Stop()

		log.Info("Job scheduler started",
			zap.Int("jobs", len(entries)),
			zap.Int("workers", cfg.Scheduler.WorkerCount),
		)
	}

	// HTTP
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	var httpMeter = meter
	if !meterProvider.IsEnabled() {
		httpMeter = nil
	}
	engine, err := router.NewEngine(router.EngineConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		TracingEnabled: tracerProvider.IsEnabled(),
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		CORS: middleware.CORSConfig{
			AllowOrigins:  cfg.HTTP.CORSAllowOrigins,
			AllowMethods:  cfg.HTTP.CORSAllowMethods,
			AllowHeaders:  cfg.HTTP.CORSAllowHeaders,
			ExposeHeaders: []string{middleware.RequestIDHeader},
			MaxAge:        12 * time.Hour,
		},
		TrustedProxies: cfg.HTTP.TrustedProxies,
	}, log, httpMeter)
	if err != nil {
		log.Fatal("Failed to create HTTP engine", zap.Error(err))
	}

	handlers := router.Handlers{
		Customers: handler.NewCustomerHandler(customerService),
		Products:  handler.NewProductHandler(productService, cfg.Jobs.Restock.Level),
		Orders:    handler.NewOrderHandler(orderService),
		Reports:   handler.NewReportHandler(summaryService),
		Health:    handler.NewHealthHandler(db, version),
	}
	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(handlers.Groups()...).
		Setup()
	router.RegisterHealth(engine, handlers.Health)
	if cfg.Swagger.Enabled {
		router.RegisterSwagger(engine)
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

// migrateSchema applies the embedded SQL migrations over a dedicated
// connection, which the migrator closes
func migrateSchema(cfg *config.Config, log *zap.Logger) error {
	sqlDB, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return err
	}
	m, err := migration.NewFromFS(sqlDB, migrations.FS, log)
	if err != nil {
		_ = sqlDB.Close()
		return err
	}
	defer func() { _ = m.Close() }()
	return m.Up()
}

// newEventBus builds the in-process bus and its external sink. The
// returned func releases the sink.
func newEventBus(cfg config.EventsConfig, log *zap.Logger) (*event.Bus, func(), error) {
	switch cfg.Driver {
	case config.EventsDriverAMQP:
		publisher, err := event.NewAMQPPublisher(cfg.AMQPURL, cfg.Exchange, event.NewSerializer("crm"), log)
		if err != nil {
			return nil, nil, err
		}
		log.Info("Publishing domain events to RabbitMQ", zap.String("exchange", cfg.Exchange))
		closeFn := func() {
			if err := publisher.Close(); err != nil {
				log.Error("Error closing AMQP publisher", zap.Error(err))
			}
		}
		return event.NewBus(log, event.WithPublishTimeout(publisher)), closeFn, nil
	default:
		return event.NewBus(log, event.NewLogPublisher(log)), func() {}, nil
	}
}

// newReportArchive returns the object storage sink for weekly reports, or
// nil when storage is disabled
func newReportArchive(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) (jobs.Sink, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	store, err := storage.NewS3Store(ctx, &cfg, storage.WithLogger(log))
	if err != nil {
		return nil, err
	}
	if err := store.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	log.Info("Archiving weekly reports to object storage",
		zap.String("bucket", store.Bucket()),
		zap.String("prefix", cfg.ReportPrefix),
	)
	return storage.NewObjectSink(store, cfg.ReportPrefix), nil
}

// profiledTask labels profiling samples with the job name
type profiledTask struct {
	scheduler.Task
}

func (t profiledTask) Run(ctx context.Context) error {
	return telemetry.WithJobLabel(ctx, t.Name(), t.Task.Run)
}

// jobEntries constructs the enabled periodic jobs with their sinks
func jobEntries(
	cfg config.JobsConfig,
	products *catalogapp.ProductService,
	orders *tradeapp.OrderService,
	summaries *reportapp.SummaryService,
	reportArchive jobs.Sink,
	log *zap.Logger,
) []scheduler.Entry {
	var entries []scheduler.Entry

	if hb := cfg.Heartbeat; hb.Enabled {
		job := jobs.NewHeartbeatJob(jobs.HeartbeatConfig{
			ProbeURL: hb.ProbeURL,
			Timeout:  hb.Timeout,
			Retries:  hb.Retries,
		}, &http.Client{Timeout: hb.Timeout}, jobs.NewFileSink(hb.LogPath), log)
		entries = append(entries, scheduler.Entry{Task: job, Expr: hb.Cron})
	}
	if rs := cfg.Restock; rs.Enabled {
		job := jobs.NewRestockJob(products, rs.Level, jobs.NewFileSink(rs.LogPath), log)
		entries = append(entries, scheduler.Entry{Task: job, Expr: rs.Cron})
	}
	if or := cfg.OrderReminders; or.Enabled {
		job := jobs.NewOrderRemindersJob(orders, or.Lookback, jobs.NewFileSink(or.LogPath), log)
		entries = append(entries, scheduler.Entry{Task: job, Expr: or.Cron})
	}
	if wr := cfg.WeeklyReport; wr.Enabled {
		var sink jobs.Sink = jobs.NewFileSink(wr.LogPath)
		if reportArchive != nil {
			sink = jobs.MultiSink{sink, reportArchive}
		}
		job := jobs.NewWeeklyReportJob(summaries, sink, log)
		entries = append(entries, scheduler.Entry{Task: job, Expr: wr.Cron})
	}
	return entries
}
