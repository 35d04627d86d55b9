package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/adhocore/gronx"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Scheduler SchedulerConfig
	Jobs      JobsConfig
	Events    EventsConfig
	Telemetry TelemetryConfig
	Profiling ProfilingConfig
	Redis     RedisConfig
	Storage   StorageConfig
	Swagger   SwaggerConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
	AutoMigrate     bool
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
}

// SchedulerConfig holds the job runner settings
type SchedulerConfig struct {
	Enabled       bool
	WorkerCount   int
	QueueSize     int
	CheckInterval time.Duration
	JobTimeout    time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	// DistributedLock makes each cron firing run on a single instance.
	// Requires redis.enabled.
	DistributedLock bool
	LockTTL         time.Duration
}

// JobsConfig holds the schedule and parameters of each periodic job
type JobsConfig struct {
	Heartbeat      HeartbeatJobConfig
	Restock        RestockJobConfig
	OrderReminders OrderRemindersJobConfig
	WeeklyReport   WeeklyReportJobConfig
}

// HeartbeatJobConfig configures the liveness heartbeat
type HeartbeatJobConfig struct {
	Enabled  bool
	Cron     string
	LogPath  string
	ProbeURL string
	Timeout  time.Duration
	Retries  int
}

// RestockJobConfig configures the low-stock restock job
type RestockJobConfig struct {
	Enabled bool
	Cron    string
	LogPath string
	Level   int // stock level restocked products are set to
}

// OrderRemindersJobConfig configures the pending order reminder job
type OrderRemindersJobConfig struct {
	Enabled  bool
	Cron     string
	LogPath  string
	Lookback time.Duration
}

// WeeklyReportJobConfig configures the summary report job
type WeeklyReportJobConfig struct {
	Enabled bool
	Cron    string
	LogPath string
}

// EventsConfig selects where domain events are published
type EventsConfig struct {
	Driver   string // log or amqp
	AMQPURL  string
	Exchange string
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
	MetricsInterval   time.Duration
	// Database tracing options
	DBTraceEnabled    bool          // Enable database query tracing (otelgorm)
	DBLogFullSQL      bool          // Log full SQL statements (dev only)
	DBSlowQueryThresh time.Duration // Slow query threshold for warnings (default: 200ms)
	LogsEnabled       bool          // Export zap logs through the OTLP logs pipeline
}

// ProfilingConfig holds Pyroscope continuous profiling configuration
type ProfilingConfig struct {
	Enabled       bool
	ServerAddress string
	ProfileTypes  []string // cpu, alloc_objects, alloc_space, inuse_objects, inuse_space, goroutines
	SpanProfiles  bool     // link CPU profiles to trace spans, needs telemetry.enabled
	BasicAuthUser string
	BasicAuthPass string
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled   bool
	Host      string
	Port      int
	Password  string
	DB        int
	KeyPrefix string
}

// StorageConfig holds S3-compatible object storage settings.
// Weekly reports are uploaded there when enabled.
type StorageConfig struct {
	Enabled      bool
	Endpoint     string
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
	UseSSL       bool
	UsePathStyle bool
	ReportPrefix string
}

// SwaggerConfig controls the API documentation endpoint
type SwaggerConfig struct {
	Enabled bool
}

// Event publisher drivers
const (
	EventsDriverLog  = "log"
	EventsDriverAMQP = "amqp"
)

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with CRM_ prefix (e.g., CRM_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return fromViper(v)
}

// LoadFile loads configuration from an explicit file path, still honouring
// CRM_ environment overrides.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix("CRM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Booleans that default to true need an explicit default so that an
	// absent key is distinguishable from false.
	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("jobs.heartbeat.enabled", true)
	v.SetDefault("jobs.restock.enabled", true)
	v.SetDefault("jobs.order_reminders.enabled", true)
	v.SetDefault("jobs.weekly_report.enabled", true)
	v.SetDefault("swagger.enabled", true)
	v.SetDefault("storage.use_path_style", true)

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
			AutoMigrate:     v.GetBool("database.auto_migrate"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
		},
		Scheduler: SchedulerConfig{
			Enabled:       v.GetBool("scheduler.enabled"),
			WorkerCount:   v.GetInt("scheduler.worker_count"),
			QueueSize:     v.GetInt("scheduler.queue_size"),
			CheckInterval: v.GetDuration("scheduler.check_interval"),
			JobTimeout:    v.GetDuration("scheduler.job_timeout"),
			RetryAttempts: v.GetInt("scheduler.retry_attempts"),
			RetryDelay:    v.GetDuration("scheduler.retry_delay"),

			DistributedLock: v.GetBool("scheduler.distributed_lock"),
			LockTTL:         v.GetDuration("scheduler.lock_ttl"),
		},
		Jobs: JobsConfig{
			Heartbeat: HeartbeatJobConfig{
				Enabled:  v.GetBool("jobs.heartbeat.enabled"),
				Cron:     v.GetString("jobs.heartbeat.cron"),
				LogPath:  v.GetString("jobs.heartbeat.log_path"),
				ProbeURL: v.GetString("jobs.heartbeat.probe_url"),
				Timeout:  v.GetDuration("jobs.heartbeat.timeout"),
				Retries:  v.GetInt("jobs.heartbeat.retries"),
			},
			Restock: RestockJobConfig{
				Enabled: v.GetBool("jobs.restock.enabled"),
				Cron:    v.GetString("jobs.restock.cron"),
				LogPath: v.GetString("jobs.restock.log_path"),
				Level:   v.GetInt("jobs.restock.level"),
			},
			OrderReminders: OrderRemindersJobConfig{
				Enabled:  v.GetBool("jobs.order_reminders.enabled"),
				Cron:     v.GetString("jobs.order_reminders.cron"),
				LogPath:  v.GetString("jobs.order_reminders.log_path"),
				Lookback: v.GetDuration("jobs.order_reminders.lookback"),
			},
			WeeklyReport: WeeklyReportJobConfig{
				Enabled: v.GetBool("jobs.weekly_report.enabled"),
				Cron:    v.GetString("jobs.weekly_report.cron"),
				LogPath: v.GetString("jobs.weekly_report.log_path"),
			},
		},
		Events: EventsConfig{
			Driver:   v.GetString("events.driver"),
			AMQPURL:  v.GetString("events.amqp_url"),
			Exchange: v.GetString("events.exchange"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			DBLogFullSQL:      v.GetBool("telemetry.db_log_full_sql"),
			DBSlowQueryThresh: v.GetDuration("telemetry.db_slow_query_threshold"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
		},
		Profiling: ProfilingConfig{
			Enabled:       v.GetBool("profiling.enabled"),
			ServerAddress: v.GetString("profiling.server_address"),
			ProfileTypes:  v.GetStringSlice("profiling.profile_types"),
			SpanProfiles:  v.GetBool("profiling.span_profiles"),
			BasicAuthUser: v.GetString("profiling.basic_auth_user"),
			BasicAuthPass: v.GetString("profiling.basic_auth_password"),
		},
		Redis: RedisConfig{
			Enabled:   v.GetBool("redis.enabled"),
			Host:      v.GetString("redis.host"),
			Port:      v.GetInt("redis.port"),
			Password:  v.GetString("redis.password"),
			DB:        v.GetInt("redis.db"),
			KeyPrefix: v.GetString("redis.key_prefix"),
		},
		Storage: StorageConfig{
			Enabled:      v.GetBool("storage.enabled"),
			Endpoint:     v.GetString("storage.endpoint"),
			Region:       v.GetString("storage.region"),
			Bucket:       v.GetString("storage.bucket"),
			AccessKey:    v.GetString("storage.access_key"),
			SecretKey:    v.GetString("storage.secret_key"),
			UseSSL:       v.GetBool("storage.use_ssl"),
			UsePathStyle: v.GetBool("storage.use_path_style"),
			ReportPrefix: v.GetString("storage.report_prefix"),
		},
		Swagger: SwaggerConfig{
			Enabled: v.GetBool("swagger.enabled"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "crm"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "crm"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 10 << 20 // 10MB
	}
	// No default origins: cross-origin requests stay disallowed until configured.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "X-Request-ID"}
	}
	if cfg.Scheduler.WorkerCount == 0 {
		cfg.Scheduler.WorkerCount = 2
	}
	if cfg.Scheduler.QueueSize == 0 {
		cfg.Scheduler.QueueSize = 16
	}
	if cfg.Scheduler.CheckInterval == 0 {
		cfg.Scheduler.CheckInterval = 30 * time.Second
	}
	if cfg.Scheduler.JobTimeout == 0 {
		cfg.Scheduler.JobTimeout = 5 * time.Minute
	}
	if cfg.Scheduler.RetryAttempts == 0 {
		cfg.Scheduler.RetryAttempts = 2
	}
	if cfg.Scheduler.RetryDelay == 0 {
		cfg.Scheduler.RetryDelay = 30 * time.Second
	}
	if cfg.Scheduler.LockTTL == 0 {
		cfg.Scheduler.LockTTL = 2 * time.Minute
	}

	hb := &cfg.Jobs.Heartbeat
	if hb.Cron == "" {
		hb.Cron = "*/5 * * * *"
	}
	if hb.LogPath == "" {
		hb.LogPath = "/tmp/crm_heartbeat_log.txt"
	}
	if hb.ProbeURL == "" {
		hb.ProbeURL = "http://localhost:" + cfg.App.Port + "/health"
	}
	if hb.Timeout == 0 {
		hb.Timeout = 5 * time.Second
	}
	if hb.Retries == 0 {
		hb.Retries = 1
	}

	rs := &cfg.Jobs.Restock
	if rs.Cron == "" {
		rs.Cron = "0 */12 * * *"
	}
	if rs.LogPath == "" {
		rs.LogPath = "/tmp/low_stock_updates_log.txt"
	}
	if rs.Level == 0 {
		rs.Level = 100
	}

	or := &cfg.Jobs.OrderReminders
	if or.Cron == "" {
		or.Cron = "0 8 * * *"
	}
	if or.LogPath == "" {
		or.LogPath = "/tmp/order_reminders_log.txt"
	}
	if or.Lookback == 0 {
		or.Lookback = 7 * 24 * time.Hour
	}

	wr := &cfg.Jobs.WeeklyReport
	if wr.Cron == "" {
		wr.Cron = "0 6 * * 1"
	}
	if wr.LogPath == "" {
		wr.LogPath = "/tmp/crm_report_log.txt"
	}

	if cfg.Events.Driver == "" {
		cfg.Events.Driver = EventsDriverLog
	}
	if cfg.Events.Exchange == "" {
		cfg.Events.Exchange = "crm.events"
	}

	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 30 * time.Second
	}
	if cfg.Telemetry.DBSlowQueryThresh == 0 {
		cfg.Telemetry.DBSlowQueryThresh = 200 * time.Millisecond
	}

	if cfg.Profiling.ServerAddress == "" {
		cfg.Profiling.ServerAddress = "http://localhost:4040"
	}
	if len(cfg.Profiling.ProfileTypes) == 0 {
		cfg.Profiling.ProfileTypes = []string{"cpu", "alloc_space", "inuse_space", "goroutines"}
	}

	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = cfg.App.Name + ":"
	}

	if cfg.Storage.Endpoint == "" {
		cfg.Storage.Endpoint = "http://localhost:9000"
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Storage.Bucket == "" {
		cfg.Storage.Bucket = "crm-reports"
	}
	if cfg.Storage.ReportPrefix == "" {
		cfg.Storage.ReportPrefix = "reports/weekly"
	}

	// API docs are only served outside production
	if cfg.App.Env == "production" {
		cfg.Swagger.Enabled = false
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.App.Env == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
		if c.Telemetry.DBLogFullSQL {
			return fmt.Errorf("telemetry.db_log_full_sql must be false in production")
		}
	}

	if c.Scheduler.WorkerCount < 1 {
		return fmt.Errorf("scheduler.worker_count must be at least 1")
	}
	if c.Scheduler.CheckInterval > time.Minute {
		return fmt.Errorf("scheduler.check_interval must not exceed 1m, cron expressions have minute resolution")
	}
	crons := map[string]string{
		"jobs.heartbeat.cron":       c.Jobs.Heartbeat.Cron,
		"jobs.restock.cron":         c.Jobs.Restock.Cron,
		"jobs.order_reminders.cron": c.Jobs.OrderReminders.Cron,
		"jobs.weekly_report.cron":   c.Jobs.WeeklyReport.Cron,
	}
	cron := gronx.New()
	for key, expr := range crons {
		if !cron.IsValid(expr) {
			return fmt.Errorf("%s: invalid cron expression %q", key, expr)
		}
	}
	if c.Jobs.Restock.Level < 0 {
		return fmt.Errorf("jobs.restock.level cannot be negative")
	}
	if c.Jobs.Heartbeat.Retries < 0 {
		return fmt.Errorf("jobs.heartbeat.retries cannot be negative")
	}

	switch c.Events.Driver {
	case EventsDriverLog:
	case EventsDriverAMQP:
		if c.Events.AMQPURL == "" {
			return fmt.Errorf("events.amqp_url is required when events.driver is %q", EventsDriverAMQP)
		}
	default:
		return fmt.Errorf("events.driver must be %q or %q, got %q", EventsDriverLog, EventsDriverAMQP, c.Events.Driver)
	}

	if c.Scheduler.DistributedLock && !c.Redis.Enabled {
		return fmt.Errorf("scheduler.distributed_lock requires redis.enabled")
	}
	if c.Storage.Enabled {
		if c.Storage.AccessKey == "" || c.Storage.SecretKey == "" {
			return fmt.Errorf("storage.access_key and storage.secret_key are required when storage is enabled")
		}
	}
	if c.Profiling.SpanProfiles && !c.Telemetry.Enabled {
		return fmt.Errorf("profiling.span_profiles requires telemetry.enabled")
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// IsProduction reports whether the application runs in production mode
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns the host:port address of the Redis server
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
