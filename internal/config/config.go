package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Notification NotificationConfig
	Scheduler    SchedulerConfig
	Analytics    AnalyticsConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level    string
	Encoding string
	Service  string
	Env      string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// NotificationConfig configures the email and WhatsApp channels. An empty
// RabbitMQURL or WhatsAppRelayURL leaves that channel on the log sender.
type NotificationConfig struct {
	EmailFrom         string
	RabbitMQURL       string
	EmailQueue        string
	WhatsAppRelayURL  string
	WhatsAppToken     string
	SendTimeoutSecond int
	Workers           int
	QueueSize         int
}

// SchedulerConfig drives the durable unban sweep.
type SchedulerConfig struct {
	UnbanSweepIntervalSeconds int
}

// AnalyticsConfig shapes the admin dashboard.
type AnalyticsConfig struct {
	CacheTTLSeconds int
	DailyWindowDays int
	MonthlyWindow   int
	RecentLimit     int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "pet-adoption-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Encoding: getEnv("LOG_ENCODING", "json"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Notification: NotificationConfig{
			EmailFrom:         getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			RabbitMQURL:       os.Getenv("NOTIFY_RABBITMQ_URL"),
			EmailQueue:        getEnv("NOTIFY_EMAIL_QUEUE", "adoption.email"),
			WhatsAppRelayURL:  os.Getenv("NOTIFY_WHATSAPP_RELAY_URL"),
			WhatsAppToken:     os.Getenv("NOTIFY_WHATSAPP_TOKEN"),
			SendTimeoutSecond: getEnvAsInt("NOTIFY_SEND_TIMEOUT_SECONDS", 10),
			Workers:           getEnvAsInt("NOTIFY_WORKERS", 4),
			QueueSize:         getEnvAsInt("NOTIFY_QUEUE_SIZE", 256),
		},
		Scheduler: SchedulerConfig{
			UnbanSweepIntervalSeconds: getEnvAsInt("UNBAN_SWEEP_INTERVAL_SECONDS", 60),
		},
		Analytics: AnalyticsConfig{
			CacheTTLSeconds: getEnvAsInt("ANALYTICS_CACHE_TTL_SECONDS", 60),
			DailyWindowDays: getEnvAsInt("ANALYTICS_DAILY_WINDOW_DAYS", 7),
			MonthlyWindow:   getEnvAsInt("ANALYTICS_MONTHLY_WINDOW", 6),
			RecentLimit:     getEnvAsInt("ANALYTICS_RECENT_LIMIT", 5),
		},
	}

	cfg.Logger.Service = cfg.App.Name
	cfg.Logger.Env = cfg.App.Env

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// SendTimeout bounds a single notification delivery attempt.
func (n NotificationConfig) SendTimeout() time.Duration {
	if n.SendTimeoutSecond <= 0 {
		return 10 * time.Second
	}
	return time.Duration(n.SendTimeoutSecond) * time.Second
}

// UnbanSweepInterval returns the period between unban sweeps.
func (s SchedulerConfig) UnbanSweepInterval() time.Duration {
	if s.UnbanSweepIntervalSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(s.UnbanSweepIntervalSeconds) * time.Second
}

// CacheTTL returns how long a dashboard stays cached. Zero disables caching.
func (a AnalyticsConfig) CacheTTL() time.Duration {
	if a.CacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(a.CacheTTLSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
