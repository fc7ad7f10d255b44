package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

var (
	AppConfig Config
	envLoaded bool
)

// Store backends and drivers accepted in STORE_BACKEND, KV_DRIVER and DB_DRIVER.
const (
	BackendKV  = "kv"
	BackendSQL = "sql"

	KVDriverMemory = "memory"
	KVDriverRedis  = "redis"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const (
	devAPIURL  = "http://backend:8000/api"
	prodAPIURL = "https://apicrm.davalores.com.ar/api"
)

type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Address  string `json:"address"`
	Password string `json:"-"`
	DB       int    `json:"db"`
	Prefix   string `json:"prefix"`
}

type Config struct {
	Environment    string `json:"environment"`
	ServerPort     string `json:"server_port"`
	StoreBackend   string `json:"store_backend"`
	KVDriver       string `json:"kv_driver"`
	DBDriver       string `json:"db_driver"`
	SQLitePath     string `json:"sqlite_path"`
	DBHost         string `json:"db_host"`
	DBPort         string `json:"db_port"`
	DBUser         string `json:"db_user"`
	DBPassword     string `json:"-"`
	DBName         string `json:"db_name"`
	DBSSLMode      string `json:"db_ssl_mode"`
	DBMaxIdleConns int    `json:"db_max_idle_conns"`
	DBMaxOpenConns int    `json:"db_max_open_conns"`

	Redis RedisConfig `json:"redis"`

	JWTSecret          string   `json:"-"`
	RateLimitPerMinute int      `json:"rate_limit_per_minute"`
	CORSOrigins        []string `json:"cors_origins"`

	SMTPHost     string `json:"smtp_host"`
	SMTPPort     int    `json:"smtp_port"`
	SMTPUsername string `json:"smtp_username"`
	SMTPPassword string `json:"-"`
	FromEmail    string `json:"from_email"`

	SentryDSN         string        `json:"-"`
	FollowUpInterval  time.Duration `json:"follow_up_interval"`
	RuntimeConfigPath string        `json:"runtime_config_path"`

	APIBaseURL   string `json:"api_base_url"`
	DatascopeURL string `json:"datascope_url"`
}

func init() {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()
	envLoaded = true
}

// LoadConfig reads the environment into AppConfig.
func LoadConfig() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	AppConfig = cfg
	logConfig()
	return nil
}

// Load builds and validates a Config from the environment.
func Load() (Config, error) {
	cfg := Config{
		Environment:    getEnv("ENVIRONMENT", "development"),
		ServerPort:     getEnv("SERVER_PORT", "8000"),
		StoreBackend:   strings.ToLower(getEnv("STORE_BACKEND", BackendKV)),
		KVDriver:       strings.ToLower(getEnv("KV_DRIVER", KVDriverMemory)),
		DBDriver:       strings.ToLower(getEnv("DB_DRIVER", DBDriverPostgres)),
		SQLitePath:     getEnv("SQLITE_PATH", "prospectcrm.db"),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", ""),
		DBName:         getEnv("DB_NAME", "prospectcrm"),
		DBSSLMode:      getEnv("DB_SSL_MODE", "disable"),
		DBMaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
		DBMaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Address:  getEnv("REDIS_ADDRESS", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Prefix:   getEnv("REDIS_PREFIX", "crm:"),
		},
		JWTSecret:          getEnv("JWT_SECRET", ""),
		RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 120),
		CORSOrigins:        splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		SMTPHost:           getEnv("SMTP_HOST", ""),
		SMTPPort:           getEnvAsInt("SMTP_PORT", 587),
		SMTPUsername:       getEnv("SMTP_USERNAME", ""),
		SMTPPassword:       getEnv("SMTP_PASSWORD", ""),
		FromEmail:          getEnv("FROM_EMAIL", ""),
		SentryDSN:          getEnv("SENTRY_DSN", ""),
		FollowUpInterval:   getEnvAsDuration("FOLLOWUP_INTERVAL", 15*time.Minute),
		RuntimeConfigPath:  getEnv("RUNTIME_CONFIG_PATH", ""),
	}
	// the redis kv driver needs a connection even without REDIS_ENABLED
	if cfg.KVDriver == KVDriverRedis {
		cfg.Redis.Enabled = true
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	api, secondary, err := ResolveAPIURLs(cfg)
	if err != nil {
		return Config{}, err
	}
	cfg.APIBaseURL, cfg.DatascopeURL = api, secondary
	return cfg, nil
}

// Validate checks the backend selection and the settings it requires.
func (c Config) Validate() error {
	switch c.StoreBackend {
	case BackendKV:
		if c.KVDriver != KVDriverMemory && c.KVDriver != KVDriverRedis {
			return fmt.Errorf("unknown KV_DRIVER %q", c.KVDriver)
		}
	case BackendSQL:
		switch c.DBDriver {
		case DBDriverPostgres:
			if c.DBPassword == "" {
				return errors.New("DB_PASSWORD is required")
			}
		case DBDriverSQLite:
			if c.SQLitePath == "" {
				return errors.New("SQLITE_PATH is required")
			}
		default:
			return fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}

	if c.RateLimitPerMinute < 0 {
		return errors.New("RATE_LIMIT_PER_MINUTE must not be negative")
	}
	if c.FollowUpInterval <= 0 {
		return errors.New("FOLLOWUP_INTERVAL must be positive")
	}
	return nil
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

// SMTPEnabled reports whether outgoing mail can be delivered.
func (c Config) SMTPEnabled() bool {
	return c.SMTPHost != "" && c.FromEmail != ""
}

// PostgresDSN is the connection string for the postgres driver.
func (c Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost,
		c.DBPort,
		c.DBUser,
		c.DBPassword,
		c.DBName,
		c.DBSSLMode,
	)
}

type runtimeConfig struct {
	APIBaseURL   string `json:"API_BASE_URL"`
	DatascopeURL string `json:"DATASCOPE_URL"`
}

// ResolveAPIURLs picks the public API base URL and the secondary service URL.
// A runtime config file wins over the environment; without either, the API
// URL falls back to the default for the environment and the secondary is empty.
func ResolveAPIURLs(c Config) (api string, secondary string, err error) {
	var rt runtimeConfig
	if c.RuntimeConfigPath != "" {
		raw, err := os.ReadFile(c.RuntimeConfigPath)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return "", "", fmt.Errorf("read runtime config: %w", err)
		default:
			if err := json.Unmarshal(raw, &rt); err != nil {
				return "", "", fmt.Errorf("parse runtime config: %w", err)
			}
		}
	}

	api = firstNonEmpty(rt.APIBaseURL, getEnv("API_BASE_URL", ""))
	if api == "" {
		api = devAPIURL
		if c.IsProduction() {
			api = prodAPIURL
		}
	}
	secondary = firstNonEmpty(rt.DatascopeURL, getEnv("DATASCOPE_URL", ""))
	return api, secondary, nil
}

// Helper functions
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	if !envLoaded && fallback == "" {
		logrus.Warnf("Environment variable %s not found and no fallback provided", key)
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsBool(key string, fallback bool) bool {
	value, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	value, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return value
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func maskPassword(dsn string) string {
	const passwordMarker = "password="
	startIdx := strings.Index(dsn, passwordMarker)
	if startIdx == -1 {
		return dsn
	}

	startIdx += len(passwordMarker)
	endIdx := strings.IndexAny(dsn[startIdx:], " ")
	if endIdx == -1 {
		return dsn[:startIdx] + "*****"
	}
	return dsn[:startIdx] + "*****" + dsn[startIdx+endIdx:]
}

func logConfig() {
	fields := logrus.Fields{
		"environment":   AppConfig.Environment,
		"server_port":   AppConfig.ServerPort,
		"store_backend": AppConfig.StoreBackend,
		"api_base_url":  AppConfig.APIBaseURL,
		"smtp":          AppConfig.SMTPEnabled(),
		"redis":         AppConfig.Redis.Enabled,
		"auth":          AppConfig.JWTSecret != "",
	}
	switch AppConfig.StoreBackend {
	case BackendKV:
		fields["kv_driver"] = AppConfig.KVDriver
	case BackendSQL:
		fields["db_driver"] = AppConfig.DBDriver
		if AppConfig.DBDriver == DBDriverPostgres {
			fields["database"] = fmt.Sprintf("%s@%s:%s/%s",
				AppConfig.DBUser,
				AppConfig.DBHost,
				AppConfig.DBPort,
				AppConfig.DBName)
		}
	}
	logrus.WithFields(fields).Info("Loaded configuration")
}
