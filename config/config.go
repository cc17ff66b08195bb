// Package config handles loading and validation of application configuration
// from environment variables and an optional YAML configuration file.
package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/banking/credit-scoring-engine/errors"
	"github.com/banking/credit-scoring-engine/logger"
	"github.com/spf13/viper"
)

// Environment represents the application's running environment (development or production).
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

// ReadinessMode selects how the readiness indicator answers.
type ReadinessMode string

const (
	// ReadinessStatic reports the fixed readiness values without contacting anything.
	ReadinessStatic ReadinessMode = "static"
	// ReadinessProbe derives readiness from live dependency probes.
	ReadinessProbe ReadinessMode = "probe"
)

const DefaultServiceName = "credit-scoring-engine"

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Environment            Environment `mapstructure:"ENVIRONMENT" yaml:"environment"`
	Port                   string      `mapstructure:"PORT" yaml:"port"`
	AllowedOrigins         []string    `mapstructure:"ALLOWED_ORIGINS" yaml:"allowed_origins"`
	Version                string      `mapstructure:"VERSION" yaml:"version"`
	ShutdownTimeoutSeconds int         `mapstructure:"SHUTDOWN_TIMEOUT_SECONDS" yaml:"shutdown_timeout_seconds"`
}

// HealthConfig controls the liveness and readiness indicators.
type HealthConfig struct {
	ServiceName    string        `mapstructure:"SERVICE_NAME" yaml:"service_name"`
	ReadinessMode  ReadinessMode `mapstructure:"READINESS_MODE" yaml:"readiness_mode"`
	ProbeTimeoutMs int           `mapstructure:"PROBE_TIMEOUT_MS" yaml:"probe_timeout_ms"`
}

// ProbeTimeout returns the per-probe deadline.
func (h HealthConfig) ProbeTimeout() time.Duration {
	return time.Duration(h.ProbeTimeoutMs) * time.Millisecond
}

// BureauConfig holds the health endpoints of the credit bureaus probed in probe mode.
type BureauConfig struct {
	ExperianURL   string `mapstructure:"EXPERIAN_URL" yaml:"experian_url"`
	EquifaxURL    string `mapstructure:"EQUIFAX_URL" yaml:"equifax_url"`
	TransUnionURL string `mapstructure:"TRANSUNION_URL" yaml:"transunion_url"`
}

// Endpoints returns the configured bureau URLs keyed by bureau name.
func (b BureauConfig) Endpoints() map[string]string {
	return map[string]string{
		"experian":   b.ExperianURL,
		"equifax":    b.EquifaxURL,
		"transunion": b.TransUnionURL,
	}
}

// DatabaseConfig holds connection details for the model registry database.
type DatabaseConfig struct {
	Enabled      bool   `mapstructure:"ENABLED" yaml:"enabled"`
	Host         string `mapstructure:"HOST" yaml:"host"`
	Port         int    `mapstructure:"PORT" yaml:"port"`
	User         string `mapstructure:"USER" yaml:"user"`
	Password     string `mapstructure:"PASSWORD" yaml:"password"`
	Name         string `mapstructure:"NAME" yaml:"name"`
	SSLMode      string `mapstructure:"SSL_MODE" yaml:"ssl_mode"`
	MaxOpenConns int    `mapstructure:"MAX_OPEN_CONNS" yaml:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"MAX_IDLE_CONNS" yaml:"max_idle_conns"`
	ConnMaxLife  string `mapstructure:"CONN_MAX_LIFE" yaml:"conn_max_life"`
}

// URL returns a postgres:// connection URL. User and password are escaped
// as userinfo, so any character is safe in them.
func (c *DatabaseConfig) URL() string {
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	user := url.User(c.User)
	if c.Password != "" {
		user = url.UserPassword(c.User, c.Password)
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     user,
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Name,
		RawQuery: url.Values{"sslmode": []string{sslmode}}.Encode(),
	}
	return u.String()
}

// RedisConfig holds connection details for the feature cache.
type RedisConfig struct {
	Enabled      bool   `mapstructure:"ENABLED" yaml:"enabled"`
	Address      string `mapstructure:"ADDRESS" yaml:"address"`
	Password     string `mapstructure:"PASSWORD" yaml:"password"`
	DB           int    `mapstructure:"DB" yaml:"db"`
	UseTLS       bool   `mapstructure:"USE_TLS" yaml:"use_tls"`
	PoolSize     int    `mapstructure:"POOL_SIZE" yaml:"pool_size"`
	MinIdleConns int    `mapstructure:"MIN_IDLE_CONNS" yaml:"min_idle_conns"`
}

// ModelStoreConfig points at the S3 object holding the active scoring model.
type ModelStoreConfig struct {
	Enabled         bool   `mapstructure:"ENABLED" yaml:"enabled"`
	Bucket          string `mapstructure:"BUCKET" yaml:"bucket"`
	Key             string `mapstructure:"KEY" yaml:"key"`
	Region          string `mapstructure:"REGION" yaml:"region"`
	Endpoint        string `mapstructure:"ENDPOINT" yaml:"endpoint"`
	AccessKeyID     string `mapstructure:"ACCESS_KEY_ID" yaml:"access_key_id"`
	SecretAccessKey string `mapstructure:"SECRET_ACCESS_KEY" yaml:"secret_access_key"`
}

// Config aggregates all application configuration sections.
type Config struct {
	Server     ServerConfig     `mapstructure:"SERVER" yaml:"server"`
	Health     HealthConfig     `mapstructure:"HEALTH" yaml:"health"`
	Bureaus    BureauConfig     `mapstructure:"BUREAUS" yaml:"bureaus"`
	Database   DatabaseConfig   `mapstructure:"DATABASE" yaml:"database"`
	Redis      RedisConfig      `mapstructure:"REDIS" yaml:"redis"`
	ModelStore ModelStoreConfig `mapstructure:"MODEL_STORE" yaml:"model_store"`
}

// IsDevelopment returns true if the application is running in development environment.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == EnvDevelopment
}

// IsProduction returns true if the application is running in production environment.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == EnvProduction
}

// bindEnvVars binds multiple environment variables to config keys.
// Format: []{configKey, envVar}
func bindEnvVars(v *viper.Viper, bindings [][2]string) error {
	for _, b := range bindings {
		if err := v.BindEnv(b[0], b[1]); err != nil {
			return fmt.Errorf("failed to bind %s: %w", b[0], err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER.ENVIRONMENT", EnvDevelopment)
	v.SetDefault("SERVER.PORT", "8080")
	v.SetDefault("SERVER.ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("SERVER.VERSION", "dev")
	v.SetDefault("SERVER.SHUTDOWN_TIMEOUT_SECONDS", 15)
	v.SetDefault("HEALTH.SERVICE_NAME", DefaultServiceName)
	v.SetDefault("HEALTH.READINESS_MODE", ReadinessStatic)
	v.SetDefault("HEALTH.PROBE_TIMEOUT_MS", 2000)
	v.SetDefault("BUREAUS.EXPERIAN_URL", "")
	v.SetDefault("BUREAUS.EQUIFAX_URL", "")
	v.SetDefault("BUREAUS.TRANSUNION_URL", "")
	v.SetDefault("DATABASE.ENABLED", false)
	v.SetDefault("DATABASE.HOST", "localhost")
	v.SetDefault("DATABASE.PORT", 5432)
	v.SetDefault("DATABASE.USER", "postgres")
	v.SetDefault("DATABASE.PASSWORD", "")
	v.SetDefault("DATABASE.NAME", "model_registry")
	v.SetDefault("DATABASE.SSL_MODE", "disable")
	v.SetDefault("DATABASE.MAX_OPEN_CONNS", 4)
	v.SetDefault("DATABASE.MAX_IDLE_CONNS", 1)
	v.SetDefault("DATABASE.CONN_MAX_LIFE", "1h")
	v.SetDefault("REDIS.ENABLED", false)
	v.SetDefault("REDIS.ADDRESS", "localhost:6379")
	v.SetDefault("REDIS.PASSWORD", "")
	v.SetDefault("REDIS.DB", 0)
	v.SetDefault("REDIS.USE_TLS", false)
	v.SetDefault("REDIS.POOL_SIZE", 3)
	v.SetDefault("REDIS.MIN_IDLE_CONNS", 1)
	v.SetDefault("MODEL_STORE.ENABLED", false)
	v.SetDefault("MODEL_STORE.BUCKET", "")
	v.SetDefault("MODEL_STORE.KEY", "")
	v.SetDefault("MODEL_STORE.REGION", "us-east-1")
	v.SetDefault("MODEL_STORE.ENDPOINT", "")
	v.SetDefault("MODEL_STORE.ACCESS_KEY_ID", "")
	v.SetDefault("MODEL_STORE.SECRET_ACCESS_KEY", "")
}

var envBindings = [][2]string{
	// Server config
	{"SERVER.ENVIRONMENT", "SERVER_ENVIRONMENT"},
	{"SERVER.PORT", "PORT"},
	{"SERVER.ALLOWED_ORIGINS", "ALLOWED_ORIGINS"},
	{"SERVER.VERSION", "VERSION"},
	{"SERVER.SHUTDOWN_TIMEOUT_SECONDS", "SHUTDOWN_TIMEOUT_SECONDS"},
	// Health config
	{"HEALTH.SERVICE_NAME", "HEALTH_SERVICE_NAME"},
	{"HEALTH.READINESS_MODE", "HEALTH_READINESS_MODE"},
	{"HEALTH.PROBE_TIMEOUT_MS", "HEALTH_PROBE_TIMEOUT_MS"},
	// Bureau endpoints
	{"BUREAUS.EXPERIAN_URL", "BUREAU_EXPERIAN_URL"},
	{"BUREAUS.EQUIFAX_URL", "BUREAU_EQUIFAX_URL"},
	{"BUREAUS.TRANSUNION_URL", "BUREAU_TRANSUNION_URL"},
	// Database config
	{"DATABASE.ENABLED", "DB_ENABLED"},
	{"DATABASE.HOST", "DB_HOST"},
	{"DATABASE.PORT", "DB_PORT"},
	{"DATABASE.USER", "DB_USER"},
	{"DATABASE.PASSWORD", "DB_PASSWORD"},
	{"DATABASE.NAME", "DB_NAME"},
	{"DATABASE.SSL_MODE", "DB_SSL_MODE"},
	// Redis config
	{"REDIS.ENABLED", "REDIS_ENABLED"},
	{"REDIS.ADDRESS", "REDIS_ADDRESS"},
	{"REDIS.PASSWORD", "REDIS_PASSWORD"},
	{"REDIS.DB", "REDIS_DB"},
	{"REDIS.USE_TLS", "REDIS_USE_TLS"},
	// Model store config
	{"MODEL_STORE.ENABLED", "MODEL_STORE_ENABLED"},
	{"MODEL_STORE.BUCKET", "MODEL_STORE_BUCKET"},
	{"MODEL_STORE.KEY", "MODEL_STORE_KEY"},
	{"MODEL_STORE.REGION", "MODEL_STORE_REGION"},
	{"MODEL_STORE.ENDPOINT", "MODEL_STORE_ENDPOINT"},
	{"MODEL_STORE.ACCESS_KEY_ID", "MODEL_STORE_ACCESS_KEY_ID"},
	{"MODEL_STORE.SECRET_ACCESS_KEY", "MODEL_STORE_SECRET_ACCESS_KEY"},
}

// LoadConfig loads configuration from environment variables using Viper.
// When configFile is non-empty it is read first and environment variables
// override its values.
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()
	log := logger.GetLogger()

	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := bindEnvVars(v, envBindings); err != nil {
		return nil, err
	}

	log.Infow("Configuration loaded",
		"environment", v.GetString("SERVER.ENVIRONMENT"),
		"server_port", v.GetString("SERVER.PORT"),
		"readiness_mode", v.GetString("HEALTH.READINESS_MODE"),
		"db_enabled", v.GetBool("DATABASE.ENABLED"),
		"redis_enabled", v.GetBool("REDIS.ENABLED"),
		"model_store_enabled", v.GetBool("MODEL_STORE.ENABLED"),
	)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal failed: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	log.Info("Configuration validated successfully")
	return &cfg, nil
}

// validateConfig checks if the loaded configuration values are valid.
func validateConfig(cfg *Config) error {
	log := logger.GetLogger()

	if cfg.Server.Port == "" {
		return apperrors.InvalidConfig("Server port is required", "")
	}
	if cfg.Server.ShutdownTimeoutSeconds <= 0 {
		return apperrors.InvalidConfig("Shutdown timeout must be positive", "")
	}
	if !containsWildcard(cfg.Server.AllowedOrigins) {
		for _, origin := range cfg.Server.AllowedOrigins {
			if err := validateOrigin(origin); err != nil {
				return apperrors.InvalidConfig("Invalid allowed origin", fmt.Sprintf("'%s': %v", origin, err))
			}
		}
	}

	if strings.TrimSpace(cfg.Health.ServiceName) == "" {
		return apperrors.InvalidConfig("Health service name is required", "")
	}
	if cfg.Health.ProbeTimeoutMs <= 0 {
		return apperrors.InvalidConfig("Health probe timeout must be positive", "")
	}

	switch cfg.Health.ReadinessMode {
	case ReadinessStatic:
		if cfg.Database.Enabled || cfg.Redis.Enabled || cfg.ModelStore.Enabled {
			log.Warn("Dependencies are configured but readiness mode is static; they will not be probed")
		}
	case ReadinessProbe:
		for name, endpoint := range cfg.Bureaus.Endpoints() {
			if endpoint == "" {
				return apperrors.InvalidConfig("Bureau URL is required in probe mode", name)
			}
			if _, err := url.ParseRequestURI(endpoint); err != nil {
				return apperrors.InvalidConfig("Invalid bureau URL", fmt.Sprintf("%s: %v", name, err))
			}
		}
	default:
		return apperrors.InvalidConfig("Unknown readiness mode", string(cfg.Health.ReadinessMode))
	}

	if cfg.Database.Enabled {
		if cfg.Database.Host == "" {
			return apperrors.InvalidConfig("Database host is required", "")
		}
		if cfg.Database.User == "" {
			return apperrors.InvalidConfig("Database user is required", "")
		}
		if cfg.Database.Name == "" {
			return apperrors.InvalidConfig("Database name is required", "")
		}
		if cfg.Database.Password == "" {
			log.Warn("Database password is not set. Ensure this is intended (e.g., using trusted auth).")
		}
	}

	if cfg.Redis.Enabled && cfg.Redis.Address == "" {
		return apperrors.InvalidConfig("Redis address is required", "")
	}

	if cfg.ModelStore.Enabled {
		if cfg.ModelStore.Bucket == "" || cfg.ModelStore.Key == "" {
			return apperrors.InvalidConfig("Model store bucket and key are required", "")
		}
		if (cfg.ModelStore.AccessKeyID == "") != (cfg.ModelStore.SecretAccessKey == "") {
			return apperrors.InvalidConfig("Model store access key id and secret must be set together", "")
		}
	}

	return nil
}

// validateOrigin accepts absolute origins and "*.domain" subdomain wildcards.
func validateOrigin(origin string) error {
	if domain, ok := strings.CutPrefix(origin, "*."); ok {
		if domain == "" || strings.ContainsAny(domain, "/:*") {
			return fmt.Errorf("malformed wildcard origin")
		}
		return nil
	}
	_, err := url.ParseRequestURI(origin)
	return err
}

// containsWildcard checks if the list of allowed origins contains the wildcard "*".
func containsWildcard(origins []string) bool {
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return false
}
