package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	domainconfig "axon-backend/domain/config"
	"axon-backend/domain/layout"
	"axon-backend/pkg/utils"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string `yaml:"server_address"`
	Environment   string `yaml:"environment" validate:"oneof=development staging production test"`

	// AWS configuration
	AWSRegion      string `yaml:"aws_region"`
	TableName      string `yaml:"table_name"`
	OwnerIndexName string `yaml:"owner_index_name"` // GSI1 - wheels by owner
	EventBusName   string `yaml:"event_bus_name"`
	StorageBackend string `yaml:"storage_backend" validate:"oneof=dynamodb memory"`
	CacheTTL       int    `yaml:"cache_ttl" validate:"gte=0"` // seconds, 0 disables the wheel cache

	// Lambda configuration
	IsLambda bool `yaml:"-"`

	// Logging
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`

	// Authentication
	JWTSecret  string `yaml:"jwt_secret"`
	JWTIssuer  string `yaml:"jwt_issuer"`
	EnableAuth bool   `yaml:"enable_auth"`

	// Feature flags
	EnableMetrics  bool     `yaml:"enable_metrics"`
	EnableTracing  bool     `yaml:"enable_tracing"`
	EnableCORS     bool     `yaml:"enable_cors"`
	AllowedOrigins []string `yaml:"allowed_origins"`

	// Editing sessions
	PollInterval   time.Duration `yaml:"poll_interval" validate:"gt=0"`
	HistoryLimit   int           `yaml:"history_limit" validate:"gte=0"`
	LayoutStrategy string        `yaml:"layout_strategy"`

	// Votes per second allowed per user, 0 disables limiting
	VoteRateLimit float64 `yaml:"vote_rate_limit" validate:"gte=0"`
	VoteBurst     int     `yaml:"vote_burst" validate:"gte=0"`

	// Remote API used by wheelctl and background sessions
	RemoteBaseURL  string               `yaml:"remote_base_url"`
	RemoteTimeout  time.Duration        `yaml:"remote_timeout" validate:"gt=0"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker"`

	// Where the YAML overlay was read from, empty when none
	ConfigFile string `yaml:"-"`
}

// CircuitBreakerConfig tunes the breaker around remote calls
type CircuitBreakerConfig struct {
	MaxRequests         uint32        `yaml:"max_requests"`
	Interval            time.Duration `yaml:"interval"`
	Timeout             time.Duration `yaml:"timeout"`
	ConsecutiveFailures uint32        `yaml:"consecutive_failures" validate:"gt=0"`
}

// Default returns the configuration used when nothing overrides it
func Default() *Config {
	return &Config{
		ServerAddress:  ":8080",
		Environment:    "development",
		AWSRegion:      "us-west-2",
		TableName:      "axon-wheels",
		OwnerIndexName: "GSI1",
		EventBusName:   "axon-events",
		StorageBackend: "dynamodb",
		CacheTTL:       30,
		LogLevel:       "info",
		JWTIssuer:      "axon-backend",
		EnableCORS:     true,
		AllowedOrigins: []string{"*"},
		PollInterval:   5 * time.Second,
		HistoryLimit:   domainconfig.DefaultDomainConfig().HistoryLimit,
		LayoutStrategy: string(layout.StrategyTree),
		VoteRateLimit:  2,
		VoteBurst:      5,
		RemoteBaseURL:  "http://localhost:8080",
		RemoteTimeout:  10 * time.Second,
		CircuitBreaker: CircuitBreakerConfig{
			MaxRequests:         1,
			Interval:            time.Minute,
			Timeout:             30 * time.Second,
			ConsecutiveFailures: 5,
		},
	}
}

// LoadConfig builds the configuration from defaults, then the YAML file named
// by CONFIG_FILE (if any), then environment variables. Later sources win.
func LoadConfig() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := LoadFile(path, cfg); err != nil {
			return nil, err
		}
		cfg.ConfigFile = path
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load is an alias for LoadConfig for backwards compatibility
func Load() (*Config, error) {
	return LoadConfig()
}

func applyEnv(cfg *Config) {
	envString(&cfg.ServerAddress, "SERVER_ADDRESS")
	envString(&cfg.Environment, "ENVIRONMENT")
	envString(&cfg.AWSRegion, "AWS_REGION")
	envString(&cfg.TableName, "TABLE_NAME")
	envString(&cfg.OwnerIndexName, "OWNER_INDEX_NAME")
	envString(&cfg.EventBusName, "EVENT_BUS_NAME")
	envString(&cfg.StorageBackend, "STORAGE_BACKEND")
	envInt(&cfg.CacheTTL, "CACHE_TTL")
	envString(&cfg.LogLevel, "LOG_LEVEL")
	envString(&cfg.JWTSecret, "JWT_SECRET")
	envString(&cfg.JWTIssuer, "JWT_ISSUER")
	envBool(&cfg.EnableAuth, "ENABLE_AUTH")
	envBool(&cfg.EnableMetrics, "ENABLE_METRICS")
	envBool(&cfg.EnableTracing, "ENABLE_TRACING")
	envBool(&cfg.EnableCORS, "ENABLE_CORS")
	envList(&cfg.AllowedOrigins, "ALLOWED_ORIGINS")
	envDuration(&cfg.PollInterval, "POLL_INTERVAL")
	envInt(&cfg.HistoryLimit, "HISTORY_LIMIT")
	envString(&cfg.LayoutStrategy, "LAYOUT_STRATEGY")
	envFloat(&cfg.VoteRateLimit, "VOTE_RATE_LIMIT")
	envInt(&cfg.VoteBurst, "VOTE_BURST")
	envString(&cfg.RemoteBaseURL, "REMOTE_BASE_URL")
	envDuration(&cfg.RemoteTimeout, "REMOTE_TIMEOUT")

	cfg.IsLambda = os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if err := utils.ValidateStruct(c); err != nil {
		return err
	}
	if _, err := layout.ParseStrategy(c.LayoutStrategy); err != nil {
		return fmt.Errorf("LAYOUT_STRATEGY: %w", err)
	}
	if c.StorageBackend == "dynamodb" && c.TableName == "" {
		return fmt.Errorf("TABLE_NAME is required for the dynamodb backend")
	}
	if c.IsProduction() {
		if c.EnableAuth && c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		if c.EventBusName == "" {
			return fmt.Errorf("EVENT_BUS_NAME is required")
		}
	}
	return nil
}

// DomainConfig returns the domain rules with the configured overrides applied
func (c *Config) DomainConfig() *domainconfig.DomainConfig {
	d := domainconfig.DefaultDomainConfig()
	d.HistoryLimit = c.HistoryLimit
	return d
}

// Strategy returns the configured layout strategy
func (c *Config) Strategy() layout.Strategy {
	s, err := layout.ParseStrategy(c.LayoutStrategy)
	if err != nil {
		return layout.StrategyTree
	}
	return s
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func envString(target *string, key string) {
	if value := os.Getenv(key); value != "" {
		*target = value
	}
}

func envBool(target *bool, key string) {
	if value := os.Getenv(key); value != "" {
		*target = value == "true" || value == "1" || value == "yes"
	}
}

func envInt(target *int, key string) {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			*target = intVal
		}
	}
}

func envFloat(target *float64, key string) {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			*target = f
		}
	}
}

func envDuration(target *time.Duration, key string) {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			*target = d
		}
	}
}

func envList(target *[]string, key string) {
	value := os.Getenv(key)
	if value == "" {
		return
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*target = out
}
