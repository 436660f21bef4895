package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage backends
const (
	BackendDynamoDB = "dynamodb"
	BackendBadger   = "badger"
	BackendMemory   = "memory"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress   string        `yaml:"server_address"`
	Environment     string        `yaml:"environment"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// AWS configuration
	AWSRegion     string `yaml:"aws_region"`
	DynamoDBTable string `yaml:"dynamodb_table"`
	EventBusName  string `yaml:"event_bus_name"`

	// Storage
	PromptStore string `yaml:"prompt_store"` // dynamodb or memory
	DraftStore  string `yaml:"draft_store"`  // badger or memory
	BadgerPath  string `yaml:"badger_path"`

	// Circuit breaker around the prompt store
	BreakerMaxFailures uint32        `yaml:"breaker_max_failures"`
	BreakerOpenTimeout time.Duration `yaml:"breaker_open_timeout"`

	// Lambda configuration
	IsLambda           bool   `yaml:"is_lambda"`
	LambdaFunctionName string `yaml:"-"`

	// Logging
	LogLevel string `yaml:"log_level"`

	// Authentication
	JWTSecret   string   `yaml:"-"`
	JWTIssuer   string   `yaml:"jwt_issuer"`
	JWTAudience []string `yaml:"jwt_audience"`

	// Rate limits, requests per minute
	IPRateLimit   int `yaml:"ip_rate_limit"`
	UserRateLimit int `yaml:"user_rate_limit"`

	// Feature flags
	EnableMetrics    bool     `yaml:"enable_metrics"`
	EnableCloudWatch bool     `yaml:"enable_cloudwatch"`
	EnableTracing    bool     `yaml:"enable_tracing"`
	EnableCORS       bool     `yaml:"enable_cors"`
	EnableEvents     bool     `yaml:"enable_events"`
	AllowedOrigins   []string `yaml:"allowed_origins"`

	// Where the configuration came from, lowest priority first
	LoadedFrom []string `yaml:"-"`
}

// defaultConfig returns the built-in defaults
func defaultConfig() *Config {
	return &Config{
		ServerAddress:      ":8080",
		Environment:        "development",
		ShutdownTimeout:    30 * time.Second,
		AWSRegion:          "us-west-2",
		DynamoDBTable:      "promptbuilder",
		EventBusName:       "promptbuilder-events",
		PromptStore:        BackendMemory,
		DraftStore:         BackendMemory,
		BadgerPath:         "./data/drafts",
		BreakerMaxFailures: 5,
		BreakerOpenTimeout: 30 * time.Second,
		LogLevel:           "info",
		JWTIssuer:          "promptbuilder",
		JWTAudience:        []string{"promptbuilder-api"},
		IPRateLimit:        100,
		UserRateLimit:      200,
		EnableMetrics:      true,
		EnableCORS:         true,
		AllowedOrigins:     []string{"http://localhost:5173", "http://localhost:3000"},
	}
}

// LoadConfig loads configuration. Sources, lowest priority first:
// built-in defaults, the YAML file named by CONFIG_FILE, environment variables.
func LoadConfig() (*Config, error) {
	cfg := defaultConfig()
	cfg.LoadedFrom = []string{"defaults"}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.loadEnvironment()
	cfg.LoadedFrom = append(cfg.LoadedFrom, "environment")

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load is an alias for LoadConfig
func Load() (*Config, error) {
	return LoadConfig()
}

// loadFile overlays a YAML file on the configuration
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := c.mergeYAML(data); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	c.LoadedFrom = append(c.LoadedFrom, path)
	return nil
}

// mergeYAML overlays the keys present in data; absent keys keep their value
func (c *Config) mergeYAML(data []byte) error {
	return yaml.Unmarshal(data, c)
}

func (c *Config) loadEnvironment() {
	c.ServerAddress = getEnv("SERVER_ADDRESS", c.ServerAddress)
	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	c.ShutdownTimeout = getEnvDuration("SHUTDOWN_TIMEOUT", c.ShutdownTimeout)

	c.AWSRegion = getEnv("AWS_REGION", c.AWSRegion)
	c.DynamoDBTable = getEnv("TABLE_NAME", getEnv("DYNAMODB_TABLE", c.DynamoDBTable))
	c.EventBusName = getEnv("EVENT_BUS_NAME", c.EventBusName)

	c.PromptStore = getEnv("PROMPT_STORE", c.PromptStore)
	c.DraftStore = getEnv("DRAFT_STORE", c.DraftStore)
	c.BadgerPath = getEnv("BADGER_PATH", c.BadgerPath)
	c.BreakerMaxFailures = uint32(getEnvInt("BREAKER_MAX_FAILURES", int(c.BreakerMaxFailures)))
	c.BreakerOpenTimeout = getEnvDuration("BREAKER_OPEN_TIMEOUT", c.BreakerOpenTimeout)

	c.LambdaFunctionName = getEnv("AWS_LAMBDA_FUNCTION_NAME", c.LambdaFunctionName)
	c.IsLambda = getEnvBool("IS_LAMBDA", c.IsLambda || c.LambdaFunctionName != "")

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.JWTIssuer = getEnv("JWT_ISSUER", c.JWTIssuer)
	c.JWTAudience = getEnvList("JWT_AUDIENCE", c.JWTAudience)

	c.IPRateLimit = getEnvInt("IP_RATE_LIMIT", c.IPRateLimit)
	c.UserRateLimit = getEnvInt("USER_RATE_LIMIT", c.UserRateLimit)

	c.EnableMetrics = getEnvBool("ENABLE_METRICS", c.EnableMetrics)
	c.EnableCloudWatch = getEnvBool("ENABLE_CLOUDWATCH", c.EnableCloudWatch)
	c.EnableTracing = getEnvBool("ENABLE_TRACING", c.EnableTracing)
	c.EnableCORS = getEnvBool("ENABLE_CORS", c.EnableCORS)
	c.EnableEvents = getEnvBool("ENABLE_EVENTS", c.EnableEvents)
	c.AllowedOrigins = getEnvList("ALLOWED_ORIGINS", c.AllowedOrigins)
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	switch c.PromptStore {
	case BackendDynamoDB, BackendMemory:
	default:
		return fmt.Errorf("unsupported prompt store %q", c.PromptStore)
	}
	switch c.DraftStore {
	case BackendBadger, BackendMemory:
	default:
		return fmt.Errorf("unsupported draft store %q", c.DraftStore)
	}
	if c.DraftStore == BackendBadger && c.BadgerPath == "" {
		return fmt.Errorf("BADGER_PATH is required for the badger draft store")
	}
	if c.PromptStore == BackendDynamoDB && c.DynamoDBTable == "" {
		return fmt.Errorf("DYNAMODB_TABLE is required")
	}

	if c.Environment == "production" {
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		if c.PromptStore == BackendMemory {
			return fmt.Errorf("the memory prompt store is not allowed in production")
		}
		if c.EnableEvents && c.EventBusName == "" {
			return fmt.Errorf("EVENT_BUS_NAME is required")
		}
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// NeedsAWS reports whether any configured component talks to AWS
func (c *Config) NeedsAWS() bool {
	return c.PromptStore == BackendDynamoDB || c.EnableEvents || c.EnableCloudWatch
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList reads a comma-separated list
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
