package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StorageBackendDynamo   = "dynamo"
	StorageBackendPostgres = "postgres"
	StorageBackendMemory   = "memory"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"http_server"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Auth          AuthConfig          `mapstructure:"auth"`
	Events        EventsConfig        `mapstructure:"events"`
	Budget        BudgetConfig        `mapstructure:"budget"`
	Worker        WorkerConfig        `mapstructure:"worker"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	BaseURL           string        `mapstructure:"base_url"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

type StorageConfig struct {
	Backend  string         `mapstructure:"backend"`
	Dynamo   DynamoConfig   `mapstructure:"dynamo"`
	Database DatabaseConfig `mapstructure:"database"`
}

type DynamoConfig struct {
	TableName string `mapstructure:"table_name"`
	Region    string `mapstructure:"region"`
	// Endpoint overrides the AWS endpoint, for dynamodb-local.
	Endpoint string `mapstructure:"endpoint"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Source          string        `mapstructure:"source"`
}

type AuthConfig struct {
	// JWTSecret enables HS256 bearer tokens; the subject claim is the user ID.
	JWTSecret string `mapstructure:"jwt_secret"`
	// AllowHeaderIdentity accepts X-User-ID from trusted upstreams instead.
	AllowHeaderIdentity bool `mapstructure:"allow_header_identity"`
}

type EventsConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Brokers     string `mapstructure:"brokers"`
	TopicPrefix string `mapstructure:"topic_prefix"`
}

type BudgetConfig struct {
	BatchChunkSize      int                      `mapstructure:"batch_chunk_size"`
	DefaultTemplateName string                   `mapstructure:"default_template_name"`
	DefaultCategories   []TemplateCategoryConfig `mapstructure:"default_categories"`
}

// TemplateCategoryConfig overrides one entry of the auto-provisioned default
// template. Empty DefaultCategories means the built-in preset.
type TemplateCategoryConfig struct {
	Category        string  `mapstructure:"category"`
	Amount          float64 `mapstructure:"amount"`
	RolloverEnabled bool    `mapstructure:"rollover_enabled"`
}

type WorkerConfig struct {
	RecurringInterval time.Duration `mapstructure:"recurring_interval"`
	BatchSize         int           `mapstructure:"batch_size"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ----------------- ENV LOADING -----------------

// LoadConfigFromEnv builds the config from environment variables, for
// container deployments without a config file.
func LoadConfigFromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              getEnvAsInt("HTTP_PORT", 8080),
			BaseURL:           getEnv("BASE_URL", ""),
			AllowedOrigins:    getEnv("ALLOWED_ORIGINS", ""),
			ReadHeaderTimeout: getEnvAsDuration("READ_HEADER_TIMEOUT", 5*time.Second),
			ReadTimeout:       getEnvAsDuration("READ_TIMEOUT", 10*time.Second),
			IdleTimeout:       getEnvAsDuration("IDLE_TIMEOUT", 60*time.Second),
			WriteTimeout:      getEnvAsDuration("WRITE_TIMEOUT", 10*time.Second),
		},
		Storage: StorageConfig{
			Backend: getEnv("STORAGE_BACKEND", StorageBackendMemory),
			Dynamo: DynamoConfig{
				TableName: getEnv("DYNAMO_TABLE_NAME", "finance"),
				Region:    getEnv("AWS_REGION", "us-east-1"),
				Endpoint:  getEnv("DYNAMO_ENDPOINT", ""),
			},
			Database: DatabaseConfig{
				MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
				MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
				ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
				ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
				Source:          getEnv("DATABASE_URL", ""),
			},
		},
		Auth: AuthConfig{
			JWTSecret:           getEnv("JWT_SECRET", ""),
			AllowHeaderIdentity: getEnvAsBool("ALLOW_HEADER_IDENTITY", true),
		},
		Events: EventsConfig{
			Enabled:     getEnvAsBool("EVENTS_ENABLED", false),
			Brokers:     getEnv("KAFKA_BROKERS", ""),
			TopicPrefix: getEnv("KAFKA_TOPIC_PREFIX", "finance"),
		},
		Budget: BudgetConfig{
			BatchChunkSize:      getEnvAsInt("BUDGET_BATCH_CHUNK_SIZE", 25),
			DefaultTemplateName: getEnv("BUDGET_DEFAULT_TEMPLATE", "Default"),
		},
		Worker: WorkerConfig{
			RecurringInterval: getEnvAsDuration("WORKER_RECURRING_INTERVAL", time.Hour),
			BatchSize:         getEnvAsInt("WORKER_BATCH_SIZE", 100),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "json"),
			},
		},
	}
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}

// ----------------- DEFAULTS -----------------

// ApplyDefaults fills zero values after unmarshaling a config file, so a
// minimal config.yml stays valid.
func (c *Config) ApplyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadHeaderTimeout == 0 {
		c.Server.ReadHeaderTimeout = 5 * time.Second
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10 * time.Second
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = StorageBackendMemory
	}
	if c.Budget.BatchChunkSize == 0 {
		c.Budget.BatchChunkSize = 25
	}
	if c.Budget.DefaultTemplateName == "" {
		c.Budget.DefaultTemplateName = "Default"
	}
	if c.Events.TopicPrefix == "" {
		c.Events.TopicPrefix = "finance"
	}
	if c.Worker.RecurringInterval == 0 {
		c.Worker.RecurringInterval = time.Hour
	}
	if c.Worker.BatchSize == 0 {
		c.Worker.BatchSize = 100
	}
	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = "info"
	}
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Storage.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("storage config: %v", err))
	}

	if err := c.Auth.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("auth config: %v", err))
	}

	if err := c.Events.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("events config: %v", err))
	}

	if err := c.Budget.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("budget config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.AllowedOrigins != "" {
		origins := strings.Split(c.AllowedOrigins, ",")
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *StorageConfig) Validate() error {
	switch c.Backend {
	case StorageBackendDynamo:
		if c.Dynamo.TableName == "" {
			return errors.New("dynamo.table_name is required")
		}
		if c.Dynamo.Region == "" && c.Dynamo.Endpoint == "" {
			return errors.New("dynamo.region or dynamo.endpoint is required")
		}
	case StorageBackendPostgres:
		if c.Database.Source == "" {
			return errors.New("database.source is required")
		}
		if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
			return errors.New("max_idle_conns cannot be greater than max_open_conns")
		}
	case StorageBackendMemory:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *AuthConfig) Validate() error {
	if c.JWTSecret == "" && !c.AllowHeaderIdentity {
		return errors.New("no identity source configured: set jwt_secret or allow_header_identity")
	}
	return nil
}

func (c *EventsConfig) Validate() error {
	if c.Enabled && c.Brokers == "" {
		return errors.New("brokers is required when events are enabled")
	}
	return nil
}

func (c *EventsConfig) BrokerList() []string {
	if c.Brokers == "" {
		return nil
	}
	parts := strings.Split(c.Brokers, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}

func (c *BudgetConfig) Validate() error {
	if c.BatchChunkSize < 1 || c.BatchChunkSize > 25 {
		return errors.New("batch_chunk_size must be between 1 and 25")
	}
	seen := make(map[string]bool, len(c.DefaultCategories))
	for _, entry := range c.DefaultCategories {
		if entry.Category == "" {
			return errors.New("default category name cannot be empty")
		}
		if entry.Amount < 0 {
			return fmt.Errorf("default category %s: amount cannot be negative", entry.Category)
		}
		if seen[entry.Category] {
			return fmt.Errorf("default category %s appears twice", entry.Category)
		}
		seen[entry.Category] = true
	}
	return nil
}
