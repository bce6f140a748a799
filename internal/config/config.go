package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "SHEETPIVOT"

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Security SecurityConfig `yaml:"security" envconfig:"SECURITY"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	Store    StoreConfig    `yaml:"store" envconfig:"STORE"`
	Pipeline PipelineConfig `yaml:"pipeline" envconfig:"PIPELINE"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port             int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout      time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout     time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"2m"`
	IdleTimeout      time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	MaxHeaderBytes   int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" default:"1048576"`
	ShutdownTimeout  time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	OperationTimeout time.Duration `yaml:"operation_timeout" envconfig:"OPERATION_TIMEOUT" default:"90s"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8080"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format      string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output      string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT" default:"false"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	DataDir string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data"`
	LogsDir string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
}

// StoreConfig selects where imported records live
type StoreConfig struct {
	Path              string `yaml:"path" envconfig:"DIR" default:"data/store"`
	InMemory          bool   `yaml:"in_memory" envconfig:"IN_MEMORY" default:"false"`
	DefaultCollection string `yaml:"default_collection" envconfig:"DEFAULT_COLLECTION" default:"tables"`
}

// PipelineConfig tunes type inference and the pivot output
type PipelineConfig struct {
	Threshold       float64 `yaml:"threshold" envconfig:"THRESHOLD" default:"0.7"`
	Sentinel        string  `yaml:"sentinel" envconfig:"SENTINEL" default:"no data"`
	GrandTotalLabel string  `yaml:"grand_total_label" envconfig:"GRAND_TOTAL_LABEL" default:"Total General"`
}

// Load loads configuration from environment variables and config file
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom loads configuration from the YAML file at path, if any, with
// environment variables taking precedence.
func LoadFrom(configFile string) (*Config, error) {
	var cfg Config

	// Load from environment variables first
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			fileConfig, err := loadFromFile(configFile)
			if err != nil {
				return nil, fmt.Errorf("failed to load config from file: %w", err)
			}
			cfg = mergeConfigs(*fileConfig, cfg, setEnvKeys())
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setEnvKeys reports which environment variables were explicitly set.
func setEnvKeys() map[string]bool {
	keys := []string{
		"SERVER_PORT", "SERVER_READ_TIMEOUT", "SERVER_WRITE_TIMEOUT", "SERVER_OPERATION_TIMEOUT",
		"SECURITY_ALLOWED_ORIGINS", "SECURITY_ENABLE_CORS",
		"SECURITY_RATE_LIMIT_ENABLED", "SECURITY_RATE_LIMIT_RPS", "SECURITY_RATE_LIMIT_BURST",
		"LOGGING_LEVEL", "LOGGING_OUTPUT", "LOGGING_FILE_PATH", "LOGGING_DEVELOPMENT",
		"PATHS_DATA_DIR", "PATHS_LOGS_DIR",
		"STORE_DIR", "STORE_IN_MEMORY", "STORE_DEFAULT_COLLECTION",
		"PIPELINE_THRESHOLD", "PIPELINE_SENTINEL", "PIPELINE_GRAND_TOTAL_LABEL",
	}
	out := make(map[string]bool, len(keys))
	for _, k := range keys {
		if _, ok := os.LookupEnv(EnvPrefix + "_" + k); ok {
			out[k] = true
		}
	}
	return out
}

// mergeConfigs merges file config with env config (env takes precedence).
// envSet names the variables present in the environment; every other field
// takes the file's value when the file sets one.
func mergeConfigs(fileConfig, envConfig Config, envSet map[string]bool) Config {
	pick := func(key string, fileSet bool) bool { return fileSet && !envSet[key] }

	// Server config
	if pick("SERVER_PORT", fileConfig.Server.Port != 0) {
		envConfig.Server.Port = fileConfig.Server.Port
	}
	if pick("SERVER_READ_TIMEOUT", fileConfig.Server.ReadTimeout != 0) {
		envConfig.Server.ReadTimeout = fileConfig.Server.ReadTimeout
	}
	if pick("SERVER_WRITE_TIMEOUT", fileConfig.Server.WriteTimeout != 0) {
		envConfig.Server.WriteTimeout = fileConfig.Server.WriteTimeout
	}
	if pick("SERVER_OPERATION_TIMEOUT", fileConfig.Server.OperationTimeout != 0) {
		envConfig.Server.OperationTimeout = fileConfig.Server.OperationTimeout
	}

	// Security config
	if pick("SECURITY_ALLOWED_ORIGINS", len(fileConfig.Security.AllowedOrigins) > 0) {
		envConfig.Security.AllowedOrigins = fileConfig.Security.AllowedOrigins
	}
	if pick("SECURITY_RATE_LIMIT_RPS", fileConfig.Security.RateLimit.RPS != 0) {
		envConfig.Security.RateLimit.RPS = fileConfig.Security.RateLimit.RPS
	}
	if pick("SECURITY_RATE_LIMIT_BURST", fileConfig.Security.RateLimit.Burst != 0) {
		envConfig.Security.RateLimit.Burst = fileConfig.Security.RateLimit.Burst
	}

	// Logging config
	if pick("LOGGING_LEVEL", fileConfig.Logging.Level != "") {
		envConfig.Logging.Level = fileConfig.Logging.Level
	}
	if pick("LOGGING_OUTPUT", fileConfig.Logging.Output != "") {
		envConfig.Logging.Output = fileConfig.Logging.Output
	}
	if pick("LOGGING_FILE_PATH", fileConfig.Logging.FilePath != "") {
		envConfig.Logging.FilePath = fileConfig.Logging.FilePath
	}

	// Paths config
	if pick("PATHS_DATA_DIR", fileConfig.Paths.DataDir != "") {
		envConfig.Paths.DataDir = fileConfig.Paths.DataDir
	}
	if pick("PATHS_LOGS_DIR", fileConfig.Paths.LogsDir != "") {
		envConfig.Paths.LogsDir = fileConfig.Paths.LogsDir
	}

	// Store config
	if pick("STORE_DIR", fileConfig.Store.Path != "") {
		envConfig.Store.Path = fileConfig.Store.Path
	}
	if pick("STORE_IN_MEMORY", fileConfig.Store.InMemory) {
		envConfig.Store.InMemory = fileConfig.Store.InMemory
	}
	if pick("STORE_DEFAULT_COLLECTION", fileConfig.Store.DefaultCollection != "") {
		envConfig.Store.DefaultCollection = fileConfig.Store.DefaultCollection
	}

	// Pipeline config
	if pick("PIPELINE_THRESHOLD", fileConfig.Pipeline.Threshold != 0) {
		envConfig.Pipeline.Threshold = fileConfig.Pipeline.Threshold
	}
	if pick("PIPELINE_SENTINEL", fileConfig.Pipeline.Sentinel != "") {
		envConfig.Pipeline.Sentinel = fileConfig.Pipeline.Sentinel
	}
	if pick("PIPELINE_GRAND_TOTAL_LABEL", fileConfig.Pipeline.GrandTotalLabel != "") {
		envConfig.Pipeline.GrandTotalLabel = fileConfig.Pipeline.GrandTotalLabel
	}

	return envConfig
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	if c.Pipeline.Threshold <= 0 || c.Pipeline.Threshold > 1 {
		return fmt.Errorf("pipeline threshold must be in (0, 1], got %v", c.Pipeline.Threshold)
	}

	if c.Pipeline.Sentinel == "" {
		return fmt.Errorf("pipeline sentinel must not be empty")
	}

	if c.Store.DefaultCollection == "" {
		return fmt.Errorf("store default collection must not be empty")
	}

	if !c.Store.InMemory && c.Store.Path == "" {
		return fmt.Errorf("store path is required unless in_memory is set")
	}

	// Logs are always JSON
	if c.Logging.Format != "json" {
		c.Logging.Format = "json"
	}

	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		c.Logging.Output = "console"
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/app.log"
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if p := os.Getenv(EnvPrefix + "_CONFIG"); p != "" {
		return p
	}

	// Check for config file in common locations
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:             8080,
			ReadTimeout:      15 * time.Second,
			WriteTimeout:     2 * time.Minute,
			IdleTimeout:      60 * time.Second,
			MaxHeaderBytes:   1 << 20, // 1MB
			ShutdownTimeout:  30 * time.Second,
			OperationTimeout: DefaultOperationTimeout,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimit,
				Burst:   DefaultBurstSize,
			},
		},
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Format:   DefaultLogFormat,
			Output:   "console",
			FilePath: "logs/app.log",
		},
		Paths: PathsConfig{
			DataDir: DefaultDataDir,
			LogsDir: DefaultLogsDir,
		},
		Store: StoreConfig{
			Path:              DefaultStoreDir,
			DefaultCollection: DefaultCollection,
		},
		Pipeline: PipelineConfig{
			Threshold:       DefaultThreshold,
			Sentinel:        DefaultSentinel,
			GrandTotalLabel: DefaultGrandTotalLabel,
		},
	}
}
