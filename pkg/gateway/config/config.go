// Package config loads the gateway's configuration from a YAML file,
// environment variables, and defaults, via spf13/viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds every configuration section the gateway needs.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Services ServicesConfig `mapstructure:"services"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Tasks    TasksConfig    `mapstructure:"tasks"`
	Audit    AuditConfig    `mapstructure:"audit"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig holds the HTTP listen address and MCP endpoint path.
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	MCPPath      string `mapstructure:"mcpPath"`
	ReadTimeout  int    `mapstructure:"readTimeout"` // seconds
	WriteTimeout int    `mapstructure:"writeTimeout"`
}

// ReadTimeoutDuration returns the read timeout as a time.Duration.
func (s *ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns the write timeout as a time.Duration.
func (s *ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

// AuthConfig holds bearer-token parsing and capability-matrix source
// settings.
type AuthConfig struct {
	BearerPrefix         string `mapstructure:"bearerPrefix"`
	CapabilityMatrixURL  string `mapstructure:"capabilityMatrixUrl"`
	CapabilityMatrixFile string `mapstructure:"capabilityMatrixFile"`
}

// ServiceEndpoint is one backing service's base URL and client timeout.
type ServiceEndpoint struct {
	BaseURL string `mapstructure:"baseUrl"`
	Timeout int    `mapstructure:"timeoutSeconds"`
}

// TimeoutDuration returns the configured timeout as a time.Duration.
func (s ServiceEndpoint) TimeoutDuration() time.Duration {
	return time.Duration(s.Timeout) * time.Second
}

// ServicesConfig holds the base URL and timeout for every backing service
// client the Service Client Facade wires up.
type ServicesConfig struct {
	Workflows   ServiceEndpoint `mapstructure:"workflows"`
	Artifacts   ServiceEndpoint `mapstructure:"artifacts"`
	Schedules   ServiceEndpoint `mapstructure:"schedules"`
	Secrets     ServiceEndpoint `mapstructure:"secrets"`
	HumanInputs ServiceEndpoint `mapstructure:"humanInputs"`
	Trace       ServiceEndpoint `mapstructure:"trace"`
	LogStream   ServiceEndpoint `mapstructure:"logStream"`
	NodeIO      ServiceEndpoint `mapstructure:"nodeIo"`
	Components  ServiceEndpoint `mapstructure:"components"`
}

// CacheConfig holds the Run-Status Resolver's terminal-status cache
// settings.
type CacheConfig struct {
	RedisAddr  string `mapstructure:"redisAddr"`
	RedisDB    int    `mapstructure:"redisDb"`
	TTLSeconds int    `mapstructure:"ttlSeconds"`
}

// TTL returns the cache entry lifetime as a time.Duration.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// TasksConfig holds the Background-Task Engine's polling settings.
type TasksConfig struct {
	PollIntervalSeconds int `mapstructure:"pollIntervalSeconds"`
	DefaultTTLSeconds   int `mapstructure:"defaultTtlSeconds"`
}

// PollInterval returns the configured poll interval as a time.Duration.
func (t TasksConfig) PollInterval() time.Duration {
	return time.Duration(t.PollIntervalSeconds) * time.Second
}

// DefaultTTL returns the configured default task TTL as a time.Duration.
func (t TasksConfig) DefaultTTL() time.Duration {
	return time.Duration(t.DefaultTTLSeconds) * time.Second
}

// AuditConfig holds the Audit Emitter's behavior flags.
type AuditConfig struct {
	Enabled            bool `mapstructure:"enabled"`
	IncludeRequestData bool `mapstructure:"includeRequestData"`
}

// LoggingConfig holds zap's level/format settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// setDefaults configures every config key's default value.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8443)
	v.SetDefault("server.mcpPath", "/mcp")
	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 30)

	v.SetDefault("auth.bearerPrefix", "Bearer ")

	v.SetDefault("cache.redisAddr", "")
	v.SetDefault("cache.redisDb", 0)
	v.SetDefault("cache.ttlSeconds", 86400)

	v.SetDefault("tasks.pollIntervalSeconds", 2)
	v.SetDefault("tasks.defaultTtlSeconds", 43200) // 12h

	v.SetDefault("audit.enabled", true)
	v.SetDefault("audit.includeRequestData", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	for _, svc := range []string{"workflows", "artifacts", "schedules", "secrets", "humanInputs", "trace", "logStream", "nodeIo", "components"} {
		v.SetDefault("services."+svc+".timeoutSeconds", 15)
	}
}

// Load reads configuration from a config.yaml in the current directory (or
// the path given), environment variables prefixed STUDIO_MCP_GATEWAY_, and
// the defaults above.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("STUDIO_MCP_GATEWAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/studio-mcp-gateway/")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate checks that a loaded Config is internally consistent, for both
// Load and the `validate` CLI subcommand.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		errs = append(errs, "server.port must be between 1 and 65535")
	}
	if cfg.Server.MCPPath == "" {
		errs = append(errs, "server.mcpPath must not be empty")
	}

	if cfg.Services.Workflows.BaseURL == "" {
		errs = append(errs, "services.workflows.baseUrl is required")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(cfg.Logging.Level)] {
		errs = append(errs, "logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[strings.ToLower(cfg.Logging.Format)] {
		errs = append(errs, "logging.format must be one of: json, console")
	}

	if cfg.Tasks.PollIntervalSeconds <= 0 {
		errs = append(errs, "tasks.pollIntervalSeconds must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}
