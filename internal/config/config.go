package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ExporterConfig holds the HTTP endpoint configuration.
type ExporterConfig struct {
	Address         string `mapstructure:"address"`
	Port            int    `mapstructure:"port"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"`
}

// MetricsConfig holds metric naming and registry configuration.
type MetricsConfig struct {
	Prefix                string `mapstructure:"prefix"`
	DisableDefaultMetrics bool   `mapstructure:"disable_default_metrics"`
}

// CollectorConfig holds the container polling configuration.
type CollectorConfig struct {
	ScrapeInterval int  `mapstructure:"scrape_interval"`
	CollectTimeout int  `mapstructure:"collect_timeout"`
	IncludeStopped bool `mapstructure:"include_stopped"`
	IncludeLabels  bool `mapstructure:"include_labels"`
}

// DockerConfig holds Docker Engine API connection settings.
type DockerConfig struct {
	Host string `mapstructure:"host"`
}

// LoggingConfig holds the logging-related configuration.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// Config is the top-level configuration struct.
type Config struct {
	Exporter  ExporterConfig  `mapstructure:"exporter"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Collector CollectorConfig `mapstructure:"collector"`
	Docker    DockerConfig    `mapstructure:"docker"`
	Logging   LoggingConfig   `mapstructure:"log"`
}

var metricPrefixPattern = regexp.MustCompile(`^[a-zA-Z_:][a-zA-Z0-9_:]*$`)

// envBindings maps viper keys to the flat environment variable names the
// exporter has always accepted.
var envBindings = map[string]string{
	"exporter.address":                "EXPORTER_ADDRESS",
	"exporter.port":                   "EXPORTER_PORT",
	"exporter.shutdown_timeout":       "SHUTDOWN_TIMEOUT",
	"metrics.prefix":                  "METRICS_PREFIX",
	"metrics.disable_default_metrics": "DISABLE_DEFAULT_METRICS",
	"collector.scrape_interval":       "SCRAPE_INTERVAL",
	"collector.collect_timeout":       "COLLECT_TIMEOUT",
	"collector.include_stopped":       "INCLUDE_STOPPED",
	"collector.include_labels":        "INCLUDE_LABELS",
	"docker.host":                     "DOCKER_HOST",
	"log.level":                       "LOG_LEVEL",
}

// InitConfig performs the initial configuration: setting defaults, binding
// environment variables, and reading the optional config file.
func InitConfig(v *viper.Viper, configFile string) error {
	v.SetDefault("exporter.address", "")
	v.SetDefault("exporter.port", 9090)
	v.SetDefault("exporter.shutdown_timeout", 5)
	v.SetDefault("metrics.prefix", "")
	v.SetDefault("metrics.disable_default_metrics", true)
	v.SetDefault("collector.scrape_interval", 15)
	v.SetDefault("collector.collect_timeout", 10)
	v.SetDefault("collector.include_stopped", true)
	v.SetDefault("collector.include_labels", true)
	v.SetDefault("docker.host", "")
	v.SetDefault("log.level", "INFO")

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("binding %s to %s: %w", key, env, err)
		}
	}
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config") // Looks for config.yaml
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// If the file is not found, just continue with defaults and env vars.
	}

	return nil
}

// Load unmarshals the configuration into the Config struct and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate rejects values the exporter cannot start with.
func (c *Config) Validate() error {
	if c.Exporter.Port < 1 || c.Exporter.Port > 65535 {
		return NewValidationError("exporter.port", fmt.Sprintf("must be between 1 and 65535, got %d", c.Exporter.Port))
	}
	if c.Exporter.ShutdownTimeout < 0 {
		return NewValidationError("exporter.shutdown_timeout", "must not be negative")
	}
	if c.Metrics.Prefix != "" && !metricPrefixPattern.MatchString(c.Metrics.Prefix) {
		return NewValidationError("metrics.prefix", fmt.Sprintf("%q is not a valid metric name prefix", c.Metrics.Prefix))
	}
	if c.Collector.ScrapeInterval < 1 {
		return NewValidationError("collector.scrape_interval", fmt.Sprintf("must be at least 1 second, got %d", c.Collector.ScrapeInterval))
	}
	if c.Collector.CollectTimeout < 0 {
		return NewValidationError("collector.collect_timeout", "must not be negative")
	}
	return nil
}

// ListenAddress is the host:port the metrics server binds to.
func (c ExporterConfig) ListenAddress() string {
	return fmt.Sprintf("%s:%d", c.Address, c.Port)
}

func (c ExporterConfig) ShutdownTimeoutDuration() time.Duration {
	return time.Duration(c.ShutdownTimeout) * time.Second
}

// NamePrefix returns the string prepended to every metric name.
func (c MetricsConfig) NamePrefix() string {
	if c.Prefix == "" {
		return ""
	}
	return c.Prefix + "_"
}

func (c CollectorConfig) Interval() time.Duration {
	return time.Duration(c.ScrapeInterval) * time.Second
}

// Timeout bounds each Docker API call of a pass. Zero means no bound.
func (c CollectorConfig) Timeout() time.Duration {
	return time.Duration(c.CollectTimeout) * time.Second
}
