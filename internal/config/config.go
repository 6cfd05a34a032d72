package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"
)

// Config holds the userdex configuration.
type Config struct {
	HTTP          HTTPConfig          `yaml:"http"`
	Elasticsearch ElasticsearchConfig `yaml:"elasticsearch"`
	Kafka         KafkaConfig         `yaml:"kafka"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port" env:"HTTP_PORT"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// ElasticsearchConfig holds document store connection settings.
type ElasticsearchConfig struct {
	Addrs            []string `yaml:"addrs" env:"ELASTICSEARCH_URL" envSeparator:","`
	DefaultIndex     string   `yaml:"default_index" env:"ELASTICSEARCH_DEFAULT_INDEX"`
	Username         string   `yaml:"username" env:"ELASTICSEARCH_USERNAME"`
	Password         string   `yaml:"password" env:"ELASTICSEARCH_PASSWORD"`
	SkipTLSVerify    bool     `yaml:"skip_tls_verify" env:"ELASTICSEARCH_SKIP_TLS_VERIFY"`
	Refresh          string   `yaml:"refresh" env:"ELASTICSEARCH_REFRESH"` // "", true, false, wait_for
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// KafkaConfig holds event worker settings. Only the worker command requires it.
type KafkaConfig struct {
	Brokers     []string `yaml:"brokers" env:"KAFKA_BROKERS" envSeparator:","`
	GroupID     string   `yaml:"group_id" env:"KAFKA_GROUP_ID"`
	Topics      []string `yaml:"topics" env:"KAFKA_TOPICS" envSeparator:","`
	MetricsPort int      `yaml:"metrics_port" env:"KAFKA_METRICS_PORT"` // 0 disables the worker /metrics listener
}

// Load reads configuration from a YAML file by environment name (local, dev, prod),
// then applies environment variable overrides.
func Load(envName string) (Config, error) {
	configPath := findConfigPath(envName)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Parse decodes YAML (with ${VAR} expansion), applies env overrides and defaults.
// It does not validate.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to apply env overrides: %w", err)
	}

	cfg.ApplyDefaults()
	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if e := os.Getenv("ENV"); e != "" {
		return e
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Elasticsearch.ReadinessTimeout <= 0 {
		c.Elasticsearch.ReadinessTimeout = 30
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "userdex"
	}
	c.Kafka.Brokers = compact(c.Kafka.Brokers)
	c.Kafka.Topics = compact(c.Kafka.Topics)
}

// compact drops blank entries left by unset ${VAR:-} list items.
func compact(items []string) []string {
	out := items[:0]
	for _, it := range items {
		if strings.TrimSpace(it) != "" {
			out = append(out, it)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Elasticsearch.Addrs) == 0 {
		return fmt.Errorf("elasticsearch.addrs is required")
	}
	if c.Elasticsearch.DefaultIndex == "" {
		return fmt.Errorf("elasticsearch.default_index is required")
	}
	switch c.Elasticsearch.Refresh {
	case "", "true", "false", "wait_for":
	default:
		return fmt.Errorf(
			"elasticsearch.refresh must be \"true\", \"false\" or \"wait_for\", got %q",
			c.Elasticsearch.Refresh,
		)
	}
	return nil
}

// ValidateWorker checks the settings the event worker needs on top of Validate.
func (c *Config) ValidateWorker() error {
	if len(c.Kafka.Brokers) == 0 || len(c.Kafka.Topics) == 0 {
		return fmt.Errorf("worker requires kafka.brokers and kafka.topics (KAFKA_BROKERS, KAFKA_TOPICS)")
	}
	if c.Kafka.MetricsPort < 0 || c.Kafka.MetricsPort > 65535 {
		return fmt.Errorf("kafka.metrics_port must be between 0 and 65535, got %d", c.Kafka.MetricsPort)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(envName string) string {
	filename := fmt.Sprintf("%s.yaml", envName)

	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
