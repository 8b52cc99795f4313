package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Strategy names accepted by tracker.strategy.
const (
	StrategyRules     = "rules"
	StrategyHeuristic = "heuristic"
)

// Transport modes accepted by transport.mode.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Config defines worklog configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Transport TransportConfig `yaml:"transport"`
	DB        DBConfig        `yaml:"db"`
	Log       LogConfig       `yaml:"log"`
	Tracker   TrackerConfig   `yaml:"tracker"`
	Rules     RulesConfig     `yaml:"rules"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type TransportConfig struct {
	Mode string `yaml:"mode"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	// Path, when set, sends logs to a size-capped file instead of stderr.
	Path string `yaml:"path"`
}

type TrackerConfig struct {
	PollInterval          time.Duration `yaml:"poll_interval"`
	GracePeriod           time.Duration `yaml:"grace_period"`
	CloseReplacedMeetings bool          `yaml:"close_replaced_meetings"`
	Strategy              string        `yaml:"strategy"`
}

type RulesConfig struct {
	// SeedFile is a YAML rule file imported when the rule table is empty.
	SeedFile string `yaml:"seed_file"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
		Transport: TransportConfig{
			Mode: TransportStdio,
		},
		DB: DBConfig{
			Path: "worklog.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Tracker: TrackerConfig{
			PollInterval:          30 * time.Second,
			GracePeriod:           2 * time.Minute,
			CloseReplacedMeetings: true,
			Strategy:              StrategyRules,
		},
	}
}

// Load reads configuration from an optional YAML file and environment
// variables. path overrides WORKLOG_CONFIG_PATH when non-empty.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("WORKLOG_CONFIG_PATH")
	}
	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if host := os.Getenv("WORKLOG_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("WORKLOG_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid WORKLOG_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if mode := os.Getenv("WORKLOG_TRANSPORT"); mode != "" {
		cfg.Transport.Mode = mode
	}
	if dbPath := os.Getenv("WORKLOG_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("WORKLOG_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if logPath := os.Getenv("WORKLOG_LOG_PATH"); logPath != "" {
		cfg.Log.Path = logPath
	}
	if interval := os.Getenv("WORKLOG_POLL_INTERVAL"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err != nil {
			return fmt.Errorf("invalid WORKLOG_POLL_INTERVAL: %w", err)
		}
		cfg.Tracker.PollInterval = d
	}
	if grace := os.Getenv("WORKLOG_GRACE_PERIOD"); grace != "" {
		d, err := time.ParseDuration(grace)
		if err != nil {
			return fmt.Errorf("invalid WORKLOG_GRACE_PERIOD: %w", err)
		}
		cfg.Tracker.GracePeriod = d
	}
	if strategy := os.Getenv("WORKLOG_STRATEGY"); strategy != "" {
		cfg.Tracker.Strategy = strategy
	}
	return nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	var errs []error
	if c.Tracker.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("tracker.poll_interval must be positive, got %s", c.Tracker.PollInterval))
	}
	if c.Tracker.GracePeriod <= 0 {
		errs = append(errs, fmt.Errorf("tracker.grace_period must be positive, got %s", c.Tracker.GracePeriod))
	}
	switch c.Tracker.Strategy {
	case StrategyRules, StrategyHeuristic:
	default:
		errs = append(errs, fmt.Errorf("tracker.strategy must be %q or %q, got %q", StrategyRules, StrategyHeuristic, c.Tracker.Strategy))
	}
	switch c.Transport.Mode {
	case TransportStdio, TransportHTTP:
	default:
		errs = append(errs, fmt.Errorf("transport.mode must be %q or %q, got %q", TransportStdio, TransportHTTP, c.Transport.Mode))
	}
	if c.DB.Path == "" {
		errs = append(errs, errors.New("db.path is required"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
