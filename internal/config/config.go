package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/mitm-detector/internal/domain/neighbor"
	"github.com/oshokin/mitm-detector/internal/logger"
	"github.com/oshokin/mitm-detector/internal/repository/table"
)

// Config holds the settings shared by the detector binaries.
type Config struct {
	// NeighborTable is the path of the OS neighbor table.
	NeighborTable string `yaml:"neighbor_table"`
	// PollInterval is the delay between two detector updates.
	PollInterval time.Duration `yaml:"poll_interval"`
	// RetentionWindow is how long a MAC binding is remembered without being seen.
	RetentionWindow time.Duration `yaml:"retention_window"`
	// MaxFailures is the number of consecutive failed updates tolerated before the watcher exits.
	MaxFailures int `yaml:"max_failures"`
	// StatusAddress is the gRPC status service address. Empty disables the service.
	StatusAddress string `yaml:"status_address,omitempty"`
	// StatusFile is where the latest report is written as JSON. Empty disables it.
	StatusFile string `yaml:"status_file,omitempty"`
	// ChangeLog is a file that change descriptions are appended to. Empty disables it.
	ChangeLog string `yaml:"change_log,omitempty"`
	// Timeout is the duration of status RPC calls.
	Timeout time.Duration `yaml:"timeout"`
	// LogLevel is the minimum zap level name.
	LogLevel string `yaml:"log_level"`
}

const (
	// DefaultConfigFilename is the default filename for detector settings.
	DefaultConfigFilename = "mitm-detector.yaml"

	// DefaultPollInterval is the default delay between updates.
	DefaultPollInterval = 10 * time.Second

	// DefaultMaxFailures is the default number of tolerated consecutive failures.
	DefaultMaxFailures = 5

	// DefaultTimeout is the default duration for status RPC calls.
	DefaultTimeout = 5 * time.Second

	// DefaultLogLevel is the default zap level name.
	DefaultLogLevel = "info"

	// DefaultFilePermissions is the default file permission for files written by the detector.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errNegativeRetention is returned for a negative retention window.
	errNegativeRetention = errors.New("retention window must not be negative")
	// errNegativePollInterval is returned for a negative poll interval.
	errNegativePollInterval = errors.New("poll interval must not be negative")
	// errUnknownLogLevel is returned for a log level zap does not know.
	errUnknownLogLevel = errors.New("unknown log level")
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := new(Config)

	// Defaults never fail validation.
	_ = Validate(cfg)

	return cfg
}

// Load reads configuration from the provided path and validates it.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadOrDefault behaves like Load, except that a missing file at the
// default location yields Default instead of an error.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}

	if errors.Is(err, os.ErrNotExist) && (path == "" || path == DefaultConfigFilename) {
		return Default(), nil
	}

	return nil, err
}

// Save writes Config to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings and fills unset fields with defaults.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if settings.RetentionWindow < 0 {
		return errNegativeRetention
	}

	if settings.PollInterval < 0 {
		return errNegativePollInterval
	}

	if settings.NeighborTable == "" {
		settings.NeighborTable = table.DefaultPath
	}

	if settings.PollInterval == 0 {
		settings.PollInterval = DefaultPollInterval
	}

	if settings.RetentionWindow == 0 {
		settings.RetentionWindow = neighbor.DefaultRetentionWindow
	}

	if settings.MaxFailures <= 0 {
		settings.MaxFailures = DefaultMaxFailures
	}

	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}

	if settings.LogLevel == "" {
		settings.LogLevel = DefaultLogLevel
	}

	if _, ok := logger.ParseLogLevel(settings.LogLevel); !ok {
		return fmt.Errorf("%w: %q", errUnknownLogLevel, settings.LogLevel)
	}

	if settings.StatusAddress == "" {
		return nil
	}

	if _, err := net.ResolveTCPAddr("tcp", settings.StatusAddress); err != nil {
		return fmt.Errorf("invalid status address: %w", err)
	}

	return nil
}
