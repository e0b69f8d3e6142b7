// Package config loads tool settings from an optional YAML file layered
// over built-in defaults. Command-line flags override both; that layering
// happens in the command layer, which calls the setters here.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the immutable runtime configuration. It is resolved once at
// startup; nothing reloads it while the UI runs.
type Config struct {
	// PollInterval is the base cadence of the bulk unit poll.
	PollInterval Duration `yaml:"poll_interval"`
	// MaxPollInterval caps the backoff after consecutive poll failures.
	MaxPollInterval Duration `yaml:"max_poll_interval"`
	// LogBufferSize is the per-unit log ring capacity.
	LogBufferSize int `yaml:"log_buffer_size"`
	// JournalTailLines is how much history seeds a new log stream.
	JournalTailLines int `yaml:"journal_tail_lines"`
	// UserScope selects the session service manager instead of the system one.
	UserScope bool `yaml:"user_scope"`
	// Debug enables debug-level logging.
	Debug bool `yaml:"debug"`
	// LogFile overrides where the process writes its own logs.
	LogFile string `yaml:"log_file"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		PollInterval:     Duration(5 * time.Second),
		MaxPollInterval:  Duration(60 * time.Second),
		LogBufferSize:    2000,
		JournalTailLines: 100,
	}
}

// DefaultPath returns the conventional config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "unitscope", "config.yaml")
}

// Load reads the YAML file at path over the defaults. A missing file is not
// an error; a malformed or invalid one is.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the engine cannot run with.
func (c Config) Validate() error {
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %s", c.PollInterval)
	}
	if c.MaxPollInterval < c.PollInterval {
		return fmt.Errorf("max_poll_interval (%s) must not be below poll_interval (%s)",
			c.MaxPollInterval, c.PollInterval)
	}
	if c.LogBufferSize <= 0 {
		return fmt.Errorf("log_buffer_size must be positive, got %d", c.LogBufferSize)
	}
	if c.JournalTailLines < 0 {
		return fmt.Errorf("journal_tail_lines must not be negative, got %d", c.JournalTailLines)
	}
	return nil
}

// Duration is a time.Duration that unmarshals from YAML strings like "5s".
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// String makes Duration satisfy the fmt.Stringer interface.
func (d Duration) String() string { return time.Duration(d).String() }

// UnmarshalYAML accepts either a duration string ("30s", "1m") or a bare
// integer, which is taken as seconds.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw any
	if err := value.Decode(&raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", v, err)
		}
		*d = Duration(parsed)
		return nil
	case int:
		*d = Duration(time.Duration(v) * time.Second)
		return nil
	default:
		return fmt.Errorf("invalid duration value %v", raw)
	}
}

// MarshalYAML renders the duration as its string form.
func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}
