package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/onto16/internal/experiment"
	"github.com/starford/onto16/internal/watch"
)

// Config represents the application configuration.
type Config struct {
	App        ApplicationConfig `yaml:"app"`
	Experiment ExperimentConfig  `yaml:"experiment"`
	Triggers   TriggersConfig    `yaml:"triggers"`
	Reports    ReportsConfig     `yaml:"reports"`
	Batch      BatchConfig       `yaml:"batch"`
	Watch      WatchConfig       `yaml:"watch"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.Experiment.Validate(); err != nil {
		return fmt.Errorf("experiment: %w", err)
	}
	if err := c.Triggers.Validate(); err != nil {
		return fmt.Errorf("triggers: %w", err)
	}
	if err := c.Batch.Validate(); err != nil {
		return fmt.Errorf("batch: %w", err)
	}
	return c.Watch.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	// LogFormat is "json" (default) or "console".
	LogFormat string `yaml:"log_format"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.LogFormat, validation.In(LogFormatJSON, LogFormatConsole)),
	)
}

// ExperimentConfig holds the drift experiment constants.
type ExperimentConfig struct {
	DecayFactor           float64 `yaml:"decay_factor"`
	RecoveryFactor        float64 `yaml:"recovery_factor"`
	IrreversibleThreshold float64 `yaml:"irreversible_threshold"`
	DecayPerNode          bool    `yaml:"decay_per_node"`
	// BaseProfile is an optional profile document used instead of the built-in baseline.
	BaseProfile string `yaml:"base_profile"`
}

// Validate validates the experiment configuration.
func (c *ExperimentConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DecayFactor, validation.Required, validation.Min(0.0).Exclusive()),
		validation.Field(&c.RecoveryFactor, validation.Required, validation.Min(0.0).Exclusive()),
		validation.Field(&c.IrreversibleThreshold, validation.Min(0.0), validation.Max(1.0)),
	)
}

// Params converts the configuration into run parameters.
func (c *ExperimentConfig) Params() experiment.Params {
	return experiment.Params{
		DecayFactor:           c.DecayFactor,
		RecoveryFactor:        c.RecoveryFactor,
		IrreversibleThreshold: c.IrreversibleThreshold,
		DecayPerNode:          c.DecayPerNode,
	}
}

// TriggersConfig holds the directory trigger files are read from.
type TriggersConfig struct {
	Dir string `yaml:"dir"`
}

// Validate validates the triggers configuration.
func (c *TriggersConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
	)
}

// ReportsConfig holds where run reports are written. An empty Dir disables reports.
type ReportsConfig struct {
	Dir string `yaml:"dir"`
}

// Enabled reports whether run reports should be written.
func (c *ReportsConfig) Enabled() bool {
	return c.Dir != ""
}

// BatchConfig controls batch runs.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// Validate validates the batch configuration.
func (c *BatchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Concurrency, validation.Required, validation.Min(1), validation.Max(64)),
	)
}

// WatchConfig controls watch mode.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// Validate validates the watch configuration.
func (c *WatchConfig) Validate() error {
	if c.Debounce < 0 {
		return fmt.Errorf("watch: debounce must not be negative, got %s", c.Debounce)
	}
	return nil
}

// NewDefaultConfig returns a new Config with the reference experiment settings.
func NewDefaultConfig() *Config {
	params := experiment.DefaultParams()
	return &Config{
		App: ApplicationConfig{
			LogLevel:  slog.LevelInfo,
			LogFormat: LogFormatJSON,
		},
		Experiment: ExperimentConfig{
			DecayFactor:           params.DecayFactor,
			RecoveryFactor:        params.RecoveryFactor,
			IrreversibleThreshold: params.IrreversibleThreshold,
			DecayPerNode:          params.DecayPerNode,
		},
		Triggers: TriggersConfig{
			Dir: "./triggers",
		},
		Batch: BatchConfig{
			Concurrency: 4,
		},
		Watch: WatchConfig{
			Debounce: watch.DefaultDebounce,
		},
	}
}
