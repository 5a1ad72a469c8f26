// Package config loads process configuration the way the teacher does:
// viper-backed, config file plus environment overrides plus defaults, with
// the database path as the only process-wide ambient state spec.md §9
// permits (everything else is passed explicitly into constructors).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/kaedesrs/kotoba/internal/fsrsengine"
)

// Config holds the application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	FSRS     FSRSConfig     `mapstructure:"fsrs"`
	MCQ      MCQConfig      `mapstructure:"mcq"`
	Review   ReviewConfig   `mapstructure:"review"`

	LogLevel string `mapstructure:"log_level"`
	LogJSON  bool   `mapstructure:"log_json"`
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// FSRSConfig mirrors fsrsengine.Config (spec.md §4.2); callers (NewApp)
// convert it via ToEngineConfig rather than sharing the type directly, so fsrsengine has no
// dependency on viper's struct tags.
type FSRSConfig struct {
	DesiredRetention float64       `mapstructure:"desired_retention"`
	LearningSteps    []string      `mapstructure:"learning_steps"`
	RelearningSteps  []string      `mapstructure:"relearning_steps"`
	MaximumInterval  time.Duration `mapstructure:"maximum_interval"`
	EnableFuzzing    bool          `mapstructure:"enable_fuzzing"`
}

// MCQConfig holds defaults for MCQ session generation.
type MCQConfig struct {
	DefaultQuestionType string `mapstructure:"default_question_type"`
	DefaultLanguage     string `mapstructure:"default_language"`
}

// ReviewConfig holds interactive review session defaults.
type ReviewConfig struct {
	MaxItemsPerSession int  `mapstructure:"max_items_per_session"`
	Shuffle            bool `mapstructure:"shuffle"`
}

// Load reads configuration from files, environment variables, and defaults.
func Load() (*Config, error) {
	if err := setDefaults(); err != nil {
		return nil, fmt.Errorf("failed to set defaults: %w", err)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}

	viper.SetConfigName("kotoba")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(filepath.Join(home, ".kotoba"))
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("KOTOBA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	_ = viper.BindEnv("database.path", "KOTOBA_DATABASE_PATH")
	_ = viper.BindEnv("fsrs.desired_retention", "KOTOBA_FSRS_DESIRED_RETENTION")
	_ = viper.BindEnv("fsrs.enable_fuzzing", "KOTOBA_FSRS_ENABLE_FUZZING")
	_ = viper.BindEnv("mcq.default_language", "KOTOBA_MCQ_DEFAULT_LANGUAGE")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.Database.Path = expandPath(config.Database.Path)
	return &config, nil
}

// setDefaults sets default configuration values.
func setDefaults() error {
	viper.SetDefault("database.path", filepath.Join(".", "data", "japanese.db"))

	// FSRS defaults per spec.md §4.2.
	viper.SetDefault("fsrs.desired_retention", 0.9)
	viper.SetDefault("fsrs.learning_steps", []string{"1m", "10m"})
	viper.SetDefault("fsrs.relearning_steps", []string{"10m"})
	viper.SetDefault("fsrs.maximum_interval", "876000h") // 36,500 days
	viper.SetDefault("fsrs.enable_fuzzing", true)

	// MCQ defaults per spec.md §6's CLI surface.
	viper.SetDefault("mcq.default_question_type", "mixed")
	viper.SetDefault("mcq.default_language", "en")

	// Review session defaults.
	viper.SetDefault("review.max_items_per_session", 20)
	viper.SetDefault("review.shuffle", false)

	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_json", false)

	return nil
}

// expandPath expands ~ and environment variables in paths.
func expandPath(path string) string {
	if path == "" {
		return path
	}

	path = os.ExpandEnv(path)

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	return path
}

// ToEngineConfig converts the parsed FSRSConfig into fsrsengine.Config,
// parsing the duration-string step tables. fsrsengine depends on no
// config-loading library, so the conversion lives here rather than there.
func (c FSRSConfig) ToEngineConfig() (fsrsengine.Config, error) {
	learning, err := parseDurations(c.LearningSteps)
	if err != nil {
		return fsrsengine.Config{}, fmt.Errorf("parse fsrs.learning_steps: %w", err)
	}
	relearning, err := parseDurations(c.RelearningSteps)
	if err != nil {
		return fsrsengine.Config{}, fmt.Errorf("parse fsrs.relearning_steps: %w", err)
	}
	return fsrsengine.Config{
		DesiredRetention: c.DesiredRetention,
		LearningSteps:    learning,
		RelearningSteps:  relearning,
		MaximumInterval:  c.MaximumInterval,
		EnableFuzzing:    c.EnableFuzzing,
	}, nil
}

func parseDurations(raw []string) ([]time.Duration, error) {
	out := make([]time.Duration, len(raw))
	for i, s := range raw {
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}

// GetDatabasePath returns the database file path, creating its directory.
func (c *Config) GetDatabasePath() (string, error) {
	dbPath := c.Database.Path
	dir := filepath.Dir(dbPath)

	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create database directory %s: %w", dir, err)
	}

	return dbPath, nil
}
