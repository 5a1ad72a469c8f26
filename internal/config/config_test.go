package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()

	config, err := Load()
	if err != nil {
		t.Fatalf("expected no error loading default config, got: %v", err)
	}
	if config == nil {
		t.Fatal("config should not be nil")
	}

	if config.Database.Path == "" {
		t.Error("database path should have default value")
	}

	if config.FSRS.DesiredRetention != 0.9 {
		t.Errorf("expected default desired_retention 0.9, got: %v", config.FSRS.DesiredRetention)
	}
	if len(config.FSRS.LearningSteps) != 2 {
		t.Errorf("expected 2 default learning steps, got: %v", config.FSRS.LearningSteps)
	}
	if !config.FSRS.EnableFuzzing {
		t.Error("expected fuzzing enabled by default")
	}

	if config.MCQ.DefaultQuestionType != "mixed" {
		t.Errorf("expected default question type 'mixed', got: %s", config.MCQ.DefaultQuestionType)
	}
	if config.MCQ.DefaultLanguage != "en" {
		t.Errorf("expected default language 'en', got: %s", config.MCQ.DefaultLanguage)
	}

	if config.Review.MaxItemsPerSession != 20 {
		t.Errorf("expected default max items per session 20, got: %d", config.Review.MaxItemsPerSession)
	}

	if config.LogLevel != "info" {
		t.Errorf("expected default log level 'info', got: %s", config.LogLevel)
	}
	if config.LogJSON {
		t.Error("expected JSON logging disabled by default")
	}
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	viper.Reset()

	os.Setenv("KOTOBA_DATABASE_PATH", "/tmp/test.db")
	os.Setenv("KOTOBA_FSRS_ENABLE_FUZZING", "false")
	os.Setenv("KOTOBA_MCQ_DEFAULT_LANGUAGE", "vi")
	defer func() {
		os.Unsetenv("KOTOBA_DATABASE_PATH")
		os.Unsetenv("KOTOBA_FSRS_ENABLE_FUZZING")
		os.Unsetenv("KOTOBA_MCQ_DEFAULT_LANGUAGE")
	}()

	config, err := Load()
	if err != nil {
		t.Fatalf("expected no error loading config with env vars, got: %v", err)
	}

	if config.Database.Path != "/tmp/test.db" {
		t.Errorf("expected database path from env var, got: %s", config.Database.Path)
	}
	if config.FSRS.EnableFuzzing {
		t.Error("expected fuzzing disabled from env var")
	}
	if config.MCQ.DefaultLanguage != "vi" {
		t.Errorf("expected language from env var, got: %s", config.MCQ.DefaultLanguage)
	}
}

func TestToEngineConfig(t *testing.T) {
	viper.Reset()
	config, err := Load()
	if err != nil {
		t.Fatalf("expected no error loading config, got: %v", err)
	}

	engineCfg, err := config.FSRS.ToEngineConfig()
	if err != nil {
		t.Fatalf("expected no error converting to engine config, got: %v", err)
	}
	if engineCfg.LearningSteps[0] != time.Minute {
		t.Errorf("expected first learning step 1m, got: %v", engineCfg.LearningSteps[0])
	}
	if engineCfg.MaximumInterval <= 0 {
		t.Error("expected positive maximum interval")
	}
}

func TestGetDatabasePath(t *testing.T) {
	viper.Reset()

	config, err := Load()
	if err != nil {
		t.Fatalf("expected no error loading config, got: %v", err)
	}

	dbPath, err := config.GetDatabasePath()
	if err != nil {
		t.Errorf("expected no error getting database path, got: %v", err)
	}
	if dbPath == "" {
		t.Error("database path should not be empty")
	}

	dir := filepath.Dir(dbPath)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		t.Errorf("database directory should be created: %s", dir)
	}
}

func TestExpandPath(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(string) bool
	}{
		{
			name:  "empty path",
			input: "",
			check: func(result string) bool { return result == "" },
		},
		{
			name:  "absolute path",
			input: "/tmp/test",
			check: func(result string) bool { return result == "/tmp/test" },
		},
		{
			name:  "tilde expansion",
			input: "~/test",
			check: func(result string) bool { return result != "~/test" && filepath.IsAbs(result) },
		},
		{
			name:  "environment variable",
			input: "$HOME/test",
			check: func(result string) bool { return result != "$HOME/test" && filepath.IsAbs(result) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandPath(tt.input)
			if !tt.check(result) {
				t.Errorf("expandPath(%s) = %s, check failed", tt.input, result)
			}
		})
	}
}

func TestSetDefaults(t *testing.T) {
	viper.Reset()

	if err := setDefaults(); err != nil {
		t.Errorf("expected no error setting defaults, got: %v", err)
	}

	if viper.GetFloat64("fsrs.desired_retention") != 0.9 {
		t.Error("default desired_retention not set correctly")
	}
	if viper.GetString("mcq.default_question_type") != "mixed" {
		t.Error("default mcq question type not set correctly")
	}
	if viper.GetString("log_level") != "info" {
		t.Error("default log level not set correctly")
	}
	if !viper.GetBool("fsrs.enable_fuzzing") {
		t.Error("fuzzing should be enabled by default")
	}
}
