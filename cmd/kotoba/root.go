package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kaedesrs/kotoba/internal/config"
)

var (
	cfgFile string
	cfg     *config.Config
	loader  ConfigLoader = &DefaultConfigLoader{}
)

// rootCmd is the base command when kotoba is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "kotoba",
	Short: "A Japanese vocabulary and kanji study system with spaced repetition",
	Long: `kotoba schedules flashcard and multiple-choice review sessions over a
catalog of vocabulary and kanji using the FSRS spaced-repetition algorithm,
and tracks progress toward a target JLPT level.`,
	PersistentPreRunE: initConfig,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.kotoba/kotoba.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "log in JSON format")
	rootCmd.PersistentFlags().String("database-path", "", "database file path")

	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log_json", rootCmd.PersistentFlags().Lookup("log-json"))
	_ = viper.BindPFlag("database.path", rootCmd.PersistentFlags().Lookup("database-path"))
}

// initConfig reads configuration from file, environment, and flags.
func initConfig(cmd *cobra.Command, args []string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	var err error
	cfg, err = loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	return nil
}
