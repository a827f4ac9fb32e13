package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/rentfold/propsnap/internal/contract"
	"github.com/rentfold/propsnap/internal/snapstore"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:                "propsnap",
	Short:              "Ingest and deduplicate property-data snapshots by postcode.",
	Long:               `Propsnap pulls JSON snapshots from a property-data provider, dedupes them with content-stable fingerprints, and stores them in a queryable SQLite database.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// Check if a specific config file is provided
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		// Set config file name and paths
		viper.SetConfigName(".propsnap") // Name of config file (without extension)
		viper.SetConfigType("yaml")      // We'll use YAML format
		viper.AddConfigPath(".")         // Look in the current directory
		viper.AddConfigPath("$HOME")     // Look in the home directory
	}

	// Set environment variable prefix
	viper.SetEnvPrefix("PROPSNAP")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // Read in environment variables that match

	// Set defaults in Viper
	viper.SetDefault("endpoints", "")
	viper.SetDefault("rate-calls", contract.DefaultRateCalls)
	viper.SetDefault("rate-window", "10s")
	viper.SetDefault("fetch-timeout", "30s")
	viper.SetDefault("api-url", "https://api.propertydata.co.uk")
	viper.SetDefault("inbox", contract.DefaultInboxDir)
	viper.SetDefault("archive", contract.DefaultArchiveDir)
	viper.SetDefault("output", "text")
	viper.SetDefault("color", "yes")
}

// sharedSetup unmarshals config, runs validation, and opens the store.
func sharedSetup(_ *cobra.Command, _ []string) error {
	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, which is fine; we'll use defaults/env/flags.
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Run all validation and parsing. This populates the global 'cfg'.
	if err := contract.ProcessAndValidate(cfg, input); err != nil {
		return err
	}

	// 4. Open the store and apply migrations/views. Idempotent per start.
	if err := snapstore.Init(cfg.DBPath); err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}

	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
