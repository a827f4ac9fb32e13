package contract

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rentfold/propsnap/schema"
)

// Default values for configuration.
const (
	DefaultRateCalls    = 4
	DefaultRateWindow   = 10 * time.Second
	DefaultFetchTimeout = 30 * time.Second
	DefaultInboxDir     = "inbox"
	DefaultArchiveDir   = "archive"
)

// Config holds the runtime configuration for one invocation.
// This struct remains the "final, validated" config.
type Config struct {
	DBPath string

	Endpoints        []schema.Endpoint
	Postcodes        []string // explicit override, wins over cohort
	Cohort           string   // named cohort to resolve members from
	DefaultPostcodes []string // fallback when no override and no cohort
	BatchSize        int      // cap on postcodes per run, 0 = no cap
	RunID            string
	EstimatedCost    float64 // per-call cost tag carried onto records

	APIKey       string
	APIBaseURL   string
	FetchTimeout time.Duration

	RateCalls  int
	RateWindow time.Duration

	InboxDir   string
	ArchiveDir string

	Output     schema.OutputMode
	OutputFile string
	UseColors  bool
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	DB               string   `mapstructure:"db"`
	Endpoints        string   `mapstructure:"endpoints"`
	Postcodes        string   `mapstructure:"postcodes"`
	Cohort           string   `mapstructure:"cohort"`
	DefaultPostcodes []string `mapstructure:"default-postcodes"`
	BatchSize        int      `mapstructure:"batch-size"`
	RunID            string   `mapstructure:"run-id"`
	EstimatedCost    float64  `mapstructure:"estimated-cost"`
	APIKey           string   `mapstructure:"api-key"`
	APIBaseURL       string   `mapstructure:"api-url"`
	FetchTimeout     string   `mapstructure:"fetch-timeout"`
	RateCalls        int      `mapstructure:"rate-calls"`
	RateWindow       string   `mapstructure:"rate-window"`
	Inbox            string   `mapstructure:"inbox"`
	Archive          string   `mapstructure:"archive"`
	Output           string   `mapstructure:"output"`
	OutputFile       string   `mapstructure:"output-file"`
	Color            string   `mapstructure:"color"`
}

// ProcessAndValidate performs all parsing and validation on the raw
// inputs and populates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := processEndpoints(cfg, input); err != nil {
		return err
	}
	if err := processRate(cfg, input); err != nil {
		return err
	}
	if err := processOutput(cfg, input); err != nil {
		return err
	}

	cfg.DBPath = input.DB
	if cfg.DBPath == "" {
		cfg.DBPath = GetDefaultDBPath()
	}

	cfg.Postcodes = splitList(input.Postcodes)
	cfg.Cohort = strings.TrimSpace(input.Cohort)
	cfg.DefaultPostcodes = cfg.DefaultPostcodes[:0]
	for _, pc := range input.DefaultPostcodes {
		if trimmed := strings.TrimSpace(pc); trimmed != "" {
			cfg.DefaultPostcodes = append(cfg.DefaultPostcodes, trimmed)
		}
	}
	if input.BatchSize < 0 {
		return fmt.Errorf("batch size must not be negative, got %d", input.BatchSize)
	}
	cfg.BatchSize = input.BatchSize
	cfg.EstimatedCost = input.EstimatedCost

	cfg.RunID = strings.TrimSpace(input.RunID)
	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	}

	cfg.APIKey = input.APIKey
	cfg.APIBaseURL = strings.TrimRight(input.APIBaseURL, "/")

	cfg.FetchTimeout = DefaultFetchTimeout
	if input.FetchTimeout != "" {
		d, err := time.ParseDuration(input.FetchTimeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid fetch timeout %q", input.FetchTimeout)
		}
		cfg.FetchTimeout = d
	}

	cfg.InboxDir = input.Inbox
	if cfg.InboxDir == "" {
		cfg.InboxDir = DefaultInboxDir
	}
	cfg.ArchiveDir = input.Archive
	if cfg.ArchiveDir == "" {
		cfg.ArchiveDir = DefaultArchiveDir
	}

	cfg.UseColors = true
	if input.Color != "" {
		useColors, err := ParseBoolString(input.Color)
		if err != nil {
			return fmt.Errorf("invalid color value: %w", err)
		}
		cfg.UseColors = useColors
	}
	return nil
}

// processEndpoints parses the endpoint selection list.
func processEndpoints(cfg *Config, input *ConfigRawInput) error {
	names := splitList(input.Endpoints)
	if len(names) == 0 {
		cfg.Endpoints = append([]schema.Endpoint(nil), schema.AllEndpoints...)
		return nil
	}
	cfg.Endpoints = cfg.Endpoints[:0]
	for _, name := range names {
		ep := schema.Endpoint(name)
		if _, ok := schema.ValidEndpoints[ep]; !ok {
			return fmt.Errorf("unknown endpoint %q. Must be one of: %s", name, endpointNames())
		}
		cfg.Endpoints = append(cfg.Endpoints, ep)
	}
	return nil
}

// processRate parses and bounds the rate limit budget.
func processRate(cfg *Config, input *ConfigRawInput) error {
	cfg.RateCalls = input.RateCalls
	if cfg.RateCalls == 0 {
		cfg.RateCalls = DefaultRateCalls
	}
	if cfg.RateCalls < 1 {
		return fmt.Errorf("rate calls must be at least 1, got %d", input.RateCalls)
	}

	cfg.RateWindow = DefaultRateWindow
	if input.RateWindow != "" {
		d, err := time.ParseDuration(input.RateWindow)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid rate window %q (want a positive duration like 10s)", input.RateWindow)
		}
		cfg.RateWindow = d
	}
	return nil
}

// processOutput validates the output mode.
func processOutput(cfg *Config, input *ConfigRawInput) error {
	mode := schema.OutputMode(input.Output)
	if mode == "" {
		mode = schema.TextOut
	}
	if _, ok := schema.ValidOutputModes[mode]; !ok {
		return fmt.Errorf("unknown output mode %q. Must be text, json, csv, or parquet", input.Output)
	}
	cfg.Output = mode
	cfg.OutputFile = input.OutputFile
	return nil
}

// splitList splits a comma-separated list, trimming blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func endpointNames() string {
	names := make([]string, len(schema.AllEndpoints))
	for i, ep := range schema.AllEndpoints {
		names[i] = string(ep)
	}
	return strings.Join(names, ", ")
}
