package contract

import (
	"testing"
	"time"

	"github.com/rentfold/propsnap/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessAndValidate_Defaults(t *testing.T) {
	cfg := &Config{}
	err := ProcessAndValidate(cfg, &ConfigRawInput{})
	require.NoError(t, err)

	assert.Equal(t, schema.AllEndpoints, cfg.Endpoints)
	assert.Equal(t, DefaultRateCalls, cfg.RateCalls)
	assert.Equal(t, DefaultRateWindow, cfg.RateWindow)
	assert.Equal(t, DefaultFetchTimeout, cfg.FetchTimeout)
	assert.Equal(t, DefaultInboxDir, cfg.InboxDir)
	assert.Equal(t, DefaultArchiveDir, cfg.ArchiveDir)
	assert.Equal(t, schema.TextOut, cfg.Output)
	assert.NotEmpty(t, cfg.DBPath)
	assert.NotEmpty(t, cfg.RunID)
	assert.True(t, cfg.UseColors)
}

func TestProcessAndValidate_Endpoints(t *testing.T) {
	cfg := &Config{}
	err := ProcessAndValidate(cfg, &ConfigRawInput{Endpoints: "prices, crime"})
	require.NoError(t, err)
	assert.Equal(t, []schema.Endpoint{schema.PricesEndpoint, schema.CrimeEndpoint}, cfg.Endpoints)

	err = ProcessAndValidate(cfg, &ConfigRawInput{Endpoints: "prices,flood-risk"})
	assert.Error(t, err)
}

func TestProcessAndValidate_Postcodes(t *testing.T) {
	cfg := &Config{}
	err := ProcessAndValidate(cfg, &ConfigRawInput{Postcodes: "NR1 1EF, NR2 2AB,,  "})
	require.NoError(t, err)
	assert.Equal(t, []string{"NR1 1EF", "NR2 2AB"}, cfg.Postcodes)

	err = ProcessAndValidate(cfg, &ConfigRawInput{DefaultPostcodes: []string{" NR1 1EF", "", "NR2 2AB "}})
	require.NoError(t, err)
	assert.Equal(t, []string{"NR1 1EF", "NR2 2AB"}, cfg.DefaultPostcodes)
}

func TestProcessAndValidate_Rate(t *testing.T) {
	cfg := &Config{}
	err := ProcessAndValidate(cfg, &ConfigRawInput{RateCalls: 2, RateWindow: "5s"})
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.RateCalls)
	assert.Equal(t, 5*time.Second, cfg.RateWindow)

	assert.Error(t, ProcessAndValidate(cfg, &ConfigRawInput{RateCalls: -1}))
	assert.Error(t, ProcessAndValidate(cfg, &ConfigRawInput{RateWindow: "soon"}))
	assert.Error(t, ProcessAndValidate(cfg, &ConfigRawInput{RateWindow: "-5s"}))
}

func TestProcessAndValidate_Output(t *testing.T) {
	cfg := &Config{}
	err := ProcessAndValidate(cfg, &ConfigRawInput{Output: "json", OutputFile: "out.json"})
	require.NoError(t, err)
	assert.Equal(t, schema.JSONOut, cfg.Output)
	assert.Equal(t, "out.json", cfg.OutputFile)

	assert.Error(t, ProcessAndValidate(cfg, &ConfigRawInput{Output: "xml"}))
}

func TestProcessAndValidate_BatchSize(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, ProcessAndValidate(cfg, &ConfigRawInput{BatchSize: -3}))

	require.NoError(t, ProcessAndValidate(cfg, &ConfigRawInput{BatchSize: 25}))
	assert.Equal(t, 25, cfg.BatchSize)
}

func TestProcessAndValidate_FetchTimeout(t *testing.T) {
	cfg := &Config{}
	err := ProcessAndValidate(cfg, &ConfigRawInput{FetchTimeout: "90s"})
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, cfg.FetchTimeout)

	assert.Error(t, ProcessAndValidate(cfg, &ConfigRawInput{FetchTimeout: "forever"}))
}

func TestProcessAndValidate_RunID(t *testing.T) {
	cfg := &Config{}
	err := ProcessAndValidate(cfg, &ConfigRawInput{RunID: " weekly-2026-08 "})
	require.NoError(t, err)
	assert.Equal(t, "weekly-2026-08", cfg.RunID)
}

func TestProcessAndValidate_Color(t *testing.T) {
	cfg := &Config{}
	for _, off := range []string{"no", "false", "0", "NO", "False"} {
		require.NoError(t, ProcessAndValidate(cfg, &ConfigRawInput{Color: off}))
		assert.False(t, cfg.UseColors, "value %q should disable colors", off)
	}
	for _, on := range []string{"yes", "true", "1", "YES", "True"} {
		require.NoError(t, ProcessAndValidate(cfg, &ConfigRawInput{Color: on}))
		assert.True(t, cfg.UseColors, "value %q should enable colors", on)
	}

	assert.Error(t, ProcessAndValidate(cfg, &ConfigRawInput{Color: "maybe"}))
}

func TestParseBoolString(t *testing.T) {
	v, err := ParseBoolString("Yes")
	require.NoError(t, err)
	assert.True(t, v)

	v, err = ParseBoolString("0")
	require.NoError(t, err)
	assert.False(t, v)

	_, err = ParseBoolString("on")
	assert.Error(t, err)
}

func TestProcessAndValidate_APIBaseURL(t *testing.T) {
	cfg := &Config{}
	err := ProcessAndValidate(cfg, &ConfigRawInput{APIBaseURL: "https://api.example.com/"})
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", cfg.APIBaseURL)
}
