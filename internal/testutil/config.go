package testutil

import (
	"testing"

	"github.com/spf13/viper"

	"github.com/lepinkainen/bookscout/internal/config"
)

// ResetConfig resets viper now and again when the test completes.
func ResetConfig(t *testing.T) {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)
}

type testConfigOptions struct {
	baseURL   string
	coversURL string
	dsn       string
	rateLimit float64
}

// SetTestConfigOption customizes SetTestConfig.
type SetTestConfigOption func(*testConfigOptions)

// WithBaseURL points the catalog client at a test server.
func WithBaseURL(url string) SetTestConfigOption {
	return func(o *testConfigOptions) {
		o.baseURL = url
	}
}

// WithCoversURL overrides the covers service root.
func WithCoversURL(url string) SetTestConfigOption {
	return func(o *testConfigOptions) {
		o.coversURL = url
	}
}

// WithLibraryDSN sets the SQLite library path.
func WithLibraryDSN(dsn string) SetTestConfigOption {
	return func(o *testConfigOptions) {
		o.dsn = dsn
	}
}

// WithRateLimit overrides the request pacing. Tests default to 0 (off).
func WithRateLimit(rps float64) SetTestConfigOption {
	return func(o *testConfigOptions) {
		o.rateLimit = rps
	}
}

// SetTestConfig resets viper, registers defaults and applies test
// overrides. Viper is reset again when the test completes.
func SetTestConfig(t *testing.T, opts ...SetTestConfigOption) config.Config {
	t.Helper()

	ResetConfig(t)
	config.SetDefaults()

	var options testConfigOptions
	for _, opt := range opts {
		opt(&options)
	}

	if options.baseURL != "" {
		viper.Set("openlibrary.baseurl", options.baseURL)
	}
	if options.coversURL != "" {
		viper.Set("openlibrary.coversurl", options.coversURL)
	}
	if options.dsn != "" {
		viper.Set("library.dsn", options.dsn)
	}
	viper.Set("openlibrary.ratelimit", options.rateLimit)
	viper.Set("openlibrary.timeout", "2s")

	return config.Load()
}

// SetViperValue sets a viper configuration value and restores the previous
// value when the test completes.
func SetViperValue(t *testing.T, key string, value any) {
	t.Helper()

	oldValue := viper.Get(key)
	hadValue := viper.IsSet(key)
	viper.Set(key, value)

	t.Cleanup(func() {
		if hadValue {
			viper.Set(key, oldValue)
		}
	})
}
