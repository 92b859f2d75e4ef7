// Package constants provides shared constants for the ingredient-optimizer application.
package constants

import "time"

// Optimizer service contract
const (
	// CalculatePath is appended to the configured optimizer base URL.
	CalculatePath = "/calculate"

	// FallbackErrorMessage is shown when the optimizer rejects a request without a usable message.
	FallbackErrorMessage = "Failed to fetch optimization results"

	// GenericErrorMessage is shown for transport and decoding failures.
	GenericErrorMessage = "An unknown error occurred"

	// MaxResponseBytes caps how much of an optimizer response body is read (1 MB)
	MaxResponseBytes int64 = 1024 * 1024

	// DefaultOptimizerTimeout of zero leaves the transport default in place.
	DefaultOptimizerTimeout time.Duration = 0
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix namespaces environment overrides (OPTIMIZER_LOGGING_LEVEL, ...)
	EnvPrefix = "OPTIMIZER"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the web UI
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (64 KB)
	DefaultMaxBodySizeBytes int64 = 64 * 1024

	// DefaultRateLimit is the sustained number of submissions per second for one session or API client
	DefaultRateLimit = 10.0

	// DefaultRateLimitBurst is the per-session submission burst size
	DefaultRateLimitBurst = 20

	// RateLimitedMessage is shown when a session submits faster than the rate limit allows
	RateLimitedMessage = "Too many submissions. Please wait a moment and try again."

	// DefaultMaxSessions bounds the in-memory form sessions
	DefaultMaxSessions = 1000

	// DefaultReadTimeout for incoming requests
	DefaultReadTimeout = 10 * time.Second

	// DefaultWriteTimeout of zero lets a page submission wait as long as the optimizer does
	DefaultWriteTimeout time.Duration = 0

	// DefaultIdleTimeout for keep-alive connections
	DefaultIdleTimeout = 120 * time.Second

	// DefaultShutdownTimeout for graceful shutdown
	DefaultShutdownTimeout = 15 * time.Second

	// SessionCookieName identifies the browser's form session
	SessionCookieName = "optimizer_session"
)
