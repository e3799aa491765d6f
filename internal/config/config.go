// Package config defines server options and the fixed text-overlay policy
// constants shared across the pipeline.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// ServerOptions defines options for running the overlay service
type ServerOptions struct {
	Host    string
	Port    int
	FontDir string // extra directory searched for request fonts
	Workers int    // overlay workers per job, 0 = auto
	Verbose bool
}

const (
	DefaultHost = "0.0.0.0"
	DefaultPort = 8100

	// Environment variable names
	EnvHost     = "OVERLAYD_HOST"
	EnvPort     = "OVERLAYD_PORT"
	EnvLogLevel = "OVERLAYD_LOG_LEVEL"

	// Text overlay settings. The base font size is scaled by the request's
	// font_scale; the bottom margin and line gap are fixed policy values,
	// not request parameters.
	BaseFontSizePx = 20
	LineGapPx      = 10
	BottomMarginPx = 50

	// Temporary file naming
	TempFilePrefix = "overlay_"
)

// ApplyEnv overrides options from OVERLAYD_* environment variables.
func ApplyEnv(opts *ServerOptions) error {
	if h := os.Getenv(EnvHost); h != "" {
		opts.Host = h
	}
	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		if port < 1 || port > 65535 {
			return fmt.Errorf("invalid %s: port must be between 1 and 65535", EnvPort)
		}
		opts.Port = port
	}
	return nil
}

// LogLevel returns the effective log level for the options.
func (o *ServerOptions) LogLevel() string {
	if ll := os.Getenv(EnvLogLevel); ll != "" {
		return ll
	}
	if o.Verbose {
		return "debug"
	}
	return "info"
}
