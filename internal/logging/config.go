// Package logging provides logging configuration types and utilities.
//
// This package defines the logging configuration structures used throughout
// the application to enable component-specific debug logging and verbose
// output control. It avoids import cycles by being a leaf dependency.
package logging

import (
	"github.com/sirupsen/logrus"
)

// LogConfig holds all logging and CLI configuration.
//
// This configuration is passed via dependency injection throughout the
// application to avoid global state and enable better testing isolation.
type LogConfig struct {
	ConfigFile string
	DryRun     bool
	LogLevel   string
	Verbose    int // -v, -vv, -vvv support
	Debug      DebugFlags
	LogFormat  string // "text" or "json"
}

// DebugFlags contains component-specific debug flags for targeted troubleshooting.
//
// Each flag enables detailed logging for a specific component:
// - Git: git command execution, timing, and output
// - API: GitHub API requests, responses, and timing
// - Transform: template rendering details and variable substitution
// - Config: configuration loading and validation
type DebugFlags struct {
	Git       bool // --debug-git flag
	API       bool // --debug-api flag
	Transform bool // --debug-transform flag
	Config    bool // --debug-config flag
}

// Any reports whether at least one component debug flag is enabled.
func (d DebugFlags) Any() bool {
	return d.Git || d.API || d.Transform || d.Config
}

// ConfigureLogger applies the LogConfig settings to a logrus logger.
func (lc *LogConfig) ConfigureLogger(logger *logrus.Logger) {
	if lc == nil {
		return
	}

	level, err := logrus.ParseLevel(lc.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}

	// Verbose flags escalate the level regardless of --log-level
	switch {
	case lc.Verbose >= 2:
		level = logrus.TraceLevel
	case lc.Verbose == 1 && level < logrus.DebugLevel:
		level = logrus.DebugLevel
	}

	// Component debug flags need debug-level output to be visible
	if lc.Debug.Any() && level < logrus.DebugLevel {
		level = logrus.DebugLevel
	}

	logger.SetLevel(level)

	if lc.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

// WithStandardFields returns an entry pre-populated with the component field
// so every log line from a component carries a consistent identifier.
func WithStandardFields(logger *logrus.Logger, _ *LogConfig, component string) *logrus.Entry {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return logger.WithField(StandardFields.Component, component)
}
