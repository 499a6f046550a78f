package logging

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestConfigureLogger(t *testing.T) {
	tests := []struct {
		name      string
		config    LogConfig
		wantLevel logrus.Level
	}{
		{"defaults to info on bad level", LogConfig{LogLevel: "bogus"}, logrus.InfoLevel},
		{"explicit debug level", LogConfig{LogLevel: "debug"}, logrus.DebugLevel},
		{"single verbose escalates to debug", LogConfig{LogLevel: "info", Verbose: 1}, logrus.DebugLevel},
		{"double verbose escalates to trace", LogConfig{LogLevel: "info", Verbose: 2}, logrus.TraceLevel},
		{"git debug flag escalates to debug", LogConfig{LogLevel: "info", Debug: DebugFlags{Git: true}}, logrus.DebugLevel},
		{"config debug flag escalates to debug", LogConfig{LogLevel: "info", Debug: DebugFlags{Config: true}}, logrus.DebugLevel},
		{"debug flags never lower trace", LogConfig{LogLevel: "info", Verbose: 2, Debug: DebugFlags{API: true}}, logrus.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := logrus.New()
			tt.config.ConfigureLogger(logger)
			assert.Equal(t, tt.wantLevel, logger.GetLevel())
		})
	}
}

func TestConfigureLoggerJSONFormat(t *testing.T) {
	logger := logrus.New()
	(&LogConfig{LogLevel: "info", LogFormat: "json"}).ConfigureLogger(logger)
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)
}

func TestWithStandardFields(t *testing.T) {
	logger := logrus.New()
	entry := WithStandardFields(logger, nil, ComponentNames.Sync)
	assert.Equal(t, ComponentNames.Sync, entry.Data[StandardFields.Component])
}
