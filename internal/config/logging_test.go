package config

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerParsesLevel(t *testing.T) {
	logger := NewLogger(LoggingConfig{Level: "debug", Format: "json"})
	require.Equal(t, zerolog.DebugLevel, logger.GetLevel())
}

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	logger := NewLogger(LoggingConfig{Level: "shouting", Format: "json"})
	require.Equal(t, zerolog.InfoLevel, logger.GetLevel())

	logger = NewLogger(LoggingConfig{})
	require.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}
