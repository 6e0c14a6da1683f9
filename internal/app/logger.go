package app

import (
	"github.com/rs/zerolog/log"
)

// Logger is the component-tagged logger shared across packages.
type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

type NoopLogger struct{}

func (NoopLogger) Infof(component, format string, args ...interface{})  {}
func (NoopLogger) Errorf(component, format string, args ...interface{}) {}

// ZeroLogger forwards to the global zerolog logger.
type ZeroLogger struct{}

func (ZeroLogger) Infof(component string, format string, args ...interface{}) {
	log.Info().Str("component", component).Msgf(format, args...)
}

func (ZeroLogger) Errorf(component string, format string, args ...interface{}) {
	log.Error().Str("component", component).Msgf(format, args...)
}
