package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":  zerolog.TraceLevel,
		"debug":  zerolog.DebugLevel,
		"info":   zerolog.InfoLevel,
		"warn":   zerolog.WarnLevel,
		"error":  zerolog.ErrorLevel,
		"":       zerolog.InfoLevel,
		"basura": zerolog.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, parseLevel(in), "nivel %q", in)
	}
}

func TestNewRespetaNivel(t *testing.T) {
	l := New(Config{Env: "production", Level: "warn", Service: "minimoda-api"})
	assert.Equal(t, zerolog.WarnLevel, l.Zerolog().GetLevel())
}

func TestComponentConservaElNivel(t *testing.T) {
	l := New(Config{Env: "production", Level: "error"})
	sub := l.Component("sweep")
	assert.Equal(t, zerolog.ErrorLevel, sub.Zerolog().GetLevel())
}
