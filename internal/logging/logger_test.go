package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	lvl, ok := ParseLevel(" Debug ")
	assert.True(t, ok)
	assert.Equal(t, zerolog.DebugLevel, lvl)

	_, ok = ParseLevel("loud")
	assert.False(t, ok)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv(EnvLevel, "")
	assert.Equal(t, zerolog.WarnLevel, ConfigFromEnv(false).Level)
	assert.Equal(t, zerolog.DebugLevel, ConfigFromEnv(true).Level)

	t.Setenv(EnvLevel, "error")
	assert.Equal(t, zerolog.ErrorLevel, ConfigFromEnv(true).Level)
}

func TestNewFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: zerolog.WarnLevel, Output: &buf, NoColor: true})

	log.Debug().Msg("hidden")
	log.Warn().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestComponentAndContext(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: zerolog.DebugLevel, Output: &buf, NoColor: true})

	ctx := WithContext(context.Background(), Component(log, "scanner"))
	FromContext(ctx).Info().Msg("walking")

	assert.Contains(t, buf.String(), "component=scanner")
	assert.Contains(t, buf.String(), "walking")
}
