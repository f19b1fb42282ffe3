package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLSupportsChainedCalls(t *testing.T) {
	var buf bytes.Buffer
	previous := global
	global = zerolog.New(&buf)
	defer func() { global = previous }()

	// Level methods have pointer receivers, so L must hand back an
	// addressable logger for the call chains used throughout the services.
	L().Info().Str("component", "test").Msg("chained")

	out := buf.String()
	require.NotEmpty(t, out)
	assert.Contains(t, out, `"component":"test"`)
	assert.Contains(t, out, `"chained"`)
}

func TestNewAppliesLevel(t *testing.T) {
	logger := New(Config{Level: "warn"})
	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())
}

func TestNewTagsServiceName(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "info"})
	logger = logger.Output(&buf)

	logger.Info().Msg("hello")
	assert.NotContains(t, buf.String(), `"service"`)

	buf.Reset()
	tagged := New(Config{Level: "info", ServiceName: "connectly"}).Output(&buf)
	tagged.Info().Msg("hello")
	assert.Contains(t, buf.String(), `"service":"connectly"`)
}

func TestParseLevelFallsBackToInfo(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("nonsense"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel(""))
}
