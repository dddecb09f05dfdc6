package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLevels(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	assert.Equal(t, zerolog.WarnLevel, setup(&buf, "WARN", false))
	assert.Equal(t, zerolog.InfoLevel, setup(&buf, "", false))
	assert.Equal(t, zerolog.InfoLevel, setup(&buf, "chatty", false))
	assert.Equal(t, zerolog.DebugLevel, setup(&buf, "debug", false))
}

func TestSetupWritesJSON(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	setup(&buf, "info", false)
	log.Debug().Msg("hidden")
	log.Info().Str("persona", "hitesh").Msg("Processing chat request")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hitesh", entry["persona"])
	assert.Equal(t, "Processing chat request", entry["message"])
	assert.Contains(t, entry, "time")
}
