package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_StructuredJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	log.Info().Str("wallet_number", "WLT1234567890USD").Msg("wallet created")

	var output map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &output)
	require.NoError(t, err, "logger output should be valid JSON")

	assert.Equal(t, "wallet created", output["message"])
	assert.Equal(t, "WLT1234567890USD", output["wallet_number"])
	assert.Equal(t, "info", output["level"])
	assert.Contains(t, output, "time", "should include timestamp")
}

func TestNewWithWriter_LevelFiltering(t *testing.T) {
	tests := []struct {
		level     string
		debugSeen bool
		infoSeen  bool
		errorSeen bool
	}{
		{"debug", true, true, true},
		{"info", false, true, true},
		{"warn", false, false, true},
		{"error", false, false, true},
		{"invalid", false, true, true}, // unknown level falls back to info
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			log := NewWithWriter(tt.level, &buf)

			log.Debug().Msg("debug msg")
			assert.Equal(t, tt.debugSeen, buf.Len() > 0, "debug visibility at level %s", tt.level)

			buf.Reset()
			log.Info().Msg("info msg")
			assert.Equal(t, tt.infoSeen, buf.Len() > 0, "info visibility at level %s", tt.level)

			buf.Reset()
			log.Error().Msg("error msg")
			assert.Equal(t, tt.errorSeen, buf.Len() > 0, "error visibility at level %s", tt.level)
		})
	}
}

func TestNew_ServiceName(t *testing.T) {
	// New writes to stdout, so only check the logger is usable and the
	// service name is what operators grep for.
	log := New("info", false)
	log.Info().Msg("startup")
	assert.Equal(t, "wallet-ledger", serviceName)
}

func TestNew_PrettyMode(t *testing.T) {
	// Just ensure console mode doesn't panic.
	log := New("debug", true)
	log.Debug().Msg("pretty mode test")
}
