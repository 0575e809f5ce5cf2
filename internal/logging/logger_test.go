package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zerolog.Level
		wantErr bool
	}{
		{"", zerolog.InfoLevel, false},
		{"info", zerolog.InfoLevel, false},
		{"DEBUG", zerolog.DebugLevel, false},
		{" trace ", zerolog.TraceLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"loud", zerolog.InfoLevel, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		assert.Equal(t, tt.want, got, "ParseLevel(%q)", tt.in)
		assert.Equal(t, tt.wantErr, err != nil, "ParseLevel(%q) err = %v", tt.in, err)
	}
}

func TestNew_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log := Component(New(&buf, zerolog.WarnLevel), "test")

	log.Info().Msg("quiet")
	log.Warn().Str("key", "v").Msg("loud")

	out := buf.String()
	assert.NotContains(t, out, "quiet")
	require.Contains(t, out, "loud")
	assert.Contains(t, out, "component=")
	assert.Contains(t, out, "key=")
}
