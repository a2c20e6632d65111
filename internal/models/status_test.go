package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	for _, raw := range []string{"received", "cutting", "sewing", "fitting", "ready"} {
		s, err := ParseStatus(raw)
		require.NoError(t, err)
		assert.Equal(t, Status(raw), s)
	}
}

func TestParseStatusRejectsUnknown(t *testing.T) {
	for _, raw := range []string{"", "Ready", "done", "in progress"} {
		_, err := ParseStatus(raw)
		assert.Error(t, err, "status %q should be rejected", raw)
	}
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusReady.Valid())
	assert.False(t, Status("embroidery").Valid())
}
