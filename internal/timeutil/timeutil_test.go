package timeutil_test

import (
	"testing"
	"time"

	"github.com/sgaunet/gitlab-backport/internal/timeutil"
	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{name: "zero", duration: 0, expected: "0s"},
		{name: "negative clamps to zero", duration: -3 * time.Second, expected: "0s"},
		{name: "seconds only", duration: 45 * time.Second, expected: "45s"},
		{name: "one minute", duration: time.Minute, expected: "1m 0s"},
		{name: "minutes and seconds", duration: 2*time.Minute + 5*time.Second, expected: "2m 5s"},
		{name: "hours folded into minutes", duration: 2 * time.Hour, expected: "120m 0s"},
		{name: "rounds down", duration: 1400 * time.Millisecond, expected: "1s"},
		{name: "rounds up", duration: 1500 * time.Millisecond, expected: "2s"},
		{name: "rounds into next minute", duration: 59*time.Second + 600*time.Millisecond, expected: "1m 0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, timeutil.FormatDuration(tt.duration))
		})
	}
}

func TestSince(t *testing.T) {
	assert.Equal(t, "0s", timeutil.Since(time.Now()))
	assert.Equal(t, "1m 30s", timeutil.Since(time.Now().Add(-90*time.Second)))
}
