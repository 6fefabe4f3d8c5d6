// Package timeutil formats run durations for log output.
package timeutil

import (
	"fmt"
	"time"
)

// FormatDuration rounds d to the second and renders it as "Xm Ys" or "Ys".
// Hours are folded into minutes.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	minutes := d / time.Minute
	seconds := (d % time.Minute) / time.Second

	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}

// Since formats the time elapsed since start.
func Since(start time.Time) string {
	return FormatDuration(time.Since(start))
}
