// Package timeutil formats durations and days for display.
package timeutil

import (
	"fmt"
	"strings"
	"time"
)

// DayLayout is the wire format of calendar days.
const DayLayout = "2006-01-02"

// FormatClock renders seconds as HH:MM:SS. Hours are not wrapped at 24.
func FormatClock(seconds int64) string {
	sign := ""
	if seconds < 0 {
		sign = "-"
		seconds = -seconds
	}
	return fmt.Sprintf("%s%02d:%02d:%02d", sign, seconds/3600, seconds%3600/60, seconds%60)
}

// FormatRuntime renders seconds as "Xh Ym Zs", leaving out leading zero
// units. Zero is "0s".
func FormatRuntime(seconds int64) string {
	if seconds == 0 {
		return "0s"
	}

	sign := ""
	if seconds < 0 {
		sign = "-"
		seconds = -seconds
	}

	h, m, s := seconds/3600, seconds%3600/60, seconds%60
	var parts []string
	if h > 0 {
		parts = append(parts, fmt.Sprintf("%dh", h))
	}
	if h > 0 || m > 0 {
		parts = append(parts, fmt.Sprintf("%dm", m))
	}
	parts = append(parts, fmt.Sprintf("%ds", s))

	return sign + strings.Join(parts, " ")
}

// Elapsed returns the whole seconds between since and now, 0 for a nil or
// future start.
func Elapsed(since *time.Time, now time.Time) int64 {
	if since == nil || now.Before(*since) {
		return 0
	}
	return int64(now.Sub(*since).Seconds())
}

// Today returns the current day in loc as YYYY-MM-DD.
func Today(now time.Time, loc *time.Location) string {
	return now.In(loc).Format(DayLayout)
}
