package monitor

import (
	"fmt"
	"time"
)

// FormatTokens renders a token count as "512", "1.4K", or "2.1M".
func FormatTokens(tokens int64) string {
	switch {
	case tokens >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(tokens)/1_000_000)
	case tokens >= 1_000:
		return fmt.Sprintf("%.1fK", float64(tokens)/1_000)
	default:
		return fmt.Sprintf("%d", tokens)
	}
}

// FormatRate renders a completions-per-minute rate.
func FormatRate(perMinute float64) string {
	return fmt.Sprintf("%.1f ops/min", perMinute)
}

// FormatPercentage renders a 0-100 percentage with one decimal.
func FormatPercentage(percent float64) string {
	return fmt.Sprintf("%.1f%%", percent)
}

// FormatDurationMS renders milliseconds as "12ms" below one second and
// "1.2s" above.
func FormatDurationMS(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	return fmt.Sprintf("%.1fs", float64(ms)/1000)
}

// FormatUptime renders an uptime as "3h 12m", or "42m" under an hour.
func FormatUptime(d time.Duration) string {
	mins := int64(d.Minutes())
	if h := mins / 60; h > 0 {
		return fmt.Sprintf("%dh %dm", h, mins%60)
	}
	return fmt.Sprintf("%dm", mins)
}
