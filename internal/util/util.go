// Package util holds small formatting and paging helpers shared by the
// back office and the operator CLI.
package util

import (
	"fmt"
	"time"
)

// FormatBytes formats bytes into human readable format.
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	const units = "KMGTPEZY"
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit && exp < len(units)-1; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), units[exp])
}

// FormatDuration formats duration into human readable format (e.g., "1h30m", "5m10s", "45s").
func FormatDuration(duration time.Duration) string {
	duration = duration.Round(time.Second)

	if duration < time.Minute {
		return fmt.Sprintf("%ds", int(duration.Seconds()))
	}

	if duration < time.Hour {
		m := int(duration.Minutes())
		s := int(duration.Seconds()) % 60

		return fmt.Sprintf("%dm%ds", m, s)
	}

	h := int(duration.Hours())
	m := int(duration.Minutes()) % 60

	return fmt.Sprintf("%dh%dm", h, m)
}

// TotalPages returns how many pages of size hold total rows. An empty set still has one page.
func TotalPages(total int64, size int) int {
	if size <= 0 || total <= 0 {
		return 1
	}

	return int((total + int64(size) - 1) / int64(size))
}

// ClampPage moves page into [1, pages].
func ClampPage(page, pages int) int {
	if pages < 1 {
		pages = 1
	}

	return max(1, min(page, pages))
}

// Offset is the row offset of a 1-based page.
func Offset(page, size int) int {
	return (page - 1) * size
}
