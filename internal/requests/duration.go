package requests

import (
	"fmt"
	"time"
)

// durationDays counts the days of a date range inclusive of both
// endpoints, matching how leave is granted
func durationDays(start, end time.Time) int {
	return int(end.Sub(start).Hours()/24) + 1
}

// durationMinutes counts the elapsed minutes of a time range; an end
// at or before the start is treated as the next day so overnight
// breaks come out right
func durationMinutes(start, end time.Time) int {
	if !end.After(start) {
		end = end.Add(24 * time.Hour)
	}
	return int(end.Sub(start).Minutes())
}

// FormatDays renders a day count for the notification summary
func FormatDays(days int) string {
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}

// FormatMinutes renders a minute count as hours and minutes
func FormatMinutes(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	hours := minutes / 60
	remainder := minutes % 60
	if remainder == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh %dm", hours, remainder)
}
