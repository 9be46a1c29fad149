package helpers

import (
	"fmt"
	"strconv"
	"time"

	"finitefield.org/toolfinder/internal/catalog"
)

// LoadTrigger returns the hx-trigger value that fires once after delay.
func LoadTrigger(delay time.Duration) string {
	if delay <= 0 {
		return "load"
	}
	return "load delay:" + Interval(delay)
}

// Interval formats a duration in htmx timing syntax ("1s", "1500ms").
func Interval(d time.Duration) string {
	if d%time.Second == 0 {
		return fmt.Sprintf("%ds", int64(d/time.Second))
	}
	return fmt.Sprintf("%dms", d.Milliseconds())
}

// Milliseconds renders d for data-* attributes read by the page script.
func Milliseconds(d time.Duration) string {
	return strconv.FormatInt(d.Milliseconds(), 10)
}

// MessageClass maps a message tone to its css classes.
func MessageClass(tone string) string {
	switch tone {
	case "success":
		return "message message--success"
	case "error":
		return "message message--error"
	default:
		return "message"
	}
}

// StatusBadgeClass returns the badge classes for a review status; the
// modifier is the lower-case status name.
func StatusBadgeClass(status catalog.Status) string {
	return "review-status " + status.BadgeClass()
}
