package services

import (
	"regexp"
	"strings"
	"time"

	"github.com/adilzhanb/shiftdesk/internal/models"
)

var dateRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ValidDate reports whether date is a strict YYYY-MM-DD calendar date: the
// pattern must match and the value must survive a parse/format round trip
// unchanged, which rejects impossible days and months.
func ValidDate(date string) bool {
	if !dateRegex.MatchString(date) {
		return false
	}
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		return false
	}
	return parsed.Format("2006-01-02") == date
}

// ValidShiftTime reports whether t is a known time-of-day slot.
func ValidShiftTime(t string) bool {
	return t == models.ShiftMorning || t == models.ShiftEvening
}

// displayDate renders a stored YYYY-MM-DD date as DD/MM/YYYY for
// notification text.
func displayDate(date string) string {
	parts := strings.Split(date, "-")
	if len(parts) != 3 {
		return date
	}
	return parts[2] + "/" + parts[1] + "/" + parts[0]
}

// shiftPhrase turns a slot into "a morning" / "an evening" for sentences.
func shiftPhrase(t string) string {
	if t == models.ShiftMorning {
		return "a morning"
	}
	return "an evening"
}
