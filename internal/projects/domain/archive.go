package domain

import "time"

const (
	// TimestampLayout is the wire format of created_at / updated_at.
	TimestampLayout = "02-01-2006 15:04:05"
	// DateLayout is the wire format of shoot-day dates.
	DateLayout = "02-01-2006"
)

func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// ParseDate parses a DD-MM-YYYY shoot-day date in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, loc)
}

// ShouldArchive reports whether every shoot day lies strictly before the
// calendar day of now. A project without days is never archived, and a day
// whose date cannot be parsed counts as today.
func ShouldArchive(days []ScheduleDay, now time.Time) bool {
	if len(days) == 0 {
		return false
	}

	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	for _, day := range days {
		date, err := ParseDate(day.Date, now.Location())
		if err != nil {
			return false
		}
		if !date.Before(today) {
			return false
		}
	}

	return true
}
