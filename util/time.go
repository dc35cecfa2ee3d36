package util

import "time"

// FormatDate formats a date for the given base language ("pt" or anything else for English).
// The zero time is rendered as a "date unavailable" notice.
func FormatDate(t time.Time, lang string) string {
	switch lang {
	case "pt":
		if t.IsZero() {
			return "Data indisponível"
		}
		return t.Local().Format("02/01/2006")
	default:
		if t.IsZero() {
			return "Date unavailable"
		}
		return t.Local().Format("January 2, 2006")
	}
}
