package analysis

import "time"

// dateKey renders a timestamp's calendar date the way the rendering layer keys
// its charts: no leading zeros, two-digit year. Sorting always happens on the
// time.Time, never on this string.
func dateKey(t time.Time) string {
	return t.Format("1/2/06")
}

// dayOf truncates a timestamp to midnight of its calendar date.
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
