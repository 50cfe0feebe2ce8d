package util

import "time"

// AddBusinessDays advances start by n weekdays, skipping Saturdays and
// Sundays. The start day itself never counts toward n.
func AddBusinessDays(start time.Time, n int) time.Time {
	current := start
	added := 0
	for added < n {
		current = current.AddDate(0, 0, 1)
		if wd := current.Weekday(); wd != time.Saturday && wd != time.Sunday {
			added++
		}
	}
	return current
}
