package scheduling

import "time"

// ExpiryCutoff returns the latest scheduled date that counts as overdue:
// anything on or before yesterday.
func ExpiryCutoff(today time.Time) time.Time {
	y, m, d := today.AddDate(0, 0, -1).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, today.Location())
}

// ExpireOverdue decides what a scheduled appointment's status should be as
// of today. A scheduled appointment whose date is at least one full day in
// the past becomes cancelled; every other status passes through untouched.
// The comparison is by calendar date, so an appointment earlier today is
// still scheduled.
func ExpireOverdue(status string, scheduledAt, today time.Time) string {
	if status != StatusScheduled {
		return status
	}
	y, m, d := scheduledAt.Date()
	scheduledDate := time.Date(y, m, d, 0, 0, 0, 0, today.Location())
	if scheduledDate.After(ExpiryCutoff(today)) {
		return status
	}
	return StatusCancelled
}
