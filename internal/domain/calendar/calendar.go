// Package calendar holds the due-date arithmetic shared by contributions,
// loans and the overdue listings. Due dates are calendar days in UTC: a
// contribution due on the 6th is on time for the whole of the 6th.
package calendar

import "time"

// StartOfDay truncates t to midnight UTC.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// OverdueCutoff is the bound for storage queries: a row is overdue at now
// exactly when its due date is before the cutoff.
func OverdueCutoff(now time.Time) time.Time { return StartOfDay(now) }

// Overdue reports whether the day due falls on has ended by now.
func Overdue(due, now time.Time) bool { return due.Before(OverdueCutoff(now)) }

// DaysOverdue counts whole days since the due day, so the day after it is
// day 1. It is 0 until then.
func DaysOverdue(due, now time.Time) int {
	if !Overdue(due, now) {
		return 0
	}
	return int(StartOfDay(now).Sub(StartOfDay(due)).Hours() / 24)
}
