// Package recurrence holds the pure date arithmetic for recurring
// transactions and budget renewal. Nothing in here reads the wall clock:
// callers pass "now" in, which keeps catch-up loops deterministic and
// reproducible.
package recurrence

import (
	"time"

	"centavo/internal/models"
)

// NextDate returns the occurrence following d for the given interval.
// Monthly and yearly advances use calendar arithmetic: the day of month is
// preserved where valid and normalized forward otherwise (Jan 31 + 1 month
// lands in early March).
func NextDate(d time.Time, interval models.RecurringInterval) time.Time {
	switch interval {
	case models.RecurringIntervalDaily:
		return d.AddDate(0, 0, 1)
	case models.RecurringIntervalWeekly:
		return d.AddDate(0, 0, 7)
	case models.RecurringIntervalBiweekly:
		return d.AddDate(0, 0, 14)
	case models.RecurringIntervalMonthly:
		return d.AddDate(0, 1, 0)
	case models.RecurringIntervalYearly:
		return d.AddDate(1, 0, 0)
	}
	return d
}

// AdvanceBudgetWindow computes the next budget window after (start, end).
//
// When the period is monthly and renewDay is set, the window is anchored to
// that day of month regardless of the old start: the new window runs from
// renewDay of the month after end (or of end's own month, if that date is
// still ahead of end) until the day before the following renewDay, at end of
// day. Otherwise both bounds shift forward by exactly one period length.
func AdvanceBudgetWindow(start, end time.Time, period models.BudgetPeriod, renewDay *int) (time.Time, time.Time) {
	if renewDay != nil && period == models.BudgetPeriodMonthly {
		return salaryDayWindow(end, *renewDay)
	}

	switch period {
	case models.BudgetPeriodDaily:
		return start.AddDate(0, 0, 1), end.AddDate(0, 0, 1)
	case models.BudgetPeriodWeekly:
		return start.AddDate(0, 0, 7), end.AddDate(0, 0, 7)
	case models.BudgetPeriodMonthly:
		return start.AddDate(0, 1, 0), end.AddDate(0, 1, 0)
	case models.BudgetPeriodYearly:
		return start.AddDate(1, 0, 0), end.AddDate(1, 0, 0)
	}
	return start, end
}

func salaryDayWindow(end time.Time, renewDay int) (time.Time, time.Time) {
	loc := end.Location()

	year, month := end.Year(), end.Month()
	start := dayOfMonth(year, month, renewDay, loc)
	if !start.After(end) {
		year, month = nextMonth(year, month)
		start = dayOfMonth(year, month, renewDay, loc)
	}

	endYear, endMonth := nextMonth(start.Year(), start.Month())
	next := dayOfMonth(endYear, endMonth, renewDay, loc).AddDate(0, 0, -1)
	windowEnd := time.Date(next.Year(), next.Month(), next.Day(), 23, 59, 59, 999999999, loc)

	return start, windowEnd
}

// dayOfMonth returns midnight on the given day, clamped to the month's length.
func dayOfMonth(year int, month time.Month, day int, loc *time.Location) time.Time {
	if last := daysInMonth(year, month); day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func nextMonth(year int, month time.Month) (int, time.Month) {
	if month == time.December {
		return year + 1, time.January
	}
	return year, month + 1
}

// DefaultWindow returns the calendar window containing now for the given
// period: the current day, the current Sunday-to-Saturday week, the current
// month, or the current year. Used when a budget is created without explicit
// dates.
func DefaultWindow(now time.Time, period models.BudgetPeriod) (time.Time, time.Time) {
	loc := now.Location()
	switch period {
	case models.BudgetPeriodDaily:
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
		return start, endOfDay(start)
	case models.BudgetPeriodWeekly:
		start := time.Date(now.Year(), now.Month(), now.Day()-int(now.Weekday()), 0, 0, 0, 0, loc)
		return start, endOfDay(start.AddDate(0, 0, 6))
	case models.BudgetPeriodYearly:
		start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, loc)
		return start, endOfDay(time.Date(now.Year(), time.December, 31, 0, 0, 0, 0, loc))
	default: // monthly
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		return start, endOfDay(start.AddDate(0, 1, -1))
	}
}

func endOfDay(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 999999999, d.Location())
}
