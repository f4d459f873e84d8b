package filters

import (
	"time"
)

// Period values accepted by date-range fields.
const (
	Last30Days   = "last_30_days"
	Last3Months  = "last_3_months"
	Last6Months  = "last_6_months"
	Last12Months = "last_12_months"
)

// Periods lists the date-range values in increasing length.
var Periods = []string{Last30Days, Last3Months, Last6Months, Last12Months}

// PeriodField is a date-range field defaulting to def.
func PeriodField(name, def string) Field {
	return Field{Name: name, Default: def, Any: All, Allowed: Periods}
}

// Window returns the inclusive range covered by period, ending with ref's day. Month
// periods start on the first day of the oldest calendar month, counting ref's month as
// one: last_6_months from 2024-06-30 starts on 2024-01-01. last_30_days is the 30 days
// ending with ref. ok is false for All and unknown values, meaning no constraint.
func Window(period string, ref time.Time) (from, to time.Time, ok bool) {
	y, m, d := ref.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, ref.Location())
	switch period {
	case Last30Days:
		from = day.AddDate(0, 0, -29)
	case Last3Months:
		from = firstOfMonth(ref, 3)
	case Last6Months:
		from = firstOfMonth(ref, 6)
	case Last12Months:
		from = firstOfMonth(ref, 12)
	default:
		return time.Time{}, time.Time{}, false
	}
	return from, day.AddDate(0, 0, 1).Add(-time.Nanosecond), true
}

// firstOfMonth returns the first day of the month n-1 months before ref's.
func firstOfMonth(ref time.Time, n int) time.Time {
	y, m, _ := ref.Date()
	return time.Date(y, m-time.Month(n-1), 1, 0, 0, 0, 0, ref.Location())
}

// Within matches items whose date falls inside period's window relative to ref.
func Within[T any](period string, ref time.Time, date func(T) time.Time) Predicate[T] {
	from, to, ok := Window(period, ref)
	if !ok {
		return nil
	}
	return func(item T) bool {
		d := date(item)
		return !d.Before(from) && !d.After(to)
	}
}
