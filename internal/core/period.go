package core

import (
	"sort"
	"time"
)

// MonthStart returns the first day of the calendar month containing d.
func MonthStart(d Date) Date {
	return NewDate(d.Year(), int(d.Month()), 1)
}

// MonthEnd returns the last day of the calendar month containing d.
// The zero-day trick resolves month lengths including leap February.
func MonthEnd(d Date) Date {
	return Date{Time: time.Date(d.Year(), d.Month()+1, 0, 0, 0, 0, 0, time.UTC)}
}

// IsWithin reports whether d lies in the inclusive interval [start, end].
func IsWithin(d, start, end Date) bool {
	return !d.Before(start) && !d.After(end)
}

// DistinctMonths returns the calendar months touched by any transaction
// date, each represented by its month-start date, deduplicated and
// ordered descending (most recent first). Transactions with unparsable
// dates are ignored; an empty set yields an empty slice.
func DistinctMonths(transactions []Transaction) []Date {
	seen := make(map[string]Date)
	for _, t := range transactions {
		d, err := ParseDate(t.Date)
		if err != nil {
			continue
		}
		start := MonthStart(d)
		seen[start.String()] = start
	}
	months := make([]Date, 0, len(seen))
	for _, m := range seen {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool {
		return months[i].After(months[j])
	})
	return months
}

// MonthRange returns the month-start of every calendar month whose start
// falls within [start, end], inclusive of both endpoints' months, in
// ascending order. Trend series are built over this range so months with
// zero activity still appear.
func MonthRange(start, end Date) []Date {
	if end.Before(start) {
		return nil
	}
	var months []Date
	last := MonthStart(end)
	for m := MonthStart(start); !m.After(last); m = m.AddMonths(1) {
		months = append(months, m)
	}
	return months
}
