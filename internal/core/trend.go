package core

// TrendPoint is one calendar month of a trend series.
type TrendPoint struct {
	Month    Date   // month start
	Label    string // e.g. "Mar 2024"
	Income   Money
	Expenses Money
}

// trendLabelLayout is the month label format used in trend output.
const trendLabelLayout = "Jan 2006"

// TrailingMonths builds the trend series for the n calendar months
// ending at the month containing anchor, in chronological ascending
// order. Months with zero activity appear with zero values so charts
// built on this series have no gaps.
func TrailingMonths(transactions []Transaction, anchor Date, n int) []TrendPoint {
	if n <= 0 {
		return nil
	}
	end := MonthStart(anchor)
	start := end.AddMonths(-(n - 1))
	return trendOver(transactions, start, end)
}

// AllTime builds the trend series spanning the earliest to the latest
// parsable transaction date, one point per month, ascending. An empty
// or fully unparsable set yields an empty series.
func AllTime(transactions []Transaction) []TrendPoint {
	var earliest, latest Date
	found := false
	for _, t := range transactions {
		d, err := ParseDate(t.Date)
		if err != nil {
			continue
		}
		if !found {
			earliest, latest = d, d
			found = true
			continue
		}
		if d.Before(earliest) {
			earliest = d
		}
		if d.After(latest) {
			latest = d
		}
	}
	if !found {
		return nil
	}
	return trendOver(transactions, MonthStart(earliest), MonthStart(latest))
}

func trendOver(transactions []Transaction, first, last Date) []TrendPoint {
	months := MonthRange(first, last)
	points := make([]TrendPoint, 0, len(months))
	for _, m := range months {
		agg := AggregateMonth(transactions, m)
		points = append(points, TrendPoint{
			Month:    m,
			Label:    m.Format(trendLabelLayout),
			Income:   agg.Income,
			Expenses: agg.Expenses,
		})
	}
	return points
}

// PercentChange returns (current-previous)/previous*100. A zero previous
// value is special-cased to avoid division by zero: the change is 100
// when current is positive (growth from nothing) and 0 otherwise.
func PercentChange(current, previous Money) float64 {
	if previous.Cents == 0 {
		if current.Cents > 0 {
			return 100
		}
		return 0
	}
	return float64(current.Cents-previous.Cents) / float64(previous.Cents) * 100
}
