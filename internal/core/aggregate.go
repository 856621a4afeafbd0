package core

// AggregationResult holds period-scoped totals. Income and Expenses are
// always non-negative; ByCategory only contains categories with at least
// one matching expense transaction. Skipped counts transactions excluded
// because their date could not be parsed — a lossy-but-non-fatal policy
// surfaced for diagnostics instead of failing mid-aggregation.
type AggregationResult struct {
	Start      Date
	End        Date
	Income     Money
	Expenses   Money
	ByCategory map[string]Money
	Skipped    int
}

// Aggregate filters the transaction set to dates within the inclusive
// [start, end] interval and sums amounts by direction. Expense amounts
// additionally accumulate into the per-category breakdown, which is
// exhaustive and non-overlapping over the matched expense transactions.
func Aggregate(transactions []Transaction, start, end Date) AggregationResult {
	result := AggregationResult{
		Start:      start,
		End:        end,
		ByCategory: make(map[string]Money),
	}
	for _, t := range transactions {
		d, err := ParseDate(t.Date)
		if err != nil {
			result.Skipped++
			continue
		}
		if !IsWithin(d, start, end) {
			continue
		}
		switch t.Type {
		case Income:
			result.Income = result.Income.Add(t.Amount)
		case Expense:
			result.Expenses = result.Expenses.Add(t.Amount)
			cat := t.Category
			if cat == "" {
				cat = CategoryUncategorized
			}
			result.ByCategory[cat] = result.ByCategory[cat].Add(t.Amount)
		}
	}
	return result
}

// AggregateMonth aggregates over the full calendar month containing d.
func AggregateMonth(transactions []Transaction, d Date) AggregationResult {
	return Aggregate(transactions, MonthStart(d), MonthEnd(d))
}

// Net returns income minus expenses for the period. Negative means the
// period spent more than it earned.
func (r AggregationResult) Net() Money {
	return r.Income.Sub(r.Expenses)
}
