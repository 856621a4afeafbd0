package core

import "sort"

// BudgetStatus is a budget merged with live spend for display.
type BudgetStatus struct {
	Category    string
	Limit       Money
	Spent       Money
	Utilization float64 // displayed percentage, capped at 100
	OverLimit   bool
}

// Utilization returns spent/limit as a percentage capped at 100. Being
// over the limit is reported separately by OverLimit so the capped bar
// and the warning state stay independent.
func (b Budget) Utilization() float64 {
	if b.Limit.Cents <= 0 {
		return 0
	}
	pct := float64(b.Spent.Cents) / float64(b.Limit.Cents) * 100
	if pct > 100 {
		return 100
	}
	return pct
}

// OverLimit reports whether spend exceeds the limit.
func (b Budget) OverLimit() bool {
	return b.Spent.Cents > b.Limit.Cents
}

// MoveBudget reallocates amount from one category's limit to another's,
// returning a new slice; the input is never mutated. The total limit
// across all budgets is conserved by every reallocation. Moving more
// than the source's remaining limit is rejected so no limit can go
// negative; moving more than the unspent remainder is allowed.
func MoveBudget(budgets []Budget, fromCategory, toCategory string, amount Money) ([]Budget, error) {
	if amount.Cents <= 0 {
		return nil, ErrInvalidAmount
	}
	fromIdx, toIdx := -1, -1
	for i, b := range budgets {
		switch b.Category {
		case fromCategory:
			fromIdx = i
		case toCategory:
			toIdx = i
		}
	}
	if fromIdx < 0 || toIdx < 0 {
		return nil, ErrBudgetNotFound
	}
	if budgets[fromIdx].Limit.Cents < amount.Cents {
		return nil, ErrInsufficientLimit
	}
	out := make([]Budget, len(budgets))
	copy(out, budgets)
	out[fromIdx].Limit = out[fromIdx].Limit.Sub(amount)
	out[toIdx].Limit = out[toIdx].Limit.Add(amount)
	return out, nil
}

// TotalLimit sums all budget limits.
func TotalLimit(budgets []Budget) Money {
	var total Money
	for _, b := range budgets {
		total = total.Add(b.Limit)
	}
	return total
}

// BudgetableCategories returns the categories eligible for budgeting in
// the given interval: a category qualifies only if at least one expense
// transaction exists in it. Income-only or empty categories are never
// budgetable. Output is sorted for stable display.
func BudgetableCategories(transactions []Transaction, start, end Date) []string {
	agg := Aggregate(transactions, start, end)
	cats := make([]string, 0, len(agg.ByCategory))
	for cat := range agg.ByCategory {
		cats = append(cats, cat)
	}
	sort.Strings(cats)
	return cats
}

// BudgetOverview merges budgets with live spend recomputed from the
// transaction set over [start, end]. Only budgets whose category has at
// least one expense transaction in the interval appear. Spent on the
// returned statuses reflects the snapshot, not the stored field.
func BudgetOverview(budgets []Budget, transactions []Transaction, start, end Date) []BudgetStatus {
	agg := Aggregate(transactions, start, end)
	statuses := make([]BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		spent, ok := agg.ByCategory[b.Category]
		if !ok {
			continue
		}
		live := Budget{Category: b.Category, Limit: b.Limit, Spent: spent}
		statuses = append(statuses, BudgetStatus{
			Category:    live.Category,
			Limit:       live.Limit,
			Spent:       live.Spent,
			Utilization: live.Utilization(),
			OverLimit:   live.OverLimit(),
		})
	}
	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].Category < statuses[j].Category
	})
	return statuses
}
