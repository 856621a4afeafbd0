package core

import "testing"

func TestPercentChange(t *testing.T) {
	tests := []struct {
		name     string
		current  int64
		previous int64
		want     float64
	}{
		{name: "growth from zero", current: 5000, previous: 0, want: 100},
		{name: "zero to zero", current: 0, previous: 0, want: 0},
		{name: "doubled", current: 200, previous: 100, want: 100},
		{name: "halved", current: 50, previous: 100, want: -50},
		{name: "unchanged", current: 100, previous: 100, want: 0},
		{name: "dropped to zero", current: 0, previous: 80, want: -100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PercentChange(Money{Cents: tt.current}, Money{Cents: tt.previous})
			if got != tt.want {
				t.Errorf("PercentChange(%d, %d) = %v, want %v", tt.current, tt.previous, got, tt.want)
			}
		})
	}
}

func TestAllTime(t *testing.T) {
	txs := []Transaction{
		{Date: "2024-03-01", Amount: Money{Cents: 10000}, Type: Expense, Category: "Groceries"},
		{Date: "2024-04-01", Amount: Money{Cents: 5000}, Type: Expense, Category: "Groceries"},
	}

	points := AllTime(txs)
	if len(points) != 2 {
		t.Fatalf("AllTime returned %d points, want 2", len(points))
	}
	if points[0].Label != "Mar 2024" || points[0].Expenses.Cents != 10000 {
		t.Errorf("points[0] = %s/%d, want Mar 2024/10000", points[0].Label, points[0].Expenses.Cents)
	}
	if points[1].Label != "Apr 2024" || points[1].Expenses.Cents != 5000 {
		t.Errorf("points[1] = %s/%d, want Apr 2024/5000", points[1].Label, points[1].Expenses.Cents)
	}
}

func TestAllTimeZeroFillsGaps(t *testing.T) {
	txs := []Transaction{
		{Date: "2024-01-10", Amount: Money{Cents: 100}, Type: Expense, Category: "Dining"},
		{Date: "2024-04-10", Amount: Money{Cents: 400}, Type: Expense, Category: "Dining"},
	}
	points := AllTime(txs)
	if len(points) != 4 {
		t.Fatalf("AllTime returned %d points, want 4 (gap months included)", len(points))
	}
	if points[1].Expenses.Cents != 0 || points[2].Expenses.Cents != 0 {
		t.Error("gap months must appear with zero values, never be omitted")
	}
}

func TestAllTimeEmpty(t *testing.T) {
	if got := AllTime(nil); len(got) != 0 {
		t.Errorf("AllTime(nil) = %v, want empty", got)
	}
	unparsable := []Transaction{{Date: "??", Amount: Money{Cents: 5}, Type: Expense}}
	if got := AllTime(unparsable); len(got) != 0 {
		t.Errorf("AllTime with only bad dates = %v, want empty", got)
	}
}

func TestTrailingMonths(t *testing.T) {
	txs := []Transaction{
		{Date: "2024-06-02", Amount: Money{Cents: 1200}, Type: Expense, Category: "Dining"},
		{Date: "2024-05-15", Amount: Money{Cents: 80000}, Type: Income, Category: "Income"},
	}
	points := TrailingMonths(txs, NewDate(2024, 6, 20), 6)
	if len(points) != 6 {
		t.Fatalf("TrailingMonths returned %d points, want 6", len(points))
	}
	if points[0].Label != "Jan 2024" {
		t.Errorf("first point = %s, want Jan 2024", points[0].Label)
	}
	if points[5].Label != "Jun 2024" || points[5].Expenses.Cents != 1200 {
		t.Errorf("last point = %s/%d, want Jun 2024/1200", points[5].Label, points[5].Expenses.Cents)
	}
	if points[4].Income.Cents != 80000 {
		t.Errorf("May income = %d, want 80000", points[4].Income.Cents)
	}

	if got := TrailingMonths(txs, NewDate(2024, 6, 20), 0); got != nil {
		t.Errorf("TrailingMonths with n=0 = %v, want nil", got)
	}
}
