package core

import (
	"errors"
	"testing"
)

func TestBudgetUtilization(t *testing.T) {
	tests := []struct {
		name      string
		budget    Budget
		want      float64
		overLimit bool
	}{
		{name: "half used", budget: Budget{Limit: Money{Cents: 20000}, Spent: Money{Cents: 10000}}, want: 50},
		{name: "exactly at limit", budget: Budget{Limit: Money{Cents: 10000}, Spent: Money{Cents: 10000}}, want: 100},
		{name: "over limit caps at 100", budget: Budget{Limit: Money{Cents: 10000}, Spent: Money{Cents: 15000}}, want: 100, overLimit: true},
		{name: "nothing spent", budget: Budget{Limit: Money{Cents: 10000}}, want: 0},
		{name: "zero limit degrades to zero", budget: Budget{Spent: Money{Cents: 500}}, want: 0, overLimit: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.budget.Utilization(); got != tt.want {
				t.Errorf("Utilization() = %v, want %v", got, tt.want)
			}
			if got := tt.budget.OverLimit(); got != tt.overLimit {
				t.Errorf("OverLimit() = %v, want %v", got, tt.overLimit)
			}
		})
	}
}

func TestMoveBudget(t *testing.T) {
	base := []Budget{
		{Category: "Groceries", Limit: Money{Cents: 20000}},
		{Category: "Dining", Limit: Money{Cents: 10000}},
	}

	t.Run("conserves total", func(t *testing.T) {
		moved, err := MoveBudget(base, "Groceries", "Dining", Money{Cents: 5000})
		if err != nil {
			t.Fatalf("MoveBudget failed: %v", err)
		}
		if moved[0].Limit.Cents != 15000 || moved[1].Limit.Cents != 15000 {
			t.Errorf("limits after move = %d/%d, want 15000/15000", moved[0].Limit.Cents, moved[1].Limit.Cents)
		}
		if TotalLimit(moved).Cents != TotalLimit(base).Cents {
			t.Errorf("total limit not conserved: %d != %d", TotalLimit(moved).Cents, TotalLimit(base).Cents)
		}
		// Input slice must stay untouched.
		if base[0].Limit.Cents != 20000 {
			t.Error("MoveBudget mutated its input")
		}
	})

	t.Run("unknown category", func(t *testing.T) {
		if _, err := MoveBudget(base, "Groceries", "Rent", Money{Cents: 100}); !errors.Is(err, ErrBudgetNotFound) {
			t.Errorf("err = %v, want ErrBudgetNotFound", err)
		}
	})

	t.Run("rejects driving a limit negative", func(t *testing.T) {
		if _, err := MoveBudget(base, "Dining", "Groceries", Money{Cents: 10001}); !errors.Is(err, ErrInsufficientLimit) {
			t.Errorf("err = %v, want ErrInsufficientLimit", err)
		}
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		if _, err := MoveBudget(base, "Groceries", "Dining", Money{}); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("err = %v, want ErrInvalidAmount", err)
		}
	})
}

func TestBudgetOverview(t *testing.T) {
	start, end := NewDate(2024, 3, 1), NewDate(2024, 3, 31)
	txs := []Transaction{
		{Date: "2024-03-02", Amount: Money{Cents: 8000}, Type: Expense, Category: "Groceries"},
		{Date: "2024-03-05", Amount: Money{Cents: 4000}, Type: Expense, Category: "Groceries"},
		{Date: "2024-03-09", Amount: Money{Cents: 300000}, Type: Income, Category: "Income"},
	}
	budgets := []Budget{
		{Category: "Groceries", Limit: Money{Cents: 10000}, Spent: Money{Cents: 1}}, // stale snapshot
		{Category: "Dining", Limit: Money{Cents: 5000}},
	}

	overview := BudgetOverview(budgets, txs, start, end)
	if len(overview) != 1 {
		t.Fatalf("overview has %d entries, want 1 (categories without expenses never shown)", len(overview))
	}
	got := overview[0]
	if got.Category != "Groceries" {
		t.Errorf("Category = %s, want Groceries", got.Category)
	}
	if got.Spent.Cents != 12000 {
		t.Errorf("Spent = %d, want live 12000 not the stale stored snapshot", got.Spent.Cents)
	}
	if !got.OverLimit || got.Utilization != 100 {
		t.Errorf("OverLimit/Utilization = %v/%v, want true/100", got.OverLimit, got.Utilization)
	}
}

func TestBudgetableCategories(t *testing.T) {
	start, end := NewDate(2024, 3, 1), NewDate(2024, 3, 31)
	txs := []Transaction{
		{Date: "2024-03-02", Amount: Money{Cents: 100}, Type: Expense, Category: "Dining"},
		{Date: "2024-03-03", Amount: Money{Cents: 100}, Type: Expense, Category: "Groceries"},
		{Date: "2024-03-04", Amount: Money{Cents: 100}, Type: Income, Category: "Income"},
	}
	got := BudgetableCategories(txs, start, end)
	want := []string{"Dining", "Groceries"}
	if len(got) != len(want) {
		t.Fatalf("BudgetableCategories = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("categories[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}
