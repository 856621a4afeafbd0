package core

import "testing"

func TestMonthStartEnd(t *testing.T) {
	tests := []struct {
		name      string
		date      Date
		wantStart string
		wantEnd   string
	}{
		{name: "mid month", date: NewDate(2024, 3, 15), wantStart: "2024-03-01", wantEnd: "2024-03-31"},
		{name: "leap february", date: NewDate(2024, 2, 10), wantStart: "2024-02-01", wantEnd: "2024-02-29"},
		{name: "non-leap february", date: NewDate(2023, 2, 28), wantStart: "2023-02-01", wantEnd: "2023-02-28"},
		{name: "december", date: NewDate(2024, 12, 31), wantStart: "2024-12-01", wantEnd: "2024-12-31"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MonthStart(tt.date).String(); got != tt.wantStart {
				t.Errorf("MonthStart = %s, want %s", got, tt.wantStart)
			}
			if got := MonthEnd(tt.date).String(); got != tt.wantEnd {
				t.Errorf("MonthEnd = %s, want %s", got, tt.wantEnd)
			}
		})
	}
}

func TestIsWithin(t *testing.T) {
	start := NewDate(2024, 3, 1)
	end := NewDate(2024, 3, 31)

	tests := []struct {
		name string
		date Date
		want bool
	}{
		{name: "inside", date: NewDate(2024, 3, 15), want: true},
		{name: "start inclusive", date: start, want: true},
		{name: "end inclusive", date: end, want: true},
		{name: "before", date: NewDate(2024, 2, 29), want: false},
		{name: "after", date: NewDate(2024, 4, 1), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsWithin(tt.date, start, end); got != tt.want {
				t.Errorf("IsWithin(%s) = %v, want %v", tt.date, got, tt.want)
			}
		})
	}
}

func TestDistinctMonths(t *testing.T) {
	t.Run("empty set yields empty slice", func(t *testing.T) {
		if got := DistinctMonths(nil); len(got) != 0 {
			t.Errorf("DistinctMonths(nil) = %v, want empty", got)
		}
	})

	t.Run("single month yields one entry", func(t *testing.T) {
		txs := []Transaction{
			{Date: "2024-03-01", Amount: Money{Cents: 100}, Type: Expense},
			{Date: "2024-03-28", Amount: Money{Cents: 200}, Type: Expense},
		}
		got := DistinctMonths(txs)
		if len(got) != 1 || got[0].String() != "2024-03-01" {
			t.Errorf("DistinctMonths = %v, want [2024-03-01]", got)
		}
	})

	t.Run("ordered most recent first", func(t *testing.T) {
		txs := []Transaction{
			{Date: "2024-01-15", Type: Expense},
			{Date: "2024-03-02", Type: Expense},
			{Date: "2024-02-20", Type: Income},
			{Date: "2024-03-09", Type: Expense},
			{Date: "not-a-date", Type: Expense},
		}
		got := DistinctMonths(txs)
		want := []string{"2024-03-01", "2024-02-01", "2024-01-01"}
		if len(got) != len(want) {
			t.Fatalf("DistinctMonths returned %d months, want %d", len(got), len(want))
		}
		for i, w := range want {
			if got[i].String() != w {
				t.Errorf("months[%d] = %s, want %s", i, got[i], w)
			}
		}
	})
}

func TestMonthRange(t *testing.T) {
	tests := []struct {
		name  string
		start Date
		end   Date
		want  []string
	}{
		{
			name:  "spans year boundary",
			start: NewDate(2023, 11, 20),
			end:   NewDate(2024, 1, 5),
			want:  []string{"2023-11-01", "2023-12-01", "2024-01-01"},
		},
		{
			name:  "same month",
			start: NewDate(2024, 3, 1),
			end:   NewDate(2024, 3, 31),
			want:  []string{"2024-03-01"},
		},
		{
			name:  "end before start",
			start: NewDate(2024, 4, 1),
			end:   NewDate(2024, 3, 1),
			want:  nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MonthRange(tt.start, tt.end)
			if len(got) != len(tt.want) {
				t.Fatalf("MonthRange returned %d months, want %d", len(got), len(tt.want))
			}
			for i, w := range tt.want {
				if got[i].String() != w {
					t.Errorf("range[%d] = %s, want %s", i, got[i], w)
				}
			}
		})
	}
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		name string
		d    Date
		n    int
		want string
	}{
		{name: "forward within year", d: NewDate(2024, 3, 1), n: 2, want: "2024-05-01"},
		{name: "forward across year boundary", d: NewDate(2024, 12, 1), n: 1, want: "2025-01-01"},
		{name: "backward across year boundary", d: NewDate(2024, 1, 15), n: -2, want: "2023-11-15"},
		{name: "zero is identity", d: NewDate(2024, 6, 30), n: 0, want: "2024-06-30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.d.AddMonths(tt.n).String(); got != tt.want {
				t.Errorf("AddMonths(%d) = %s, want %s", tt.n, got, tt.want)
			}
		})
	}
}
