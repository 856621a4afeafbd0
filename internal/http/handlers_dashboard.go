package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"finboard/internal/core"
)

type summaryResponse struct {
	Year        int              `json:"year"`
	Month       int              `json:"month"`
	Income      string           `json:"income"`
	Expenses    string           `json:"expenses"`
	Net         string           `json:"net"`
	ByCategory  []categoryAmount `json:"by_category"`
	TotalSaved  string           `json:"total_saved"`
	BudgetLimit string           `json:"budget_limit"`
	BudgetSpent string           `json:"budget_spent"`
	Skipped     int              `json:"skipped_dates,omitempty"`
}

type categoryAmount struct {
	Category string `json:"category"`
	Amount   string `json:"amount"`
}

// handleSummary returns income, expense and per-category totals for a
// calendar month. Results are cached per (year, month).
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	year, month := parseYearMonth(r)
	key := fmt.Sprintf("%04d-%02d", year, month)

	result, ok := s.summaryCache.Get(key)
	if !ok {
		var err error
		result, err = s.ledger.MonthSummary(r.Context(), year, month)
		if err != nil {
			slog.ErrorContext(r.Context(), "Month summary failed", "error", err)
			writeError(w, http.StatusInternalServerError, "month summary failed")
			return
		}
		s.summaryCache.Set(key, result)
	}

	byCategory := make([]categoryAmount, 0, len(result.ByCategory))
	for category, amount := range result.ByCategory {
		byCategory = append(byCategory, categoryAmount{Category: category, Amount: amount.String()})
	}
	sort.Slice(byCategory, func(i, j int) bool { return byCategory[i].Category < byCategory[j].Category })

	// Goal and budget totals change independently of the month's
	// transactions, so they stay outside the cache.
	var totalSaved core.Money
	if goals, err := s.ledger.Goals(r.Context()); err == nil {
		for _, g := range goals {
			totalSaved = totalSaved.Add(g.CurrentAmount)
		}
	} else {
		slog.WarnContext(r.Context(), "Goal totals unavailable for summary", "error", err)
	}

	var budgetLimit, budgetSpent core.Money
	if statuses, err := s.ledger.BudgetOverview(r.Context(), year, month); err == nil {
		for _, st := range statuses {
			budgetLimit = budgetLimit.Add(st.Limit)
			budgetSpent = budgetSpent.Add(st.Spent)
		}
	} else {
		slog.WarnContext(r.Context(), "Budget totals unavailable for summary", "error", err)
	}

	writeJSON(w, http.StatusOK, summaryResponse{
		Year:        year,
		Month:       month,
		Income:      result.Income.String(),
		Expenses:    result.Expenses.String(),
		Net:         result.Net().String(),
		ByCategory:  byCategory,
		TotalSaved:  totalSaved.String(),
		BudgetLimit: budgetLimit.String(),
		BudgetSpent: budgetSpent.String(),
		Skipped:     result.Skipped,
	})
}

type trendPointDTO struct {
	Month    string `json:"month"`
	Label    string `json:"label"`
	Income   string `json:"income"`
	Expenses string `json:"expenses"`
}

type trendsResponse struct {
	Points                []trendPointDTO `json:"points"`
	IncomeChangePercent   *float64        `json:"income_change_percent,omitempty"`
	ExpensesChangePercent *float64        `json:"expenses_change_percent,omitempty"`
}

// maxTrendMonths bounds the trailing window a request can ask for; a
// ten-year series is already far beyond what any chart renders.
const maxTrendMonths = 120

// handleTrends returns month-by-month totals. ?months=N selects a
// trailing window ending at the current month, clamped to
// maxTrendMonths; months=0 or "all" covers the whole ledger. The last
// two points also yield month-over-month percent changes.
func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	months := 6
	if v := strings.TrimSpace(r.URL.Query().Get("months")); v != "" {
		if v == "all" {
			months = 0
		} else if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			months = min(n, maxTrendMonths)
		}
	}

	key := fmt.Sprintf("trends-%d-%s", months, today().String())

	points, ok := s.trendsCache.Get(key)
	if !ok {
		var err error
		points, err = s.ledger.Trends(r.Context(), months, today())
		if err != nil {
			slog.ErrorContext(r.Context(), "Trends failed", "error", err)
			writeError(w, http.StatusInternalServerError, "trends failed")
			return
		}
		s.trendsCache.Set(key, points)
	}

	resp := trendsResponse{Points: make([]trendPointDTO, len(points))}
	for i, p := range points {
		resp.Points[i] = trendPointDTO{
			Month:    p.Month.String(),
			Label:    p.Label,
			Income:   p.Income.String(),
			Expenses: p.Expenses.String(),
		}
	}

	if len(points) >= 2 {
		last, prev := points[len(points)-1], points[len(points)-2]
		incomeChange := core.PercentChange(last.Income, prev.Income)
		expensesChange := core.PercentChange(last.Expenses, prev.Expenses)
		resp.IncomeChangePercent = &incomeChange
		resp.ExpensesChangePercent = &expensesChange
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleMonths lists the distinct months present in the ledger, most
// recent first, for month pickers.
func (s *Server) handleMonths(w http.ResponseWriter, r *http.Request) {
	months, err := s.ledger.Months(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Months failed", "error", err)
		writeError(w, http.StatusInternalServerError, "months failed")
		return
	}

	out := make([]string, len(months))
	for i, m := range months {
		out[i] = m.String()
	}
	writeJSON(w, http.StatusOK, map[string]any{"months": out})
}
