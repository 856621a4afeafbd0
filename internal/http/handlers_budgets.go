package http

import (
	"errors"
	"log/slog"
	"net/http"

	"finboard/internal/core"
)

type budgetStatusDTO struct {
	Category    string  `json:"category"`
	Limit       string  `json:"limit"`
	Spent       string  `json:"spent"`
	Utilization float64 `json:"utilization"`
	OverLimit   bool    `json:"over_limit"`
}

// handleBudgetOverview returns per-budget status for a month, with
// spend recomputed from the transaction set.
func (s *Server) handleBudgetOverview(w http.ResponseWriter, r *http.Request) {
	year, month := parseYearMonth(r)

	statuses, err := s.ledger.BudgetOverview(r.Context(), year, month)
	if err != nil {
		slog.ErrorContext(r.Context(), "Budget overview failed", "error", err)
		writeError(w, http.StatusInternalServerError, "budget overview failed")
		return
	}

	dtos := make([]budgetStatusDTO, len(statuses))
	for i, st := range statuses {
		dtos[i] = budgetStatusDTO{
			Category:    st.Category,
			Limit:       st.Limit.String(),
			Spent:       st.Spent.String(),
			Utilization: st.Utilization,
			OverLimit:   st.OverLimit,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"year":    year,
		"month":   month,
		"budgets": dtos,
	})
}

type setBudgetRequest struct {
	Category string `json:"category"`
	Limit    string `json:"limit"`
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var req setBudgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cents, err := core.ParseDecimalToCents(req.Limit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid limit: "+req.Limit)
		return
	}

	if err := s.ledger.SetBudget(r.Context(), sanitizeInput(req.Category), core.Money{Cents: cents}); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type moveBudgetRequest struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

// handleMoveBudget reallocates limit between two budgets. The total
// limit across all budgets is conserved.
func (s *Server) handleMoveBudget(w http.ResponseWriter, r *http.Request) {
	var req moveBudgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount: "+req.Amount)
		return
	}

	err = s.ledger.MoveBudget(r.Context(), sanitizeInput(req.From), sanitizeInput(req.To), core.Money{Cents: cents})
	switch {
	case errors.Is(err, core.ErrBudgetNotFound):
		writeError(w, http.StatusNotFound, "budget not found")
		return
	case errors.Is(err, core.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, "amount must be positive")
		return
	case errors.Is(err, core.ErrInsufficientLimit):
		writeError(w, http.StatusConflict, "source budget has insufficient limit")
		return
	case err != nil:
		slog.ErrorContext(r.Context(), "Move budget failed", "error", err)
		writeError(w, http.StatusInternalServerError, "move budget failed")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	err := s.ledger.DeleteBudget(r.Context(), r.PathValue("category"))
	switch {
	case errors.Is(err, core.ErrBudgetNotFound):
		writeError(w, http.StatusNotFound, "budget not found")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "delete budget failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleBudgetableCategories lists categories that carried expenses in
// the month, the candidates for a new budget.
func (s *Server) handleBudgetableCategories(w http.ResponseWriter, r *http.Request) {
	year, month := parseYearMonth(r)

	categories, err := s.ledger.BudgetableCategories(r.Context(), year, month)
	if err != nil {
		slog.ErrorContext(r.Context(), "Budgetable categories failed", "error", err)
		writeError(w, http.StatusInternalServerError, "budgetable categories failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}
