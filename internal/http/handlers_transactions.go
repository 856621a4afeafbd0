package http

import (
	"errors"
	"log/slog"
	"net/http"

	"finboard/internal/amqp"
	"finboard/internal/core"
)

type transactionDTO struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Merchant    string `json:"merchant"`
	Amount      string `json:"amount"`
	AmountCents int64  `json:"amount_cents"`
	Category    string `json:"category"`
	Type        string `json:"type"`
	IsRecurring bool   `json:"is_recurring"`
	Description string `json:"description,omitempty"`
}

func toTransactionDTO(t core.Transaction) transactionDTO {
	return transactionDTO{
		ID:          t.ID,
		Date:        t.Date,
		Merchant:    t.Merchant,
		Amount:      t.Amount.String(),
		AmountCents: t.Amount.Cents,
		Category:    t.Category,
		Type:        string(t.Type),
		IsRecurring: t.IsRecurring,
		Description: t.Description,
	}
}

type ingestRequest struct {
	Lines []amqp.StatementLine `json:"lines"`
}

// handleIngest accepts raw statement lines. With a broker configured
// the batch is queued for the worker; otherwise it is classified and
// stored in-line.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Lines) == 0 {
		writeError(w, http.StatusBadRequest, "no statement lines provided")
		return
	}

	for i := range req.Lines {
		req.Lines[i].Text = sanitizeInput(req.Lines[i].Text)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishStatementIngest(r.Context(), req.Lines); err != nil {
			slog.ErrorContext(r.Context(), "Failed to queue statement lines, falling back to synchronous ingest", "error", err)
		} else {
			writeJSON(w, http.StatusAccepted, map[string]int{"queued": len(req.Lines)})
			return
		}
	}

	result, err := s.ledger.IngestLines(r.Context(), req.Lines, today())
	if err != nil {
		slog.ErrorContext(r.Context(), "Ingest failed", "error", err)
		writeError(w, http.StatusInternalServerError, "ingest failed")
		return
	}

	s.invalidateDashboards()
	writeJSON(w, http.StatusOK, map[string]int{"added": result.Added, "skipped": result.Skipped})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.ledger.Transactions(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "List transactions failed", "error", err)
		writeError(w, http.StatusInternalServerError, "list transactions failed")
		return
	}

	dtos := make([]transactionDTO, len(txs))
	for i, t := range txs {
		dtos[i] = toTransactionDTO(t)
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": dtos})
}

type addTransactionsRequest struct {
	Transactions []struct {
		Date        string `json:"date"`
		Merchant    string `json:"merchant"`
		Amount      string `json:"amount"`
		Category    string `json:"category"`
		Type        string `json:"type"`
		IsRecurring bool   `json:"is_recurring"`
		Description string `json:"description"`
	} `json:"transactions"`
}

// handleAddTransactions stores pre-classified transactions, e.g. from
// a client that already ran extraction.
func (s *Server) handleAddTransactions(w http.ResponseWriter, r *http.Request) {
	var req addTransactionsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Transactions) == 0 {
		writeError(w, http.StatusBadRequest, "no transactions provided")
		return
	}

	txs := make([]core.Transaction, 0, len(req.Transactions))
	for _, in := range req.Transactions {
		cents, err := core.ParseDecimalToCents(in.Amount)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid amount: "+in.Amount)
			return
		}
		txs = append(txs, core.Transaction{
			Date:        in.Date,
			Merchant:    sanitizeInput(in.Merchant),
			Amount:      core.Money{Cents: cents},
			Category:    sanitizeInput(in.Category),
			Type:        core.TransactionType(in.Type),
			IsRecurring: in.IsRecurring,
			Description: sanitizeInput(in.Description),
		})
	}

	result, err := s.ledger.AddTransactions(r.Context(), txs)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.invalidateDashboards()
	writeJSON(w, http.StatusCreated, map[string]int{"added": result.Added, "skipped": result.Skipped})
}

type updateCategoryRequest struct {
	Category string `json:"category"`
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req updateCategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := s.ledger.UpdateCategory(r.Context(), id, sanitizeInput(req.Category))
	switch {
	case errors.Is(err, core.ErrEmptyCategory):
		writeError(w, http.StatusBadRequest, "category cannot be empty")
		return
	case errors.Is(err, core.ErrTransactionNotFound):
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	case err != nil:
		slog.ErrorContext(r.Context(), "Update category failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "update category failed")
		return
	}

	s.invalidateDashboards()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	err := s.ledger.RemoveTransaction(r.Context(), id)
	switch {
	case errors.Is(err, core.ErrTransactionNotFound):
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	case err != nil:
		slog.ErrorContext(r.Context(), "Delete transaction failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "delete transaction failed")
		return
	}

	s.invalidateDashboards()
	w.WriteHeader(http.StatusNoContent)
}

// handleClearTransactions wipes the whole ledger.
func (s *Server) handleClearTransactions(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.ledger.ClearTransactions(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Clear transactions failed", "error", err)
		writeError(w, http.StatusInternalServerError, "clear transactions failed")
		return
	}

	s.invalidateDashboards()
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}
