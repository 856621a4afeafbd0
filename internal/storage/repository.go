package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"finboard/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	repo := &SQLiteRepository{
		db:      db,
		queries: New(db),
	}

	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// AddTransaction inserts a transaction and reports whether it was new.
// A transaction whose (date, merchant, amount) signature already exists
// is silently skipped and reported as not inserted.
func (r *SQLiteRepository) AddTransaction(ctx context.Context, t core.Transaction) (bool, error) {
	inserted, err := r.queries.CreateTransaction(ctx, CreateTransactionParams{
		ID:                  t.ID,
		Date:                t.Date,
		Merchant:            t.Merchant,
		AmountCents:         t.Amount.Cents,
		Category:            t.Category,
		Type:                string(t.Type),
		IsRecurring:         t.IsRecurring,
		Description:         t.Description,
		OriginalDescription: t.OriginalDescription,
	})
	if err != nil {
		return false, fmt.Errorf("create transaction: %w", err)
	}

	if inserted {
		slog.InfoContext(ctx, "Transaction saved to SQLite",
			"id", t.ID,
			"merchant", t.Merchant,
			"category", t.Category,
			"amount_cents", t.Amount.Cents,
			"date", t.Date)
	}

	return inserted, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row, err := r.queries.GetTransaction(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrTransactionNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction by id: %w", err)
	}
	return toCoreTransaction(row), nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return toCoreTransactions(rows), nil
}

// ListTransactionsByMonth returns transactions dated within the given
// calendar month. Rows with malformed dates fall outside any month
// range and are never returned here; ListTransactions still sees them.
func (r *SQLiteRepository) ListTransactionsByMonth(ctx context.Context, year, month int) ([]core.Transaction, error) {
	start := core.MonthStart(core.NewDate(year, month, 1))
	end := core.MonthEnd(start)

	rows, err := r.queries.ListTransactionsByMonth(ctx, ListTransactionsByMonthParams{
		StartDate: start.String(),
		EndDate:   end.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("list transactions by month: %w", err)
	}
	return toCoreTransactions(rows), nil
}

func (r *SQLiteRepository) UpdateTransactionCategory(ctx context.Context, id, category string) error {
	affected, err := r.queries.UpdateTransactionCategory(ctx, UpdateTransactionCategoryParams{
		Category: category,
		ID:       id,
	})
	if err != nil {
		return fmt.Errorf("update transaction category: %w", err)
	}
	if affected == 0 {
		return core.ErrTransactionNotFound
	}

	slog.InfoContext(ctx, "Transaction category updated", "id", id, "category", category)
	return nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	affected, err := r.queries.DeleteTransaction(ctx, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if affected == 0 {
		return core.ErrTransactionNotFound
	}
	return nil
}

// ClearTransactions removes every transaction and returns how many
// were deleted.
func (r *SQLiteRepository) ClearTransactions(ctx context.Context) (int64, error) {
	deleted, err := r.queries.ClearTransactions(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear transactions: %w", err)
	}

	slog.InfoContext(ctx, "All transactions cleared", "deleted", deleted)
	return deleted, nil
}

// GetPendingExportTransactions returns transactions not yet synced to
// the configured spreadsheet.
func (r *SQLiteRepository) GetPendingExportTransactions(ctx context.Context, limit int) ([]core.Transaction, error) {
	rows, err := r.queries.GetPendingExportTransactions(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("get pending export transactions: %w", err)
	}
	return toCoreTransactions(rows), nil
}

// MarkExported marks a transaction as successfully exported
func (r *SQLiteRepository) MarkExported(ctx context.Context, id string) error {
	if err := r.queries.MarkTransactionExported(ctx, id); err != nil {
		return fmt.Errorf("mark transaction exported: %w", err)
	}

	slog.InfoContext(ctx, "Transaction marked as exported", "id", id)
	return nil
}

// MarkExportError marks a transaction as having export errors
func (r *SQLiteRepository) MarkExportError(ctx context.Context, id string) error {
	if err := r.queries.MarkTransactionExportError(ctx, id); err != nil {
		return fmt.Errorf("mark transaction export error: %w", err)
	}

	slog.WarnContext(ctx, "Transaction marked with export error", "id", id)
	return nil
}

func (r *SQLiteRepository) CreateGoal(ctx context.Context, g core.Goal) error {
	err := r.queries.CreateGoal(ctx, CreateGoalParams{
		ID:           g.ID,
		Name:         g.Name,
		TargetCents:  g.TargetAmount.Cents,
		CurrentCents: g.CurrentAmount.Cents,
		Deadline:     g.Deadline.String(),
		Icon:         g.Icon,
	})
	if err != nil {
		return fmt.Errorf("create goal: %w", err)
	}

	slog.InfoContext(ctx, "Goal saved to SQLite", "id", g.ID, "name", g.Name)
	return nil
}

func (r *SQLiteRepository) GetGoal(ctx context.Context, id string) (core.Goal, error) {
	row, err := r.queries.GetGoal(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Goal{}, core.ErrGoalNotFound
	}
	if err != nil {
		return core.Goal{}, fmt.Errorf("get goal by id: %w", err)
	}
	return toCoreGoal(row)
}

func (r *SQLiteRepository) ListGoals(ctx context.Context) ([]core.Goal, error) {
	rows, err := r.queries.ListGoals(ctx)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}

	goals := make([]core.Goal, 0, len(rows))
	for _, row := range rows {
		g, err := toCoreGoal(row)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, nil
}

func (r *SQLiteRepository) UpdateGoal(ctx context.Context, g core.Goal) error {
	affected, err := r.queries.UpdateGoal(ctx, UpdateGoalParams{
		Name:         g.Name,
		TargetCents:  g.TargetAmount.Cents,
		CurrentCents: g.CurrentAmount.Cents,
		Deadline:     g.Deadline.String(),
		Icon:         g.Icon,
		ID:           g.ID,
	})
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	if affected == 0 {
		return core.ErrGoalNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteGoal(ctx context.Context, id string) error {
	affected, err := r.queries.DeleteGoal(ctx, id)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	if affected == 0 {
		return core.ErrGoalNotFound
	}
	return nil
}

func (r *SQLiteRepository) UpsertBudget(ctx context.Context, b core.Budget) error {
	err := r.queries.UpsertBudget(ctx, UpsertBudgetParams{
		Category:   b.Category,
		LimitCents: b.Limit.Cents,
		SpentCents: b.Spent.Cents,
	})
	if err != nil {
		return fmt.Errorf("upsert budget: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	rows, err := r.queries.ListBudgets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}

	budgets := make([]core.Budget, 0, len(rows))
	for _, row := range rows {
		budgets = append(budgets, core.Budget{
			Category: row.Category,
			Limit:    core.Money{Cents: row.LimitCents},
			Spent:    core.Money{Cents: row.SpentCents},
		})
	}
	return budgets, nil
}

// SaveBudgets upserts every budget in the slice. Used after a limit
// reallocation to persist both sides of the move.
func (r *SQLiteRepository) SaveBudgets(ctx context.Context, budgets []core.Budget) error {
	for _, b := range budgets {
		if err := r.UpsertBudget(ctx, b); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, category string) error {
	affected, err := r.queries.DeleteBudget(ctx, category)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	if affected == 0 {
		return core.ErrBudgetNotFound
	}
	return nil
}

// GetExpenseCategorySums returns per-category expense totals for a
// calendar month, computed in SQL.
func (r *SQLiteRepository) GetExpenseCategorySums(ctx context.Context, year, month int) (map[string]core.Money, error) {
	start := core.MonthStart(core.NewDate(year, month, 1))
	end := core.MonthEnd(start)

	sums, err := r.queries.GetExpenseCategorySums(ctx, GetExpenseCategorySumsParams{
		StartDate: start.String(),
		EndDate:   end.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("get expense category sums: %w", err)
	}

	byCategory := make(map[string]core.Money, len(sums))
	for _, cs := range sums {
		byCategory[cs.Category] = core.Money{Cents: cs.TotalCents}
	}
	return byCategory, nil
}

func toCoreTransaction(row Transaction) core.Transaction {
	return core.Transaction{
		ID:                  row.ID,
		Date:                row.Date,
		Merchant:            row.Merchant,
		Amount:              core.Money{Cents: row.AmountCents},
		Category:            row.Category,
		Type:                core.TransactionType(row.Type),
		IsRecurring:         row.IsRecurring,
		Description:         row.Description,
		OriginalDescription: row.OriginalDescription,
	}
}

func toCoreTransactions(rows []Transaction) []core.Transaction {
	txs := make([]core.Transaction, len(rows))
	for i, row := range rows {
		txs[i] = toCoreTransaction(row)
	}
	return txs
}

func toCoreGoal(row Goal) (core.Goal, error) {
	deadline, err := core.ParseDate(row.Deadline)
	if err != nil {
		return core.Goal{}, fmt.Errorf("parse goal deadline %q: %w", row.Deadline, err)
	}
	return core.Goal{
		ID:            row.ID,
		Name:          row.Name,
		TargetAmount:  core.Money{Cents: row.TargetCents},
		CurrentAmount: core.Money{Cents: row.CurrentCents},
		Deadline:      deadline,
		Icon:          row.Icon,
	}, nil
}
