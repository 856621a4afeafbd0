package storage

import (
	"context"
	"database/sql"
	"time"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

// Transaction is the database row for a classified transaction.
type Transaction struct {
	ID                  string
	Date                string
	Merchant            string
	AmountCents         int64
	Category            string
	Type                string
	IsRecurring         bool
	Description         string
	OriginalDescription string
	ExportStatus        string
	CreatedAt           time.Time
}

// Goal is the database row for a savings goal.
type Goal struct {
	ID           string
	Name         string
	TargetCents  int64
	CurrentCents int64
	Deadline     string
	Icon         string
	CreatedAt    time.Time
}

// Budget is the database row for a per-category budget.
type Budget struct {
	Category   string
	LimitCents int64
	SpentCents int64
	UpdatedAt  time.Time
}

// CategorySum is a per-category expense total.
type CategorySum struct {
	Category   string
	TotalCents int64
}

const createTransaction = `
INSERT OR IGNORE INTO transactions (
    id, date, merchant, amount_cents, category, type, is_recurring, description, original_description
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type CreateTransactionParams struct {
	ID                  string
	Date                string
	Merchant            string
	AmountCents         int64
	Category            string
	Type                string
	IsRecurring         bool
	Description         string
	OriginalDescription string
}

// CreateTransaction inserts a transaction and reports whether a row was
// actually written. Duplicate (date, merchant, amount) signatures are
// ignored and return false.
func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (bool, error) {
	result, err := q.db.ExecContext(ctx, createTransaction,
		arg.ID,
		arg.Date,
		arg.Merchant,
		arg.AmountCents,
		arg.Category,
		arg.Type,
		arg.IsRecurring,
		arg.Description,
		arg.OriginalDescription,
	)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

const getTransaction = `
SELECT id, date, merchant, amount_cents, category, type, is_recurring, description, original_description, export_status, created_at
FROM transactions WHERE id = ?
`

func (q *Queries) GetTransaction(ctx context.Context, id string) (Transaction, error) {
	row := q.db.QueryRowContext(ctx, getTransaction, id)
	var t Transaction
	err := row.Scan(
		&t.ID,
		&t.Date,
		&t.Merchant,
		&t.AmountCents,
		&t.Category,
		&t.Type,
		&t.IsRecurring,
		&t.Description,
		&t.OriginalDescription,
		&t.ExportStatus,
		&t.CreatedAt,
	)
	return t, err
}

const listTransactions = `
SELECT id, date, merchant, amount_cents, category, type, is_recurring, description, original_description, export_status, created_at
FROM transactions ORDER BY date DESC, created_at DESC
`

func (q *Queries) ListTransactions(ctx context.Context) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTransactions(rows)
}

const listTransactionsByMonth = `
SELECT id, date, merchant, amount_cents, category, type, is_recurring, description, original_description, export_status, created_at
FROM transactions WHERE date >= ? AND date <= ? ORDER BY date DESC, created_at DESC
`

type ListTransactionsByMonthParams struct {
	StartDate string
	EndDate   string
}

func (q *Queries) ListTransactionsByMonth(ctx context.Context, arg ListTransactionsByMonthParams) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactionsByMonth, arg.StartDate, arg.EndDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTransactions(rows)
}

const updateTransactionCategory = `
UPDATE transactions SET category = ? WHERE id = ?
`

type UpdateTransactionCategoryParams struct {
	Category string
	ID       string
}

func (q *Queries) UpdateTransactionCategory(ctx context.Context, arg UpdateTransactionCategoryParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateTransactionCategory, arg.Category, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteTransaction = `
DELETE FROM transactions WHERE id = ?
`

func (q *Queries) DeleteTransaction(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteTransaction, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const clearTransactions = `
DELETE FROM transactions
`

func (q *Queries) ClearTransactions(ctx context.Context) (int64, error) {
	result, err := q.db.ExecContext(ctx, clearTransactions)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getPendingExportTransactions = `
SELECT id, date, merchant, amount_cents, category, type, is_recurring, description, original_description, export_status, created_at
FROM transactions WHERE export_status = 'pending' ORDER BY created_at ASC LIMIT ?
`

func (q *Queries) GetPendingExportTransactions(ctx context.Context, limit int64) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, getPendingExportTransactions, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTransactions(rows)
}

const markTransactionExported = `
UPDATE transactions SET export_status = 'exported' WHERE id = ?
`

func (q *Queries) MarkTransactionExported(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, markTransactionExported, id)
	return err
}

const markTransactionExportError = `
UPDATE transactions SET export_status = 'error' WHERE id = ?
`

func (q *Queries) MarkTransactionExportError(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, markTransactionExportError, id)
	return err
}

const createGoal = `
INSERT INTO goals (id, name, target_cents, current_cents, deadline, icon)
VALUES (?, ?, ?, ?, ?, ?)
`

type CreateGoalParams struct {
	ID           string
	Name         string
	TargetCents  int64
	CurrentCents int64
	Deadline     string
	Icon         string
}

func (q *Queries) CreateGoal(ctx context.Context, arg CreateGoalParams) error {
	_, err := q.db.ExecContext(ctx, createGoal,
		arg.ID,
		arg.Name,
		arg.TargetCents,
		arg.CurrentCents,
		arg.Deadline,
		arg.Icon,
	)
	return err
}

const getGoal = `
SELECT id, name, target_cents, current_cents, deadline, icon, created_at
FROM goals WHERE id = ?
`

func (q *Queries) GetGoal(ctx context.Context, id string) (Goal, error) {
	row := q.db.QueryRowContext(ctx, getGoal, id)
	var g Goal
	err := row.Scan(&g.ID, &g.Name, &g.TargetCents, &g.CurrentCents, &g.Deadline, &g.Icon, &g.CreatedAt)
	return g, err
}

const listGoals = `
SELECT id, name, target_cents, current_cents, deadline, icon, created_at
FROM goals ORDER BY deadline ASC, name ASC
`

func (q *Queries) ListGoals(ctx context.Context) ([]Goal, error) {
	rows, err := q.db.QueryContext(ctx, listGoals)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []Goal
	for rows.Next() {
		var g Goal
		if err := rows.Scan(&g.ID, &g.Name, &g.TargetCents, &g.CurrentCents, &g.Deadline, &g.Icon, &g.CreatedAt); err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

const updateGoal = `
UPDATE goals SET name = ?, target_cents = ?, current_cents = ?, deadline = ?, icon = ? WHERE id = ?
`

type UpdateGoalParams struct {
	Name         string
	TargetCents  int64
	CurrentCents int64
	Deadline     string
	Icon         string
	ID           string
}

func (q *Queries) UpdateGoal(ctx context.Context, arg UpdateGoalParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateGoal,
		arg.Name,
		arg.TargetCents,
		arg.CurrentCents,
		arg.Deadline,
		arg.Icon,
		arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteGoal = `
DELETE FROM goals WHERE id = ?
`

func (q *Queries) DeleteGoal(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteGoal, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const upsertBudget = `
INSERT INTO budgets (category, limit_cents, spent_cents, updated_at)
VALUES (?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT (category) DO UPDATE SET
    limit_cents = excluded.limit_cents,
    spent_cents = excluded.spent_cents,
    updated_at = CURRENT_TIMESTAMP
`

type UpsertBudgetParams struct {
	Category   string
	LimitCents int64
	SpentCents int64
}

func (q *Queries) UpsertBudget(ctx context.Context, arg UpsertBudgetParams) error {
	_, err := q.db.ExecContext(ctx, upsertBudget, arg.Category, arg.LimitCents, arg.SpentCents)
	return err
}

const listBudgets = `
SELECT category, limit_cents, spent_cents, updated_at
FROM budgets ORDER BY category ASC
`

func (q *Queries) ListBudgets(ctx context.Context) ([]Budget, error) {
	rows, err := q.db.QueryContext(ctx, listBudgets)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var budgets []Budget
	for rows.Next() {
		var b Budget
		if err := rows.Scan(&b.Category, &b.LimitCents, &b.SpentCents, &b.UpdatedAt); err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

const deleteBudget = `
DELETE FROM budgets WHERE category = ?
`

func (q *Queries) DeleteBudget(ctx context.Context, category string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteBudget, category)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getExpenseCategorySums = `
SELECT category, SUM(amount_cents) AS total_cents
FROM transactions
WHERE type = 'expense' AND date >= ? AND date <= ?
GROUP BY category ORDER BY category ASC
`

type GetExpenseCategorySumsParams struct {
	StartDate string
	EndDate   string
}

func (q *Queries) GetExpenseCategorySums(ctx context.Context, arg GetExpenseCategorySumsParams) ([]CategorySum, error) {
	rows, err := q.db.QueryContext(ctx, getExpenseCategorySums, arg.StartDate, arg.EndDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sums []CategorySum
	for rows.Next() {
		var cs CategorySum
		if err := rows.Scan(&cs.Category, &cs.TotalCents); err != nil {
			return nil, err
		}
		sums = append(sums, cs)
	}
	return sums, rows.Err()
}

func scanTransactions(rows *sql.Rows) ([]Transaction, error) {
	var txs []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(
			&t.ID,
			&t.Date,
			&t.Merchant,
			&t.AmountCents,
			&t.Category,
			&t.Type,
			&t.IsRecurring,
			&t.Description,
			&t.OriginalDescription,
			&t.ExportStatus,
			&t.CreatedAt,
		); err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}
