package http

import (
	"context"

	"finboard/internal/amqp"
	"finboard/internal/core"
	"finboard/internal/services"
)

// Ledger is the application port the HTTP surface drives. It is
// satisfied by services.LedgerService.
type Ledger interface {
	IngestLines(ctx context.Context, lines []amqp.StatementLine, today core.Date) (services.IngestResult, error)
	AddTransactions(ctx context.Context, txs []core.Transaction) (services.IngestResult, error)
	Transactions(ctx context.Context) ([]core.Transaction, error)
	UpdateCategory(ctx context.Context, id, category string) error
	RemoveTransaction(ctx context.Context, id string) error
	ClearTransactions(ctx context.Context) (int64, error)

	MonthSummary(ctx context.Context, year, month int) (core.AggregationResult, error)
	Months(ctx context.Context) ([]core.Date, error)
	Trends(ctx context.Context, months int, today core.Date) ([]core.TrendPoint, error)

	CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error)
	Goals(ctx context.Context) ([]core.Goal, error)
	Goal(ctx context.Context, id string) (core.Goal, error)
	UpdateGoal(ctx context.Context, g core.Goal) error
	DeleteGoal(ctx context.Context, id string) error
	ProjectGoal(ctx context.Context, id string, extra core.Money, today core.Date) (services.GoalProjection, error)

	SetBudget(ctx context.Context, category string, limit core.Money) error
	MoveBudget(ctx context.Context, fromCategory, toCategory string, amount core.Money) error
	DeleteBudget(ctx context.Context, category string) error
	BudgetOverview(ctx context.Context, year, month int) ([]core.BudgetStatus, error)
	BudgetableCategories(ctx context.Context, year, month int) ([]string, error)
}
