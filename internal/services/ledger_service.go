package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	"finboard/internal/amqp"
	"finboard/internal/classify"
	"finboard/internal/core"
)

// Store is the persistence port the ledger service drives.
type Store interface {
	AddTransaction(ctx context.Context, t core.Transaction) (bool, error)
	GetTransaction(ctx context.Context, id string) (core.Transaction, error)
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
	ListTransactionsByMonth(ctx context.Context, year, month int) ([]core.Transaction, error)
	UpdateTransactionCategory(ctx context.Context, id, category string) error
	DeleteTransaction(ctx context.Context, id string) error
	ClearTransactions(ctx context.Context) (int64, error)
	GetExpenseCategorySums(ctx context.Context, year, month int) (map[string]core.Money, error)

	CreateGoal(ctx context.Context, g core.Goal) error
	GetGoal(ctx context.Context, id string) (core.Goal, error)
	ListGoals(ctx context.Context) ([]core.Goal, error)
	UpdateGoal(ctx context.Context, g core.Goal) error
	DeleteGoal(ctx context.Context, id string) error

	UpsertBudget(ctx context.Context, b core.Budget) error
	ListBudgets(ctx context.Context) ([]core.Budget, error)
	SaveBudgets(ctx context.Context, budgets []core.Budget) error
	DeleteBudget(ctx context.Context, category string) error

	Close() error
}

// Publisher is the async export port. A nil Publisher disables export.
type Publisher interface {
	PublishTransactionSync(ctx context.Context, id string) error
}

// IngestResult reports what happened to a batch of statement lines.
type IngestResult struct {
	Added   int
	Skipped int
}

// LedgerService orchestrates classification, persistence and async
// export of transactions, plus goal and budget operations.
type LedgerService struct {
	store      Store
	publisher  Publisher
	classifier *classify.Classifier
}

func NewLedgerService(store Store, publisher Publisher) *LedgerService {
	return &LedgerService{
		store:      store,
		publisher:  publisher,
		classifier: classify.New(),
	}
}

// IngestLines classifies raw statement lines and stores the resulting
// transactions. Lines with unusable amounts are skipped; duplicate
// signatures are skipped silently. today anchors lines that carry no
// date of their own.
func (s *LedgerService) IngestLines(ctx context.Context, lines []amqp.StatementLine, today core.Date) (IngestResult, error) {
	var result IngestResult

	for _, line := range lines {
		t, ok := s.buildTransaction(ctx, line, today)
		if !ok {
			result.Skipped++
			continue
		}

		inserted, err := s.store.AddTransaction(ctx, t)
		if err != nil {
			return result, fmt.Errorf("store transaction: %w", err)
		}
		if !inserted {
			result.Skipped++
			continue
		}
		result.Added++

		s.publishSync(ctx, t.ID)
	}

	slog.InfoContext(ctx, "Statement lines ingested",
		"lines", len(lines),
		"added", result.Added,
		"skipped", result.Skipped)

	return result, nil
}

func (s *LedgerService) buildTransaction(ctx context.Context, line amqp.StatementLine, today core.Date) (core.Transaction, bool) {
	text := strings.TrimSpace(line.Text)
	if text == "" {
		slog.WarnContext(ctx, "Skipping empty statement line")
		return core.Transaction{}, false
	}

	// Bank exports often sign their amounts. The sign carries direction,
	// never magnitude: stored amounts are always non-negative.
	amount := strings.TrimSpace(line.Amount)
	negative := strings.HasPrefix(amount, "-")
	amount = strings.TrimPrefix(amount, "-")

	cents, err := core.ParseDecimalToCents(amount)
	if err != nil {
		slog.WarnContext(ctx, "Skipping statement line with unusable amount",
			"text", text, "amount", line.Amount, "error", err)
		return core.Transaction{}, false
	}

	res := s.classifier.Classify(text)

	txType := core.TransactionType(strings.ToLower(strings.TrimSpace(line.Type)))
	if !txType.Valid() {
		// No explicit direction on the line; fall back to the sign,
		// then the category.
		txType = core.Expense
		if !negative && res.Category == classify.CategoryIncome {
			txType = core.Income
		}
	}

	// Malformed dates are stored as-is; aggregation skips them later.
	date := strings.TrimSpace(line.Date)
	if date == "" {
		date = today.String()
	}

	return core.Transaction{
		ID:                  uuid.NewString(),
		Date:                date,
		Merchant:            res.Merchant,
		Amount:              core.Money{Cents: cents},
		Category:            res.Category,
		Type:                txType,
		IsRecurring:         res.IsRecurring,
		Description:         text,
		OriginalDescription: line.Text,
	}, true
}

// AddTransactions stores pre-classified transactions, assigning IDs
// where missing. Invalid transactions fail the whole batch.
func (s *LedgerService) AddTransactions(ctx context.Context, txs []core.Transaction) (IngestResult, error) {
	var result IngestResult

	for _, t := range txs {
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		if t.Category == "" {
			t.Category = core.CategoryUncategorized
		}
		if err := t.Validate(); err != nil {
			return result, fmt.Errorf("validate transaction %q: %w", t.Merchant, err)
		}

		inserted, err := s.store.AddTransaction(ctx, t)
		if err != nil {
			return result, fmt.Errorf("store transaction: %w", err)
		}
		if !inserted {
			result.Skipped++
			continue
		}
		result.Added++

		s.publishSync(ctx, t.ID)
	}

	return result, nil
}

func (s *LedgerService) Transactions(ctx context.Context) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx)
}

// UpdateCategory reassigns a transaction to a category chosen by the
// user, overriding whatever the classifier picked.
func (s *LedgerService) UpdateCategory(ctx context.Context, id, category string) error {
	category = strings.TrimSpace(category)
	if category == "" {
		return core.ErrEmptyCategory
	}
	if err := s.store.UpdateTransactionCategory(ctx, id, category); err != nil {
		return err
	}

	s.publishSync(ctx, id)
	return nil
}

func (s *LedgerService) RemoveTransaction(ctx context.Context, id string) error {
	return s.store.DeleteTransaction(ctx, id)
}

// ClearTransactions wipes the ledger and returns how many rows were
// removed.
func (s *LedgerService) ClearTransactions(ctx context.Context) (int64, error) {
	return s.store.ClearTransactions(ctx)
}

// MonthSummary aggregates income, expenses and category totals for one
// calendar month.
func (s *LedgerService) MonthSummary(ctx context.Context, year, month int) (core.AggregationResult, error) {
	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return core.AggregationResult{}, err
	}
	return core.AggregateMonth(txs, core.NewDate(year, month, 1)), nil
}

// Months lists the distinct calendar months present in the ledger,
// most recent first.
func (s *LedgerService) Months(ctx context.Context) ([]core.Date, error) {
	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}
	return core.DistinctMonths(txs), nil
}

// Trends returns month-by-month income and expense totals. months > 0
// selects a trailing window anchored at today; months <= 0 covers the
// whole ledger.
func (s *LedgerService) Trends(ctx context.Context, months int, today core.Date) ([]core.TrendPoint, error) {
	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}
	if months > 0 {
		return core.TrailingMonths(txs, today, months), nil
	}
	return core.AllTime(txs), nil
}

func (s *LedgerService) CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	if err := s.store.CreateGoal(ctx, g); err != nil {
		return core.Goal{}, err
	}
	return g, nil
}

func (s *LedgerService) Goals(ctx context.Context) ([]core.Goal, error) {
	return s.store.ListGoals(ctx)
}

func (s *LedgerService) Goal(ctx context.Context, id string) (core.Goal, error) {
	return s.store.GetGoal(ctx, id)
}

func (s *LedgerService) UpdateGoal(ctx context.Context, g core.Goal) error {
	if err := g.Validate(); err != nil {
		return err
	}
	return s.store.UpdateGoal(ctx, g)
}

func (s *LedgerService) DeleteGoal(ctx context.Context, id string) error {
	return s.store.DeleteGoal(ctx, id)
}

// GoalProjection is the contribution math for one goal: the level
// monthly amount needed to hit the target, and optionally the scenario
// for an extra monthly contribution.
type GoalProjection struct {
	Goal            core.Goal
	MonthsRemaining int
	Required        core.Money
	Scenario        *core.GoalScenario
}

func (s *LedgerService) ProjectGoal(ctx context.Context, id string, extra core.Money, today core.Date) (GoalProjection, error) {
	g, err := s.store.GetGoal(ctx, id)
	if err != nil {
		return GoalProjection{}, err
	}

	proj := GoalProjection{
		Goal:            g,
		MonthsRemaining: core.MonthsRemaining(g.Deadline, today),
		Required:        core.RequiredMonthlyContribution(g, today),
	}
	if scenario, ok := core.SimulateExtra(g, extra, today); ok {
		proj.Scenario = &scenario
	}
	return proj, nil
}

// SetBudget creates or replaces the spending limit for a category.
func (s *LedgerService) SetBudget(ctx context.Context, category string, limit core.Money) error {
	b := core.Budget{Category: strings.TrimSpace(category), Limit: limit}
	if err := b.Validate(); err != nil {
		return err
	}
	return s.store.UpsertBudget(ctx, b)
}

func (s *LedgerService) Budgets(ctx context.Context) ([]core.Budget, error) {
	return s.store.ListBudgets(ctx)
}

// MoveBudget shifts limit from one category's budget to another,
// conserving the total, and persists both sides.
func (s *LedgerService) MoveBudget(ctx context.Context, fromCategory, toCategory string, amount core.Money) error {
	budgets, err := s.store.ListBudgets(ctx)
	if err != nil {
		return err
	}

	moved, err := core.MoveBudget(budgets, fromCategory, toCategory, amount)
	if err != nil {
		return err
	}

	if err := s.store.SaveBudgets(ctx, moved); err != nil {
		return fmt.Errorf("persist budget move: %w", err)
	}

	slog.InfoContext(ctx, "Budget limit moved",
		"from", fromCategory,
		"to", toCategory,
		"amount_cents", amount.Cents)

	return nil
}

func (s *LedgerService) DeleteBudget(ctx context.Context, category string) error {
	return s.store.DeleteBudget(ctx, category)
}

// BudgetOverview recomputes live spend for each budgeted category over
// one calendar month and returns per-budget status rows.
func (s *LedgerService) BudgetOverview(ctx context.Context, year, month int) ([]core.BudgetStatus, error) {
	budgets, err := s.store.ListBudgets(ctx)
	if err != nil {
		return nil, err
	}
	txs, err := s.store.ListTransactionsByMonth(ctx, year, month)
	if err != nil {
		return nil, err
	}

	start := core.MonthStart(core.NewDate(year, month, 1))
	return core.BudgetOverview(budgets, txs, start, core.MonthEnd(start)), nil
}

// BudgetableCategories lists categories carrying expenses in the given
// month, the candidates for new budgets. The expense sums come straight
// from storage so discovery never loads the full ledger.
func (s *LedgerService) BudgetableCategories(ctx context.Context, year, month int) ([]string, error) {
	sums, err := s.store.GetExpenseCategorySums(ctx, year, month)
	if err != nil {
		return nil, err
	}

	categories := make([]string, 0, len(sums))
	for category := range sums {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return categories, nil
}

func (s *LedgerService) publishSync(ctx context.Context, id string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTransactionSync(ctx, id); err != nil {
		// Export is best effort; the row is already saved locally.
		slog.ErrorContext(ctx, "Failed to publish transaction sync message",
			"id", id, "error", err)
	}
}

// Close closes the underlying store.
func (s *LedgerService) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}
