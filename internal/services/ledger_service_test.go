package services

import (
	"context"
	"errors"
	"testing"

	"finboard/internal/amqp"
	"finboard/internal/core"
)

type fakeStore struct {
	transactions []core.Transaction
	goals        map[string]core.Goal
	budgets      map[string]core.Budget
	closed       bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		goals:   make(map[string]core.Goal),
		budgets: make(map[string]core.Budget),
	}
}

func (f *fakeStore) AddTransaction(_ context.Context, t core.Transaction) (bool, error) {
	for _, existing := range f.transactions {
		if existing.Signature() == t.Signature() {
			return false, nil
		}
	}
	f.transactions = append(f.transactions, t)
	return true, nil
}

func (f *fakeStore) GetTransaction(_ context.Context, id string) (core.Transaction, error) {
	for _, t := range f.transactions {
		if t.ID == id {
			return t, nil
		}
	}
	return core.Transaction{}, core.ErrTransactionNotFound
}

func (f *fakeStore) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	return f.transactions, nil
}

func (f *fakeStore) ListTransactionsByMonth(_ context.Context, year, month int) ([]core.Transaction, error) {
	start := core.MonthStart(core.NewDate(year, month, 1))
	end := core.MonthEnd(start)
	var txs []core.Transaction
	for _, t := range f.transactions {
		d, err := core.ParseDate(t.Date)
		if err != nil {
			continue
		}
		if core.IsWithin(d, start, end) {
			txs = append(txs, t)
		}
	}
	return txs, nil
}

func (f *fakeStore) GetExpenseCategorySums(ctx context.Context, year, month int) (map[string]core.Money, error) {
	txs, _ := f.ListTransactionsByMonth(ctx, year, month)
	sums := make(map[string]core.Money)
	for _, t := range txs {
		if t.Type == core.Expense {
			sums[t.Category] = sums[t.Category].Add(t.Amount)
		}
	}
	return sums, nil
}

func (f *fakeStore) UpdateTransactionCategory(_ context.Context, id, category string) error {
	for i, t := range f.transactions {
		if t.ID == id {
			f.transactions[i].Category = category
			return nil
		}
	}
	return core.ErrTransactionNotFound
}

func (f *fakeStore) DeleteTransaction(_ context.Context, id string) error {
	for i, t := range f.transactions {
		if t.ID == id {
			f.transactions = append(f.transactions[:i], f.transactions[i+1:]...)
			return nil
		}
	}
	return core.ErrTransactionNotFound
}

func (f *fakeStore) ClearTransactions(_ context.Context) (int64, error) {
	n := int64(len(f.transactions))
	f.transactions = nil
	return n, nil
}

func (f *fakeStore) CreateGoal(_ context.Context, g core.Goal) error {
	f.goals[g.ID] = g
	return nil
}

func (f *fakeStore) GetGoal(_ context.Context, id string) (core.Goal, error) {
	g, ok := f.goals[id]
	if !ok {
		return core.Goal{}, core.ErrGoalNotFound
	}
	return g, nil
}

func (f *fakeStore) ListGoals(_ context.Context) ([]core.Goal, error) {
	goals := make([]core.Goal, 0, len(f.goals))
	for _, g := range f.goals {
		goals = append(goals, g)
	}
	return goals, nil
}

func (f *fakeStore) UpdateGoal(_ context.Context, g core.Goal) error {
	if _, ok := f.goals[g.ID]; !ok {
		return core.ErrGoalNotFound
	}
	f.goals[g.ID] = g
	return nil
}

func (f *fakeStore) DeleteGoal(_ context.Context, id string) error {
	if _, ok := f.goals[id]; !ok {
		return core.ErrGoalNotFound
	}
	delete(f.goals, id)
	return nil
}

func (f *fakeStore) UpsertBudget(_ context.Context, b core.Budget) error {
	f.budgets[b.Category] = b
	return nil
}

func (f *fakeStore) ListBudgets(_ context.Context) ([]core.Budget, error) {
	budgets := make([]core.Budget, 0, len(f.budgets))
	for _, b := range f.budgets {
		budgets = append(budgets, b)
	}
	return budgets, nil
}

func (f *fakeStore) SaveBudgets(_ context.Context, budgets []core.Budget) error {
	for _, b := range budgets {
		f.budgets[b.Category] = b
	}
	return nil
}

func (f *fakeStore) DeleteBudget(_ context.Context, category string) error {
	if _, ok := f.budgets[category]; !ok {
		return core.ErrBudgetNotFound
	}
	delete(f.budgets, category)
	return nil
}

func (f *fakeStore) Close() error {
	f.closed = true
	return nil
}

type fakePublisher struct {
	published []string
	err       error
}

func (f *fakePublisher) PublishTransactionSync(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, id)
	return nil
}

func TestLedgerService_IngestLines(t *testing.T) {
	store := newFakeStore()
	publisher := &fakePublisher{}
	service := NewLedgerService(store, publisher)
	today := core.NewDate(2024, 3, 15)

	lines := []amqp.StatementLine{
		{Text: "NETFLIX.COM PALI", Amount: "15.99", Date: "2024-03-01", Type: "expense"},
		{Text: "PAYCHECK MARCH", Amount: "3000.00", Date: "2024-03-05"},
		{Text: "SHELL OIL 1234", Amount: "not-a-number", Date: "2024-03-07", Type: "expense"},
		{Text: "MYSTERY CHARGE", Amount: "12.00", Type: "expense"},
	}

	result, err := service.IngestLines(context.Background(), lines, today)
	if err != nil {
		t.Fatalf("IngestLines() error = %v", err)
	}
	if result.Added != 3 {
		t.Errorf("Added = %d, want 3", result.Added)
	}
	if result.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", result.Skipped)
	}

	netflix := store.transactions[0]
	if netflix.Category != "Subscriptions" {
		t.Errorf("netflix category = %q, want Subscriptions", netflix.Category)
	}
	if netflix.Merchant != "Netflix" {
		t.Errorf("netflix merchant = %q, want Netflix", netflix.Merchant)
	}
	if !netflix.IsRecurring {
		t.Error("netflix should be flagged recurring")
	}
	if netflix.Amount.Cents != 1599 {
		t.Errorf("netflix cents = %d, want 1599", netflix.Amount.Cents)
	}

	paycheck := store.transactions[1]
	if paycheck.Type != core.Income {
		t.Errorf("paycheck type = %q, want income (inferred from category)", paycheck.Type)
	}

	mystery := store.transactions[2]
	if mystery.Date != "2024-03-15" {
		t.Errorf("dateless line stored with date %q, want 2024-03-15", mystery.Date)
	}
	if mystery.Category != core.CategoryUncategorized {
		t.Errorf("mystery category = %q, want %q", mystery.Category, core.CategoryUncategorized)
	}

	if len(publisher.published) != 3 {
		t.Errorf("published %d sync messages, want 3", len(publisher.published))
	}
}

func TestLedgerService_IngestLinesSignedAmount(t *testing.T) {
	store := newFakeStore()
	service := NewLedgerService(store, nil)
	today := core.NewDate(2024, 3, 15)

	lines := []amqp.StatementLine{
		{Text: "SHELL OIL 1234", Amount: "-42.10", Date: "2024-03-07"},
	}

	result, err := service.IngestLines(context.Background(), lines, today)
	if err != nil {
		t.Fatalf("IngestLines() error = %v", err)
	}
	if result.Added != 1 {
		t.Fatalf("Added = %d, want 1", result.Added)
	}

	tx := store.transactions[0]
	if tx.Amount.Cents != 4210 {
		t.Errorf("cents = %d, want 4210 (sign stripped)", tx.Amount.Cents)
	}
	if tx.Type != core.Expense {
		t.Errorf("type = %q, want expense (inferred from sign)", tx.Type)
	}
}

func TestLedgerService_IngestLinesDeduplicates(t *testing.T) {
	store := newFakeStore()
	service := NewLedgerService(store, nil)
	today := core.NewDate(2024, 3, 15)

	line := amqp.StatementLine{Text: "STARBUCKS STORE 991", Amount: "4.50", Date: "2024-03-02", Type: "expense"}

	if _, err := service.IngestLines(context.Background(), []amqp.StatementLine{line, line}, today); err != nil {
		t.Fatalf("IngestLines() error = %v", err)
	}
	if len(store.transactions) != 1 {
		t.Fatalf("stored %d transactions, want 1 after dedupe", len(store.transactions))
	}
}

func TestLedgerService_IngestLinesPublishFailureIsNonFatal(t *testing.T) {
	store := newFakeStore()
	publisher := &fakePublisher{err: errors.New("broker down")}
	service := NewLedgerService(store, publisher)

	lines := []amqp.StatementLine{{Text: "STARBUCKS", Amount: "4.50", Date: "2024-03-02", Type: "expense"}}
	result, err := service.IngestLines(context.Background(), lines, core.NewDate(2024, 3, 15))
	if err != nil {
		t.Fatalf("IngestLines() error = %v, want nil when only publish fails", err)
	}
	if result.Added != 1 {
		t.Errorf("Added = %d, want 1", result.Added)
	}
}

func TestLedgerService_AddTransactions(t *testing.T) {
	store := newFakeStore()
	service := NewLedgerService(store, nil)

	txs := []core.Transaction{
		{Date: "2024-03-01", Merchant: "Rent Co", Amount: core.Money{Cents: 120000}, Type: core.Expense},
		{Date: "2024-03-01", Merchant: "Rent Co", Amount: core.Money{Cents: 120000}, Type: core.Expense},
	}

	result, err := service.AddTransactions(context.Background(), txs)
	if err != nil {
		t.Fatalf("AddTransactions() error = %v", err)
	}
	if result.Added != 1 || result.Skipped != 1 {
		t.Errorf("Added/Skipped = %d/%d, want 1/1", result.Added, result.Skipped)
	}

	stored := store.transactions[0]
	if stored.ID == "" {
		t.Error("stored transaction should have an assigned ID")
	}
	if stored.Category != core.CategoryUncategorized {
		t.Errorf("blank category stored as %q, want %q", stored.Category, core.CategoryUncategorized)
	}
}

func TestLedgerService_AddTransactionsRejectsInvalid(t *testing.T) {
	service := NewLedgerService(newFakeStore(), nil)

	txs := []core.Transaction{
		{Date: "2024-03-01", Merchant: "", Amount: core.Money{Cents: 100}, Type: core.Expense},
	}
	if _, err := service.AddTransactions(context.Background(), txs); !errors.Is(err, core.ErrEmptyMerchant) {
		t.Errorf("AddTransactions() error = %v, want ErrEmptyMerchant", err)
	}
}

func TestLedgerService_UpdateCategory(t *testing.T) {
	store := newFakeStore()
	publisher := &fakePublisher{}
	service := NewLedgerService(store, publisher)

	store.transactions = []core.Transaction{
		{ID: "tx-1", Date: "2024-03-01", Merchant: "Corner Shop", Amount: core.Money{Cents: 500}, Category: core.CategoryUncategorized, Type: core.Expense},
	}

	if err := service.UpdateCategory(context.Background(), "tx-1", "Groceries"); err != nil {
		t.Fatalf("UpdateCategory() error = %v", err)
	}
	if store.transactions[0].Category != "Groceries" {
		t.Errorf("category = %q, want Groceries", store.transactions[0].Category)
	}
	if len(publisher.published) != 1 {
		t.Error("category update should publish a sync message")
	}

	if err := service.UpdateCategory(context.Background(), "tx-1", "  "); !errors.Is(err, core.ErrEmptyCategory) {
		t.Errorf("UpdateCategory() with blank category error = %v, want ErrEmptyCategory", err)
	}
	if err := service.UpdateCategory(context.Background(), "missing", "Dining"); !errors.Is(err, core.ErrTransactionNotFound) {
		t.Errorf("UpdateCategory() for missing id error = %v, want ErrTransactionNotFound", err)
	}
}

func TestLedgerService_MoveBudget(t *testing.T) {
	store := newFakeStore()
	service := NewLedgerService(store, nil)
	ctx := context.Background()

	store.budgets["Dining"] = core.Budget{Category: "Dining", Limit: core.Money{Cents: 30000}}
	store.budgets["Groceries"] = core.Budget{Category: "Groceries", Limit: core.Money{Cents: 50000}}

	if err := service.MoveBudget(ctx, "Groceries", "Dining", core.Money{Cents: 10000}); err != nil {
		t.Fatalf("MoveBudget() error = %v", err)
	}
	if got := store.budgets["Groceries"].Limit.Cents; got != 40000 {
		t.Errorf("Groceries limit = %d, want 40000", got)
	}
	if got := store.budgets["Dining"].Limit.Cents; got != 40000 {
		t.Errorf("Dining limit = %d, want 40000", got)
	}

	err := service.MoveBudget(ctx, "Groceries", "Dining", core.Money{Cents: 99999999})
	if !errors.Is(err, core.ErrInsufficientLimit) {
		t.Errorf("MoveBudget() error = %v, want ErrInsufficientLimit", err)
	}
	if got := store.budgets["Groceries"].Limit.Cents; got != 40000 {
		t.Errorf("failed move must not change limits, Groceries = %d", got)
	}
}

func TestLedgerService_ProjectGoal(t *testing.T) {
	store := newFakeStore()
	service := NewLedgerService(store, nil)
	ctx := context.Background()
	today := core.NewDate(2024, 1, 10)

	goal, err := service.CreateGoal(ctx, core.Goal{
		Name:          "Emergency fund",
		TargetAmount:  core.Money{Cents: 600000},
		CurrentAmount: core.Money{Cents: 0},
		Deadline:      core.NewDate(2025, 1, 10),
	})
	if err != nil {
		t.Fatalf("CreateGoal() error = %v", err)
	}

	proj, err := service.ProjectGoal(ctx, goal.ID, core.Money{Cents: 10000}, today)
	if err != nil {
		t.Fatalf("ProjectGoal() error = %v", err)
	}
	if proj.MonthsRemaining != 12 {
		t.Errorf("MonthsRemaining = %d, want 12", proj.MonthsRemaining)
	}
	if proj.Required.Cents != 50000 {
		t.Errorf("Required = %d cents, want 50000", proj.Required.Cents)
	}
	if proj.Scenario == nil {
		t.Fatal("Scenario should be present for an extra contribution")
	}
	if proj.Scenario.MonthsSaved != 2 {
		t.Errorf("MonthsSaved = %d, want 2", proj.Scenario.MonthsSaved)
	}

	if _, err := service.ProjectGoal(ctx, "missing", core.Money{}, today); !errors.Is(err, core.ErrGoalNotFound) {
		t.Errorf("ProjectGoal() for missing goal error = %v, want ErrGoalNotFound", err)
	}
}

func TestLedgerService_BudgetOverviewScopedToMonth(t *testing.T) {
	store := newFakeStore()
	service := NewLedgerService(store, nil)
	ctx := context.Background()

	if err := service.SetBudget(ctx, "Groceries", core.Money{Cents: 40000}); err != nil {
		t.Fatalf("SetBudget() error = %v", err)
	}
	store.transactions = []core.Transaction{
		{ID: "1", Date: "2024-03-05", Merchant: "Market", Amount: core.Money{Cents: 12000}, Category: "Groceries", Type: core.Expense},
		{ID: "2", Date: "2024-04-05", Merchant: "Market", Amount: core.Money{Cents: 30000}, Category: "Groceries", Type: core.Expense},
	}

	statuses, err := service.BudgetOverview(ctx, 2024, 3)
	if err != nil {
		t.Fatalf("BudgetOverview() error = %v", err)
	}
	if len(statuses) != 1 {
		t.Fatalf("statuses = %d, want 1", len(statuses))
	}
	if statuses[0].Spent.Cents != 12000 {
		t.Errorf("Spent = %d cents, want 12000 (only March counts)", statuses[0].Spent.Cents)
	}
}

func TestLedgerService_BudgetableCategories(t *testing.T) {
	store := newFakeStore()
	service := NewLedgerService(store, nil)

	store.transactions = []core.Transaction{
		{ID: "1", Date: "2024-03-05", Merchant: "Market", Amount: core.Money{Cents: 12000}, Category: "Groceries", Type: core.Expense},
		{ID: "2", Date: "2024-03-08", Merchant: "Cafe", Amount: core.Money{Cents: 800}, Category: "Dining", Type: core.Expense},
		{ID: "3", Date: "2024-03-10", Merchant: "Employer", Amount: core.Money{Cents: 300000}, Category: "Income", Type: core.Income},
		{ID: "4", Date: "2024-04-02", Merchant: "Airline", Amount: core.Money{Cents: 50000}, Category: "Travel", Type: core.Expense},
	}

	categories, err := service.BudgetableCategories(context.Background(), 2024, 3)
	if err != nil {
		t.Fatalf("BudgetableCategories() error = %v", err)
	}
	want := []string{"Dining", "Groceries"}
	if len(categories) != len(want) {
		t.Fatalf("categories = %v, want %v", categories, want)
	}
	for i := range want {
		if categories[i] != want[i] {
			t.Errorf("categories[%d] = %q, want %q", i, categories[i], want[i])
		}
	}
}
