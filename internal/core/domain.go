package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// CategoryUncategorized is assigned when no classification rule matches.
const CategoryUncategorized = "Uncategorized"

type (
	TransactionType string

	// Date is a calendar date at UTC midnight. Transactions carry their
	// date as a raw string because upstream extraction can produce
	// malformed values; Date is what the engine works with after parsing.
	Date struct {
		time.Time
	}

	// Transaction is one normalized ledger entry. Amount is always
	// non-negative; direction is carried by Type, never by sign.
	Transaction struct {
		ID                  string
		Date                string // ISO 8601 calendar date, possibly malformed
		Merchant            string
		Amount              Money
		Category            string
		Type                TransactionType
		IsRecurring         bool
		Description         string
		OriginalDescription string
	}

	// Goal is a savings goal. CurrentAmount may exceed TargetAmount
	// (overachieved) and Deadline may be in the past (overdue).
	Goal struct {
		ID            string
		Name          string
		TargetAmount  Money
		CurrentAmount Money
		Deadline      Date
		Icon          string
	}

	// Budget is a per-category spending limit. Category is the natural
	// key; Spent is a derived snapshot, recomputed from the transaction
	// set whenever displayed.
	Budget struct {
		Category string
		Limit    Money
		Spent    Money
	}
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidType       = errors.New("invalid transaction type")
	ErrEmptyMerchant     = errors.New("empty merchant")
	ErrEmptyName         = errors.New("empty name")
	ErrEmptyCategory     = errors.New("empty category")
	ErrBudgetNotFound    = errors.New("budget not found")
	ErrInsufficientLimit = errors.New("insufficient budget limit")

	ErrTransactionNotFound = errors.New("transaction not found")
	ErrGoalNotFound        = errors.New("goal not found")
)

// DateLayout is the calendar-date wire format (no time component).
const DateLayout = "2006-01-02"

// NewDate creates a Date from year, month, day at UTC midnight.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO 8601 calendar date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// Before reports whether d falls strictly before other.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

// After reports whether d falls strictly after other.
func (d Date) After(other Date) bool {
	return d.Time.After(other.Time)
}

// AddMonths returns the date shifted by n calendar months.
func (d Date) AddMonths(n int) Date {
	return Date{Time: d.AddDate(0, n, 0)}
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (t Transaction) Validate() error {
	if t.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if strings.TrimSpace(t.Merchant) == "" && strings.TrimSpace(t.Description) == "" {
		return ErrEmptyMerchant
	}
	return nil
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if g.TargetAmount.Cents <= 0 {
		return ErrInvalidAmount
	}
	if g.CurrentAmount.Cents < 0 {
		return ErrInvalidAmount
	}
	if g.Deadline.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	if b.Limit.Cents <= 0 {
		return ErrInvalidAmount
	}
	if b.Spent.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Signature is the duplicate-suppression key used on bulk ingest:
// two transactions with the same date, merchant and amount are treated
// as the same statement row.
func (t Transaction) Signature() string {
	return t.Date + "|" + t.Merchant + "|" + t.Amount.String()
}
