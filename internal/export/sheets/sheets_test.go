package sheets

import (
	"context"
	"testing"

	"finboard/internal/config"
	"finboard/internal/core"
)

func TestNewRequiresSpreadsheetID(t *testing.T) {
	cfg := &config.Config{GoogleSheetName: "Transactions"}
	if _, err := New(context.Background(), cfg); err == nil {
		t.Error("New() without spreadsheet ID should fail")
	}
}

func TestNewRequiresCredentials(t *testing.T) {
	cfg := &config.Config{
		GoogleSpreadsheetID: "spreadsheet-123",
		GoogleSheetName:     "Transactions",
	}
	if _, err := New(context.Background(), cfg); err == nil {
		t.Error("New() without credentials should fail")
	}
}

func TestAppendTransactionRejectsInvalid(t *testing.T) {
	client := &Client{spreadsheetID: "spreadsheet-123", sheetName: "Transactions"}

	_, err := client.AppendTransaction(context.Background(), core.Transaction{})
	if err == nil {
		t.Error("AppendTransaction() with invalid transaction should fail before any API call")
	}
}

func TestTransactionRow(t *testing.T) {
	row := transactionRow(core.Transaction{
		ID:          "tx-1",
		Date:        "2024-03-01",
		Merchant:    "Netflix",
		Amount:      core.Money{Cents: 1599},
		Category:    "Subscriptions",
		Type:        core.Expense,
		IsRecurring: true,
		Description: "NETFLIX.COM PALI",
	})

	if len(row) != 8 {
		t.Fatalf("row has %d columns, want 8", len(row))
	}
	if row[0] != "2024-03-01" {
		t.Errorf("date column = %v, want 2024-03-01", row[0])
	}
	if row[2] != 15.99 {
		t.Errorf("amount column = %v, want 15.99", row[2])
	}
	if row[5] != "yes" {
		t.Errorf("recurring column = %v, want yes", row[5])
	}
}
