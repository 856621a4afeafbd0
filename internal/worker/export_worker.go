package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"finboard/internal/amqp"
	"finboard/internal/core"
	"finboard/internal/services"
)

// ExportStore is the slice of storage the worker needs for the export
// queue and its recovery sweeps.
type ExportStore interface {
	GetTransaction(ctx context.Context, id string) (core.Transaction, error)
	GetPendingExportTransactions(ctx context.Context, limit int) ([]core.Transaction, error)
	MarkExported(ctx context.Context, id string) error
	MarkExportError(ctx context.Context, id string) error
}

// TransactionWriter is the outbound spreadsheet port.
type TransactionWriter interface {
	AppendTransaction(ctx context.Context, t core.Transaction) (string, error)
}

// Ingestor classifies and stores raw statement lines.
type Ingestor interface {
	IngestLines(ctx context.Context, lines []amqp.StatementLine, today core.Date) (services.IngestResult, error)
}

// Worker consumes ingest and export messages: raw statement batches
// get classified and stored, stored transactions get appended to the
// configured spreadsheet.
type Worker struct {
	storage   ExportStore
	ingestor  Ingestor
	writer    TransactionWriter
	batchSize int
}

func New(storage ExportStore, ingestor Ingestor, writer TransactionWriter, batchSize int) *Worker {
	return &Worker{
		storage:   storage,
		ingestor:  ingestor,
		writer:    writer,
		batchSize: batchSize,
	}
}

// HandleIngestMessage processes a batch of raw statement lines from AMQP
func (w *Worker) HandleIngestMessage(ctx context.Context, msg *amqp.StatementIngestMessage) error {
	slog.InfoContext(ctx, "Processing statement ingest message",
		"lines", len(msg.Lines),
		"queued_at", msg.Timestamp)

	now := time.Now().UTC()
	today := core.NewDate(now.Year(), int(now.Month()), now.Day())

	result, err := w.ingestor.IngestLines(ctx, msg.Lines, today)
	if err != nil {
		return fmt.Errorf("ingest statement lines: %w", err)
	}

	slog.InfoContext(ctx, "Statement ingest message processed",
		"added", result.Added,
		"skipped", result.Skipped)

	return nil
}

// HandleSyncMessage processes a single transaction export message from AMQP
func (w *Worker) HandleSyncMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	if w.writer == nil {
		slog.WarnContext(ctx, "No spreadsheet writer configured, skipping export", "id", msg.ID)
		return nil
	}

	slog.InfoContext(ctx, "Processing transaction sync message", "id", msg.ID)

	t, err := w.storage.GetTransaction(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	if err := w.exportToSheets(ctx, t); err != nil {
		return fmt.Errorf("export transaction to sheets: %w", err)
	}

	return nil
}

// ProcessPendingExports exports transactions that never made it to the
// spreadsheet. This is a backup mechanism in case AMQP messages are lost.
func (w *Worker) ProcessPendingExports(ctx context.Context) error {
	if w.writer == nil {
		return nil
	}

	pending, err := w.storage.GetPendingExportTransactions(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending export transactions: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending exports", "count", len(pending))

	for _, t := range pending {
		if err := w.exportToSheets(ctx, t); err != nil {
			slog.ErrorContext(ctx, "Failed to export transaction", "id", t.ID, "error", err)
			continue
		}
	}

	return nil
}

// StartupExportCheck sweeps pending exports at worker startup with a
// larger batch, to recover from missed messages or worker downtime.
func (w *Worker) StartupExportCheck(ctx context.Context) error {
	if w.writer == nil {
		slog.InfoContext(ctx, "Spreadsheet export disabled, skipping startup check")
		return nil
	}

	pending, err := w.storage.GetPendingExportTransactions(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending transactions for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending exports found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending exports on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0

	for _, t := range pending {
		if err := w.exportToSheets(ctx, t); err != nil {
			slog.ErrorContext(ctx, "Failed to export transaction during startup",
				"id", t.ID, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup export completed",
		"total", len(pending),
		"exported", successCount,
		"errors", errorCount)

	return nil
}

func (w *Worker) exportToSheets(ctx context.Context, t core.Transaction) error {
	ref, err := w.writer.AppendTransaction(ctx, t)
	if err != nil {
		if markErr := w.storage.MarkExportError(ctx, t.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark export error", "id", t.ID, "error", markErr)
		}
		return fmt.Errorf("append to sheets: %w", err)
	}

	if err := w.storage.MarkExported(ctx, t.ID); err != nil {
		// The append actually worked; don't fail the message over bookkeeping.
		slog.ErrorContext(ctx, "Failed to mark as exported", "id", t.ID, "error", err)
	}

	slog.InfoContext(ctx, "Successfully exported transaction",
		"id", t.ID,
		"sheets_ref", ref,
		"merchant", t.Merchant,
		"amount_cents", t.Amount.Cents)

	return nil
}
