// Package worker consumes export messages and appends the referenced records
// to the configured spreadsheet backend.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/majdishami/BudgetBuddy-V2/internal/amqp"
	"github.com/majdishami/BudgetBuddy-V2/internal/log"
	"github.com/majdishami/BudgetBuddy-V2/internal/sheets"
	"github.com/majdishami/BudgetBuddy-V2/internal/storage"
)

// ExportWorker resolves export messages against SQLite and writes rows out
// through a sheets.RowAppender.
type ExportWorker struct {
	storage  *storage.SQLiteRepository
	appender sheets.RowAppender
}

func NewExportWorker(storage *storage.SQLiteRepository, appender sheets.RowAppender) *ExportWorker {
	return &ExportWorker{
		storage:  storage,
		appender: appender,
	}
}

// HandleExportMessage processes a single export message from AMQP.
// The record is re-read from storage so the exported row always reflects the
// latest persisted state, not the state at publish time.
func (w *ExportWorker) HandleExportMessage(ctx context.Context, msg *amqp.ExportMessage) error {
	slog.InfoContext(ctx, "Processing export message",
		log.FieldComponent, log.ComponentWorker,
		log.FieldRecordKind, msg.Kind,
		log.FieldRecordID, msg.ID,
		"version", msg.Version)

	row, err := w.buildRow(ctx, msg)
	if err != nil {
		return err
	}

	ref, err := w.appender.AppendRow(ctx, row)
	if err != nil {
		return fmt.Errorf("append row: %w", err)
	}

	slog.InfoContext(ctx, "Exported record",
		log.FieldComponent, log.ComponentWorker,
		log.FieldOperation, log.OpExport,
		log.FieldRecordKind, msg.Kind,
		log.FieldRecordID, msg.ID,
		"row_ref", ref)

	return nil
}

func (w *ExportWorker) buildRow(ctx context.Context, msg *amqp.ExportMessage) (sheets.ExportRow, error) {
	switch msg.Kind {
	case amqp.KindExpense:
		e, err := w.storage.GetExpense(ctx, msg.ID)
		if err != nil {
			return sheets.ExportRow{}, fmt.Errorf("get expense from storage: %w", err)
		}
		category := ""
		if cat, err := w.storage.GetCategory(ctx, e.CategoryID); err == nil {
			category = cat.Name
		} else {
			slog.WarnContext(ctx, "Category lookup failed for export",
				log.FieldComponent, log.ComponentWorker,
				log.FieldRecordID, e.ID,
				log.FieldCategoryID, e.CategoryID,
				log.FieldError, err)
		}
		return sheets.ExportRow{
			Kind:      amqp.KindExpense,
			Name:      e.Name,
			Amount:    e.Amount.String(),
			Date:      e.AnchorDate.String(),
			Frequency: string(e.Frequency),
			Category:  category,
		}, nil

	case amqp.KindIncome:
		in, err := w.storage.GetIncome(ctx, msg.ID)
		if err != nil {
			return sheets.ExportRow{}, fmt.Errorf("get income from storage: %w", err)
		}
		return sheets.ExportRow{
			Kind:      amqp.KindIncome,
			Name:      in.Name,
			Amount:    in.Amount.String(),
			Date:      in.AnchorDate.String(),
			Frequency: string(in.Frequency),
			Category:  in.Source,
		}, nil

	default:
		return sheets.ExportRow{}, fmt.Errorf("unknown export kind %q", msg.Kind)
	}
}
