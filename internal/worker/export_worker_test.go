package worker

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/majdishami/BudgetBuddy-V2/internal/amqp"
	"github.com/majdishami/BudgetBuddy-V2/internal/core"
	"github.com/majdishami/BudgetBuddy-V2/internal/sheets/memory"
	"github.com/majdishami/BudgetBuddy-V2/internal/storage"
)

func newTestWorker(t *testing.T) (*ExportWorker, *storage.SQLiteRepository, *memory.Store) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	appender := memory.New()
	return NewExportWorker(repo, appender), repo, appender
}

func TestHandleExportMessage_Expense(t *testing.T) {
	w, repo, appender := newTestWorker(t)
	ctx := context.Background()

	cat, err := repo.CreateCategory(ctx, core.Category{Name: "Housing"})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	anchor, _ := core.ParseDate("2025-01-01")
	e, err := repo.CreateExpense(ctx, core.Expense{
		Name: "Rent", Amount: core.Money{Cents: 375000},
		AnchorDate: anchor, Frequency: core.Monthly, CategoryID: cat.ID,
	})
	if err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}

	msg := amqp.NewExportMessage(amqp.KindExpense, e.ID, 1)
	if err := w.HandleExportMessage(ctx, msg); err != nil {
		t.Fatalf("HandleExportMessage: %v", err)
	}

	rows := appender.Rows()
	if len(rows) != 1 {
		t.Fatalf("rows = %d", len(rows))
	}
	row := rows[0]
	if row.Kind != amqp.KindExpense || row.Name != "Rent" {
		t.Fatalf("row = %+v", row)
	}
	if row.Amount != "3750.00" {
		t.Errorf("Amount = %q, want 3750.00", row.Amount)
	}
	if row.Date != "2025-01-01" {
		t.Errorf("Date = %q", row.Date)
	}
	if row.Category != "Housing" {
		t.Errorf("Category = %q", row.Category)
	}
}

func TestHandleExportMessage_Income(t *testing.T) {
	w, repo, appender := newTestWorker(t)
	ctx := context.Background()

	anchor, _ := core.ParseDate("2025-01-10")
	in, err := repo.CreateIncome(ctx, core.Income{
		Name: "Salary", Amount: core.Money{Cents: 200000},
		AnchorDate: anchor, Frequency: core.Biweekly, Source: "Acme Corp",
	})
	if err != nil {
		t.Fatalf("CreateIncome: %v", err)
	}

	msg := amqp.NewExportMessage(amqp.KindIncome, in.ID, 1)
	if err := w.HandleExportMessage(ctx, msg); err != nil {
		t.Fatalf("HandleExportMessage: %v", err)
	}

	rows := appender.Rows()
	if len(rows) != 1 {
		t.Fatalf("rows = %d", len(rows))
	}
	if rows[0].Category != "Acme Corp" || rows[0].Frequency != "biweekly" {
		t.Fatalf("row = %+v", rows[0])
	}
}

func TestHandleExportMessage_MissingRecord(t *testing.T) {
	w, _, appender := newTestWorker(t)

	msg := amqp.NewExportMessage(amqp.KindExpense, 999, 1)
	if err := w.HandleExportMessage(context.Background(), msg); err == nil {
		t.Fatal("expected error for missing record")
	}
	if len(appender.Rows()) != 0 {
		t.Fatal("nothing should have been appended")
	}
}

func TestHandleExportMessage_UnknownKind(t *testing.T) {
	w, _, _ := newTestWorker(t)

	msg := amqp.NewExportMessage("subscription", 1, 1)
	if err := w.HandleExportMessage(context.Background(), msg); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}
