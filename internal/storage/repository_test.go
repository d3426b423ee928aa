package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/majdishami/BudgetBuddy-V2/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func mustDate(t *testing.T, s string) core.Date {
	t.Helper()
	d, err := core.ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", s, err)
	}
	return d
}

func TestCategoryCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.CreateCategory(ctx, core.Category{Name: "Housing", Color: "#ff0000", Icon: "home"})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("expected assigned id")
	}

	got, err := repo.GetCategory(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetCategory: %v", err)
	}
	if got.Name != "Housing" || got.Color != "#ff0000" || got.Icon != "home" {
		t.Fatalf("got %+v", got)
	}

	got.Name = "Rent & Utilities"
	if err := repo.UpdateCategory(ctx, got); err != nil {
		t.Fatalf("UpdateCategory: %v", err)
	}
	updated, _ := repo.GetCategory(ctx, created.ID)
	if updated.Name != "Rent & Utilities" {
		t.Fatalf("update not persisted: %+v", updated)
	}

	if err := repo.DeleteCategory(ctx, created.ID); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
	if _, err := repo.GetCategory(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestExpenseCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	cat, err := repo.CreateCategory(ctx, core.Category{Name: "Housing"})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}

	e := core.Expense{
		Name:       "Rent",
		Amount:     core.Money{Cents: 375000},
		AnchorDate: mustDate(t, "2025-01-01"),
		Frequency:  core.Monthly,
		CategoryID: cat.ID,
	}
	created, err := repo.CreateExpense(ctx, e)
	if err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}

	got, err := repo.GetExpense(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetExpense: %v", err)
	}
	if got.Amount.Cents != 375000 {
		t.Fatalf("amount = %d", got.Amount.Cents)
	}
	if !got.AnchorDate.Equal(e.AnchorDate) {
		t.Fatalf("anchor = %s", got.AnchorDate)
	}
	if got.Frequency != core.Monthly {
		t.Fatalf("frequency = %s", got.Frequency)
	}

	got.Amount = core.Money{Cents: 400000}
	if err := repo.UpdateExpense(ctx, got); err != nil {
		t.Fatalf("UpdateExpense: %v", err)
	}
	updated, _ := repo.GetExpense(ctx, created.ID)
	if updated.Amount.Cents != 400000 {
		t.Fatalf("update not persisted: %d", updated.Amount.Cents)
	}

	list, err := repo.ListExpenses(ctx)
	if err != nil {
		t.Fatalf("ListExpenses: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("len = %d", len(list))
	}

	if err := repo.DeleteExpense(ctx, created.ID); err != nil {
		t.Fatalf("DeleteExpense: %v", err)
	}
	if err := repo.DeleteExpense(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestIncomeCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	in := core.Income{
		Name:       "Salary",
		Amount:     core.Money{Cents: 200000},
		AnchorDate: mustDate(t, "2025-01-10"),
		Frequency:  core.Biweekly,
		Source:     "Acme Corp",
	}
	created, err := repo.CreateIncome(ctx, in)
	if err != nil {
		t.Fatalf("CreateIncome: %v", err)
	}

	got, err := repo.GetIncome(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetIncome: %v", err)
	}
	if got.Source != "Acme Corp" || got.Frequency != core.Biweekly {
		t.Fatalf("got %+v", got)
	}

	got.Source = "Acme Inc"
	if err := repo.UpdateIncome(ctx, got); err != nil {
		t.Fatalf("UpdateIncome: %v", err)
	}
	if err := repo.DeleteIncome(ctx, created.ID); err != nil {
		t.Fatalf("DeleteIncome: %v", err)
	}
	if _, err := repo.GetIncome(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClearAll(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	cat, _ := repo.CreateCategory(ctx, core.Category{Name: "Misc"})
	repo.CreateExpense(ctx, core.Expense{
		Name: "Coffee", Amount: core.Money{Cents: 450},
		AnchorDate: mustDate(t, "2025-02-01"), Frequency: core.Once, CategoryID: cat.ID,
	})
	repo.CreateIncome(ctx, core.Income{
		Name: "Refund", Amount: core.Money{Cents: 1200},
		AnchorDate: mustDate(t, "2025-02-02"), Frequency: core.Once,
	})

	if err := repo.ClearAll(ctx); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	cats, _ := repo.ListCategories(ctx)
	expenses, _ := repo.ListExpenses(ctx)
	incomes, _ := repo.ListIncomes(ctx)
	if len(cats)+len(expenses)+len(incomes) != 0 {
		t.Fatalf("data survived clear: %d/%d/%d", len(cats), len(expenses), len(incomes))
	}
}

func TestReplaceAllPreservesIDs(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	repo.CreateCategory(ctx, core.Category{Name: "Old"})

	cats := []core.Category{{ID: 7, Name: "Housing", Color: "#00ff00", Icon: "home"}}
	expenses := []core.Expense{{
		ID: 3, Name: "Rent", Amount: core.Money{Cents: 375000},
		AnchorDate: mustDate(t, "2025-01-01"), Frequency: core.Monthly, CategoryID: 7,
	}}
	incomes := []core.Income{{
		ID: 5, Name: "Salary", Amount: core.Money{Cents: 200000},
		AnchorDate: mustDate(t, "2025-01-10"), Frequency: core.Biweekly, Source: "Acme",
	}}

	if err := repo.ReplaceAll(ctx, cats, expenses, incomes); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}

	if _, err := repo.GetCategory(ctx, 7); err != nil {
		t.Fatalf("restored category missing: %v", err)
	}
	e, err := repo.GetExpense(ctx, 3)
	if err != nil {
		t.Fatalf("restored expense missing: %v", err)
	}
	if e.CategoryID != 7 {
		t.Fatalf("category reference broken: %d", e.CategoryID)
	}
	if _, err := repo.GetIncome(ctx, 5); err != nil {
		t.Fatalf("restored income missing: %v", err)
	}
	gone, _ := repo.ListCategories(ctx)
	if len(gone) != 1 {
		t.Fatalf("old data survived restore: %d categories", len(gone))
	}
}
