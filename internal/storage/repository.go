// Package storage persists categories, expenses and incomes in SQLite.
// Amounts are stored as integer cents and dates as ISO calendar strings, so
// nothing in the database depends on binary floating point or timezones.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/majdishami/BudgetBuddy-V2/internal/core"
	"github.com/majdishami/BudgetBuddy-V2/internal/log"

	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("record not found")

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// --- categories ---

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, color, icon FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Color, &c.Icon); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	var c core.Category
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, color, icon FROM categories WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.Color, &c.Icon)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, fmt.Errorf("category %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (name, color, icon) VALUES (?, ?, ?)`,
		c.Name, c.Color, c.Icon)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("category insert id: %w", err)
	}
	slog.InfoContext(ctx, "Category created",
		log.FieldComponent, log.ComponentStorage,
		log.FieldOperation, log.OpCreate,
		log.FieldRecordID, c.ID,
		"name", c.Name)
	return c, nil
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, c core.Category) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, color = ?, icon = ? WHERE id = ?`,
		c.Name, c.Color, c.Icon, c.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return requireRow(res, c.ID)
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return requireRow(res, id)
}

// --- expenses ---

const expenseColumns = `id, name, amount_cents, anchor_date, frequency, category_id`

func scanExpense(s interface{ Scan(...any) error }) (core.Expense, error) {
	var (
		e      core.Expense
		cents  int64
		anchor string
		freq   string
	)
	if err := s.Scan(&e.ID, &e.Name, &cents, &anchor, &freq, &e.CategoryID); err != nil {
		return core.Expense{}, err
	}
	date, err := core.ParseDate(anchor)
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense %d anchor date: %w", e.ID, err)
	}
	e.Amount = core.Money{Cents: cents}
	e.AnchorDate = date
	e.Frequency = core.Frequency(freq)
	return e, nil
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses ORDER BY anchor_date, id`)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	e, err := scanExpense(r.db.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, fmt.Errorf("expense %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (name, amount_cents, anchor_date, frequency, category_id)
		 VALUES (?, ?, ?, ?, ?)`,
		e.Name, e.Amount.Cents, e.AnchorDate.String(), string(e.Frequency), e.CategoryID)
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	e.ID, err = res.LastInsertId()
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense insert id: %w", err)
	}
	slog.InfoContext(ctx, "Expense created",
		log.FieldComponent, log.ComponentStorage,
		log.FieldOperation, log.OpCreate,
		log.FieldRecordID, e.ID,
		log.FieldAmountCents, e.Amount.Cents,
		log.FieldFrequency, string(e.Frequency),
		log.FieldCategoryID, e.CategoryID)
	return e, nil
}

func (r *SQLiteRepository) UpdateExpense(ctx context.Context, e core.Expense) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses
		 SET name = ?, amount_cents = ?, anchor_date = ?, frequency = ?, category_id = ?,
		     version = version + 1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		e.Name, e.Amount.Cents, e.AnchorDate.String(), string(e.Frequency), e.CategoryID, e.ID)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	return requireRow(res, e.ID)
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return requireRow(res, id)
}

// --- incomes ---

const incomeColumns = `id, name, amount_cents, anchor_date, frequency, source`

func scanIncome(s interface{ Scan(...any) error }) (core.Income, error) {
	var (
		in     core.Income
		cents  int64
		anchor string
		freq   string
	)
	if err := s.Scan(&in.ID, &in.Name, &cents, &anchor, &freq, &in.Source); err != nil {
		return core.Income{}, err
	}
	date, err := core.ParseDate(anchor)
	if err != nil {
		return core.Income{}, fmt.Errorf("income %d anchor date: %w", in.ID, err)
	}
	in.Amount = core.Money{Cents: cents}
	in.AnchorDate = date
	in.Frequency = core.Frequency(freq)
	return in, nil
}

func (r *SQLiteRepository) ListIncomes(ctx context.Context) ([]core.Income, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+incomeColumns+` FROM incomes ORDER BY anchor_date, id`)
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	defer rows.Close()

	var out []core.Income
	for rows.Next() {
		in, err := scanIncome(rows)
		if err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetIncome(ctx context.Context, id int64) (core.Income, error) {
	in, err := scanIncome(r.db.QueryRowContext(ctx,
		`SELECT `+incomeColumns+` FROM incomes WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Income{}, fmt.Errorf("income %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Income{}, fmt.Errorf("get income: %w", err)
	}
	return in, nil
}

func (r *SQLiteRepository) CreateIncome(ctx context.Context, in core.Income) (core.Income, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO incomes (name, amount_cents, anchor_date, frequency, source)
		 VALUES (?, ?, ?, ?, ?)`,
		in.Name, in.Amount.Cents, in.AnchorDate.String(), string(in.Frequency), in.Source)
	if err != nil {
		return core.Income{}, fmt.Errorf("create income: %w", err)
	}
	in.ID, err = res.LastInsertId()
	if err != nil {
		return core.Income{}, fmt.Errorf("income insert id: %w", err)
	}
	slog.InfoContext(ctx, "Income created",
		log.FieldComponent, log.ComponentStorage,
		log.FieldOperation, log.OpCreate,
		log.FieldRecordID, in.ID,
		log.FieldAmountCents, in.Amount.Cents,
		log.FieldFrequency, string(in.Frequency))
	return in, nil
}

func (r *SQLiteRepository) UpdateIncome(ctx context.Context, in core.Income) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE incomes
		 SET name = ?, amount_cents = ?, anchor_date = ?, frequency = ?, source = ?,
		     version = version + 1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		in.Name, in.Amount.Cents, in.AnchorDate.String(), string(in.Frequency), in.Source, in.ID)
	if err != nil {
		return fmt.Errorf("update income: %w", err)
	}
	return requireRow(res, in.ID)
}

func (r *SQLiteRepository) DeleteIncome(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM incomes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete income: %w", err)
	}
	return requireRow(res, id)
}

// --- bulk operations ---

// ClearAll deletes every row from all three tables in one transaction.
func (r *SQLiteRepository) ClearAll(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin clear: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"expenses", "incomes", "categories"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit clear: %w", err)
	}
	slog.InfoContext(ctx, "All data cleared",
		log.FieldComponent, log.ComponentStorage,
		log.FieldOperation, log.OpDelete)
	return nil
}

// ReplaceAll swaps the entire dataset in one transaction; used by restore.
// Category IDs are preserved so expense references stay intact.
func (r *SQLiteRepository) ReplaceAll(ctx context.Context, cats []core.Category, expenses []core.Expense, incomes []core.Income) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin restore: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"expenses", "incomes", "categories"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, c := range cats {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO categories (id, name, color, icon) VALUES (?, ?, ?, ?)`,
			c.ID, c.Name, c.Color, c.Icon); err != nil {
			return fmt.Errorf("restore category %q: %w", c.Name, err)
		}
	}
	for _, e := range expenses {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO expenses (id, name, amount_cents, anchor_date, frequency, category_id)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			e.ID, e.Name, e.Amount.Cents, e.AnchorDate.String(), string(e.Frequency), e.CategoryID); err != nil {
			return fmt.Errorf("restore expense %q: %w", e.Name, err)
		}
	}
	for _, in := range incomes {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO incomes (id, name, amount_cents, anchor_date, frequency, source)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			in.ID, in.Name, in.Amount.Cents, in.AnchorDate.String(), string(in.Frequency), in.Source); err != nil {
			return fmt.Errorf("restore income %q: %w", in.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit restore: %w", err)
	}
	slog.InfoContext(ctx, "Dataset replaced",
		log.FieldComponent, log.ComponentStorage,
		log.FieldOperation, log.OpRestore,
		"categories", len(cats),
		"expenses", len(expenses),
		"incomes", len(incomes))
	return nil
}

func requireRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("id %d: %w", id, ErrNotFound)
	}
	return nil
}
