// Package backup writes and restores JSON snapshots of the full dataset.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/majdishami/BudgetBuddy-V2/internal/core"
	"github.com/majdishami/BudgetBuddy-V2/internal/log"
	"github.com/majdishami/BudgetBuddy-V2/internal/storage"
)

// SnapshotVersion is bumped when the snapshot layout changes incompatibly.
const SnapshotVersion = 1

// Snapshot is the on-disk backup format. Amounts serialize as decimal
// strings and dates as ISO calendar dates, so snapshots stay readable and
// portable across machines.
type Snapshot struct {
	Version    int             `json:"version"`
	CreatedAt  time.Time       `json:"createdAt"`
	Categories []core.Category `json:"categories"`
	Expenses   []core.Expense  `json:"expenses"`
	Incomes    []core.Income   `json:"incomes"`
}

// Manager produces snapshots from a repository and restores them back.
type Manager struct {
	storage *storage.SQLiteRepository
	dir     string
}

func NewManager(storage *storage.SQLiteRepository, dir string) *Manager {
	return &Manager{storage: storage, dir: dir}
}

// Create reads the full dataset and writes a snapshot file. Returns the path
// of the written file.
func (m *Manager) Create(ctx context.Context) (string, error) {
	snap, err := m.snapshot(ctx)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(m.dir, 0755); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}

	name := fmt.Sprintf("backup-%s-%s.json",
		snap.CreatedAt.UTC().Format("20060102-150405"),
		uuid.NewString()[:8])
	path := filepath.Join(m.dir, name)

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Backup created",
		log.FieldComponent, log.ComponentBackup,
		log.FieldOperation, log.OpBackup,
		log.FieldBackupFile, path,
		"categories", len(snap.Categories),
		"expenses", len(snap.Expenses),
		"incomes", len(snap.Incomes))

	return path, nil
}

func (m *Manager) snapshot(ctx context.Context) (Snapshot, error) {
	cats, err := m.storage.ListCategories(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list categories: %w", err)
	}
	expenses, err := m.storage.ListExpenses(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list expenses: %w", err)
	}
	incomes, err := m.storage.ListIncomes(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list incomes: %w", err)
	}
	return Snapshot{
		Version:    SnapshotVersion,
		CreatedAt:  time.Now().UTC(),
		Categories: cats,
		Expenses:   expenses,
		Incomes:    incomes,
	}, nil
}

// Read parses a snapshot file and validates its contents before anything
// touches the database.
func Read(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates snapshot bytes.
func Parse(data []byte) (Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("parse snapshot: %w", err)
	}
	if snap.Version != SnapshotVersion {
		return Snapshot{}, fmt.Errorf("unsupported snapshot version %d", snap.Version)
	}
	for i, c := range snap.Categories {
		if err := c.Validate(); err != nil {
			return Snapshot{}, fmt.Errorf("snapshot category %d: %w", i, err)
		}
	}
	for i, e := range snap.Expenses {
		if err := e.Validate(); err != nil {
			return Snapshot{}, fmt.Errorf("snapshot expense %d: %w", i, err)
		}
	}
	for i, in := range snap.Incomes {
		if err := in.Validate(); err != nil {
			return Snapshot{}, fmt.Errorf("snapshot income %d: %w", i, err)
		}
	}
	return snap, nil
}

// Restore replaces the entire dataset with the snapshot contents in one
// transaction. Record IDs are preserved.
func (m *Manager) Restore(ctx context.Context, snap Snapshot) error {
	if err := m.storage.ReplaceAll(ctx, snap.Categories, snap.Expenses, snap.Incomes); err != nil {
		return fmt.Errorf("restore snapshot: %w", err)
	}
	slog.InfoContext(ctx, "Backup restored",
		log.FieldComponent, log.ComponentBackup,
		log.FieldOperation, log.OpRestore,
		"snapshot_created_at", snap.CreatedAt,
		"categories", len(snap.Categories),
		"expenses", len(snap.Expenses),
		"incomes", len(snap.Incomes))
	return nil
}
