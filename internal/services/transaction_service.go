// Package services orchestrates writes across SQLite and the async export
// pipeline. Persistence happens first; export messages are best-effort.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/majdishami/BudgetBuddy-V2/internal/amqp"
	"github.com/majdishami/BudgetBuddy-V2/internal/core"
	"github.com/majdishami/BudgetBuddy-V2/internal/log"
	"github.com/majdishami/BudgetBuddy-V2/internal/storage"
)

// TransactionService persists expenses and incomes and publishes export
// messages for the spreadsheet worker.
type TransactionService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewTransactionService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *TransactionService {
	return &TransactionService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// CreateExpense saves an expense locally and publishes an export message.
func (s *TransactionService) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	created, err := s.storage.CreateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}

	// Non-blocking: the expense is already saved locally.
	if err := s.publishExport(ctx, amqp.KindExpense, created.ID, 1); err != nil {
		slog.ErrorContext(ctx, "Failed to publish export message",
			log.FieldRecordKind, amqp.KindExpense,
			log.FieldRecordID, created.ID,
			log.FieldError, err)
	}

	return created, nil
}

// CreateIncome saves an income locally and publishes an export message.
func (s *TransactionService) CreateIncome(ctx context.Context, in core.Income) (core.Income, error) {
	created, err := s.storage.CreateIncome(ctx, in)
	if err != nil {
		return core.Income{}, fmt.Errorf("save income: %w", err)
	}

	if err := s.publishExport(ctx, amqp.KindIncome, created.ID, 1); err != nil {
		slog.ErrorContext(ctx, "Failed to publish export message",
			log.FieldRecordKind, amqp.KindIncome,
			log.FieldRecordID, created.ID,
			log.FieldError, err)
	}

	return created, nil
}

func (s *TransactionService) publishExport(ctx context.Context, kind string, id, version int64) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping export message")
		return nil
	}

	return s.amqpClient.PublishExport(ctx, kind, id, version)
}

// Close closes both storage and AMQP connections
func (s *TransactionService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close transaction service: %v", errs)
	}

	return nil
}
