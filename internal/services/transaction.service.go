package services

import (
	"context"

	"github.com/pawaovo/nfc-bracelet-fortune/internal/database"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/logger"

	"gorm.io/gorm"
)

// Transactor runs a unit of work atomically. The callback receives a
// context carrying the open transaction, which repositories honor via
// SQLWithContext.
type Transactor interface {
	Execute(ctx context.Context, fn func(ctx context.Context) error) error
}

// TransactionService wraps multi-write operations in a database
// transaction. A panic inside fn rolls back before re-panicking.
type TransactionService struct {
	db  database.DB
	log logger.Logger
}

func NewTransactionService(db database.DB) *TransactionService {
	return &TransactionService{
		db:  db,
		log: logger.New("transactionService"),
	}
}

func (s *TransactionService) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	log := s.log.Function("Execute")

	err := s.db.SQLWithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(database.ContextWithTx(ctx, tx))
	})
	if err != nil {
		return log.Err("transaction failed", err)
	}

	return nil
}
