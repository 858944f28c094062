package services

import (
	"context"

	"advisorapi/internal/database"
	"advisorapi/internal/logger"

	"gorm.io/gorm"
)

type transactionKey struct{}

type TransactionService struct {
	db  database.DB
	log logger.Logger
}

func NewTransactionService(db database.DB) *TransactionService {
	return &TransactionService{
		db:  db,
		log: logger.New("TransactionService"),
	}
}

// Execute runs fn inside a database transaction carried on the context handed
// to fn. Repositories pick it up through GetTransaction. Nested calls reuse the
// outer transaction, and without a SQL database fn runs directly.
func (s *TransactionService) Execute(ctx context.Context, fn func(txCtx context.Context) error) error {
	if s.db.SQL == nil {
		return fn(ctx)
	}

	if _, ok := GetTransaction(ctx); ok {
		return fn(ctx)
	}

	return s.db.SQLWithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, transactionKey{}, tx))
	})
}

func GetTransaction(ctx context.Context) (*gorm.DB, bool) {
	tx, ok := ctx.Value(transactionKey{}).(*gorm.DB)
	return tx, ok && tx != nil
}
