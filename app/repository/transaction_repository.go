package repository

import (
	"context"
	"errors"

	"github.com/ManuelReschke/PointsBridge/app/models"
	"gorm.io/gorm"
)

// transactionRepository implements the TransactionRepository interface
type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository instance
func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

// CreateTransaction inserts a ledger row. A duplicate transaction id fails
// with ErrConflict and leaves the stored row untouched.
func (r *transactionRepository) CreateTransaction(ctx context.Context, tx models.Transaction) (*models.Transaction, error) {
	if err := r.db.WithContext(ctx).Create(&tx).Error; err != nil {
		return nil, translateError(err, "create transaction")
	}
	return &tx, nil
}

func (r *transactionRepository) GetTransactions(ctx context.Context, orgID string) ([]models.Transaction, error) {
	txs := make([]models.Transaction, 0)
	err := r.db.WithContext(ctx).
		Where("loke_organization_id = ?", orgID).
		Order("created_at ASC").
		Find(&txs).Error
	return txs, err
}

func (r *transactionRepository) GetTransactionByID(ctx context.Context, transactionID string) (*models.Transaction, error) {
	var tx models.Transaction
	err := r.db.WithContext(ctx).Where("transaction_id = ?", transactionID).First(&tx).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tx, nil
}
