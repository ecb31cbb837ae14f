package repository

import (
	"context"

	"github.com/ethaccount/zksync/src/domain"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create inserts tx and fills its generated ID and timestamps.
func (r *TransactionRepository) Create(ctx context.Context, tx *domain.TransactionModel) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

// FindByID retrieves a transaction by its ID. A missing row yields
// gorm.ErrRecordNotFound.
func (r *TransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.TransactionModel, error) {
	var tx domain.TransactionModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&tx).Error; err != nil {
		return nil, err
	}
	return &tx, nil
}

// FindByHash retrieves a transaction by its zkSync transaction hash.
func (r *TransactionRepository) FindByHash(ctx context.Context, hash common.Hash) (*domain.TransactionModel, error) {
	var tx domain.TransactionModel
	if err := r.db.WithContext(ctx).Where("tx_hash = ?", hash.Hex()).First(&tx).Error; err != nil {
		return nil, err
	}
	return &tx, nil
}

// FindBySender lists the transactions of sender, newest first. A limit of
// zero or less returns all of them.
func (r *TransactionRepository) FindBySender(ctx context.Context, sender common.Address, limit int) ([]*domain.TransactionModel, error) {
	var txs []*domain.TransactionModel
	query := r.db.WithContext(ctx).Where("from_address = ?", sender.Hex()).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

// UpdateStatus sets the status of a transaction. The hash is recorded when
// given, and errMsg only when the status is failed.
func (r *TransactionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TxStatus, hash *common.Hash, errMsg *string) error {
	updates := map[string]interface{}{
		"status": status,
	}
	if hash != nil {
		updates["tx_hash"] = hash.Hex()
	}
	if status == domain.TxStatusFailed && errMsg != nil {
		updates["err_msg"] = *errMsg
	}

	result := r.db.WithContext(ctx).Model(&domain.TransactionModel{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
