package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ethaccount/zksync/src/domain"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MemoryJournal is an in-memory stand-in for the transaction repository.
type MemoryJournal struct {
	mu      sync.Mutex
	records map[uuid.UUID]*domain.TransactionModel
}

func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{records: make(map[uuid.UUID]*domain.TransactionModel)}
}

func (j *MemoryJournal) Create(_ context.Context, tx *domain.TransactionModel) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	tx.ID = uuid.New()
	tx.CreatedAt = time.Now()
	tx.UpdatedAt = tx.CreatedAt
	stored := *tx
	j.records[tx.ID] = &stored
	return nil
}

func (j *MemoryJournal) FindByID(_ context.Context, id uuid.UUID) (*domain.TransactionModel, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	record, ok := j.records[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *record
	return &out, nil
}

func (j *MemoryJournal) FindByHash(_ context.Context, hash common.Hash) (*domain.TransactionModel, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	for _, record := range j.records {
		if record.TxHash != nil && *record.TxHash == hash.Hex() {
			out := *record
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (j *MemoryJournal) FindBySender(_ context.Context, sender common.Address, limit int) ([]*domain.TransactionModel, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	out := []*domain.TransactionModel{}
	for _, record := range j.records {
		if record.FromAddress == sender.Hex() {
			r := *record
			out = append(out, &r)
		}
	}
	sort.Slice(out, func(a, b int) bool {
		return out[a].CreatedAt.After(out[b].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (j *MemoryJournal) UpdateStatus(_ context.Context, id uuid.UUID, status domain.TxStatus, hash *common.Hash, errMsg *string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	record, ok := j.records[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	record.Status = status
	if hash != nil {
		h := hash.Hex()
		record.TxHash = &h
	}
	if status == domain.TxStatusFailed && errMsg != nil {
		msg := *errMsg
		record.ErrMsg = &msg
	}
	record.UpdatedAt = time.Now()
	return nil
}
