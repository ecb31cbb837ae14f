package domain

import (
	"time"

	"github.com/google/uuid"
)

type TxStatus string

const (
	TxStatusSerialized TxStatus = "serialized"
	TxStatusSigned     TxStatus = "signed"
	TxStatusBroadcast  TxStatus = "broadcast"
	TxStatusFailed     TxStatus = "failed"
)

// TransactionModel is a journal entry for a serialized 0x71 envelope.
type TransactionModel struct {
	ID          uuid.UUID `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ChainID     int64     `gorm:"not null" json:"chainId"`
	FromAddress string    `gorm:"type:varchar(42);not null;index" json:"from"`
	ToAddress   *string   `gorm:"type:varchar(42)" json:"to,omitempty"`
	Nonce       string    `gorm:"type:varchar(78);not null" json:"nonce"`
	TxHash      *string   `gorm:"type:varchar(66);uniqueIndex" json:"hash,omitempty"`
	Raw         []byte    `gorm:"type:bytea;not null" json:"-"`
	Status      TxStatus  `gorm:"type:varchar(20);not null" json:"status"`
	ErrMsg      *string   `gorm:"type:text" json:"errMsg,omitempty"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (TransactionModel) TableName() string {
	return "transactions"
}
