package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const CURRENCY_USDT = "USDT"

type TxKind string

const (
	TX_KIND_SEND    TxKind = "send"
	TX_KIND_RECEIVE TxKind = "receive"
	TX_KIND_MINT    TxKind = "mint"
	TX_KIND_BRIDGE  TxKind = "bridge"
)

type TxStatus string

const (
	TX_STATUS_PENDING   TxStatus = "pending"
	TX_STATUS_COMPLETED TxStatus = "completed"
	TX_STATUS_FAILED    TxStatus = "failed"
)

// Transactions is an append-only ledger entry. Amount is negative for outflows.
type Transactions struct {
	ID          uint            `gorm:"primaryKey"`
	OwnerUserID *string         `gorm:"size:64;index"`
	WalletID    uint            `gorm:"not null;index"`
	Kind        TxKind          `gorm:"type:text;not null"`
	Amount      decimal.Decimal `gorm:"type:numeric;not null"`
	Currency    string          `gorm:"type:text;not null"`
	Status      TxStatus        `gorm:"type:text;not null"`
	Reference   string          `gorm:"uniqueIndex;not null"`
	Metadata    TxMetadata      `gorm:"serializer:json"`
	CreatedAt   time.Time       `gorm:"index"`
}

type TxMetadata struct {
	Network     string   `json:"network,omitempty"`
	Fee         string   `json:"fee,omitempty"`
	FromAddress string   `json:"from_address,omitempty"`
	ToAddress   string   `json:"to_address,omitempty"`
	FromNetwork string   `json:"from_network,omitempty"`
	ToNetwork   string   `json:"to_network,omitempty"`
	Related     string   `json:"related,omitempty"` // reference of the counterpart leg
	TxHashes    []string `json:"tx_hashes,omitempty"`
}
