package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Wallets is one custodial wallet. OwnerID is nil for wallets created for
// recipient addresses no user owns yet.
type Wallets struct {
	ID                uint             `gorm:"primaryKey"`
	OwnerID           *string          `gorm:"size:64;uniqueIndex"`
	PrimaryAddress    string           `gorm:"not null;index"`
	PrimaryPrivateKey string           // shared evm key, empty for unowned wallets
	GlobalBalance     decimal.Decimal  `gorm:"type:numeric;default:0"`
	IsFrozen          bool             `gorm:"not null"`
	Version           int64            `gorm:"not null"` // optimistic concurrency counter
	Networks          []WalletNetworks `gorm:"foreignKey:WalletID"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type WalletNetworks struct {
	ID         uint            `gorm:"primaryKey"`
	WalletID   uint            `gorm:"not null;index"`
	Network    string          `gorm:"type:text;not null;uniqueIndex:idx_network_address"`
	Address    string          `gorm:"not null;uniqueIndex:idx_network_address"`
	PrivateKey string          // private key or placeholder
	IsActive   bool            `gorm:"not null"`
	Balance    decimal.Decimal `gorm:"type:numeric;default:0"`
	Position   int             `gorm:"not null"`
}

func (w *Wallets) IsOwned() bool {
	return w.OwnerID != nil
}

func (w *Wallets) Owner() string {
	if w.OwnerID == nil {
		return ""
	}
	return *w.OwnerID
}

// Network returns the entry for n or nil. The pointer aliases w.Networks.
func (w *Wallets) Network(n Network) *WalletNetworks {
	for i := range w.Networks {
		if w.Networks[i].Network == n.ToString() {
			return &w.Networks[i]
		}
	}
	return nil
}

// Tracks reports whether addr is one of the wallet's addresses on n.
func (w *Wallets) Tracks(n Network, addr string) bool {
	entry := w.Network(n)
	if entry == nil {
		return false
	}
	if n.Family() == FAMILY_EVM {
		return strings.EqualFold(entry.Address, addr)
	}
	return entry.Address == addr
}

func (w *Wallets) Clone() *Wallets {
	c := *w
	if w.OwnerID != nil {
		owner := *w.OwnerID
		c.OwnerID = &owner
	}
	c.Networks = make([]WalletNetworks, len(w.Networks))
	copy(c.Networks, w.Networks)
	return &c
}
