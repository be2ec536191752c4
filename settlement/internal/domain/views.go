package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// USDT precision
const TOKEN_DECIMALS = 6

func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(TOKEN_DECIMALS)
}

type NetworkView struct {
	Network       string `json:"network"`
	Address       string `json:"address"`
	IsActive      bool   `json:"is_active"`
	Balance       string `json:"balance"`
	StoredBalance string `json:"stored_balance"`
	Error         string `json:"error,omitempty"` // set when the live read failed
}

type WalletView struct {
	ID             uint          `json:"id"`
	OwnerID        string        `json:"owner_id,omitempty"`
	PrimaryAddress string        `json:"primary_address"`
	GlobalBalance  string        `json:"global_balance"`
	IsFrozen       bool          `json:"is_frozen"`
	Networks       []NetworkView `json:"networks"`
}

func NewWalletView(w *Wallets) *WalletView {
	view := &WalletView{
		ID:             w.ID,
		OwnerID:        w.Owner(),
		PrimaryAddress: w.PrimaryAddress,
		GlobalBalance:  FormatAmount(w.GlobalBalance),
		IsFrozen:       w.IsFrozen,
		Networks:       make([]NetworkView, 0, len(w.Networks)),
	}
	for _, n := range w.Networks {
		view.Networks = append(view.Networks, NetworkView{
			Network:       n.Network,
			Address:       n.Address,
			IsActive:      n.IsActive,
			Balance:       FormatAmount(n.Balance),
			StoredBalance: FormatAmount(n.Balance),
		})
	}
	return view
}

type Balances struct {
	Global  string            `json:"global"`
	Network map[string]string `json:"network"`
}

func NewBalances(w *Wallets, networks ...Network) Balances {
	b := Balances{Global: FormatAmount(w.GlobalBalance), Network: make(map[string]string, len(networks))}
	for _, n := range networks {
		if entry := w.Network(n); entry != nil {
			b.Network[n.ToString()] = FormatAmount(entry.Balance)
		}
	}
	return b
}

type TransactionView struct {
	Reference string     `json:"reference"`
	Kind      string     `json:"kind"`
	Amount    string     `json:"amount"`
	Currency  string     `json:"currency"`
	Status    string     `json:"status"`
	Metadata  TxMetadata `json:"metadata"`
	CreatedAt time.Time  `json:"created_at"`
}

func NewTransactionView(t *Transactions) *TransactionView {
	return &TransactionView{
		Reference: t.Reference,
		Kind:      string(t.Kind),
		Amount:    FormatAmount(t.Amount),
		Currency:  t.Currency,
		Status:    string(t.Status),
		Metadata:  t.Metadata,
		CreatedAt: t.CreatedAt,
	}
}

// CrossNetworkWarning is returned instead of settling when the recipient
// address belongs to another network family. Re-send with override to proceed.
type CrossNetworkWarning struct {
	SelectedNetwork string `json:"selected_network"`
	DetectedNetwork string `json:"detected_network"`
	Address         string `json:"address"`
}

type SendResult struct {
	Transaction *Transactions        `json:"-"`
	View        *TransactionView     `json:"transaction,omitempty"`
	Balances    *Balances            `json:"balances,omitempty"`
	Warning     *CrossNetworkWarning `json:"warning,omitempty"`
}

func (r *SendResult) IsWarning() bool {
	return r.Warning != nil
}

type BridgeResult struct {
	Reference string   `json:"reference"`
	Balances  Balances `json:"balances"`
}

type MintReceipt struct {
	Network      string   `json:"network"`
	Address      string   `json:"address"`
	Amount       string   `json:"amount"`
	MintTxHash   string   `json:"mint_tx_hash"`
	TransferHash string   `json:"transfer_tx_hash"`
	Reference    string   `json:"reference"`
	Balances     Balances `json:"balances"`
}
