package ledger

import (
	"context"

	"custody/settlement/internal/domain"
)

// Tx is one database transaction. Reads see the transaction's own writes.
// SaveWallet is the only way balances change; it fails with
// domain.ErrTransientConflict when the wallet's Version moved since it was read.
type Tx interface {
	WalletByID(id uint) (*domain.Wallets, error)
	WalletByOwner(userID string) (*domain.Wallets, error)
	WalletByAddress(network domain.Network, address string) (*domain.Wallets, error)
	WalletByPrimaryAddress(address string) (*domain.Wallets, error)
	CreateWallet(w *domain.Wallets) error
	SaveWallet(w *domain.Wallets) error

	CreateTransaction(t *domain.Transactions) error
	TransactionByReference(reference string) (*domain.Transactions, error)
	TransactionsByOwner(userID string, limit int) ([]domain.Transactions, error)
}

// Store runs fn inside one transaction, committing when fn returns nil.
// Lookups that find nothing return domain.ErrWalletNotFound or
// domain.ErrTransactionNotFound.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
}
