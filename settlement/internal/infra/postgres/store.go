package postgres

import (
	"context"
	"fmt"

	"custody/settlement/internal/domain"
	"custody/settlement/internal/ledger"
	"custody/settlement/internal/repository"

	"gorm.io/gorm"
)

var _ ledger.Store = (*Store)(nil)

// Store runs ledger transactions on postgres. Isolation is the server
// default; lost updates are prevented by the wallets.version check.
type Store struct {
	db   *gorm.DB
	repo *repository.Repositories
}

func NewStore(db *gorm.DB, repo *repository.Repositories) *Store {
	return &Store{db: db, repo: repo}
}

func (s *Store) InTx(ctx context.Context, fn func(tx ledger.Tx) error) error {
	err := s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(&pgTx{db: db, repo: s.repo})
	})
	return classify(err, nil)
}

type pgTx struct {
	db   *gorm.DB
	repo *repository.Repositories
}

func (tx *pgTx) WalletByID(id uint) (*domain.Wallets, error) {
	w, err := tx.repo.Wallets.FindByID(tx.db, id)
	if err != nil {
		return nil, classify(err, domain.ErrWalletNotFound)
	}
	return w, nil
}

func (tx *pgTx) WalletByOwner(userID string) (*domain.Wallets, error) {
	w, err := tx.repo.Wallets.FindByOwner(tx.db, userID)
	if err != nil {
		return nil, classify(err, domain.ErrWalletNotFound)
	}
	return w, nil
}

func (tx *pgTx) WalletByAddress(network domain.Network, address string) (*domain.Wallets, error) {
	id, err := tx.repo.WalletNetworks.FindWalletID(tx.db, network, address)
	if err != nil {
		return nil, classify(err, domain.ErrWalletNotFound)
	}
	return tx.WalletByID(id)
}

func (tx *pgTx) WalletByPrimaryAddress(address string) (*domain.Wallets, error) {
	w, err := tx.repo.Wallets.FindByPrimaryAddress(tx.db, address)
	if err != nil {
		return nil, classify(err, domain.ErrWalletNotFound)
	}
	return w, nil
}

func (tx *pgTx) CreateWallet(w *domain.Wallets) error {
	w.Version = 0
	return classify(tx.repo.Wallets.Create(tx.db, w), nil)
}

func (tx *pgTx) SaveWallet(w *domain.Wallets) error {
	ok, err := tx.repo.Wallets.UpdateVersioned(tx.db, w)
	if err != nil {
		return classify(err, nil)
	}
	if !ok {
		return fmt.Errorf("%w: wallet %d version %d moved", domain.ErrTransientConflict, w.ID, w.Version)
	}

	for i := range w.Networks {
		entry := &w.Networks[i]
		entry.WalletID = w.ID

		if entry.ID == 0 {
			err = tx.repo.WalletNetworks.Create(tx.db, entry)
		} else {
			err = tx.repo.WalletNetworks.Update(tx.db, entry)
		}
		if err != nil {
			return classify(err, nil)
		}
	}

	w.Version++
	return nil
}

func (tx *pgTx) CreateTransaction(t *domain.Transactions) error {
	return classify(tx.repo.Transactions.Create(tx.db, t), nil)
}

func (tx *pgTx) TransactionByReference(reference string) (*domain.Transactions, error) {
	t, err := tx.repo.Transactions.FindByReference(tx.db, reference)
	if err != nil {
		return nil, classify(err, domain.ErrTransactionNotFound)
	}
	return t, nil
}

func (tx *pgTx) TransactionsByOwner(userID string, limit int) ([]domain.Transactions, error) {
	out, err := tx.repo.Transactions.FindByOwner(tx.db, userID, limit)
	if err != nil {
		return nil, classify(err, nil)
	}
	return out, nil
}
