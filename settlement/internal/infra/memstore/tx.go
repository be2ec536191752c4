package memstore

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"custody/settlement/internal/domain"
)

type staged struct {
	wallet  *domain.Wallets
	base    int64 // committed version the write was based on
	created bool
}

type memTx struct {
	store  *Store
	hooks  *Hooks
	staged map[uint]*staged
	txs    []*domain.Transactions
}

// view returns a private copy of wallet id as this transaction sees it.
func (tx *memTx) view(id uint) (*domain.Wallets, bool) {
	if st, ok := tx.staged[id]; ok {
		return st.wallet.Clone(), true
	}

	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()

	w, ok := tx.store.wallets[id]
	if !ok {
		return nil, false
	}
	return w.Clone(), true
}

// find returns the first wallet matching pred, staged writes first.
func (tx *memTx) find(pred func(w *domain.Wallets) bool) (*domain.Wallets, error) {
	ids := make([]uint, 0, len(tx.staged))
	for id := range tx.staged {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		if w := tx.staged[id].wallet; pred(w) {
			return w.Clone(), nil
		}
	}

	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()

	committed := make([]uint, 0, len(tx.store.wallets))
	for id := range tx.store.wallets {
		if _, ok := tx.staged[id]; !ok {
			committed = append(committed, id)
		}
	}
	sort.Slice(committed, func(i, j int) bool { return committed[i] < committed[j] })

	for _, id := range committed {
		if w := tx.store.wallets[id]; pred(w) {
			return w.Clone(), nil
		}
	}
	return nil, domain.ErrWalletNotFound
}

func (tx *memTx) WalletByID(id uint) (*domain.Wallets, error) {
	w, ok := tx.view(id)
	if !ok {
		return nil, domain.ErrWalletNotFound
	}
	return w, nil
}

func (tx *memTx) WalletByOwner(userID string) (*domain.Wallets, error) {
	return tx.find(func(w *domain.Wallets) bool {
		return w.OwnerID != nil && *w.OwnerID == userID
	})
}

func (tx *memTx) WalletByAddress(network domain.Network, address string) (*domain.Wallets, error) {
	return tx.find(func(w *domain.Wallets) bool {
		return w.Tracks(network, address)
	})
}

func (tx *memTx) WalletByPrimaryAddress(address string) (*domain.Wallets, error) {
	return tx.find(func(w *domain.Wallets) bool {
		return strings.EqualFold(w.PrimaryAddress, address)
	})
}

func (tx *memTx) CreateWallet(w *domain.Wallets) error {
	now := time.Now()

	w.ID = uint(tx.store.nextWallet.Add(1))
	w.Version = 0
	w.CreatedAt, w.UpdatedAt = now, now
	for i := range w.Networks {
		w.Networks[i].ID = uint(tx.store.nextNetwork.Add(1))
		w.Networks[i].WalletID = w.ID
	}

	tx.staged[w.ID] = &staged{wallet: w.Clone(), created: true}
	return nil
}

func (tx *memTx) SaveWallet(w *domain.Wallets) error {
	st, ok := tx.staged[w.ID]

	var current int64
	switch {
	case ok:
		current = st.wallet.Version
	default:
		tx.store.mu.Lock()
		committed, found := tx.store.wallets[w.ID]
		if found {
			current = committed.Version
		}
		tx.store.mu.Unlock()
		if !found {
			return domain.ErrWalletNotFound
		}
		st = &staged{base: current}
	}

	if w.Version != current {
		return fmt.Errorf("%w: wallet %d version %d, stored %d", domain.ErrTransientConflict, w.ID, w.Version, current)
	}

	for i := range w.Networks {
		if w.Networks[i].ID == 0 {
			w.Networks[i].ID = uint(tx.store.nextNetwork.Add(1))
		}
		w.Networks[i].WalletID = w.ID
	}

	w.Version++
	st.wallet = w.Clone()
	tx.staged[w.ID] = st
	return nil
}

func (tx *memTx) CreateTransaction(t *domain.Transactions) error {
	if tx.hooks.OnCreateTransaction != nil {
		if err := tx.hooks.OnCreateTransaction(t); err != nil {
			return err
		}
	}

	for _, other := range tx.txs {
		if other.Reference == t.Reference {
			return fmt.Errorf("%w: duplicate reference %s", domain.ErrTransientConflict, t.Reference)
		}
	}

	t.ID = uint(tx.store.nextTx.Add(1))
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}

	row := *t
	tx.txs = append(tx.txs, &row)
	return nil
}

func (tx *memTx) TransactionByReference(reference string) (*domain.Transactions, error) {
	for _, t := range tx.txs {
		if t.Reference == reference {
			row := *t
			return &row, nil
		}
	}

	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()

	t, ok := tx.store.txs[reference]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	row := *t
	return &row, nil
}

func (tx *memTx) TransactionsByOwner(userID string, limit int) ([]domain.Transactions, error) {
	var out []domain.Transactions

	match := func(t *domain.Transactions) {
		if t.OwnerUserID != nil && *t.OwnerUserID == userID {
			out = append(out, *t)
		}
	}

	for _, t := range tx.txs {
		match(t)
	}

	tx.store.mu.Lock()
	for _, t := range tx.store.txs {
		match(t)
	}
	tx.store.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
