// Package memstore is an in-memory ledger store with optimistic
// concurrency, used by tests and the "memory" storage driver.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"custody/settlement/internal/domain"
	"custody/settlement/internal/ledger"
)

// Hooks inject faults into transactions.
type Hooks struct {
	// called before a transaction row is staged; an error aborts the write
	OnCreateTransaction func(t *domain.Transactions) error
	// called before commit validation; an error aborts the commit
	OnCommit func() error
}

var _ ledger.Store = (*Store)(nil)

type Store struct {
	mu      sync.Mutex
	wallets map[uint]*domain.Wallets
	txs     map[string]*domain.Transactions // by reference
	hooks   atomic.Pointer[Hooks]

	nextWallet  atomic.Uint64
	nextNetwork atomic.Uint64
	nextTx      atomic.Uint64
}

func New() *Store {
	s := &Store{
		wallets: make(map[uint]*domain.Wallets),
		txs:     make(map[string]*domain.Transactions),
	}
	s.hooks.Store(&Hooks{})
	return s
}

func (s *Store) SetHooks(h Hooks) {
	s.hooks.Store(&h)
}

func (s *Store) InTx(ctx context.Context, fn func(tx ledger.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &memTx{
		store:  s,
		hooks:  s.hooks.Load(),
		staged: make(map[uint]*staged),
	}

	if err := fn(tx); err != nil {
		return err
	}
	return s.commit(tx)
}

// Wallets returns a snapshot of all committed wallets ordered by id.
func (s *Store) Wallets() []*domain.Wallets {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.Wallets, 0, len(s.wallets))
	for _, w := range s.wallets {
		out = append(out, w.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Transactions returns a snapshot of all committed rows ordered by id.
func (s *Store) Transactions() []domain.Transactions {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Transactions, 0, len(s.txs))
	for _, t := range s.txs {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) commit(tx *memTx) error {
	if tx.hooks.OnCommit != nil {
		if err := tx.hooks.OnCommit(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, st := range tx.staged {
		if st.created {
			continue
		}
		current, ok := s.wallets[id]
		if !ok || current.Version != st.base {
			return fmt.Errorf("%w: wallet %d modified concurrently", domain.ErrTransientConflict, id)
		}
	}

	if err := s.checkUnique(tx); err != nil {
		return err
	}

	now := time.Now()
	for id, st := range tx.staged {
		w := st.wallet.Clone()
		w.UpdatedAt = now
		s.wallets[id] = w
	}
	for _, t := range tx.txs {
		row := *t
		s.txs[row.Reference] = &row
	}
	return nil
}

// checkUnique mirrors the unique indexes of the postgres schema.
// s.mu must be held.
func (s *Store) checkUnique(tx *memTx) error {
	owners := make(map[string]uint)
	addrs := make(map[string]uint)

	key := func(n domain.WalletNetworks) string {
		addr := n.Address
		if domain.StrToNetwork(n.Network).Family() == domain.FAMILY_EVM {
			addr = strings.ToLower(addr)
		}
		return n.Network + "/" + addr
	}

	add := func(w *domain.Wallets) error {
		if w.OwnerID != nil {
			if other, ok := owners[*w.OwnerID]; ok && other != w.ID {
				return fmt.Errorf("%w: duplicate owner %s", domain.ErrTransientConflict, *w.OwnerID)
			}
			owners[*w.OwnerID] = w.ID
		}
		for _, n := range w.Networks {
			k := key(n)
			if other, ok := addrs[k]; ok && other != w.ID {
				return fmt.Errorf("%w: duplicate network address %s", domain.ErrTransientConflict, k)
			}
			addrs[k] = w.ID
		}
		return nil
	}

	for _, st := range tx.staged {
		if err := add(st.wallet); err != nil {
			return err
		}
	}
	for id, w := range s.wallets {
		if _, ok := tx.staged[id]; ok {
			continue
		}
		if err := add(w); err != nil {
			return err
		}
	}

	seen := make(map[string]bool, len(tx.txs))
	for _, t := range tx.txs {
		if _, ok := s.txs[t.Reference]; ok || seen[t.Reference] {
			return fmt.Errorf("%w: duplicate reference %s", domain.ErrTransientConflict, t.Reference)
		}
		seen[t.Reference] = true
	}
	return nil
}
