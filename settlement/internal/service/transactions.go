package service

import (
	"context"

	"custody/settlement/internal/domain"
	"custody/settlement/internal/ledger"
)

const (
	DEFAULT_LIST_LIMIT = 50
	MAX_LIST_LIMIT     = 500
)

type TransactionsService struct {
	store ledger.Store
}

func NewTransactionsService(store ledger.Store) *TransactionsService {
	return &TransactionsService{store: store}
}

// Get resolves a reference, e.g. after a lost response.
func (s *TransactionsService) Get(ctx context.Context, reference string) (*domain.TransactionView, error) {
	var t *domain.Transactions
	err := s.store.InTx(ctx, func(tx ledger.Tx) (err error) {
		t, err = tx.TransactionByReference(reference)
		return err
	})
	if err != nil {
		return nil, err
	}
	return domain.NewTransactionView(t), nil
}

// List returns the newest transactions of userID first.
func (s *TransactionsService) List(ctx context.Context, userID string, limit int) ([]domain.TransactionView, error) {
	if userID == "" {
		return nil, domain.Validationf(domain.ErrMsgEmptyUserID)
	}
	if limit <= 0 {
		limit = DEFAULT_LIST_LIMIT
	}
	limit = min(limit, MAX_LIST_LIMIT)

	var rows []domain.Transactions
	err := s.store.InTx(ctx, func(tx ledger.Tx) (err error) {
		rows, err = tx.TransactionsByOwner(userID, limit)
		return err
	})
	if err != nil {
		return nil, err
	}

	out := make([]domain.TransactionView, 0, len(rows))
	for i := range rows {
		out = append(out, *domain.NewTransactionView(&rows[i]))
	}
	return out, nil
}
