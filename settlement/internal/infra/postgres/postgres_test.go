package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"custody/settlement/internal/domain"
	"custody/settlement/internal/ledger"
	"custody/settlement/internal/repository"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func TestClassify(t *testing.T) {
	other := errors.New("other")

	tests := []struct {
		name     string
		err      error
		notFound error
		want     error
	}{
		{"nil", nil, nil, nil},
		{"not found mapped", gorm.ErrRecordNotFound, domain.ErrWalletNotFound, domain.ErrWalletNotFound},
		{"serialization", &pgconn.PgError{Code: "40001"}, nil, domain.ErrTransientConflict},
		{"deadlock", fmt.Errorf("exec: %w", &pgconn.PgError{Code: "40P01"}), nil, domain.ErrTransientConflict},
		{"unique", &pgconn.PgError{Code: "23505"}, nil, domain.ErrTransientConflict},
		{"duplicated key", gorm.ErrDuplicatedKey, nil, domain.ErrTransientConflict},
		{"check violation", &pgconn.PgError{Code: "23514"}, nil, nil},
		{"passthrough", other, domain.ErrWalletNotFound, other},
	}

	for _, tt := range tests {
		got := classify(tt.err, tt.notFound)
		switch {
		case tt.err == nil:
			if got != nil {
				t.Fatalf("%s: want nil, got %v", tt.name, got)
			}
		case tt.want == nil:
			if errors.Is(got, domain.ErrTransientConflict) {
				t.Fatalf("%s: must not be transient: %v", tt.name, got)
			}
		default:
			if !errors.Is(got, tt.want) {
				t.Fatalf("%s: want %v, got %v", tt.name, tt.want, got)
			}
		}
	}
}

// Runs against a live database when SETTLEMENT_TEST_POSTGRES is set.
func testStore(t *testing.T) *Store {
	t.Helper()
	if os.Getenv("SETTLEMENT_TEST_POSTGRES") == "" {
		t.Skip("SETTLEMENT_TEST_POSTGRES not set")
	}

	db := InitTest(TEST_CONFIG)
	t.Cleanup(func() {
		if err := DropTables(db); err != nil {
			t.Log(err)
		}
	})
	return NewStore(db, repository.New())
}

func TestStoreVersionCheck(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	owner := gofakeit.UUID()
	w := &domain.Wallets{
		OwnerID:        &owner,
		PrimaryAddress: "0x" + gofakeit.Numerify("########################################"),
		GlobalBalance:  decimal.NewFromInt(10),
		Networks: []domain.WalletNetworks{
			{Network: "polygon", IsActive: true, Balance: decimal.NewFromInt(10)},
		},
	}
	w.Networks[0].Address = w.PrimaryAddress

	if err := s.InTx(ctx, func(tx ledger.Tx) error { return tx.CreateWallet(w) }); err != nil {
		t.Fatal(err)
	}

	var stale *domain.Wallets
	err := s.InTx(ctx, func(tx ledger.Tx) error {
		got, err := tx.WalletByAddress(domain.NETWORK_POLYGON, w.PrimaryAddress)
		if err != nil {
			return err
		}
		stale = got.Clone()

		got.GlobalBalance = decimal.NewFromInt(5)
		got.Network(domain.NETWORK_POLYGON).Balance = decimal.NewFromInt(5)
		return tx.SaveWallet(got)
	})
	if err != nil {
		t.Fatal(err)
	}

	err = s.InTx(ctx, func(tx ledger.Tx) error { return tx.SaveWallet(stale) })
	if !errors.Is(err, domain.ErrTransientConflict) {
		t.Fatalf("want conflict, got %v", err)
	}

	err = s.InTx(ctx, func(tx ledger.Tx) error {
		got, err := tx.WalletByOwner(owner)
		if err != nil {
			return err
		}
		if !got.GlobalBalance.Equal(decimal.NewFromInt(5)) || got.Version != 1 {
			t.Fatalf("wallet = %s v%d", got.GlobalBalance, got.Version)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	err = s.InTx(ctx, func(tx ledger.Tx) error {
		_, err := tx.TransactionByReference("missing")
		return err
	})
	if !errors.Is(err, domain.ErrTransactionNotFound) {
		t.Fatalf("want ErrTransactionNotFound, got %v", err)
	}
}
