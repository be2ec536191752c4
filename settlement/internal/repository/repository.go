package repository

import (
	"custody/settlement/internal/domain"

	"gorm.io/gorm"
)

type Wallets interface {
	Create(tx *gorm.DB, wallet *domain.Wallets) error
	FindByID(tx *gorm.DB, id uint) (*domain.Wallets, error)
	FindByOwner(tx *gorm.DB, userID string) (*domain.Wallets, error)
	FindByPrimaryAddress(tx *gorm.DB, address string) (*domain.Wallets, error)
	// UpdateVersioned writes balances and flags if the stored version still
	// equals wallet.Version. ok is false when it moved.
	UpdateVersioned(tx *gorm.DB, wallet *domain.Wallets) (ok bool, err error)
}

type WalletNetworks interface {
	Create(tx *gorm.DB, entry *domain.WalletNetworks) error
	Update(tx *gorm.DB, entry *domain.WalletNetworks) error
	FindWalletID(tx *gorm.DB, network domain.Network, address string) (uint, error)
}

type Transactions interface {
	Create(tx *gorm.DB, t *domain.Transactions) error
	FindByReference(tx *gorm.DB, reference string) (*domain.Transactions, error)
	FindByOwner(tx *gorm.DB, userID string, limit int) ([]domain.Transactions, error)
}

type Repositories struct {
	Wallets        Wallets
	WalletNetworks WalletNetworks
	Transactions   Transactions
}

func New() *Repositories {
	return &Repositories{
		Wallets:        InitWalletsRepo(),
		WalletNetworks: InitWalletNetworksRepo(),
		Transactions:   InitTransactionsRepo(),
	}
}
