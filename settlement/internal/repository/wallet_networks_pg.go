package repository

import (
	"custody/settlement/internal/domain"

	"gorm.io/gorm"
)

type WalletNetworksRepo struct {
}

func InitWalletNetworksRepo() *WalletNetworksRepo {
	return &WalletNetworksRepo{}
}

func (r *WalletNetworksRepo) Create(tx *gorm.DB, entry *domain.WalletNetworks) error {
	return tx.Create(entry).Error
}

func (r *WalletNetworksRepo) Update(tx *gorm.DB, entry *domain.WalletNetworks) error {
	return tx.Model(&domain.WalletNetworks{}).
		Where("id = ?", entry.ID).
		Updates(map[string]interface{}{
			"balance":   entry.Balance,
			"is_active": entry.IsActive,
		}).Error
}

// FindWalletID resolves the wallet tracking address on network. Evm
// addresses compare case-insensitively.
func (r *WalletNetworksRepo) FindWalletID(tx *gorm.DB, network domain.Network, address string) (uint, error) {
	var entry domain.WalletNetworks

	q := tx.Where("network = ?", network.ToString())
	if network.Family() == domain.FAMILY_EVM {
		q = q.Where("LOWER(address) = LOWER(?)", address)
	} else {
		q = q.Where("address = ?", address)
	}

	if err := q.First(&entry).Error; err != nil {
		return 0, err
	}
	return entry.WalletID, nil
}
