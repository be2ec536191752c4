package repository

import (
	"time"

	"custody/settlement/internal/domain"

	"gorm.io/gorm"
)

type WalletsRepo struct {
}

func InitWalletsRepo() *WalletsRepo {
	return &WalletsRepo{}
}

func withNetworks(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Networks", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

// Create inserts the wallet together with its network entries.
func (r *WalletsRepo) Create(tx *gorm.DB, wallet *domain.Wallets) error {
	return tx.Create(wallet).Error
}

func (r *WalletsRepo) FindByID(tx *gorm.DB, id uint) (*domain.Wallets, error) {
	var wallet domain.Wallets
	return &wallet, withNetworks(tx).First(&wallet, id).Error
}

func (r *WalletsRepo) FindByOwner(tx *gorm.DB, userID string) (*domain.Wallets, error) {
	var wallet domain.Wallets
	return &wallet, withNetworks(tx).Where("owner_id = ?", userID).First(&wallet).Error
}

func (r *WalletsRepo) FindByPrimaryAddress(tx *gorm.DB, address string) (*domain.Wallets, error) {
	var wallet domain.Wallets
	return &wallet, withNetworks(tx).Where("LOWER(primary_address) = LOWER(?)", address).Order("id ASC").First(&wallet).Error
}

func (r *WalletsRepo) UpdateVersioned(tx *gorm.DB, wallet *domain.Wallets) (bool, error) {
	res := tx.Model(&domain.Wallets{}).
		Where("id = ? AND version = ?", wallet.ID, wallet.Version).
		Updates(map[string]interface{}{
			"global_balance": wallet.GlobalBalance,
			"is_frozen":      wallet.IsFrozen,
			"version":        gorm.Expr("version + 1"),
			"updated_at":     time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
