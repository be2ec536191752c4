package repository

import (
	"custody/settlement/internal/domain"

	"gorm.io/gorm"
)

type TransactionsRepo struct {
}

func InitTransactionsRepo() *TransactionsRepo {
	return &TransactionsRepo{}
}

func (r *TransactionsRepo) Create(tx *gorm.DB, t *domain.Transactions) error {
	return tx.Create(t).Error
}

func (r *TransactionsRepo) FindByReference(tx *gorm.DB, reference string) (*domain.Transactions, error) {
	var t domain.Transactions
	return &t, tx.Where(&domain.Transactions{Reference: reference}).First(&t).Error
}

func (r *TransactionsRepo) FindByOwner(tx *gorm.DB, userID string, limit int) ([]domain.Transactions, error) {
	var out []domain.Transactions

	q := tx.Where("owner_user_id = ?", userID).Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
