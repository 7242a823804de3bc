package repositories

import (
	"context"
	"time"

	"amfb-directdebit/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// mandateRepository implements MandateRepository interface
type mandateRepository struct {
	db *gorm.DB
}

// NewMandateRepository creates a new mandate repository
func NewMandateRepository(db *gorm.DB) MandateRepository {
	return &mandateRepository{db: db}
}

// Create inserts a confirmed mandate projection. The insert is its own
// transaction; there is no cross-system transaction with NIBSS.
func (r *mandateRepository) Create(ctx context.Context, mandate *models.Mandate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(mandate).Error
	})
}

// GetByCode gets a mandate by its upstream-assigned code
func (r *mandateRepository) GetByCode(ctx context.Context, mandateCode string) (*models.Mandate, error) {
	var mandate models.Mandate
	err := r.db.WithContext(ctx).Where("mandate_code = ?", mandateCode).First(&mandate).Error
	if err != nil {
		return nil, err
	}
	return &mandate, nil
}

// List lists all local mandates, most recently created first
func (r *mandateRepository) List(ctx context.Context) ([]*models.Mandate, error) {
	var mandates []*models.Mandate
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&mandates).Error
	return mandates, err
}

// ListCreatedSince lists mandates created after the given instant
func (r *mandateRepository) ListCreatedSince(ctx context.Context, since time.Time) ([]*models.Mandate, error) {
	var mandates []*models.Mandate
	err := r.db.WithContext(ctx).
		Where("created_at >= ?", since).
		Order("created_at DESC").
		Find(&mandates).Error
	return mandates, err
}
