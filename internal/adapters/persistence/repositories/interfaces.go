package repositories

import (
	"context"
	"time"

	"amfb-directdebit/internal/adapters/persistence/models"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context) error
}

// MandateRepository defines local mandate projection repository interface.
// Rows are insert-only; there is no update method on purpose.
type MandateRepository interface {
	Create(ctx context.Context, mandate *models.Mandate) error
	GetByCode(ctx context.Context, mandateCode string) (*models.Mandate, error)
	List(ctx context.Context) ([]*models.Mandate, error)
	ListCreatedSince(ctx context.Context, since time.Time) ([]*models.Mandate, error)
}

// AuditLogRepository defines audit trail repository interface (append-only)
type AuditLogRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, limit int) ([]*models.AuditLog, error)
}
