package services

import (
	"context"
	"net/url"

	"amfb-directdebit/internal/adapters/persistence/models"
)

// Note: NIBSSService implements Gateway; AuditService implements AuditRecorder;
// NotificationService implements Mailer.

// Gateway is the authenticated call surface to the NIBSS API
type Gateway interface {
	Call(ctx context.Context, method, endpoint string, payload any, params url.Values, files []FileUpload) APIResult
}

// AuditRecorder accepts audit events. Record must never block the caller on
// storage and never reports failure; audit loss is logged, not propagated.
type AuditRecorder interface {
	Record(user, action, details string)
}

// Mailer sends fire-and-forget transactional email
type Mailer interface {
	SendUserWelcome(user *models.User, rawPassword string)
}
