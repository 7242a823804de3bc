package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ============================================================
// Auth & User Tables
// ============================================================

// User represents users table
type User struct {
	ID        string         `gorm:"type:char(36);primaryKey" json:"id"`
	FirstName string         `gorm:"size:100;not null" json:"first_name"`
	LastName  string         `gorm:"size:100;not null" json:"last_name"`
	Email     string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	Role      string         `gorm:"size:50;default:'OTHERS'" json:"role"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// BeforeCreate assigns a UUID primary key
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// FullName returns the display name for audit entries and emails
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// UserResponse DTO
type UserResponse struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    string     `gorm:"type:char(36);index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Mandate Tables
// ============================================================

// Mandate is the local projection of a mandate confirmed by NIBSS. The
// mandate code is assigned upstream and is the primary key; rows are written
// once after upstream confirmation and never mutated.
type Mandate struct {
	MandateCode    string    `gorm:"size:255;primaryKey" json:"mandateCode"`
	Branch         string    `gorm:"size:255;not null" json:"branch"`
	ProductID      int       `gorm:"not null" json:"productId"`
	AccountNumber  string    `gorm:"size:10;not null" json:"accountNumber"`
	AccountName    string    `gorm:"size:255;not null" json:"accountName"`
	PayerName      string    `gorm:"size:255;not null" json:"payerName"`
	PayerEmail     string    `gorm:"size:255;not null" json:"payerEmail"`
	Amount         int       `gorm:"not null" json:"amount"`
	PhoneNumber    string    `gorm:"size:11;not null" json:"phoneNumber"`
	SubscriberCode string    `gorm:"size:255;not null" json:"subscriberCode"`
	StartDate      time.Time `gorm:"type:date;not null" json:"startDate"`
	EndDate        time.Time `gorm:"type:date;not null" json:"endDate"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Mandate) TableName() string {
	return "mandates"
}

// ============================================================
// Audit Trail
// ============================================================

// AuditLog is the append-only activity trail
type AuditLog struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`
	User      string    `gorm:"size:255;not null" json:"user"`
	Action    string    `gorm:"size:255;not null" json:"action"`
	Details   string    `gorm:"type:text" json:"details"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// BeforeCreate assigns a UUID primary key
func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// AutoMigrate creates or updates all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Mandate{},
		&AuditLog{},
	)
}
