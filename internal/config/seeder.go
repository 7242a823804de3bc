package config

import (
	"log"

	"amfb-directdebit/internal/adapters/persistence/models"
	"amfb-directdebit/internal/core/domain"
	"amfb-directdebit/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedITAdmin(); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedITAdmin seeds the bootstrap IT user so the user-management endpoints
// are reachable on a fresh install. Development convenience only; production
// admins are created through the user endpoints afterwards.
func (s *Seeder) seedITAdmin() error {
	var count int64
	s.db.Model(&models.User{}).Where("role = ?", string(domain.RoleIT)).Count(&count)
	if count > 0 {
		return nil // IT user already exists
	}

	hashedPassword, err := password.Hash("ChangeMe123!")
	if err != nil {
		return err
	}

	admin := &models.User{
		FirstName: "System",
		LastName:  "Admin",
		Email:     "it@dap-alertgroup.com.ng",
		Password:  hashedPassword,
		Role:      string(domain.RoleIT),
		IsActive:  true,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("🌱 Seeded bootstrap IT user: %s", admin.Email)
	return nil
}
