package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"amfb-directdebit/internal/adapters/persistence/models"
	"amfb-directdebit/internal/adapters/persistence/repositories"
	"amfb-directdebit/internal/core/domain"
	"amfb-directdebit/internal/pkg/password"

	"gorm.io/gorm"
)

// User errors
var (
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrWeakPassword      = errors.New("password does not meet requirements")
	ErrInvalidRole       = errors.New("invalid role")
)

// UserService handles user management business logic
type UserService struct {
	userRepo repositories.UserRepository
	audit    AuditRecorder
	mailer   Mailer
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository, audit AuditRecorder, mailer Mailer) *UserService {
	return &UserService{
		userRepo: userRepo,
		audit:    audit,
		mailer:   mailer,
	}
}

// CreateUserInput represents user creation input
type CreateUserInput struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	Role      string `json:"role" validate:"required"`
}

// UpdateUserInput represents user update input
type UpdateUserInput struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Role      *string `json:"role"`
	IsActive  *bool   `json:"is_active"`
}

// Create creates a new user, emails the default password and records the
// audit event. Email delivery is best effort.
func (s *UserService) Create(ctx context.Context, principal domain.Principal, input *CreateUserInput) (*models.UserResponse, error) {
	if !domain.ValidRole(input.Role) {
		return nil, ErrInvalidRole
	}
	if !password.Validate(input.Password) {
		return nil, ErrWeakPassword
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserAlreadyExists
	}

	hashedPassword, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Password:  hashedPassword,
		Role:      input.Role,
		IsActive:  true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.mailer.SendUserWelcome(user, input.Password)
	s.audit.Record(principal.Email, ActionCreateUser,
		fmt.Sprintf("User created %s account", user.Email))

	log.Printf("✅ User created: %s [%s]", user.Email, user.Role)
	return user.ToResponse(), nil
}

// GetByID gets a user by ID
func (s *UserService) GetByID(ctx context.Context, id string) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user.ToResponse(), nil
}

// List lists all users
func (s *UserService) List(ctx context.Context) ([]*models.UserResponse, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]*models.UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, user.ToResponse())
	}
	return responses, nil
}

// Update updates a user's details
func (s *UserService) Update(ctx context.Context, principal domain.Principal, id string, input *UpdateUserInput) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Role != nil {
		if !domain.ValidRole(*input.Role) {
			return nil, ErrInvalidRole
		}
		user.Role = *input.Role
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.audit.Record(principal.Email, ActionUpdateUser,
		fmt.Sprintf("User updated %q information", user.FullName()))

	return user.ToResponse(), nil
}

// Delete soft-deletes a user
func (s *UserService) Delete(ctx context.Context, principal domain.Principal, id string) error {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.audit.Record(principal.Email, ActionDeleteUser,
		fmt.Sprintf("User deleted %s account", user.Email))

	log.Printf("✅ User deleted: %s", user.Email)
	return nil
}
