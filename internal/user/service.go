package user

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"commerce-api/internal/password"
)

// SignUpParams carries the fields needed to create a user record.
type SignUpParams struct {
	Email    string
	Password string
	Name     string
}

// Service implements directory operations over a Repository. It holds no
// mutable state and is safe for concurrent use.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// NewService wires a directory Service.
func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// SignUp creates a user record. The email must not belong to a live user;
// passwords are stored bcrypt-hashed, never in plaintext.
func (s *Service) SignUp(ctx context.Context, params SignUpParams) (*User, error) {
	exists, err := s.repo.ExistsByEmail(ctx, params.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		s.log.Warn("signup rejected, duplicate email", "email", params.Email)
		return nil, ErrDuplicateEmail
	}

	hash, err := password.Hash(params.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	created, err := s.repo.Create(ctx, &User{
		PublicID:     uuid.NewString(),
		Email:        params.Email,
		PasswordHash: hash,
		Name:         params.Name,
		Role:         RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("user created", "public_id", created.PublicID)
	return created, nil
}

// FindByPublicID looks up a live user by external identifier.
func (s *Service) FindByPublicID(ctx context.Context, publicID string) (*User, error) {
	return s.repo.FindByPublicID(ctx, publicID)
}

// FindByEmail looks up a live user by email.
func (s *Service) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.FindByEmail(ctx, email)
}

// VerifyCredentials checks a login attempt. A missing user and a wrong
// password are indistinguishable to the caller.
func (s *Service) VerifyCredentials(ctx context.Context, email, plain string) (*User, error) {
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !password.Verify(u.PasswordHash, plain) {
		s.log.Warn("login rejected, bad password", "public_id", u.PublicID)
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Deactivate soft-deletes a user. The record stays in the table but every
// directory lookup treats it as absent from then on.
func (s *Service) Deactivate(ctx context.Context, publicID string) error {
	if err := s.repo.SoftDelete(ctx, publicID); err != nil {
		return err
	}
	s.log.Info("user deactivated", "public_id", publicID)
	return nil
}
