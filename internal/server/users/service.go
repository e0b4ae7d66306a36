package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mzarins/invsync/internal/common"
	"github.com/mzarins/invsync/internal/server/auth"
	"github.com/mzarins/invsync/internal/server/config"
)

// Service implements the authentication collaborator: register, login,
// password changes, and account management. Tokens are HS256 JWTs carrying
// the user id.
type Service struct {
	repo                        Repository
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
}

func NewService(repo Repository, cfg *config.Config) *Service {
	return &Service{
		repo:                        repo,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
	}
}

func validateNewUser(username, password string, role Role, permissions Permissions) error {
	if username == "" || password == "" {
		return fmt.Errorf("%w: username and password are required", common.ErrValidation)
	}
	if !ValidRole(role) {
		return fmt.Errorf("%w: unknown role %q", common.ErrValidation, role)
	}
	if role != RoleClient && permissions != "" {
		return fmt.Errorf("%w: permissions apply to client accounts only", common.ErrValidation)
	}
	if permissions != "" && permissions != PermissionReadOnly && permissions != PermissionReadWrite {
		return fmt.Errorf("%w: unknown permissions %q", common.ErrValidation, permissions)
	}
	return nil
}

// Register creates a new account. Permissions are kept only for client
// accounts.
func (s *Service) Register(ctx context.Context, username, name, password string, role Role, permissions Permissions) (*User, error) {
	if err := validateNewUser(username, password, role, permissions); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &User{
		Username:     username,
		Name:         name,
		PasswordHash: hash,
		Role:         role,
		Permissions:  permissions,
	}

	user, err = s.repo.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

// Login verifies credentials and issues an access token.
func (s *Service) Login(ctx context.Context, username, password string) (*User, string, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, "", common.ErrUnauthorized
		}
		return nil, "", common.ErrInternal
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, "", common.ErrUnauthorized
	}

	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, "", common.ErrInternal
	}

	return user, token, nil
}

// Authenticate resolves an access token to the account it was issued for.
func (s *Service) Authenticate(ctx context.Context, token string) (*User, error) {
	userID, err := auth.GetUserIDFromToken(token, s.jwtSecret)
	if err != nil {
		return nil, common.ErrUnauthorized
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, err
	}
	return user, nil
}

// ChangePassword replaces the password of the acting user.
func (s *Service) ChangePassword(ctx context.Context, actorID int64, newPassword string) error {
	if newPassword == "" {
		return fmt.Errorf("%w: password is required", common.ErrValidation)
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	return s.repo.UpdatePassword(ctx, actorID, hash)
}

// ResetPassword replaces the password for the named account.
func (s *Service) ResetPassword(ctx context.Context, username, newPassword string) error {
	if username == "" || newPassword == "" {
		return fmt.Errorf("%w: username and password are required", common.ErrValidation)
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	return s.repo.UpdatePasswordByUsername(ctx, username, hash)
}

// List returns accounts, optionally restricted to one role.
func (s *Service) List(ctx context.Context, role Role) ([]User, error) {
	return s.repo.List(ctx, role)
}

// GetByID returns a single account.
func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// Delete removes an account.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// EnsureAdmin creates the bootstrap admin account on first start if no
// account with that username exists yet.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) error {
	_, err := s.repo.GetByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return err
	}
	_, err = s.Register(ctx, username, "Admin User", password, RoleAdmin, "")
	return err
}
