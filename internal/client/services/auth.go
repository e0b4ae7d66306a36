// Package services implements the client's application logic on top of the
// server API and the local replica: session handling and connectivity-aware
// inventory operations.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	gosync "sync"

	"github.com/mzarins/invsync/internal/client/api"
	"github.com/mzarins/invsync/internal/client/models"
	"github.com/mzarins/invsync/internal/client/replica"
	"github.com/mzarins/invsync/internal/common"
	"github.com/mzarins/invsync/internal/logging"
)

// AuthService manages the session: online login against the server, offline
// resumption from the cached session, and the teardown that wipes local data.
type AuthService struct {
	api     api.Client
	replica replica.Repository
	logger  logging.Logger

	mu   gosync.RWMutex
	user *models.User
}

func NewAuthService(apiClient api.Client, repo replica.Repository, logger logging.Logger) *AuthService {
	return &AuthService{api: apiClient, replica: repo, logger: logger}
}

// Login authenticates against the server. When the server is unreachable it
// falls back to the cached session, provided the same account was logged in
// before; online reports which of the two happened. Definitive rejections
// (bad credentials) are returned as-is and never fall back.
func (s *AuthService) Login(ctx context.Context, username, password string) (online bool, err error) {
	user, token, err := s.api.Login(ctx, username, password)
	if err == nil {
		if err := s.saveSession(ctx, user, token); err != nil {
			return true, err
		}
		s.setUser(user)
		return true, nil
	}

	if !errors.Is(err, common.ErrTransient) {
		return false, err
	}

	cached, token, resumeErr := s.loadSession(ctx)
	if resumeErr != nil || cached.Username != username {
		return false, fmt.Errorf("%w: server unreachable and no cached session", common.ErrTransient)
	}

	s.api.SetToken(token)
	s.setUser(cached)
	s.logger.Info(ctx, "resumed cached session", "username", username)
	return false, nil
}

// Resume restores the cached session without contacting the server. It is
// called on startup so a previously logged-in user can keep working offline.
func (s *AuthService) Resume(ctx context.Context) (bool, error) {
	user, token, err := s.loadSession(ctx)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	s.api.SetToken(token)
	s.setUser(user)
	return true, nil
}

// Logout tells the server (best effort), wipes the local replica and the
// cached session, and forgets the token.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.api.Logout(ctx); err != nil && !errors.Is(err, common.ErrTransient) {
		s.logger.Warn(ctx, "server logout failed", "error", err)
	}
	s.api.ClearToken()
	s.setUser(nil)
	return s.replica.Erase(ctx)
}

// Register creates a new account on the server. Online only; there is no
// local account store to fall back to.
func (s *AuthService) Register(ctx context.Context, user api.NewUser) error {
	return s.api.Register(ctx, user)
}

func (s *AuthService) ChangePassword(ctx context.Context, newPassword string) error {
	return s.api.ChangePassword(ctx, newPassword)
}

func (s *AuthService) ResetPassword(ctx context.Context, username, newPassword string) error {
	return s.api.ResetPassword(ctx, username, newPassword)
}

func (s *AuthService) ListUsers(ctx context.Context, role string) ([]models.User, error) {
	return s.api.ListUsers(ctx, role)
}

func (s *AuthService) CreateUser(ctx context.Context, user api.NewUser) error {
	return s.api.CreateUser(ctx, user)
}

func (s *AuthService) DeleteUser(ctx context.Context, id int64) error {
	return s.api.DeleteUser(ctx, id)
}

// CurrentUser returns the logged-in account, or nil.
func (s *AuthService) CurrentUser() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *AuthService) LoggedIn() bool {
	return s.CurrentUser() != nil
}

func (s *AuthService) setUser(user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
}

func (s *AuthService) saveSession(ctx context.Context, user *models.User, token string) error {
	encoded, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.replica.SaveMeta(ctx, replica.MetaUser, string(encoded)); err != nil {
		return err
	}
	return s.replica.SaveMeta(ctx, replica.MetaToken, token)
}

func (s *AuthService) loadSession(ctx context.Context) (*models.User, string, error) {
	encoded, err := s.replica.GetMeta(ctx, replica.MetaUser)
	if err != nil {
		return nil, "", err
	}
	token, err := s.replica.GetMeta(ctx, replica.MetaToken)
	if err != nil {
		return nil, "", err
	}

	user := &models.User{}
	if err := json.Unmarshal([]byte(encoded), user); err != nil {
		return nil, "", fmt.Errorf("failed to decode session: %w", err)
	}
	return user, token, nil
}
