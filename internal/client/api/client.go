// Package api talks to the inventory server over its JSON-over-HTTP surface
// and maps transport and status failures onto the shared error taxonomy.
package api

import (
	"context"

	"github.com/mzarins/invsync/internal/client/models"
)

// NewUser is the request body for account creation.
type NewUser struct {
	Username    string  `json:"username"`
	Name        string  `json:"name"`
	Password    string  `json:"password"`
	Role        string  `json:"role"`
	Permissions *string `json:"permissions,omitempty"`
}

// Client is the server surface the rest of the client programs against.
// Implementations must translate failures so callers can distinguish
// retryable outages (common.ErrTransient) from definitive rejections.
type Client interface {
	Ping(ctx context.Context) error

	Login(ctx context.Context, username, password string) (*models.User, string, error)
	Logout(ctx context.Context) error
	Register(ctx context.Context, user NewUser) error
	ChangePassword(ctx context.Context, newPassword string) error
	ResetPassword(ctx context.Context, username, newPassword string) error

	ListInventory(ctx context.Context, status string) ([]models.Record, error)
	ListAssigned(ctx context.Context) ([]models.Record, error)
	GetInventory(ctx context.Context, id int64) (*models.Record, error)
	CreateInventory(ctx context.Context, record *models.Record) (int64, error)
	UpdateInventory(ctx context.Context, id int64, update *models.Update) error
	DeleteInventory(ctx context.Context, id int64) error

	ListUsers(ctx context.Context, role string) ([]models.User, error)
	CreateUser(ctx context.Context, user NewUser) error
	DeleteUser(ctx context.Context, id int64) error

	InventoryReport(ctx context.Context) ([]byte, error)

	SetToken(token string)
	ClearToken()
}
