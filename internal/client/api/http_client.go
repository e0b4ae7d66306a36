package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/mzarins/invsync/internal/client/models"
	"github.com/mzarins/invsync/internal/common"
)

// HTTPClient implements Client against the server's JSON endpoints.
//
// Failure mapping:
//   - network errors and 5xx responses become common.ErrTransient, so the
//     caller knows the operation may succeed on a later attempt;
//   - 400 becomes common.ErrValidation, 401/403 common.ErrUnauthorized,
//     404 common.ErrNotFound, 409 common.ErrConflict.
type HTTPClient struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *HTTPClient) ClearToken() {
	c.SetToken("")
}

func (c *HTTPClient) currentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func statusError(code int, message string) error {
	switch {
	case code == http.StatusBadRequest:
		return fmt.Errorf("%w: %s", common.ErrValidation, message)
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return common.ErrUnauthorized
	case code == http.StatusNotFound:
		return common.ErrNotFound
	case code == http.StatusConflict:
		return common.ErrConflict
	case code >= http.StatusInternalServerError:
		return fmt.Errorf("%w: server returned %d", common.ErrTransient, code)
	default:
		return fmt.Errorf("unexpected status %d: %s", code, message)
	}
}

// do executes one request. A non-nil body is sent as JSON; a non-nil out is
// filled from a successful JSON response.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.currentToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errBody struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		return statusError(resp.StatusCode, errBody.Error)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/ping", nil, nil)
}

// Login authenticates and remembers the issued token for subsequent calls.
func (c *HTTPClient) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	req := map[string]string{"username": username, "password": password}
	var resp struct {
		User  models.User `json:"user"`
		Token string      `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/login", req, &resp); err != nil {
		return nil, "", err
	}
	c.SetToken(resp.Token)
	return &resp.User, resp.Token, nil
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/logout", nil, nil)
	c.ClearToken()
	return err
}

func (c *HTTPClient) Register(ctx context.Context, user NewUser) error {
	return c.do(ctx, http.MethodPost, "/register", user, nil)
}

func (c *HTTPClient) ChangePassword(ctx context.Context, newPassword string) error {
	return c.do(ctx, http.MethodPost, "/change-password", map[string]string{"newPassword": newPassword}, nil)
}

func (c *HTTPClient) ResetPassword(ctx context.Context, username, newPassword string) error {
	req := map[string]string{"username": username, "newPassword": newPassword}
	return c.do(ctx, http.MethodPost, "/reset-password", req, nil)
}

func (c *HTTPClient) ListInventory(ctx context.Context, status string) ([]models.Record, error) {
	path := "/inventory"
	if status != "" {
		path += "?status=" + status
	}
	var records []models.Record
	if err := c.do(ctx, http.MethodGet, path, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *HTTPClient) ListAssigned(ctx context.Context) ([]models.Record, error) {
	var records []models.Record
	if err := c.do(ctx, http.MethodGet, "/inventory/assigned", nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *HTTPClient) GetInventory(ctx context.Context, id int64) (*models.Record, error) {
	record := &models.Record{}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/inventory/%d", id), nil, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (c *HTTPClient) CreateInventory(ctx context.Context, record *models.Record) (int64, error) {
	var resp struct {
		ID int64 `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/inventory", record, &resp); err != nil {
		return 0, err
	}
	return resp.ID, nil
}

func (c *HTTPClient) UpdateInventory(ctx context.Context, id int64, update *models.Update) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/inventory/%d", id), update, nil)
}

func (c *HTTPClient) DeleteInventory(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/inventory/%d", id), nil, nil)
}

func (c *HTTPClient) ListUsers(ctx context.Context, role string) ([]models.User, error) {
	path := "/users"
	if role != "" {
		path += "?role=" + role
	}
	var list []models.User
	if err := c.do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *HTTPClient) CreateUser(ctx context.Context, user NewUser) error {
	return c.do(ctx, http.MethodPost, "/users", user, nil)
}

func (c *HTTPClient) DeleteUser(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/users/%d", id), nil, nil)
}

// InventoryReport downloads the CSV export.
func (c *HTTPClient) InventoryReport(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reports/inventory", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if token := c.currentToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errBody struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		return nil, statusError(resp.StatusCode, errBody.Error)
	}
	return io.ReadAll(resp.Body)
}
