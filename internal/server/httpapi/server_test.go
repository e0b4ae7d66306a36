package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mzarins/invsync/internal/common"
	"github.com/mzarins/invsync/internal/logging"
	"github.com/mzarins/invsync/internal/server/config"
	"github.com/mzarins/invsync/internal/server/inventory"
	"github.com/mzarins/invsync/internal/server/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	nextID int64
	users  map[int64]*users.User
}

func (r *fakeUserRepo) Create(_ context.Context, user *users.User) (*users.User, error) {
	u := *user
	u.ID = r.nextID
	r.nextID++
	r.users[u.ID] = &u
	return &u, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*users.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			out := *u
			return &out, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*users.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (r *fakeUserRepo) List(_ context.Context, role users.Role) ([]users.User, error) {
	var result []users.User
	for id := int64(1); id < r.nextID; id++ {
		u, ok := r.users[id]
		if !ok || (role != "" && u.Role != role) {
			continue
		}
		result = append(result, *u)
	}
	return result, nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id int64, hash string) error {
	u, ok := r.users[id]
	if !ok {
		return common.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (r *fakeUserRepo) UpdatePasswordByUsername(_ context.Context, username string, hash string) error {
	for _, u := range r.users {
		if u.Username == username {
			u.PasswordHash = hash
			return nil
		}
	}
	return common.ErrNotFound
}

func (r *fakeUserRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.users[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

type fakeInventoryRepo struct {
	nextID  int64
	records map[int64]*inventory.Record
}

func (r *fakeInventoryRepo) Create(_ context.Context, record *inventory.Record) (int64, error) {
	record.ID = r.nextID
	r.nextID++
	stored := *record
	r.records[stored.ID] = &stored
	return stored.ID, nil
}

func (r *fakeInventoryRepo) GetByID(_ context.Context, id int64) (*inventory.Record, error) {
	record, ok := r.records[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	out := *record
	return &out, nil
}

func (r *fakeInventoryRepo) Update(_ context.Context, id int64, update *inventory.Update) error {
	record, ok := r.records[id]
	if !ok {
		return common.ErrNotFound
	}
	if update.Name != nil {
		record.Name = *update.Name
	}
	if update.Status != nil {
		record.Status = *update.Status
	}
	if update.Quantity != nil {
		record.Quantity = *update.Quantity
	}
	if update.AssignedTo != nil {
		record.AssignedTo = update.AssignedTo
	}
	record.Timestamp = time.Now().UTC()
	return nil
}

func (r *fakeInventoryRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.records[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.records, id)
	return nil
}

func (r *fakeInventoryRepo) List(_ context.Context, filter inventory.Filter) ([]inventory.Record, error) {
	var result []inventory.Record
	for id := int64(1); id < r.nextID; id++ {
		record, ok := r.records[id]
		if !ok {
			continue
		}
		if filter.Status != "" && record.Status != filter.Status {
			continue
		}
		if filter.AssignedTo != nil &&
			(record.AssignedTo == nil || *record.AssignedTo != *filter.AssignedTo) {
			continue
		}
		result = append(result, *record)
	}
	return result, nil
}

type testEnv struct {
	t      *testing.T
	server *httptest.Server
	users  *users.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{SecretKey: "test-secret", AccessTokenValidityDuration: time.Hour}
	userService := users.NewService(&fakeUserRepo{nextID: 1, users: make(map[int64]*users.User)}, cfg)
	inventoryService := inventory.NewService(&fakeInventoryRepo{nextID: 1, records: make(map[int64]*inventory.Record)})

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv := NewServer(":0", logger, userService, inventoryService)

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	return &testEnv{t: t, server: ts, users: userService}
}

func (e *testEnv) register(username string, role users.Role, permissions users.Permissions) *users.User {
	e.t.Helper()
	user, err := e.users.Register(context.Background(), username, username, "pw", role, permissions)
	require.NoError(e.t, err)
	return user
}

func (e *testEnv) login(username string) string {
	e.t.Helper()
	_, token, err := e.users.Login(context.Background(), username, "pw")
	require.NoError(e.t, err)
	return token
}

func (e *testEnv) do(method, path, token string, body any) *http.Response {
	e.t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(e.t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.server.Client().Do(req)
	require.NoError(e.t, err)
	e.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestPing(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.register("anna", users.RoleStaff, "")

	resp := env.do(http.MethodPost, "/login", "", map[string]string{"username": "anna", "password": "pw"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody[map[string]json.RawMessage](t, resp)
	assert.Contains(t, body, "user")
	assert.Contains(t, body, "token")

	resp = env.do(http.MethodPost, "/login", "", map[string]string{"username": "anna", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	errBody := decodeBody[map[string]string](t, resp)
	assert.Equal(t, "Invalid credentials", errBody["error"])
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/inventory", "/users", "/reports/inventory"} {
		resp := env.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}

	resp := env.do(http.MethodGet, "/inventory", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestInventoryCRUD(t *testing.T) {
	env := newTestEnv(t)
	env.register("staff", users.RoleStaff, "")
	token := env.login("staff")

	resp := env.do(http.MethodPost, "/inventory", token, map[string]any{"name": "Drill", "quantity": 2, "status": "available"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	created := decodeBody[map[string]int64](t, resp)
	id := created["id"]
	require.NotZero(t, id)

	resp = env.do(http.MethodGet, fmt.Sprintf("/inventory/%d", id), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	record := decodeBody[inventory.Record](t, resp)
	assert.Equal(t, "Drill", record.Name)

	resp = env.do(http.MethodPut, fmt.Sprintf("/inventory/%d", id), token, map[string]any{"quantity": 5})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(http.MethodGet, "/inventory?status=available", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	records := decodeBody[[]inventory.Record](t, resp)
	require.Len(t, records, 1)
	assert.Equal(t, 5, records[0].Quantity)

	resp = env.do(http.MethodGet, "/inventory/999", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.do(http.MethodPost, "/inventory", token, map[string]any{"name": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestClientVisibilityRestricted(t *testing.T) {
	env := newTestEnv(t)
	env.register("staff", users.RoleStaff, "")
	client := env.register("client", users.RoleClient, users.PermissionReadOnly)
	staffToken := env.login("staff")
	clientToken := env.login("client")

	resp := env.do(http.MethodPost, "/inventory", staffToken, map[string]any{"name": "Mine", "assignedTo": client.ID})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	mine := decodeBody[map[string]int64](t, resp)

	resp = env.do(http.MethodPost, "/inventory", staffToken, map[string]any{"name": "Other"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	other := decodeBody[map[string]int64](t, resp)

	// The shared listing comes back silently filtered for clients.
	resp = env.do(http.MethodGet, "/inventory", clientToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	records := decodeBody[[]inventory.Record](t, resp)
	require.Len(t, records, 1)
	assert.Equal(t, "Mine", records[0].Name)

	resp = env.do(http.MethodGet, "/inventory/assigned", clientToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	records = decodeBody[[]inventory.Record](t, resp)
	assert.Len(t, records, 1)

	resp = env.do(http.MethodGet, fmt.Sprintf("/inventory/%d", mine["id"]), clientToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(http.MethodGet, fmt.Sprintf("/inventory/%d", other["id"]), clientToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Clients never create, and the assigned endpoint is client-only.
	resp = env.do(http.MethodPost, "/inventory", clientToken, map[string]any{"name": "New"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.do(http.MethodGet, "/inventory/assigned", staffToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestClientWritePermissions(t *testing.T) {
	env := newTestEnv(t)
	env.register("staff", users.RoleStaff, "")
	reader := env.register("reader", users.RoleClient, users.PermissionReadOnly)
	writer := env.register("writer", users.RoleClient, users.PermissionReadWrite)
	staffToken := env.login("staff")

	resp := env.do(http.MethodPost, "/inventory", staffToken, map[string]any{"name": "R", "assignedTo": reader.ID})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	readerItem := decodeBody[map[string]int64](t, resp)

	resp = env.do(http.MethodPost, "/inventory", staffToken, map[string]any{"name": "W", "assignedTo": writer.ID})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	writerItem := decodeBody[map[string]int64](t, resp)

	resp = env.do(http.MethodPut, fmt.Sprintf("/inventory/%d", readerItem["id"]), env.login("reader"), map[string]any{"status": "in use"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	writerToken := env.login("writer")
	resp = env.do(http.MethodPut, fmt.Sprintf("/inventory/%d", writerItem["id"]), writerToken, map[string]any{"status": "in use"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(http.MethodPut, fmt.Sprintf("/inventory/%d", readerItem["id"]), writerToken, map[string]any{"status": "in use"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Deletion stays admin-only even for read-write clients.
	resp = env.do(http.MethodDelete, fmt.Sprintf("/inventory/%d", writerItem["id"]), writerToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAdminOnlyEndpoints(t *testing.T) {
	env := newTestEnv(t)
	env.register("admin", users.RoleAdmin, "")
	env.register("staff", users.RoleStaff, "")
	adminToken := env.login("admin")
	staffToken := env.login("staff")

	resp := env.do(http.MethodGet, "/users", staffToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.do(http.MethodGet, "/users?role=client", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(http.MethodPost, "/users", adminToken, map[string]any{
		"username": "newclient", "password": "pw", "role": "client", "permissions": "read_only",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(http.MethodPost, "/inventory", staffToken, map[string]any{"name": "Drill"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	created := decodeBody[map[string]int64](t, resp)

	resp = env.do(http.MethodDelete, fmt.Sprintf("/inventory/%d", created["id"]), staffToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.do(http.MethodDelete, fmt.Sprintf("/inventory/%d", created["id"]), adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestInventoryReport(t *testing.T) {
	env := newTestEnv(t)
	env.register("admin", users.RoleAdmin, "")
	env.register("staff", users.RoleStaff, "")
	adminToken := env.login("admin")

	resp := env.do(http.MethodPost, "/inventory", adminToken, map[string]any{"name": "Drill", "serialNumber": "SN-1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(http.MethodGet, "/reports/inventory", env.login("staff"), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.do(http.MethodGet, "/reports/inventory", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "inventory_report.csv")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "ID,Name,Serial Number,Location,Status,Quantity,Assigned To,Timestamp", strings.TrimSpace(lines[0]))
	assert.Contains(t, lines[1], "Drill")
}

func TestChangeAndResetPassword(t *testing.T) {
	env := newTestEnv(t)
	env.register("anna", users.RoleStaff, "")
	token := env.login("anna")

	resp := env.do(http.MethodPost, "/change-password", token, map[string]string{"newPassword": "pw2"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(http.MethodPost, "/login", "", map[string]string{"username": "anna", "password": "pw2"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(http.MethodPost, "/reset-password", "", map[string]string{"username": "anna", "newPassword": "pw3"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(http.MethodPost, "/reset-password", "", map[string]string{"username": "ghost", "newPassword": "pw"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
