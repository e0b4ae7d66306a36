package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	gosync "sync"
	"testing"

	"github.com/mzarins/invsync/internal/client/api"
	"github.com/mzarins/invsync/internal/client/models"
	"github.com/mzarins/invsync/internal/client/replica"
	"github.com/mzarins/invsync/internal/common"
	"github.com/mzarins/invsync/internal/logging"
	"github.com/stretchr/testify/require"
)

// fakeAPI is an in-memory server double shared by the service tests.
type fakeAPI struct {
	mu      gosync.Mutex
	records map[int64]models.Record
	nextID  int64

	loginUser  *models.User
	loginToken string
	loginErr   error

	createErr, updateErr, deleteErr, listErr error
	createCalls, updateCalls, deleteCalls    int

	token string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{records: make(map[int64]models.Record), nextID: 100}
}

func (f *fakeAPI) Ping(ctx context.Context) error { return nil }

func (f *fakeAPI) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	if f.loginErr != nil {
		return nil, "", f.loginErr
	}
	f.token = f.loginToken
	return f.loginUser, f.loginToken, nil
}

func (f *fakeAPI) Logout(ctx context.Context) error {
	f.token = ""
	return nil
}

func (f *fakeAPI) Register(ctx context.Context, user api.NewUser) error        { return nil }
func (f *fakeAPI) ChangePassword(ctx context.Context, newPassword string) error { return nil }
func (f *fakeAPI) ResetPassword(ctx context.Context, username, newPassword string) error {
	return nil
}

func (f *fakeAPI) ListInventory(ctx context.Context, status string) ([]models.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var result []models.Record
	for id := int64(1); id < f.nextID+1000; id++ {
		if record, ok := f.records[id]; ok {
			result = append(result, record)
		}
	}
	return result, nil
}

func (f *fakeAPI) ListAssigned(ctx context.Context) ([]models.Record, error) {
	return f.ListInventory(ctx, "")
}

func (f *fakeAPI) GetInventory(ctx context.Context, id int64) (*models.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &record, nil
}

func (f *fakeAPI) CreateInventory(ctx context.Context, record *models.Record) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return 0, f.createErr
	}
	id := f.nextID
	f.nextID++
	stored := *record
	stored.ID = id
	f.records[id] = stored
	return id, nil
}

func (f *fakeAPI) UpdateInventory(ctx context.Context, id int64, update *models.Update) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	if f.updateErr != nil {
		return f.updateErr
	}
	record, ok := f.records[id]
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
	f.records[id] = record
	return nil
}

func (f *fakeAPI) DeleteInventory(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.records[id]; !ok {
		return common.ErrNotFound
	}
	delete(f.records, id)
	return nil
}

func (f *fakeAPI) ListUsers(ctx context.Context, role string) ([]models.User, error) {
	return nil, nil
}
func (f *fakeAPI) CreateUser(ctx context.Context, user api.NewUser) error { return nil }
func (f *fakeAPI) DeleteUser(ctx context.Context, id int64) error         { return nil }
func (f *fakeAPI) InventoryReport(ctx context.Context) ([]byte, error) {
	return []byte("ID,Name\n"), nil
}

func (f *fakeAPI) SetToken(token string) { f.token = token }
func (f *fakeAPI) ClearToken()           { f.token = "" }

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestReplica(t *testing.T) replica.Repository {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, replica.RunMigrations(context.Background(), db))
	return replica.NewSQLiteRepository(db)
}
