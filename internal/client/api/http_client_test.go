package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mzarins/invsync/internal/client/models"
	"github.com/mzarins/invsync/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginStoresToken(t *testing.T) {
	var gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"user":  map[string]any{"id": 1, "username": "anna", "role": "staff"},
				"token": "issued-token",
			})
		case "/inventory":
			gotAuth = r.Header.Get("Authorization")
			_ = json.NewEncoder(w).Encode([]any{})
		}
	}))
	defer ts.Close()

	c := NewHTTPClient(ts.URL, time.Second)
	user, token, err := c.Login(context.Background(), "anna", "pw")
	require.NoError(t, err)
	assert.Equal(t, "anna", user.Username)
	assert.Equal(t, "issued-token", token)

	_, err = c.ListInventory(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "Bearer issued-token", gotAuth)
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		code    int
		wantErr error
	}{
		{"bad request", http.StatusBadRequest, common.ErrValidation},
		{"unauthorized", http.StatusUnauthorized, common.ErrUnauthorized},
		{"forbidden", http.StatusForbidden, common.ErrUnauthorized},
		{"not found", http.StatusNotFound, common.ErrNotFound},
		{"conflict", http.StatusConflict, common.ErrConflict},
		{"server error", http.StatusInternalServerError, common.ErrTransient},
		{"bad gateway", http.StatusBadGateway, common.ErrTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "nope"})
			}))
			defer ts.Close()

			c := NewHTTPClient(ts.URL, time.Second)
			_, err := c.GetInventory(context.Background(), 1)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNetworkErrorIsTransient(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close()

	c := NewHTTPClient(ts.URL, time.Second)
	assert.ErrorIs(t, c.Ping(context.Background()), common.ErrTransient)

	_, err := c.ListInventory(context.Background(), "")
	assert.ErrorIs(t, err, common.ErrTransient)
}

func TestCreateInventoryReturnsID(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/inventory", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Drill", body["name"])

		_ = json.NewEncoder(w).Encode(map[string]int64{"id": 55})
	}))
	defer ts.Close()

	c := NewHTTPClient(ts.URL, time.Second)
	id, err := c.CreateInventory(context.Background(), &models.Record{Name: "Drill"})
	require.NoError(t, err)
	assert.Equal(t, int64(55), id)
}

func TestInventoryReport(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/reports/inventory", r.URL.Path)
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte("ID,Name\n1,Drill\n"))
	}))
	defer ts.Close()

	c := NewHTTPClient(ts.URL, time.Second)
	data, err := c.InventoryReport(context.Background())
	require.NoError(t, err)
	assert.Contains(t, string(data), "Drill")
}
