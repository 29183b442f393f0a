package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/ray-remotestate/bistro/config"
	"github.com/ray-remotestate/bistro/middlewares"
	"github.com/ray-remotestate/bistro/models"
)

func TestMain(m *testing.M) {
	config.SecretKey = []byte("test-secret")
	os.Exit(m.Run())
}

// Every protected route answers an unauthenticated caller with 403.
func TestProtectedRoutesRejectUnauthenticated(t *testing.T) {
	svr := SetupRoutes()

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/categories"},
		{http.MethodPut, "/api/categories/abc"},
		{http.MethodDelete, "/api/categories/abc"},
		{http.MethodPost, "/api/menu-items"},
		{http.MethodPut, "/api/menu-items/abc"},
		{http.MethodDelete, "/api/menu-items/abc"},
		{http.MethodGet, "/api/cart"},
		{http.MethodPost, "/api/cart"},
		{http.MethodDelete, "/api/cart"},
		{http.MethodGet, "/api/orders"},
		{http.MethodPost, "/api/orders"},
		{http.MethodGet, "/api/orders/abc"},
		{http.MethodPut, "/api/orders/abc"},
		{http.MethodPatch, "/api/orders/abc"},
		{http.MethodDelete, "/api/orders/abc"},
		{http.MethodGet, "/api/groups/manager/users"},
		{http.MethodPost, "/api/groups/manager/users"},
		{http.MethodDelete, "/api/groups/manager/users"},
		{http.MethodGet, "/api/groups/delivery-crew/users"},
		{http.MethodPost, "/api/groups/delivery-crew/users"},
		{http.MethodDelete, "/api/groups/delivery-crew/users"},
		{http.MethodPost, "/api/logout"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rec := httptest.NewRecorder()
			svr.Router.ServeHTTP(rec, req)

			if rec.Code != http.StatusForbidden {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
			}
		})
	}
}

// An unknown group name under /groups is a 404, even for a manager.
func TestUnknownGroupIsNotFound(t *testing.T) {
	svr := SetupRoutes()

	token, err := middlewares.GenerateAccessToken(uuid.New(), "boss", []models.Role{models.RoleManager})
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/groups/admins/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	svr.Router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHealthReportsReadiness(t *testing.T) {
	svr := SetupRoutes()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	svr.Router.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("before MarkReady: status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}

	svr.MarkReady()

	rec = httptest.NewRecorder()
	svr.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("after MarkReady: status = %d, want %d", rec.Code, http.StatusOK)
	}
}
