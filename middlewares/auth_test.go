package middlewares

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/ray-remotestate/bistro/config"
	"github.com/ray-remotestate/bistro/models"
)

func TestMain(m *testing.M) {
	config.SecretKey = []byte("test-secret")
	os.Exit(m.Run())
}

func okHandler() (http.Handler, *bool) {
	called := false
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}), &called
}

func TestAuthMiddlewareRejectsWithoutToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not-a-jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, called := okHandler()
			handler := AuthMiddleware(next)

			req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusForbidden {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
			}
			if *called {
				t.Error("next handler ran for an unauthenticated request")
			}
		})
	}
}

func TestAuthMiddlewarePassesValidToken(t *testing.T) {
	userID := uuid.New()
	token, err := GenerateAccessToken(userID, "alice", []models.Role{models.RoleManager})
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	var got *Claims
	handler := AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := GetAuthenticatedUser(r)
		if err != nil {
			t.Errorf("GetAuthenticatedUser: %v", err)
		}
		got = claims
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got == nil {
		t.Fatal("claims never reached the handler")
	}
	if got.UserID != userID || got.Username != "alice" {
		t.Errorf("claims = %+v, want user %s alice", got, userID)
	}
	if !got.HasRole(models.RoleManager) {
		t.Error("manager role lost in the token round trip")
	}
}

func TestAuthMiddlewareRejectsTokenSignedWithWrongKey(t *testing.T) {
	config.SecretKey = []byte("other-secret")
	token, err := GenerateAccessToken(uuid.New(), "mallory", nil)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	config.SecretKey = []byte("test-secret")

	next, called := okHandler()
	handler := AuthMiddleware(next)

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
	if *called {
		t.Error("next handler ran with a forged token")
	}
}

func TestRoleBasedMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		roles      []models.Role
		wantStatus int
	}{
		{"manager allowed", []models.Role{models.RoleManager}, http.StatusOK},
		{"crew denied", []models.Role{models.RoleDeliveryCrew}, http.StatusForbidden},
		{"customer denied", nil, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, _ := okHandler()
			handler := RoleBasedMiddleware(models.RoleManager)(next)

			req := httptest.NewRequest(http.MethodPost, "/api/groups/manager/users", nil)
			req = SetAuthenticatedUser(req, &Claims{UserID: uuid.New(), Username: "bob", Roles: tt.roles})
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestRoleBasedMiddlewareWithoutClaims(t *testing.T) {
	next, called := okHandler()
	handler := RoleBasedMiddleware(models.RoleManager)(next)

	req := httptest.NewRequest(http.MethodGet, "/api/groups/manager/users", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
	if *called {
		t.Error("next handler ran without claims")
	}
}

func TestRequireRole(t *testing.T) {
	req := httptest.NewRequest(http.MethodDelete, "/api/orders/x", nil)
	req = SetAuthenticatedUser(req, &Claims{UserID: uuid.New(), Roles: []models.Role{models.RoleDeliveryCrew}})

	if _, err := RequireRole(req, models.RoleDeliveryCrew); err != nil {
		t.Errorf("RequireRole with held role = %v", err)
	}
	if _, err := RequireRole(req, models.RoleManager); err == nil {
		t.Error("RequireRole with missing role should fail")
	}

	bare := httptest.NewRequest(http.MethodDelete, "/api/orders/x", nil)
	if _, err := RequireRole(bare, models.RoleManager); err == nil {
		t.Error("RequireRole without claims should fail")
	}
}
