package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/svpddu/studentrecords/internal/app/models"
	"github.com/svpddu/studentrecords/internal/app/services"
	"github.com/svpddu/studentrecords/internal/pkg/apperrors"
	"github.com/svpddu/studentrecords/internal/pkg/auth"
)

type stubUserRepo struct {
	users map[string]*models.User
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := r.users[email]; ok {
		return u, nil
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *stubUserRepo) Create(context.Context, *models.User) error { return nil }

func (r *stubUserRepo) Count(context.Context) (int64, error) { return int64(len(r.users)), nil }

func TestAuthController_Login(t *testing.T) {
	hash, err := auth.HashPassword("password123")
	if err != nil {
		t.Fatal(err)
	}
	repo := &stubUserRepo{users: map[string]*models.User{
		"teacher@example.com": {ID: "u1", Email: "teacher@example.com", PasswordHash: hash},
	}}
	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "secret", AccessTokenExp: time.Hour, TokenIssuer: "test"})
	c := NewAuthController(services.NewAuthService(repo, jwtService, zerolog.Nop()), zerolog.Nop())
	r := gin.New()
	r.POST("/api/login", c.Login)

	tests := []struct {
		name        string
		body        string
		wantStatus  int
		wantMessage string
	}{
		{"valid", `{"email":"teacher@example.com","password":"password123"}`, http.StatusOK, "Login successful"},
		{"wrong password", `{"email":"teacher@example.com","password":"nope"}`, http.StatusUnauthorized, "Invalid email or password"},
		{"unknown user", `{"email":"x@example.com","password":"password123"}`, http.StatusUnauthorized, "Invalid email or password"},
		{"malformed json", `{"email":`, http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.wantStatus, w.Body.String())
			}
			body := decodeBody(t, w)
			if tt.wantMessage != "" && body["message"] != tt.wantMessage {
				t.Errorf("message = %v, want %q", body["message"], tt.wantMessage)
			}
			if tt.wantStatus == http.StatusOK {
				user, _ := body["user"].(map[string]interface{})
				if user["id"] != "u1" || body["token"] == "" {
					t.Errorf("body = %v", body)
				}
			}
		})
	}
}

func TestHealthController(t *testing.T) {
	tests := []struct {
		name       string
		ping       func(context.Context) error
		wantStatus int
		wantBody   string
	}{
		{"no probe", nil, http.StatusOK, `{"status":"ok"}`},
		{"store up", func(context.Context) error { return nil }, http.StatusOK, `{"status":"ok"}`},
		{"store down", func(context.Context) error { return context.DeadlineExceeded }, http.StatusServiceUnavailable, `{"status":"unavailable"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/health", NewHealthController(tt.ping, zerolog.Nop()).Health)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			if w.Code != tt.wantStatus || strings.TrimSpace(w.Body.String()) != tt.wantBody {
				t.Errorf("got %d %s, want %d %s", w.Code, w.Body.String(), tt.wantStatus, tt.wantBody)
			}
		})
	}
}
