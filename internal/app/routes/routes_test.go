package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/svpddu/studentrecords/internal/app/controllers"
	"github.com/svpddu/studentrecords/internal/app/models"
	"github.com/svpddu/studentrecords/internal/middleware"
	"github.com/svpddu/studentrecords/internal/pkg/auth"
)

type fakeAdminService struct{}

func (fakeAdminService) Promote(context.Context) (models.PromotionResult, error) {
	return models.PromotionResult{Promoted: 1}, nil
}

func (fakeAdminService) PurgeYear(context.Context, string) (int64, error) { return 0, nil }

func newTestRouter(jwtService *auth.JWTService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	SetupRouter(r,
		controllers.NewStudentController(nil, nil, nil, 1, zerolog.Nop()),
		controllers.NewAdminController(fakeAdminService{}, zerolog.Nop()),
		controllers.NewAuthController(nil, zerolog.Nop()),
		controllers.NewHealthController(nil, zerolog.Nop()),
		middleware.NewAuthMiddleware(jwtService),
	)
	return r
}

func TestBatchRoutesRequireToken(t *testing.T) {
	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "secret", AccessTokenExp: time.Hour, TokenIssuer: "test"})
	r := newTestRouter(jwtService)

	token, _, err := jwtService.GenerateToken(&models.User{ID: "u1", Email: "teacher@example.com"})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		method     string
		path       string
		header     string
		wantStatus int
	}{
		{"promote without token", http.MethodPost, "/api/students/promote", "", http.StatusUnauthorized},
		{"promote with bad token", http.MethodPost, "/api/students/promote", "Bearer nope", http.StatusUnauthorized},
		{"promote with token", http.MethodPost, "/api/students/promote", "Bearer " + token, http.StatusOK},
		{"purge without token", http.MethodDelete, "/api/students/delete/2019", "", http.StatusUnauthorized},
		{"purge with token", http.MethodDelete, "/api/students/delete/2019", "Bearer " + token, http.StatusOK},
		{"health is public", http.MethodGet, "/health", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (%s)", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}
