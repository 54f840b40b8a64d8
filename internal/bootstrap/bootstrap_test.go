package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appControllers "github.com/svpddu/studentrecords/internal/app/controllers"
	"github.com/svpddu/studentrecords/internal/config"
	appMiddleware "github.com/svpddu/studentrecords/internal/middleware"
	pkgAuth "github.com/svpddu/studentrecords/internal/pkg/auth"
)

func testContainer(t *testing.T, ping func(ctx context.Context) error) *Container {
	t.Helper()
	cfg := &config.Config{}
	cfg.Server.Mode = "production"
	cfg.Server.AllowedOrigins = []string{"http://localhost:5173"}
	cfg.Server.MaxUploadMB = 20
	cfg.Media.Provider = config.MediaLocal
	cfg.Media.Local.StoragePath = t.TempDir()

	lgr := zerolog.Nop()
	jwtService := pkgAuth.NewJWTService(pkgAuth.JWTConfig{SecretKey: "test-secret"})
	return &Container{
		Config:            cfg,
		Logger:            lgr,
		JWTService:        jwtService,
		StudentController: appControllers.NewStudentController(nil, nil, nil, 20, lgr),
		AdminController:   appControllers.NewAdminController(nil, lgr),
		AuthController:    appControllers.NewAuthController(nil, lgr),
		HealthController:  appControllers.NewHealthController(ping, lgr),
		AuthMiddleware:    appMiddleware.NewAuthMiddleware(jwtService),
	}
}

func TestSetupRouter(t *testing.T) {
	c := testContainer(t, func(context.Context) error { return nil })
	if err := os.WriteFile(filepath.Join(c.Config.Media.Local.StoragePath, "photo.txt"), []byte("hello"), 0o600); err != nil {
		t.Fatal(err)
	}
	router := SetupRouter(c)
	if gin.Mode() != gin.ReleaseMode {
		t.Errorf("gin mode = %s, want release", gin.Mode())
	}

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{name: "health", method: http.MethodGet, path: "/health", want: http.StatusOK},
		{name: "promote requires token", method: http.MethodPost, path: "/api/students/promote", want: http.StatusUnauthorized},
		{name: "purge requires token", method: http.MethodDelete, path: "/api/students/delete/2019", want: http.StatusUnauthorized},
		{name: "local uploads served", method: http.MethodGet, path: "/uploads/photo.txt", want: http.StatusOK},
		{name: "unknown route", method: http.MethodGet, path: "/api/unknown", want: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, tt.path, nil)
			router.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("%s %s = %d, want %d", tt.method, tt.path, w.Code, tt.want)
			}
		})
	}
}

func TestSetupRouter_HealthUnavailable(t *testing.T) {
	c := testContainer(t, func(context.Context) error { return errors.New("down") })
	router := SetupRouter(c)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestContainer_EmptyPingAndClose(t *testing.T) {
	c := &Container{Logger: zerolog.Nop()}
	if err := c.Ping(context.Background()); err == nil {
		t.Error("expected Ping to fail without a database")
	}
	if err := c.Close(context.Background()); err != nil {
		t.Errorf("Close on empty container: %v", err)
	}
}
