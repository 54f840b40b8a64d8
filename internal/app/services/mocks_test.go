package services

import (
	"context"
	"mime/multipart"
	"time"

	"github.com/svpddu/studentrecords/internal/app/models"
	"github.com/svpddu/studentrecords/internal/app/repositories"
	"github.com/svpddu/studentrecords/internal/pkg/pdf"
)

type mockStudentRepo struct {
	CreateFunc                func(ctx context.Context, s *models.Student) error
	GetByIDFunc               func(ctx context.Context, id string) (*models.Student, error)
	ListFunc                  func(ctx context.Context, filter repositories.StudentFilter) ([]*models.Student, error)
	ReplaceFunc               func(ctx context.Context, s *models.Student, expectedRevision int64) error
	SetVerifiedFunc           func(ctx context.Context, id string, verified bool) (*models.Student, error)
	DeleteFunc                func(ctx context.Context, id string) error
	ClassStrengthFunc         func(ctx context.Context) ([]models.ClassStrength, error)
	PromoteFunc               func(ctx context.Context) (models.PromotionResult, error)
	DeleteByAdmissionYearFunc func(ctx context.Context, year string) (int64, error)
}

func (m *mockStudentRepo) Create(ctx context.Context, s *models.Student) error {
	return m.CreateFunc(ctx, s)
}

func (m *mockStudentRepo) GetByID(ctx context.Context, id string) (*models.Student, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *mockStudentRepo) List(ctx context.Context, filter repositories.StudentFilter) ([]*models.Student, error) {
	return m.ListFunc(ctx, filter)
}

func (m *mockStudentRepo) Replace(ctx context.Context, s *models.Student, expectedRevision int64) error {
	return m.ReplaceFunc(ctx, s, expectedRevision)
}

func (m *mockStudentRepo) SetVerified(ctx context.Context, id string, verified bool) (*models.Student, error) {
	return m.SetVerifiedFunc(ctx, id, verified)
}

func (m *mockStudentRepo) Delete(ctx context.Context, id string) error {
	return m.DeleteFunc(ctx, id)
}

func (m *mockStudentRepo) ClassStrength(ctx context.Context) ([]models.ClassStrength, error) {
	return m.ClassStrengthFunc(ctx)
}

func (m *mockStudentRepo) Promote(ctx context.Context) (models.PromotionResult, error) {
	return m.PromoteFunc(ctx)
}

func (m *mockStudentRepo) DeleteByAdmissionYear(ctx context.Context, year string) (int64, error) {
	return m.DeleteByAdmissionYearFunc(ctx, year)
}

type mockUserRepo struct {
	FindByEmailFunc func(ctx context.Context, email string) (*models.User, error)
	CreateFunc      func(ctx context.Context, u *models.User) error
	CountFunc       func(ctx context.Context) (int64, error)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.FindByEmailFunc(ctx, email)
}

func (m *mockUserRepo) Create(ctx context.Context, u *models.User) error {
	return m.CreateFunc(ctx, u)
}

func (m *mockUserRepo) Count(ctx context.Context) (int64, error) {
	return m.CountFunc(ctx)
}

type mockMediaStore struct {
	UploadFunc func(ctx context.Context, folder string, fh *multipart.FileHeader) (string, error)
}

func (m *mockMediaStore) Upload(ctx context.Context, folder string, fh *multipart.FileHeader) (string, error) {
	return m.UploadFunc(ctx, folder, fh)
}

type mockRenderer struct {
	RenderFunc func(ctx context.Context, html string, size pdf.PaperSize) ([]byte, error)
}

func (m *mockRenderer) Render(ctx context.Context, html string, size pdf.PaperSize) ([]byte, error) {
	return m.RenderFunc(ctx, html, size)
}

// memoryCache is a map backed cache.Store that records deletions
type memoryCache struct {
	values  map[string]interface{}
	deletes int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string]interface{}{}}
}

func (c *memoryCache) GetJSON(_ context.Context, key string, dest interface{}) (bool, error) {
	v, ok := c.values[key]
	if !ok {
		return false, nil
	}
	if out, ok := dest.(*[]models.ClassStrength); ok {
		*out = v.([]models.ClassStrength)
	}
	return true, nil
}

func (c *memoryCache) SetJSON(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.values[key] = value
	return nil
}

func (c *memoryCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.values, k)
	}
	c.deletes++
	return nil
}
