package controllers

import (
	"context"

	"github.com/svpddu/studentrecords/internal/app/models"
	"github.com/svpddu/studentrecords/internal/app/records"
	"github.com/svpddu/studentrecords/internal/app/services"
)

type mockStudentService struct {
	CreateFunc        func(ctx context.Context, sub records.Submission, files services.StudentFiles) (*models.Student, error)
	UpdateFunc        func(ctx context.Context, id string, sub records.Submission, files services.StudentFiles) (*models.Student, error)
	SetVerifiedFunc   func(ctx context.Context, id string, verified *bool) (*models.Student, error)
	GetFunc           func(ctx context.Context, id string) (*models.Student, error)
	ListFunc          func(ctx context.Context, class string) ([]*models.Student, error)
	DeleteFunc        func(ctx context.Context, id string) error
	ClassStrengthFunc func(ctx context.Context) ([]models.ClassStrength, error)
}

func (m *mockStudentService) Create(ctx context.Context, sub records.Submission, files services.StudentFiles) (*models.Student, error) {
	return m.CreateFunc(ctx, sub, files)
}

func (m *mockStudentService) Update(ctx context.Context, id string, sub records.Submission, files services.StudentFiles) (*models.Student, error) {
	return m.UpdateFunc(ctx, id, sub, files)
}

func (m *mockStudentService) SetVerified(ctx context.Context, id string, verified *bool) (*models.Student, error) {
	return m.SetVerifiedFunc(ctx, id, verified)
}

func (m *mockStudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	return m.GetFunc(ctx, id)
}

func (m *mockStudentService) List(ctx context.Context, class string) ([]*models.Student, error) {
	return m.ListFunc(ctx, class)
}

func (m *mockStudentService) Delete(ctx context.Context, id string) error {
	return m.DeleteFunc(ctx, id)
}

func (m *mockStudentService) ClassStrength(ctx context.Context) ([]models.ClassStrength, error) {
	return m.ClassStrengthFunc(ctx)
}

type mockDocumentService struct {
	ProfilePDFFunc func(ctx context.Context, id string) (*services.Document, error)
	IDCardPDFFunc  func(ctx context.Context, id string) (*services.Document, error)
}

func (m *mockDocumentService) ProfilePDF(ctx context.Context, id string) (*services.Document, error) {
	return m.ProfilePDFFunc(ctx, id)
}

func (m *mockDocumentService) IDCardPDF(ctx context.Context, id string) (*services.Document, error) {
	return m.IDCardPDFFunc(ctx, id)
}

type mockExportService struct {
	StudentsFunc func(ctx context.Context, class string) (*services.Document, error)
}

func (m *mockExportService) Students(ctx context.Context, class string) (*services.Document, error) {
	return m.StudentsFunc(ctx, class)
}

type mockAdminService struct {
	PromoteFunc   func(ctx context.Context) (models.PromotionResult, error)
	PurgeYearFunc func(ctx context.Context, year string) (int64, error)
}

func (m *mockAdminService) Promote(ctx context.Context) (models.PromotionResult, error) {
	return m.PromoteFunc(ctx)
}

func (m *mockAdminService) PurgeYear(ctx context.Context, year string) (int64, error) {
	return m.PurgeYearFunc(ctx, year)
}
