package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/svpddu/studentrecords/internal/app/repositories"
	"github.com/svpddu/studentrecords/internal/pkg/export"
)

// ExportService builds spreadsheet exports of the student register
type ExportService interface {
	// Students writes an XLSX workbook of all students, optionally only one class
	Students(ctx context.Context, class string) (*Document, error)
}

// exportServiceImpl implements ExportService
type exportServiceImpl struct {
	studentRepo repositories.StudentRepository
	now         func() time.Time
}

// NewExportService creates a new ExportService
func NewExportService(studentRepo repositories.StudentRepository) ExportService {
	return &exportServiceImpl{studentRepo: studentRepo, now: time.Now}
}

// Students implements ExportService
func (s *exportServiceImpl) Students(ctx context.Context, class string) (*Document, error) {
	students, err := s.studentRepo.List(ctx, repositories.StudentFilter{Class: class})
	if err != nil {
		return nil, fmt.Errorf("error listing students for export: %w", err)
	}

	var buf bytes.Buffer
	if err := export.WriteStudents(&buf, students); err != nil {
		return nil, fmt.Errorf("error writing workbook: %w", err)
	}
	return &Document{Filename: export.Filename(class, s.now()), Content: buf.Bytes()}, nil
}
