package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/svpddu/studentrecords/internal/app/documents"
	"github.com/svpddu/studentrecords/internal/app/repositories"
	"github.com/svpddu/studentrecords/internal/pkg/apperrors"
	"github.com/svpddu/studentrecords/internal/pkg/logger"
	"github.com/svpddu/studentrecords/internal/pkg/pdf"
)

// Document is a rendered file ready to be sent
type Document struct {
	Filename string
	Content  []byte
}

// DocumentService defines the printable student documents
type DocumentService interface {
	ProfilePDF(ctx context.Context, id string) (*Document, error)
	IDCardPDF(ctx context.Context, id string) (*Document, error)
}

// documentServiceImpl implements DocumentService
type documentServiceImpl struct {
	studentRepo repositories.StudentRepository
	builder     *documents.Builder
	renderer    pdf.Renderer
	logger      zerolog.Logger
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(
	studentRepo repositories.StudentRepository,
	builder *documents.Builder,
	renderer pdf.Renderer,
) DocumentService {
	return &documentServiceImpl{
		studentRepo: studentRepo,
		builder:     builder,
		renderer:    renderer,
		logger:      logger.Component("documents"),
	}
}

// ProfilePDF renders the A4 profile sheet of a student
func (s *documentServiceImpl) ProfilePDF(ctx context.Context, id string) (*Document, error) {
	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	html, err := s.builder.ProfileHTML(student)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrRenderFailed, err)
	}
	content, err := s.render(ctx, id, html, pdf.PaperA4)
	if err != nil {
		return nil, err
	}
	return &Document{Filename: documents.ProfileFilename(student.Name), Content: content}, nil
}

// IDCardPDF renders the credit card sized identity card of a student
func (s *documentServiceImpl) IDCardPDF(ctx context.Context, id string) (*Document, error) {
	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	html, err := s.builder.IDCardHTML(student)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrRenderFailed, err)
	}
	content, err := s.render(ctx, id, html, pdf.PaperIDCard)
	if err != nil {
		return nil, err
	}
	return &Document{Filename: documents.IDCardFilename(student.Name), Content: content}, nil
}

func (s *documentServiceImpl) render(ctx context.Context, id, html string, size pdf.PaperSize) ([]byte, error) {
	content, err := s.renderer.Render(ctx, html, size)
	if err != nil {
		s.logger.Error().Err(err).Str("id", id).Msg("PDF rendering failed")
		return nil, fmt.Errorf("%w: %v", apperrors.ErrRenderFailed, err)
	}
	return content, nil
}
