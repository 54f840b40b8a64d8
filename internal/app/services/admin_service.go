package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/svpddu/studentrecords/internal/app/models"
	"github.com/svpddu/studentrecords/internal/app/repositories"
	"github.com/svpddu/studentrecords/internal/pkg/apperrors"
	"github.com/svpddu/studentrecords/internal/pkg/cache"
	"github.com/svpddu/studentrecords/internal/pkg/logger"
	"github.com/svpddu/studentrecords/internal/pkg/validation"
)

// AdminService defines the batch operations over the whole student body
type AdminService interface {
	Promote(ctx context.Context) (models.PromotionResult, error)
	PurgeYear(ctx context.Context, year string) (int64, error)
}

// adminServiceImpl implements AdminService
type adminServiceImpl struct {
	studentRepo repositories.StudentRepository
	cache       cache.Store
	logger      zerolog.Logger
}

// NewAdminService creates a new AdminService
func NewAdminService(studentRepo repositories.StudentRepository, store cache.Store) AdminService {
	if store == nil {
		store = cache.NoopStore{}
	}
	return &adminServiceImpl{
		studentRepo: studentRepo,
		cache:       store,
		logger:      logger.Component("admin"),
	}
}

// Promote moves every non-graduated student up one class and graduates class 12
func (s *adminServiceImpl) Promote(ctx context.Context) (models.PromotionResult, error) {
	result, err := s.studentRepo.Promote(ctx)
	if err != nil {
		return models.PromotionResult{}, fmt.Errorf("error promoting students: %w", err)
	}
	s.invalidate(ctx)
	s.logger.Info().
		Int64("promoted", result.Promoted).
		Int64("graduated", result.Graduated).
		Msg("Batch promotion finished")
	return result, nil
}

// PurgeYear deletes every student admitted in year
func (s *adminServiceImpl) PurgeYear(ctx context.Context, year string) (int64, error) {
	if !validation.IsAdmissionYear(year) {
		return 0, apperrors.ErrInvalidYear
	}
	deleted, err := s.studentRepo.DeleteByAdmissionYear(ctx, year)
	if err != nil {
		return 0, fmt.Errorf("error deleting students admitted in %s: %w", year, err)
	}
	s.invalidate(ctx)
	s.logger.Info().Str("year", year).Int64("deleted", deleted).Msg("Cohort deleted")
	return deleted, nil
}

func (s *adminServiceImpl) invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, cache.KeyClassStrength); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to invalidate class strength cache")
	}
}
