package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/rs/zerolog"

	"github.com/svpddu/studentrecords/internal/app/models"
	"github.com/svpddu/studentrecords/internal/app/records"
	"github.com/svpddu/studentrecords/internal/app/repositories"
	"github.com/svpddu/studentrecords/internal/pkg/apperrors"
	"github.com/svpddu/studentrecords/internal/pkg/cache"
	"github.com/svpddu/studentrecords/internal/pkg/filestorage"
	"github.com/svpddu/studentrecords/internal/pkg/logger"
	"github.com/svpddu/studentrecords/internal/pkg/validation"
)

// maxUpdateAttempts bounds the optimistic update loop
const maxUpdateAttempts = 3

// StudentFiles are the multipart files attached to a create or update request
type StudentFiles struct {
	StudentPhoto     *multipart.FileHeader
	StudentSignature *multipart.FileHeader
	// Guardians is keyed by the parent_{i}_photo index
	Guardians map[int]*multipart.FileHeader
}

// StudentService defines the interface for student record operations
type StudentService interface {
	Create(ctx context.Context, sub records.Submission, files StudentFiles) (*models.Student, error)
	Update(ctx context.Context, id string, sub records.Submission, files StudentFiles) (*models.Student, error)
	// SetVerified returns the stored record unchanged when verified is nil
	SetVerified(ctx context.Context, id string, verified *bool) (*models.Student, error)
	Get(ctx context.Context, id string) (*models.Student, error)
	List(ctx context.Context, class string) ([]*models.Student, error)
	Delete(ctx context.Context, id string) error
	ClassStrength(ctx context.Context) ([]models.ClassStrength, error)
}

// studentServiceImpl implements StudentService
type studentServiceImpl struct {
	studentRepo repositories.StudentRepository
	media       filestorage.MediaStore
	cache       cache.Store
	cacheTTL    time.Duration
	logger      zerolog.Logger
}

// NewStudentService creates a new StudentService
func NewStudentService(
	studentRepo repositories.StudentRepository,
	media filestorage.MediaStore,
	store cache.Store,
	cacheTTL time.Duration,
) StudentService {
	if store == nil {
		store = cache.NoopStore{}
	}
	return &studentServiceImpl{
		studentRepo: studentRepo,
		media:       media,
		cache:       store,
		cacheTTL:    cacheTTL,
		logger:      logger.Component("students"),
	}
}

// Create registers a new student
func (s *studentServiceImpl) Create(ctx context.Context, sub records.Submission, files StudentFiles) (*models.Student, error) {
	fields := records.Normalize(sub)

	// required fields do not depend on media, so reject before uploading anything
	if err := validation.Struct(records.MergeCreate(fields, records.Uploads{})); err != nil {
		return nil, err
	}

	uploads, err := s.upload(ctx, files)
	if err != nil {
		return nil, err
	}
	student := records.MergeCreate(fields, uploads)

	if err := s.studentRepo.Create(ctx, &student); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateSerial) {
			s.logger.Error().Str("serialNumber", student.SerialNumber).Msg("Serial number collision on registration")
		}
		return nil, fmt.Errorf("error creating student: %w", err)
	}

	s.invalidate(ctx)
	s.logger.Info().Str("id", student.ID).Str("serialNumber", student.SerialNumber).Msg("Student registered")
	return &student, nil
}

// Update merges a submission into the stored student. Concurrent writers are
// detected through the revision counter and the merge is retried on a fresh copy.
func (s *studentServiceImpl) Update(ctx context.Context, id string, sub records.Submission, files StudentFiles) (*models.Student, error) {
	existing, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := records.Normalize(sub)
	uploads, err := s.upload(ctx, files)
	if err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		merged := records.MergeUpdate(*existing, fields, uploads)
		if err := validation.Struct(merged); err != nil {
			return nil, err
		}

		err := s.studentRepo.Replace(ctx, &merged, existing.Revision)
		if err == nil {
			s.invalidate(ctx)
			return &merged, nil
		}
		if !errors.Is(err, apperrors.ErrRevisionConflict) {
			if errors.Is(err, apperrors.ErrDuplicateSerial) {
				s.logger.Error().Str("id", id).Str("serialNumber", merged.SerialNumber).Msg("Serial number collision on update")
			}
			return nil, fmt.Errorf("error updating student: %w", err)
		}
		if attempt == maxUpdateAttempts {
			s.logger.Warn().Str("id", id).Int("attempts", attempt).Msg("Giving up on concurrently modified student")
			return nil, err
		}

		s.logger.Debug().Str("id", id).Int("attempt", attempt).Msg("Revision conflict, reloading student")
		if existing, err = s.studentRepo.GetByID(ctx, id); err != nil {
			return nil, err
		}
	}
}

// SetVerified flips the verification flag
func (s *studentServiceImpl) SetVerified(ctx context.Context, id string, verified *bool) (*models.Student, error) {
	if verified == nil {
		return s.studentRepo.GetByID(ctx, id)
	}
	student, err := s.studentRepo.SetVerified(ctx, id, *verified)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return student, nil
}

// Get returns one student
func (s *studentServiceImpl) Get(ctx context.Context, id string) (*models.Student, error) {
	return s.studentRepo.GetByID(ctx, id)
}

// List returns all students, optionally only those in class
func (s *studentServiceImpl) List(ctx context.Context, class string) ([]*models.Student, error) {
	students, err := s.studentRepo.List(ctx, repositories.StudentFilter{Class: class})
	if err != nil {
		return nil, fmt.Errorf("error listing students: %w", err)
	}
	if students == nil {
		students = []*models.Student{}
	}
	return students, nil
}

// Delete removes a student. Unknown ids are not an error.
func (s *studentServiceImpl) Delete(ctx context.Context, id string) error {
	if err := s.studentRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// ClassStrength counts students per class, served from cache when possible
func (s *studentServiceImpl) ClassStrength(ctx context.Context) ([]models.ClassStrength, error) {
	var cached []models.ClassStrength
	found, err := s.cache.GetJSON(ctx, cache.KeyClassStrength, &cached)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Class strength cache read failed")
	}
	if found && cached != nil {
		return cached, nil
	}

	classes, err := s.studentRepo.ClassStrength(ctx)
	if err != nil {
		return nil, fmt.Errorf("error counting class strength: %w", err)
	}
	if classes == nil {
		classes = []models.ClassStrength{}
	}

	if err := s.cache.SetJSON(ctx, cache.KeyClassStrength, classes, s.cacheTTL); err != nil {
		s.logger.Warn().Err(err).Msg("Class strength cache write failed")
	}
	return classes, nil
}

// upload stores every attached file once, before any database work
func (s *studentServiceImpl) upload(ctx context.Context, files StudentFiles) (records.Uploads, error) {
	var up records.Uploads
	var err error

	if files.StudentPhoto != nil {
		if up.StudentPhoto, err = s.store(ctx, models.FolderStudentPhotos, files.StudentPhoto); err != nil {
			return up, err
		}
	}
	if files.StudentSignature != nil {
		if up.StudentSignature, err = s.store(ctx, models.FolderStudentSignatures, files.StudentSignature); err != nil {
			return up, err
		}
	}
	for slot, fh := range files.Guardians {
		if fh == nil {
			continue
		}
		url, err := s.store(ctx, models.FolderParentPhotos, fh)
		if err != nil {
			return up, err
		}
		if up.Guardians == nil {
			up.Guardians = make(map[int]string, len(files.Guardians))
		}
		up.Guardians[slot] = url
	}
	return up, nil
}

func (s *studentServiceImpl) store(ctx context.Context, folder string, fh *multipart.FileHeader) (string, error) {
	url, err := s.media.Upload(ctx, folder, fh)
	if err != nil {
		s.logger.Error().Err(err).Str("folder", folder).Str("filename", fh.Filename).Msg("Media upload failed")
		return "", fmt.Errorf("%w: %s: %v", apperrors.ErrUploadFailed, fh.Filename, err)
	}
	return url, nil
}

func (s *studentServiceImpl) invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, cache.KeyClassStrength); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to invalidate class strength cache")
	}
}
