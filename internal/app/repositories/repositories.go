package repositories

import (
	"context"

	"github.com/svpddu/studentrecords/internal/app/models"
)

// StudentFilter narrows List. Empty fields do not filter.
type StudentFilter struct {
	Class         string
	AdmissionYear string
}

// StudentRepository persists students. Implementations return
// apperrors.ErrInvalidStudentID for ids they cannot parse,
// apperrors.ErrStudentNotFound for missing rows and
// apperrors.ErrDuplicateSerial on a serial number collision.
type StudentRepository interface {
	// Create stores s and fills in ID, Revision and timestamps
	Create(ctx context.Context, s *models.Student) error
	GetByID(ctx context.Context, id string) (*models.Student, error)
	List(ctx context.Context, filter StudentFilter) ([]*models.Student, error)
	// Replace writes s only if the stored revision still equals expectedRevision,
	// otherwise apperrors.ErrRevisionConflict. On success s.Revision is bumped.
	Replace(ctx context.Context, s *models.Student, expectedRevision int64) error
	SetVerified(ctx context.Context, id string, verified bool) (*models.Student, error)
	// Delete is idempotent; a missing id is not an error
	Delete(ctx context.Context, id string) error
	// ClassStrength groups by class, ordered by class name as a string
	ClassStrength(ctx context.Context) ([]models.ClassStrength, error)
	// Promote advances every non-graduated student, see records.NextClass
	Promote(ctx context.Context) (models.PromotionResult, error)
	DeleteByAdmissionYear(ctx context.Context, year string) (int64, error)
}

// UserRepository persists login principals
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
	Count(ctx context.Context) (int64, error)
}

// Repositories holds all the repository instances
type Repositories struct {
	Students StudentRepository
	Users    UserRepository
}
