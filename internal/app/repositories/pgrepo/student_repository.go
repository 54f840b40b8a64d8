package pgrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/svpddu/studentrecords/internal/app/models"
	"github.com/svpddu/studentrecords/internal/app/records"
	"github.com/svpddu/studentrecords/internal/app/repositories"
	"github.com/svpddu/studentrecords/internal/db"
	"github.com/svpddu/studentrecords/internal/pkg/apperrors"
	"github.com/svpddu/studentrecords/internal/pkg/dberrors"
	"github.com/svpddu/studentrecords/internal/pkg/logger"
)

const studentsTable = "students"

var studentColumns = []string{
	"id::text", "serial_number", "name", "dob", "caste", "mobile_no", "admission_year",
	"address", "village", "block", "district", "state", "class", "is_verified", "is_graduated",
	"student_photo", "student_signature", "parents", "revision", "created_at", "updated_at",
}

// StudentRepository stores students in PostgreSQL with guardians in a JSONB column
type StudentRepository struct {
	db  *db.PostgresDB
	sb  squirrel.StatementBuilderType
	now func() time.Time
}

var _ repositories.StudentRepository = (*StudentRepository)(nil)

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(pg *db.PostgresDB) *StudentRepository {
	return &StudentRepository{
		db:  pg,
		sb:  squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		now: func() time.Time { return time.Now().UTC() },
	}
}

func parseID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, apperrors.ErrInvalidStudentID
	}
	return parsed, nil
}

func encodeParents(parents []models.Guardian) ([]byte, error) {
	if parents == nil {
		parents = []models.Guardian{}
	}
	return json.Marshal(parents)
}

func scanStudent(row pgx.Row) (*models.Student, error) {
	var s models.Student
	var parents []byte
	err := row.Scan(
		&s.ID, &s.SerialNumber, &s.Name, &s.DOB, &s.Caste, &s.MobileNo, &s.AdmissionYear,
		&s.Address, &s.Village, &s.Block, &s.District, &s.State, &s.Class, &s.IsVerified, &s.IsGraduated,
		&s.StudentPhoto, &s.StudentSignature, &parents, &s.Revision, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Parents = []models.Guardian{}
	if len(parents) > 0 {
		if err := json.Unmarshal(parents, &s.Parents); err != nil {
			return nil, fmt.Errorf("failed to decode parents: %w", err)
		}
	}
	return &s, nil
}

// Create inserts a new student row
func (r *StudentRepository) Create(ctx context.Context, s *models.Student) error {
	parents, err := encodeParents(s.Parents)
	if err != nil {
		return fmt.Errorf("failed to encode parents: %w", err)
	}

	id := uuid.New()
	now := r.now()
	sql, args, err := r.sb.Insert(studentsTable).
		Columns("id", "serial_number", "name", "dob", "caste", "mobile_no", "admission_year",
			"address", "village", "block", "district", "state", "class", "is_verified", "is_graduated",
			"student_photo", "student_signature", "parents", "revision", "created_at", "updated_at").
		Values(id, s.SerialNumber, s.Name, s.DOB, s.Caste, s.MobileNo, s.AdmissionYear,
			s.Address, s.Village, s.Block, s.District, s.State, s.Class, s.IsVerified, s.IsGraduated,
			s.StudentPhoto, s.StudentSignature, parents, 0, now, now).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create student SQL")
		return fmt.Errorf("failed to build create student query: %w", err)
	}

	if _, err := r.db.Pool.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsDuplicateKey(err) {
			logger.Warn().Str("serialNumber", s.SerialNumber).Msg("Serial number collision on create")
			return apperrors.ErrDuplicateSerial
		}
		logger.Error().Err(err).Str("serialNumber", s.SerialNumber).Msg("Error executing create student query")
		return fmt.Errorf("error creating student: %w", err)
	}

	s.ID, s.Revision, s.CreatedAt, s.UpdatedAt = id.String(), 0, now, now
	return nil
}

// GetByID retrieves a student by UUID
func (r *StudentRepository) GetByID(ctx context.Context, id string) (*models.Student, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	sql, args, err := r.sb.Select(studentColumns...).
		From(studentsTable).
		Where(squirrel.Eq{"id": uid}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get student query: %w", err)
	}

	s, err := scanStudent(r.db.Pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		logger.Error().Err(err).Str("studentID", id).Msg("Error fetching student")
		return nil, fmt.Errorf("error getting student by ID: %w", err)
	}
	return s, nil
}

// List returns students matching the filter in creation order
func (r *StudentRepository) List(ctx context.Context, filter repositories.StudentFilter) ([]*models.Student, error) {
	q := r.sb.Select(studentColumns...).From(studentsTable).OrderBy("created_at ASC", "id ASC")
	if filter.Class != "" {
		q = q.Where(squirrel.Eq{"class": filter.Class})
	}
	if filter.AdmissionYear != "" {
		q = q.Where(squirrel.Eq{"admission_year": filter.AdmissionYear})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list students query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying students")
		return nil, fmt.Errorf("error querying students: %w", err)
	}
	defer rows.Close()

	students := []*models.Student{}
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning student: %w", err)
		}
		students = append(students, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating students: %w", err)
	}
	return students, nil
}

// replaceQuery writes every column and bumps revision only while the stored
// revision still equals expectedRevision
func (r *StudentRepository) replaceQuery(id uuid.UUID, s *models.Student, parents []byte, expectedRevision int64, now time.Time) squirrel.UpdateBuilder {
	return r.sb.Update(studentsTable).
		SetMap(map[string]interface{}{
			"serial_number":     s.SerialNumber,
			"name":              s.Name,
			"dob":               s.DOB,
			"caste":             s.Caste,
			"mobile_no":         s.MobileNo,
			"admission_year":    s.AdmissionYear,
			"address":           s.Address,
			"village":           s.Village,
			"block":             s.Block,
			"district":          s.District,
			"state":             s.State,
			"class":             s.Class,
			"is_verified":       s.IsVerified,
			"is_graduated":      s.IsGraduated,
			"student_photo":     s.StudentPhoto,
			"student_signature": s.StudentSignature,
			"parents":           parents,
			"revision":          squirrel.Expr("revision + 1"),
			"updated_at":        now,
		}).
		Where(squirrel.Eq{"id": id, "revision": expectedRevision})
}

// Replace performs the compare-and-swap write on revision
func (r *StudentRepository) Replace(ctx context.Context, s *models.Student, expectedRevision int64) error {
	uid, err := parseID(s.ID)
	if err != nil {
		return err
	}
	parents, err := encodeParents(s.Parents)
	if err != nil {
		return fmt.Errorf("failed to encode parents: %w", err)
	}

	now := r.now()
	sql, args, err := r.replaceQuery(uid, s, parents, expectedRevision, now).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update student query: %w", err)
	}

	tag, err := r.db.Pool.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsDuplicateKey(err) {
			logger.Warn().Str("serialNumber", s.SerialNumber).Str("studentID", s.ID).Msg("Serial number collision on update")
			return apperrors.ErrDuplicateSerial
		}
		logger.Error().Err(err).Str("studentID", s.ID).Msg("Error executing update student query")
		return fmt.Errorf("error updating student: %w", err)
	}

	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.db.Pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM students WHERE id = $1)`, uid).Scan(&exists); err != nil {
			return fmt.Errorf("error checking student existence: %w", err)
		}
		if !exists {
			return apperrors.ErrStudentNotFound
		}
		return apperrors.ErrRevisionConflict
	}

	s.Revision, s.UpdatedAt = expectedRevision+1, now
	return nil
}

// SetVerified flips the verification flag and returns the updated student
func (r *StudentRepository) SetVerified(ctx context.Context, id string, verified bool) (*models.Student, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	sql, args, err := r.sb.Update(studentsTable).
		Set("is_verified", verified).
		Set("revision", squirrel.Expr("revision + 1")).
		Set("updated_at", r.now()).
		Where(squirrel.Eq{"id": uid}).
		Suffix("RETURNING " + strings.Join(studentColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build verify student query: %w", err)
	}

	s, err := scanStudent(r.db.Pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("error setting verification: %w", err)
	}
	return s, nil
}

// Delete removes a student; deleting a missing id succeeds
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	uid, err := parseID(id)
	if err != nil {
		return err
	}

	sql, args, err := r.sb.Delete(studentsTable).Where(squirrel.Eq{"id": uid}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete student query: %w", err)
	}
	if _, err := r.db.Pool.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Str("studentID", id).Msg("Error deleting student")
		return fmt.Errorf("error deleting student: %w", err)
	}
	return nil
}

// classStrengthQuery orders bytewise so "10" sorts before "9" whatever the
// database collation
func (r *StudentRepository) classStrengthQuery() squirrel.SelectBuilder {
	return r.sb.Select("class", "COUNT(*)").
		From(studentsTable).
		GroupBy("class").
		OrderBy(`class COLLATE "C"`)
}

// ClassStrength counts students per class
func (r *StudentRepository) ClassStrength(ctx context.Context) ([]models.ClassStrength, error) {
	sql, args, err := r.classStrengthQuery().ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build class strength query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error aggregating class strength")
		return nil, fmt.Errorf("error aggregating class strength: %w", err)
	}
	defer rows.Close()

	out := []models.ClassStrength{}
	for rows.Next() {
		var cs models.ClassStrength
		if err := rows.Scan(&cs.Name, &cs.StudentsCount); err != nil {
			return nil, fmt.Errorf("error scanning class strength: %w", err)
		}
		out = append(out, cs)
	}
	return out, rows.Err()
}

// promotionQuery moves one student to next, or graduates them
func (r *StudentRepository) promotionQuery(id uuid.UUID, next string, step records.PromotionStep, now time.Time) squirrel.UpdateBuilder {
	q := r.sb.Update(studentsTable).
		Set("revision", squirrel.Expr("revision + 1")).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": id})
	if step == records.PromotionGraduate {
		return q.Set("is_graduated", true)
	}
	return q.Set("class", next)
}

// Promote advances all non-graduated students inside one transaction
func (r *StudentRepository) Promote(ctx context.Context) (models.PromotionResult, error) {
	var result models.PromotionResult

	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `SELECT id, class, is_graduated FROM students WHERE NOT is_graduated FOR UPDATE`)
		if err != nil {
			return fmt.Errorf("error loading students for promotion: %w", err)
		}

		type change struct {
			id   uuid.UUID
			next string
			step records.PromotionStep
		}
		var changes []change
		for rows.Next() {
			var (
				id        uuid.UUID
				class     string
				graduated bool
			)
			if err := rows.Scan(&id, &class, &graduated); err != nil {
				rows.Close()
				return fmt.Errorf("error scanning student for promotion: %w", err)
			}
			if next, step := records.NextClass(class, graduated); step != records.PromotionSkip {
				changes = append(changes, change{id: id, next: next, step: step})
			}
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("error iterating students for promotion: %w", err)
		}

		now := r.now()
		batch := &pgx.Batch{}
		for _, c := range changes {
			if c.step == records.PromotionGraduate {
				result.Graduated++
			} else {
				result.Promoted++
			}
			sql, args, err := r.promotionQuery(c.id, c.next, c.step, now).ToSql()
			if err != nil {
				return fmt.Errorf("failed to build promotion query: %w", err)
			}
			batch.Queue(sql, args...)
		}
		if batch.Len() == 0 {
			return nil
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		logger.Error().Err(err).Msg("Promotion transaction failed")
		return models.PromotionResult{}, err
	}
	return result, nil
}

// DeleteByAdmissionYear removes a whole admission cohort
func (r *StudentRepository) DeleteByAdmissionYear(ctx context.Context, year string) (int64, error) {
	sql, args, err := r.sb.Delete(studentsTable).Where(squirrel.Eq{"admission_year": year}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build delete cohort query: %w", err)
	}
	tag, err := r.db.Pool.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("admissionYear", year).Msg("Error deleting cohort")
		return 0, fmt.Errorf("error deleting students for year %s: %w", year, err)
	}
	return tag.RowsAffected(), nil
}
