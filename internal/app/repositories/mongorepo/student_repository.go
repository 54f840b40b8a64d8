package mongorepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/svpddu/studentrecords/internal/app/models"
	"github.com/svpddu/studentrecords/internal/app/records"
	"github.com/svpddu/studentrecords/internal/app/repositories"
	"github.com/svpddu/studentrecords/internal/pkg/apperrors"
	"github.com/svpddu/studentrecords/internal/pkg/dberrors"
	"github.com/svpddu/studentrecords/internal/pkg/logger"
)

const studentsCollection = "students"

type guardianDocument struct {
	Name     string `bson:"name,omitempty"`
	AadharNo string `bson:"aadharNo,omitempty"`
	MobileNo string `bson:"mobileNo,omitempty"`
	Relation string `bson:"relation,omitempty"`
	Photo    string `bson:"photo,omitempty"`
}

type studentDocument struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	SerialNumber     string             `bson:"serialNumber"`
	Name             string             `bson:"name"`
	DOB              string             `bson:"dob"`
	Caste            string             `bson:"caste"`
	MobileNo         string             `bson:"mobileNo"`
	AdmissionYear    string             `bson:"admissionYear"`
	Address          string             `bson:"address"`
	Village          string             `bson:"village"`
	Block            string             `bson:"block"`
	District         string             `bson:"district"`
	State            string             `bson:"state"`
	Class            string             `bson:"class"`
	IsVerified       bool               `bson:"isVerified"`
	IsGraduated      bool               `bson:"isGraduated"`
	StudentPhoto     string             `bson:"studentPhoto,omitempty"`
	StudentSignature string             `bson:"studentSignature,omitempty"`
	Parents          []guardianDocument `bson:"parents"`
	Revision         int64              `bson:"__v"`
	CreatedAt        time.Time          `bson:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt"`
}

func toDocument(s *models.Student) studentDocument {
	parents := make([]guardianDocument, 0, len(s.Parents))
	for _, g := range s.Parents {
		parents = append(parents, guardianDocument(g))
	}
	return studentDocument{
		SerialNumber:     s.SerialNumber,
		Name:             s.Name,
		DOB:              s.DOB,
		Caste:            s.Caste,
		MobileNo:         s.MobileNo,
		AdmissionYear:    s.AdmissionYear,
		Address:          s.Address,
		Village:          s.Village,
		Block:            s.Block,
		District:         s.District,
		State:            s.State,
		Class:            s.Class,
		IsVerified:       s.IsVerified,
		IsGraduated:      s.IsGraduated,
		StudentPhoto:     s.StudentPhoto,
		StudentSignature: s.StudentSignature,
		Parents:          parents,
		Revision:         s.Revision,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}

func (d *studentDocument) toModel() *models.Student {
	parents := make([]models.Guardian, 0, len(d.Parents))
	for _, g := range d.Parents {
		parents = append(parents, models.Guardian(g))
	}
	return &models.Student{
		ID:               d.ID.Hex(),
		SerialNumber:     d.SerialNumber,
		Name:             d.Name,
		DOB:              d.DOB,
		Caste:            d.Caste,
		MobileNo:         d.MobileNo,
		AdmissionYear:    d.AdmissionYear,
		Address:          d.Address,
		Village:          d.Village,
		Block:            d.Block,
		District:         d.District,
		State:            d.State,
		Class:            d.Class,
		IsVerified:       d.IsVerified,
		IsGraduated:      d.IsGraduated,
		StudentPhoto:     d.StudentPhoto,
		StudentSignature: d.StudentSignature,
		Parents:          parents,
		Revision:         d.Revision,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

// StudentRepository stores students in a Mongo collection
type StudentRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
	now     func() time.Time
}

var _ repositories.StudentRepository = (*StudentRepository)(nil)

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(db *mongo.Database, timeout time.Duration) *StudentRepository {
	return &StudentRepository{
		coll:    db.Collection(studentsCollection),
		timeout: timeout,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// EnsureIndexes creates the unique serial index and the lookup indexes
func (r *StudentRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "serialNumber", Value: 1}}, Options: options.Index().SetUnique(true).SetName("serialNumber_unique")},
		{Keys: bson.D{{Key: "class", Value: 1}}, Options: options.Index().SetName("class_idx")},
		{Keys: bson.D{{Key: "admissionYear", Value: 1}}, Options: options.Index().SetName("admissionYear_idx")},
	})
	if err != nil {
		return fmt.Errorf("failed to create student indexes: %w", err)
	}
	return nil
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperrors.ErrInvalidStudentID
	}
	return oid, nil
}

// Create inserts a new student document
func (r *StudentRepository) Create(ctx context.Context, s *models.Student) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	now := r.now()
	s.CreatedAt, s.UpdatedAt, s.Revision = now, now, 0

	doc := toDocument(s)
	doc.ID = primitive.NewObjectID()
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if dberrors.IsDuplicateKey(err) {
			logger.Warn().Str("serialNumber", s.SerialNumber).Msg("Serial number collision on create")
			return apperrors.ErrDuplicateSerial
		}
		logger.Error().Err(err).Msg("Error inserting student document")
		return fmt.Errorf("error creating student: %w", err)
	}

	s.ID = doc.ID.Hex()
	return nil
}

// GetByID retrieves a student by ObjectID hex
func (r *StudentRepository) GetByID(ctx context.Context, id string) (*models.Student, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var doc studentDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrStudentNotFound
		}
		logger.Error().Err(err).Str("studentID", id).Msg("Error fetching student document")
		return nil, fmt.Errorf("error getting student by ID: %w", err)
	}
	return doc.toModel(), nil
}

// List returns students matching the filter in insertion order
func (r *StudentRepository) List(ctx context.Context, filter repositories.StudentFilter) ([]*models.Student, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := bson.M{}
	if filter.Class != "" {
		query["class"] = filter.Class
	}
	if filter.AdmissionYear != "" {
		query["admissionYear"] = filter.AdmissionYear
	}

	cursor, err := r.coll.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		logger.Error().Err(err).Msg("Error querying students")
		return nil, fmt.Errorf("error querying students: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []studentDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("error decoding students: %w", err)
	}

	students := make([]*models.Student, 0, len(docs))
	for i := range docs {
		students = append(students, docs[i].toModel())
	}
	return students, nil
}

// Replace performs the compare-and-swap write on __v
func (r *StudentRepository) Replace(ctx context.Context, s *models.Student, expectedRevision int64) error {
	oid, err := parseID(s.ID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	s.UpdatedAt = r.now()
	doc := toDocument(s)
	set := bson.M{
		"serialNumber":  doc.SerialNumber,
		"name":          doc.Name,
		"dob":           doc.DOB,
		"caste":         doc.Caste,
		"mobileNo":      doc.MobileNo,
		"admissionYear": doc.AdmissionYear,
		"address":       doc.Address,
		"village":       doc.Village,
		"block":         doc.Block,
		"district":      doc.District,
		"state":         doc.State,
		"class":         doc.Class,
		"isVerified":    doc.IsVerified,
		"isGraduated":   doc.IsGraduated,
		"parents":       doc.Parents,
		"updatedAt":     doc.UpdatedAt,
	}
	unset := bson.M{}
	setOrUnset(set, unset, "studentPhoto", doc.StudentPhoto)
	setOrUnset(set, unset, "studentSignature", doc.StudentSignature)

	update := bson.M{"$set": set, "$inc": bson.M{"__v": 1}}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid, "__v": expectedRevision}, update)
	if err != nil {
		if dberrors.IsDuplicateKey(err) {
			logger.Warn().Str("serialNumber", s.SerialNumber).Str("studentID", s.ID).Msg("Serial number collision on update")
			return apperrors.ErrDuplicateSerial
		}
		logger.Error().Err(err).Str("studentID", s.ID).Msg("Error updating student document")
		return fmt.Errorf("error updating student: %w", err)
	}

	if res.MatchedCount == 0 {
		n, err := r.coll.CountDocuments(ctx, bson.M{"_id": oid})
		if err != nil {
			return fmt.Errorf("error checking student existence: %w", err)
		}
		if n == 0 {
			return apperrors.ErrStudentNotFound
		}
		return apperrors.ErrRevisionConflict
	}

	s.Revision = expectedRevision + 1
	return nil
}

func setOrUnset(set, unset bson.M, key, value string) {
	if value == "" {
		unset[key] = ""
		return
	}
	set[key] = value
}

// SetVerified flips the verification flag and returns the updated student
func (r *StudentRepository) SetVerified(ctx context.Context, id string, verified bool) (*models.Student, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	update := bson.M{
		"$set": bson.M{"isVerified": verified, "updatedAt": r.now()},
		"$inc": bson.M{"__v": 1},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc studentDocument
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrStudentNotFound
		}
		logger.Error().Err(err).Str("studentID", id).Msg("Error updating verification flag")
		return nil, fmt.Errorf("error setting verification: %w", err)
	}
	return doc.toModel(), nil
}

// Delete removes a student; deleting a missing id succeeds
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		logger.Error().Err(err).Str("studentID", id).Msg("Error deleting student")
		return fmt.Errorf("error deleting student: %w", err)
	}
	return nil
}

// classStrengthPipeline groups by class and sorts by the class string, so
// "10" comes before "9"
func classStrengthPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.D{{Key: "_id", Value: "$class"}, {Key: "studentsCount", Value: bson.D{{Key: "$sum", Value: 1}}}}}},
		{{Key: "$project", Value: bson.D{{Key: "_id", Value: 0}, {Key: "name", Value: "$_id"}, {Key: "studentsCount", Value: 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "name", Value: 1}}}},
	}
}

// ClassStrength aggregates head counts per class
func (r *StudentRepository) ClassStrength(ctx context.Context) ([]models.ClassStrength, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cursor, err := r.coll.Aggregate(ctx, classStrengthPipeline())
	if err != nil {
		logger.Error().Err(err).Msg("Error aggregating class strength")
		return nil, fmt.Errorf("error aggregating class strength: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Name          string `bson:"name"`
		StudentsCount int64  `bson:"studentsCount"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("error decoding class strength: %w", err)
	}

	out := make([]models.ClassStrength, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.ClassStrength{Name: row.Name, StudentsCount: row.StudentsCount})
	}
	return out, nil
}

// Promote computes each student's next class and applies all changes in one
// unordered bulk write.
func (r *StudentRepository) Promote(ctx context.Context) (models.PromotionResult, error) {
	var result models.PromotionResult

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cursor, err := r.coll.Find(ctx,
		bson.M{"isGraduated": bson.M{"$ne": true}},
		options.Find().SetProjection(bson.M{"_id": 1, "class": 1, "isGraduated": 1}),
	)
	if err != nil {
		return result, fmt.Errorf("error loading students for promotion: %w", err)
	}
	defer cursor.Close(ctx)

	now := r.now()
	var writes []mongo.WriteModel
	for cursor.Next(ctx) {
		var doc struct {
			ID          primitive.ObjectID `bson:"_id"`
			Class       string             `bson:"class"`
			IsGraduated bool               `bson:"isGraduated"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return result, fmt.Errorf("error decoding student for promotion: %w", err)
		}

		next, step := records.NextClass(doc.Class, doc.IsGraduated)
		var set bson.M
		switch step {
		case records.PromotionAdvance:
			set = bson.M{"class": next, "updatedAt": now}
			result.Promoted++
		case records.PromotionGraduate:
			set = bson.M{"isGraduated": true, "updatedAt": now}
			result.Graduated++
		default:
			continue
		}
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": doc.ID}).
			SetUpdate(bson.M{"$set": set, "$inc": bson.M{"__v": 1}}))
	}
	if err := cursor.Err(); err != nil {
		return models.PromotionResult{}, fmt.Errorf("error iterating students for promotion: %w", err)
	}

	if len(writes) == 0 {
		return result, nil
	}
	if _, err := r.coll.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false)); err != nil {
		logger.Error().Err(err).Int("writes", len(writes)).Msg("Promotion bulk write failed")
		return models.PromotionResult{}, fmt.Errorf("error promoting students: %w", err)
	}
	return result, nil
}

// DeleteByAdmissionYear removes a whole admission cohort
func (r *StudentRepository) DeleteByAdmissionYear(ctx context.Context, year string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.coll.DeleteMany(ctx, bson.M{"admissionYear": year})
	if err != nil {
		logger.Error().Err(err).Str("admissionYear", year).Msg("Error deleting cohort")
		return 0, fmt.Errorf("error deleting students for year %s: %w", year, err)
	}
	return res.DeletedCount, nil
}
