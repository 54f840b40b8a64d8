// Package mongorepo implements the repositories on MongoDB.
package mongorepo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/svpddu/studentrecords/internal/app/repositories"
)

// NewRepositories wires the Mongo-backed repositories and creates their indexes
func NewRepositories(ctx context.Context, db *mongo.Database, timeout time.Duration) (*repositories.Repositories, error) {
	students := NewStudentRepository(db, timeout)
	users := NewUserRepository(db, timeout)

	if err := students.EnsureIndexes(ctx); err != nil {
		return nil, err
	}
	if err := users.EnsureIndexes(ctx); err != nil {
		return nil, err
	}

	return &repositories.Repositories{Students: students, Users: users}, nil
}
