// Package pgrepo implements the repositories on PostgreSQL via pgx and squirrel.
package pgrepo

import (
	"github.com/svpddu/studentrecords/internal/app/repositories"
	"github.com/svpddu/studentrecords/internal/db"
)

// NewRepositories wires the Postgres-backed repositories
func NewRepositories(pg *db.PostgresDB) *repositories.Repositories {
	return &repositories.Repositories{
		Students: NewStudentRepository(pg),
		Users:    NewUserRepository(pg),
	}
}
