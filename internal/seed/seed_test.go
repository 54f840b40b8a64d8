package seed

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/svpddu/studentrecords/internal/app/models"
	"github.com/svpddu/studentrecords/internal/pkg/apperrors"
	"github.com/svpddu/studentrecords/internal/pkg/auth"
)

type memoryUsers struct {
	byEmail map[string]*models.User
	failOn  string
}

func (m *memoryUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, apperrors.ErrUserNotFound
}

func (m *memoryUsers) Create(_ context.Context, u *models.User) error {
	if u.Email == m.failOn {
		return errors.New("write failed")
	}
	if _, ok := m.byEmail[u.Email]; ok {
		return apperrors.ErrEmailAlreadyExists
	}
	u.ID = "id-" + u.Email
	m.byEmail[u.Email] = u
	return nil
}

func (m *memoryUsers) Count(context.Context) (int64, error) {
	return int64(len(m.byEmail)), nil
}

func TestCreateDefaultUsers(t *testing.T) {
	repo := &memoryUsers{byEmail: map[string]*models.User{}}
	emails := []string{"student@example.com", " teacher@example.com ", ""}

	created, err := CreateDefaultUsers(context.Background(), repo, emails, "password123", zerolog.Nop())
	if err != nil {
		t.Fatalf("CreateDefaultUsers: %v", err)
	}
	if created != 2 {
		t.Fatalf("created = %d, want 2", created)
	}
	u := repo.byEmail["teacher@example.com"]
	if u == nil || !auth.CheckPassword(u.PasswordHash, "password123") {
		t.Errorf("teacher account not stored with a valid hash: %+v", u)
	}

	created, err = CreateDefaultUsers(context.Background(), repo, emails, "password123", zerolog.Nop())
	if err != nil || created != 0 {
		t.Errorf("second run created %d, err %v; want 0, nil", created, err)
	}
}

func TestCreateUsers(t *testing.T) {
	repo := &memoryUsers{
		byEmail: map[string]*models.User{"old@example.com": {Email: "old@example.com"}},
		failOn:  "broken@example.com",
	}

	created, err := CreateUsers(context.Background(), repo,
		[]string{"old@example.com", "broken@example.com", "new@example.com"}, "pw", zerolog.Nop())
	if created != 1 {
		t.Errorf("created = %d, want 1", created)
	}
	if err == nil {
		t.Error("expected the failed write to be reported")
	}

	if _, err := CreateUsers(context.Background(), repo, []string{"x@example.com"}, "", zerolog.Nop()); err == nil {
		t.Error("expected an error without a password")
	}
}
