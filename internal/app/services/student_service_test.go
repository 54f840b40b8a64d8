package services

import (
	"context"
	"errors"
	"mime/multipart"
	"testing"
	"time"

	"github.com/svpddu/studentrecords/internal/app/models"
	"github.com/svpddu/studentrecords/internal/app/records"
	"github.com/svpddu/studentrecords/internal/app/repositories"
	"github.com/svpddu/studentrecords/internal/pkg/apperrors"
	"github.com/svpddu/studentrecords/internal/pkg/cache"
)

func jsonSubmission(body string) records.Submission {
	return records.NewJSONSubmission([]byte(body))
}

func TestStudentService_Create(t *testing.T) {
	var uploadedFolders []string
	media := &mockMediaStore{
		UploadFunc: func(_ context.Context, folder string, fh *multipart.FileHeader) (string, error) {
			uploadedFolders = append(uploadedFolders, folder)
			return "http://media/" + fh.Filename, nil
		},
	}
	repo := &mockStudentRepo{
		CreateFunc: func(_ context.Context, s *models.Student) error {
			s.ID = "665f1c2e9b1d4a0012345678"
			return nil
		},
	}
	store := newMemoryCache()
	svc := NewStudentService(repo, media, store, time.Minute)

	files := StudentFiles{
		StudentPhoto: &multipart.FileHeader{Filename: "ravi.jpg"},
		Guardians:    map[int]*multipart.FileHeader{0: {Filename: "father.jpg"}},
	}
	sub := jsonSubmission(`{"name":"Ravi Kumar","dob":"2008-05-14","admissionYear":"2022","class":"10",
		"parents":[{"name":"Suresh","relation":"Father"}]}`)

	got, err := svc.Create(context.Background(), sub, files)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got.ID == "" || got.SerialNumber != "2022RAVI14052008" {
		t.Errorf("unexpected student: %+v", got)
	}
	if got.StudentPhoto != "http://media/ravi.jpg" {
		t.Errorf("studentPhoto = %q", got.StudentPhoto)
	}
	if len(got.Parents) != 1 || got.Parents[0].Photo != "http://media/father.jpg" {
		t.Errorf("parents = %+v", got.Parents)
	}
	if len(uploadedFolders) != 2 {
		t.Errorf("uploads = %v", uploadedFolders)
	}
	if store.deletes != 1 {
		t.Errorf("cache invalidations = %d, want 1", store.deletes)
	}
}

func TestStudentService_CreateFailures(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		files   StudentFiles
		upload  error
		wantErr error
	}{
		{
			name:    "missing name",
			body:    `{"dob":"2008-05-14","admissionYear":"2022"}`,
			wantErr: apperrors.ErrValidationFailed,
		},
		{
			name:    "blank name yields no serial",
			body:    `{"name":"   ","dob":"2008-05-14","admissionYear":"2022"}`,
			wantErr: apperrors.ErrValidationFailed,
		},
		{
			name:    "upload failure",
			body:    `{"name":"Ravi","dob":"2008-05-14","admissionYear":"2022"}`,
			files:   StudentFiles{StudentSignature: &multipart.FileHeader{Filename: "sig.png"}},
			upload:  errors.New("network down"),
			wantErr: apperrors.ErrUploadFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			created := false
			repo := &mockStudentRepo{
				CreateFunc: func(context.Context, *models.Student) error {
					created = true
					return nil
				},
			}
			media := &mockMediaStore{
				UploadFunc: func(context.Context, string, *multipart.FileHeader) (string, error) {
					return "", tt.upload
				},
			}
			svc := NewStudentService(repo, media, nil, time.Minute)

			_, err := svc.Create(context.Background(), jsonSubmission(tt.body), tt.files)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if created {
				t.Error("repository Create must not be called")
			}
		})
	}
}

func TestStudentService_CreateValidatesBeforeUpload(t *testing.T) {
	uploads := 0
	media := &mockMediaStore{
		UploadFunc: func(context.Context, string, *multipart.FileHeader) (string, error) {
			uploads++
			return "http://media/x.jpg", nil
		},
	}
	svc := NewStudentService(&mockStudentRepo{}, media, nil, time.Minute)

	files := StudentFiles{
		StudentPhoto:     &multipart.FileHeader{Filename: "ravi.jpg"},
		StudentSignature: &multipart.FileHeader{Filename: "sig.png"},
		Guardians:        map[int]*multipart.FileHeader{0: {Filename: "father.jpg"}},
	}
	for _, body := range []string{
		`{"dob":"2008-05-14","admissionYear":"2022"}`,
		`{"name":"Ravi","dob":"2008-05-14"}`,
	} {
		if _, err := svc.Create(context.Background(), jsonSubmission(body), files); !errors.Is(err, apperrors.ErrValidationFailed) {
			t.Fatalf("Create(%s) err = %v, want validation failure", body, err)
		}
	}
	if uploads != 0 {
		t.Errorf("uploads = %d, want none for an invalid registration", uploads)
	}
}

func TestStudentService_UpdateRetriesOnRevisionConflict(t *testing.T) {
	loads := 0
	repo := &mockStudentRepo{
		GetByIDFunc: func(_ context.Context, id string) (*models.Student, error) {
			loads++
			return &models.Student{
				ID:            id,
				Name:          "Ravi Kumar",
				DOB:           "2008-05-14",
				AdmissionYear: "2022",
				SerialNumber:  "2022RAVI14052008",
				Class:         "9",
				Revision:      int64(loads),
			}, nil
		},
	}
	var expected []int64
	repo.ReplaceFunc = func(_ context.Context, s *models.Student, rev int64) error {
		expected = append(expected, rev)
		if len(expected) == 1 {
			return apperrors.ErrRevisionConflict
		}
		s.Revision = rev + 1
		return nil
	}
	store := newMemoryCache()
	svc := NewStudentService(repo, &mockMediaStore{}, store, time.Minute)

	got, err := svc.Update(context.Background(), "abc", jsonSubmission(`{"class":"10"}`), StudentFiles{})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(expected) != 2 || expected[0] != 1 || expected[1] != 2 {
		t.Errorf("expected revisions = %v, want [1 2]", expected)
	}
	if got.Class != "10" || got.Revision != 3 || got.SerialNumber != "2022RAVI14052008" {
		t.Errorf("unexpected result: %+v", got)
	}
	if store.deletes != 1 {
		t.Errorf("cache invalidations = %d, want 1", store.deletes)
	}
}

func TestStudentService_UpdateGivesUpAfterMaxAttempts(t *testing.T) {
	replaces := 0
	repo := &mockStudentRepo{
		GetByIDFunc: func(_ context.Context, id string) (*models.Student, error) {
			return &models.Student{ID: id, Name: "Ravi", AdmissionYear: "2022", SerialNumber: "S1"}, nil
		},
		ReplaceFunc: func(context.Context, *models.Student, int64) error {
			replaces++
			return apperrors.ErrRevisionConflict
		},
	}
	svc := NewStudentService(repo, &mockMediaStore{}, nil, time.Minute)

	_, err := svc.Update(context.Background(), "abc", jsonSubmission(`{"class":"10"}`), StudentFiles{})
	if !errors.Is(err, apperrors.ErrRevisionConflict) {
		t.Fatalf("err = %v, want ErrRevisionConflict", err)
	}
	if replaces != maxUpdateAttempts {
		t.Errorf("replace attempts = %d, want %d", replaces, maxUpdateAttempts)
	}
}

func TestStudentService_UpdateUnknownStudentSkipsUploads(t *testing.T) {
	uploaded := false
	repo := &mockStudentRepo{
		GetByIDFunc: func(context.Context, string) (*models.Student, error) {
			return nil, apperrors.ErrStudentNotFound
		},
	}
	media := &mockMediaStore{
		UploadFunc: func(context.Context, string, *multipart.FileHeader) (string, error) {
			uploaded = true
			return "http://media/x", nil
		},
	}
	svc := NewStudentService(repo, media, nil, time.Minute)

	files := StudentFiles{StudentPhoto: &multipart.FileHeader{Filename: "x.jpg"}}
	_, err := svc.Update(context.Background(), "abc", jsonSubmission(`{}`), files)
	if !errors.Is(err, apperrors.ErrStudentNotFound) {
		t.Fatalf("err = %v, want ErrStudentNotFound", err)
	}
	if uploaded {
		t.Error("no upload expected for an unknown student")
	}
}

func TestStudentService_SetVerified(t *testing.T) {
	stored := &models.Student{ID: "abc", Name: "Ravi"}
	setCalls := 0
	repo := &mockStudentRepo{
		GetByIDFunc: func(context.Context, string) (*models.Student, error) { return stored, nil },
		SetVerifiedFunc: func(_ context.Context, _ string, verified bool) (*models.Student, error) {
			setCalls++
			s := *stored
			s.IsVerified = verified
			return &s, nil
		},
	}
	svc := NewStudentService(repo, &mockMediaStore{}, nil, time.Minute)

	t.Run("nil flag returns the stored record", func(t *testing.T) {
		got, err := svc.SetVerified(context.Background(), "abc", nil)
		if err != nil || got != stored {
			t.Fatalf("got %+v, %v", got, err)
		}
		if setCalls != 0 {
			t.Error("SetVerified must not be called without a flag")
		}
	})

	t.Run("flag is written", func(t *testing.T) {
		verified := true
		got, err := svc.SetVerified(context.Background(), "abc", &verified)
		if err != nil || !got.IsVerified {
			t.Fatalf("got %+v, %v", got, err)
		}
	})
}

func TestStudentService_ListNeverReturnsNil(t *testing.T) {
	var gotFilter repositories.StudentFilter
	repo := &mockStudentRepo{
		ListFunc: func(_ context.Context, f repositories.StudentFilter) ([]*models.Student, error) {
			gotFilter = f
			return nil, nil
		},
	}
	svc := NewStudentService(repo, &mockMediaStore{}, nil, time.Minute)

	got, err := svc.List(context.Background(), "10")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("got %#v, want empty slice", got)
	}
	if gotFilter.Class != "10" {
		t.Errorf("filter = %+v", gotFilter)
	}
}

func TestStudentService_ClassStrengthIsCached(t *testing.T) {
	calls := 0
	repo := &mockStudentRepo{
		ClassStrengthFunc: func(context.Context) ([]models.ClassStrength, error) {
			calls++
			return []models.ClassStrength{{Name: "10", StudentsCount: 3}, {Name: "9", StudentsCount: 2}}, nil
		},
		DeleteFunc: func(context.Context, string) error { return nil },
	}
	store := newMemoryCache()
	svc := NewStudentService(repo, &mockMediaStore{}, store, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		got, err := svc.ClassStrength(ctx)
		if err != nil {
			t.Fatalf("ClassStrength: %v", err)
		}
		if len(got) != 2 || got[0].Name != "10" || got[1].Name != "9" {
			t.Errorf("got %+v", got)
		}
	}
	if calls != 1 {
		t.Errorf("repository calls = %d, want 1", calls)
	}

	if err := svc.Delete(ctx, "abc"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := store.values[cache.KeyClassStrength]; ok {
		t.Error("delete should invalidate the cached class strength")
	}
	if _, err := svc.ClassStrength(ctx); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("repository calls = %d, want 2", calls)
	}
}
