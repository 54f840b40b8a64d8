package services

import (
	"context"
	"errors"
	"testing"

	"github.com/svpddu/studentrecords/internal/app/models"
	"github.com/svpddu/studentrecords/internal/pkg/apperrors"
)

func TestAdminService_Promote(t *testing.T) {
	repo := &mockStudentRepo{
		PromoteFunc: func(context.Context) (models.PromotionResult, error) {
			return models.PromotionResult{Promoted: 40, Graduated: 7}, nil
		},
	}
	store := newMemoryCache()
	svc := NewAdminService(repo, store)

	got, err := svc.Promote(context.Background())
	if err != nil {
		t.Fatalf("Promote: %v", err)
	}
	if got.Promoted != 40 || got.Graduated != 7 {
		t.Errorf("got %+v", got)
	}
	if store.deletes != 1 {
		t.Errorf("cache invalidations = %d, want 1", store.deletes)
	}
}

func TestAdminService_PurgeYear(t *testing.T) {
	tests := []struct {
		name      string
		year      string
		wantErr   error
		wantCount int64
		wantCall  bool
	}{
		{name: "valid year", year: "2019", wantCount: 12, wantCall: true},
		{name: "two digits", year: "19", wantErr: apperrors.ErrInvalidYear},
		{name: "letters", year: "20ab", wantErr: apperrors.ErrInvalidYear},
		{name: "empty", year: "", wantErr: apperrors.ErrInvalidYear},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			repo := &mockStudentRepo{
				DeleteByAdmissionYearFunc: func(_ context.Context, year string) (int64, error) {
					called = true
					if year != tt.year {
						t.Errorf("year = %q, want %q", year, tt.year)
					}
					return 12, nil
				},
			}
			svc := NewAdminService(repo, nil)

			got, err := svc.PurgeYear(context.Background(), tt.year)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if got != tt.wantCount {
				t.Errorf("deleted = %d, want %d", got, tt.wantCount)
			}
			if called != tt.wantCall {
				t.Errorf("repository called = %v, want %v", called, tt.wantCall)
			}
		})
	}
}
