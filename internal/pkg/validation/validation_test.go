package validation

import (
	"errors"
	"testing"

	"github.com/svpddu/studentrecords/internal/pkg/apperrors"
)

type sample struct {
	Name          string `json:"name" validate:"required"`
	AdmissionYear string `json:"admissionYear" validate:"required"`
	Note          string `json:"note"`
}

func TestStruct(t *testing.T) {
	if err := Struct(sample{Name: "Ravi", AdmissionYear: "2022"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := Struct(sample{})
	if !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Fatalf("expected validation error, got %v", err)
	}

	var ce *apperrors.CustomError
	if !errors.As(err, &ce) {
		t.Fatalf("expected CustomError, got %T", err)
	}
	if ce.Message != "admissionYear is required" {
		t.Errorf("message = %q, want the first field alphabetically", ce.Message)
	}
	if len(ce.Details) != 2 || ce.Details["name"] != "name is required" {
		t.Errorf("unexpected details: %v", ce.Details)
	}
}

func TestPatterns(t *testing.T) {
	tests := []struct {
		name string
		fn   func(string) bool
		in   string
		want bool
	}{
		{"year ok", IsAdmissionYear, "2022", true},
		{"year short", IsAdmissionYear, "22", false},
		{"year letters", IsAdmissionYear, "20a2", false},
		{"year empty", IsAdmissionYear, "", false},
		{"email ok", IsEmail, "teacher@example.com", true},
		{"email bad", IsEmail, "teacher@", false},
		{"email empty", IsEmail, "", false},
		{"date ok", IsDate, "2008-05-14", true},
		{"date impossible", IsDate, "2008-02-30", false},
		{"date other format", IsDate, "14/05/2008", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.in); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
