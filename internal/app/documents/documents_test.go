package documents

import (
	"strings"
	"testing"
	"time"

	"github.com/svpddu/studentrecords/internal/app/models"
)

const placeholder = "https://cdn.example/placeholder.jpg"

func testBuilder() *Builder {
	b := NewBuilder("SV Public School", placeholder)
	b.Now = func() time.Time { return time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC) }
	return b
}

func TestProfileHTML(t *testing.T) {
	s := &models.Student{
		Name:          "Ravi Kumar",
		SerialNumber:  "2022RAVI14052008",
		AdmissionYear: "2022",
		DOB:           "2008-05-14",
		Class:         "10",
		Parents: []models.Guardian{
			{Name: "Suresh", Relation: "Father", AadharNo: "123412341234"},
		},
	}

	html, err := testBuilder().ProfileHTML(s)
	if err != nil {
		t.Fatalf("ProfileHTML: %v", err)
	}

	for _, want := range []string{"Ravi Kumar", "2022RAVI14052008", "14/05/2008", "Suresh", "Aadhar: 123412341234", "Mobile: N/A", "SV Public School", placeholder} {
		if !strings.Contains(html, want) {
			t.Errorf("profile html missing %q", want)
		}
	}
	if strings.Contains(html, "No guardian details available.") {
		t.Errorf("empty-guardian notice should not render when parents exist")
	}
}

func TestProfileHTML_MissingValuesAndNoParents(t *testing.T) {
	html, err := testBuilder().ProfileHTML(&models.Student{Name: "Asha"})
	if err != nil {
		t.Fatalf("ProfileHTML: %v", err)
	}
	if !strings.Contains(html, "No guardian details available.") {
		t.Errorf("expected empty-guardian notice")
	}
	if !strings.Contains(html, "<td>—</td>") {
		t.Errorf("expected em dash for missing fields")
	}
}

func TestProfileHTML_EscapesUserInput(t *testing.T) {
	html, err := testBuilder().ProfileHTML(&models.Student{Name: "<script>alert(1)</script>"})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(html, "<script>alert(1)</script>") {
		t.Errorf("student name was not escaped")
	}
}

func TestIDCardHTML(t *testing.T) {
	s := &models.Student{
		Name:          "Ravi Kumar",
		Class:         "10",
		SerialNumber:  "2022RAVI14052008",
		AdmissionYear: "2022",
		DOB:           "2008-05-14",
		Parents: []models.Guardian{
			{Name: "Meena", Relation: "Mother"},
			{Name: "Suresh", Relation: "father"},
		},
	}

	html, err := testBuilder().IDCardHTML(s)
	if err != nil {
		t.Fatalf("IDCardHTML: %v", err)
	}
	for _, want := range []string{"Suresh", "31/03/2026", "Sign. Here", "Class: 10"} {
		if !strings.Contains(html, want) {
			t.Errorf("id card html missing %q", want)
		}
	}
}

func TestIDCardHTML_NoGuardians(t *testing.T) {
	html, err := testBuilder().IDCardHTML(&models.Student{Name: "Asha"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(html, "<span class=\"v\">N/A</span>") {
		t.Errorf("expected N/A for father name")
	}
}

func TestFilenames(t *testing.T) {
	if got := ProfileFilename("Ravi  Kumar Singh"); got != "Ravi__Kumar_Singh_Profile.pdf" {
		t.Errorf("ProfileFilename = %q", got)
	}
	if got := IDCardFilename("Asha Devi"); got != "Asha_Devi_IDCard.pdf" {
		t.Errorf("IDCardFilename = %q", got)
	}
}

func TestFormatDOB(t *testing.T) {
	tests := map[string]string{
		"2008-05-14": "14/05/2008",
		"14-05-2008": "14-05-2008",
		"":           "—",
	}
	for in, want := range tests {
		if got := FormatDOB(in); got != want {
			t.Errorf("FormatDOB(%q) = %q, want %q", in, got, want)
		}
	}
}
