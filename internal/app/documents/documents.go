// Package documents renders the printable student views (profile sheet and
// ID card) as standalone HTML pages for the PDF renderer.
package documents

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"regexp"
	"strings"
	"time"

	"github.com/svpddu/studentrecords/internal/app/models"
	"github.com/svpddu/studentrecords/internal/app/records"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

const (
	missing      = "—"
	notAvailable = "N/A"
)

// Builder fills the embedded templates
type Builder struct {
	SchoolName       string
	PlaceholderPhoto string
	Now              func() time.Time
}

// NewBuilder creates a Builder
func NewBuilder(schoolName, placeholderPhoto string) *Builder {
	return &Builder{SchoolName: schoolName, PlaceholderPhoto: placeholderPhoto, Now: time.Now}
}

type guardianView struct {
	Name     string
	Relation string
	AadharNo string
	MobileNo string
	Photo    string
}

type profileView struct {
	SchoolName    string
	Placeholder   string
	Name          string
	SerialNumber  string
	Class         string
	AdmissionYear string
	DOB           string
	Caste         string
	MobileNo      string
	Address       string
	Village       string
	Block         string
	District      string
	State         string
	IsVerified    bool
	IsGraduated   bool
	Photo         string
	Signature     string
	Parents       []guardianView
	GeneratedAt   string
}

type idCardView struct {
	SchoolName    string
	Placeholder   string
	Name          string
	Class         string
	SerialNumber  string
	AdmissionYear string
	FatherName    string
	DOB           string
	ValidUpto     string
	Photo         string
	Signature     string
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

// FormatDOB renders an ISO date as DD/MM/YYYY and leaves anything else untouched
func FormatDOB(dob string) string {
	if t, err := time.Parse("2006-01-02", strings.TrimSpace(dob)); err == nil {
		return t.Format("02/01/2006")
	}
	return orDefault(dob, missing)
}

// ProfileHTML renders the A4 profile sheet
func (b *Builder) ProfileHTML(s *models.Student) (string, error) {
	view := profileView{
		SchoolName:    b.SchoolName,
		Placeholder:   b.PlaceholderPhoto,
		Name:          orDefault(s.Name, missing),
		SerialNumber:  orDefault(s.SerialNumber, missing),
		Class:         orDefault(s.Class, missing),
		AdmissionYear: orDefault(s.AdmissionYear, missing),
		DOB:           FormatDOB(s.DOB),
		Caste:         orDefault(s.Caste, missing),
		MobileNo:      orDefault(s.MobileNo, missing),
		Address:       orDefault(s.Address, missing),
		Village:       orDefault(s.Village, missing),
		Block:         orDefault(s.Block, missing),
		District:      orDefault(s.District, missing),
		State:         orDefault(s.State, missing),
		IsVerified:    s.IsVerified,
		IsGraduated:   s.IsGraduated,
		Photo:         orDefault(s.StudentPhoto, b.PlaceholderPhoto),
		Signature:     s.StudentSignature,
		GeneratedAt:   b.Now().Format("02 Jan 2006 15:04"),
	}
	for _, g := range s.Parents {
		view.Parents = append(view.Parents, guardianView{
			Name:     orDefault(g.Name, missing),
			Relation: orDefault(g.Relation, missing),
			AadharNo: orDefault(g.AadharNo, notAvailable),
			MobileNo: orDefault(g.MobileNo, notAvailable),
			Photo:    orDefault(g.Photo, b.PlaceholderPhoto),
		})
	}
	return execute("profile.html", view)
}

// IDCardHTML renders the 85.6mm x 53.98mm identity card
func (b *Builder) IDCardHTML(s *models.Student) (string, error) {
	father := notAvailable
	if g := s.Father(); g != nil && g.Name != "" {
		father = g.Name
	}

	view := idCardView{
		SchoolName:    b.SchoolName,
		Placeholder:   b.PlaceholderPhoto,
		Name:          orDefault(s.Name, missing),
		Class:         orDefault(s.Class, missing),
		SerialNumber:  orDefault(s.SerialNumber, missing),
		AdmissionYear: orDefault(s.AdmissionYear, missing),
		FatherName:    father,
		DOB:           FormatDOB(s.DOB),
		ValidUpto:     records.SessionEnd(b.Now()).Format("02/01/2006"),
		Photo:         orDefault(s.StudentPhoto, b.PlaceholderPhoto),
		Signature:     s.StudentSignature,
	}
	return execute("idcard.html", view)
}

func execute(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}

var whitespace = regexp.MustCompile(`\s`)

// ProfileFilename is the attachment name for a profile PDF
func ProfileFilename(name string) string {
	return whitespace.ReplaceAllString(name, "_") + "_Profile.pdf"
}

// IDCardFilename is the attachment name for an ID card PDF
func IDCardFilename(name string) string {
	return whitespace.ReplaceAllString(name, "_") + "_IDCard.pdf"
}
