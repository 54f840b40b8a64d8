package records

import (
	"strings"
	"unicode"

	"github.com/svpddu/studentrecords/internal/app/models"
)

const serialNameLen = 4

// Serial derives the human-readable student serial:
// admission year, the first four letters of the upper-cased name with whitespace
// removed, and the birth date as DDMMYYYY. Any missing input yields "".
func Serial(admissionYear, name, dob string) string {
	namePart := serialNamePart(name)
	dobPart := serialDOBPart(dob)
	if admissionYear == "" || namePart == "" || dobPart == "" {
		return ""
	}
	return admissionYear + namePart + dobPart
}

func serialNamePart(name string) string {
	upper := strings.ToUpper(strings.TrimSpace(name))
	var b strings.Builder
	n := 0
	for _, r := range upper {
		if unicode.IsSpace(r) {
			continue
		}
		if n == serialNameLen {
			break
		}
		b.WriteRune(r)
		n++
	}
	return b.String()
}

// serialDOBPart permutes YYYY-MM-DD into DDMMYYYY. Short inputs are sliced the
// same way, so a truncated date still produces whatever digits it has.
func serialDOBPart(dob string) string {
	digits := strings.ReplaceAll(dob, "-", "")
	if digits == "" {
		return ""
	}
	return slice(digits, 6, 8) + slice(digits, 4, 6) + slice(digits, 0, 4)
}

func slice(s string, from, to int) string {
	if from > len(s) {
		return ""
	}
	if to > len(s) {
		to = len(s)
	}
	return s[from:to]
}

// SerialChanged reports whether the supplied fields alter one of the serial inputs.
// Empty supplied values never count as a change.
func SerialChanged(existing models.Student, f Fields) bool {
	return differs(f.Name, existing.Name) ||
		differs(f.DOB, existing.DOB) ||
		differs(f.AdmissionYear, existing.AdmissionYear)
}

func differs(supplied *string, stored string) bool {
	return supplied != nil && *supplied != "" && *supplied != stored
}
