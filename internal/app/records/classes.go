package records

import (
	"strconv"
	"strings"
	"time"

	"github.com/svpddu/studentrecords/internal/app/models"
)

// sessionStartMonth is the month a new academic session begins
const sessionStartMonth = time.April

// SessionYear returns the calendar year the current academic session started in
func SessionYear(now time.Time) int {
	if now.Month() >= sessionStartMonth {
		return now.Year()
	}
	return now.Year() - 1
}

// SessionEnd returns the last day of the academic session containing now
func SessionEnd(now time.Time) time.Time {
	return time.Date(SessionYear(now)+1, time.March, 31, 0, 0, 0, 0, now.Location())
}

// CurrentClass projects an admission class forward by the sessions elapsed since
// admission, capped at the terminal class.
func CurrentClass(admissionYear, admissionClass int, now time.Time) int {
	class := admissionClass + SessionYear(now) - admissionYear
	if class > models.TerminalClass {
		return models.TerminalClass
	}
	return class
}

// PromotionStep is the outcome of promoting one student
type PromotionStep int

const (
	// PromotionSkip leaves the student as is
	PromotionSkip PromotionStep = iota
	// PromotionAdvance moves the student to the next class
	PromotionAdvance
	// PromotionGraduate marks a terminal-class student as graduated
	PromotionGraduate
)

// NextClass decides what batch promotion does to a student. Graduated students and
// classes that are not numbers are skipped.
func NextClass(class string, graduated bool) (string, PromotionStep) {
	if graduated {
		return class, PromotionSkip
	}
	n, err := strconv.Atoi(strings.TrimSpace(class))
	if err != nil {
		return class, PromotionSkip
	}
	switch {
	case n < models.TerminalClass:
		return strconv.Itoa(n + 1), PromotionAdvance
	case n == models.TerminalClass:
		return class, PromotionGraduate
	default:
		return class, PromotionSkip
	}
}
