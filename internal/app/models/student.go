package models

import (
	"strings"
	"time"
)

// Student is one enrolled person. ID is the storage identifier rendered as a string
// (ObjectID hex on Mongo, UUID on Postgres).
type Student struct {
	ID               string     `json:"_id" db:"id" example:"665f1c2e9b1d4a0012345678"`
	SerialNumber     string     `json:"serialNumber" db:"serial_number" validate:"required" example:"2022RAVI14052008"`
	Name             string     `json:"name" db:"name" validate:"required" example:"Ravi Kumar"`
	DOB              string     `json:"dob" db:"dob" example:"2008-05-14"`
	Caste            string     `json:"caste" db:"caste" example:"OBC"`
	MobileNo         string     `json:"mobileNo" db:"mobile_no" example:"9876543210"`
	AdmissionYear    string     `json:"admissionYear" db:"admission_year" validate:"required" example:"2022"`
	Address          string     `json:"address" db:"address"`
	Village          string     `json:"village" db:"village"`
	Block            string     `json:"block" db:"block"`
	District         string     `json:"district" db:"district"`
	State            string     `json:"state" db:"state"`
	Class            string     `json:"class" db:"class" example:"10"`
	IsVerified       bool       `json:"isVerified" db:"is_verified"`
	IsGraduated      bool       `json:"isGraduated" db:"is_graduated"`
	StudentPhoto     string     `json:"studentPhoto,omitempty" db:"student_photo"`
	StudentSignature string     `json:"studentSignature,omitempty" db:"student_signature"`
	Parents          []Guardian `json:"parents" db:"parents"`
	Revision         int64      `json:"__v" db:"revision"`
	CreatedAt        time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time  `json:"updatedAt" db:"updated_at"`
}

// Guardian is a parent or guardian embedded in a Student
type Guardian struct {
	Name     string `json:"name" example:"Suresh Kumar"`
	AadharNo string `json:"aadharNo" example:"123412341234"`
	MobileNo string `json:"mobileNo" example:"9876500000"`
	Relation string `json:"relation" example:"Father"`
	Photo    string `json:"photo,omitempty"`
}

// Father returns the first guardian whose relation is Father, falling back to the
// first guardian on record.
func (s *Student) Father() *Guardian {
	for i := range s.Parents {
		if strings.EqualFold(strings.TrimSpace(s.Parents[i].Relation), "father") {
			return &s.Parents[i]
		}
	}
	if len(s.Parents) > 0 {
		return &s.Parents[0]
	}
	return nil
}

// ClassStrength is the number of students recorded in one class
type ClassStrength struct {
	Name          string `json:"name" example:"10"`
	StudentsCount int64  `json:"studentsCount" example:"42"`
}

// PromotionResult summarises one batch promotion run
type PromotionResult struct {
	Promoted  int64 `json:"promoted"`
	Graduated int64 `json:"graduated"`
}
