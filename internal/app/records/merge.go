package records

import "github.com/svpddu/studentrecords/internal/app/models"

// Uploads holds URLs of files stored for this submission. Empty means no upload.
type Uploads struct {
	StudentPhoto     string
	StudentSignature string
	// Guardians is keyed by the parent_{i}_photo index
	Guardians map[int]string
}

// MergeCreate builds a new student from a submission. The result is not validated.
func MergeCreate(f Fields, up Uploads) models.Student {
	s := models.Student{
		Name:          deref(f.Name),
		DOB:           deref(f.DOB),
		Caste:         deref(f.Caste),
		MobileNo:      deref(f.MobileNo),
		AdmissionYear: deref(f.AdmissionYear),
		Address:       deref(f.Address),
		Village:       deref(f.Village),
		Block:         deref(f.Block),
		District:      deref(f.District),
		State:         deref(f.State),
		Class:         deref(f.Class),
	}
	s.SerialNumber = Serial(s.AdmissionYear, s.Name, s.DOB)
	s.StudentPhoto = pickMedia(up.StudentPhoto, f.StudentPhoto, "")
	s.StudentSignature = pickMedia(up.StudentSignature, f.StudentSignature, "")
	s.Parents = ReconcileGuardians(f.Guardians, nil, up.Guardians, true)
	return s
}

// MergeUpdate applies a submission on top of a stored student. Supplied values win,
// absent ones keep what is stored. The serial only moves when one of its inputs
// changed, and falls back to the stored serial if the new one cannot be formed.
func MergeUpdate(existing models.Student, f Fields, up Uploads) models.Student {
	s := existing
	s.Name = orStored(f.Name, existing.Name)
	s.DOB = orStored(f.DOB, existing.DOB)
	s.Caste = orStored(f.Caste, existing.Caste)
	s.MobileNo = orStored(f.MobileNo, existing.MobileNo)
	s.AdmissionYear = orStored(f.AdmissionYear, existing.AdmissionYear)
	s.Address = orStored(f.Address, existing.Address)
	s.Village = orStored(f.Village, existing.Village)
	s.Block = orStored(f.Block, existing.Block)
	s.District = orStored(f.District, existing.District)
	s.State = orStored(f.State, existing.State)
	s.Class = orStored(f.Class, existing.Class)

	s.SerialNumber = existing.SerialNumber
	if SerialChanged(existing, f) {
		if serial := Serial(s.AdmissionYear, s.Name, s.DOB); serial != "" {
			s.SerialNumber = serial
		}
	}

	s.StudentPhoto = pickMedia(up.StudentPhoto, f.StudentPhoto, existing.StudentPhoto)
	s.StudentSignature = pickMedia(up.StudentSignature, f.StudentSignature, existing.StudentSignature)
	s.Parents = ReconcileGuardians(f.Guardians, existing.Parents, up.Guardians, false)
	return s
}

func orStored(supplied *string, stored string) string {
	if supplied != nil {
		return *supplied
	}
	return stored
}

// pickMedia prefers a fresh upload, then a non-empty URL sent back by the caller
func pickMedia(uploaded string, supplied *string, stored string) string {
	if uploaded != "" {
		return uploaded
	}
	if supplied != nil && *supplied != "" {
		return *supplied
	}
	return stored
}
