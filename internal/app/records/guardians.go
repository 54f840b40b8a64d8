package records

import "github.com/svpddu/studentrecords/internal/app/models"

// ReconcileGuardians produces the guardian list to persist.
// existing is nil on create. photos maps a guardian index to a freshly uploaded URL.
func ReconcileGuardians(op GuardianOp, existing []models.Guardian, photos map[int]string, creating bool) []models.Guardian {
	switch op := op.(type) {
	case GuardianReplace:
		return replaceGuardians(op.Entries, photos)
	case GuardianPatchSlots:
		if creating {
			return buildSlots(op.Slots, photos)
		}
		return patchSlots(existing, op.Slots, photos)
	default:
		if creating {
			return []models.Guardian{}
		}
		return copyGuardians(existing)
	}
}

// replaceGuardians keeps entry order; an upload for the entry's index beats the URL
// the caller sent back.
func replaceGuardians(entries []GuardianInput, photos map[int]string) []models.Guardian {
	out := make([]models.Guardian, 0, len(entries))
	for idx, e := range entries {
		g := models.Guardian{
			Name:     e.Name,
			AadharNo: e.AadharNo,
			MobileNo: e.MobileNo,
			Relation: e.Relation,
		}
		if url, ok := photos[idx]; ok && url != "" {
			g.Photo = url
		} else if e.Photo != "" {
			g.Photo = e.Photo
		}
		if keep(g.Name, g.Relation) {
			out = append(out, g)
		}
	}
	return out
}

func buildSlots(slots []GuardianSlot, photos map[int]string) []models.Guardian {
	out := make([]models.Guardian, 0, len(slots))
	for _, s := range slots {
		if !keep(s.Name, s.Relation) {
			continue
		}
		out = append(out, slotGuardian(s, photos))
	}
	return out
}

// patchSlots overwrites stored positions; a slot past the end is appended
func patchSlots(existing []models.Guardian, slots []GuardianSlot, photos map[int]string) []models.Guardian {
	out := copyGuardians(existing)
	for _, s := range slots {
		if !keep(s.Name, s.Relation) {
			continue
		}
		g := slotGuardian(s, photos)
		if s.Index < len(out) {
			out[s.Index] = g
		} else {
			out = append(out, g)
		}
	}
	return out
}

func slotGuardian(s GuardianSlot, photos map[int]string) models.Guardian {
	return models.Guardian{
		Name:     s.Name,
		AadharNo: s.AadharNo,
		MobileNo: s.MobileNo,
		Relation: s.Relation,
		Photo:    photos[s.Index],
	}
}

func copyGuardians(in []models.Guardian) []models.Guardian {
	out := make([]models.Guardian, len(in))
	copy(out, in)
	return out
}
