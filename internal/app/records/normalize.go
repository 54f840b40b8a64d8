package records

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/svpddu/studentrecords/internal/app/models"
)

// SubmissionKind tells the normalizer where the student fields live
type SubmissionKind int

const (
	// SubmissionEmpty carries no fields at all
	SubmissionEmpty SubmissionKind = iota
	// SubmissionJSONField is a form whose studentDataJson field holds a JSON object
	SubmissionJSONField
	// SubmissionFlatForm is a form with one field per student attribute
	SubmissionFlatForm
	// SubmissionJSONBody is an application/json request body
	SubmissionJSONBody
)

// StudentDataField is the form field carrying the JSON encoded student
const StudentDataField = "studentDataJson"

// Submission is the raw request payload, classified once at the HTTP boundary
type Submission struct {
	Kind SubmissionKind
	// JSON is the studentDataJson value or the request body
	JSON []byte
	// Form holds all non-file form values. It is also consulted for the
	// legacy parents[i][field] keys when Kind is SubmissionJSONField.
	Form map[string][]string
}

// NewFormSubmission classifies a parsed form
func NewFormSubmission(form map[string][]string) Submission {
	if vals, ok := form[StudentDataField]; ok && len(vals) > 0 && vals[0] != "" {
		return Submission{Kind: SubmissionJSONField, JSON: []byte(vals[0]), Form: form}
	}
	if len(form) == 0 {
		return Submission{Kind: SubmissionEmpty}
	}
	return Submission{Kind: SubmissionFlatForm, Form: form}
}

// NewJSONSubmission wraps a raw JSON body
func NewJSONSubmission(body []byte) Submission {
	if len(bytes.TrimSpace(body)) == 0 {
		return Submission{Kind: SubmissionEmpty}
	}
	return Submission{Kind: SubmissionJSONBody, JSON: body}
}

// GuardianInput is one parent entry as supplied by the caller
type GuardianInput struct {
	Name     string
	AadharNo string
	MobileNo string
	Relation string
	// Photo is an already hosted URL the caller wants to keep
	Photo string
}

// GuardianOp is the single guardian instruction derived from a submission
type GuardianOp interface {
	guardianOp()
}

// GuardianKeep leaves the stored guardians untouched
type GuardianKeep struct{}

// GuardianReplace swaps the stored guardians for Entries after filtering
type GuardianReplace struct {
	Entries []GuardianInput
}

// GuardianSlot is one legacy parents[i][...] group
type GuardianSlot struct {
	Index int
	GuardianInput
}

// GuardianPatchSlots overwrites stored guardians by position
type GuardianPatchSlots struct {
	Slots []GuardianSlot
}

func (GuardianKeep) guardianOp()       {}
func (GuardianReplace) guardianOp()    {}
func (GuardianPatchSlots) guardianOp() {}

// Fields is the normalized student payload. A nil pointer means the caller did not
// supply the attribute; a pointer to "" is an explicit empty value.
type Fields struct {
	Name          *string
	DOB           *string
	Caste         *string
	MobileNo      *string
	AdmissionYear *string
	Address       *string
	Village       *string
	Block         *string
	District      *string
	State         *string
	Class         *string

	StudentPhoto     *string
	StudentSignature *string

	Guardians GuardianOp
}

// scalarKeys maps wire names onto Fields members
func (f *Fields) scalarKeys() map[string]**string {
	return map[string]**string{
		"name":             &f.Name,
		"dob":              &f.DOB,
		"caste":            &f.Caste,
		"mobileNo":         &f.MobileNo,
		"admissionYear":    &f.AdmissionYear,
		"address":          &f.Address,
		"village":          &f.Village,
		"block":            &f.Block,
		"district":         &f.District,
		"state":            &f.State,
		"class":            &f.Class,
		"studentPhoto":     &f.StudentPhoto,
		"studentSignature": &f.StudentSignature,
	}
}

// Normalize resolves a submission into Fields. Malformed JSON degrades to an empty
// payload instead of failing.
func Normalize(sub Submission) Fields {
	f := Fields{Guardians: GuardianKeep{}}

	switch sub.Kind {
	case SubmissionJSONField, SubmissionJSONBody:
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(sub.JSON, &obj); err != nil || obj == nil {
			return f
		}
		for key, dst := range f.scalarKeys() {
			if raw, ok := obj[key]; ok {
				*dst = decodeScalar(raw)
			}
		}
		if entries, ok := decodeGuardians(obj["parents"]); ok {
			f.Guardians = GuardianReplace{Entries: entries}
			return f
		}
	case SubmissionFlatForm:
		for key, dst := range f.scalarKeys() {
			if vals, ok := sub.Form[key]; ok && len(vals) > 0 {
				v := vals[0]
				*dst = &v
			}
		}
	default:
		return f
	}

	if slots := legacySlots(sub.Form); len(slots) > 0 {
		f.Guardians = GuardianPatchSlots{Slots: slots}
	}
	return f
}

// decodeScalar turns a JSON value into an optional string. Strings pass through,
// numbers and booleans are rendered, null and containers count as absent.
func decodeScalar(raw json.RawMessage) *string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		return &s
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil
		}
		s := strconv.FormatBool(b)
		return &s
	case 'n', '{', '[':
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil
		}
		s := formatNumber(n)
		return &s
	}
}

func formatNumber(n json.Number) string {
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10)
	}
	if fl, err := n.Float64(); err == nil {
		return strconv.FormatFloat(fl, 'f', -1, 64)
	}
	return n.String()
}

// decodeGuardians reports ok only for a non-empty JSON array
func decodeGuardians(raw json.RawMessage) ([]GuardianInput, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || len(items) == 0 {
		return nil, false
	}

	entries := make([]GuardianInput, 0, len(items))
	for _, item := range items {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(item, &obj); err != nil {
			obj = nil
		}
		entries = append(entries, GuardianInput{
			Name:     deref(decodeScalar(obj["name"])),
			AadharNo: deref(decodeScalar(obj["aadharNo"])),
			MobileNo: deref(decodeScalar(obj["mobileNo"])),
			Relation: deref(decodeScalar(obj["relation"])),
			Photo:    deref(decodeScalar(obj["photo"])),
		})
	}
	return entries, true
}

// legacySlots collects parents[i][field] form keys for the first slots
func legacySlots(form map[string][]string) []GuardianSlot {
	if len(form) == 0 {
		return nil
	}
	byIndex := map[int]*GuardianSlot{}
	for i := 0; i < models.MaxGuardianSlots; i++ {
		for _, field := range []string{"name", "aadharNo", "mobileNo", "relation"} {
			vals, ok := form[fmt.Sprintf("parents[%d][%s]", i, field)]
			if !ok || len(vals) == 0 {
				continue
			}
			slot, exists := byIndex[i]
			if !exists {
				slot = &GuardianSlot{Index: i}
				byIndex[i] = slot
			}
			switch field {
			case "name":
				slot.Name = vals[0]
			case "aadharNo":
				slot.AadharNo = vals[0]
			case "mobileNo":
				slot.MobileNo = vals[0]
			case "relation":
				slot.Relation = vals[0]
			}
		}
	}

	slots := make([]GuardianSlot, 0, len(byIndex))
	for _, s := range byIndex {
		slots = append(slots, *s)
	}
	sort.Slice(slots, func(a, b int) bool { return slots[a].Index < slots[b].Index })
	return slots
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// keep reports whether a guardian entry carries enough to be stored
func keep(name, relation string) bool {
	return name != "" || relation != ""
}
