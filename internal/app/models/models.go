package models

// Media folders used when uploading student files
const (
	FolderStudentPhotos     = "student/photos"
	FolderStudentSignatures = "student/signatures"
	FolderParentPhotos      = "student/parents"
)

// MaxGuardianSlots is the number of parent photo parts a submission may carry
const MaxGuardianSlots = 3

// TerminalClass is the last class a student can be promoted into
const TerminalClass = 12
