package model

type SubmissionStatus string

const (
	SubmissionSubmitted     SubmissionStatus = "submitted"
	SubmissionReviewed      SubmissionStatus = "reviewed"
	SubmissionApproved      SubmissionStatus = "approved"
	SubmissionNeedsRevision SubmissionStatus = "needs_revision"
)

func (s SubmissionStatus) Valid() bool {
	switch s {
	case SubmissionSubmitted, SubmissionReviewed, SubmissionApproved, SubmissionNeedsRevision:
		return true
	}
	return false
}

const (
	SubmissionTypeProject      = "project"
	SubmissionTypeFinalTest    = "final_test"
	SubmissionTypeFinalProject = "final_project"
)

// swagger:model Submission
type Submission struct {
	ID             int              `json:"id" validate:"required"`
	StudentID      int              `json:"student_id"`
	StudentName    string           `json:"student_name,omitempty"`
	ProjectID      *int             `json:"project_id"`
	ProjectName    string           `json:"project_name,omitempty"`
	Filename       string           `json:"filename"`
	FileSize       int64            `json:"file_size"`
	MimeType       string           `json:"mime_type,omitempty"`
	Notes          string           `json:"notes,omitempty"`
	SubmittedAt    Time             `json:"submitted_at"`
	ReviewedAt     Time             `json:"reviewed_at"`
	ReviewedBy     *int             `json:"reviewed_by"`
	ReviewerName   string           `json:"reviewer_name,omitempty"`
	ReviewNotes    string           `json:"review_notes,omitempty"`
	Status         SubmissionStatus `json:"status" validate:"omitempty,oneof=submitted reviewed approved needs_revision"`
	SubmissionType string           `json:"submission_type,omitempty"`
}

type SubmissionContent struct {
	Content  string `json:"content"`
	IsBinary bool   `json:"is_binary"`
	Filename string `json:"filename"`
	MimeType string `json:"mime_type,omitempty"`
}

type SubmissionFilter struct {
	ProjectID      int
	StudentID      int
	SubmissionType string
}

type ReviewRequest struct {
	ReviewNotes string           `json:"review_notes"`
	Status      SubmissionStatus `json:"status" binding:"required"`
}
