package model

type ProgressStatus string

const (
	NotStarted ProgressStatus = "not_started"
	InProgress ProgressStatus = "in_progress"
	Completed  ProgressStatus = "completed"
)

// StatusForPercentage mirrors how the training API derives a status from a percentage.
func StatusForPercentage(pct int) ProgressStatus {
	switch {
	case pct >= 100:
		return Completed
	case pct > 0:
		return InProgress
	default:
		return NotStarted
	}
}

// swagger:model Project
type Project struct {
	ID              int              `json:"id" validate:"required"`
	Name            string           `json:"name" validate:"required"`
	Description     string           `json:"description"`
	ProjectPath     string           `json:"project_path,omitempty"`
	DifficultyLevel string           `json:"difficulty_level"`
	EstimatedTime   *int             `json:"estimated_time"`
	IsActive        bool             `json:"is_active"`
	CreatedAt       Time             `json:"created_at"`
	Progress        *ProjectProgress `json:"progress"`
	Files           []ProjectFile    `json:"files,omitempty"`
}

type ProjectFile struct {
	Name    string  `json:"name"`
	Content *string `json:"content"`
}

// swagger:model ProjectProgress
type ProjectProgress struct {
	ID                 int            `json:"id"`
	StudentID          int            `json:"student_id"`
	ProjectID          int            `json:"project_id"`
	ProjectName        string         `json:"project_name,omitempty"`
	Status             ProgressStatus `json:"status" validate:"omitempty,oneof=not_started in_progress completed"`
	ProgressPercentage int            `json:"progress_percentage" validate:"min=0,max=100"`
	StartedAt          Time           `json:"started_at"`
	CompletedAt        Time           `json:"completed_at"`
	Notes              string         `json:"notes,omitempty"`
	MentorFeedback     string         `json:"mentor_feedback,omitempty"`
	UpdatedAt          Time           `json:"updated_at"`
}

type ProgressUpdate struct {
	ProjectID          int            `json:"project_id"`
	Status             ProgressStatus `json:"status"`
	ProgressPercentage int            `json:"progress_percentage"`
}

type CreateProjectRequest struct {
	Name            string `json:"name" binding:"required"`
	Description     string `json:"description"`
	ProjectPath     string `json:"project_path"`
	DifficultyLevel string `json:"difficulty_level"`
	EstimatedTime   string `json:"estimated_time"`
}

type RunOutput struct {
	Output string `json:"output"`
	Code   string `json:"code,omitempty"`
	Error  string `json:"error,omitempty"`
}
