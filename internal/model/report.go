package model

// swagger:model OverviewReport
type OverviewReport struct {
	TotalStudents int           `json:"total_students"`
	TotalProjects int           `json:"total_projects"`
	ProgressStats ProgressStats `json:"progress_stats"`
}

type ProgressStats struct {
	NotStarted int `json:"not_started"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
}

type ResetPasswordRequest struct {
	Password string `json:"password,omitempty"`
	Generate bool   `json:"generate,omitempty"`
}

type ResetPasswordResult struct {
	Student           User   `json:"student"`
	TemporaryPassword string `json:"temporary_password,omitempty"`
}
