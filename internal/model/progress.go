package model

// swagger:model StepProgress
type StepProgress struct {
	StepID            int    `json:"step_id" validate:"required"`
	StepOrder         int    `json:"step_order"`
	StepTitle         string `json:"step_title"`
	IsCompleted       bool   `json:"is_completed"`
	QuestionsAnswered int    `json:"questions_answered"`
	QuestionsCorrect  int    `json:"questions_correct"`
	TotalQuestions    int    `json:"total_questions"`
	PointsEarned      int    `json:"points_earned"`
	PointsPossible    int    `json:"points_possible"`
}

// ProgressReport is the per-project progress including every step.
// swagger:model ProgressReport
type ProgressReport struct {
	Progress          ProjectProgress `json:"progress"`
	StepProgress      []StepProgress  `json:"step_progress" validate:"dive"`
	OverallPercentage int             `json:"overall_percentage" validate:"min=0,max=100"`
	CompletedSteps    int             `json:"completed_steps"`
	TotalSteps        int             `json:"total_steps"`
}

func (r ProgressReport) ByStep() map[int]StepProgress {
	out := make(map[int]StepProgress, len(r.StepProgress))
	for _, sp := range r.StepProgress {
		out[sp.StepID] = sp
	}
	return out
}

type StudentProgress struct {
	Student  User              `json:"student"`
	Progress []ProjectProgress `json:"progress"`
}

type FeedbackRequest struct {
	Feedback string `json:"feedback" binding:"required"`
}
