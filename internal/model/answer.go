package model

// AnswerResult is reported by the training API per answered question.
// Retry scoring is decided there; the flags are shown as received.
type AnswerResult struct {
	QuestionID           int    `json:"question_id" validate:"required"`
	SelectedOption       string `json:"selected_option"`
	IsCorrect            bool   `json:"is_correct"`
	PointsAwarded        int    `json:"points_awarded"`
	MaxPoints            int    `json:"max_points"`
	IsRetry              bool   `json:"is_retry"`
	WasPreviouslyCorrect *bool  `json:"was_previously_correct"`
}

// swagger:model AnswerSubmission
type AnswerSubmission struct {
	Results     []AnswerResult `json:"results" validate:"dive"`
	TotalPoints int            `json:"total_points"`
	MaxPoints   int            `json:"max_points"`
	AllCorrect  bool           `json:"all_correct"`
}

// PriorAnswers is what a student already recorded for a step.
// swagger:model PriorAnswers
type PriorAnswers struct {
	Answers     map[int]string `json:"answers"`
	Results     []AnswerResult `json:"results" validate:"dive"`
	TotalPoints int            `json:"total_points"`
	MaxPoints   int            `json:"max_points"`
	AllCorrect  bool           `json:"all_correct"`
	HasAnswers  bool           `json:"has_answers"`
}
