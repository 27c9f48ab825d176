package stepper

import "training_portal/internal/model"

type StepSummary struct {
	ID             int    `json:"id"`
	Title          string `json:"title"`
	OrderIndex     int    `json:"order_index"`
	Completed      bool   `json:"completed"`
	PointsEarned   int    `json:"points_earned"`
	PointsPossible int    `json:"points_possible"`
}

// View is a point-in-time copy of the controller state. Nothing in it aliases
// the controller.
type View struct {
	ProjectID      int                     `json:"project_id"`
	Loaded         bool                    `json:"loaded"`
	Steps          []StepSummary           `json:"steps"`
	CurrentIndex   int                     `json:"current_index"`
	Current        *model.Step             `json:"current,omitempty"`
	Snippets       []model.CodeSnippet     `json:"snippets,omitempty"`
	Completed      bool                    `json:"completed"`
	ReadOnly       bool                    `json:"read_only"`
	Answers        map[int]string          `json:"answers"`
	PriorAnswers   *model.PriorAnswers     `json:"prior_answers,omitempty"`
	SubmitResult   *model.AnswerSubmission `json:"submit_result,omitempty"`
	Submitting     bool                    `json:"submitting"`
	CanSubmit      bool                    `json:"can_submit"`
	CanContinue    bool                    `json:"can_continue"`
	HasPrevious    bool                    `json:"has_previous"`
	HasNext        bool                    `json:"has_next"`
	Progress       model.ProjectProgress   `json:"progress"`
	CompletedSteps int                     `json:"completed_steps"`
	TotalSteps     int                     `json:"total_steps"`
	Errors         Errors                  `json:"errors"`
}

func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		ProjectID:  c.projectID,
		Loaded:     c.stepsLoaded,
		Steps:      make([]StepSummary, 0, len(c.steps)),
		Submitting: c.submitting,
		Progress:   c.aggregate,
		TotalSteps: len(c.steps),
		Errors:     c.errs,
		Answers:    map[int]string{},
	}

	for _, s := range c.steps {
		sp := c.progress[s.ID]
		done := c.completedLocked(s.ID)
		if done {
			v.CompletedSteps++
		}
		v.Steps = append(v.Steps, StepSummary{
			ID:             s.ID,
			Title:          s.Title,
			OrderIndex:     s.OrderIndex,
			Completed:      done,
			PointsEarned:   sp.PointsEarned,
			PointsPossible: sp.PointsPossible,
		})
	}

	step, ok := c.currentStepLocked()
	if !ok {
		return v
	}
	cur := step
	cur.Questions = append([]model.Question(nil), step.Questions...)
	v.Current = &cur
	v.CurrentIndex = c.current
	v.Snippets = step.CodeSnippets()
	v.Completed = c.completedLocked(step.ID)
	v.ReadOnly = v.Completed
	v.HasPrevious = c.current > 0
	v.HasNext = c.current < len(c.steps)-1
	v.CanContinue = c.canContinueLocked()
	v.CanSubmit = step.HasQuestions() && !v.Completed && !c.submitting && len(c.drafts) > 0

	if c.prior != nil && c.priorStepID == step.ID {
		prior := *c.prior
		prior.Answers = copyAnswers(c.prior.Answers)
		prior.Results = append([]model.AnswerResult(nil), c.prior.Results...)
		v.PriorAnswers = &prior
	}
	if c.submitResult != nil && c.resultStepID == step.ID {
		res := *c.submitResult
		res.Results = append([]model.AnswerResult(nil), c.submitResult.Results...)
		v.SubmitResult = &res
	}

	switch {
	case v.ReadOnly && v.PriorAnswers != nil:
		v.Answers = copyAnswers(v.PriorAnswers.Answers)
	default:
		v.Answers = copyAnswers(c.drafts)
	}
	return v
}

func copyAnswers(in map[int]string) map[int]string {
	out := make(map[int]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
