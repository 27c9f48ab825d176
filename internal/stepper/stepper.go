// Package stepper drives one student's walk through a project's steps: which
// step is shown, the draft answers, and how local state follows the progress
// the training API reports after each submission.
package stepper

import (
	"context"
	"errors"
	"math"
	"sync"

	"training_portal/internal/apiclient"
	"training_portal/internal/model"
	"training_portal/pkg/logger"

	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
)

// API is the part of the training API a Controller needs.
type API interface {
	ListSteps(ctx context.Context, projectID int) ([]model.Step, error)
	GetProjectProgress(ctx context.Context, projectID int) (*model.ProgressReport, error)
	GetStepAnswers(ctx context.Context, stepID int) (*model.PriorAnswers, error)
	SubmitStepAnswers(ctx context.Context, stepID int, answers map[int]string) (*model.AnswerSubmission, error)
	UpdateProgress(ctx context.Context, update model.ProgressUpdate) error
}

const (
	MsgStepsNetwork    = "Network error while loading steps."
	MsgStepsFailed     = "Could not load steps for this project."
	MsgProgressNetwork = "Network error while loading progress."
	MsgProgressFailed  = "Could not load progress for this project."
	MsgAnswersNetwork  = "Network error while loading previous answers."
	MsgAnswersFailed   = "Could not load previous answers."
	MsgSubmitNetwork   = "Network error while submitting answers."
	MsgSubmitFailed    = "Could not submit answers."
)

var (
	ErrNotLoaded       = errors.New("steps are not loaded")
	ErrOutOfRange      = errors.New("no step at that position")
	ErrStepCompleted   = errors.New("step is already completed")
	ErrNoQuestions     = errors.New("step has no questions")
	ErrNoAnswers       = errors.New("no answers selected")
	ErrUnknownQuestion = errors.New("question is not part of this step")
	ErrUnknownOption   = errors.New("option is not available for this question")
	ErrSubmitting      = errors.New("a submission is already in flight")
	ErrCannotContinue  = errors.New("current step has no result yet or is the last step")
)

// Errors holds the inline message of the last failure per fetch. Empty means no error.
type Errors struct {
	Steps    string `json:"steps,omitempty"`
	Progress string `json:"progress,omitempty"`
	Answers  string `json:"answers,omitempty"`
	Submit   string `json:"submit,omitempty"`
}

// Hooks let the owning view follow a submission. Both run outside the
// controller's lock and may be nil.
type Hooks struct {
	OnProgress func(model.ProjectProgress)
	OnScored   func()
}

type Controller struct {
	api       API
	projectID int
	hooks     Hooks

	mu             sync.Mutex
	steps          []model.Step
	stepsLoaded    bool
	progress       map[int]model.StepProgress
	progressLoaded bool
	aggregate      model.ProjectProgress
	overall        int
	current        int
	userActed      bool
	drafts         map[int]string
	submitResult   *model.AnswerSubmission
	resultStepID   int
	prior          *model.PriorAnswers
	priorStepID    int
	// locked marks steps whose submission came back all correct.
	locked map[int]bool
	// localDone marks steps completed by the fallback path when the refetch failed.
	localDone  map[int]bool
	submitting bool
	errs       Errors
}

func New(api API, projectID int, hooks Hooks) *Controller {
	return &Controller{
		api:       api,
		projectID: projectID,
		hooks:     hooks,
		progress:  make(map[int]model.StepProgress),
		drafts:    make(map[int]string),
		locked:    make(map[int]bool),
		localDone: make(map[int]bool),
		aggregate: model.ProjectProgress{ProjectID: projectID, Status: model.NotStarted},
	}
}

func (c *Controller) ProjectID() int {
	return c.projectID
}

// Open fetches the steps and the progress report concurrently. Each result is
// applied on arrival, so the selected step does not depend on which lands first.
func (c *Controller) Open(ctx context.Context) {
	var wg conc.WaitGroup
	wg.Go(func() {
		steps, err := c.api.ListSteps(ctx, c.projectID)
		c.applySteps(steps, err)
	})
	wg.Go(func() {
		report, err := c.api.GetProjectProgress(ctx, c.projectID)
		c.applyProgress(report, err)
	})
	wg.Wait()

	c.mu.Lock()
	stepID, need := c.needPriorLocked()
	c.mu.Unlock()
	if need {
		c.loadPrior(ctx, stepID)
	}
}

func (c *Controller) applySteps(steps []model.Step, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.errs.Steps = apiclient.Describe(err, MsgStepsNetwork, MsgStepsFailed)
		logger.Log.Warn("Failed to load steps", zap.Int("projectId", c.projectID), zap.Error(err))
		return
	}
	c.errs.Steps = ""
	c.steps = steps
	c.stepsLoaded = true
	c.reselectLocked()
}

func (c *Controller) applyProgress(report *model.ProgressReport, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.errs.Progress = apiclient.Describe(err, MsgProgressNetwork, MsgProgressFailed)
		logger.Log.Warn("Failed to load project progress", zap.Int("projectId", c.projectID), zap.Error(err))
		return
	}
	c.adoptReportLocked(report)
	c.reselectLocked()
}

func (c *Controller) adoptReportLocked(report *model.ProgressReport) {
	c.errs.Progress = ""
	c.progress = report.ByStep()
	c.progressLoaded = true
	c.overall = report.OverallPercentage

	agg := report.Progress
	agg.ProjectID = c.projectID
	agg.ProgressPercentage = report.OverallPercentage
	if agg.Status == "" {
		agg.Status = model.StatusForPercentage(report.OverallPercentage)
	}
	c.aggregate = agg
}

// reselectLocked applies the initial selection rule until the user has acted.
func (c *Controller) reselectLocked() {
	if c.userActed || !c.stepsLoaded || len(c.steps) == 0 {
		return
	}
	idx := c.initialIndexLocked()
	if idx != c.current {
		c.current = idx
		c.resetStepStateLocked()
	}
}

// initialIndexLocked picks the first step that is not known to be completed,
// or the last step when all of them are.
func (c *Controller) initialIndexLocked() int {
	for i, s := range c.steps {
		sp, ok := c.progress[s.ID]
		if !ok || !sp.IsCompleted {
			return i
		}
	}
	return len(c.steps) - 1
}

func (c *Controller) resetStepStateLocked() {
	c.drafts = make(map[int]string)
	c.submitResult = nil
	c.resultStepID = 0
	c.prior = nil
	c.priorStepID = 0
	c.errs.Answers = ""
	c.errs.Submit = ""
}

func (c *Controller) currentStepLocked() (model.Step, bool) {
	if !c.stepsLoaded || c.current < 0 || c.current >= len(c.steps) {
		return model.Step{}, false
	}
	return c.steps[c.current], true
}

func (c *Controller) completedLocked(stepID int) bool {
	if c.localDone[stepID] || c.locked[stepID] {
		return true
	}
	return c.progress[stepID].IsCompleted
}

func (c *Controller) needPriorLocked() (int, bool) {
	step, ok := c.currentStepLocked()
	if !ok || !step.HasQuestions() || !c.completedLocked(step.ID) {
		return 0, false
	}
	if c.prior != nil && c.priorStepID == step.ID {
		return 0, false
	}
	return step.ID, true
}

// loadPrior fetches recorded answers for stepID and keeps them only if that
// step is still the one shown.
func (c *Controller) loadPrior(ctx context.Context, stepID int) {
	prior, err := c.api.GetStepAnswers(ctx, stepID)

	c.mu.Lock()
	defer c.mu.Unlock()
	step, ok := c.currentStepLocked()
	if !ok || step.ID != stepID {
		return
	}
	if err != nil {
		c.errs.Answers = apiclient.Describe(err, MsgAnswersNetwork, MsgAnswersFailed)
		logger.Log.Warn("Failed to load previous answers", zap.Int("stepId", stepID), zap.Error(err))
		return
	}
	c.errs.Answers = ""
	c.prior = prior
	c.priorStepID = stepID
}

// SelectOption records a draft answer for the current step.
func (c *Controller) SelectOption(questionID int, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	step, ok := c.currentStepLocked()
	if !ok {
		return ErrNotLoaded
	}
	if c.completedLocked(step.ID) {
		return ErrStepCompleted
	}
	if c.submitting {
		return ErrSubmitting
	}
	q, ok := step.Question(questionID)
	if !ok {
		return ErrUnknownQuestion
	}
	if !q.HasOption(key) {
		return ErrUnknownOption
	}
	c.drafts[questionID] = key
	return nil
}

// Submit posts the draft answers of the current step. On success the progress
// report is refetched and becomes the new local progress; only when that
// refetch fails is a percentage computed here and written through the legacy path.
func (c *Controller) Submit(ctx context.Context) (*model.AnswerSubmission, error) {
	c.mu.Lock()
	step, ok := c.currentStepLocked()
	switch {
	case !ok:
		c.mu.Unlock()
		return nil, ErrNotLoaded
	case c.submitting:
		c.mu.Unlock()
		return nil, ErrSubmitting
	case !step.HasQuestions():
		c.mu.Unlock()
		return nil, ErrNoQuestions
	case c.completedLocked(step.ID):
		c.mu.Unlock()
		return nil, ErrStepCompleted
	case len(c.drafts) == 0:
		c.mu.Unlock()
		return nil, ErrNoAnswers
	}
	answers := make(map[int]string, len(c.drafts))
	for k, v := range c.drafts {
		answers[k] = v
	}
	c.submitting = true
	c.userActed = true
	c.errs.Submit = ""
	c.submitResult = nil
	c.resultStepID = 0
	c.mu.Unlock()

	res, err := c.api.SubmitStepAnswers(ctx, step.ID, answers)
	if err != nil {
		c.mu.Lock()
		c.submitting = false
		c.errs.Submit = apiclient.Describe(err, MsgSubmitNetwork, MsgSubmitFailed)
		c.mu.Unlock()
		logger.Log.Warn("Failed to submit answers", zap.Int("stepId", step.ID), zap.Error(err))
		return nil, err
	}

	c.mu.Lock()
	c.submitResult = res
	c.resultStepID = step.ID
	if res.AllCorrect {
		c.locked[step.ID] = true
	}
	c.mu.Unlock()

	agg := c.refreshAfterSubmit(ctx, step.ID, res.AllCorrect)

	c.mu.Lock()
	c.submitting = false
	c.mu.Unlock()

	if c.hooks.OnProgress != nil {
		c.hooks.OnProgress(agg)
	}
	if c.hooks.OnScored != nil {
		c.hooks.OnScored()
	}
	return res, nil
}

func (c *Controller) refreshAfterSubmit(ctx context.Context, stepID int, allCorrect bool) model.ProjectProgress {
	report, err := c.api.GetProjectProgress(ctx, c.projectID)
	if err == nil {
		c.mu.Lock()
		c.adoptReportLocked(report)
		agg := c.aggregate
		c.mu.Unlock()
		return agg
	}
	logger.Log.Warn("Progress refetch failed, using local estimate",
		zap.Int("projectId", c.projectID), zap.Error(err))

	c.mu.Lock()
	if allCorrect {
		c.localDone[stepID] = true
	}
	completed := 0
	for _, s := range c.steps {
		if c.progress[s.ID].IsCompleted || c.localDone[s.ID] {
			completed++
		}
	}
	pct := FallbackPercentage(completed, len(c.steps))
	status := model.InProgress
	if pct == 100 {
		status = model.Completed
	}
	c.overall = pct
	c.aggregate.ProjectID = c.projectID
	c.aggregate.ProgressPercentage = pct
	c.aggregate.Status = status
	agg := c.aggregate
	c.mu.Unlock()

	update := model.ProgressUpdate{ProjectID: c.projectID, Status: status, ProgressPercentage: pct}
	if err := c.api.UpdateProgress(ctx, update); err != nil {
		logger.Log.Warn("Legacy progress update failed", zap.Int("projectId", c.projectID), zap.Error(err))
	}
	return agg
}

// FallbackPercentage is round(completed/total*100), 0 for an empty project.
func FallbackPercentage(completed, total int) int {
	if total <= 0 {
		return 0
	}
	pct := int(math.Round(float64(completed) / float64(total) * 100))
	if pct > 100 {
		pct = 100
	}
	return pct
}

// Select moves to step i. It never submits; drafts and the last result are dropped.
func (c *Controller) Select(ctx context.Context, i int) error {
	c.mu.Lock()
	if !c.stepsLoaded {
		c.mu.Unlock()
		return ErrNotLoaded
	}
	if i < 0 || i >= len(c.steps) {
		c.mu.Unlock()
		return ErrOutOfRange
	}
	c.userActed = true
	c.current = i
	c.resetStepStateLocked()
	stepID, need := c.needPriorLocked()
	c.mu.Unlock()

	if need {
		c.loadPrior(ctx, stepID)
	}
	return nil
}

func (c *Controller) Previous(ctx context.Context) error {
	c.mu.Lock()
	i := c.current - 1
	c.mu.Unlock()
	return c.Select(ctx, i)
}

func (c *Controller) Next(ctx context.Context) error {
	c.mu.Lock()
	i := c.current + 1
	c.mu.Unlock()
	return c.Select(ctx, i)
}

// CanContinue is true once the current step has a submission result or is
// completed, and it is not the last step.
func (c *Controller) CanContinue() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canContinueLocked()
}

func (c *Controller) canContinueLocked() bool {
	step, ok := c.currentStepLocked()
	if !ok || c.current >= len(c.steps)-1 {
		return false
	}
	hasResult := c.submitResult != nil && c.resultStepID == step.ID && len(c.submitResult.Results) > 0
	return hasResult || c.completedLocked(step.ID)
}

func (c *Controller) Continue(ctx context.Context) error {
	if !c.CanContinue() {
		return ErrCannotContinue
	}
	return c.Next(ctx)
}

// StepProgress returns a copy of the per-step progress currently held.
func (c *Controller) StepProgress() map[int]model.StepProgress {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[int]model.StepProgress, len(c.progress))
	for k, v := range c.progress {
		out[k] = v
	}
	return out
}
