package stepper

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"

	"training_portal/internal/apiclient"
	"training_portal/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu          sync.Mutex
	steps       []model.Step
	report      *model.ProgressReport
	reportErr   error
	afterSubmit *model.ProgressReport
	submitRes   *model.AnswerSubmission
	submitErr   error
	prior       map[int]*model.PriorAnswers
	submitted   map[int]map[int]string
	updates     []model.ProgressUpdate
	reportCalls int
}

func (f *fakeAPI) ListSteps(ctx context.Context, projectID int) ([]model.Step, error) {
	return f.steps, nil
}

func (f *fakeAPI) GetProjectProgress(ctx context.Context, projectID int) (*model.ProgressReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reportCalls++
	if f.reportCalls > 1 && f.afterSubmit != nil {
		return f.afterSubmit, nil
	}
	if f.reportCalls > 1 && f.reportErr != nil {
		return nil, f.reportErr
	}
	return f.report, nil
}

func (f *fakeAPI) GetStepAnswers(ctx context.Context, stepID int) (*model.PriorAnswers, error) {
	if p, ok := f.prior[stepID]; ok {
		return p, nil
	}
	return &model.PriorAnswers{Answers: map[int]string{}}, nil
}

func (f *fakeAPI) SubmitStepAnswers(ctx context.Context, stepID int, answers map[int]string) (*model.AnswerSubmission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitted == nil {
		f.submitted = map[int]map[int]string{}
	}
	f.submitted[stepID] = answers
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return f.submitRes, nil
}

func (f *fakeAPI) UpdateProgress(ctx context.Context, update model.ProgressUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, update)
	return nil
}

func question(id, stepID int) model.Question {
	return model.Question{ID: id, StepID: stepID, Prompt: "?", Options: map[string]string{"A": "yes", "B": "no"}, Points: 10}
}

func threeSteps() []model.Step {
	return []model.Step{
		{ID: 1, OrderIndex: 1, Title: "S1", Questions: []model.Question{question(11, 1)}},
		{ID: 2, OrderIndex: 2, Title: "S2", Questions: []model.Question{question(21, 2)}},
		{ID: 3, OrderIndex: 3, Title: "S3", Questions: []model.Question{question(31, 3)}},
	}
}

func reportOf(done ...bool) *model.ProgressReport {
	r := &model.ProgressReport{TotalSteps: len(done)}
	for i, d := range done {
		r.StepProgress = append(r.StepProgress, model.StepProgress{StepID: i + 1, StepOrder: i + 1, IsCompleted: d})
		if d {
			r.CompletedSteps++
		}
	}
	r.OverallPercentage = FallbackPercentage(r.CompletedSteps, len(done))
	r.Progress = model.ProjectProgress{Status: model.StatusForPercentage(r.OverallPercentage)}
	return r
}

func TestOpenSelectsFirstIncompleteStep(t *testing.T) {
	api := &fakeAPI{steps: threeSteps(), report: reportOf(true, false, false)}
	c := New(api, 5, Hooks{})
	c.Open(context.Background())

	v := c.View()
	assert.Equal(t, 1, v.CurrentIndex)
	require.NotNil(t, v.Current)
	assert.Equal(t, "S2", v.Current.Title)
	assert.False(t, v.ReadOnly)
	assert.Equal(t, 1, v.CompletedSteps)
}

func TestOpenSelectsLastStepWhenAllCompleted(t *testing.T) {
	api := &fakeAPI{
		steps:  threeSteps(),
		report: reportOf(true, true, true),
		prior: map[int]*model.PriorAnswers{
			3: {Answers: map[int]string{31: "A"}, TotalPoints: 10, MaxPoints: 10, AllCorrect: true, HasAnswers: true},
		},
	}
	c := New(api, 5, Hooks{})
	c.Open(context.Background())

	v := c.View()
	assert.Equal(t, 2, v.CurrentIndex)
	assert.True(t, v.ReadOnly)
	require.NotNil(t, v.PriorAnswers)
	assert.Equal(t, 10, v.PriorAnswers.TotalPoints)
	assert.Equal(t, "A", v.Answers[31])
	assert.False(t, v.CanContinue, "last step never offers continue")

	_, err := c.Submit(context.Background())
	assert.ErrorIs(t, err, ErrStepCompleted)
	assert.ErrorIs(t, c.SelectOption(31, "B"), ErrStepCompleted)
}

func TestSelectionIndependentOfArrivalOrder(t *testing.T) {
	steps := threeSteps()
	report := reportOf(true, true, false)

	stepsFirst := New(&fakeAPI{}, 5, Hooks{})
	stepsFirst.applySteps(steps, nil)
	assert.Equal(t, 0, stepsFirst.View().CurrentIndex)
	stepsFirst.applyProgress(report, nil)

	progressFirst := New(&fakeAPI{}, 5, Hooks{})
	progressFirst.applyProgress(report, nil)
	progressFirst.applySteps(steps, nil)

	assert.Equal(t, 2, stepsFirst.View().CurrentIndex)
	assert.Equal(t, stepsFirst.View().CurrentIndex, progressFirst.View().CurrentIndex)
}

func TestLateProgressDoesNotMoveCursorAfterNavigation(t *testing.T) {
	c := New(&fakeAPI{}, 5, Hooks{})
	c.applySteps(threeSteps(), nil)
	require.NoError(t, c.Select(context.Background(), 1))

	c.applyProgress(reportOf(true, true, false), nil)
	assert.Equal(t, 1, c.View().CurrentIndex)
}

func TestSubmitAllCorrectLocksStep(t *testing.T) {
	var gotProgress []model.ProjectProgress
	scored := 0
	api := &fakeAPI{
		steps:       threeSteps(),
		report:      reportOf(true, false, false),
		afterSubmit: reportOf(true, true, false),
		submitRes: &model.AnswerSubmission{
			Results:     []model.AnswerResult{{QuestionID: 21, SelectedOption: "A", IsCorrect: true, PointsAwarded: 10, MaxPoints: 10}},
			TotalPoints: 10, MaxPoints: 10, AllCorrect: true,
		},
	}
	c := New(api, 5, Hooks{
		OnProgress: func(p model.ProjectProgress) { gotProgress = append(gotProgress, p) },
		OnScored:   func() { scored++ },
	})
	ctx := context.Background()
	c.Open(ctx)

	require.NoError(t, c.SelectOption(21, "A"))
	res, err := c.Submit(ctx)
	require.NoError(t, err)
	assert.True(t, res.AllCorrect)

	v := c.View()
	require.NotNil(t, v.SubmitResult)
	assert.True(t, v.SubmitResult.AllCorrect)
	assert.True(t, v.Completed)
	assert.False(t, v.CanSubmit)
	assert.True(t, v.CanContinue)
	assert.Equal(t, 67, v.Progress.ProgressPercentage)
	assert.Equal(t, map[int]string{21: "A"}, api.submitted[2])
	assert.Empty(t, api.updates, "refetch succeeded so no legacy write")

	require.Len(t, gotProgress, 1)
	assert.Equal(t, 5, gotProgress[0].ProjectID)
	assert.Equal(t, model.InProgress, gotProgress[0].Status)
	assert.Equal(t, 1, scored)

	_, err = c.Submit(ctx)
	assert.ErrorIs(t, err, ErrStepCompleted)

	require.NoError(t, c.Continue(ctx))
	assert.Equal(t, 2, c.View().CurrentIndex)
}

func TestSubmitNetworkFailureLeavesStateUntouched(t *testing.T) {
	api := &fakeAPI{
		steps:     threeSteps(),
		report:    reportOf(true, false, false),
		submitErr: &apiclient.Error{Kind: apiclient.KindNetwork, Op: "/api/steps/:id/answer", Err: &net.OpError{Op: "dial", Err: errors.New("refused")}},
	}
	c := New(api, 5, Hooks{OnScored: func() { t.Fatal("no hook on failure") }})
	ctx := context.Background()
	c.Open(ctx)
	before := c.StepProgress()

	require.NoError(t, c.SelectOption(21, "B"))
	_, err := c.Submit(ctx)
	require.Error(t, err)

	v := c.View()
	assert.Nil(t, v.SubmitResult)
	assert.Equal(t, MsgSubmitNetwork, v.Errors.Submit)
	assert.Equal(t, before, c.StepProgress())
	assert.False(t, v.CanContinue)
	assert.True(t, v.CanSubmit, "the user may retry")
}

func TestFailedResubmitClearsPreviousResult(t *testing.T) {
	api := &fakeAPI{
		steps:       threeSteps(),
		report:      reportOf(false, false, false),
		afterSubmit: reportOf(false, false, false),
		submitRes: &model.AnswerSubmission{
			Results:   []model.AnswerResult{{QuestionID: 11, SelectedOption: "B", IsCorrect: false, MaxPoints: 10}},
			MaxPoints: 10,
		},
	}
	c := New(api, 5, Hooks{})
	ctx := context.Background()
	c.Open(ctx)

	require.NoError(t, c.SelectOption(11, "B"))
	_, err := c.Submit(ctx)
	require.NoError(t, err)
	require.NotNil(t, c.View().SubmitResult)
	assert.True(t, c.View().CanContinue)

	api.mu.Lock()
	api.submitErr = &apiclient.Error{Kind: apiclient.KindNetwork, Op: "/api/steps/:id/answer", Err: &net.OpError{Op: "dial", Err: errors.New("refused")}}
	api.mu.Unlock()

	require.NoError(t, c.SelectOption(11, "A"))
	_, err = c.Submit(ctx)
	require.Error(t, err)

	v := c.View()
	assert.Nil(t, v.SubmitResult)
	assert.Equal(t, MsgSubmitNetwork, v.Errors.Submit)
	assert.False(t, v.CanContinue)
	assert.False(t, c.CanContinue())
}

func TestSubmitAPIFailureShowsServerMessage(t *testing.T) {
	api := &fakeAPI{
		steps:     threeSteps(),
		report:    reportOf(false, false, false),
		submitErr: &apiclient.Error{Kind: apiclient.KindAPI, Status: 200, Message: "Step is not released"},
	}
	c := New(api, 5, Hooks{})
	c.Open(context.Background())
	require.NoError(t, c.SelectOption(11, "A"))
	_, err := c.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Step is not released", c.View().Errors.Submit)

	api.submitErr = &apiclient.Error{Kind: apiclient.KindInvalid}
	_, err = c.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, MsgSubmitFailed, c.View().Errors.Submit)
}

func TestSubmitFallsBackWhenRefetchFails(t *testing.T) {
	var got model.ProjectProgress
	api := &fakeAPI{
		steps:     threeSteps(),
		report:    reportOf(true, true, false),
		reportErr: &apiclient.Error{Kind: apiclient.KindHTTP, Status: 500},
		submitRes: &model.AnswerSubmission{
			Results:    []model.AnswerResult{{QuestionID: 31, SelectedOption: "A", IsCorrect: true}},
			AllCorrect: true,
		},
	}
	c := New(api, 5, Hooks{OnProgress: func(p model.ProjectProgress) { got = p }})
	ctx := context.Background()
	c.Open(ctx)
	require.Equal(t, 2, c.View().CurrentIndex)

	require.NoError(t, c.SelectOption(31, "A"))
	_, err := c.Submit(ctx)
	require.NoError(t, err)

	require.Len(t, api.updates, 1)
	assert.Equal(t, model.ProgressUpdate{ProjectID: 5, Status: model.Completed, ProgressPercentage: 100}, api.updates[0])
	assert.Equal(t, 100, got.ProgressPercentage)
	assert.Equal(t, model.Completed, got.Status)
	assert.True(t, c.View().Completed)
}

func TestSelectOptionValidation(t *testing.T) {
	c := New(&fakeAPI{steps: threeSteps(), report: reportOf(false, false, false)}, 5, Hooks{})
	c.Open(context.Background())

	assert.ErrorIs(t, c.SelectOption(99, "A"), ErrUnknownQuestion)
	assert.ErrorIs(t, c.SelectOption(11, "D"), ErrUnknownOption)
	_, err := c.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNoAnswers)
}

func TestNavigationNeverSubmits(t *testing.T) {
	api := &fakeAPI{steps: threeSteps(), report: reportOf(false, false, false)}
	c := New(api, 5, Hooks{})
	ctx := context.Background()
	c.Open(ctx)

	require.NoError(t, c.SelectOption(11, "A"))
	assert.False(t, c.CanContinue())
	assert.ErrorIs(t, c.Continue(ctx), ErrCannotContinue)

	require.NoError(t, c.Next(ctx))
	require.NoError(t, c.Next(ctx))
	assert.ErrorIs(t, c.Next(ctx), ErrOutOfRange)
	require.NoError(t, c.Previous(ctx))

	v := c.View()
	assert.Equal(t, 1, v.CurrentIndex)
	assert.Empty(t, v.Answers)
	assert.Empty(t, api.submitted)
}

func TestStepWithoutQuestionsCannotSubmit(t *testing.T) {
	steps := []model.Step{{ID: 1, Title: "Intro", Content: "read me"}, {ID: 2, Title: "Quiz", Questions: []model.Question{question(21, 2)}}}
	c := New(&fakeAPI{steps: steps, report: &model.ProgressReport{}}, 5, Hooks{})
	c.Open(context.Background())

	_, err := c.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNoQuestions)
	assert.False(t, c.CanContinue())
}

func TestFallbackPercentage(t *testing.T) {
	assert.Equal(t, 0, FallbackPercentage(0, 0))
	assert.Equal(t, 33, FallbackPercentage(1, 3))
	assert.Equal(t, 67, FallbackPercentage(2, 3))
	assert.Equal(t, 100, FallbackPercentage(3, 3))
}
