package examflow_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusworks/examport/internal/api"
	"github.com/campusworks/examport/internal/examflow"
	"github.com/campusworks/examport/internal/model"
)

// fakeExamService scripts the repository results the session consumes and
// records every submission request it receives.
type fakeExamService struct {
	mu sync.Mutex

	questionResults []api.Result[[]model.Question]
	submitResults   []api.Result[struct{}]
	submitDelay     time.Duration

	questionCalls int
	submissions   []model.SubmitExamRequest
}

func (f *fakeExamService) Questions(_ context.Context, _, _ string) api.Result[[]model.Question] {
	f.mu.Lock()
	defer f.mu.Unlock()
	res := f.questionResults[0]
	if len(f.questionResults) > 1 {
		f.questionResults = f.questionResults[1:]
	}
	f.questionCalls++
	return res
}

func (f *fakeExamService) Submit(_ context.Context, req model.SubmitExamRequest) api.Result[struct{}] {
	if f.submitDelay > 0 {
		time.Sleep(f.submitDelay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submissions = append(f.submissions, req)
	res := f.submitResults[0]
	if len(f.submitResults) > 1 {
		f.submitResults = f.submitResults[1:]
	}
	return res
}

func (f *fakeExamService) submissionCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.submissions)
}

func (f *fakeExamService) submission(i int) model.SubmitExamRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submissions[i]
}

func mcqQuestions(n int) []model.Question {
	qs := make([]model.Question, 0, n)
	for i := 0; i < n; i++ {
		qs = append(qs, model.Question{
			ID:      string(rune('a' + i)),
			Prompt:  "question",
			Options: []string{"Option A", "Option B", "Option C", "Option D"},
		})
	}
	return qs
}

func newTestSession(t *testing.T, fake *fakeExamService, durationMinutes int) *examflow.Session {
	t.Helper()
	assignment := model.ExamAssignment{
		ExamID:     "exam-1",
		CourseName: "Introduction to Programming",
		CourseCode: "CSC101",
		Duration:   durationMinutes,
		ExamType:   model.ExamTypeMCQ,
	}
	return examflow.NewSession(context.Background(), fake, zerolog.Nop(), assignment, "student-1")
}

func waitSettled(t *testing.T, s *examflow.Session) examflow.Snapshot {
	t.Helper()
	require.Eventually(t, func() bool {
		return s.Snapshot().SubState != examflow.SubStateSubmitting
	}, time.Second, 5*time.Millisecond)
	return s.Snapshot()
}

func TestLoadArmsSession(t *testing.T) {
	fake := &fakeExamService{
		questionResults: []api.Result[[]model.Question]{api.Ok(mcqQuestions(3))},
	}
	s := newTestSession(t, fake, 2)

	snap := s.Load()

	assert.Equal(t, examflow.PhaseReady, snap.Phase)
	assert.Equal(t, examflow.SubStateActive, snap.SubState)
	assert.Equal(t, 0, snap.Index)
	assert.Equal(t, 120, snap.Remaining)
	assert.True(t, snap.TimerActive)
	assert.Equal(t, 3, snap.QuestionCount)
}

func TestLoadEmptyListIsEmptyNotError(t *testing.T) {
	fake := &fakeExamService{
		questionResults: []api.Result[[]model.Question]{api.Ok([]model.Question{})},
	}
	s := newTestSession(t, fake, 2)

	snap := s.Load()

	assert.Equal(t, examflow.PhaseEmpty, snap.Phase)
	assert.Empty(t, snap.LoadError)
}

func TestLoadFailureIsRetriable(t *testing.T) {
	fake := &fakeExamService{
		questionResults: []api.Result[[]model.Question]{
			api.Err[[]model.Question]("backend unavailable"),
			api.Ok(mcqQuestions(1)),
		},
	}
	s := newTestSession(t, fake, 2)

	snap := s.Load()
	require.Equal(t, examflow.PhaseFailed, snap.Phase)
	assert.Equal(t, "backend unavailable", snap.LoadError)

	snap = s.Load()
	assert.Equal(t, examflow.PhaseReady, snap.Phase)
	assert.Equal(t, 2, fake.questionCalls)
}

func TestRemainingTimeNonIncreasingAndFloored(t *testing.T) {
	fake := &fakeExamService{
		questionResults: []api.Result[[]model.Question]{api.Ok(mcqQuestions(1))},
		submitResults:   []api.Result[struct{}]{api.Ok(struct{}{})},
	}
	s := newTestSession(t, fake, 1)
	s.Load()

	prev := s.Snapshot().Remaining
	for i := 0; i < 70; i++ {
		s.Tick()
		cur := s.Snapshot().Remaining
		assert.LessOrEqual(t, cur, prev)
		assert.GreaterOrEqual(t, cur, 0)
		prev = cur
	}
	assert.Equal(t, 0, s.Snapshot().Remaining)
}

func TestTimeoutTriggersExactlyOneAutoSubmit(t *testing.T) {
	fake := &fakeExamService{
		questionResults: []api.Result[[]model.Question]{api.Ok(mcqQuestions(2))},
		submitResults:   []api.Result[struct{}]{api.Ok(struct{}{})},
	}
	s := newTestSession(t, fake, 1)
	s.Load()

	// No user interaction: 60 ticks run the clock out.
	for i := 0; i < 60; i++ {
		s.Tick()
	}
	snap := waitSettled(t, s)
	assert.Equal(t, examflow.SubStateSubmitted, snap.SubState)
	assert.True(t, snap.AutoSubmitted)
	assert.False(t, snap.TimerActive)

	// Stray ticks after the zero mark never re-trigger.
	for i := 0; i < 10; i++ {
		s.Tick()
	}
	assert.Equal(t, 1, fake.submissionCount())
	// Nothing was answered, so the payload is empty rather than padded.
	assert.Empty(t, fake.submission(0).Responses)
}

func TestSetAnswerLastWriteWins(t *testing.T) {
	fake := &fakeExamService{
		questionResults: []api.Result[[]model.Question]{api.Ok(mcqQuestions(2))},
		submitResults:   []api.Result[struct{}]{api.Ok(struct{}{})},
	}
	s := newTestSession(t, fake, 5)
	s.Load()

	s.SetAnswer("a", "Option A")
	s.SetAnswer("a", "Option A") // repeated identical call is idempotent
	assert.Equal(t, 1, s.Snapshot().AnsweredCount)

	s.SetAnswer("a", "Option C")
	answer, ok := s.Answer("a")
	require.True(t, ok)
	assert.Equal(t, "Option C", answer)

	s.ConfirmSubmit()
	waitSettled(t, s)

	require.Equal(t, 1, fake.submissionCount())
	responses := fake.submission(0).Responses
	require.Len(t, responses, 1)
	assert.Equal(t, "Option C", responses[0].Answer)
}

func TestUnknownQuestionAndEmptyAnswerIgnored(t *testing.T) {
	fake := &fakeExamService{
		questionResults: []api.Result[[]model.Question]{api.Ok(mcqQuestions(1))},
	}
	s := newTestSession(t, fake, 5)
	s.Load()

	s.SetAnswer("nope", "Option A")
	assert.Equal(t, 0, s.Snapshot().AnsweredCount)

	s.SetAnswer("a", "Option A")
	s.SetAnswer("a", "")
	assert.Equal(t, 0, s.Snapshot().AnsweredCount)
}

func TestSubmitSendsOnlyAnsweredQuestions(t *testing.T) {
	fake := &fakeExamService{
		questionResults: []api.Result[[]model.Question]{api.Ok(mcqQuestions(3))},
		submitResults:   []api.Result[struct{}]{api.Ok(struct{}{})},
	}
	s := newTestSession(t, fake, 5)
	s.Load()

	// Answer questions 1 and 3, leave 2 unanswered.
	s.SetAnswer("a", "Option A")
	s.SetAnswer("c", "Option B")

	answered, total, ok := s.RequestSubmit()
	require.True(t, ok)
	assert.Equal(t, 2, answered)
	assert.Equal(t, 3, total)

	s.ConfirmSubmit()
	snap := waitSettled(t, s)
	assert.Equal(t, examflow.SubStateSubmitted, snap.SubState)

	responses := fake.submission(0).Responses
	require.Len(t, responses, 2)
	assert.Equal(t, "a", responses[0].QuestionID)
	assert.Equal(t, "c", responses[1].QuestionID)
}

func TestTerminalSessionRejectsAllMutation(t *testing.T) {
	fake := &fakeExamService{
		questionResults: []api.Result[[]model.Question]{api.Ok(mcqQuestions(3))},
		submitResults:   []api.Result[struct{}]{api.Ok(struct{}{})},
	}
	s := newTestSession(t, fake, 5)
	s.Load()
	s.SetAnswer("a", "Option A")
	s.ConfirmSubmit()
	before := waitSettled(t, s)
	require.Equal(t, examflow.SubStateSubmitted, before.SubState)

	s.SetAnswer("b", "Option B")
	s.GoToQuestion(2)
	s.Tick()

	assert.Equal(t, before, s.Snapshot())

	_, _, ok := s.RequestSubmit()
	assert.False(t, ok)
	assert.False(t, s.RequestExit())
}

func TestSubmitFailureThenManualRetry(t *testing.T) {
	fake := &fakeExamService{
		questionResults: []api.Result[[]model.Question]{api.Ok(mcqQuestions(2))},
		submitResults: []api.Result[struct{}]{
			api.Err[struct{}]("Network error"),
			api.Ok(struct{}{}),
		},
	}
	s := newTestSession(t, fake, 5)
	s.Load()
	s.SetAnswer("a", "Option D")

	s.ConfirmSubmit()
	snap := waitSettled(t, s)
	require.Equal(t, examflow.SubStateSubmitFailed, snap.SubState)
	assert.Equal(t, "Network error", snap.SubmitError)
	assert.False(t, snap.TimerActive)

	// Failures are never retried automatically.
	assert.Equal(t, 1, fake.submissionCount())

	s.RetrySubmit()
	snap = waitSettled(t, s)
	assert.Equal(t, examflow.SubStateSubmitted, snap.SubState)

	// The retry reuses the captured answers verbatim.
	require.Equal(t, 2, fake.submissionCount())
	assert.Equal(t, fake.submission(0).Responses, fake.submission(1).Responses)
}

func TestGoToQuestionBounds(t *testing.T) {
	fake := &fakeExamService{
		questionResults: []api.Result[[]model.Question]{api.Ok(mcqQuestions(3))},
	}
	s := newTestSession(t, fake, 5)
	s.Load()

	s.GoToQuestion(2)
	assert.Equal(t, 2, s.Snapshot().Index)

	s.GoToQuestion(3)
	assert.Equal(t, 2, s.Snapshot().Index)
	s.GoToQuestion(-1)
	assert.Equal(t, 2, s.Snapshot().Index)
}

func TestExitConfirmationFlow(t *testing.T) {
	fake := &fakeExamService{
		questionResults: []api.Result[[]model.Question]{api.Ok(mcqQuestions(2))},
	}
	s := newTestSession(t, fake, 5)
	s.Load()

	// Nothing captured: no confirmation needed.
	assert.False(t, s.RequestExit())

	s.SetAnswer("a", "Option A")
	require.True(t, s.RequestExit())
	assert.Equal(t, examflow.SubStateExiting, s.Snapshot().SubState)

	// Declining returns to the active attempt unchanged.
	s.DeclineExit()
	snap := s.Snapshot()
	assert.Equal(t, examflow.SubStateActive, snap.SubState)
	assert.Equal(t, 1, snap.AnsweredCount)

	// Confirming tears the session down; nothing mutates afterwards.
	require.True(t, s.RequestExit())
	s.ConfirmExit()
	snap = s.Snapshot()
	assert.False(t, snap.TimerActive)

	s.SetAnswer("b", "Option B")
	assert.Equal(t, snap, s.Snapshot())
}

func TestStaleSubmitResultDiscardedAfterClear(t *testing.T) {
	fake := &fakeExamService{
		questionResults: []api.Result[[]model.Question]{api.Ok(mcqQuestions(1))},
		submitResults:   []api.Result[struct{}]{api.Ok(struct{}{})},
		submitDelay:     50 * time.Millisecond,
	}
	s := newTestSession(t, fake, 5)
	s.Load()
	s.SetAnswer("a", "Option A")

	s.ConfirmSubmit()
	s.Clear()

	// The in-flight result lands on a torn-down session and is dropped.
	require.Eventually(t, func() bool {
		return fake.submissionCount() == 1
	}, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.NotEqual(t, examflow.SubStateSubmitted, s.Snapshot().SubState)
}

func TestSnapshotSubscription(t *testing.T) {
	fake := &fakeExamService{
		questionResults: []api.Result[[]model.Question]{api.Ok(mcqQuestions(1))},
	}
	s := newTestSession(t, fake, 5)
	ch := s.Subscribe()

	s.Load()

	var armed bool
	for i := 0; i < 4; i++ {
		select {
		case snap := <-ch:
			if snap.Phase == examflow.PhaseReady {
				armed = true
			}
		case <-time.After(time.Second):
		}
		if armed {
			break
		}
	}
	assert.True(t, armed)
}

func TestFinalResponsesMatchSubmission(t *testing.T) {
	fake := &fakeExamService{
		questionResults: []api.Result[[]model.Question]{api.Ok(mcqQuestions(2))},
		submitResults:   []api.Result[struct{}]{api.Ok(struct{}{})},
	}
	s := newTestSession(t, fake, 5)
	s.Load()
	s.SetAnswer("b", "Option B")
	s.ConfirmSubmit()
	waitSettled(t, s)

	final := s.FinalResponses()
	require.Len(t, final, 1)
	assert.Equal(t, "b", final[0].QuestionID)
	assert.Equal(t, fake.submission(0).Responses, final)
}
