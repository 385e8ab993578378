package examflow

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/campusworks/examport/internal/api"
	"github.com/campusworks/examport/internal/model"
)

// Phase is the load state of an exam session.
type Phase int

const (
	// PhaseLoading covers both the initial state and an in-flight question fetch.
	PhaseLoading Phase = iota
	// PhaseReady means questions are loaded and the attempt is live.
	PhaseReady
	// PhaseEmpty means the fetch succeeded but returned no questions.
	PhaseEmpty
	// PhaseFailed means the fetch failed; Load may be re-issued.
	PhaseFailed
)

// SubState tracks the attempt lifecycle within a ready session.
type SubState int

const (
	SubStateActive SubState = iota
	SubStateExiting
	SubStateSubmitting
	SubStateSubmitFailed
	SubStateSubmitted
)

// SubmitTag records what triggered a submission attempt.
type SubmitTag string

const (
	SubmitManual  SubmitTag = "manual"
	SubmitTimeout SubmitTag = "timeout"
	SubmitRetry   SubmitTag = "retry"
)

// ExamService is the slice of the student repository the session depends on.
type ExamService interface {
	Questions(ctx context.Context, studentID, examID string) api.Result[[]model.Question]
	Submit(ctx context.Context, req model.SubmitExamRequest) api.Result[struct{}]
}

// Snapshot is an immutable view of the session state, pushed to subscribers
// on every change. Consumers render from snapshots and never touch the
// session's internals.
type Snapshot struct {
	ExamID        string
	Phase         Phase
	SubState      SubState
	LoadError     string
	SubmitError   string
	QuestionCount int
	Index         int
	Remaining     int
	TimerActive   bool
	AnsweredCount int
	AutoSubmitted bool
}

// Terminal reports whether the session accepts no further mutation.
func (s Snapshot) Terminal() bool {
	return s.SubState == SubStateSubmitted
}

// Session owns one student's timed pass through one exam's question set:
// the timer, the current question pointer, the captured answers, and the
// submission lifecycle. All mutation happens under one mutex, so events are
// applied strictly in the order they arrive, and a tick or network result
// that lands after a terminal transition is a no-op.
type Session struct {
	mu   sync.Mutex
	ctx  context.Context
	repo ExamService
	log  zerolog.Logger

	assignment model.ExamAssignment
	studentID  string

	phase       Phase
	loadErr     string
	questions   []model.Question
	index       int
	remaining   int
	timerActive bool
	answers     map[string]string
	sub         SubState
	submitErr   string

	// autoSubmitted latches the timeout trigger so the zero mark fires
	// exactly one automatic submission no matter how many ticks follow.
	autoSubmitted bool

	// generation identifies this attempt. It is bumped on Clear, and every
	// in-flight request records the generation it was issued for; responses
	// for a stale generation are discarded instead of mutating state they
	// no longer own.
	generation uint64
	cleared    bool

	tickerDone chan struct{}
	subs       []chan Snapshot
}

// NewSession creates a session for one exam attempt. ctx bounds the lifetime
// of all network calls the session issues.
func NewSession(ctx context.Context, repo ExamService, log zerolog.Logger, assignment model.ExamAssignment, studentID string) *Session {
	return &Session{
		ctx:        ctx,
		repo:       repo,
		log:        log.With().Str("component", "exam_session").Str("exam_id", assignment.ExamID).Logger(),
		assignment: assignment,
		studentID:  studentID,
		phase:      PhaseLoading,
		answers:    make(map[string]string),
	}
}

// Subscribe registers a listener for state snapshots. The channel is buffered;
// a slow consumer misses intermediate snapshots but never blocks the session.
func (s *Session) Subscribe() <-chan Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan Snapshot, 16)
	s.subs = append(s.subs, ch)
	return ch
}

// Load requests the question set and transitions the session accordingly:
// a non-empty list arms the attempt (index 0, full time, timer on), an empty
// list parks it in the empty state, and a failure is retriable by calling
// Load again.
func (s *Session) Load() Snapshot {
	s.mu.Lock()
	if s.cleared || s.sub == SubStateSubmitted {
		defer s.mu.Unlock()
		return s.snapshotLocked()
	}
	s.phase = PhaseLoading
	s.loadErr = ""
	gen := s.generation
	s.notifyLocked()
	s.mu.Unlock()

	res := s.repo.Questions(s.ctx, s.studentID, s.assignment.ExamID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != gen || s.cleared {
		// Session was torn down while the request was in flight.
		return s.snapshotLocked()
	}

	switch {
	case res.IsError():
		s.phase = PhaseFailed
		s.loadErr = res.Message()
		s.log.Warn().Str("error", s.loadErr).Msg("Question fetch failed")
	case len(res.Value()) == 0:
		s.phase = PhaseEmpty
	default:
		s.phase = PhaseReady
		s.sub = SubStateActive
		s.questions = res.Value()
		s.index = 0
		s.remaining = s.assignment.Duration * 60
		s.timerActive = true
		s.log.Info().Int("questions", len(s.questions)).Int("seconds", s.remaining).Msg("Exam session armed")
	}

	s.notifyLocked()
	return s.snapshotLocked()
}

// StartTicker drives the session clock with one Tick per second until the
// session reaches a terminal state or is cleared. The tick itself is applied
// under the session mutex, so a ticker firing after teardown is harmless.
func (s *Session) StartTicker() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tickerDone != nil || s.cleared {
		return
	}
	done := make(chan struct{})
	s.tickerDone = done

	go func() {
		t := time.NewTicker(time.Second)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				s.Tick()
			}
		}
	}()
}

// Tick advances the clock by one second. While the attempt is live the
// remaining time decreases by exactly 1, floored at 0; the moment it reaches
// 0 with the timer armed, exactly one automatic submission fires.
func (s *Session) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseReady || !s.timerActive {
		return
	}
	if s.sub != SubStateActive && s.sub != SubStateExiting {
		return
	}

	if s.remaining > 0 {
		s.remaining--
	}

	if s.remaining == 0 {
		s.timerActive = false
		if !s.autoSubmitted {
			s.autoSubmitted = true
			s.beginSubmitLocked(SubmitTimeout)
		}
	}

	s.notifyLocked()
}

// GoToQuestion moves the current question pointer. Out-of-range targets and
// any state other than an active attempt make it a no-op; answers and timer
// are untouched.
func (s *Session) GoToQuestion(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseReady || s.sub != SubStateActive {
		return
	}
	if i < 0 || i >= len(s.questions) {
		return
	}
	s.index = i
	s.notifyLocked()
}

// SetAnswer upserts the student's answer for a question. Last write wins and
// no history is kept. Setting an empty value removes the capture, so an
// erased answer is absent from the payload rather than sent as "".
// Only an active attempt accepts answers, and only for loaded question ids.
func (s *Session) SetAnswer(questionID, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseReady || s.sub != SubStateActive {
		return
	}
	if !s.knownQuestionLocked(questionID) {
		return
	}

	if value == "" {
		delete(s.answers, questionID)
	} else {
		s.answers[questionID] = value
	}
	s.notifyLocked()
}

// Answer returns the captured answer for a question, if any.
func (s *Session) Answer(questionID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.answers[questionID]
	return v, ok
}

// Current returns the question under the pointer.
func (s *Session) Current() (model.Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseReady || len(s.questions) == 0 {
		return model.Question{}, false
	}
	return s.questions[s.index], true
}

// Questions returns the loaded question list.
func (s *Session) Questions() []model.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Question, len(s.questions))
	copy(out, s.questions)
	return out
}

// RequestSubmit surfaces the manual-submit confirmation step. It reports how
// many of the questions carry an answer; ok is false when the attempt cannot
// accept a submit intent. The session state is unchanged; declining the
// confirmation simply means never calling ConfirmSubmit.
func (s *Session) RequestSubmit() (answered, total int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseReady || s.sub != SubStateActive {
		return 0, 0, false
	}
	return len(s.answers), len(s.questions), true
}

// ConfirmSubmit runs the submission protocol for a user-confirmed submit.
func (s *Session) ConfirmSubmit() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseReady || s.sub != SubStateActive {
		return
	}
	s.beginSubmitLocked(SubmitManual)
	s.notifyLocked()
}

// RetrySubmit re-runs the submission protocol after a failure, reusing the
// stored answer map. Retries are always an explicit user action; the session
// never retries on its own.
func (s *Session) RetrySubmit() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseReady || s.sub != SubStateSubmitFailed {
		return
	}
	s.beginSubmitLocked(SubmitRetry)
	s.notifyLocked()
}

// RequestExit surfaces the leave-exam intent. When at least one answer has
// been captured the exit needs confirmation (progress would be discarded)
// and the session parks in the exiting sub-state; with nothing captured the
// caller may tear down immediately.
func (s *Session) RequestExit() (needsConfirm bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseReady || s.sub != SubStateActive {
		return false
	}
	if len(s.answers) == 0 {
		return false
	}
	s.sub = SubStateExiting
	s.notifyLocked()
	return true
}

// DeclineExit returns an exiting session to the active attempt unchanged.
func (s *Session) DeclineExit() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseReady || s.sub != SubStateExiting {
		return
	}
	s.sub = SubStateActive
	s.notifyLocked()
}

// ConfirmExit stops the timer and discards the session. Partial answers are
// not persisted anywhere.
func (s *Session) ConfirmExit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

// Clear tears the session down: the ticker stops, in-flight results are
// orphaned, and no further event mutates state.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

// FinalResponses returns the submitted answer map as (questionId, answer)
// pairs in question order. Only captured answers appear; questions without
// one are absent rather than sent as empty strings.
func (s *Session) FinalResponses() []model.QuestionResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buildResponsesLocked()
}

// Snapshot returns the current state view.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// beginSubmitLocked starts the submission protocol: the attempt enters the
// submitting sub-state with the timer stopped, and the network call runs
// outside the lock. At most one submission is ever in flight because only
// the active/exiting/failed sub-states can reach this point.
func (s *Session) beginSubmitLocked(tag SubmitTag) {
	s.sub = SubStateSubmitting
	s.submitErr = ""
	s.timerActive = false
	s.stopTickerLocked()

	req := model.SubmitExamRequest{
		ExamID:    s.assignment.ExamID,
		StudentID: s.studentID,
		Responses: s.buildResponsesLocked(),
	}
	gen := s.generation

	s.log.Info().Str("tag", string(tag)).Int("responses", len(req.Responses)).Msg("Submitting exam")

	go func() {
		res := s.repo.Submit(s.ctx, req)
		s.applySubmitResult(gen, tag, res)
	}()
}

func (s *Session) applySubmitResult(gen uint64, tag SubmitTag, res api.Result[struct{}]) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != gen || s.cleared {
		s.log.Debug().Str("tag", string(tag)).Msg("Discarding stale submission result")
		return
	}
	if s.sub != SubStateSubmitting {
		return
	}

	if res.IsSuccess() {
		s.sub = SubStateSubmitted
		s.timerActive = false
		s.log.Info().Str("tag", string(tag)).Msg("Exam submitted")
	} else {
		s.sub = SubStateSubmitFailed
		s.submitErr = res.Message()
		s.log.Warn().Str("tag", string(tag)).Str("error", s.submitErr).Msg("Submission failed")
	}
	s.notifyLocked()
}

func (s *Session) buildResponsesLocked() []model.QuestionResponse {
	responses := make([]model.QuestionResponse, 0, len(s.answers))
	for _, q := range s.questions {
		if answer, ok := s.answers[q.ID]; ok && answer != "" {
			responses = append(responses, model.QuestionResponse{QuestionID: q.ID, Answer: answer})
		}
	}
	return responses
}

func (s *Session) knownQuestionLocked(questionID string) bool {
	for _, q := range s.questions {
		if q.ID == questionID {
			return true
		}
	}
	return false
}

func (s *Session) clearLocked() {
	if s.cleared {
		return
	}
	s.cleared = true
	s.generation++
	s.timerActive = false
	s.stopTickerLocked()
	s.notifyLocked()
	for _, ch := range s.subs {
		close(ch)
	}
	s.subs = nil
	s.log.Info().Msg("Session cleared")
}

func (s *Session) stopTickerLocked() {
	if s.tickerDone != nil {
		close(s.tickerDone)
		s.tickerDone = nil
	}
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		ExamID:        s.assignment.ExamID,
		Phase:         s.phase,
		SubState:      s.sub,
		LoadError:     s.loadErr,
		SubmitError:   s.submitErr,
		QuestionCount: len(s.questions),
		Index:         s.index,
		Remaining:     s.remaining,
		TimerActive:   s.timerActive,
		AnsweredCount: len(s.answers),
		AutoSubmitted: s.autoSubmitted,
	}
}

func (s *Session) notifyLocked() {
	snap := s.snapshotLocked()
	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default:
			// Drop rather than block: consumers only need the latest view.
		}
	}
}
