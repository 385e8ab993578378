// Package stub implements an in-memory stand-in for the remote Examport
// backend. It exists so the client can be developed and end-to-end tested
// without the real platform; it mirrors the HTTP contract, not the
// platform's internals.
package stub

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/campusworks/examport/internal/model"
)

// Store errors surfaced as logical failures by the handlers.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("exam not found")
	ErrNotAssigned        = errors.New("exam is not assigned to this student")
	ErrNotGraded          = errors.New("exam has not been graded yet")
)

type studentRecord struct {
	model.Student
	passwordHash string
}

type adminRecord struct {
	email        string
	passwordHash string
}

type questionRecord struct {
	id        string
	prompt    string
	options   []string // nil for open-ended
	answerKey string
}

type examRecord struct {
	exam       model.Exam
	rosterName string
	questions  []questionRecord
	assigned   map[string]bool              // studentID set
	responses  map[string]map[string]string // studentID → questionID → answer
	scores     map[string]float64           // studentID → score, set by grading
	graded     bool
}

// Store holds all in-memory backend state behind one mutex. The stub serves
// one developer or one test run; contention is not a concern.
type Store struct {
	mu       sync.RWMutex
	students map[string]*studentRecord // by matric number
	admins   map[string]*adminRecord   // by email
	exams    map[string]*examRecord    // by exam ID
}

// NewStore creates an empty store. Call Seed to load the fixture data set.
func NewStore() *Store {
	return &Store{
		students: make(map[string]*studentRecord),
		admins:   make(map[string]*adminRecord),
		exams:    make(map[string]*examRecord),
	}
}

// AuthenticateStudent checks matric number and password.
func (s *Store) AuthenticateStudent(matricNo, password string) (model.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.students[matricNo]
	if !ok {
		return model.Student{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(rec.passwordHash), []byte(password)) != nil {
		return model.Student{}, ErrInvalidCredentials
	}
	return rec.Student, nil
}

// AuthenticateAdmin checks email and password.
func (s *Store) AuthenticateAdmin(email, password string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.admins[email]
	if !ok {
		return ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(rec.passwordHash), []byte(password)) != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// AssignmentsFor lists the exams assigned to a student.
func (s *Store) AssignmentsFor(studentID string) []model.ExamAssignment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	assignments := []model.ExamAssignment{}
	for _, rec := range s.exams {
		if rec.assigned[studentID] {
			assignments = append(assignments, model.ExamAssignment{
				ExamID:     rec.exam.ExamID,
				CourseName: rec.exam.CourseName,
				CourseCode: rec.exam.CourseCode,
				Duration:   rec.exam.Duration,
				ExamType:   rec.exam.ExamType,
			})
		}
	}
	return assignments
}

// QuestionsFor returns the question set for one (student, exam) pair.
// Answer keys never leave the store.
func (s *Store) QuestionsFor(studentID, examID string) ([]model.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.exams[examID]
	if !ok {
		return nil, ErrNotFound
	}
	if !rec.assigned[studentID] {
		return nil, ErrNotAssigned
	}

	questions := make([]model.Question, 0, len(rec.questions))
	for _, q := range rec.questions {
		questions = append(questions, model.Question{
			ID:      q.id,
			Prompt:  q.prompt,
			Options: q.options,
		})
	}
	return questions, nil
}

// RecordSubmission stores a student's responses for an exam. A resubmission
// replaces the previous one.
func (s *Store) RecordSubmission(examID, studentID string, responses []model.QuestionResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.exams[examID]
	if !ok {
		return ErrNotFound
	}
	if !rec.assigned[studentID] {
		return ErrNotAssigned
	}

	answers := make(map[string]string, len(responses))
	for _, r := range responses {
		answers[r.QuestionID] = r.Answer
	}
	rec.responses[studentID] = answers
	return nil
}

// CreateExam registers a new exam with generated placeholder questions and
// assigns it to every known student. The real platform derives questions
// from uploaded content files; the stub only needs a takeable exam.
func (s *Store) CreateExam(courseName, courseCode string, duration, questionCount int, examType model.ExamType, rosterName string) model.Exam {
	s.mu.Lock()
	defer s.mu.Unlock()

	exam := model.Exam{
		ExamID:        uuid.New().String(),
		CourseName:    courseName,
		CourseCode:    courseCode,
		Duration:      duration,
		QuestionCount: questionCount,
		ExamType:      examType,
	}

	rec := &examRecord{
		exam:       exam,
		rosterName: rosterName,
		assigned:   make(map[string]bool),
		responses:  make(map[string]map[string]string),
		scores:     make(map[string]float64),
	}
	for i := 1; i <= questionCount; i++ {
		rec.questions = append(rec.questions, placeholderQuestion(courseCode, i, examType))
	}
	for _, st := range s.students {
		rec.assigned[st.ID] = true
	}

	s.exams[exam.ExamID] = rec
	return exam
}

// UpdateExamContent regenerates an exam's questions from freshly uploaded
// content. The stub keeps the generated set and bumps nothing else.
func (s *Store) UpdateExamContent(examID string) (model.Exam, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.exams[examID]
	if !ok {
		return model.Exam{}, ErrNotFound
	}

	rec.questions = rec.questions[:0]
	for i := 1; i <= rec.exam.QuestionCount; i++ {
		rec.questions = append(rec.questions, placeholderQuestion(rec.exam.CourseCode, i, rec.exam.ExamType))
	}
	return rec.exam, nil
}

// UngradedExams lists exams that have submissions but no grades yet.
func (s *Store) UngradedExams() []model.UngradedExam {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ungraded := []model.UngradedExam{}
	for _, rec := range s.exams {
		if rec.graded || len(rec.responses) == 0 {
			continue
		}
		ungraded = append(ungraded, model.UngradedExam{
			ExamID:     rec.exam.ExamID,
			CourseName: rec.exam.CourseName,
			CourseCode: rec.exam.CourseCode,
		})
	}
	return ungraded
}

// GradeExam scores every submission for an exam. MCQ answers are matched
// against the answer key; open-ended answers earn the point when non-empty
// (the stub does not judge prose). Scores are percentages.
func (s *Store) GradeExam(examID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.exams[examID]
	if !ok {
		return ErrNotFound
	}

	total := len(rec.questions)
	for studentID, answers := range rec.responses {
		correct := 0
		for _, q := range rec.questions {
			answer, answered := answers[q.id]
			if !answered || answer == "" {
				continue
			}
			if q.options == nil || answer == q.answerKey {
				correct++
			}
		}
		score := 0.0
		if total > 0 {
			score = math.Round(float64(correct)/float64(total)*1000) / 10
		}
		rec.scores[studentID] = score
	}

	rec.graded = true
	return nil
}

// ReportFor builds the per-exam score report. Grading must have run first.
func (s *Store) ReportFor(examID string) (model.ExamReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.exams[examID]
	if !ok {
		return model.ExamReport{}, ErrNotFound
	}
	if !rec.graded {
		return model.ExamReport{}, ErrNotGraded
	}

	report := model.ExamReport{
		ExamTitle: fmt.Sprintf("%s - %s", rec.exam.CourseCode, rec.exam.CourseName),
		ExamID:    rec.exam.ExamID,
		Students:  []model.ReportRow{},
	}
	for _, st := range s.students {
		score, submitted := rec.scores[st.ID]
		if !submitted {
			continue
		}
		report.Students = append(report.Students, model.ReportRow{
			StudentName:  st.FullName,
			MatricNumber: st.MatricNo,
			Score:        score,
		})
	}
	return report, nil
}

// ScriptsFor dumps the open-ended responses of an exam as plain text,
// one block per student.
func (s *Store) ScriptsFor(examID string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.exams[examID]
	if !ok {
		return nil, ErrNotFound
	}

	var out []byte
	for studentID, answers := range rec.responses {
		matric := studentID
		for _, st := range s.students {
			if st.ID == studentID {
				matric = st.MatricNo
				break
			}
		}
		out = append(out, fmt.Sprintf("=== %s ===\n", matric)...)
		for _, q := range rec.questions {
			if q.options != nil {
				continue
			}
			out = append(out, fmt.Sprintf("Q: %s\nA: %s\n\n", q.prompt, answers[q.id])...)
		}
	}
	return out, nil
}

func placeholderQuestion(courseCode string, n int, examType model.ExamType) questionRecord {
	q := questionRecord{
		id:     uuid.New().String(),
		prompt: fmt.Sprintf("%s question %d", courseCode, n),
	}
	if examType == model.ExamTypeMCQ {
		q.options = []string{"Option A", "Option B", "Option C", "Option D"}
		q.answerKey = q.options[(n-1)%len(q.options)]
	}
	return q
}

// now is a seam for tests that care about timestamps.
var now = time.Now
