package stub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusworks/examport/internal/model"
)

// seedCost keeps fixture hashing fast in tests.
const seedCost = 4

func seededStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	require.NoError(t, s.Seed(seedCost))
	return s
}

func (s *Store) studentID(t *testing.T, matric string) string {
	t.Helper()
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.students[matric]
	require.True(t, ok)
	return rec.ID
}

func TestAuthenticateStudent(t *testing.T) {
	s := seededStore(t)

	student, err := s.AuthenticateStudent(SeedStudentMatrics[0], SeedStudentPass)
	require.NoError(t, err)
	assert.Equal(t, SeedStudentMatrics[0], student.MatricNo)
	assert.NotEmpty(t, student.FullName)

	_, err = s.AuthenticateStudent(SeedStudentMatrics[0], "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.AuthenticateStudent("EPT/2021/999", SeedStudentPass)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateAdmin(t *testing.T) {
	s := seededStore(t)

	assert.NoError(t, s.AuthenticateAdmin(SeedAdminEmail, SeedAdminPassword))
	assert.ErrorIs(t, s.AuthenticateAdmin(SeedAdminEmail, "nope"), ErrInvalidCredentials)
	assert.ErrorIs(t, s.AuthenticateAdmin("nobody@examport.dev", SeedAdminPassword), ErrInvalidCredentials)
}

func TestAssignmentsAndQuestions(t *testing.T) {
	s := seededStore(t)
	studentID := s.studentID(t, SeedStudentMatrics[1])

	assignments := s.AssignmentsFor(studentID)
	require.Len(t, assignments, 2)

	var mcq model.ExamAssignment
	for _, a := range assignments {
		if a.ExamType == model.ExamTypeMCQ {
			mcq = a
		}
	}
	require.NotEmpty(t, mcq.ExamID)
	assert.Equal(t, 30, mcq.Duration)

	questions, err := s.QuestionsFor(studentID, mcq.ExamID)
	require.NoError(t, err)
	require.Len(t, questions, 5)
	for _, q := range questions {
		assert.Len(t, q.Options, 4)
		assert.Equal(t, model.QuestionTypeMultipleChoice, q.Type())
	}

	_, err = s.QuestionsFor(studentID, "no-such-exam")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.QuestionsFor("not-a-student", mcq.ExamID)
	assert.ErrorIs(t, err, ErrNotAssigned)
}

func TestRecordSubmissionReplacesPrevious(t *testing.T) {
	s := seededStore(t)
	studentID := s.studentID(t, SeedStudentMatrics[0])
	exam := s.CreateExam("Data Structures", "CSC201", 40, 2, model.ExamTypeMCQ, "roster.csv")

	questions, err := s.QuestionsFor(studentID, exam.ExamID)
	require.NoError(t, err)

	first := []model.QuestionResponse{{QuestionID: questions[0].ID, Answer: "Option A"}}
	require.NoError(t, s.RecordSubmission(exam.ExamID, studentID, first))

	second := []model.QuestionResponse{{QuestionID: questions[1].ID, Answer: "Option B"}}
	require.NoError(t, s.RecordSubmission(exam.ExamID, studentID, second))

	s.mu.RLock()
	answers := s.exams[exam.ExamID].responses[studentID]
	s.mu.RUnlock()
	require.Len(t, answers, 1)
	assert.Equal(t, "Option B", answers[questions[1].ID])

	assert.ErrorIs(t, s.RecordSubmission("no-such-exam", studentID, first), ErrNotFound)
}

func TestGradingMath(t *testing.T) {
	s := seededStore(t)
	studentID := s.studentID(t, SeedStudentMatrics[0])
	exam := s.CreateExam("Algorithms", "CSC202", 60, 3, model.ExamTypeMCQ, "roster.csv")

	// Answer keys cycle Option A, B, C over the placeholder questions.
	questions, err := s.QuestionsFor(studentID, exam.ExamID)
	require.NoError(t, err)
	responses := []model.QuestionResponse{
		{QuestionID: questions[0].ID, Answer: "Option A"}, // correct
		{QuestionID: questions[1].ID, Answer: "Option D"}, // wrong
		// third question unanswered
	}
	require.NoError(t, s.RecordSubmission(exam.ExamID, studentID, responses))

	require.NoError(t, s.GradeExam(exam.ExamID))

	report, err := s.ReportFor(exam.ExamID)
	require.NoError(t, err)
	require.Len(t, report.Students, 1)
	assert.Equal(t, SeedStudentMatrics[0], report.Students[0].MatricNumber)
	assert.InDelta(t, 33.3, report.Students[0].Score, 0.01)
}

func TestOpenEndedGradingAcceptsNonEmpty(t *testing.T) {
	s := seededStore(t)

	// The seed records one full open-ended submission for CSC302.
	ungraded := s.UngradedExams()
	require.Len(t, ungraded, 1)
	assert.Equal(t, "CSC302", ungraded[0].CourseCode)

	require.NoError(t, s.GradeExam(ungraded[0].ExamID))
	assert.Empty(t, s.UngradedExams())

	report, err := s.ReportFor(ungraded[0].ExamID)
	require.NoError(t, err)
	require.Len(t, report.Students, 1)
	assert.Equal(t, 100.0, report.Students[0].Score)
}

func TestReportRequiresGrading(t *testing.T) {
	s := seededStore(t)
	studentID := s.studentID(t, SeedStudentMatrics[0])
	exam := s.CreateExam("Networks", "CSC305", 50, 2, model.ExamTypeMCQ, "roster.csv")
	require.NoError(t, s.RecordSubmission(exam.ExamID, studentID, nil))

	_, err := s.ReportFor(exam.ExamID)
	assert.ErrorIs(t, err, ErrNotGraded)

	_, err = s.ReportFor("no-such-exam")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateExamContentRegeneratesQuestions(t *testing.T) {
	s := seededStore(t)
	studentID := s.studentID(t, SeedStudentMatrics[0])
	exam := s.CreateExam("Databases", "CSC304", 45, 4, model.ExamTypeMCQ, "roster.csv")

	before, err := s.QuestionsFor(studentID, exam.ExamID)
	require.NoError(t, err)

	_, err = s.UpdateExamContent(exam.ExamID)
	require.NoError(t, err)

	after, err := s.QuestionsFor(studentID, exam.ExamID)
	require.NoError(t, err)
	require.Len(t, after, 4)
	assert.NotEqual(t, before[0].ID, after[0].ID)

	_, err = s.UpdateExamContent("no-such-exam")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestScriptsForDumpsOpenEndedAnswers(t *testing.T) {
	s := seededStore(t)
	ungraded := s.UngradedExams()
	require.Len(t, ungraded, 1)

	out, err := s.ScriptsFor(ungraded[0].ExamID)
	require.NoError(t, err)
	assert.Contains(t, string(out), SeedStudentMatrics[0])
	assert.Contains(t, string(out), "A seeded open-ended answer.")

	_, err = s.ScriptsFor("no-such-exam")
	assert.ErrorIs(t, err, ErrNotFound)
}
