package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusworks/examport/internal/model"
	"github.com/campusworks/examport/internal/response"
	"github.com/campusworks/examport/internal/stub"
)

// StudentHandler handles student-facing stub endpoints (assignments,
// questions, submission).
type StudentHandler struct {
	store *stub.Store
}

// NewStudentHandler creates a new StudentHandler.
func NewStudentHandler(store *stub.Store) *StudentHandler {
	return &StudentHandler{store: store}
}

// Assignments godoc
// GET /api/v1/students/:student_id/exams
// Lists the exams assigned to a student.
func (h *StudentHandler) Assignments(c *gin.Context) {
	studentID := c.Param("student_id")
	assignments := h.store.AssignmentsFor(studentID)
	response.OK(c, http.StatusOK, "Assignments fetched", assignments)
}

// Questions godoc
// GET /api/v1/students/:student_id/exams/:exam_id/questions
// Returns the question set for one (student, exam) pair.
func (h *StudentHandler) Questions(c *gin.Context) {
	studentID := c.Param("student_id")
	examID := c.Param("exam_id")

	questions, err := h.store.QuestionsFor(studentID, examID)
	if err != nil {
		status := http.StatusNotFound
		if errors.Is(err, stub.ErrNotAssigned) {
			status = http.StatusForbidden
		}
		response.Fail(c, status, capitalize(err.Error()))
		return
	}

	response.OK(c, http.StatusOK, "Questions fetched", questions)
}

// Submit godoc
// POST /api/v1/exams/submit
// Records a student's responses for an exam attempt.
func (h *StudentHandler) Submit(c *gin.Context) {
	var req model.SubmitExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if req.ExamID == "" || req.StudentID == "" {
		response.Fail(c, http.StatusBadRequest, "examId and studentId are required")
		return
	}

	if err := h.store.RecordSubmission(req.ExamID, req.StudentID, req.Responses); err != nil {
		status := http.StatusNotFound
		if errors.Is(err, stub.ErrNotAssigned) {
			status = http.StatusForbidden
		}
		response.Fail(c, status, capitalize(err.Error()))
		return
	}

	response.OK(c, http.StatusOK, "Exam submitted successfully", nil)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-32) + s[1:]
	}
	return s
}
