package repository

import (
	"context"
	"fmt"

	"github.com/campusworks/examport/internal/api"
	"github.com/campusworks/examport/internal/model"
)

// StudentRepository translates student-facing domain operations into HTTP
// calls against the platform API. Every operation returns a tri-state
// Result and never an error.
type StudentRepository struct {
	client *api.Client
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(client *api.Client) *StudentRepository {
	return &StudentRepository{client: client}
}

// Login authenticates a student by matric number and password.
func (r *StudentRepository) Login(ctx context.Context, matricNo, password string) api.Result[model.Student] {
	req := model.StudentLoginRequest{MatricNo: matricNo, Password: password}
	return api.Post[model.Student](ctx, r.client, "/auth/student/login", req)
}

// Assignments fetches the exams scheduled for a student.
func (r *StudentRepository) Assignments(ctx context.Context, studentID string) api.Result[[]model.ExamAssignment] {
	return api.Get[[]model.ExamAssignment](ctx, r.client, fmt.Sprintf("/students/%s/exams", studentID))
}

// Questions fetches the question set for one (student, exam) pair.
// The presence of options on each entry discriminates MCQ from open-ended.
func (r *StudentRepository) Questions(ctx context.Context, studentID, examID string) api.Result[[]model.Question] {
	return api.Get[[]model.Question](ctx, r.client, fmt.Sprintf("/students/%s/exams/%s/questions", studentID, examID))
}

// Submit sends the captured responses for an exam attempt.
func (r *StudentRepository) Submit(ctx context.Context, req model.SubmitExamRequest) api.Result[struct{}] {
	return api.Post[struct{}](ctx, r.client, "/exams/submit", req)
}
