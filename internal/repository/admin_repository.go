package repository

import (
	"context"
	"fmt"
	"strconv"

	"github.com/campusworks/examport/internal/api"
	"github.com/campusworks/examport/internal/model"
)

// RosterFileField is the multipart field name the platform expects for the
// student roster spreadsheet on exam creation.
const RosterFileField = "tutorialList"

// Multipart field names for exam content updates.
const (
	MCQFileField     = "mcqFile"
	OEQuestionsField = "questionsFile"
	OEAnswerKeyField = "answerKeyFile"
)

// AdminRepository translates admin lifecycle operations into HTTP calls
// against the platform API. All calls carry the admin bearer token from the
// session store.
type AdminRepository struct {
	client *api.Client
}

// NewAdminRepository creates a new AdminRepository.
func NewAdminRepository(client *api.Client) *AdminRepository {
	return &AdminRepository{client: client}
}

// Login authenticates an administrator and returns the issued bearer token.
func (r *AdminRepository) Login(ctx context.Context, email, password string) api.Result[model.AdminSession] {
	req := model.AdminLoginRequest{Email: email, Password: password}
	return api.Post[model.AdminSession](ctx, r.client, "/auth/admin/login", req)
}

// CreateExamInput carries the scalar exam fields plus the roster file path.
type CreateExamInput struct {
	CourseName    string
	CourseCode    string
	Duration      int
	QuestionCount int
	ExamType      model.ExamType
	RosterPath    string
}

// CreateExam uploads the exam definition and roster file as multipart form data.
func (r *AdminRepository) CreateExam(ctx context.Context, in CreateExamInput) api.Result[model.Exam] {
	fields := map[string]string{
		"courseName":    in.CourseName,
		"courseCode":    in.CourseCode,
		"duration":      strconv.Itoa(in.Duration),
		"questionCount": strconv.Itoa(in.QuestionCount),
		"examType":      string(in.ExamType),
	}
	return api.PostMultipart[model.Exam](ctx, r.client, "/admin/exams", fields,
		api.FileField{Field: RosterFileField, Path: in.RosterPath})
}

// UpdateExamInput carries content files for an existing exam. For an MCQ exam
// only MCQPath is set; an open-ended exam carries questions plus answer key.
type UpdateExamInput struct {
	ExamID        string
	MCQPath       string
	QuestionsPath string
	AnswerKeyPath string
}

// UpdateExam uploads replacement content files for an exam.
func (r *AdminRepository) UpdateExam(ctx context.Context, in UpdateExamInput) api.Result[model.Exam] {
	var files []api.FileField
	if in.MCQPath != "" {
		files = append(files, api.FileField{Field: MCQFileField, Path: in.MCQPath})
	}
	if in.QuestionsPath != "" {
		files = append(files, api.FileField{Field: OEQuestionsField, Path: in.QuestionsPath})
	}
	if in.AnswerKeyPath != "" {
		files = append(files, api.FileField{Field: OEAnswerKeyField, Path: in.AnswerKeyPath})
	}
	path := fmt.Sprintf("/admin/exams/%s/content", in.ExamID)
	return api.PostMultipart[model.Exam](ctx, r.client, path, nil, files...)
}

// Ungraded lists exams with submissions that have not been graded yet.
func (r *AdminRepository) Ungraded(ctx context.Context) api.Result[[]model.UngradedExam] {
	return api.Get[[]model.UngradedExam](ctx, r.client, "/admin/exams/ungraded")
}

// Grade triggers grading of one exam's open-ended responses.
func (r *AdminRepository) Grade(ctx context.Context, examID string) api.Result[struct{}] {
	return api.Post[struct{}](ctx, r.client, "/admin/exams/grade", model.GradeExamRequest{ExamID: examID})
}

// Report fetches the per-exam score report.
func (r *AdminRepository) Report(ctx context.Context, examID string) api.Result[model.ExamReport] {
	return api.Get[model.ExamReport](ctx, r.client, fmt.Sprintf("/admin/exams/%s/report", examID))
}

// DownloadReport saves the exam report artifact to dest.
func (r *AdminRepository) DownloadReport(ctx context.Context, examID, dest string) api.Result[string] {
	return r.client.Download(ctx, fmt.Sprintf("/admin/exams/%s/report/download", examID), dest)
}

// DownloadScripts saves the open-ended answer scripts artifact to dest.
func (r *AdminRepository) DownloadScripts(ctx context.Context, examID, dest string) api.Result[string] {
	return r.client.Download(ctx, fmt.Sprintf("/admin/exams/%s/scripts/download", examID), dest)
}
