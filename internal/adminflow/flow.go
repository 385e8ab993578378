package adminflow

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/campusworks/examport/internal/api"
	"github.com/campusworks/examport/internal/auth"
	"github.com/campusworks/examport/internal/model"
	"github.com/campusworks/examport/internal/repository"
	"github.com/campusworks/examport/internal/validator"
)

// Flow drives the admin exam lifecycle: validate the form, call the
// repository, surface the tri-state result. Every operation follows the same
// shape; none carries an independent state machine.
type Flow struct {
	repo  *repository.AdminRepository
	store *auth.Store
	log   zerolog.Logger
}

// NewFlow creates an admin flow over the given repository and session store.
func NewFlow(repo *repository.AdminRepository, store *auth.Store, log zerolog.Logger) *Flow {
	return &Flow{
		repo:  repo,
		store: store,
		log:   log.With().Str("component", "admin_flow").Logger(),
	}
}

// Login validates credentials client-side, then authenticates against the
// platform and records the issued bearer token in the session store.
func (f *Flow) Login(ctx context.Context, email, password string) (map[string]string, api.Result[model.AdminSession]) {
	req := model.AdminLoginRequest{Email: email, Password: password}
	if fields := validator.Check(req); fields != nil {
		return fields, api.Loading[model.AdminSession]()
	}

	res := f.repo.Login(ctx, email, password)
	if res.IsSuccess() {
		f.store.SetAdminToken(res.Value().AccessToken)
		f.log.Info().Str("email", email).Msg("Admin logged in")
	}
	return nil, res
}

// CreateExam validates the form and uploads the exam with its roster file.
func (f *Flow) CreateExam(ctx context.Context, form CreateExamForm) (map[string]string, api.Result[model.Exam]) {
	if fields := form.Validate(); fields != nil {
		return fields, api.Loading[model.Exam]()
	}

	res := f.repo.CreateExam(ctx, repository.CreateExamInput{
		CourseName:    form.CourseName,
		CourseCode:    form.CourseCode,
		Duration:      form.Duration,
		QuestionCount: form.QuestionCount,
		ExamType:      model.ExamType(form.ExamType),
		RosterPath:    form.RosterPath,
	})
	if res.IsSuccess() {
		f.log.Info().Str("exam_id", res.Value().ExamID).Str("course", form.CourseCode).Msg("Exam created")
	}
	return nil, res
}

// UpdateExam validates the form and uploads replacement content files.
func (f *Flow) UpdateExam(ctx context.Context, form UpdateExamForm) (map[string]string, api.Result[model.Exam]) {
	if fields := form.Validate(); fields != nil {
		return fields, api.Loading[model.Exam]()
	}

	res := f.repo.UpdateExam(ctx, repository.UpdateExamInput{
		ExamID:        form.ExamID,
		MCQPath:       form.MCQPath,
		QuestionsPath: form.QuestionsPath,
		AnswerKeyPath: form.AnswerKeyPath,
	})
	if res.IsSuccess() {
		f.log.Info().Str("exam_id", form.ExamID).Msg("Exam content updated")
	}
	return nil, res
}

// Ungraded lists exams awaiting grading.
func (f *Flow) Ungraded(ctx context.Context) api.Result[[]model.UngradedExam] {
	return f.repo.Ungraded(ctx)
}

// Grade triggers grading for one exam.
func (f *Flow) Grade(ctx context.Context, examID string) (map[string]string, api.Result[struct{}]) {
	req := model.GradeExamRequest{ExamID: examID}
	if fields := validator.Check(req); fields != nil {
		return fields, api.Loading[struct{}]()
	}
	return nil, f.repo.Grade(ctx, examID)
}

// Report fetches the per-exam score report.
func (f *Flow) Report(ctx context.Context, examID string) api.Result[model.ExamReport] {
	return f.repo.Report(ctx, examID)
}

// DownloadReport saves the report artifact to dest.
func (f *Flow) DownloadReport(ctx context.Context, examID, dest string) api.Result[string] {
	return f.repo.DownloadReport(ctx, examID, dest)
}

// DownloadScripts saves the answer-scripts artifact to dest.
func (f *Flow) DownloadScripts(ctx context.Context, examID, dest string) api.Result[string] {
	return f.repo.DownloadScripts(ctx, examID, dest)
}
