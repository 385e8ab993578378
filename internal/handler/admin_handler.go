package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campusworks/examport/internal/config"
	"github.com/campusworks/examport/internal/model"
	"github.com/campusworks/examport/internal/response"
	"github.com/campusworks/examport/internal/stub"
)

// rosterField is the multipart field name the platform contract fixes for
// the roster upload.
const rosterField = "tutorialList"

// AdminHandler handles admin-scoped stub endpoints (exam lifecycle,
// grading, reports).
type AdminHandler struct {
	store *stub.Store
	cfg   *config.Config
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(store *stub.Store, cfg *config.Config) *AdminHandler {
	return &AdminHandler{store: store, cfg: cfg}
}

// CreateExam godoc
// POST /api/v1/admin/exams
// Creates an exam from multipart scalar fields plus the roster file.
func (h *AdminHandler) CreateExam(c *gin.Context) {
	courseName := c.PostForm("courseName")
	courseCode := c.PostForm("courseCode")
	duration, _ := strconv.Atoi(c.PostForm("duration"))
	questionCount, _ := strconv.Atoi(c.PostForm("questionCount"))
	examType := model.ExamType(c.PostForm("examType"))

	if courseName == "" || courseCode == "" {
		response.Fail(c, http.StatusBadRequest, "courseName and courseCode are required")
		return
	}
	if duration <= 0 || questionCount <= 0 {
		response.Fail(c, http.StatusBadRequest, "duration and questionCount must be positive integers")
		return
	}
	if examType != model.ExamTypeMCQ && examType != model.ExamTypeOE {
		response.Fail(c, http.StatusBadRequest, "examType must be MCQ or OE")
		return
	}

	file, err := c.FormFile(rosterField)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "Roster file upload is required")
		return
	}
	if file.Size > h.cfg.MaxUploadBytes {
		response.Fail(c, http.StatusBadRequest, "Roster file exceeds the size limit")
		return
	}

	exam := h.store.CreateExam(courseName, courseCode, duration, questionCount, examType, file.Filename)
	response.OK(c, http.StatusCreated, "Exam created", exam)
}

// UpdateExam godoc
// POST /api/v1/admin/exams/:exam_id/content
// Replaces an exam's content from uploaded files.
func (h *AdminHandler) UpdateExam(c *gin.Context) {
	examID := c.Param("exam_id")

	form, err := c.MultipartForm()
	if err != nil || len(form.File) == 0 {
		response.Fail(c, http.StatusBadRequest, "At least one content file is required")
		return
	}

	exam, err := h.store.UpdateExamContent(examID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, "Exam not found")
		return
	}

	response.OK(c, http.StatusOK, "Exam content updated", exam)
}

// Ungraded godoc
// GET /api/v1/admin/exams/ungraded
// Lists exams with submissions awaiting grading.
func (h *AdminHandler) Ungraded(c *gin.Context) {
	response.OK(c, http.StatusOK, "Ungraded exams fetched", h.store.UngradedExams())
}

// Grade godoc
// POST /api/v1/admin/exams/grade
// Triggers grading of one exam.
func (h *AdminHandler) Grade(c *gin.Context) {
	var req model.GradeExamRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ExamID == "" {
		response.Fail(c, http.StatusBadRequest, "examId is required")
		return
	}

	if err := h.store.GradeExam(req.ExamID); err != nil {
		response.Fail(c, http.StatusNotFound, "Exam not found")
		return
	}

	response.OK(c, http.StatusOK, "Exam graded", nil)
}

// Report godoc
// GET /api/v1/admin/exams/:exam_id/report
// Returns the per-exam score report.
func (h *AdminHandler) Report(c *gin.Context) {
	report, err := h.reportFor(c)
	if err != nil {
		return
	}
	response.OK(c, http.StatusOK, "Report fetched", report)
}

// DownloadReport godoc
// GET /api/v1/admin/exams/:exam_id/report/download
// Streams the report as a CSV artifact.
func (h *AdminHandler) DownloadReport(c *gin.Context) {
	report, err := h.reportFor(c)
	if err != nil {
		return
	}

	body := "studentName,matricNumber,score\n"
	for _, row := range report.Students {
		body += fmt.Sprintf("%s,%s,%.1f\n", row.StudentName, row.MatricNumber, row.Score)
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="report-%s.csv"`, report.ExamID))
	c.Data(http.StatusOK, "text/csv", []byte(body))
}

// DownloadScripts godoc
// GET /api/v1/admin/exams/:exam_id/scripts/download
// Streams the open-ended answer scripts as a text artifact.
func (h *AdminHandler) DownloadScripts(c *gin.Context) {
	examID := c.Param("exam_id")

	scripts, err := h.store.ScriptsFor(examID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, "Exam not found")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="scripts-%s.txt"`, examID))
	c.Data(http.StatusOK, "text/plain", scripts)
}

func (h *AdminHandler) reportFor(c *gin.Context) (model.ExamReport, error) {
	examID := c.Param("exam_id")

	report, err := h.store.ReportFor(examID)
	if err != nil {
		if errors.Is(err, stub.ErrNotGraded) {
			response.Fail(c, http.StatusConflict, "Exam has not been graded yet")
		} else {
			response.Fail(c, http.StatusNotFound, "Exam not found")
		}
		return model.ExamReport{}, err
	}
	return report, nil
}
