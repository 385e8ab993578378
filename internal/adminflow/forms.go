package adminflow

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/campusworks/examport/internal/model"
	"github.com/campusworks/examport/internal/validator"
)

// rosterExtensions are the spreadsheet formats accepted for the student
// roster upload.
var rosterExtensions = map[string]bool{
	".csv":  true,
	".xls":  true,
	".xlsx": true,
}

// CreateExamForm carries the fields of the create-exam screen. Validation
// runs entirely client-side; an invalid form never reaches the network.
type CreateExamForm struct {
	CourseName    string `json:"courseName" validate:"required"`
	CourseCode    string `json:"courseCode" validate:"required"`
	Duration      int    `json:"duration" validate:"required,gt=0"`
	QuestionCount int    `json:"questionCount" validate:"required,gt=0"`
	ExamType      string `json:"examType" validate:"required,oneof=MCQ OE"`
	RosterPath    string `json:"tutorialList" validate:"required"`
}

// Validate returns field-level errors, or nil when the form may be submitted.
func (f CreateExamForm) Validate() map[string]string {
	fields := validator.Check(f)
	if msg := checkRosterFile(f.RosterPath); msg != "" {
		if fields == nil {
			fields = make(map[string]string)
		}
		fields["tutorialList"] = msg
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// UpdateExamForm carries replacement content files for an existing exam.
// An MCQ exam takes a single questions-with-key file; an open-ended exam
// takes a questions file plus an answer-key file.
type UpdateExamForm struct {
	ExamID        string `json:"examId" validate:"required"`
	ExamType      string `json:"examType" validate:"required,oneof=MCQ OE"`
	MCQPath       string `json:"mcqFile"`
	QuestionsPath string `json:"questionsFile"`
	AnswerKeyPath string `json:"answerKeyFile"`
}

// Validate returns field-level errors, or nil when the form may be submitted.
func (f UpdateExamForm) Validate() map[string]string {
	fields := validator.Check(f)
	if fields == nil {
		fields = make(map[string]string)
	}

	switch model.ExamType(f.ExamType) {
	case model.ExamTypeMCQ:
		if f.MCQPath == "" {
			fields["mcqFile"] = "mcqFile is a required field"
		} else if msg := checkReadable(f.MCQPath); msg != "" {
			fields["mcqFile"] = msg
		}
	case model.ExamTypeOE:
		if f.QuestionsPath == "" {
			fields["questionsFile"] = "questionsFile is a required field"
		} else if msg := checkReadable(f.QuestionsPath); msg != "" {
			fields["questionsFile"] = msg
		}
		if f.AnswerKeyPath == "" {
			fields["answerKeyFile"] = "answerKeyFile is a required field"
		} else if msg := checkReadable(f.AnswerKeyPath); msg != "" {
			fields["answerKeyFile"] = msg
		}
	}

	if len(fields) == 0 {
		return nil
	}
	return fields
}

func checkRosterFile(path string) string {
	if path == "" {
		return ""
	}
	if !rosterExtensions[strings.ToLower(filepath.Ext(path))] {
		return "roster must be a spreadsheet file (.csv, .xls or .xlsx)"
	}
	return checkReadable(path)
}

func checkReadable(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return "file does not exist or is not readable"
	}
	if info.IsDir() {
		return "path is a directory, not a file"
	}
	return ""
}
