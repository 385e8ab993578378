package model

// ExamType discriminates multiple-choice exams from open-ended ones.
type ExamType string

const (
	ExamTypeMCQ ExamType = "MCQ"
	ExamTypeOE  ExamType = "OE"
)

// ExamAssignment is one exam a student is scheduled to attempt.
// Immutable once fetched.
type ExamAssignment struct {
	ExamID     string   `json:"examId"`
	CourseName string   `json:"courseName"`
	CourseCode string   `json:"courseCode"`
	Duration   int      `json:"duration"` // minutes
	ExamType   ExamType `json:"examType"`
}

// QuestionResponse is one (question, answer) pair of a submission payload.
// Questions the student never answered are simply absent from the list.
type QuestionResponse struct {
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer"`
}

// SubmitExamRequest is the payload for submitting an exam attempt.
type SubmitExamRequest struct {
	ExamID    string             `json:"examId"`
	StudentID string             `json:"studentId"`
	Responses []QuestionResponse `json:"responses"`
}

// Exam is the platform's view of a created exam, echoed back on creation.
type Exam struct {
	ExamID        string   `json:"examId"`
	CourseName    string   `json:"courseName"`
	CourseCode    string   `json:"courseCode"`
	Duration      int      `json:"duration"`
	QuestionCount int      `json:"questionCount"`
	ExamType      ExamType `json:"examType"`
}

// UngradedExam is one entry of the admin's ungraded-exams listing.
type UngradedExam struct {
	ExamID     string `json:"examId"`
	CourseName string `json:"courseName"`
	CourseCode string `json:"courseCode"`
}

// GradeExamRequest triggers grading for one exam.
type GradeExamRequest struct {
	ExamID string `json:"examId" validate:"required"`
}

// AdminLoginRequest is the payload for an admin login.
type AdminLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// AdminSession carries the bearer token issued at admin login.
type AdminSession struct {
	AccessToken string `json:"accessToken"`
}
