package model

// ReportRow is one student's line of a per-exam score report.
type ReportRow struct {
	StudentName  string  `json:"studentName"`
	MatricNumber string  `json:"matricNumber"`
	Score        float64 `json:"score"`
}

// ExamReport is the per-exam score report returned to administrators.
type ExamReport struct {
	ExamTitle string      `json:"examTitle"`
	ExamID    string      `json:"examId"`
	Students  []ReportRow `json:"students"`
}
