package model

// QuestionType discriminates the two question variants.
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "MULTIPLE_CHOICE"
	QuestionTypeOpenEnded      QuestionType = "OPEN_ENDED"
)

// Question is a single exam question. The wire format discriminates the
// variant by the presence of "options": a multiple-choice question carries
// an ordered option list, an open-ended one carries none.
type Question struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"question"`
	Options []string `json:"options,omitempty"`
}

// Type returns the question variant. A nil option list means open-ended;
// any non-nil list (even an empty one) means multiple-choice.
func (q Question) Type() QuestionType {
	if q.Options == nil {
		return QuestionTypeOpenEnded
	}
	return QuestionTypeMultipleChoice
}
