package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionTypeDiscrimination(t *testing.T) {
	mcq := Question{ID: "q1", Prompt: "Pick one", Options: []string{"A", "B"}}
	assert.Equal(t, QuestionTypeMultipleChoice, mcq.Type())

	oe := Question{ID: "q2", Prompt: "Explain"}
	assert.Equal(t, QuestionTypeOpenEnded, oe.Type())

	// The wire format omits "options" entirely for open-ended questions.
	raw, err := json.Marshal(oe)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "options")

	var decoded Question
	require.NoError(t, json.Unmarshal([]byte(`{"id":"q3","question":"Explain"}`), &decoded))
	assert.Equal(t, QuestionTypeOpenEnded, decoded.Type())
}
