// Package scoring grades a finished quiz session against its answer key.
// It is pure: no I/O, no hidden state, identical output for identical
// input on every call.
package scoring

import (
	"math"
	"strconv"

	"github.com/prepiq/quiz-backend/internal/model"
)

// Outcome is the scored portion of a ResultRecord. Answer maps are keyed
// by 1-based question position as strings; unanswered questions have no
// entry in Answers.
type Outcome struct {
	TotalQuestions  int
	AttemptedCount  int
	CorrectCount    int
	ScorePercentage float64
	Answers         map[string]string
	CorrectAnswers  map[string]string
}

// Score compares recorded answers against the answer key. Correctness is
// an exact string match on the option text — options are immutable for the
// session's lifetime, so no case or whitespace normalization is applied.
// A question with an empty answer key cannot be scored and counts as
// incorrect; it never fails the submission.
func Score(questions []model.Question, states []model.QuestionState) Outcome {
	out := Outcome{
		TotalQuestions: len(questions),
		Answers:        make(map[string]string),
		CorrectAnswers: make(map[string]string),
	}

	for i, q := range questions {
		pos := strconv.Itoa(i + 1)
		out.CorrectAnswers[pos] = q.CorrectOption

		if i >= len(states) || !states[i].Answered {
			continue
		}
		out.AttemptedCount++
		out.Answers[pos] = states[i].SelectedOption

		if q.CorrectOption != "" && states[i].SelectedOption == q.CorrectOption {
			out.CorrectCount++
		}
	}

	if out.TotalQuestions > 0 {
		pct := 100.0 * float64(out.CorrectCount) / float64(out.TotalQuestions)
		out.ScorePercentage = math.Round(pct*10) / 10
	}

	return out
}
