package scoring

import (
	"reflect"
	"testing"

	"github.com/prepiq/quiz-backend/internal/model"
)

func question(correct string) model.Question {
	return model.Question{
		Prompt:        "prompt",
		Options:       []string{"A", "B", "C", "D"},
		CorrectOption: correct,
	}
}

func answered(option string) model.QuestionState {
	return model.QuestionState{
		Status:         model.StatusAttempted,
		SelectedOption: option,
		Answered:       true,
	}
}

func TestScoreFiveQuestionsThreeCorrect(t *testing.T) {
	questions := []model.Question{
		question("A"), question("B"), question("C"), question("D"), question("A"),
	}
	// Three correct, one wrong, position 4 skipped.
	states := []model.QuestionState{
		answered("A"),
		answered("B"),
		answered("D"),
		{Status: model.StatusUnattempted},
		answered("A"),
	}

	out := Score(questions, states)

	if out.TotalQuestions != 5 {
		t.Errorf("TotalQuestions = %d, want 5", out.TotalQuestions)
	}
	if out.AttemptedCount != 4 {
		t.Errorf("AttemptedCount = %d, want 4", out.AttemptedCount)
	}
	if out.CorrectCount != 3 {
		t.Errorf("CorrectCount = %d, want 3", out.CorrectCount)
	}
	if out.ScorePercentage != 60.0 {
		t.Errorf("ScorePercentage = %v, want 60.0", out.ScorePercentage)
	}

	wantAnswers := map[string]string{"1": "A", "2": "B", "3": "D", "5": "A"}
	if !reflect.DeepEqual(out.Answers, wantAnswers) {
		t.Errorf("Answers = %v, want %v", out.Answers, wantAnswers)
	}
	if _, ok := out.Answers["4"]; ok {
		t.Error("unanswered question must have no entry in Answers")
	}

	wantKey := map[string]string{"1": "A", "2": "B", "3": "C", "4": "D", "5": "A"}
	if !reflect.DeepEqual(out.CorrectAnswers, wantKey) {
		t.Errorf("CorrectAnswers = %v, want %v", out.CorrectAnswers, wantKey)
	}
}

func TestScorePercentageRounding(t *testing.T) {
	tests := []struct {
		name    string
		total   int
		correct int
		want    float64
	}{
		{"one of three", 3, 1, 33.3},
		{"two of three", 3, 2, 66.7},
		{"one of seven", 7, 1, 14.3},
		{"all correct", 4, 4, 100.0},
		{"none correct", 4, 0, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			questions := make([]model.Question, tt.total)
			states := make([]model.QuestionState, tt.total)
			for i := 0; i < tt.total; i++ {
				questions[i] = question("A")
				if i < tt.correct {
					states[i] = answered("A")
				} else {
					states[i] = answered("B")
				}
			}

			out := Score(questions, states)
			if out.ScorePercentage != tt.want {
				t.Errorf("ScorePercentage = %v, want %v", out.ScorePercentage, tt.want)
			}
		})
	}
}

func TestScoreZeroQuestions(t *testing.T) {
	out := Score(nil, nil)
	if out.ScorePercentage != 0.0 {
		t.Errorf("ScorePercentage = %v, want 0.0", out.ScorePercentage)
	}
	if out.TotalQuestions != 0 || out.AttemptedCount != 0 || out.CorrectCount != 0 {
		t.Errorf("unexpected counts: %+v", out)
	}
}

func TestScoreEmptyAnswerKeyCountsIncorrect(t *testing.T) {
	questions := []model.Question{question(""), question("B")}
	// An empty selection must not match an empty answer key.
	states := []model.QuestionState{answered(""), answered("B")}

	out := Score(questions, states)

	if out.CorrectCount != 1 {
		t.Errorf("CorrectCount = %d, want 1", out.CorrectCount)
	}
	if out.ScorePercentage != 50.0 {
		t.Errorf("ScorePercentage = %v, want 50.0", out.ScorePercentage)
	}
}

func TestScoreExactMatchOnly(t *testing.T) {
	questions := []model.Question{question("Option A")}

	tests := []struct {
		name     string
		selected string
		correct  int
	}{
		{"exact", "Option A", 1},
		{"case differs", "option a", 0},
		{"trailing space", "Option A ", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Score(questions, []model.QuestionState{answered(tt.selected)})
			if out.CorrectCount != tt.correct {
				t.Errorf("CorrectCount = %d, want %d", out.CorrectCount, tt.correct)
			}
		})
	}
}

func TestScoreDeterministic(t *testing.T) {
	questions := []model.Question{question("A"), question("B"), question("C")}
	states := []model.QuestionState{answered("A"), answered("C"), {}}

	first := Score(questions, states)
	for i := 0; i < 10; i++ {
		if got := Score(questions, states); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs: %+v vs %+v", i, got, first)
		}
	}
}
