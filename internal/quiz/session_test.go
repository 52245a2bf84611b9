package quiz

import (
	"reflect"
	"testing"

	"github.com/prepiq/quiz-backend/internal/model"
)

func makeQuestions(n int) []model.Question {
	qs := make([]model.Question, n)
	for i := range qs {
		qs[i] = model.Question{
			Prompt:        "q",
			Options:       []string{"A", "B", "C", "D"},
			CorrectOption: "A",
		}
	}
	return qs
}

func TestSelectAnswerSetsAttempted(t *testing.T) {
	s := NewSession("s1", makeQuestions(3))

	if err := s.SelectAnswer(1, "B"); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}

	st := s.States()[1]
	if st.Status != model.StatusAttempted {
		t.Errorf("Status = %q, want %q", st.Status, model.StatusAttempted)
	}
	if !st.Answered || st.SelectedOption != "B" {
		t.Errorf("state = %+v, want answered B", st)
	}
}

func TestMarkForReviewSurvivesAnswerChange(t *testing.T) {
	s := NewSession("s1", makeQuestions(3))

	if err := s.MarkForReview(0); err != nil {
		t.Fatalf("MarkForReview: %v", err)
	}
	if err := s.SelectAnswer(0, "C"); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}

	st := s.States()[0]
	if st.Status != model.StatusMarkedForReview {
		t.Errorf("Status = %q, want %q after answering a marked question", st.Status, model.StatusMarkedForReview)
	}
	if st.SelectedOption != "C" {
		t.Errorf("SelectedOption = %q, want C", st.SelectedOption)
	}

	// Changing the answer again still must not demote the mark.
	if err := s.SelectAnswer(0, "D"); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}
	if got := s.States()[0].Status; got != model.StatusMarkedForReview {
		t.Errorf("Status = %q after second answer, want %q", got, model.StatusMarkedForReview)
	}
}

func TestStatusNeverReturnsToUnattempted(t *testing.T) {
	s := NewSession("s1", makeQuestions(2))

	_ = s.SelectAnswer(0, "A")
	_ = s.MarkForReview(0)
	_ = s.SelectAnswer(0, "B")

	if got := s.States()[0].Status; got == model.StatusUnattempted {
		t.Error("question returned to unattempted after answer and mark")
	}

	_ = s.MarkForReview(1)
	if got := s.States()[1].Status; got == model.StatusUnattempted {
		t.Error("marked question reported unattempted")
	}
}

func TestMarkForReviewIdempotent(t *testing.T) {
	s := NewSession("s1", makeQuestions(2))

	_ = s.MarkForReview(1)
	_ = s.MarkForReview(1)

	if got := s.MarkedCount(); got != 1 {
		t.Errorf("MarkedCount = %d, want 1", got)
	}
}

func TestToggleBookmark(t *testing.T) {
	s := NewSession("s1", makeQuestions(3))

	on, err := s.ToggleBookmark(2)
	if err != nil {
		t.Fatalf("ToggleBookmark: %v", err)
	}
	if !on {
		t.Error("first toggle should return true")
	}

	off, err := s.ToggleBookmark(2)
	if err != nil {
		t.Fatalf("ToggleBookmark: %v", err)
	}
	if off {
		t.Error("second toggle should return false")
	}

	if got := s.BookmarkedPositions(); len(got) != 0 {
		t.Errorf("BookmarkedPositions = %v, want empty", got)
	}
}

func TestBookmarkedPositionsAreOneBased(t *testing.T) {
	s := NewSession("s1", makeQuestions(5))

	_, _ = s.ToggleBookmark(1)
	_, _ = s.ToggleBookmark(3)

	want := []int{2, 4}
	if got := s.BookmarkedPositions(); !reflect.DeepEqual(got, want) {
		t.Errorf("BookmarkedPositions = %v, want %v", got, want)
	}
}

func TestNavigationClamping(t *testing.T) {
	s := NewSession("s1", makeQuestions(3))

	s.Previous()
	if got := s.Current(); got != 0 {
		t.Errorf("Current = %d after Previous at start, want 0", got)
	}

	for i := 0; i < 10; i++ {
		s.Next()
	}
	if got := s.Current(); got != 2 {
		t.Errorf("Current = %d after repeated Next, want 2", got)
	}
}

func TestGoToOutOfRange(t *testing.T) {
	s := NewSession("s1", makeQuestions(3))

	tests := []struct {
		name string
		idx  int
	}{
		{"negative", -1},
		{"past end", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.GoTo(tt.idx); err != ErrOutOfRange {
				t.Errorf("GoTo(%d) = %v, want ErrOutOfRange", tt.idx, err)
			}
		})
	}

	if err := s.GoTo(2); err != nil {
		t.Errorf("GoTo(2) = %v, want nil", err)
	}
}

func TestOutOfRangeMutations(t *testing.T) {
	s := NewSession("s1", makeQuestions(2))

	if err := s.SelectAnswer(5, "A"); err != ErrOutOfRange {
		t.Errorf("SelectAnswer = %v, want ErrOutOfRange", err)
	}
	if err := s.MarkForReview(-1); err != ErrOutOfRange {
		t.Errorf("MarkForReview = %v, want ErrOutOfRange", err)
	}
	if _, err := s.ToggleBookmark(2); err != ErrOutOfRange {
		t.Errorf("ToggleBookmark = %v, want ErrOutOfRange", err)
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	s := NewSession("s1", makeQuestions(4))
	_ = s.SelectAnswer(0, "A")
	_ = s.SelectAnswer(2, "C")
	_, _ = s.ToggleBookmark(1)
	_, _ = s.ToggleBookmark(3)

	snap := s.Snapshot()

	restored := NewSession("s1", makeQuestions(4))
	restored.Restore(&snap)

	states := restored.States()
	if !states[0].Answered || states[0].SelectedOption != "A" {
		t.Errorf("question 0 not restored: %+v", states[0])
	}
	if !states[2].Answered || states[2].SelectedOption != "C" {
		t.Errorf("question 2 not restored: %+v", states[2])
	}
	if states[0].Status != model.StatusAttempted {
		t.Errorf("restored status = %q, want %q", states[0].Status, model.StatusAttempted)
	}
	if !states[1].Bookmarked || !states[3].Bookmarked {
		t.Error("bookmarks not restored")
	}
	if restored.AttemptedCount() != 2 {
		t.Errorf("AttemptedCount = %d, want 2", restored.AttemptedCount())
	}
}

func TestRestoreDropsInvalidEntries(t *testing.T) {
	s := NewSession("s1", makeQuestions(2))

	s.Restore(&model.Snapshot{
		Answers:   map[string]string{"0": "A", "9": "B", "x": "C", "-1": "D"},
		Bookmarks: []int{1, 7, -2},
	})

	if got := s.AttemptedCount(); got != 1 {
		t.Errorf("AttemptedCount = %d, want 1", got)
	}
	if got := s.BookmarkedPositions(); !reflect.DeepEqual(got, []int{2}) {
		t.Errorf("BookmarkedPositions = %v, want [2]", got)
	}
}

func TestRestoreNilSnapshot(t *testing.T) {
	s := NewSession("s1", makeQuestions(2))
	s.Restore(nil)

	if got := s.AttemptedCount(); got != 0 {
		t.Errorf("AttemptedCount = %d, want 0", got)
	}
}

func TestSnapshotBookmarksSorted(t *testing.T) {
	s := NewSession("s1", makeQuestions(5))
	_, _ = s.ToggleBookmark(4)
	_, _ = s.ToggleBookmark(0)
	_, _ = s.ToggleBookmark(2)

	snap := s.Snapshot()
	want := []int{0, 2, 4}
	if !reflect.DeepEqual(snap.Bookmarks, want) {
		t.Errorf("Bookmarks = %v, want %v", snap.Bookmarks, want)
	}
}
