package quiz

import (
	"errors"
	"sort"
	"strconv"

	"github.com/prepiq/quiz-backend/internal/model"
)

// ErrOutOfRange is returned when an operation targets a question index
// outside [0, question count).
var ErrOutOfRange = errors.New("question index out of range")

// ErrNoQuestions is returned when a session is started with an empty
// question set.
var ErrNoQuestions = errors.New("question set is empty")

// Session is the state store of one quiz attempt: per-question
// answer/status/bookmark state plus the current question pointer.
// It is purely in-memory and performs no I/O; the Engine owns
// serialization and persistence.
type Session struct {
	id        string
	questions []model.Question
	states    []model.QuestionState
	current   int
}

// NewSession builds a fresh session over the given question set.
// Question indices are normalized to slice positions.
func NewSession(id string, questions []model.Question) *Session {
	qs := make([]model.Question, len(questions))
	copy(qs, questions)
	for i := range qs {
		qs[i].Index = i
	}

	states := make([]model.QuestionState, len(qs))
	for i := range states {
		states[i].Status = model.StatusUnattempted
	}

	return &Session{
		id:        id,
		questions: qs,
		states:    states,
	}
}

// Restore applies a persisted snapshot onto the session: answers become
// recorded selections with StatusAttempted, bookmarks are re-flagged.
// Entries with unknown or out-of-range indices are dropped rather than
// failing the restore — a malformed snapshot degrades to a partial one.
func (s *Session) Restore(snap *model.Snapshot) {
	if snap == nil {
		return
	}
	for key, option := range snap.Answers {
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || idx >= len(s.states) {
			continue
		}
		s.states[idx].SelectedOption = option
		s.states[idx].Answered = true
		s.states[idx].Status = model.StatusAttempted
	}
	for _, idx := range snap.Bookmarks {
		if idx < 0 || idx >= len(s.states) {
			continue
		}
		s.states[idx].Bookmarked = true
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Len returns the question count.
func (s *Session) Len() int { return len(s.questions) }

// Questions returns the immutable question set.
func (s *Session) Questions() []model.Question { return s.questions }

// SelectAnswer records an answer for the question at idx. The status moves
// to Attempted unless the question is already MarkedForReview — review
// marking survives answer changes.
func (s *Session) SelectAnswer(idx int, option string) error {
	if idx < 0 || idx >= len(s.states) {
		return ErrOutOfRange
	}
	st := &s.states[idx]
	st.SelectedOption = option
	st.Answered = true
	if st.Status != model.StatusMarkedForReview {
		st.Status = model.StatusAttempted
	}
	return nil
}

// MarkForReview flags the question at idx for revisiting. Idempotent;
// does not require an answer.
func (s *Session) MarkForReview(idx int) error {
	if idx < 0 || idx >= len(s.states) {
		return ErrOutOfRange
	}
	s.states[idx].Status = model.StatusMarkedForReview
	return nil
}

// ToggleBookmark flips the bookmark flag at idx and returns the new value.
func (s *Session) ToggleBookmark(idx int) (bool, error) {
	if idx < 0 || idx >= len(s.states) {
		return false, ErrOutOfRange
	}
	s.states[idx].Bookmarked = !s.states[idx].Bookmarked
	return s.states[idx].Bookmarked, nil
}

// GoTo moves the current question pointer to idx.
func (s *Session) GoTo(idx int) error {
	if idx < 0 || idx >= len(s.questions) {
		return ErrOutOfRange
	}
	s.current = idx
	return nil
}

// Next advances the pointer, clamped at the last question.
func (s *Session) Next() {
	if s.current < len(s.questions)-1 {
		s.current++
	}
}

// Previous moves the pointer back, clamped at the first question.
func (s *Session) Previous() {
	if s.current > 0 {
		s.current--
	}
}

// Current returns the current question pointer.
func (s *Session) Current() int { return s.current }

// States returns a copy of the per-question states.
func (s *Session) States() []model.QuestionState {
	out := make([]model.QuestionState, len(s.states))
	copy(out, s.states)
	return out
}

// Snapshot captures answers and bookmarks in the persisted layout.
// Timer state is deliberately excluded — the timer is owned separately.
func (s *Session) Snapshot() model.Snapshot {
	snap := model.Snapshot{
		Answers:   make(map[string]string),
		Bookmarks: make([]int, 0),
	}
	for i, st := range s.states {
		if st.Answered {
			snap.Answers[strconv.Itoa(i)] = st.SelectedOption
		}
		if st.Bookmarked {
			snap.Bookmarks = append(snap.Bookmarks, i)
		}
	}
	sort.Ints(snap.Bookmarks)
	return snap
}

// BookmarkedPositions returns the 1-based positions of bookmarked
// questions in ascending order.
func (s *Session) BookmarkedPositions() []int {
	positions := make([]int, 0)
	for i, st := range s.states {
		if st.Bookmarked {
			positions = append(positions, i+1)
		}
	}
	return positions
}

// AttemptedCount counts questions with a recorded answer, independent of
// review marking.
func (s *Session) AttemptedCount() int {
	n := 0
	for _, st := range s.states {
		if st.Answered {
			n++
		}
	}
	return n
}

// MarkedCount counts questions flagged for review.
func (s *Session) MarkedCount() int {
	n := 0
	for _, st := range s.states {
		if st.Status == model.StatusMarkedForReview {
			n++
		}
	}
	return n
}
