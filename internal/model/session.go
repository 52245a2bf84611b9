package model

// QuestionStatus enumerates the attempt state of one question.
type QuestionStatus string

const (
	StatusUnattempted     QuestionStatus = "UNATTEMPTED"
	StatusAttempted       QuestionStatus = "ATTEMPTED"
	StatusMarkedForReview QuestionStatus = "MARKED_FOR_REVIEW"
)

// QuestionState is the per-question mutable state of a session.
// Answered distinguishes "no answer recorded" from an answer whose option
// text happens to be empty; StatusAttempted implies Answered.
// Bookmarked is orthogonal to Status.
type QuestionState struct {
	Status         QuestionStatus `json:"status"`
	SelectedOption string         `json:"selected_option,omitempty"`
	Answered       bool           `json:"answered"`
	Bookmarked     bool           `json:"bookmarked"`
}

// Snapshot is the persisted layout of an in-progress session. This shape is
// an implementation-visible contract (keyed by 0-based question index as a
// string); any persistence backend must round-trip it exactly.
type Snapshot struct {
	Answers   map[string]string `json:"answers"`
	Bookmarks []int             `json:"bookmarks"`
}

// SessionPhase tracks the submission state machine of a session.
type SessionPhase string

const (
	PhaseActive     SessionPhase = "ACTIVE"
	PhaseSubmitting SessionPhase = "SUBMITTING"
	PhaseSubmitted  SessionPhase = "SUBMITTED"
)

// SessionView is the read model returned to the exam page: everything it
// needs to render the question navigator, the countdown, and the tallies
// after a reload.
type SessionView struct {
	SessionID        string          `json:"session_id"`
	Phase            SessionPhase    `json:"phase"`
	TotalQuestions   int             `json:"total_questions"`
	CurrentIndex     int             `json:"current_index"`
	RemainingSeconds int             `json:"remaining_seconds"`
	WarningFired     bool            `json:"warning_fired"`
	AttemptedCount   int             `json:"attempted_count"`
	MarkedCount      int             `json:"marked_count"`
	UnattemptedCount int             `json:"unattempted_count"`
	QuestionStates   []QuestionState `json:"question_states"`
}
