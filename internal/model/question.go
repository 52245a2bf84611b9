package model

// Question is a single multiple-choice question. The slice order supplied
// at session start is the question order for the whole session; Index is
// the stable 0-based position within it.
type Question struct {
	Index         int      `json:"index"`
	Prompt        string   `json:"prompt"`
	Options       []string `json:"options"`
	CorrectOption string   `json:"correct_option"`
}

// QuestionPayload is the wire shape of a question as supplied by the
// question-set provider. Field names mirror the generator output
// (question/options/answer).
type QuestionPayload struct {
	Prompt        string   `json:"question" binding:"required,min=1,max=2000"`
	Options       []string `json:"options" binding:"required,min=2,max=10,dive,max=500"`
	CorrectOption string   `json:"answer" binding:"required,max=500"`
}

// StartSessionRequest is the payload that boots a quiz session: the ordered
// question set, the time limit in minutes, and an optional session ID. A
// missing ID is generated server-side; a known ID resumes the autosaved
// snapshot for that session.
type StartSessionRequest struct {
	SessionID        string            `json:"session_id" binding:"omitempty,min=1,max=64"`
	TimeLimitMinutes int               `json:"time_limit_minutes" binding:"required,min=1,max=600"`
	Questions        []QuestionPayload `json:"questions" binding:"required,min=1,max=500,dive"`
}

// SelectAnswerRequest records an answer for one question.
type SelectAnswerRequest struct {
	QuestionIndex *int   `json:"question_index" binding:"required,min=0"`
	Option        string `json:"option" binding:"required,max=500"`
}

// QuestionIndexRequest targets a single question by its 0-based index
// (mark-for-review, bookmark toggle, navigation).
type QuestionIndexRequest struct {
	QuestionIndex *int `json:"question_index" binding:"required,min=0"`
}
