package model

// ResultRecord is the scored outcome of one session, produced exactly once
// at submission and immutable afterwards. Answer maps are keyed by 1-based
// question position (as strings, matching the results page contract);
// BookmarkedPositions is 1-based and ascending. Unanswered questions have
// no entry in Answers.
type ResultRecord struct {
	SessionID           string            `json:"session_id"`
	TotalQuestions      int               `json:"total_questions"`
	AttemptedCount      int               `json:"attempted_count"`
	TimeTakenSeconds    int               `json:"time_taken_seconds"`
	ScorePercentage     float64           `json:"score_percentage"`
	Answers             map[string]string `json:"answers"`
	CorrectAnswers      map[string]string `json:"correct_answers"`
	BookmarkedPositions []int             `json:"bookmarked_questions"`
}
