package quiz

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/prepiq/quiz-backend/internal/model"
	"github.com/prepiq/quiz-backend/internal/scoring"
)

// ErrAlreadySubmitted is returned when a mutation or a second submission
// targets a session that already left the Active phase.
var ErrAlreadySubmitted = errors.New("session already submitted")

// SnapshotStore persists in-progress session snapshots keyed by session ID.
// Implementations must be last-write-wins per key; Load returns (nil, nil)
// for absent or unreadable snapshots.
type SnapshotStore interface {
	Save(ctx context.Context, sessionID string, snap model.Snapshot) error
	Load(ctx context.Context, sessionID string) (*model.Snapshot, error)
	Clear(ctx context.Context, sessionID string) error
}

// ResultSink receives the ResultRecord exactly once at submission, for the
// external result consumer.
type ResultSink interface {
	Deliver(ctx context.Context, rec model.ResultRecord) error
}

// SubmitTrigger identifies what initiated a submission.
type SubmitTrigger string

const (
	TriggerManual SubmitTrigger = "manual"
	TriggerExpiry SubmitTrigger = "expiry"
)

// EventType enumerates engine notifications.
type EventType string

const (
	EventTick      EventType = "tick"
	EventWarning   EventType = "warning"
	EventExpired   EventType = "expired"
	EventSubmitted EventType = "submitted"
)

// Event is a notification emitted by the engine to its host. Result is
// only set on EventSubmitted.
type Event struct {
	Type             EventType           `json:"event"`
	RemainingSeconds int                 `json:"remaining_seconds"`
	Trigger          SubmitTrigger       `json:"trigger,omitempty"`
	Result           *model.ResultRecord `json:"result,omitempty"`
}

// EngineConfig wires one quiz session engine.
type EngineConfig struct {
	SessionID        string
	Questions        []model.Question
	TimeLimitSeconds int
	WarningThreshold int
	Store            SnapshotStore
	Sink             ResultSink
	Logger           zerolog.Logger
	// OnEvent, if set, receives timer and submission events. It is called
	// outside the engine lock and must not block.
	OnEvent func(Event)
}

// Engine binds the session state store, the timer, the persistence adapter
// and the submission coordinator for one quiz attempt. All operations,
// timer ticks included, are serialized through one mutex so a tick and an
// answer change are never observed interleaved mid-operation.
type Engine struct {
	mu        sync.Mutex
	session   *Session
	timer     *Timer
	store     SnapshotStore
	sink      ResultSink
	log       zerolog.Logger
	onEvent   func(Event)
	timeLimit int
	phase     model.SessionPhase
	result    *model.ResultRecord
}

// NewEngine builds a session engine, restoring any autosaved snapshot for
// the session ID. Restoration recovers answers and bookmarks only; the
// timer is always re-armed from the full time limit (the snapshot layout
// carries no clock data).
func NewEngine(ctx context.Context, cfg EngineConfig) *Engine {
	e := &Engine{
		session:   NewSession(cfg.SessionID, cfg.Questions),
		timer:     NewTimer(cfg.TimeLimitSeconds, cfg.WarningThreshold),
		store:     cfg.Store,
		sink:      cfg.Sink,
		log:       cfg.Logger.With().Str("session_id", cfg.SessionID).Logger(),
		onEvent:   cfg.OnEvent,
		timeLimit: cfg.TimeLimitSeconds,
		phase:     model.PhaseActive,
	}

	snap, err := e.store.Load(ctx, cfg.SessionID)
	if err != nil {
		// A broken autosave never blocks a session from starting.
		e.log.Warn().Err(err).Msg("Snapshot load failed, starting fresh")
	} else if snap != nil {
		e.session.Restore(snap)
		e.log.Info().
			Int("answers", len(snap.Answers)).
			Int("bookmarks", len(snap.Bookmarks)).
			Msg("Session restored from snapshot")
	}

	return e
}

// ─── State mutations ────────────────────────────────────────────────

// SelectAnswer records an answer and autosaves.
func (e *Engine) SelectAnswer(ctx context.Context, idx int, option string) error {
	return e.mutate(ctx, func() error {
		return e.session.SelectAnswer(idx, option)
	})
}

// MarkForReview flags a question for revisiting and autosaves.
func (e *Engine) MarkForReview(ctx context.Context, idx int) error {
	return e.mutate(ctx, func() error {
		return e.session.MarkForReview(idx)
	})
}

// ToggleBookmark flips a bookmark, autosaves, and returns the new value.
func (e *Engine) ToggleBookmark(ctx context.Context, idx int) (bool, error) {
	var bookmarked bool
	err := e.mutate(ctx, func() error {
		var err error
		bookmarked, err = e.session.ToggleBookmark(idx)
		return err
	})
	return bookmarked, err
}

// GoTo moves the current question pointer.
func (e *Engine) GoTo(ctx context.Context, idx int) error {
	return e.mutate(ctx, func() error {
		return e.session.GoTo(idx)
	})
}

// Next advances the pointer, clamped at the last question.
func (e *Engine) Next(ctx context.Context) error {
	return e.mutate(ctx, func() error {
		e.session.Next()
		return nil
	})
}

// Previous moves the pointer back, clamped at the first question.
func (e *Engine) Previous(ctx context.Context) error {
	return e.mutate(ctx, func() error {
		e.session.Previous()
		return nil
	})
}

// mutate runs op under the engine lock and autosaves the snapshot on
// success. Persistence failures are logged and swallowed: losing an
// autosave is recoverable, blocking the exam is not.
func (e *Engine) mutate(ctx context.Context, op func() error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != model.PhaseActive {
		return ErrAlreadySubmitted
	}
	if err := op(); err != nil {
		return err
	}

	if err := e.store.Save(ctx, e.session.ID(), e.session.Snapshot()); err != nil {
		e.log.Warn().Err(err).Msg("Snapshot save failed, continuing in memory")
	}
	return nil
}

// ─── Timer ──────────────────────────────────────────────────────────

// Tick consumes one second of exam time. It returns false once the session
// has been submitted (by either path) and no further ticks are needed.
// Expiry triggers automatic submission with no confirmation step.
func (e *Engine) Tick(ctx context.Context) bool {
	e.mu.Lock()

	if e.phase != model.PhaseActive {
		e.mu.Unlock()
		return false
	}

	res := e.timer.Tick()
	events := make([]Event, 0, 2)

	if res.Warning {
		e.log.Info().Int("remaining", res.Remaining).Msg("Time warning threshold crossed")
		events = append(events, Event{Type: EventWarning, RemainingSeconds: res.Remaining})
	}

	if res.Expired {
		rec := e.submitLocked(ctx, TriggerExpiry)
		events = append(events,
			Event{Type: EventExpired},
			Event{Type: EventSubmitted, Trigger: TriggerExpiry, Result: rec},
		)
		e.mu.Unlock()
		e.emit(events...)
		return false
	}

	events = append(events, Event{Type: EventTick, RemainingSeconds: res.Remaining})
	e.mu.Unlock()
	e.emit(events...)
	return true
}

func (e *Engine) emit(events ...Event) {
	if e.onEvent == nil {
		return
	}
	for _, ev := range events {
		e.onEvent(ev)
	}
}

// ─── Submission ─────────────────────────────────────────────────────

// Submit performs a user-initiated submission. A second trigger — a user
// click racing timer expiry included — is a no-op that returns the already
// computed result with ErrAlreadySubmitted.
func (e *Engine) Submit(ctx context.Context) (*model.ResultRecord, error) {
	e.mu.Lock()

	if e.phase != model.PhaseActive {
		rec := e.result
		e.mu.Unlock()
		return rec, ErrAlreadySubmitted
	}

	rec := e.submitLocked(ctx, TriggerManual)
	e.mu.Unlock()
	e.emit(Event{Type: EventSubmitted, Trigger: TriggerManual, Result: rec})
	return rec, nil
}

// submitLocked runs the submission sequence: stop the timer, compute time
// taken, score, clear the autosave, hand off the result. Caller holds the
// lock and has verified phase == Active. Scoring is pure and cannot fail;
// malformed questions score as incorrect, so even the expiry path always
// produces a result rather than a frozen exam screen.
func (e *Engine) submitLocked(ctx context.Context, trigger SubmitTrigger) *model.ResultRecord {
	e.phase = model.PhaseSubmitting
	e.timer.Stop()

	timeTaken := e.timeLimit - e.timer.Remaining()

	outcome := scoring.Score(e.session.Questions(), e.session.States())

	rec := &model.ResultRecord{
		SessionID:           e.session.ID(),
		TotalQuestions:      outcome.TotalQuestions,
		AttemptedCount:      outcome.AttemptedCount,
		TimeTakenSeconds:    timeTaken,
		ScorePercentage:     outcome.ScorePercentage,
		Answers:             outcome.Answers,
		CorrectAnswers:      outcome.CorrectAnswers,
		BookmarkedPositions: e.session.BookmarkedPositions(),
	}

	// Clear exactly once so the completed session cannot be resumed under
	// the same key. Failure only risks a stale autosave, never the result.
	if err := e.store.Clear(ctx, e.session.ID()); err != nil {
		e.log.Warn().Err(err).Msg("Snapshot clear failed")
	}

	if err := e.sink.Deliver(ctx, *rec); err != nil {
		// The synchronous hand-off to the caller still happens; only the
		// archival copy is at risk.
		e.log.Error().Err(err).Msg("Result delivery failed")
	}

	e.result = rec
	e.phase = model.PhaseSubmitted

	e.log.Info().
		Str("trigger", string(trigger)).
		Float64("score", rec.ScorePercentage).
		Int("attempted", rec.AttemptedCount).
		Int("time_taken", rec.TimeTakenSeconds).
		Msg("Session submitted")

	return rec
}

// ─── Read side ──────────────────────────────────────────────────────

// View returns the session read model for the exam page.
func (e *Engine) View() model.SessionView {
	e.mu.Lock()
	defer e.mu.Unlock()

	attempted := e.session.AttemptedCount()
	return model.SessionView{
		SessionID:        e.session.ID(),
		Phase:            e.phase,
		TotalQuestions:   e.session.Len(),
		CurrentIndex:     e.session.Current(),
		RemainingSeconds: e.timer.Remaining(),
		WarningFired:     e.timer.WarningFired(),
		AttemptedCount:   attempted,
		MarkedCount:      e.session.MarkedCount(),
		UnattemptedCount: e.session.Len() - attempted,
		QuestionStates:   e.session.States(),
	}
}

// Result returns the ResultRecord once submitted, nil before.
func (e *Engine) Result() *model.ResultRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.result
}

// Phase returns the submission phase.
func (e *Engine) Phase() model.SessionPhase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// Question returns the question at idx (prompt and options included), for
// the paper endpoint.
func (e *Engine) Question(idx int) (model.Question, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	qs := e.session.Questions()
	if idx < 0 || idx >= len(qs) {
		return model.Question{}, ErrOutOfRange
	}
	return qs[idx], nil
}
