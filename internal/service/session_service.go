package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/prepiq/quiz-backend/internal/config"
	"github.com/prepiq/quiz-backend/internal/model"
	"github.com/prepiq/quiz-backend/internal/quiz"
)

// ErrSessionNotFound is returned when no session exists for an identifier.
var ErrSessionNotFound = errors.New("session not found")

// submittedRetention is how long a submitted session stays readable in
// memory. After eviction its result is served from the archive.
const submittedRetention = 5 * time.Minute

// SessionService owns the live quiz sessions of this process: it boots
// engines, drives each one with a one-second scheduler, and fans engine
// events out to WebSocket subscribers. One browsing context runs one
// session at a time, so session IDs never collide by construction.
type SessionService struct {
	cfg   *config.Config
	store quiz.SnapshotStore
	sink  quiz.ResultSink
	log   zerolog.Logger

	mu       sync.RWMutex
	sessions map[string]*sessionEntry
}

type sessionEntry struct {
	engine *quiz.Engine
	cancel context.CancelFunc

	subMu  sync.Mutex
	subs   map[chan quiz.Event]struct{}
	doneAt time.Time
}

// NewSessionService creates a SessionService.
func NewSessionService(cfg *config.Config, store quiz.SnapshotStore, sink quiz.ResultSink, log zerolog.Logger) *SessionService {
	s := &SessionService{
		cfg:      cfg,
		store:    store,
		sink:     sink,
		log:      log.With().Str("component", "session_service").Logger(),
		sessions: make(map[string]*sessionEntry),
	}

	// Evict long-submitted sessions every minute so engines do not
	// accumulate for the process lifetime.
	go func() {
		for range time.Tick(time.Minute) {
			s.evictSubmitted(submittedRetention)
		}
	}()

	return s
}

// Start boots a session from the supplied question set and time limit. A
// client-supplied ID resumes that session's autosaved snapshot; rejoining
// an ID that is already live in this process is idempotent and returns the
// current view without restarting the clock.
func (s *SessionService) Start(ctx context.Context, req *model.StartSessionRequest) (model.SessionView, error) {
	// Binding already requires a non-empty set; guard again for callers
	// that bypass the HTTP surface.
	if len(req.Questions) == 0 {
		return model.SessionView{}, quiz.ErrNoQuestions
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	s.mu.Lock()
	if entry, ok := s.sessions[sessionID]; ok {
		s.mu.Unlock()
		return entry.engine.View(), nil
	}

	questions := make([]model.Question, len(req.Questions))
	for i, q := range req.Questions {
		questions[i] = model.Question{
			Index:         i,
			Prompt:        q.Prompt,
			Options:       q.Options,
			CorrectOption: q.CorrectOption,
		}
	}

	entry := &sessionEntry{subs: make(map[chan quiz.Event]struct{})}
	entry.engine = quiz.NewEngine(ctx, quiz.EngineConfig{
		SessionID:        sessionID,
		Questions:        questions,
		TimeLimitSeconds: req.TimeLimitMinutes * 60,
		WarningThreshold: s.cfg.WarningThresholdSeconds,
		Store:            s.store,
		Sink:             s.sink,
		Logger:           s.log,
		OnEvent:          entry.broadcast,
	})
	// Assign cancel before the entry is published; Submit and Shutdown
	// read it as soon as they can see the entry.
	tickCtx, cancel := context.WithCancel(context.Background())
	entry.cancel = cancel
	s.sessions[sessionID] = entry
	s.mu.Unlock()

	go s.runClock(tickCtx, entry.engine)

	s.log.Info().
		Str("session_id", sessionID).
		Int("questions", len(questions)).
		Int("time_limit_minutes", req.TimeLimitMinutes).
		Msg("Session started")

	return entry.engine.View(), nil
}

// runClock delivers one tick per elapsed second until the session is
// submitted or the service shuts down. The engine ignores ticks after
// submission, so a tick already in flight when the session ends is
// harmless.
func (s *SessionService) runClock(ctx context.Context, eng *quiz.Engine) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !eng.Tick(ctx) {
				return
			}
		}
	}
}

// Get returns the engine for a session ID.
func (s *SessionService) Get(sessionID string) (*quiz.Engine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return entry.engine, nil
}

// Submit performs a user-initiated submission and stops the clock.
func (s *SessionService) Submit(ctx context.Context, sessionID string) (*model.ResultRecord, error) {
	s.mu.RLock()
	entry, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}

	rec, err := entry.engine.Submit(ctx)
	if entry.cancel != nil {
		entry.cancel()
	}
	return rec, err
}

// Subscribe registers an event listener for a session. The returned cancel
// function must be called when the listener goes away. Events are dropped
// rather than blocking the engine when a subscriber falls behind.
func (s *SessionService) Subscribe(sessionID string) (<-chan quiz.Event, func(), error) {
	s.mu.RLock()
	entry, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, nil, ErrSessionNotFound
	}

	ch := make(chan quiz.Event, 16)
	entry.subMu.Lock()
	entry.subs[ch] = struct{}{}
	entry.subMu.Unlock()

	cancel := func() {
		entry.subMu.Lock()
		delete(entry.subs, ch)
		entry.subMu.Unlock()
	}
	return ch, cancel, nil
}

// Shutdown stops all session clocks. In-memory state is lost; autosaved
// snapshots survive in the store for resumption.
func (s *SessionService) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range s.sessions {
		if entry.cancel != nil {
			entry.cancel()
		}
	}
}

// evictSubmitted drops sessions that have been submitted for longer than
// retention. Both submission paths emit quiz.EventSubmitted through
// broadcast, which stamps doneAt. Evicted results stay readable from the
// archive.
func (s *SessionService) evictSubmitted(retention time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, entry := range s.sessions {
		doneAt, done := entry.submittedAt()
		if !done || time.Since(doneAt) < retention {
			continue
		}
		if entry.cancel != nil {
			entry.cancel()
		}
		delete(s.sessions, id)
		s.log.Debug().Str("session_id", id).Msg("Submitted session evicted")
	}
}

func (e *sessionEntry) broadcast(ev quiz.Event) {
	e.subMu.Lock()
	defer e.subMu.Unlock()
	if ev.Type == quiz.EventSubmitted && e.doneAt.IsZero() {
		e.doneAt = time.Now()
	}
	for ch := range e.subs {
		select {
		case ch <- ev:
		default:
			// Slow subscriber; drop instead of stalling the tick path.
		}
	}
}

func (e *sessionEntry) submittedAt() (time.Time, bool) {
	e.subMu.Lock()
	defer e.subMu.Unlock()
	return e.doneAt, !e.doneAt.IsZero()
}
