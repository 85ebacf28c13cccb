package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ieee-quiz/internal/domain"
)

// SessionRepository abstracts where live quiz sessions are tracked (in-memory, Redis, etc).
type SessionRepository interface {
	GetOrCreate(sessionID string, reducer Reducer) *Store
	Get(sessionID string) (*Store, bool)
	Touch(sessionID string)
	Delete(sessionID string)
	Count() int
}

// QuestionSource supplies the static question bank.
type QuestionSource interface {
	LoadQuestions(ctx context.Context) ([]domain.Question, error)
}

// Observer is notified about session lifecycle and dispatched events.
type Observer interface {
	SessionOpened()
	SessionClosed(state domain.State)
	EventDispatched(ev domain.EventType, state domain.State)
}

// Settings tune the countdown.
type Settings struct {
	SecondsPerQuestion int
	TickInterval       time.Duration
	GraceDelay         time.Duration
}

// QuizService contains the quiz use cases.
type QuizService struct {
	sessions  SessionRepository
	questions QuestionSource
	reducer   Reducer
	settings  Settings
	observer  Observer
	logger    *zap.Logger
}

// Option customizes a QuizService.
type Option func(*QuizService)

// WithObserver registers an observer for session and event notifications.
func WithObserver(o Observer) Option {
	return func(s *QuizService) { s.observer = o }
}

// WithLogger sets the service logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *QuizService) { s.logger = l }
}

func NewQuizService(sessions SessionRepository, questions QuestionSource, settings Settings, opts ...Option) *QuizService {
	s := &QuizService{
		sessions:  sessions,
		questions: questions,
		reducer:   NewReducer(settings.SecondsPerQuestion),
		settings:  settings,
		observer:  nopObserver{},
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open creates a session and feeds it the question bank. A failed load is
// not returned as an error: the session moves to the error status instead.
// Opening an already loaded session returns its current state.
func (s *QuizService) Open(ctx context.Context, sessionID string) (domain.State, error) {
	store := s.sessions.GetOrCreate(sessionID, s.reducer)
	if state := store.State(); state.Status != domain.StatusLoading {
		return state, nil
	}
	s.observer.SessionOpened()

	questions, err := s.questions.LoadQuestions(ctx)
	if err != nil {
		s.logger.Warn("question bank load failed",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		return s.dispatch(store, domain.DataFailed{Err: err}), nil
	}
	return s.dispatch(store, domain.DataReceived{Questions: questions}), nil
}

// Dispatch applies a player event to the session. Events that the current
// status does not offer are rejected with domain.ErrEventNotAllowed and never
// reach the reducer; loader and timer events are internal and always rejected.
func (s *QuizService) Dispatch(_ context.Context, sessionID string, ev domain.Event) (domain.State, error) {
	store, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.State{}, domain.ErrSessionNotFound
	}
	state := store.State()
	if !playerEventAllowed(state.Status, ev) {
		return state, fmt.Errorf("%w: %s while %s", domain.ErrEventNotAllowed, eventName(ev), state.Status)
	}
	return s.dispatch(store, ev), nil
}

// State returns the current state of a session.
func (s *QuizService) State(_ context.Context, sessionID string) (domain.State, error) {
	store, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.State{}, domain.ErrSessionNotFound
	}
	return store.State(), nil
}

// Subscribe returns a channel that receives every state of a session.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(_ context.Context, sessionID string) (<-chan domain.State, func(), error) {
	store, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := store.Subscribe()
	return ch, cancel, nil
}

// RunTimer drives the session countdown until ctx is done or the session closes.
func (s *QuizService) RunTimer(ctx context.Context, sessionID string) error {
	store, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.ErrSessionNotFound
	}
	driver := NewTimerDriver(store, s.settings.TickInterval, s.settings.GraceDelay, s.logger)
	return driver.Run(ctx)
}

// Close drops the session and releases its subscribers.
func (s *QuizService) Close(_ context.Context, sessionID string) {
	store, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	final := store.State()
	store.Close()
	s.sessions.Delete(sessionID)
	s.observer.SessionClosed(final)
	s.logger.Debug("session closed",
		zap.String("session_id", sessionID),
		zap.String("status", string(final.Status)),
		zap.Int("points", final.Points),
		zap.Int("highscore", final.HighScore),
	)
}

// ActiveSessions reports how many sessions are open.
func (s *QuizService) ActiveSessions() int {
	return s.sessions.Count()
}

func (s *QuizService) dispatch(store *Store, ev domain.Event) domain.State {
	state := store.Dispatch(ev)
	s.sessions.Touch(store.ID())
	s.observer.EventDispatched(ev.Type(), state)
	s.logger.Debug("event dispatched",
		zap.String("session_id", store.ID()),
		zap.String("event", string(ev.Type())),
		zap.String("status", string(state.Status)),
	)
	return state
}

// playerEventAllowed mirrors what each screen lets a player do.
func playerEventAllowed(status domain.Status, ev domain.Event) bool {
	switch ev.(type) {
	case domain.Start:
		return status == domain.StatusReady
	case domain.NewAnswer, domain.NextQuestion, domain.Finish:
		return status == domain.StatusActive
	case domain.Restart:
		return status == domain.StatusFinished
	default:
		return false
	}
}

func eventName(ev domain.Event) string {
	if ev == nil {
		return "<nil>"
	}
	return string(ev.Type())
}

type nopObserver struct{}

func (nopObserver) SessionOpened()                                 {}
func (nopObserver) SessionClosed(domain.State)                     {}
func (nopObserver) EventDispatched(domain.EventType, domain.State) {}
