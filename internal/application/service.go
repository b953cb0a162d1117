package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/bnema/memochat/internal/domain"
	"github.com/bnema/memochat/internal/locale"
	"github.com/bnema/memochat/internal/ports"
	"github.com/bnema/memochat/internal/telemetry"
	"go.uber.org/zap"
)

const (
	outcomeCommitted = "committed"
	outcomeAborted   = "aborted"
)

// Service is the conversation orchestrator and the only surface the CLI
// talks to. One turn runs at a time; reads are safe during a turn.
type Service struct {
	store    ports.KVStore
	backend  ports.ModelBackend
	clock    ports.Clock
	gate     *Gate
	catalog  locale.Catalog
	logger   *zap.Logger
	observer ports.TurnObserver
	limit    int

	busy sync.Mutex

	mu      sync.RWMutex
	session *session
}

type session struct {
	memory     *FactMemory
	quota      *QuotaTracker
	transcript domain.Transcript
	messages   []domain.Message
	// notifiedDay is the usage day the limit notice was last shown for.
	notifiedDay string
}

type Option func(*Service)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithCatalog(catalog locale.Catalog) Option {
	return func(s *Service) {
		s.catalog = catalog
	}
}

func WithDailyLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.limit = limit
		}
	}
}

func WithObserver(observer ports.TurnObserver) Option {
	return func(s *Service) {
		if observer != nil {
			s.observer = observer
		}
	}
}

func NewService(store ports.KVStore, backend ports.ModelBackend, clock ports.Clock, opts ...Option) *Service {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	s := &Service{
		store:    store,
		backend:  backend,
		clock:    clock,
		gate:     NewGate(store),
		catalog:  locale.MustLookup("ar"),
		logger:   zap.NewNop(),
		observer: ports.NopObserver{},
		limit:    domain.DailyMessageLimit,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Service) Catalog() locale.Catalog {
	return s.catalog
}

func (s *Service) IsPinConfigured(ctx context.Context) (bool, error) {
	return s.gate.IsPinConfigured(ctx)
}

type SessionOption func(*sessionOptions)

type sessionOptions struct {
	greeting bool
}

// WithoutGreeting opens the session without the greeting exchange.
func WithoutGreeting() SessionOption {
	return func(o *sessionOptions) {
		o.greeting = false
	}
}

// SetPin configures the PIN on first run and opens a session.
func (s *Service) SetPin(ctx context.Context, pin string, opts ...SessionOption) error {
	if !s.busy.TryLock() {
		return domain.ErrBusy
	}
	defer s.busy.Unlock()

	if err := s.gate.SetPin(ctx, pin); err != nil {
		return err
	}
	s.logger.Info("pin configured")

	return s.openSession(ctx, pin, domain.Facts{}, opts)
}

// Login authenticates pin and opens a session, replacing any open one.
func (s *Service) Login(ctx context.Context, pin string, opts ...SessionOption) error {
	if !s.busy.TryLock() {
		return domain.ErrBusy
	}
	defer s.busy.Unlock()

	facts, err := s.gate.Authenticate(ctx, pin)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrWrongPin):
			s.logger.Warn("login failed", zap.String("reason", "wrong_pin"))
		case errors.Is(err, domain.ErrCorruptData):
			s.logger.Error("login failed", zap.String("reason", "corrupt_data"), zap.Error(err))
		}
		return err
	}

	return s.openSession(ctx, pin, facts, opts)
}

// openSession must be called with the busy lock held.
func (s *Service) openSession(ctx context.Context, pin string, facts domain.Facts, opts []SessionOption) error {
	options := sessionOptions{greeting: true}
	for _, opt := range opts {
		opt(&options)
	}

	quota := NewQuotaTracker(s.store, s.clock, s.limit)
	if err := quota.Load(ctx); err != nil {
		s.logger.Warn("usage record not refreshed", zap.Error(err))
	}

	sess := &session{
		memory: NewFactMemory(s.store, pin, facts, s.catalog),
		quota:  quota,
	}
	if usage := quota.Snapshot(); usage.LimitReached {
		sess.notifiedDay = usage.Date
	}

	s.mu.Lock()
	s.session = sess
	s.mu.Unlock()

	s.logger.Info("session opened", zap.Int("facts", len(facts)), zap.Int("usage", quota.Snapshot().Count))

	if !options.greeting {
		return nil
	}

	ctx, turnID := telemetry.EnsureTurnID(ctx)
	logger := s.logger.With(zap.String("turn_id", turnID), zap.Bool("greeting", true))

	working, answer, err := s.exchange(ctx, logger, sess, nil, s.catalog.GreetingPrompt, true)
	if err != nil {
		logger.Warn("greeting failed, using static welcome", zap.Error(err))
		s.appendMessages(sess, domain.AssistantMessage(domain.MessageWelcome, s.catalog.Welcome))
		return nil
	}

	s.mu.Lock()
	if s.session == sess {
		sess.transcript = working
		sess.messages = append(sess.messages, domain.AssistantMessage(domain.MessageWelcome, answer))
	}
	s.mu.Unlock()

	return nil
}

// Logout drops the session and everything it holds. It is idempotent.
func (s *Service) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return
	}
	s.session = nil
	s.logger.Info("session closed")
}

func (s *Service) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session != nil
}

// SendMessage runs one conversational turn for text and returns the
// assistant messages it produced. A backend failure still returns the
// apology message alongside the error; the transcript is left untouched.
func (s *Service) SendMessage(ctx context.Context, text string) ([]domain.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyMessage
	}

	if !s.busy.TryLock() {
		return nil, domain.ErrBusy
	}
	defer s.busy.Unlock()

	sess := s.current()
	if sess == nil {
		return nil, domain.ErrNotAuthenticated
	}
	s.mu.RLock()
	admitted := sess.quota.Admit()
	s.mu.RUnlock()
	if !admitted {
		return nil, domain.ErrQuotaExceeded
	}

	ctx, turnID := telemetry.EnsureTurnID(ctx)
	logger := s.logger.With(zap.String("turn_id", turnID))
	start := s.clock.Now()

	s.appendMessages(sess, domain.UserMessage(text))

	s.mu.Lock()
	count, err := sess.quota.RecordUsage(ctx)
	day := sess.quota.Snapshot().Date
	s.mu.Unlock()
	if err != nil {
		logger.Warn("usage not persisted", zap.Error(err))
	}
	logger.Debug("turn started", zap.Int("usage", count), zap.Int("limit", sess.quota.Limit()))

	s.mu.RLock()
	committed := sess.transcript
	s.mu.RUnlock()

	var produced []domain.Message
	working, answer, turnErr := s.exchange(ctx, logger, sess, committed, text, false)
	if turnErr != nil {
		s.observer.BackendFailed(domain.BackendErrorKindOf(turnErr))
		s.observer.TurnFinished(outcomeAborted, s.clock.Now().Sub(start))
		logger.Error("turn aborted", zap.String("kind", string(domain.BackendErrorKindOf(turnErr))), zap.Error(turnErr))
		produced = append(produced, domain.AssistantMessage(domain.MessageError, s.catalog.GenericError))
	} else {
		s.mu.Lock()
		if s.session == sess {
			sess.transcript = working
		}
		s.mu.Unlock()
		s.observer.TurnFinished(outcomeCommitted, s.clock.Now().Sub(start))
		logger.Debug("turn committed", zap.Int("turns", working.Len()))
		produced = append(produced, domain.AssistantMessage(domain.MessageReply, answer))
	}

	if count >= sess.quota.Limit() && sess.notifiedDay != day {
		sess.notifiedDay = day
		produced = append(produced, domain.AssistantMessage(domain.MessageNotice, s.catalog.LimitReached))
		logger.Info("daily limit reached", zap.Int("limit", sess.quota.Limit()))
	}

	s.appendMessages(sess, produced...)

	if turnErr != nil {
		return produced, fmt.Errorf("send message: %w", turnErr)
	}
	return produced, nil
}

// exchange runs the request / tool / follow-up protocol on a working copy
// of committed and returns the transcript to commit with the answer.
func (s *Service) exchange(ctx context.Context, logger *zap.Logger, sess *session, committed domain.Transcript, prompt string, greeting bool) (domain.Transcript, string, error) {
	working := committed.Clone()
	if prompt != "" {
		working = working.Append(domain.UserText(prompt))
	}

	first, err := s.backend.Generate(ctx, ports.ModelRequest{History: committed, NewMessage: prompt})
	if err != nil {
		return nil, "", fmt.Errorf("first model call: %w", err)
	}

	if len(first.FunctionCalls) == 0 {
		return working.Append(domain.ModelText(first.Text)), first.Text, nil
	}

	call := first.FunctionCalls[0]
	if len(first.FunctionCalls) > 1 {
		logger.Debug("extra function calls ignored", zap.Int("count", len(first.FunctionCalls)-1))
	}

	result, err := s.dispatch(ctx, logger, sess.memory, call, greeting)
	if err != nil {
		return nil, "", fmt.Errorf("dispatch %s: %w", call.Name, err)
	}
	logger.Debug("tool dispatched", zap.String("tool", call.Name), zap.Int("result_bytes", len(result)))

	callTurn := domain.ModelCall(call)
	response := domain.ResponsePart(call.Name, result)

	second, err := s.backend.Generate(ctx, ports.ModelRequest{
		History:           working.Append(callTurn),
		FunctionResponses: []domain.Part{response},
	})
	if err != nil {
		return nil, "", fmt.Errorf("follow-up model call: %w", err)
	}

	working = working.Append(callTurn, domain.FunctionResult(response), domain.ModelText(second.Text))
	return working, second.Text, nil
}

// DeleteFact removes key from the session memory. Without a session it is
// a no-op; persistence failures are logged, never returned.
func (s *Service) DeleteFact(ctx context.Context, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return
	}
	if err := s.session.memory.Delete(ctx, key); err != nil {
		s.logger.Warn("fact deletion not persisted", zap.Error(err))
	}
}

func (s *Service) Facts() domain.Facts {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.session == nil {
		return domain.Facts{}
	}
	return s.session.memory.Snapshot()
}

func (s *Service) Messages() []domain.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.session == nil {
		return nil
	}
	return append([]domain.Message(nil), s.session.messages...)
}

func (s *Service) Transcript() domain.Transcript {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.session == nil {
		return nil
	}
	return s.session.transcript.Clone()
}

// Usage reports today's quota. Without a session it reads the stored record.
func (s *Service) Usage(ctx context.Context) (UsageSnapshot, error) {
	s.mu.RLock()
	if s.session != nil {
		defer s.mu.RUnlock()
		return s.session.quota.Snapshot(), nil
	}
	s.mu.RUnlock()

	record, err := ReadUsage(ctx, s.store)
	if err != nil {
		return UsageSnapshot{}, err
	}
	today := record.ForDay(domain.UsageDay(s.clock.Now()))
	return UsageSnapshot{
		Count:        today.Count,
		Limit:        s.limit,
		Date:         today.Date,
		LimitReached: today.Count >= s.limit,
	}, nil
}

func (s *Service) current() *session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

func (s *Service) appendMessages(sess *session, messages ...domain.Message) {
	if len(messages) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session != sess {
		return
	}
	sess.messages = append(sess.messages, messages...)
}
