package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bnema/memochat/internal/adapters/store/memory"
	"github.com/bnema/memochat/internal/domain"
	"github.com/bnema/memochat/internal/locale"
	"github.com/bnema/memochat/internal/obfuscation"
	"github.com/bnema/memochat/internal/ports"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testPin = "4821"

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// scriptedBackend replays responses in order and records every request.
type scriptedBackend struct {
	mu        sync.Mutex
	responses []scriptedResponse
	requests  []ports.ModelRequest
}

type scriptedResponse struct {
	resp ports.ModelResponse
	err  error
}

func (b *scriptedBackend) reply(text string) *scriptedBackend {
	b.responses = append(b.responses, scriptedResponse{resp: ports.ModelResponse{Text: text}})
	return b
}

func (b *scriptedBackend) call(name string, args map[string]any) *scriptedBackend {
	b.responses = append(b.responses, scriptedResponse{resp: ports.ModelResponse{
		FunctionCalls: []domain.FunctionCall{{Name: name, Args: args}},
	}})
	return b
}

func (b *scriptedBackend) fail(err error) *scriptedBackend {
	b.responses = append(b.responses, scriptedResponse{err: err})
	return b
}

func (b *scriptedBackend) Generate(_ context.Context, req ports.ModelRequest) (ports.ModelResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.requests = append(b.requests, req)
	if len(b.responses) == 0 {
		return ports.ModelResponse{}, domain.NewBackendError(domain.BackendBadResponse, "script exhausted", nil)
	}
	next := b.responses[0]
	b.responses = b.responses[1:]
	return next.resp, next.err
}

func (b *scriptedBackend) Requests() []ports.ModelRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]ports.ModelRequest(nil), b.requests...)
}

func newTestService(t *testing.T, backend ports.ModelBackend, opts ...Option) (*Service, *memory.Store, *fakeClock) {
	t.Helper()

	store := memory.NewStore()
	clock := newFakeClock()
	opts = append([]Option{WithCatalog(locale.MustLookup("en"))}, opts...)
	return NewService(store, backend, clock, opts...), store, clock
}

// loggedIn returns a service with a configured PIN and an open session
// that skipped the greeting.
func loggedIn(t *testing.T, backend ports.ModelBackend, opts ...Option) (*Service, *memory.Store, *fakeClock) {
	t.Helper()

	svc, store, clock := newTestService(t, backend, opts...)
	require.NoError(t, svc.SetPin(context.Background(), testPin, WithoutGreeting()))
	return svc, store, clock
}

func mockAnyContext() any {
	return mock.MatchedBy(func(context.Context) bool { return true })
}

func mustEncode(t *testing.T, facts domain.Facts) string {
	t.Helper()
	blob, err := obfuscation.Encode(facts, testPin)
	require.NoError(t, err)
	return blob
}
