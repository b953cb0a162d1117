package chain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/bnema/memochat/internal/domain"
	portmocks "github.com/bnema/memochat/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const usageKey = "gemini-daily-usage"

func newChain(t *testing.T) (*Store, *portmocks.MockKVStore, *portmocks.MockKVStore) {
	t.Helper()

	primary := portmocks.NewMockKVStore(t)
	fallback := portmocks.NewMockKVStore(t)
	store, err := NewStore(primary, fallback)
	require.NoError(t, err)
	return store, primary, fallback
}

func TestNewStoreRejectsNilBackends(t *testing.T) {
	t.Parallel()

	_, err := NewStore(nil, portmocks.NewMockKVStore(t))
	require.ErrorIs(t, err, errNilPrimaryStore)

	_, err = NewStore(portmocks.NewMockKVStore(t), nil)
	require.ErrorIs(t, err, errNilFallbackStore)
}

func TestStoreGetUsesPrimaryWhenItSucceeds(t *testing.T) {
	t.Parallel()

	store, primary, _ := newChain(t)
	primary.EXPECT().Get(mock.Anything, usageKey).Return("from-primary", nil).Once()

	value, err := store.Get(context.Background(), usageKey)
	require.NoError(t, err)
	assert.Equal(t, "from-primary", value)
}

func TestStoreGetFallsBackWhenPrimaryFails(t *testing.T) {
	t.Parallel()

	store, primary, fallback := newChain(t)
	primary.EXPECT().Get(mock.Anything, usageKey).Return("", errors.New("database unavailable")).Once()
	fallback.EXPECT().Get(mock.Anything, usageKey).Return("from-fallback", nil).Once()

	value, err := store.Get(context.Background(), usageKey)
	require.NoError(t, err)
	assert.Equal(t, "from-fallback", value)
}

func TestStoreGetMissingEverywhereIsNotFound(t *testing.T) {
	t.Parallel()

	store, primary, fallback := newChain(t)
	notFound := fmt.Errorf("record %q: %w", usageKey, domain.ErrRecordNotFound)
	primary.EXPECT().Get(mock.Anything, usageKey).Return("", notFound).Once()
	fallback.EXPECT().Get(mock.Anything, usageKey).Return("", notFound).Once()

	_, err := store.Get(context.Background(), usageKey)
	require.ErrorIs(t, err, domain.ErrRecordNotFound)
	assert.ErrorContains(t, err, "primary backend")
	assert.ErrorContains(t, err, "fallback backend")
}

func TestStoreSkipsFallbackOnCancellation(t *testing.T) {
	t.Parallel()

	store, primary, _ := newChain(t)
	primary.EXPECT().Put(mock.Anything, usageKey, "v").Return(context.Canceled).Once()
	primary.EXPECT().Delete(mock.Anything, usageKey).Return(context.DeadlineExceeded).Once()

	require.ErrorIs(t, store.Put(context.Background(), usageKey, "v"), context.Canceled)
	require.ErrorIs(t, store.Delete(context.Background(), usageKey), context.DeadlineExceeded)
}

func TestStorePutReturnsCombinedErrorWhenBothBackendsFail(t *testing.T) {
	t.Parallel()

	store, primary, fallback := newChain(t)
	primary.EXPECT().Put(mock.Anything, usageKey, "v").Return(errors.New("sqlite locked")).Once()
	fallback.EXPECT().Put(mock.Anything, usageKey, "v").Return(errors.New("disk full")).Once()

	err := store.Put(context.Background(), usageKey, "v")
	require.Error(t, err)
	assert.ErrorContains(t, err, "sqlite locked")
	assert.ErrorContains(t, err, "disk full")
}

func TestStoreDeleteFallsBack(t *testing.T) {
	t.Parallel()

	store, primary, fallback := newChain(t)
	primary.EXPECT().Delete(mock.Anything, usageKey).Return(errors.New("pass unavailable")).Once()
	fallback.EXPECT().Delete(mock.Anything, usageKey).Return(nil).Once()

	require.NoError(t, store.Delete(context.Background(), usageKey))
}
