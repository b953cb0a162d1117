package application

import (
	"context"
	"errors"
	"testing"

	"github.com/bnema/memochat/internal/adapters/store/memory"
	"github.com/bnema/memochat/internal/domain"
	"github.com/bnema/memochat/internal/obfuscation"
	"github.com/bnema/memochat/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHashPinIsSHA256Hex(t *testing.T) {
	assert.Equal(t, "03ac674216f3e15c761ee1a5e255f067953623c8b388b4459e13f978d7c846f4", HashPin("1234"))
}

func TestGateSetPinThenAuthenticate(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	gate := NewGate(store)

	configured, err := gate.IsPinConfigured(ctx)
	require.NoError(t, err)
	assert.False(t, configured)

	require.NoError(t, gate.SetPin(ctx, testPin))

	configured, err = gate.IsPinConfigured(ctx)
	require.NoError(t, err)
	assert.True(t, configured)

	stored, err := store.Get(ctx, PinHashKey)
	require.NoError(t, err)
	assert.Equal(t, HashPin(testPin), stored)
	assert.NotContains(t, stored, testPin)

	facts, err := gate.Authenticate(ctx, testPin)
	require.NoError(t, err)
	assert.Empty(t, facts)
}

func TestGateSetPinRejectsSecondConfiguration(t *testing.T) {
	ctx := context.Background()
	gate := NewGate(memory.NewStore())

	require.NoError(t, gate.SetPin(ctx, testPin))
	require.ErrorIs(t, gate.SetPin(ctx, "1111"), domain.ErrPinAlreadySet)
}

func TestGateSetPinValidatesFormat(t *testing.T) {
	gate := NewGate(memory.NewStore())
	require.ErrorIs(t, gate.SetPin(context.Background(), "12"), domain.ErrInvalidPin)
}

func TestGateSetPinRollsBackHashWhenMemoryWriteFails(t *testing.T) {
	store := mocks.NewMockKVStore(t)
	gate := NewGate(store)
	writeErr := errors.New("disk full")

	store.EXPECT().Get(mockAnyContext(), PinHashKey).Return("", domain.ErrRecordNotFound).Once()
	store.EXPECT().Put(mockAnyContext(), PinHashKey, HashPin(testPin)).Return(nil).Once()
	store.EXPECT().Put(mockAnyContext(), FactsKey, mock.AnythingOfType("string")).Return(writeErr).Once()
	store.EXPECT().Delete(mockAnyContext(), PinHashKey).Return(nil).Once()

	err := gate.SetPin(context.Background(), testPin)
	require.ErrorIs(t, err, writeErr)
}

func TestGateSetPinReportsRollbackFailure(t *testing.T) {
	store := mocks.NewMockKVStore(t)
	gate := NewGate(store)
	writeErr := errors.New("disk full")
	rollbackErr := errors.New("delete failed")

	store.EXPECT().Get(mockAnyContext(), PinHashKey).Return("", domain.ErrRecordNotFound).Once()
	store.EXPECT().Put(mockAnyContext(), PinHashKey, HashPin(testPin)).Return(nil).Once()
	store.EXPECT().Put(mockAnyContext(), FactsKey, mock.AnythingOfType("string")).Return(writeErr).Once()
	store.EXPECT().Delete(mockAnyContext(), PinHashKey).Return(rollbackErr).Once()

	err := gate.SetPin(context.Background(), testPin)
	require.ErrorIs(t, err, writeErr)
	require.ErrorIs(t, err, rollbackErr)
}

func TestGateAuthenticateOutcomes(t *testing.T) {
	ctx := context.Background()

	t.Run("no pin configured", func(t *testing.T) {
		_, err := NewGate(memory.NewStore()).Authenticate(ctx, testPin)
		require.ErrorIs(t, err, domain.ErrPinNotSet)
	})

	t.Run("wrong pin", func(t *testing.T) {
		gate := NewGate(memory.NewStore())
		require.NoError(t, gate.SetPin(ctx, testPin))

		_, err := gate.Authenticate(ctx, "0000")
		require.ErrorIs(t, err, domain.ErrWrongPin)
		assert.NotErrorIs(t, err, domain.ErrCorruptData)
	})

	t.Run("corrupt memory is distinct from wrong pin", func(t *testing.T) {
		store := memory.NewStore()
		gate := NewGate(store)
		require.NoError(t, gate.SetPin(ctx, testPin))
		require.NoError(t, store.Put(ctx, FactsKey, "%%%garbage"))

		_, err := gate.Authenticate(ctx, testPin)
		require.ErrorIs(t, err, domain.ErrCorruptData)
		require.ErrorIs(t, err, domain.ErrDecode)
		assert.NotErrorIs(t, err, domain.ErrWrongPin)
	})

	t.Run("missing memory reads as empty", func(t *testing.T) {
		store := memory.NewStore()
		gate := NewGate(store)
		require.NoError(t, gate.SetPin(ctx, testPin))
		require.NoError(t, store.Delete(ctx, FactsKey))

		facts, err := gate.Authenticate(ctx, testPin)
		require.NoError(t, err)
		assert.Empty(t, facts)
	})

	t.Run("stored facts decode", func(t *testing.T) {
		store := memory.NewStore()
		gate := NewGate(store)
		require.NoError(t, gate.SetPin(ctx, testPin))
		blob, err := obfuscation.Encode(domain.Facts{"name": "Sara"}, testPin)
		require.NoError(t, err)
		require.NoError(t, store.Put(ctx, FactsKey, blob))

		facts, err := gate.Authenticate(ctx, testPin)
		require.NoError(t, err)
		assert.Equal(t, domain.Facts{"name": "Sara"}, facts)
	})
}
