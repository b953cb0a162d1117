package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bnema/memochat/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRejectsInvalidKeys(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	testCases := []struct {
		name    string
		key     string
		wantErr string
	}{
		{name: "empty", key: "", wantErr: "record key is empty"},
		{name: "whitespace", key: "   ", wantErr: "record key is empty"},
		{name: "absolute", key: "/absolute/path", wantErr: "invalid record key"},
		{name: "traversal", key: "../escape", wantErr: "invalid record key"},
		{name: "deep traversal", key: "../../pin-hash", wantErr: "invalid record key"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := store.Put(context.Background(), tc.key, "value")
			require.Error(t, err)
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestStorePutGetRoundTripAndPermissions(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store := NewStore(root)
	key := "gemini-chat-memory-encrypted"
	want := "SmVsbG8="

	require.NoError(t, store.Put(context.Background(), key, want))
	require.NoError(t, store.Put(context.Background(), key, want))

	got, err := store.Get(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	info, err := os.Stat(filepath.Join(root, key))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(recordFileMode), info.Mode().Perm())

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestStoreGetMissingIsNotFound(t *testing.T) {
	t.Parallel()

	_, err := NewStore(t.TempDir()).Get(context.Background(), "gemini-chat-pin-hash")
	require.ErrorIs(t, err, domain.ErrRecordNotFound)
}

func TestStoreDeleteIsIdempotentWhenRecordMissing(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())

	require.NoError(t, store.Delete(context.Background(), "gemini-daily-usage"))
	require.NoError(t, store.Delete(context.Background(), "gemini-daily-usage"))
}
