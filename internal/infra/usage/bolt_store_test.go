package usage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *BoltStore {
	t.Helper()
	store, err := OpenBoltStore(filepath.Join(t.TempDir(), "usage.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestBoltStoreRoundTrip(t *testing.T) {
	store := openTestStore(t)

	key := Key{UserID: "alice", Day: "2026-03-01"}
	_, found, err := store.Get(key)
	require.NoError(t, err)
	require.False(t, found)

	want := Record{Calls: 4, Revenue: 1.5, LastTool: "find_deals"}
	require.NoError(t, store.Put(key, want))

	got, found, err := store.Get(key)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, want, got)
}

func TestBoltStoreKeysAndDelete(t *testing.T) {
	store := openTestStore(t)

	// User ids may themselves contain the key separator.
	keys := []Key{
		{UserID: "alice", Day: "2026-03-01"},
		{UserID: "org:bob", Day: "2026-03-02"},
	}
	for _, key := range keys {
		require.NoError(t, store.Put(key, Record{Calls: 1}))
	}

	listed, err := store.Keys()
	require.NoError(t, err)
	require.ElementsMatch(t, keys, listed)

	require.NoError(t, store.Delete(keys[0]))
	listed, err = store.Keys()
	require.NoError(t, err)
	require.Equal(t, []Key{keys[1]}, listed)
}
