package results

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hle-eval/hle/internal/api"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "results"))
	require.NoError(t, err)
	return store
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)

	result := &api.Result{
		ID:          "q1",
		Question:    "What is 2+2?",
		Reasoning:   "adding",
		RawResponse: "Exact Answer: 4\nConfidence: 100%",
		Parsed:      api.ParsedAnswer{Answer: "4", Confidence: 100},
	}
	require.NoError(t, store.Save(result))

	all, err := store.LoadAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, *result, all[0])
}

func TestExistingIDs(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Save(&api.Result{ID: "q1"}))
	require.NoError(t, store.Save(&api.Result{ID: "q2"}))

	ids, err := store.ExistingIDs()
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"q1": true, "q2": true}, ids)
}

func TestExistingIDsIgnoresNonResultFiles(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Save(&api.Result{ID: "q1"}))
	// A crash can leave a temp file behind; it must not count as a result.
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "q2.json.tmp"), []byte("{"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "notes.txt"), []byte("x"), 0o644))

	ids, err := store.ExistingIDs()
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"q1": true}, ids)
}

func TestLoadAllSortedByID(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Save(&api.Result{ID: "b"}))
	require.NoError(t, store.Save(&api.Result{ID: "a"}))
	require.NoError(t, store.Save(&api.Result{ID: "c"}))

	all, err := store.LoadAll()
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a", all[0].ID)
	assert.Equal(t, "c", all[2].ID)
}

func TestSaveOverwritesExisting(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Save(&api.Result{ID: "q1", RawResponse: "first"}))
	require.NoError(t, store.Save(&api.Result{ID: "q1", RawResponse: "second"}))

	all, err := store.LoadAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "second", all[0].RawResponse)
}

func TestLoadAllMalformedFile(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "bad.json"), []byte("{"), 0o644))

	_, err := store.LoadAll()
	require.Error(t, err)
}
