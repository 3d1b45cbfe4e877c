package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabricshift/fabricshift/pkg/convert"
	"github.com/fabricshift/fabricshift/pkg/mapping"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleSnapshot(t *testing.T, sql string) (string, convert.Snapshot) {
	t.Helper()
	res := convert.New(mapping.NewTable()).Convert(sql)
	return res.SQL, res.Metrics.Snapshot()
}

func TestRecordAndGet(t *testing.T) {
	store := openTestStore(t)

	out, snap := sampleSnapshot(t, "SELECT NOW() AS t")
	rec, err := store.Record("stdin", "SELECT NOW() AS t", out, snap)
	require.NoError(t, err)
	require.NotEmpty(t, rec.ID)

	got, err := store.Get(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "stdin", got.Source)
	assert.Equal(t, "SELECT NOW() AS t", got.InputSQL)
	assert.Equal(t, out, got.OutputSQL)
	assert.Equal(t, snap.TotalStatements, got.Metrics.TotalStatements)
	assert.Equal(t, snap.SuccessfulConversions, got.Metrics.SuccessfulConversions)
	assert.InDelta(t, snap.SuccessRate, got.Metrics.SuccessRate, 0.001)
}

func TestRecordPersistsFlags(t *testing.T) {
	store := openTestStore(t)

	out, snap := sampleSnapshot(t, "SELECT MEDIAN(salary) FROM e")
	require.NotEmpty(t, snap.FlaggedLines)

	rec, err := store.Record("report.sql", "SELECT MEDIAN(salary) FROM e", out, snap)
	require.NoError(t, err)

	got, err := store.Get(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, snap.FlaggedLines, got.Metrics.FlaggedLines)
}

func TestListNewestFirst(t *testing.T) {
	store := openTestStore(t)

	out, snap := sampleSnapshot(t, "SELECT 1")
	for _, src := range []string{"a.sql", "b.sql", "c.sql"} {
		_, err := store.Record(src, "SELECT 1", out, snap)
		require.NoError(t, err)
	}

	records, err := store.List(0)
	require.NoError(t, err)
	assert.Len(t, records, 3)

	limited, err := store.List(2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestGetMissing(t *testing.T) {
	store := openTestStore(t)
	_, err := store.Get("no-such-id")
	assert.ErrorContains(t, err, "not found")
}
