package journal

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "conversions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestJournal_RecordAndRecent(t *testing.T) {
	j := openTestJournal(t)

	require.NoError(t, j.Record(&Entry{
		SourcePath:     "/mail/a.eml",
		Title:          "Issue 1",
		NewsletterType: "substack",
		OutputPath:     "/out/Issue_1.epub",
		Format:         "epub",
		OK:             true,
	}))
	require.NoError(t, j.Record(&Entry{
		SourcePath:     "/mail/b.eml",
		Title:          "",
		NewsletterType: "generic",
		OK:             false,
		Error:          "input file is empty",
	}))

	entries, err := j.Recent(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "/mail/b.eml", entries[0].SourcePath, "newest entry first")
	assert.False(t, entries[0].OK)
	assert.Equal(t, "input file is empty", entries[0].Error)

	assert.Equal(t, "Issue 1", entries[1].Title)
	assert.True(t, entries[1].OK)
	assert.Equal(t, "epub", entries[1].Format)
	assert.False(t, entries[1].ConvertedAt.IsZero())
}

func TestJournal_RecentLimit(t *testing.T) {
	j := openTestJournal(t)
	for i := 0; i < 5; i++ {
		require.NoError(t, j.Record(&Entry{SourcePath: "x", Title: "t", NewsletterType: "generic", OK: true}))
	}

	entries, err := j.Recent(3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestJournal_EmptyRecent(t *testing.T) {
	j := openTestJournal(t)
	entries, err := j.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestOpen_ReopensExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conversions.db")

	j, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, j.Record(&Entry{SourcePath: "a", Title: "t", NewsletterType: "generic", OK: true}))
	require.NoError(t, j.Close())

	j2, err := Open(path)
	require.NoError(t, err)
	defer j2.Close()

	entries, err := j2.Recent(10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
