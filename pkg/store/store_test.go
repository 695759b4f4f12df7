package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "reports.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAddAndList(t *testing.T) {
	s := openTestStore(t)

	id, err := s.Add("https://example.com", "shop", "/tmp/report_1", 7)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	records, err := s.List(0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, id, records[0].ID)
	assert.Equal(t, "https://example.com", records[0].URL)
	assert.Equal(t, "shop", records[0].AppName)
	assert.Equal(t, "/tmp/report_1", records[0].Dir)
	assert.Equal(t, 7, records[0].ElementCount)
	assert.False(t, records[0].CreatedAt.IsZero())
}

func TestListLimit(t *testing.T) {
	s := openTestStore(t)

	for i := 0; i < 5; i++ {
		_, err := s.Add("https://example.com", "", "/tmp/r", i)
		require.NoError(t, err)
	}

	records, err := s.List(2)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestListEmpty(t *testing.T) {
	s := openTestStore(t)

	records, err := s.List(10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestOpenCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "idx", "reports.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Add("https://example.com", "", "/tmp/r", 0)
	assert.NoError(t, err)
}
