package storage

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/segmentio/ksuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestJournal_PutGet(t *testing.T) {
	j := openJournal(t)
	captured := time.Date(2024, 3, 1, 12, 0, 0, 500, time.UTC)
	j.now = func() time.Time { return captured }

	id, err := j.Put("BDMV/PLAYLIST/00800.mpls", []byte("MPLS0200"))
	require.NoError(t, err)
	assert.Equal(t, captured.Unix(), id.Time().Unix())

	b, err := j.Get(id)
	require.NoError(t, err)
	assert.Equal(t, id, b.ID)
	assert.Equal(t, "BDMV/PLAYLIST/00800.mpls", b.Path)
	assert.Equal(t, []byte("MPLS0200"), b.Data)
	assert.True(t, captured.Equal(b.Captured))
}

func TestJournal_EmptyData(t *testing.T) {
	j := openJournal(t)
	id, err := j.Put("index.bdmv", nil)
	require.NoError(t, err)

	b, err := j.Get(id)
	require.NoError(t, err)
	assert.Empty(t, b.Data)
}

func TestJournal_Delete(t *testing.T) {
	j := openJournal(t)
	id, err := j.Put("MovieObject.bdmv", []byte{1, 2, 3})
	require.NoError(t, err)

	require.NoError(t, j.Delete(id))
	_, err = j.Get(id)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestJournal_GetMissing(t *testing.T) {
	j := openJournal(t)
	_, err := j.Get(ksuid.New())
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestEntry_Truncated(t *testing.T) {
	var e entry
	_, err := e.Unmarshal([]byte{0, 5, 'a', 'b'})
	assert.Error(t, err)
}
