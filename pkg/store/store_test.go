package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/go-logr/logr"
	"github.com/segmentio/ksuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/bdmeta/pkg/codec"
)

// blob is [Length(2)][payload]
type blob struct {
	Length  uint16
	Payload []byte
	updates int
}

func (b *blob) Unmarshal(p []byte) (int, error) {
	r := codec.NewReader(p, "blob")
	b.Length = r.U16()
	b.Payload = r.Bytes(int(b.Length))
	return r.Offset(), r.Err()
}

func (b *blob) Marshal(p []byte) (int, error) {
	w := codec.NewWriter(p, "blob")
	w.U16(b.Length)
	w.Bytes(b.Payload)
	return w.Offset(), w.Err()
}

func (b *blob) Len() int                 { return 2 + len(b.Payload) }
func (b *blob) Children() []codec.Record { return nil }
func (b *blob) DisplaySize() int         { return len(b.Payload) }
func (b *blob) StoredLength() int        { return int(b.Length) }
func (b *blob) SetStoredLength(n int)    { b.Length = uint16(n) }
func (b *blob) Update()                  { b.updates++ }

type memBackups struct {
	paths []string
	data  [][]byte
}

func (m *memBackups) Put(path string, data []byte) (ksuid.KSUID, error) {
	m.paths = append(m.paths, path)
	m.data = append(m.data, data)
	return ksuid.New(), nil
}

func TestFiles_SaveAndLoad(t *testing.T) {
	f := New(nil, logr.Discard())
	path := filepath.Join(t.TempDir(), "BDMV", "PLAYLIST", "00001.mpls")

	require.NoError(t, f.Save(path, &blob{Payload: []byte("abc")}, false))

	data, err := f.Load(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 3, 'a', 'b', 'c'}, data)
}

func TestFiles_SaveRefusesExisting(t *testing.T) {
	f := New(nil, logr.Discard())
	path := filepath.Join(t.TempDir(), "00001.mpls")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0644))

	rec := &blob{Payload: []byte("new")}
	err := f.Save(path, rec, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, codec.ErrDestinationExists))
	assert.Zero(t, rec.updates, "nothing is recomputed before the guard")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("old"), data)
}

func TestFiles_SaveOverwriteBacksUp(t *testing.T) {
	backups := &memBackups{}
	f := New(backups, logr.Discard())
	path := filepath.Join(t.TempDir(), "00001.mpls")
	require.NoError(t, os.WriteFile(path, []byte("old contents"), 0644))

	require.NoError(t, f.Save(path, &blob{Payload: []byte("x")}, true))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 'x'}, data)
	assert.Equal(t, []string{path}, backups.paths)
	assert.Equal(t, []byte("old contents"), backups.data[0])
}

func TestFiles_SaveInvalidWritesNothing(t *testing.T) {
	f := New(nil, logr.Discard())
	path := filepath.Join(t.TempDir(), "out.bin")

	// 70000 bytes cannot be described by a 16-bit length.
	err := f.Save(path, &blob{Payload: make([]byte, 70000)}, false)
	require.Error(t, err)
	assert.NoFileExists(t, path)
}

func TestFiles_WriteBytes(t *testing.T) {
	f := New(nil, logr.Discard())
	path := filepath.Join(t.TempDir(), "nested", "dir", "raw.bin")

	require.NoError(t, f.WriteBytes(path, []byte{1, 2}, false))
	err := f.WriteBytes(path, []byte{3}, false)
	assert.True(t, errors.Is(err, codec.ErrDestinationExists))

	require.NoError(t, f.WriteBytes(path, []byte{3}, true))
	data, err := f.Load(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{3}, data)
}

func TestFiles_LoadMissing(t *testing.T) {
	_, err := Default.Load(filepath.Join(t.TempDir(), "missing.clpi"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, codec.ErrIO))
}
