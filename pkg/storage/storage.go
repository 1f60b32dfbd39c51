// Package storage keeps backups of replaced metadata files in a pebble
// database keyed by KSUID, so the newest backups sort last.
package storage

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/bdmeta/pkg/codec"
)

var ErrNotFound = errors.New("backup not found")

// Backup is a copy of a file taken before it was overwritten.
type Backup struct {
	ID       ksuid.KSUID
	Path     string
	Captured time.Time
	Data     []byte
}

// entry is the stored value: [path len(2)][path][captured ns(8)][data len(4)][data]
type entry struct {
	Path     string
	Captured int64
	Data     []byte
}

func (e *entry) Unmarshal(b []byte) (int, error) {
	r := codec.NewReader(b, "backup")
	e.Path = r.String(int(r.U16()))
	e.Captured = int64(r.U64())
	e.Data = r.Bytes(int(r.U32()))
	return r.Offset(), r.Err()
}

func (e *entry) Marshal(b []byte) (int, error) {
	w := codec.NewWriter(b, "backup")
	w.U16(uint16(len(e.Path)))
	w.String(e.Path, len(e.Path))
	w.U64(uint64(e.Captured))
	w.U32(uint32(len(e.Data)))
	w.Bytes(e.Data)
	return w.Offset(), w.Err()
}

func (e *entry) Len() int                 { return 14 + len(e.Path) + len(e.Data) }
func (e *entry) Children() []codec.Record { return nil }

// Journal stores backups.
type Journal struct {
	db  *pebble.DB
	now func() time.Time
}

// Open opens or creates the journal in dir.
func Open(dir string) (*Journal, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "open backup journal %s", dir)
	}
	return &Journal{db: db, now: time.Now}, nil
}

// Put stores a backup of data taken from path and returns its id.
func (j *Journal) Put(path string, data []byte) (ksuid.KSUID, error) {
	if len(path) > 0xFFFF {
		return ksuid.Nil, errors.Newf("path too long: %d bytes", len(path))
	}
	now := j.now()
	id, err := ksuid.NewRandomWithTime(now)
	if err != nil {
		return ksuid.Nil, errors.WithStack(err)
	}
	value, err := codec.Encode(&entry{Path: path, Captured: now.UnixNano(), Data: data})
	if err != nil {
		return ksuid.Nil, err
	}
	if err := j.db.Set(id.Bytes(), value, pebble.Sync); err != nil {
		return ksuid.Nil, errors.Wrap(err, "store backup")
	}
	return id, nil
}

// Get returns the backup with id.
func (j *Journal) Get(id ksuid.KSUID) (*Backup, error) {
	value, closer, err := j.db.Get(id.Bytes())
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, errors.Wrapf(ErrNotFound, "%s", id)
		}
		return nil, errors.Wrap(err, "read backup")
	}
	defer closer.Close()

	var e entry
	if err := codec.Decode(value, &e); err != nil {
		return nil, err
	}
	return &Backup{
		ID:       id,
		Path:     e.Path,
		Captured: time.Unix(0, e.Captured),
		Data:     e.Data,
	}, nil
}

// Delete removes the backup with id.
func (j *Journal) Delete(id ksuid.KSUID) error {
	return j.db.Delete(id.Bytes(), pebble.Sync)
}

func (j *Journal) Close() error {
	return j.db.Close()
}
