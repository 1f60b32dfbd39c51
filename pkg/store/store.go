// Package store loads and saves whole BDMV files.
//
// Save never replaces an existing file unless asked to. The existence check
// runs before anything is recomputed or encoded, and a new file is created
// with O_EXCL so a file that appears in the meantime is not clobbered either.
package store

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/go-logr/logr"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/bdmeta/pkg/codec"
)

// Backups keeps the previous contents of a file before it is replaced.
type Backups interface {
	Put(path string, data []byte) (ksuid.KSUID, error)
}

// Files reads and writes metadata files.
type Files struct {
	// Backups, when set, receives the old bytes of every overwritten file.
	Backups Backups
	Log     logr.Logger
}

// Default is used by the per-format Load and Save helpers.
var Default = New(nil, logr.Discard())

// New returns a Files. backups may be nil.
func New(backups Backups, log logr.Logger) *Files {
	return &Files{Backups: backups, Log: log}
}

// Load reads the whole file at path.
func (f *Files) Load(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, codec.IOError("load", errors.Wrapf(err, "read %s", path))
	}
	f.Log.V(1).Info("loaded file", "path", path, "size", len(data))
	return data, nil
}

// Save recomputes rec, encodes it and writes it to path.
func (f *Files) Save(path string, rec codec.Record, overwrite bool) error {
	exists, err := f.guard(path, overwrite)
	if err != nil {
		return err
	}
	codec.Recompute(rec)
	data, err := codec.Encode(rec)
	if err != nil {
		return err
	}
	return f.write(path, data, exists)
}

// WriteBytes writes data to path with the same overwrite rules as Save.
func (f *Files) WriteBytes(path string, data []byte, overwrite bool) error {
	exists, err := f.guard(path, overwrite)
	if err != nil {
		return err
	}
	return f.write(path, data, exists)
}

func (f *Files) guard(path string, overwrite bool) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		if !overwrite {
			return true, codec.DestinationExistsError(path)
		}
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, codec.IOError("save", errors.Wrapf(err, "stat %s", path))
	}
}

func (f *Files) write(path string, data []byte, exists bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return codec.IOError("save", errors.Wrapf(err, "create directory for %s", path))
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if exists {
		if err := f.backup(path); err != nil {
			return err
		}
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}

	file, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return codec.DestinationExistsError(path)
		}
		return codec.IOError("save", errors.Wrapf(err, "open %s", path))
	}
	_, werr := file.Write(data)
	cerr := file.Close()
	if werr != nil {
		return codec.IOError("save", errors.Wrapf(werr, "write %s", path))
	}
	if cerr != nil {
		return codec.IOError("save", errors.Wrapf(cerr, "close %s", path))
	}

	f.Log.Info("saved file", "path", path, "size", len(data), "replaced", exists)
	return nil
}

func (f *Files) backup(path string) error {
	if f.Backups == nil {
		return nil
	}
	old, err := os.ReadFile(path)
	if err != nil {
		return codec.IOError("backup", errors.Wrapf(err, "read %s", path))
	}
	id, err := f.Backups.Put(path, old)
	if err != nil {
		return codec.IOError("backup", errors.Wrapf(err, "back up %s", path))
	}
	f.Log.Info("backed up file", "path", path, "backup", id.String())
	return nil
}
