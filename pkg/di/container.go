// Package di provides dependency injection container
package di

import (
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"

	"github.com/ssargent/bdmeta/pkg/config"
	"github.com/ssargent/bdmeta/pkg/storage"
	"github.com/ssargent/bdmeta/pkg/store"
)

// Container holds all the dependencies for the application
type Container struct {
	config  *config.Config
	log     logr.Logger
	files   *store.Files
	journal *storage.Journal
}

// NewContainer creates a new dependency injection container with the
// default configuration and a discarding logger
func NewContainer() *Container {
	return &Container{
		config: config.DefaultConfig(),
		log:    logr.Discard(),
	}
}

// NewLogger returns a logger writing one line per entry to w. Debug level
// enables V(1) messages.
func NewLogger(w io.Writer, level string) logr.Logger {
	verbosity := 0
	if level == "debug" {
		verbosity = 1
	}
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			fmt.Fprintln(w, prefix, args)
			return
		}
		fmt.Fprintln(w, args)
	}, funcr.Options{Verbosity: verbosity})
}

// Configure applies cfg and logs to w. It drops any file store built for
// the previous configuration.
func (c *Container) Configure(cfg *config.Config, w io.Writer) error {
	if err := c.Close(); err != nil {
		return err
	}
	if w == nil {
		w = os.Stderr
	}
	c.config = cfg
	c.log = NewLogger(w, cfg.Logging.Level)
	c.files = nil
	return nil
}

// GetConfig returns the active configuration
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetLogger returns the application logger
func (c *Container) GetLogger() logr.Logger {
	return c.log
}

// GetJournal opens the backup journal on first use
func (c *Container) GetJournal() (*storage.Journal, error) {
	if c.journal != nil {
		return c.journal, nil
	}
	if c.config.Backup.Dir == "" {
		return nil, fmt.Errorf("no backup dir configured")
	}
	j, err := storage.Open(c.config.Backup.Dir)
	if err != nil {
		return nil, err
	}
	c.log.V(1).Info("opened backup journal", "dir", c.config.Backup.Dir)
	c.journal = j
	return j, nil
}

// GetFiles returns the file store, journaling replaced files when backups
// are enabled
func (c *Container) GetFiles() (*store.Files, error) {
	if c.files != nil {
		return c.files, nil
	}
	if !c.config.Backup.Enabled {
		c.files = store.New(nil, c.log.WithName("store"))
		return c.files, nil
	}
	j, err := c.GetJournal()
	if err != nil {
		return nil, err
	}
	c.files = store.New(j, c.log.WithName("store"))
	return c.files, nil
}

// SetFiles allows overriding the file store (for testing)
func (c *Container) SetFiles(files *store.Files) {
	c.files = files
}

// Close releases the backup journal if it was opened
func (c *Container) Close() error {
	if c.journal == nil {
		return nil
	}
	err := c.journal.Close()
	c.journal = nil
	c.files = nil
	return err
}
