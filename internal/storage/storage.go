// Package storage keeps a local journal of dispatched API calls.
package storage

import (
	"fmt"
	"strings"
	"time"
)

// Entry describes one exchange. Bodies and headers are never stored.
type Entry struct {
	ID         string    `json:"id" yaml:"id"`
	Method     string    `json:"method" yaml:"method"`
	Path       string    `json:"path" yaml:"path"`
	URL        string    `json:"url" yaml:"url"`
	StatusCode int       `json:"status_code,omitempty" yaml:"status_code,omitempty"`
	DurationMs int64     `json:"duration_ms" yaml:"duration_ms"`
	Error      string    `json:"error,omitempty" yaml:"error,omitempty"`
	At         time.Time `json:"at" yaml:"at"`
}

// Store records exchanges and lists the most recent ones.
type Store interface {
	Close() error
	Record(entry Entry) error
	// Recent returns up to limit unexpired entries, newest first. limit <= 0 means all.
	Recent(limit int) ([]Entry, error)
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	EntryTTL        time.Duration
	CleanupInterval time.Duration
}

const (
	defaultEntryTTL        = 30 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.EntryTTL <= 0 {
		opts.EntryTTL = defaultEntryTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                { return nil }
func (noopStore) Record(Entry) error          { return nil }
func (noopStore) Recent(int) ([]Entry, error) { return nil, nil }
