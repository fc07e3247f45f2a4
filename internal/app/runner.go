package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/quickpay-go/internal/config"
	"github.com/samvad-hq/quickpay-go/internal/logger"
	"github.com/samvad-hq/quickpay-go/internal/storage"
	"github.com/samvad-hq/quickpay-go/pkg/httpclient"
	"github.com/samvad-hq/quickpay-go/pkg/quickpay"
)

// Runner wires config, logging, the API client and the exchange journal for the CLI.
type Runner struct {
	cfg    *config.Config
	client *quickpay.Client
	store  storage.Store
	log    logger.Logger
}

// NewRunner builds a runner from config. Extra client options are applied last.
func NewRunner(cfg *config.Config, log logger.Logger, opts ...quickpay.Option) (*Runner, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}

	clientOpts := []quickpay.Option{
		quickpay.WithRestyClient(httpclient.NewRestyHTTPClient(cfg.RequestTimeout)),
		quickpay.WithArgSeparator(cfg.ArgSeparator),
		quickpay.WithLogger(log),
	}
	clientOpts = append(clientOpts, opts...)
	client := quickpay.NewClient(cfg.APIKey, clientOpts...)

	store, err := storage.NewStore(cfg.JournalType, cfg.JournalPath, storage.Options{
		EntryTTL:        cfg.JournalTTL,
		CleanupInterval: cfg.JournalCleanupInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("init journal: %w", err)
	}
	log.DebugObj("journal initialized", "journal_config", map[string]any{
		"type":                     cfg.JournalType,
		"path":                     cfg.JournalPath,
		"entry_ttl_seconds":        int(cfg.JournalTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.JournalCleanupInterval.Seconds()),
	})

	return &Runner{
		cfg:    cfg,
		client: client,
		store:  store,
		log:    log,
	}, nil
}

// Call dispatches one API request and journals its outcome.
func (r *Runner) Call(ctx context.Context, verb, path string, params quickpay.Params) (*quickpay.Response, error) {
	if r == nil || r.client == nil {
		return nil, fmt.Errorf("runner is not initialized")
	}

	verb = strings.ToUpper(strings.TrimSpace(verb))
	start := time.Now()
	resp, err := r.client.Request.Do(ctx, verb, path, params)

	entry := storage.Entry{
		Method:     verb,
		Path:       path,
		URL:        r.client.Request.LastURL(),
		DurationMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		entry.Error = err.Error()
	} else {
		entry.StatusCode = resp.HTTPStatus()
	}
	r.record(entry)

	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", verb, path, err)
	}
	return resp, nil
}

// History returns the most recent journal entries.
func (r *Runner) History(limit int) ([]storage.Entry, error) {
	if r == nil || r.store == nil {
		return nil, fmt.Errorf("runner is not initialized")
	}
	return r.store.Recent(limit)
}

// Config returns the runner configuration.
func (r *Runner) Config() *config.Config { return r.cfg }

// Close releases the journal.
func (r *Runner) Close() error {
	if r == nil || r.store == nil {
		return nil
	}
	return r.store.Close()
}

func (r *Runner) record(entry storage.Entry) {
	if err := r.store.Record(entry); err != nil {
		r.log.WarnObj("journal write failed", "journal_error", map[string]any{
			"path":  entry.Path,
			"error": err.Error(),
		})
	}
}
