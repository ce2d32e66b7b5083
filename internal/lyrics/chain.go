package lyrics

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"lyricindex/internal/logging"
)

// Fetcher resolves lyrics for a query. *Chain satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, q Query) (Result, error)
}

// Chain tries providers in order and returns the first lyrics found. Every
// call is recorded in the store, and the page that served the lyrics is
// remembered so later runs fetch it directly.
type Chain struct {
	providers []Provider
	store     URLStore
	logger    *slog.Logger
	runID     string
	now       func() time.Time
}

// NewChain builds a chain. store may be nil.
func NewChain(providers []Provider, store URLStore, logger *slog.Logger, runID string) *Chain {
	return &Chain{
		providers: providers,
		store:     store,
		logger:    logging.NewComponentLogger(logger, "lyrics"),
		runID:     runID,
		now:       time.Now,
	}
}

// Fetch returns ErrNotFound when no provider has the song. Provider failures
// other than not-found are logged and the next provider is tried; only
// context cancellation aborts the chain. A remembered URL that no longer has
// the lyrics is forgotten and the provider's derived URL is tried once.
func (c *Chain) Fetch(ctx context.Context, q Query) (Result, error) {
	for _, provider := range c.providers {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		attemptQuery := q
		attemptQuery.KnownURL = c.knownURL(ctx, provider.Name(), q)

		logger := c.logger.With(
			logging.String("provider", provider.Name()),
			logging.String("album", q.Album),
			logging.String("title", q.Title),
		)
		result, err := provider.Fetch(ctx, attemptQuery)
		if errors.Is(err, ErrNotFound) && c.stale(provider, q, attemptQuery.KnownURL) {
			c.record(ctx, provider.Name(), q, attemptQuery.KnownURL, OutcomeNotFound, "remembered url no longer serves lyrics")
			c.forget(ctx, provider.Name(), q)
			logger.Info("remembered url is stale, retrying derived url", logging.String("url", attemptQuery.KnownURL))
			attemptQuery.KnownURL = ""
			result, err = provider.Fetch(ctx, attemptQuery)
		}
		switch {
		case err == nil:
			c.record(ctx, provider.Name(), q, result.URL, OutcomeFound, "")
			c.remember(ctx, provider.Name(), q, result.URL)
			logger.Info("lyrics found", logging.String("url", result.URL))
			return result, nil
		case errors.Is(err, ErrNotFound):
			c.record(ctx, provider.Name(), q, attemptQuery.KnownURL, OutcomeNotFound, "")
			logger.Debug("provider has no lyrics")
		case ctx.Err() != nil:
			return Result{}, ctx.Err()
		default:
			c.record(ctx, provider.Name(), q, attemptQuery.KnownURL, OutcomeError, err.Error())
			logging.WarnWithContext(logger, "lyrics provider failed", "provider_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check network access and the provider URL in config"),
				logging.String(logging.FieldImpact, "falling back to the next provider"),
			)
		}
	}
	return Result{}, ErrNotFound
}

func (c *Chain) knownURL(ctx context.Context, provider string, q Query) string {
	if q.KnownURL != "" || c.store == nil {
		return q.KnownURL
	}
	known, err := c.store.KnownURL(ctx, provider, q.Album, q.Title)
	if err != nil {
		c.ledgerWarning("read known url", err)
		return ""
	}
	return known
}

// stale reports whether known came from the store and differs from the URL
// provider derives on its own.
func (c *Chain) stale(provider Provider, q Query, known string) bool {
	if known == "" || q.KnownURL != "" {
		return false
	}
	locator, ok := provider.(Locator)
	if !ok {
		return false
	}
	derived := q
	derived.KnownURL = ""
	return locator.URL(derived) != known
}

func (c *Chain) forget(ctx context.Context, provider string, q Query) {
	if c.store == nil {
		return
	}
	if err := c.store.ForgetURL(ctx, provider, q.Album, q.Title); err != nil {
		c.ledgerWarning("forget url", err)
	}
}

func (c *Chain) remember(ctx context.Context, provider string, q Query, url string) {
	if c.store == nil || url == "" {
		return
	}
	if err := c.store.RememberURL(ctx, provider, q.Album, q.Title, url); err != nil {
		c.ledgerWarning("remember url", err)
	}
}

func (c *Chain) record(ctx context.Context, provider string, q Query, url, outcome, detail string) {
	if c.store == nil {
		return
	}
	err := c.store.RecordAttempt(ctx, Attempt{
		RunID:    c.runID,
		Provider: provider,
		Album:    q.Album,
		Title:    q.Title,
		URL:      url,
		Outcome:  outcome,
		Detail:   detail,
		At:       c.now().UTC(),
	})
	if err != nil {
		c.ledgerWarning("record attempt", err)
	}
}

func (c *Chain) ledgerWarning(op string, err error) {
	logging.WarnWithContext(c.logger, "fetch ledger unavailable", "ledger_write_failed",
		logging.String("operation", op),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check state_dir permissions"),
		logging.String(logging.FieldImpact, "fetch history for this song is incomplete"),
	)
}
