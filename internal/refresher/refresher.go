// Package refresher keeps the usage cache fresh. It never enforces anything
// and never fails: when a refresh is impossible the existing snapshot, stale
// or absent, is returned unchanged.
package refresher

import (
	"context"
	"time"

	"github.com/jung-wan-kim/usage-gate/internal/api"
	"github.com/jung-wan-kim/usage-gate/internal/cache"
	"github.com/jung-wan-kim/usage-gate/internal/domain"
	log "github.com/sirupsen/logrus"
)

// Outcome records what RefreshIfStale did.
type Outcome int

const (
	OutcomeFresh Outcome = iota
	OutcomeRefreshed
	OutcomeNoCredential
	OutcomeFetchFailed
	OutcomeWriteFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRefreshed:
		return "refreshed"
	case OutcomeNoCredential:
		return "no credential"
	case OutcomeFetchFailed:
		return "fetch failed"
	case OutcomeWriteFailed:
		return "write failed"
	default:
		return "fresh"
	}
}

// TokenFunc resolves an access token.
type TokenFunc func(ctx context.Context) (string, error)

// FetchFunc queries the accounting service.
type FetchFunc func(ctx context.Context, token string) (*api.UsageData, error)

type Refresher struct {
	store *cache.Store
	ttl   time.Duration
	token TokenFunc
	fetch FetchFunc
	now   func() time.Time
}

// New returns a refresher backed by the real credential lookup and API.
func New(store *cache.Store, ttl time.Duration) *Refresher {
	return &Refresher{
		store: store,
		ttl:   ttl,
		token: api.ResolveToken,
		fetch: api.FetchUsage,
		now:   time.Now,
	}
}

// WithSources replaces the credential and fetch collaborators.
func (r *Refresher) WithSources(token TokenFunc, fetch FetchFunc) *Refresher {
	r.token = token
	r.fetch = fetch
	return r
}

// RefreshIfStale returns the cached snapshot when it is younger than the
// TTL. Otherwise it fetches, persists and returns a fresh one. A nil
// snapshot means no data is available at all.
func (r *Refresher) RefreshIfStale(ctx context.Context) (*domain.Snapshot, Outcome) {
	current, ok := r.store.Read()
	if ok && !current.IsStale(r.now(), r.ttl) {
		return current, OutcomeFresh
	}
	return r.refresh(ctx, current)
}

// Refresh fetches regardless of the cache age.
func (r *Refresher) Refresh(ctx context.Context) (*domain.Snapshot, Outcome) {
	current, _ := r.store.Read()
	return r.refresh(ctx, current)
}

func (r *Refresher) refresh(ctx context.Context, current *domain.Snapshot) (*domain.Snapshot, Outcome) {
	token, err := r.token(ctx)
	if err != nil {
		log.Debugf("refresher: skip refresh: %v", err)
		return current, OutcomeNoCredential
	}

	data, err := r.fetch(ctx, token)
	if err != nil {
		log.Warnf("refresher: %v", err)
		return current, OutcomeFetchFailed
	}

	fresh := data.Snapshot()
	if fresh.CachedAt.IsZero() {
		fresh.CachedAt = r.now()
	}
	if err := r.store.Write(fresh); err != nil {
		log.Warnf("refresher: %v", err)
		return &fresh, OutcomeWriteFailed
	}
	log.Debugf("refresher: cached 5h=%s 7d=%s", fresh.FiveHour.Percent(), fresh.SevenDay.Percent())
	return &fresh, OutcomeRefreshed
}
