package service

import (
	"context"
	"sync"

	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// RateCacheService implements ports.RateCache.
//
// The full rate table is fetched at most once per process lifetime and
// then served from memory with no expiry or refresh, which bounds
// external-call volume at the cost of rates going stale until restart.
// The cache is an injected dependency with an explicit lifetime, not
// ambient global state.
type RateCacheService struct {
	provider ports.RateProvider
	snapshot ports.RateSnapshotStore // optional, best-effort
	log      zerolog.Logger

	mu    sync.Mutex
	rates map[string]decimal.Decimal
}

// NewRateCache creates a RateCacheService. snapshot may be nil; when set
// it is consulted before the provider and updated after a successful
// fetch, so a restarted process can warm up without an external call.
func NewRateCache(provider ports.RateProvider, snapshot ports.RateSnapshotStore, log zerolog.Logger) *RateCacheService {
	return &RateCacheService{
		provider: provider,
		snapshot: snapshot,
		log:      log,
	}
}

// GetRate returns the rate for currency relative to the reference unit,
// populating the table on first use.
func (s *RateCacheService) GetRate(ctx context.Context, currency string) (decimal.Decimal, error) {
	table, err := s.table(ctx)
	if err != nil {
		return decimal.Decimal{}, err
	}
	rate, ok := table[currency]
	if !ok {
		return decimal.Decimal{}, apperror.ErrUnknownCurrency(currency)
	}
	return rate, nil
}

// HasCurrency reports whether currency appears in the rate table.
func (s *RateCacheService) HasCurrency(ctx context.Context, currency string) (bool, error) {
	table, err := s.table(ctx)
	if err != nil {
		return false, err
	}
	_, ok := table[currency]
	return ok, nil
}

// table returns the memoized rate table, fetching it on first call. The
// mutex is held across the fetch so concurrent first callers resolve to
// a single external call.
func (s *RateCacheService) table(ctx context.Context) (map[string]decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rates != nil {
		return s.rates, nil
	}

	if s.snapshot != nil {
		snap, err := s.snapshot.Get(ctx)
		if err != nil {
			s.log.Warn().Err(err).Msg("rate snapshot read failed, falling through to provider")
		} else if len(snap) > 0 {
			s.rates = snap
			s.log.Info().Int("currencies", len(snap)).Msg("rate table loaded from snapshot")
			return s.rates, nil
		}
	}

	fetched, err := s.provider.FetchRates(ctx)
	if err != nil {
		return nil, apperror.ErrProviderUnavailable(err)
	}
	s.rates = fetched

	if s.snapshot != nil {
		if err := s.snapshot.Set(ctx, fetched); err != nil {
			s.log.Warn().Err(err).Msg("failed to store rate snapshot")
		}
	}

	s.log.Info().Int("currencies", len(fetched)).Msg("rate table fetched from provider")
	return s.rates, nil
}
