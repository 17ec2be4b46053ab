package service

import (
	"context"
	"fmt"
	"sync"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"

	"github.com/shopspring/decimal"
)

// pairKey identifies an ordered (from, to) currency pair. Ordered,
// because round(rate(to)/rate(from), 2) is not symmetric under rounding:
// A->B and B->A are computed and memoized independently.
type pairKey struct {
	from string
	to   string
}

// ConverterService implements ports.CurrencyConverter.
//
// The pair rate is derived once per ordered pair from the reference-unit
// rates and memoized for the process lifetime. Same-currency conversion
// goes through the same derivation (the ratio is exactly 1), so every
// transfer follows one code path.
type ConverterService struct {
	rateCache ports.RateCache

	mu        sync.RWMutex
	pairRates map[pairKey]decimal.Decimal
}

// NewConverter creates a ConverterService on top of the rate cache.
func NewConverter(rateCache ports.RateCache) *ConverterService {
	return &ConverterService{
		rateCache: rateCache,
		pairRates: make(map[pairKey]decimal.Decimal),
	}
}

// Convert returns round(amount * rate(from, to), 2).
func (s *ConverterService) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	rate, err := s.pairRate(ctx, from, to)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return domain.RoundMoney(amount.Mul(rate)), nil
}

// pairRate returns the memoized rate for the ordered pair, deriving and
// caching it on first use. A miss triggers exactly one derivation; there
// is no retry loop around the lookup.
func (s *ConverterService) pairRate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	key := pairKey{from: from, to: to}

	s.mu.RLock()
	rate, ok := s.pairRates[key]
	s.mu.RUnlock()
	if ok {
		return rate, nil
	}

	fromRate, err := s.rateCache.GetRate(ctx, from)
	if err != nil {
		return decimal.Decimal{}, err
	}
	toRate, err := s.rateCache.GetRate(ctx, to)
	if err != nil {
		return decimal.Decimal{}, err
	}

	// The provider client rejects non-positive rates, but the table can
	// also arrive via snapshot. Dividing by zero panics, so fail closed
	// here regardless of the source.
	if !fromRate.IsPositive() || !toRate.IsPositive() {
		return decimal.Decimal{}, apperror.ErrProviderUnavailable(
			fmt.Errorf("non-positive rate in table: %s=%s, %s=%s", from, fromRate, to, toRate))
	}

	rate = domain.RoundMoney(toRate.Div(fromRate))

	// Last write wins: concurrent derivations agree because the source
	// table is fixed for the process lifetime.
	s.mu.Lock()
	s.pairRates[key] = rate
	s.mu.Unlock()

	return rate, nil
}
