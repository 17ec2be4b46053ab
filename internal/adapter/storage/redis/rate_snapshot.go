package redis

import (
	"context"
	"encoding/json"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// RateSnapshot implements ports.RateSnapshotStore using Redis.
// It holds the last rate table fetched from the provider so a freshly
// started process can skip the external call. It is best-effort only:
// the in-process rate cache never re-reads it after first populate.
type RateSnapshot struct {
	client *goredis.Client
	key    string
}

// NewRateSnapshot creates a new Redis-backed rate table snapshot store.
func NewRateSnapshot(client *goredis.Client) *RateSnapshot {
	return &RateSnapshot{
		client: client,
		key:    "rates:latest",
	}
}

// Get retrieves the snapshot rate table.
// Returns nil, nil if no snapshot has been stored.
func (s *RateSnapshot) Get(ctx context.Context) (map[string]decimal.Decimal, error) {
	val, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis rate snapshot get: %w", err)
	}

	rates := make(map[string]decimal.Decimal)
	if err := json.Unmarshal(val, &rates); err != nil {
		return nil, fmt.Errorf("decode rate snapshot: %w", err)
	}
	return rates, nil
}

// Set stores the rate table snapshot. No TTL: the snapshot stays until
// the next successful provider fetch overwrites it.
func (s *RateSnapshot) Set(ctx context.Context, rates map[string]decimal.Decimal) error {
	payload, err := json.Marshal(rates)
	if err != nil {
		return fmt.Errorf("encode rate snapshot: %w", err)
	}
	if err := s.client.Set(ctx, s.key, payload, 0).Err(); err != nil {
		return fmt.Errorf("redis rate snapshot set: %w", err)
	}
	return nil
}
