package schedule

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const policyKey = "clinic:schedule:policy"

// PolicyStore persists the clinic calendar policy in Redis. A missing key
// falls back to DefaultPolicy so a fresh deployment works with no setup.
type PolicyStore struct {
	redis *redis.Client
}

// NewPolicyStore creates a policy store backed by the given Redis client.
func NewPolicyStore(redisClient *redis.Client) *PolicyStore {
	return &PolicyStore{redis: redisClient}
}

// Get retrieves the calendar policy, returning the default if none is saved.
func (s *PolicyStore) Get(ctx context.Context) (Policy, error) {
	if s == nil || s.redis == nil {
		return DefaultPolicy(), nil
	}

	data, err := s.redis.Get(ctx, policyKey).Bytes()
	if err == redis.Nil {
		return DefaultPolicy(), nil
	}
	if err != nil {
		return Policy{}, fmt.Errorf("schedule: get policy: %w", err)
	}

	var p Policy
	if err := json.Unmarshal(data, &p); err != nil {
		return Policy{}, fmt.Errorf("schedule: unmarshal policy: %w", err)
	}
	return p, nil
}

// Set validates and saves the calendar policy.
func (s *PolicyStore) Set(ctx context.Context, p Policy) error {
	if err := p.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("schedule: marshal policy: %w", err)
	}

	if err := s.redis.Set(ctx, policyKey, data, 0).Err(); err != nil {
		return fmt.Errorf("schedule: set policy: %w", err)
	}
	return nil
}
