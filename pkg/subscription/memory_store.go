package subscription

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/momentumhq/billingkit/pkg/tier"
)

// MemoryStore is an in-memory Store implementation for tests and local
// development. Safe for concurrent use. Values are copied on the way in
// and out so callers never share row memory.
type MemoryStore struct {
	mu   sync.RWMutex
	subs map[uuid.UUID]*Subscription
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{subs: make(map[uuid.UUID]*Subscription)}
}

func (s *MemoryStore) Get(_ context.Context, userID uuid.UUID) (*Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.subs[userID]
	if !ok {
		return nil, ErrSubscriptionNotFound
	}
	return copySubscription(sub), nil
}

func (s *MemoryStore) Save(_ context.Context, sub *Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subs[sub.UserID] = copySubscription(sub)
	return nil
}

func (s *MemoryStore) ListExpirable(_ context.Context, now time.Time) ([]*Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Subscription
	for _, sub := range s.subs {
		if sub.Status == StatusExpired || !sub.HasTier() {
			continue
		}
		if !sub.EffectiveEnd().After(now) {
			out = append(out, copySubscription(sub))
		}
	}
	return out, nil
}

func (s *MemoryStore) IncrementUsage(_ context.Context, userID uuid.UUID, res tier.Resource) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.subs[userID]
	if !ok {
		return ErrSubscriptionNotFound
	}
	if sub.Usage == nil {
		sub.Usage = ZeroUsage()
	}
	sub.Usage[res]++
	return nil
}

func copySubscription(sub *Subscription) *Subscription {
	out := *sub
	if sub.Usage != nil {
		out.Usage = sub.Usage.Clone()
	}
	out.Tier = copyPtr(sub.Tier)
	out.ScheduledTier = copyPtr(sub.ScheduledTier)
	out.PendingTier = copyPtr(sub.PendingTier)
	out.ScheduledBillingPeriod = copyPtr(sub.ScheduledBillingPeriod)
	out.PendingBillingPeriod = copyPtr(sub.PendingBillingPeriod)
	out.CancelledAt = copyPtr(sub.CancelledAt)
	out.CancellationEffectiveAt = copyPtr(sub.CancellationEffectiveAt)
	return &out
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// MemoryEventStore collects audit records in memory for tests.
type MemoryEventStore struct {
	mu      sync.RWMutex
	records []Record
}

// NewMemoryEventStore creates an empty MemoryEventStore.
func NewMemoryEventStore() *MemoryEventStore {
	return &MemoryEventStore{}
}

func (s *MemoryEventStore) Append(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

// Records returns a snapshot of everything appended so far.
func (s *MemoryEventStore) Records() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}
