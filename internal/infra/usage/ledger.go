package usage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"dealmind/internal/domain"
)

// Ledger counts tool calls and accumulated affiliate revenue per user
// per UTC day and enforces the free-tier daily quota. Premium users
// bypass the quota entirely.
type Ledger struct {
	store   Store
	premium PremiumChecker
	logger  *zap.Logger
	now     func() time.Time

	mu    sync.Mutex
	limit int
}

type LedgerOption func(*Ledger)

// WithClock overrides the time source, used by tests to cross day
// boundaries.
func WithClock(now func() time.Time) LedgerOption {
	return func(l *Ledger) { l.now = now }
}

func NewLedger(store Store, premium PremiumChecker, limit int, logger *zap.Logger, opts ...LedgerOption) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	if premium == nil {
		premium = StaticChecker{}
	}
	ledger := &Ledger{
		store:   store,
		premium: premium,
		logger:  logger.Named("usage"),
		now:     time.Now,
		limit:   limit,
	}
	for _, opt := range opts {
		opt(ledger)
	}
	return ledger
}

// RecordCall accounts one tool invocation for the user. When the user
// is not premium and today's bucket has already reached the daily
// limit, it fails with QUOTA_EXCEEDED and leaves the bucket untouched.
// Check and increment run under one lock so two concurrent calls can
// never both pass the same boundary check.
func (l *Ledger) RecordCall(ctx context.Context, userID, tool string, affiliateRevenue float64) error {
	const op = "usage.RecordCall"

	key := KeyFor(userID, l.now())

	l.mu.Lock()
	defer l.mu.Unlock()

	record, _, err := l.store.Get(key)
	if err != nil {
		return domain.Wrap(domain.CodeInternal, op, err)
	}

	if record.Calls >= l.limit && !l.isPremium(ctx, userID) {
		l.logger.Info("daily quota exhausted",
			zap.String("user", userID),
			zap.String("tool", tool),
			zap.Int("calls", record.Calls),
		)
		return domain.E(domain.CodeQuotaExceeded, op,
			fmt.Sprintf("Daily limit reached (%d calls). Upgrade to premium!", l.limit), nil)
	}

	record.Calls++
	record.Revenue += affiliateRevenue
	record.LastTool = tool
	if err := l.store.Put(key, record); err != nil {
		return domain.Wrap(domain.CodeInternal, op, err)
	}
	return nil
}

// Lookup returns the current bucket for the user, zero-valued when the
// user has not called today.
func (l *Ledger) Lookup(userID string) (Record, error) {
	record, _, err := l.store.Get(KeyFor(userID, l.now()))
	if err != nil {
		return Record{}, domain.Wrap(domain.CodeInternal, "usage.Lookup", err)
	}
	return record, nil
}

// SetLimit swaps the daily quota, used on config reload.
func (l *Ledger) SetLimit(limit int) {
	l.mu.Lock()
	l.limit = limit
	l.mu.Unlock()
}

func (l *Ledger) isPremium(ctx context.Context, userID string) bool {
	premium, err := l.premium.IsPremium(ctx, userID)
	if err != nil {
		// A billing outage must not grant unlimited calls.
		l.logger.Warn("premium check failed, treating as free tier",
			zap.String("user", userID), zap.Error(err))
		return false
	}
	return premium
}

// Sweep deletes buckets older than olderThan days. Today's buckets are
// never touched.
func (l *Ledger) Sweep(olderThan int) (int, error) {
	cutoff := l.now().UTC().AddDate(0, 0, -olderThan).Format(dayFormat)

	keys, err := l.store.Keys()
	if err != nil {
		return 0, domain.Wrap(domain.CodeInternal, "usage.Sweep", err)
	}
	removed := 0
	for _, key := range keys {
		if key.Day >= cutoff {
			continue
		}
		if err := l.store.Delete(key); err != nil {
			return removed, domain.Wrap(domain.CodeInternal, "usage.Sweep", err)
		}
		removed++
	}
	return removed, nil
}

// RunSweeper garbage-collects stale buckets until the context ends.
func (l *Ledger) RunSweeper(ctx context.Context, interval time.Duration, olderThan int) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			removed, err := l.Sweep(olderThan)
			if err != nil {
				l.logger.Warn("usage sweep failed", zap.Error(err))
				continue
			}
			if removed > 0 {
				l.logger.Info("swept stale usage buckets", zap.Int("removed", removed))
			}
		}
	}
}
