package usage

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dealmind/internal/domain"
)

type stubPremium struct {
	premium bool
	err     error
}

func (s stubPremium) IsPremium(context.Context, string) (bool, error) {
	return s.premium, s.err
}

func TestRecordCallEnforcesDailyLimit(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger(NewMemoryStore(), StaticChecker{}, 10, zap.NewNop())

	for i := 0; i < 10; i++ {
		require.NoError(t, ledger.RecordCall(ctx, "alice", "find_deals", 0))
	}

	err := ledger.RecordCall(ctx, "alice", "find_deals", 0)
	require.Error(t, err)
	require.True(t, domain.IsCode(err, domain.CodeQuotaExceeded))

	record, err := ledger.Lookup("alice")
	require.NoError(t, err)
	require.Equal(t, 10, record.Calls)
}

func TestRecordCallPremiumBypassesQuota(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger(NewMemoryStore(), stubPremium{premium: true}, 10, zap.NewNop())

	for i := 0; i < 25; i++ {
		require.NoError(t, ledger.RecordCall(ctx, "vip", "track_price", 0))
	}

	record, err := ledger.Lookup("vip")
	require.NoError(t, err)
	require.Equal(t, 25, record.Calls)
}

func TestRecordCallPremiumOutageStaysFreeTier(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger(NewMemoryStore(), stubPremium{err: context.DeadlineExceeded}, 1, zap.NewNop())

	require.NoError(t, ledger.RecordCall(ctx, "bob", "find_deals", 0))
	err := ledger.RecordCall(ctx, "bob", "find_deals", 0)
	require.True(t, domain.IsCode(err, domain.CodeQuotaExceeded))
}

func TestRecordCallAccumulatesRevenueAndLastTool(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger(NewMemoryStore(), StaticChecker{}, 10, zap.NewNop())

	require.NoError(t, ledger.RecordCall(ctx, "alice", "track_price", 1.25))
	require.NoError(t, ledger.RecordCall(ctx, "alice", "find_deals", 0.75))

	record, err := ledger.Lookup("alice")
	require.NoError(t, err)
	require.Equal(t, 2, record.Calls)
	require.InDelta(t, 2.0, record.Revenue, 1e-9)
	require.Equal(t, "find_deals", record.LastTool)
}

func TestRecordCallResetsAtDayBoundary(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC)
	ledger := NewLedger(NewMemoryStore(), StaticChecker{}, 1, zap.NewNop(),
		WithClock(func() time.Time { return now }))

	require.NoError(t, ledger.RecordCall(ctx, "alice", "find_deals", 0))
	err := ledger.RecordCall(ctx, "alice", "find_deals", 0)
	require.True(t, domain.IsCode(err, domain.CodeQuotaExceeded))

	now = now.Add(2 * time.Hour) // next UTC day
	require.NoError(t, ledger.RecordCall(ctx, "alice", "find_deals", 0))
}

func TestRecordCallConcurrentBoundary(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger(NewMemoryStore(), StaticChecker{}, 10, zap.NewNop())

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- ledger.RecordCall(ctx, "alice", "find_deals", 0)
		}()
	}
	wg.Wait()
	close(errs)

	passed := 0
	for err := range errs {
		if err == nil {
			passed++
			continue
		}
		require.True(t, domain.IsCode(err, domain.CodeQuotaExceeded))
	}
	require.Equal(t, 10, passed)

	record, err := ledger.Lookup("alice")
	require.NoError(t, err)
	require.Equal(t, 10, record.Calls)
}

func TestSweepRemovesOnlyStaleBuckets(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	ledger := NewLedger(store, StaticChecker{}, 10, zap.NewNop(),
		WithClock(func() time.Time { return now }))

	require.NoError(t, store.Put(Key{UserID: "alice", Day: "2026-03-01"}, Record{Calls: 3}))
	require.NoError(t, store.Put(Key{UserID: "alice", Day: "2026-03-09"}, Record{Calls: 5}))
	require.NoError(t, store.Put(Key{UserID: "bob", Day: "2026-02-20"}, Record{Calls: 1}))

	removed, err := ledger.Sweep(7)
	require.NoError(t, err)
	require.Equal(t, 2, removed)

	keys, err := store.Keys()
	require.NoError(t, err)
	require.Equal(t, []Key{{UserID: "alice", Day: "2026-03-09"}}, keys)
}
