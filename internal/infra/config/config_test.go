package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dealmind/internal/domain"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, domain.DefaultBackendBaseURL, cfg.Backend.BaseURL)
	require.Equal(t, domain.DefaultPredictURL, cfg.Backend.PredictURL)
	require.Equal(t, domain.DefaultAffiliateTag, cfg.Affiliate.Tag)
	require.Equal(t, domain.DefaultDailyCallLimit, cfg.Quota.DailyLimit)
	require.Equal(t, domain.DefaultUserID, cfg.User.ID)
	require.Empty(t, cfg.Quota.PremiumURL)
	require.Empty(t, cfg.Observability.ListenAddress)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("DEALMIND_AFFILIATE_TAG", "dealmind-42")
	t.Setenv("DEALMIND_QUOTA_DAILYLIMIT", "3")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "dealmind-42", cfg.Affiliate.Tag)
	require.Equal(t, 3, cfg.Quota.DailyLimit)
}

func TestLoadFileOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dealmind.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend:\n  baseURL: http://backend:8080/api\nquota:\n  dailyLimit: 20\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "http://backend:8080/api", cfg.Backend.BaseURL)
	require.Equal(t, 20, cfg.Quota.DailyLimit)
	// Untouched keys keep their defaults.
	require.Equal(t, domain.DefaultAffiliateTag, cfg.Affiliate.Tag)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("DEALMIND_QUOTA_DAILYLIMIT", "0")

	_, err := Load("")
	require.Error(t, err)
	require.Contains(t, err.Error(), "quota.dailyLimit")
}

func TestWatchReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dealmind.yaml")
	require.NoError(t, os.WriteFile(path, []byte("quota:\n  dailyLimit: 10\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan Config, 1)
	go Watch(ctx, path, zap.NewNop(), func(cfg Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	})

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("quota:\n  dailyLimit: 25\n"), 0o644))

	select {
	case cfg := <-reloaded:
		require.Equal(t, 25, cfg.Quota.DailyLimit)
	case <-time.After(5 * time.Second):
		t.Fatal("config reload not observed")
	}
}
