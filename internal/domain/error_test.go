package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	err := E(CodeQuotaExceeded, "usage.RecordCall", "daily limit reached", nil)
	require.Equal(t, "usage.RecordCall: QUOTA_EXCEEDED: daily limit reached", err.Error())

	bare := E(CodeBackendUnavailable, "", "", errors.New("connection refused"))
	require.Equal(t, "BACKEND_UNAVAILABLE: connection refused", bare.Error())
}

func TestWrapPreservesExistingCode(t *testing.T) {
	inner := E(CodeBackendResponse, "backend.PriceHistory", "missing prices field", nil)
	wrapped := Wrap(CodeInternal, "gateway.dispatch", inner)

	require.Equal(t, CodeBackendResponse, CodeFrom(wrapped))
	require.True(t, IsCode(wrapped, CodeBackendResponse))
}

func TestCodeFromDefaultsToInternal(t *testing.T) {
	require.Equal(t, CodeInternal, CodeFrom(errors.New("boom")))
}

func TestUserMessagePrefersDomainMessage(t *testing.T) {
	err := Wrap(CodeBackendUnavailable, "backend.SearchStores", errors.New("dial tcp: refused"))
	require.Equal(t, "dial tcp: refused", UserMessage(err))

	quota := E(CodeQuotaExceeded, "usage.RecordCall", "Daily limit reached. Upgrade to premium!", nil)
	require.Equal(t, "Daily limit reached. Upgrade to premium!", UserMessage(quota))
}
