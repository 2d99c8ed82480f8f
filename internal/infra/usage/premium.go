package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"dealmind/internal/domain"
)

// PremiumChecker answers whether a user holds a premium subscription.
type PremiumChecker interface {
	IsPremium(ctx context.Context, userID string) (bool, error)
}

// StaticChecker is the default subscription store: nobody is premium.
// Real billing lives behind the HTTP checker.
type StaticChecker struct{}

func (StaticChecker) IsPremium(context.Context, string) (bool, error) {
	return false, nil
}

// HTTPChecker asks an external subscription endpoint. The endpoint
// returns {"premium": bool} for GET {url}?user=<id>.
type HTTPChecker struct {
	client   *resty.Client
	endpoint string
}

func NewHTTPChecker(endpoint string, timeout time.Duration) *HTTPChecker {
	client := resty.New().SetTimeout(timeout)
	return &HTTPChecker{client: client, endpoint: endpoint}
}

func (c *HTTPChecker) IsPremium(ctx context.Context, userID string) (bool, error) {
	const op = "usage.HTTPChecker.IsPremium"

	var payload struct {
		Premium bool `json:"premium"`
	}
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("user", userID).
		SetResult(&payload).
		Get(c.endpoint)
	if err != nil {
		return false, domain.Wrap(domain.CodeBackendUnavailable, op, err)
	}
	if resp.IsError() {
		return false, domain.E(domain.CodeBackendUnavailable, op,
			fmt.Sprintf("subscription endpoint returned %d", resp.StatusCode()), nil)
	}
	return payload.Premium, nil
}
