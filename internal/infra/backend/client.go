package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"dealmind/internal/domain"
)

// Client is the thin HTTP adapter to the external tracking, search,
// history, deals and prediction services. Transport failures and
// non-2xx statuses surface as BACKEND_UNAVAILABLE; payloads that do
// not decode or lack required fields surface as BACKEND_RESPONSE. The
// client never retries; resilience belongs to the caller.
type Client struct {
	http       *resty.Client
	predictURL string
	logger     *zap.Logger
}

type Config struct {
	BaseURL    string
	PredictURL string
	Timeout    time.Duration
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	http := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")
	return &Client{
		http:       http,
		predictURL: cfg.PredictURL,
		logger:     logger.Named("backend"),
	}
}

// StartTracking registers a price watch with the tracking service.
func (c *Client) StartTracking(ctx context.Context, productURL string, targetPrice float64, email string) (domain.TrackReceipt, error) {
	const op = "backend.StartTracking"

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"productUrl":  productURL,
			"targetPrice": targetPrice,
			"email":       email,
		}).
		Post("/track")
	if err := c.transportErr(op, resp, err); err != nil {
		return domain.TrackReceipt{}, err
	}

	var receipt domain.TrackReceipt
	if err := decode(op, resp.Body(), &receipt); err != nil {
		return domain.TrackReceipt{}, err
	}
	if receipt.TrackingID == "" {
		return domain.TrackReceipt{}, domain.E(domain.CodeBackendResponse, op, "track response missing trackingId", nil)
	}
	return receipt, nil
}

// SearchStores queries the multi-store search service.
func (c *Client) SearchStores(ctx context.Context, productName string) ([]domain.StoreOffer, error) {
	const op = "backend.SearchStores"

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("q", productName).
		Get("/search")
	if err := c.transportErr(op, resp, err); err != nil {
		return nil, err
	}

	var payload struct {
		Results []domain.StoreOffer `json:"results"`
	}
	if err := decode(op, resp.Body(), &payload); err != nil {
		return nil, err
	}
	for _, offer := range payload.Results {
		if offer.Store == "" || offer.URL == "" {
			return nil, domain.E(domain.CodeBackendResponse, op, "search result missing store or url", nil)
		}
	}
	return payload.Results, nil
}

// PriceHistory fetches the per-day price series for a product.
func (c *Client) PriceHistory(ctx context.Context, productURL string, days int) (domain.History, error) {
	const op = "backend.PriceHistory"

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("url", productURL).
		SetQueryParam("days", strconv.Itoa(days)).
		Get("/history")
	if err := c.transportErr(op, resp, err); err != nil {
		return domain.History{}, err
	}

	var history domain.History
	if err := decode(op, resp.Body(), &history); err != nil {
		return domain.History{}, err
	}
	return history, nil
}

// CategoryDeals lists current discounts in a category.
func (c *Client) CategoryDeals(ctx context.Context, category string, minDiscount float64) ([]domain.Deal, error) {
	const op = "backend.CategoryDeals"

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("category", category).
		SetQueryParam("minDiscount", strconv.FormatFloat(minDiscount, 'f', -1, 64)).
		Get("/deals")
	if err := c.transportErr(op, resp, err); err != nil {
		return nil, err
	}

	var payload struct {
		Deals []domain.Deal `json:"deals"`
	}
	if err := decode(op, resp.Body(), &payload); err != nil {
		return nil, err
	}
	for _, deal := range payload.Deals {
		if deal.Title == "" || deal.URL == "" {
			return nil, domain.E(domain.CodeBackendResponse, op, "deal missing title or url", nil)
		}
	}
	return payload.Deals, nil
}

// PredictDrop asks the prediction service for a price-drop forecast.
func (c *Client) PredictDrop(ctx context.Context, productURL string) (domain.Prediction, error) {
	const op = "backend.PredictDrop"

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"product_url": productURL,
			// The prediction service expects a reference price; the
			// scraper feed is not wired yet so a placeholder goes out.
			"current_price": 100,
		}).
		Post(c.predictURL)
	if err := c.transportErr(op, resp, err); err != nil {
		return domain.Prediction{}, err
	}

	var prediction domain.Prediction
	if err := decode(op, resp.Body(), &prediction); err != nil {
		return domain.Prediction{}, err
	}
	if prediction.Trend == "" {
		return domain.Prediction{}, domain.E(domain.CodeBackendResponse, op, "prediction missing trend", nil)
	}
	return prediction, nil
}

func (c *Client) transportErr(op string, resp *resty.Response, err error) error {
	if err != nil {
		c.logger.Warn("backend call failed", zap.String("op", op), zap.Error(err))
		return domain.Wrap(domain.CodeBackendUnavailable, op, err)
	}
	if resp.IsError() {
		c.logger.Warn("backend returned error status",
			zap.String("op", op), zap.Int("status", resp.StatusCode()))
		return domain.E(domain.CodeBackendUnavailable, op,
			fmt.Sprintf("backend returned status %d", resp.StatusCode()), nil)
	}
	return nil
}

func decode(op string, body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return domain.E(domain.CodeBackendResponse, op, "backend payload is not valid JSON", err)
	}
	return nil
}
