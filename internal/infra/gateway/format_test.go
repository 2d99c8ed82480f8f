package gateway

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"dealmind/internal/domain"
	"dealmind/internal/infra/affiliate"
)

func TestRenderPriceChartScalesBars(t *testing.T) {
	chart := renderPriceChart([]domain.PricePoint{
		{Date: "2026-02-01", Price: 100},
		{Date: "2026-02-02", Price: 150},
		{Date: "2026-02-03", Price: 200},
	})

	lines := strings.Split(chart, "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "2026-02-01: █ $100", lines[0])
	require.Equal(t, "2026-02-02: █████ $150", lines[1])
	require.Equal(t, "2026-02-03: ██████████ $200", lines[2])
}

func TestRenderPriceChartFlatSeriesKeepsOneBar(t *testing.T) {
	chart := renderPriceChart([]domain.PricePoint{
		{Date: "2026-02-01", Price: 99.99},
		{Date: "2026-02-02", Price: 99.99},
	})

	for _, line := range strings.Split(chart, "\n") {
		require.Equal(t, 1, strings.Count(line, "█"))
	}
}

func TestRenderPriceChartEmptySeries(t *testing.T) {
	require.Equal(t, "No data available", renderPriceChart(nil))
}

func TestRankOffersSortsAndTruncates(t *testing.T) {
	tagger := affiliate.New("dealmind-20")
	offers := []domain.StoreOffer{
		{Store: "BestBuy", URL: "https://bestbuy.com/product/67890", CurrentPrice: 104.99, OriginalPrice: 134.99},
		{Store: "Amazon", URL: "https://amazon.com/product/12345", CurrentPrice: 99.99, OriginalPrice: 129.99},
		{Store: "Target", URL: "https://target.com/p/1", CurrentPrice: 119.99, OriginalPrice: 129.99},
	}

	ranked := rankOffers(offers, 2, tagger)
	require.Len(t, ranked, 2)
	require.Equal(t, "Amazon", ranked[0].Store)
	require.Equal(t, "https://amazon.com/product/12345?tag=dealmind-20", ranked[0].AffiliateURL)
	require.InDelta(t, 30.0, ranked[0].Savings, 1e-9)
	require.Equal(t, "BestBuy", ranked[1].Store)
	// Outside the affiliate program, the URL stays untouched.
	require.Equal(t, "https://bestbuy.com/product/67890", ranked[1].AffiliateURL)
}

func TestFormatBestPricesNumbersFromOne(t *testing.T) {
	tagger := affiliate.New("dealmind-20")
	ranked := rankOffers([]domain.StoreOffer{
		{Store: "Amazon", URL: "https://amazon.com/product/12345", CurrentPrice: 99.99, OriginalPrice: 129.99},
	}, 5, tagger)

	text := formatBestPrices("headphones", ranked)
	require.Contains(t, text, `Best prices for "headphones"`)
	require.Contains(t, text, "1. Amazon - $99.99 (Save $30.00)")
	require.Contains(t, text, "tag=dealmind-20")
}

func TestFormatPredictionSplitsOnTrend(t *testing.T) {
	decreasing := formatPrediction(domain.Prediction{
		CurrentPrice:  100,
		Predicted7d:   89.99,
		Trend:         "decreasing",
		Confidence:    0.82,
		BestTimeToBuy: "next week",
	}, "https://amazon.com/p/1?tag=dealmind-20")
	require.Contains(t, decreasing, "Confidence: 82%")
	require.Contains(t, decreasing, "Good news! Price likely to drop")

	increasing := formatPrediction(domain.Prediction{
		CurrentPrice:  100,
		Predicted7d:   104.5,
		Trend:         "increasing",
		Confidence:    0.6,
		BestTimeToBuy: "now",
	}, "https://amazon.com/p/1?tag=dealmind-20")
	require.Contains(t, increasing, "Confidence: 60%")
	require.Contains(t, increasing, "Consider buying now")
}

func TestFormatDealsTexture(t *testing.T) {
	tagger := affiliate.New("dealmind-20")
	text := formatDeals("electronics", 20, []domain.Deal{
		{Title: "Premium Wireless Headphones", OriginalPrice: 299.99, SalePrice: 199.99, Discount: 33, URL: "https://amazon.com/headphones/abc123"},
	}, tagger)

	require.Contains(t, text, "Hot Deals in electronics (>20% off)")
	require.Contains(t, text, "1. Premium Wireless Headphones")
	require.Contains(t, text, "$199.99 (was $299.99)")
	require.Contains(t, text, "33% OFF")
	require.Contains(t, text, "https://amazon.com/headphones/abc123?tag=dealmind-20")
}
