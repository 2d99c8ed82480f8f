package gateway

import "dealmind/internal/domain"

// Catalog returns the gateway's tool registry in declaration order.
// Callers rely on the order for numbered output, so new tools go at
// the end.
func Catalog() []domain.ToolSpec {
	return []domain.ToolSpec{
		{
			Name:        "track_price",
			Description: "Start tracking a product price and get alerts when it drops",
			Params: []domain.ParamSpec{
				{Name: "product_url", Type: "string", Description: "The product URL to track", Required: true},
				{Name: "target_price", Type: "number", Description: "Desired price to trigger alert", Required: true},
				{Name: "email", Type: "string", Description: "Email for price drop alerts", Default: domain.DefaultTrackingEmail},
			},
		},
		{
			Name:        "find_best_price",
			Description: "Search for the best price of a product across multiple stores",
			Params: []domain.ParamSpec{
				{Name: "product_name", Type: "string", Description: "Name or description of the product", Required: true},
				{Name: "max_results", Type: "number", Description: "Maximum number of results to return", Default: domain.DefaultSearchResults},
			},
		},
		{
			Name:        "predict_price_drop",
			Description: "Get ML prediction on when a product price might drop",
			Params: []domain.ParamSpec{
				{Name: "product_url", Type: "string", Description: "Product URL to analyze", Required: true},
			},
		},
		{
			Name:        "get_price_history",
			Description: "Get historical price data for a tracked product",
			Params: []domain.ParamSpec{
				{Name: "product_url", Type: "string", Description: "Product URL", Required: true},
				{Name: "days", Type: "number", Description: "Number of days of history", Default: domain.DefaultHistoryDays},
			},
		},
		{
			Name:        "find_deals",
			Description: "Find current deals and discounts in a category",
			Params: []domain.ParamSpec{
				{Name: "category", Type: "string", Description: "Product category (electronics, home, fashion, etc.)", Required: true},
				{Name: "min_discount", Type: "number", Description: "Minimum discount percentage", Default: domain.DefaultMinDiscount},
			},
		},
	}
}
