package domain

// TrackReceipt is the backend acknowledgement for a new price watch.
type TrackReceipt struct {
	TrackingID   string  `json:"trackingId"`
	CurrentPrice float64 `json:"currentPrice"`
}

// StoreOffer is one store's listing for a searched product.
type StoreOffer struct {
	Store         string  `json:"store"`
	URL           string  `json:"url"`
	CurrentPrice  float64 `json:"currentPrice"`
	OriginalPrice float64 `json:"originalPrice"`
}

// Savings is the discount against the original price, never negative
// in valid backend data.
func (o StoreOffer) Savings() float64 {
	return o.OriginalPrice - o.CurrentPrice
}

// PricePoint is one day's observed price.
type PricePoint struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

// History is the per-day price series with summary figures.
type History struct {
	Prices  []PricePoint `json:"prices"`
	Highest float64      `json:"highest"`
	Lowest  float64      `json:"lowest"`
	Average float64      `json:"average"`
	Current float64      `json:"current"`
}

// Deal is a discounted listing in a category.
type Deal struct {
	Title         string  `json:"title"`
	OriginalPrice float64 `json:"originalPrice"`
	SalePrice     float64 `json:"salePrice"`
	Discount      float64 `json:"discount"`
	URL           string  `json:"url"`
}

// Prediction is the model's price-drop forecast for a product.
type Prediction struct {
	CurrentPrice  float64 `json:"current_price"`
	Predicted7d   float64 `json:"predicted_price_7d"`
	Trend         string  `json:"trend"`
	Confidence    float64 `json:"confidence"`
	BestTimeToBuy string  `json:"best_time_to_buy"`
}

const TrendDecreasing = "decreasing"
