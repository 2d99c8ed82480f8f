package gateway

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"dealmind/internal/domain"
)

// taggedOffer is a store offer after affiliate tagging and savings
// computation, ready for display.
type taggedOffer struct {
	domain.StoreOffer
	AffiliateURL string
	Savings      float64
}

// rankOffers tags every offer, computes savings and sorts ascending by
// current price, truncated to max entries.
func rankOffers(offers []domain.StoreOffer, max int, tagger URLTagger) []taggedOffer {
	ranked := make([]taggedOffer, 0, len(offers))
	for _, offer := range offers {
		ranked = append(ranked, taggedOffer{
			StoreOffer:   offer,
			AffiliateURL: tagger.Tag(offer.URL),
			Savings:      offer.Savings(),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].CurrentPrice < ranked[j].CurrentPrice
	})
	if max > 0 && len(ranked) > max {
		ranked = ranked[:max]
	}
	return ranked
}

func formatTrackReceipt(receipt domain.TrackReceipt, targetPrice float64, affiliateURL string) string {
	var b strings.Builder
	b.WriteString("✅ Now tracking price for this product!\n\n")
	fmt.Fprintf(&b, "Tracking ID: %s\n", receipt.TrackingID)
	fmt.Fprintf(&b, "Current Price: $%s\n", amount(receipt.CurrentPrice))
	fmt.Fprintf(&b, "Target Price: $%s\n\n", amount(targetPrice))
	b.WriteString("You'll get an alert when the price drops!\n\n")
	fmt.Fprintf(&b, "💰 Ready to buy now? Use this link to support DealMind:\n%s", affiliateURL)
	return b.String()
}

func formatBestPrices(productName string, ranked []taggedOffer) string {
	entries := make([]string, 0, len(ranked))
	for i, offer := range ranked {
		entries = append(entries, fmt.Sprintf("%d. %s - $%s (Save $%.2f)\n   %s",
			i+1, offer.Store, amount(offer.CurrentPrice), offer.Savings, offer.AffiliateURL))
	}
	return fmt.Sprintf("🔍 Best prices for %q:\n\n%s\n\n💡 Tip: I can track any of these for you with the track_price tool!",
		productName, strings.Join(entries, "\n\n"))
}

func formatPrediction(prediction domain.Prediction, affiliateURL string) string {
	advice := "📈 Price may increase. Consider buying now:"
	if prediction.Trend == domain.TrendDecreasing {
		advice = "📉 Good news! Price likely to drop. Set up tracking to get alerted!"
	}

	var b strings.Builder
	b.WriteString("🔮 Price Prediction Analysis:\n\n")
	fmt.Fprintf(&b, "Current Price: $%s\n", amount(prediction.CurrentPrice))
	fmt.Fprintf(&b, "Predicted Price (7 days): $%s\n", amount(prediction.Predicted7d))
	fmt.Fprintf(&b, "Trend: %s\n", prediction.Trend)
	fmt.Fprintf(&b, "Confidence: %.0f%%\n", prediction.Confidence*100)
	fmt.Fprintf(&b, "Best Time to Buy: %s\n\n", prediction.BestTimeToBuy)
	fmt.Fprintf(&b, "%s\n%s", advice, affiliateURL)
	return b.String()
}

func formatHistory(history domain.History, days int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 Price History (Last %d days):\n\n", days)
	b.WriteString(renderPriceChart(history.Prices))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Highest: $%s\n", amount(history.Highest))
	fmt.Fprintf(&b, "Lowest: $%s\n", amount(history.Lowest))
	fmt.Fprintf(&b, "Average: $%s\n", amount(history.Average))
	fmt.Fprintf(&b, "Current: $%s", amount(history.Current))
	return b.String()
}

// renderPriceChart draws one bar per day, scaled to a 10-character
// range between the lowest and highest observed price. Every day gets
// at least one bar, a flat series included.
func renderPriceChart(prices []domain.PricePoint) string {
	if len(prices) == 0 {
		return "No data available"
	}

	low, high := prices[0].Price, prices[0].Price
	for _, point := range prices[1:] {
		low = math.Min(low, point.Price)
		high = math.Max(high, point.Price)
	}

	lines := make([]string, 0, len(prices))
	for _, point := range prices {
		height := 1
		if high > low {
			height = int(math.Round(10 * (point.Price - low) / (high - low)))
			if height < 1 {
				height = 1
			}
		}
		lines = append(lines, fmt.Sprintf("%s: %s $%s",
			point.Date, strings.Repeat("█", height), amount(point.Price)))
	}
	return strings.Join(lines, "\n")
}

func formatDeals(category string, minDiscount float64, deals []domain.Deal, tagger URLTagger) string {
	entries := make([]string, 0, len(deals))
	for i, deal := range deals {
		entries = append(entries, fmt.Sprintf("%d. %s\n   💰 $%s (was $%s)\n   🏷️ %s%% OFF\n   🔗 %s",
			i+1, deal.Title, amount(deal.SalePrice), amount(deal.OriginalPrice),
			amount(deal.Discount), tagger.Tag(deal.URL)))
	}
	return fmt.Sprintf("🎯 Hot Deals in %s (>%s%% off):\n\n%s\n\n💡 Want to track any of these? Just give me the URL!",
		category, amount(minDiscount), strings.Join(entries, "\n\n"))
}

// amount renders a price the way the backend reports it: no forced
// decimals, no trailing zeros.
func amount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
