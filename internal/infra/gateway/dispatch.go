package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"dealmind/internal/domain"
	"dealmind/internal/infra/telemetry"
)

func (g *Gateway) toolHandler(name string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args map[string]any
		if len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
				badArgs := domain.E(domain.CodeInvalidArgument, "gateway.toolHandler",
					"arguments must be a JSON object", err)
				return errorResult(badArgs), nil
			}
		}
		return g.Dispatch(ctx, name, args), nil
	}
}

// Dispatch runs the full pipeline for one invocation: validate,
// account usage, call the backend, tag URLs, format. Every failure
// comes back as an error-content envelope; nothing escapes to the
// transport.
func (g *Gateway) Dispatch(ctx context.Context, name string, args map[string]any) *mcp.CallToolResult {
	start := time.Now()
	ctx = telemetry.WithRequestID(ctx, "")
	logger := g.logger.With(
		zap.String("request_id", telemetry.RequestID(ctx)),
		zap.String("tool", name),
		zap.String("user", g.userID),
	)

	text, err := g.invoke(ctx, name, args)
	if err != nil {
		code := domain.CodeFrom(err)
		if code == domain.CodeQuotaExceeded {
			g.metrics.IncQuotaRejection()
		}
		g.metrics.ObserveToolCall(name, string(code), time.Since(start))
		logger.Warn("tool call failed", zap.String("code", string(code)), zap.Error(err))
		return errorResult(err)
	}

	g.metrics.ObserveToolCall(name, "ok", time.Since(start))
	logger.Info("tool call served", zap.Duration("duration", time.Since(start)))
	return textResult(text)
}

func (g *Gateway) invoke(ctx context.Context, name string, args map[string]any) (string, error) {
	spec, ok := g.byName[name]
	if !ok {
		return "", domain.E(domain.CodeUnknownTool, "gateway.invoke",
			fmt.Sprintf("Unknown tool: %s", name), nil)
	}

	resolved, err := spec.ValidateArgs(args)
	if err != nil {
		return "", err
	}

	// Usage accounting happens after validation and before any backend
	// activity; revenue attribution at call time is always zero.
	if err := g.ledger.RecordCall(ctx, g.userID, name, 0); err != nil {
		return "", err
	}

	switch name {
	case "track_price":
		return g.trackPrice(ctx, resolved)
	case "find_best_price":
		return g.findBestPrice(ctx, resolved)
	case "predict_price_drop":
		return g.predictPriceDrop(ctx, resolved)
	case "get_price_history":
		return g.priceHistory(ctx, resolved)
	case "find_deals":
		return g.findDeals(ctx, resolved)
	default:
		return "", domain.E(domain.CodeInternal, "gateway.invoke",
			fmt.Sprintf("tool %s is registered but has no handler", name), nil)
	}
}

func (g *Gateway) trackPrice(ctx context.Context, args map[string]any) (string, error) {
	productURL, err := domain.StringArg(args, "product_url")
	if err != nil {
		return "", err
	}
	targetPrice, err := domain.NumberArg(args, "target_price")
	if err != nil {
		return "", err
	}
	email, err := domain.StringArg(args, "email")
	if err != nil {
		return "", err
	}

	receipt, err := g.backend.StartTracking(ctx, productURL, targetPrice, email)
	if err != nil {
		return "", err
	}
	return formatTrackReceipt(receipt, targetPrice, g.tagger.Tag(productURL)), nil
}

func (g *Gateway) findBestPrice(ctx context.Context, args map[string]any) (string, error) {
	productName, err := domain.StringArg(args, "product_name")
	if err != nil {
		return "", err
	}
	maxResults, err := domain.NumberArg(args, "max_results")
	if err != nil {
		return "", err
	}

	offers, err := g.backend.SearchStores(ctx, productName)
	if err != nil {
		return "", err
	}

	ranked := rankOffers(offers, int(maxResults), g.tagger)
	return formatBestPrices(productName, ranked), nil
}

func (g *Gateway) predictPriceDrop(ctx context.Context, args map[string]any) (string, error) {
	productURL, err := domain.StringArg(args, "product_url")
	if err != nil {
		return "", err
	}

	prediction, err := g.backend.PredictDrop(ctx, productURL)
	if err != nil {
		return "", err
	}
	return formatPrediction(prediction, g.tagger.Tag(productURL)), nil
}

func (g *Gateway) priceHistory(ctx context.Context, args map[string]any) (string, error) {
	productURL, err := domain.StringArg(args, "product_url")
	if err != nil {
		return "", err
	}
	days, err := domain.NumberArg(args, "days")
	if err != nil {
		return "", err
	}

	history, err := g.backend.PriceHistory(ctx, productURL, int(days))
	if err != nil {
		return "", err
	}
	return formatHistory(history, int(days)), nil
}

func (g *Gateway) findDeals(ctx context.Context, args map[string]any) (string, error) {
	category, err := domain.StringArg(args, "category")
	if err != nil {
		return "", err
	}
	minDiscount, err := domain.NumberArg(args, "min_discount")
	if err != nil {
		return "", err
	}

	deals, err := g.backend.CategoryDeals(ctx, category, minDiscount)
	if err != nil {
		return "", err
	}
	return formatDeals(category, minDiscount, deals, g.tagger), nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("Error: %s", domain.UserMessage(err))},
		},
	}
}
