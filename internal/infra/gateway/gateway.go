package gateway

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"dealmind/internal/domain"
	"dealmind/internal/infra/telemetry"
)

// Backend is the adapter to the external tracking, search, history,
// deals and prediction services.
type Backend interface {
	StartTracking(ctx context.Context, productURL string, targetPrice float64, email string) (domain.TrackReceipt, error)
	SearchStores(ctx context.Context, productName string) ([]domain.StoreOffer, error)
	PriceHistory(ctx context.Context, productURL string, days int) (domain.History, error)
	CategoryDeals(ctx context.Context, category string, minDiscount float64) ([]domain.Deal, error)
	PredictDrop(ctx context.Context, productURL string) (domain.Prediction, error)
}

// UsageRecorder accounts tool calls against the per-user daily quota.
type UsageRecorder interface {
	RecordCall(ctx context.Context, userID, tool string, affiliateRevenue float64) error
}

// URLTagger rewrites product URLs for affiliate attribution.
type URLTagger interface {
	Tag(rawURL string) string
}

// Metrics receives per-call observations. Satisfied by
// telemetry.PrometheusMetrics; a nil value disables observation.
type Metrics interface {
	ObserveToolCall(tool, status string, duration time.Duration)
	IncQuotaRejection()
}

// Gateway serves the tool catalog over MCP and dispatches invocations
// to the backend, the affiliate tagger and the usage ledger.
type Gateway struct {
	backend Backend
	ledger  UsageRecorder
	tagger  URLTagger
	metrics Metrics
	logger  *zap.Logger
	userID  string

	catalog []domain.ToolSpec
	byName  map[string]domain.ToolSpec
	server  *mcp.Server
}

func NewGateway(backend Backend, ledger UsageRecorder, tagger URLTagger, metrics Metrics, userID string, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = (*telemetry.PrometheusMetrics)(nil)
	}
	catalog := Catalog()
	byName := make(map[string]domain.ToolSpec, len(catalog))
	for _, spec := range catalog {
		byName[spec.Name] = spec
	}
	return &Gateway{
		backend: backend,
		ledger:  ledger,
		tagger:  tagger,
		metrics: metrics,
		logger:  logger.Named("gateway"),
		userID:  userID,
		catalog: catalog,
		byName:  byName,
	}
}

// Server builds the MCP server with every catalog tool registered.
func (g *Gateway) Server() *mcp.Server {
	if g.server != nil {
		return g.server
	}
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "dealmind-mcp",
		Version: "1.0.0",
	}, &mcp.ServerOptions{
		HasTools: true,
	})
	for _, spec := range g.catalog {
		server.AddTool(&mcp.Tool{
			Name:        spec.Name,
			Description: spec.Description,
			InputSchema: spec.InputSchema(),
		}, g.toolHandler(spec.Name))
	}
	g.server = server
	return server
}

// Run serves the gateway over stdio until the context ends.
func (g *Gateway) Run(ctx context.Context) error {
	server := g.Server()
	g.logger.Info("gateway starting (stdio transport)",
		zap.String("user", g.userID),
		zap.Int("tools", len(g.catalog)),
	)
	return server.Run(ctx, &mcp.StdioTransport{})
}
