package commands

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/ZenKaiii/ai-stock-analyst/internal/agent"
	"github.com/ZenKaiii/ai-stock-analyst/internal/cache"
	"github.com/ZenKaiii/ai-stock-analyst/internal/config"
	"github.com/ZenKaiii/ai-stock-analyst/internal/decision"
	"github.com/ZenKaiii/ai-stock-analyst/internal/llm"
	"github.com/ZenKaiii/ai-stock-analyst/internal/newsintel"
	"github.com/ZenKaiii/ai-stock-analyst/internal/provider"
	"github.com/ZenKaiii/ai-stock-analyst/internal/scanner"
	"github.com/ZenKaiii/ai-stock-analyst/internal/service"
	"github.com/ZenKaiii/ai-stock-analyst/pkg/logging"
)

var (
	verbose    bool
	outputJSON bool
)

var rootCmd = &cobra.Command{
	Use:   "analyst",
	Short: "Multi-agent US equity analysis and scanning",
	Long: `analyst runs the agent pipeline from the command line.

Examples:
  go run ./cmd/analyst analyze NVDA
  go run ./cmd/analyst scan --final 10 --json`,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "emit JSON instead of text")
}

// runtime holds the wired services for one CLI invocation. The CLI runs
// without postgres, telegram or the OTLP exporter: decisions print to
// stdout and spans stay in-process.
type runtime struct {
	cfg      *config.Config
	log      zerolog.Logger
	tracer   trace.Tracer
	analysis *service.AnalysisService
	contexts *service.ContextService
	scans    *service.ScanService
}

func buildRuntime(ctx context.Context) *runtime {
	godotenv.Load()
	cfg := config.Load()
	if scanFinalSize > 0 {
		cfg.Scan.FinalSize = scanFinalSize
	}
	if scanIncludeETF {
		cfg.Scan.IncludeETF = true
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	log := logging.New(level, "console")

	tracer := sdktrace.NewTracerProvider().Tracer("analyst-cli")

	var snapshotCache, marketCache *cache.TTL
	if client, err := cache.Connect(ctx, cfg.RedisURL); err == nil {
		snapshotCache = cache.NewTTL(client, "snapshot", 90*time.Second)
		marketCache = cache.NewTTL(client, "market", 20*time.Minute)
	}

	yahoo := provider.NewYahooProvider(tracer, snapshotCache, marketCache)
	listings := provider.NewListingsProvider(tracer)
	rss := provider.NewRSSProvider(tracer, log, provider.DefaultFeeds())
	social := provider.NewSocialProvider(tracer)

	var gen llm.TextGenerator
	if cfg.OpenAIAPIKey != "" {
		gen = llm.New(tracer, cfg.OpenAIAPIKey, cfg.OpenAIModel)
	}

	gate := agent.NewRiskGate(config.DefaultRiskThresholds(), config.DefaultEventKeywords(), config.DefaultGeoKeywordWeights())
	aggregator := decision.NewAggregator(tracer, config.DefaultAgentWeights())
	analysis := service.NewAnalysisService(tracer, log, service.DefaultPipeline(gen, gate), gate, aggregator, nil)
	contexts := service.NewContextService(tracer, log, yahoo, yahoo, rss, social, 20)

	extractor := newsintel.NewExtractor(tracer, newsintel.KnownTickers())
	sc := scanner.New(tracer, log, listings, yahoo, yahoo, rss, extractor,
		config.DefaultScannerWeights(), config.DefaultSourceQualityWeights(), cfg.Scan)
	scans := service.NewScanService(tracer, log, sc, nil)

	return &runtime{
		cfg:      cfg,
		log:      log,
		tracer:   tracer,
		analysis: analysis,
		contexts: contexts,
		scans:    scans,
	}
}
