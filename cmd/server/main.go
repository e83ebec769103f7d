package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/ZenKaiii/ai-stock-analyst/internal/agent"
	"github.com/ZenKaiii/ai-stock-analyst/internal/bot"
	"github.com/ZenKaiii/ai-stock-analyst/internal/cache"
	"github.com/ZenKaiii/ai-stock-analyst/internal/config"
	"github.com/ZenKaiii/ai-stock-analyst/internal/db"
	"github.com/ZenKaiii/ai-stock-analyst/internal/decision"
	"github.com/ZenKaiii/ai-stock-analyst/internal/handler"
	"github.com/ZenKaiii/ai-stock-analyst/internal/job"
	"github.com/ZenKaiii/ai-stock-analyst/internal/llm"
	"github.com/ZenKaiii/ai-stock-analyst/internal/newsintel"
	"github.com/ZenKaiii/ai-stock-analyst/internal/provider"
	"github.com/ZenKaiii/ai-stock-analyst/internal/repository"
	"github.com/ZenKaiii/ai-stock-analyst/internal/scanner"
	"github.com/ZenKaiii/ai-stock-analyst/internal/service"
	"github.com/ZenKaiii/ai-stock-analyst/pkg/logging"
	"github.com/ZenKaiii/ai-stock-analyst/pkg/tracing"
)

func main() {
	godotenv.Load()

	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, tracer, err := tracing.InitTracer(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tracer")
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Error().Err(err).Msg("error shutting down tracer provider")
		}
	}()

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	if pool != nil {
		defer pool.Close()
	} else {
		log.Warn().Msg("DATABASE_URL not set, running without persistence")
	}

	redisClient, err := cache.Connect(ctx, cfg.RedisURL)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, running without cache")
		redisClient = nil
	}

	// Repositories and migrations.
	var reportStore service.ReportStore
	var scanStore service.ScanStore
	var decisionReader handler.DecisionReader
	if pool != nil {
		decisionRepo := repository.NewDecisionRepository(pool, tracer)
		scanRepo := repository.NewScanRepository(pool, tracer)
		if err := decisionRepo.RunMigrations(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to run decision migrations")
		}
		if err := scanRepo.RunMigrations(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to run scan migrations")
		}
		reportStore = decisionRepo
		scanStore = scanRepo
		decisionReader = decisionRepo
	}

	// Providers. Nil TTLs disable caching.
	var snapshotCache, marketCache *cache.TTL
	if redisClient != nil {
		snapshotCache = cache.NewTTL(redisClient, "snapshot", 90*time.Second)
		marketCache = cache.NewTTL(redisClient, "market", 20*time.Minute)
	}
	yahoo := provider.NewYahooProvider(tracer, snapshotCache, marketCache)
	listings := provider.NewListingsProvider(tracer)
	rss := provider.NewRSSProvider(tracer, log, provider.DefaultFeeds())
	social := provider.NewSocialProvider(tracer)

	// LLM is optional: without a key every agent takes its rule path.
	var gen llm.TextGenerator
	if cfg.OpenAIAPIKey != "" {
		gen = llm.New(tracer, cfg.OpenAIAPIKey, cfg.OpenAIModel)
	} else {
		log.Warn().Msg("OPENAI_API_KEY not set, agents use rule-based fallbacks")
	}

	// Decision engine.
	gate := agent.NewRiskGate(config.DefaultRiskThresholds(), config.DefaultEventKeywords(), config.DefaultGeoKeywordWeights())
	aggregator := decision.NewAggregator(tracer, config.DefaultAgentWeights())
	analysisService := service.NewAnalysisService(tracer, log, service.DefaultPipeline(gen, gate), gate, aggregator, reportStore)
	contextService := service.NewContextService(tracer, log, yahoo, yahoo, rss, social, 20)

	// Universe scanner.
	extractor := newsintel.NewExtractor(tracer, newsintel.KnownTickers())
	sc := scanner.New(tracer, log, listings, yahoo, yahoo, rss, extractor,
		config.DefaultScannerWeights(), config.DefaultSourceQualityWeights(), cfg.Scan)
	scanService := service.NewScanService(tracer, log, sc, scanStore)

	// Telegram bot.
	tg, err := bot.New(cfg.TelegramBotToken, cfg.TelegramChatID, log, analysisService, contextService, scanService)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create Telegram bot")
	}
	tg.Start()
	defer tg.Stop()

	// Cron jobs.
	scheduler := job.NewScheduler(tracer, log, scanService, analysisService, contextService, tg, cfg.WatchSymbols)
	if err := scheduler.Register(cfg.ScanCron, cfg.WatchCron); err != nil {
		log.Fatal().Err(err).Msg("failed to register cron jobs")
	}
	scheduler.Start()
	defer scheduler.Stop()

	// HTTP API.
	h := handler.New(tracer, analysisService, contextService, scanService, decisionReader)
	r := gin.Default()
	r.Use(otelgin.Middleware("ai-stock-analyst"))
	r.Use(handler.APIKeyAuth(cfg.APIKey))
	h.RegisterRoutes(r)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()
	log.Info().Str("addr", cfg.HTTPAddr).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server exiting")
}
