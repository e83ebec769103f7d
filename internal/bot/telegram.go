package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	tele "gopkg.in/telebot.v3"

	"github.com/ZenKaiii/ai-stock-analyst/internal/domain"
	"github.com/ZenKaiii/ai-stock-analyst/internal/service"
)

// Telegram serves the interactive bot commands and pushes scheduled scan
// summaries to the configured chat.
type Telegram struct {
	bot      *tele.Bot
	log      zerolog.Logger
	analysis *service.AnalysisService
	contexts *service.ContextService
	scans    *service.ScanService
	chatID   int64
}

// New builds the bot. Returns (nil, nil) when token is empty so callers can
// run without Telegram configured.
func New(token string, chatID int64, log zerolog.Logger, analysis *service.AnalysisService, contexts *service.ContextService, scans *service.ScanService) (*Telegram, error) {
	if token == "" {
		log.Info().Msg("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return nil, nil
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	t := &Telegram{
		bot:      b,
		log:      log,
		analysis: analysis,
		contexts: contexts,
		scans:    scans,
		chatID:   chatID,
	}
	t.registerHandlers()
	return t, nil
}

// Start begins long polling in the background.
func (t *Telegram) Start() {
	if t == nil {
		return
	}
	t.log.Info().Msg("starting Telegram bot")
	go t.bot.Start()
}

func (t *Telegram) Stop() {
	if t == nil {
		return
	}
	t.bot.Stop()
}

func (t *Telegram) registerHandlers() {
	t.bot.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	t.bot.Handle("/analyze", func(c tele.Context) error {
		args := c.Args()
		if len(args) == 0 {
			return c.Send("Usage: /analyze NVDA")
		}
		symbol := strings.ToUpper(args[0])
		ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
		defer cancel()

		in := t.contexts.Build(ctx, symbol)
		report := t.analysis.Analyze(ctx, in)
		return c.Send(RenderReport(report))
	})

	t.bot.Handle("/scan", func(c tele.Context) error {
		if err := c.Send("Scanning the market, this takes a few minutes..."); err != nil {
			return err
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
			defer cancel()
			result := t.scans.Run(ctx)
			if err := t.sendTo(c.Chat().ID, RenderScan(result)); err != nil {
				t.log.Error().Err(err).Msg("failed to send scan result")
			}
		}()
		return nil
	})

	t.bot.Handle("/help", func(c tele.Context) error {
		return c.Send("Commands:\n" +
			"/analyze SYMBOL - run the full agent pipeline for one stock\n" +
			"/scan - scan the US equity universe for buy candidates\n" +
			"/ping - health check")
	})
}

// NotifyScan pushes a scan summary to the configured chat. No-op without a
// chat ID.
func (t *Telegram) NotifyScan(ctx context.Context, result domain.ScanResult) error {
	if t == nil || t.chatID == 0 {
		return nil
	}
	return t.sendTo(t.chatID, RenderScan(result))
}

// NotifyReport pushes one instrument's analysis to the configured chat.
func (t *Telegram) NotifyReport(ctx context.Context, report domain.AnalysisReport) error {
	if t == nil || t.chatID == 0 {
		return nil
	}
	return t.sendTo(t.chatID, RenderReport(report))
}

func (t *Telegram) sendTo(chatID int64, msg string) error {
	_, err := t.bot.Send(&tele.Chat{ID: chatID}, msg)
	return err
}

// RenderReport formats a per-instrument analysis for chat delivery.
func RenderReport(report domain.AnalysisReport) string {
	d := report.Decision
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", signalEmoji(d.Signal), report.Symbol)
	fmt.Fprintf(&b, "Signal: %s (%.0f%% confidence)\n", d.Signal, d.Confidence*100)
	fmt.Fprintf(&b, "Score: %.1f/100 | Risk: %s\n", d.Score, d.RiskLevel)
	if d.RiskOverride {
		b.WriteString("Risk gate override: BUY downgraded to HOLD\n")
	}
	if d.EntryPrice > 0 {
		fmt.Fprintf(&b, "Entry: $%.2f | Stop: $%.2f | Target: $%.2f\n", d.EntryPrice, d.StopLoss, d.TargetPrice)
	}
	fmt.Fprintf(&b, "Position size: %s\n", d.PositionSize)
	if len(d.Risk.Triggers) > 0 {
		fmt.Fprintf(&b, "Risk triggers: %s\n", strings.Join(d.Risk.Triggers, "; "))
	}
	b.WriteString("\nAgents:\n")
	for _, a := range report.Analyses {
		fmt.Fprintf(&b, "  %s: %s (%.2f)\n", a.Agent, a.Signal, a.Confidence)
	}
	if d.Rationale != "" {
		fmt.Fprintf(&b, "\n%s\n", d.Rationale)
	}
	return b.String()
}

// RenderScan formats a scan result: top pick first, then the watchlist.
func RenderScan(result domain.ScanResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Market scan %s\n", result.Timestamp.Format("2006-01-02 15:04 MST"))
	fmt.Fprintf(&b, "Universe %d -> prefilter %d -> scored %d -> final %d\n",
		result.Stats.ScannedUniverse, result.Stats.Prefiltered, result.Stats.Scored, result.Stats.FinalCount)
	if result.Stats.NewsFallback {
		b.WriteString("(price feed unavailable, ranked from news signals)\n")
	}

	if result.TopPick == nil {
		b.WriteString("\nNo candidates passed the screen today.")
		return b.String()
	}

	top := result.TopPick
	fmt.Fprintf(&b, "\n%s Top pick: %s", signalEmoji(top.Signal), top.Symbol)
	if top.CompanyName != "" {
		fmt.Fprintf(&b, " (%s)", top.CompanyName)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Signal: %s | Score: %.1f/100 | News: %d\n", top.Signal, top.Score100, top.NewsCount)
	if top.EntryPrice > 0 {
		fmt.Fprintf(&b, "Entry: $%.2f | Target: $%.2f\n", top.EntryPrice, top.TargetPrice)
	}
	if top.RecommendNote != "" {
		fmt.Fprintf(&b, "%s\n", top.RecommendNote)
	}
	for _, line := range top.EvidenceNews {
		fmt.Fprintf(&b, "  - %s\n", line)
	}

	if len(result.Watchlist) > 0 {
		b.WriteString("\nWatchlist:\n")
		for i, c := range result.Watchlist {
			fmt.Fprintf(&b, "%2d. %s %s %.1f\n", i+2, c.Symbol, c.Signal, c.Score100)
		}
	}
	return b.String()
}

func signalEmoji(s domain.Signal) string {
	switch s {
	case domain.SignalBuy:
		return "🟢"
	case domain.SignalSell:
		return "🔴"
	default:
		return "🟡"
	}
}
