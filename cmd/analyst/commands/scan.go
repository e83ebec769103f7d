package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ZenKaiii/ai-stock-analyst/internal/bot"
)

var (
	scanFinalSize  int
	scanIncludeETF bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the US equity universe for buy candidates",
	Long: `scan runs the full funnel: listing download, liquidity/momentum
prefilter, per-candidate scoring and ranking.`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().IntVar(&scanFinalSize, "final", 0, "override final candidate count")
	scanCmd.Flags().BoolVar(&scanIncludeETF, "include-etf", false, "keep ETFs in the universe")
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Minute)
	defer cancel()

	rt := buildRuntime(ctx)
	result := rt.scans.Run(ctx)

	if outputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	fmt.Println(bot.RenderScan(result))
	return nil
}
