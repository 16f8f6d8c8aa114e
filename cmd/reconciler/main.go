package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"billing-reconciliation/internal/consolidate"
	"billing-reconciliation/internal/gateway"
	"billing-reconciliation/internal/matcher"
	"billing-reconciliation/internal/metrics"
	"billing-reconciliation/internal/usecase"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:    "reconciler",
		Usage:   "Reconcile the sales ledger against the billing provider",
		Version: version,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
				EnvVars: []string{"RECONCILER_VERBOSE"},
			},
		},
		Commands: []*cli.Command{
			runCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run one reconciliation over complete snapshots of both sources",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "ledger",
				Aliases:  []string{"l"},
				Usage:    "Path to the sales ledger CSV export",
				Required: true,
				EnvVars:  []string{"RECONCILER_LEDGER"},
			},
			&cli.StringFlag{
				Name:     "billing",
				Aliases:  []string{"b"},
				Usage:    "Path to the billing-provider JSON snapshot",
				Required: true,
				EnvVars:  []string{"RECONCILER_BILLING"},
			},
			&cli.Float64Flag{
				Name:  "tolerance",
				Value: 50,
				Usage: "Settlement tolerance in monetary units",
			},
			&cli.Float64Flag{
				Name:  "name-threshold",
				Value: 0.70,
				Usage: "Minimum name similarity for fuzzy matching",
			},
			&cli.BoolFlag{
				Name:  "summary-only",
				Usage: "Print only the aggregate summary",
			},
		},
		Action: runAction,
	}
}

func runAction(c *cli.Context) error {
	logger, err := newLogger(c.Bool("verbose"))
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	matcherCfg := matcher.DefaultConfig()
	matcherCfg.NameSimilarityThreshold = c.Float64("name-threshold")

	consolidateCfg := consolidate.DefaultConfig()
	consolidateCfg.SettlementTolerance = decimal.NewFromFloat(c.Float64("tolerance"))

	uc := usecase.NewReconciliationUseCase(
		gateway.NewCSVLedgerRepository(),
		gateway.NewJSONBillingRepository(),
		usecase.WithMatcherConfig(matcherCfg),
		usecase.WithConsolidateConfig(consolidateCfg),
		usecase.WithMetricsConfig(metrics.DefaultConfig()),
		usecase.WithLogger(logger),
	)

	report, err := uc.Reconcile(c.Context, c.String("ledger"), c.String("billing"))
	if err != nil {
		return fmt.Errorf("reconciliation failed: %w", err)
	}

	var payload any = report
	if c.Bool("summary-only") {
		payload = report.Summary
	}

	output, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to generate JSON report: %w", err)
	}
	fmt.Println(string(output))
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"} // keep stdout clean for the report
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}
