// Command riskeval runs the A/B evaluation harness from a case suite file.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/weave-labs/riskeval"
	"github.com/weave-labs/riskeval/config"
	"github.com/weave-labs/riskeval/generator"
	"github.com/weave-labs/riskeval/internal/logging"
)

var (
	suitePath   string
	primerPath  string
	model       string
	outputDir   string
	trials      int
	concurrency int
	rpm         int
	verbose     bool
)

func main() {
	root := &cobra.Command{
		Use:   "riskeval",
		Short: "A/B evaluation harness for pattern-augmented risk prompting",
	}
	root.AddCommand(runCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run treatment and baseline trials for every case in a suite",
		RunE:  run,
	}

	cmd.Flags().StringVar(&suitePath, "suite", "", "path to the case suite YAML (required)")
	cmd.Flags().StringVar(&primerPath, "primer", "", "path to the pattern primer text for the treatment variant")
	cmd.Flags().StringVar(&model, "model", "", "generator model (default from RISKEVAL_MODEL)")
	cmd.Flags().StringVar(&outputDir, "out", "", "report output directory (default from RISKEVAL_OUTPUT_DIR)")
	cmd.Flags().IntVar(&trials, "trials", 0, "trials per variant per case")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "max concurrent generation calls")
	cmd.Flags().IntVar(&rpm, "rpm", 0, "rate limit in requests per minute (0 = unlimited)")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "enable debug logging")
	_ = cmd.MarkFlagRequired("suite")

	return cmd
}

func run(cmd *cobra.Command, _ []string) error {
	var opts []config.ConfigOption
	if model != "" {
		opts = append(opts, config.SetModel(model))
	}
	if outputDir != "" {
		opts = append(opts, config.SetOutputDir(outputDir))
	}
	if trials > 0 {
		opts = append(opts, config.SetTrials(trials))
	}
	if concurrency > 0 {
		opts = append(opts, config.SetConcurrency(concurrency))
	}
	if rpm > 0 {
		opts = append(opts, config.SetRequestsPerMinute(rpm))
	}
	if primerPath != "" {
		primer, err := os.ReadFile(primerPath)
		if err != nil {
			return fmt.Errorf("read primer: %w", err)
		}
		opts = append(opts, config.SetPatternPrimer(string(primer)))
	}

	level := logging.LogLevelInfo
	if verbose {
		level = logging.LogLevelDebug
	}
	logger := logging.NewLogger(level)

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	config.ApplyOptions(cfg, opts...)
	if cfg.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is not set")
	}

	harness, err := riskeval.New(generator.NewOpenAI(cfg, logger), opts...)
	if err != nil {
		return err
	}
	harness.SetLogger(logger)

	report, err := harness.Run(cmd.Context(), suitePath)
	if err != nil {
		return err
	}

	fmt.Print(report.Summary())
	return nil
}
