package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/depmatch/config"
	"github.com/gnolang/depmatch/formatter"
	"github.com/gnolang/depmatch/internal/metrics"
	"github.com/gnolang/depmatch/process"
	"github.com/gnolang/depmatch/rule"
	"github.com/gnolang/depmatch/ruleset"
)

var (
	rulesPath   string
	matchMode   string
	jsonOutput  bool
	outPath     string
	watchRules  bool
	workers     int
	noProgress  bool
	metricsFile string
	metricsAddr string
)

var metricsRegistry = prometheus.NewRegistry()

var cliTelemetry = telemetry{
	metrics:  metrics.New(metricsRegistry),
	gatherer: metricsRegistry,
}

// telemetry pairs the recorded metrics with the registry they are
// gathered from.
type telemetry struct {
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
}

// report writes the metrics file when one was requested.
func (t telemetry) report(opts matchOptions) error {
	if opts.metricsFile == "" || t.gatherer == nil {
		return nil
	}
	return metrics.WriteFile(t.gatherer, opts.metricsFile)
}

var matchCmd = &cobra.Command{
	Use:   "match [paths...]",
	Short: "Match a rule file against corpus files",
	Long: `Reads CoNLL-X/CoNLL-U (.conll, .conllu, .conllx) and JSON (.json) corpus
files and prints every mention found by the rules.
Example) depmatch match --rules rules.yaml --json -o mentions.json corpus/`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("error: Please provide file or directory paths")
			os.Exit(1)
		}

		opts, err := resolveMatchOptions(cmd, cfgFile)
		if err != nil {
			logger.Fatal("Invalid configuration", zap.Error(err))
		}
		opts.paths = args

		if watchRules {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			if err := watchAndMatch(ctx, logger, opts, cliTelemetry, cmd.OutOrStdout()); err != nil {
				logger.Error("Error watching rules", zap.Error(err))
				os.Exit(1)
			}
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := runMatch(ctx, logger, opts, cliTelemetry, cmd.OutOrStdout()); err != nil {
			logger.Error("Error matching corpus", zap.Error(err))
			os.Exit(1)
		}
	},
}

func init() {
	matchCmd.Flags().StringVar(&rulesPath, "rules", "", "Rule file (overrides the configuration)")
	matchCmd.Flags().StringVar(&matchMode, "mode", "", `Default match mode, "any" or "all"`)
	matchCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output mentions in JSON format")
	matchCmd.Flags().StringVarP(&outPath, "output", "o", "", "Output path")
	matchCmd.Flags().BoolVar(&watchRules, "watch", false, "Re-run whenever the rule file changes")
	matchCmd.Flags().IntVar(&workers, "workers", 0, "Number of files processed concurrently (0 = number of CPUs)")
	matchCmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable the progress bar")
	matchCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics to this file after every run")
	matchCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while watching (e.g. :9090)")
}

type matchOptions struct {
	rules    string
	mode     rule.Mode
	json     bool
	output   string
	workers  int
	progress bool
	paths    []string

	metricsFile string
	metricsAddr string
}

// resolveMatchOptions merges the configuration file with the flags set
// on cmd. Flags win.
func resolveMatchOptions(cmd *cobra.Command, configPath string) (matchOptions, error) {
	c, err := config.LoadFromFile(configPath)
	if err != nil {
		return matchOptions{}, err
	}

	opts := matchOptions{
		rules:    c.RulesPath(configPath),
		mode:     c.Mode,
		json:     c.Output == config.OutputJSON,
		workers:  c.Workers,
		progress: c.Progress,
	}

	flags := cmd.Flags()
	if flags.Changed("rules") {
		opts.rules = rulesPath
	}
	if flags.Changed("mode") {
		m, err := rule.ParseMode(matchMode)
		if err != nil {
			return matchOptions{}, err
		}
		opts.mode = m
	}
	if flags.Changed("json") {
		opts.json = jsonOutput
	}
	if flags.Changed("workers") {
		opts.workers = workers
	}
	if flags.Changed("no-progress") {
		opts.progress = !noProgress
	}
	opts.output = outPath
	opts.metricsFile = metricsFile
	opts.metricsAddr = metricsAddr
	return opts, nil
}

// runMatch loads the rules, matches the corpus and writes the results.
// The metrics file, when requested, is written even if the run fails.
func runMatch(ctx context.Context, logger *zap.Logger, opts matchOptions, tel telemetry, stdout io.Writer) error {
	err := loadAndMatch(ctx, logger, opts, tel, stdout)
	if rerr := tel.report(opts); rerr != nil {
		logger.Error("Error writing metrics", zap.Error(rerr))
		if err == nil {
			err = rerr
		}
	}
	return err
}

func loadAndMatch(ctx context.Context, logger *zap.Logger, opts matchOptions, tel telemetry, stdout io.Writer) error {
	rs, err := ruleset.Load(opts.rules, opts.mode)
	if err != nil {
		tel.metrics.ObserveCompileError()
		return err
	}
	logger.Debug("Loaded rules", zap.String("path", opts.rules), zap.Int("rules", rs.Len()))
	return matchWith(ctx, logger, rs, opts, tel, stdout)
}

func matchWith(ctx context.Context, logger *zap.Logger, rs *ruleset.RuleSet, opts matchOptions, tel telemetry, stdout io.Writer) error {
	records, err := process.ProcessPaths(ctx, logger, rs, opts.paths, process.Options{
		Workers:  opts.workers,
		Progress: opts.progress,
		Metrics:  tel.metrics,
	})
	if err != nil {
		return err
	}
	logger.Debug("Matched corpus", zap.Int("mentions", len(records)))
	return writeRecords(records, opts, stdout)
}

func writeRecords(records []process.Record, opts matchOptions, stdout io.Writer) error {
	w := stdout
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("error creating output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if opts.json {
		return formatter.WriteJSON(w, records)
	}
	return formatter.WriteText(w, records)
}

// watchAndMatch runs once, then again after every successful reload of
// the rule file, until ctx is done. With a metrics address it serves the
// metrics for as long as it watches.
func watchAndMatch(ctx context.Context, logger *zap.Logger, opts matchOptions, tel telemetry, stdout io.Writer) error {
	w, err := ruleset.NewWatcher(opts.rules, opts.mode, logger)
	if err != nil {
		tel.metrics.ObserveCompileError()
		return err
	}

	served := make(chan error, 1)
	if opts.metricsAddr != "" && tel.gatherer != nil {
		go func() { served <- metrics.Serve(ctx, opts.metricsAddr, tel.gatherer, logger) }()
	} else {
		served <- nil
	}

	reloads := make(chan *ruleset.RuleSet, 1)
	w.OnReload(func(rs *ruleset.RuleSet) {
		// keep only the latest rule set
		select {
		case <-reloads:
		default:
		}
		reloads <- rs
	})

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	rs := w.Current()
	for {
		if err := matchWith(ctx, logger, rs, opts, tel, stdout); err != nil {
			logger.Error("Error matching corpus", zap.Error(err))
		}
		if err := tel.report(opts); err != nil {
			logger.Error("Error writing metrics", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			if err := <-served; err != nil {
				return err
			}
			return <-done
		case rs = <-reloads:
		}
	}
}
