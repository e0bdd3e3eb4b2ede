package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hairizuan-noorazman/steprunner/scenario"
	"github.com/hairizuan-noorazman/steprunner/session"
	"github.com/hairizuan-noorazman/steprunner/step"
	"github.com/spf13/cobra"
)

var (
	runType        string
	runConcurrency int
	runExpectTitle string
	runSave        bool
)

var runCmd = &cobra.Command{
	Use:   "run URL...",
	Short: "Run a smoke scenario against each URL",
	Long: `Opens every URL in its own browser session, checks that the page rendered and,
optionally, that its title contains a text. Scenarios run concurrently.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSmoke,
}

func init() {
	runCmd.Flags().StringVarP(&runType, "type", "t", "", "browser type (default from config)")
	runCmd.Flags().IntVar(&runConcurrency, "concurrency", 0, "scenarios run at once (default from config)")
	runCmd.Flags().StringVar(&runExpectTitle, "expect-title", "", "text every page title must contain")
	runCmd.Flags().BoolVar(&runSave, "save", false, "store outcomes in the database")
	rootCmd.AddCommand(runCmd)
}

func runSmoke(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log := newLogger(cfg)

	factory := session.NewPlaywrightFactory(cfg.Session.Playwright(), log)
	defer factory.Stop()

	hook, _, err := evidenceHook(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to set up evidence capture: %w", err)
	}

	listeners := step.NewListeners()
	listeners.Register(step.NewLoggingListener(log))
	interceptor := step.NewInterceptor(log, step.WithListeners(listeners), step.WithEvidenceHook(hook))

	reporters := []scenario.Reporter{scenario.NewLogReporter(log)}
	if runSave {
		store, closeDB, err := openOutcomeStore(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer closeDB()
		reporters = append(reporters, scenario.NewStoreReporter(store))
	}

	harness := scenario.NewHarness(factory, interceptor, log,
		scenario.WithReporters(reporters...),
		scenario.WithSessionOptions(session.WithDefaultType(cfg.Session.DefaultType)),
	)

	concurrency := cfg.Suite.Concurrency
	if cmd.Flags().Changed("concurrency") {
		concurrency = runConcurrency
	}

	scenarios := make([]scenario.Scenario, 0, len(args))
	for _, url := range args {
		scenarios = append(scenarios, smokeScenario(url, runType, runExpectTitle))
	}

	results, runErr := scenario.NewSuite(harness, concurrency, log).Run(ctx, scenarios)
	printRunResults(results)
	if runErr != nil {
		return runErr
	}

	failed := 0
	for _, r := range results {
		if !r.Passed() {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d scenarios failed", failed, len(results))
	}
	return nil
}
