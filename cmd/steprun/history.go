package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	historyLimit  int
	historyOffset int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored scenario outcomes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		cfg, err := LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		store, closeDB, err := openOutcomeStore(ctx, cfg, newLogger(cfg))
		if err != nil {
			return err
		}
		defer closeDB()

		summaries, err := store.List(ctx, historyLimit, historyOffset)
		if err != nil {
			return fmt.Errorf("failed to list outcomes: %w", err)
		}
		if flagJSON {
			printJSON(summaries)
			return nil
		}

		rows := make([][]string, 0, len(summaries))
		for _, s := range summaries {
			rows = append(rows, []string{
				s.ID.String(),
				s.Title,
				string(s.Result),
				fmt.Sprintf("%d", s.StepCount),
				(time.Duration(s.DurationMS) * time.Millisecond).String(),
				s.StartedAt.Local().Format(time.RFC3339),
			})
		}
		printTable([]string{"ID", "SCENARIO", "RESULT", "STEPS", "DURATION", "STARTED"}, rows)
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show the step tree of a stored outcome",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid outcome ID: %w", err)
		}

		ctx := context.Background()
		cfg, err := LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		store, closeDB, err := openOutcomeStore(ctx, cfg, newLogger(cfg))
		if err != nil {
			return err
		}
		defer closeDB()

		o, err := store.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load outcome: %w", err)
		}
		printOutcome(o)
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum outcomes to list")
	historyCmd.Flags().IntVar(&historyOffset, "offset", 0, "outcomes to skip")
	historyCmd.AddCommand(historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}
