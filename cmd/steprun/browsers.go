package main

import (
	"fmt"

	"github.com/hairizuan-noorazman/steprunner/session"
	"github.com/spf13/cobra"
)

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the supported browser types",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		factory := session.NewPlaywrightFactory(cfg.Session.Playwright(), newLogger(cfg))

		types := factory.SupportedTypes()
		if flagJSON {
			printJSON(types)
			return nil
		}
		rows := make([][]string, 0, len(types))
		for _, t := range types {
			def := ""
			if t == cfg.Session.DefaultType {
				def = "*"
			}
			rows = append(rows, []string{t, def})
		}
		printTable([]string{"TYPE", "DEFAULT"}, rows)
		return nil
	},
}

var installCmd = &cobra.Command{
	Use:   "install [TYPE...]",
	Short: "Install the Playwright driver and browsers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		factory := session.NewPlaywrightFactory(cfg.Session.Playwright(), newLogger(cfg))

		types := make([]string, 0, len(args))
		for _, name := range args {
			resolved, err := session.ResolveType(factory, name)
			if err != nil {
				return err
			}
			types = append(types, resolved)
		}
		if err := session.Install(types...); err != nil {
			return err
		}
		printMessage("Browsers installed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(typesCmd)
	rootCmd.AddCommand(installCmd)
}
