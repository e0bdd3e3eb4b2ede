package main

import (
	"fmt"

	"github.com/hairizuan-noorazman/steprunner/database"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the versioned outcome schema",
	Long: "Apply or roll back the versioned outcome schema. Set database.auto_migrate to false " +
		"once the schema is managed with these commands.",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := database.MigrateUp(cfg.Database); err != nil {
			return err
		}
		return printSchemaVersion(cfg.Database, "Migrations applied")
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := database.MigrateDown(cfg.Database); err != nil {
			return err
		}
		return printSchemaVersion(cfg.Database, "Migration rolled back")
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the applied schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return printSchemaVersion(cfg.Database, "Schema")
	},
}

func printSchemaVersion(cfg database.Config, prefix string) error {
	version, dirty, err := database.MigrationVersion(cfg)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if flagJSON {
		printJSON(map[string]interface{}{"version": version, "dirty": dirty})
		return nil
	}
	msg := fmt.Sprintf("%s: schema version %d", prefix, version)
	if dirty {
		msg += " (dirty)"
	}
	printMessage(msg)
	return nil
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateVersionCmd)
	rootCmd.AddCommand(migrateCmd)
}
