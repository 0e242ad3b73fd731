// Package cli provides the command-line interface for golem.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/leandroluk/golemfilter/config"
	"github.com/leandroluk/golemfilter/core"
	"github.com/leandroluk/golemfilter/filter"
	"github.com/leandroluk/golemfilter/schemafile"
	"github.com/spf13/cobra"
)

// Version information (set at build time).
var Version = "0.1.0"

// app is the state shared by the commands of one invocation.
type app struct {
	cfgFile string
	cfg     *config.Config
	logger  *slog.Logger
}

// registry loads the models of the configured schema file.
func (a *app) registry() (*core.Registry, error) {
	if a.cfg.Schema == "" {
		return nil, fmt.Errorf("%w: schema is required (--schema or GOLEM_SCHEMA)", config.ErrInvalidConfig)
	}
	return schemafile.Load(a.cfg.Schema)
}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "golem",
		Short: "golem - filter-driven queries over related models",
		Long: `golem resolves filter documents against a schema of related models,
joins the models the filters need and runs the resulting query on
PostgreSQL or MongoDB.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			var err error
			a.cfg, err = config.Load(a.cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			level, err := a.cfg.LogLevel()
			if err != nil {
				return err
			}
			a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			filter.SetLogger(a.logger)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (YAML)")
	rootCmd.PersistentFlags().String("driver", "", "Driver to use (postgres|mongo)")
	rootCmd.PersistentFlags().String("schema", "", "Path to the schema file")
	rootCmd.PersistentFlags().String("postgres-url", "", "PostgreSQL connection string")
	rootCmd.PersistentFlags().String("mongo-uri", "", "MongoDB connection URI")
	rootCmd.PersistentFlags().String("mongo-database", "", "MongoDB database name")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug|info|warn|error)")

	_ = rootCmd.RegisterFlagCompletionFunc("driver", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{config.DriverPostgres, config.DriverMongo}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newExplainCommand(a))
	rootCmd.AddCommand(newQueryCommand(a))

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
