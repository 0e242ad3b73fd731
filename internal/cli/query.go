package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/leandroluk/golemfilter/config"
	"github.com/leandroluk/golemfilter/core"
	mongodriver "github.com/leandroluk/golemfilter/driver/mongo"
	"github.com/leandroluk/golemfilter/driver/postgres"
	"github.com/spf13/cobra"
)

func newQueryCommand(a *app) *cobra.Command {
	flags := &queryFlags{}
	var count bool

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run a filter document against the database",
		Long: `Resolve a filter document against the schema, join the models it needs
and run the query on the configured database. Matching rows of the --from
model are printed as JSON.`,
		Example: `  # Orders tagged vip
  golem query --from Order --filters '{"model": "Tag", "field": "label", "op": "==", "value": "vip"}'

  # Count instead of listing
  golem query --from Customer --filters @filters.json --count`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			registry, err := a.registry()
			if err != nil {
				return err
			}
			q, err := flags.build(cmd, registry)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			driver, err := a.openDriver(ctx)
			if err != nil {
				return fmt.Errorf("failed to connect: %w", err)
			}
			defer func() { _ = driver.Close(ctx) }()

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			if count {
				total, err := driver.Count(ctx, q)
				if err != nil {
					return err
				}
				return enc.Encode(map[string]int64{"count": total})
			}

			rowList, err := driver.Find(ctx, q)
			if err != nil {
				return err
			}
			a.logger.Debug("query finished", "model", flags.from, "rows", len(rowList))
			if rowList == nil {
				rowList = []map[string]any{}
			}
			return enc.Encode(rowList)
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&count, "count", false, "Print the number of matching rows instead of the rows")

	return cmd
}

// openDriver connects the configured driver.
func (a *app) openDriver(ctx context.Context) (core.Driver, error) {
	switch a.cfg.Driver {
	case config.DriverMongo:
		return mongodriver.NewMongoDriver(ctx, a.cfg.Mongo.URI, a.cfg.Mongo.Database, mongodriver.WithLogger(a.logger))
	default:
		return postgres.NewPostgresDriver(ctx, a.cfg.Postgres.URL, postgres.WithLogger(a.logger))
	}
}
