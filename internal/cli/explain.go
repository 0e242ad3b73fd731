package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/leandroluk/golemfilter/config"
	"github.com/leandroluk/golemfilter/core"
	mongodriver "github.com/leandroluk/golemfilter/driver/mongo"
	"github.com/leandroluk/golemfilter/driver/postgres"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson"
)

func newExplainCommand(a *app) *cobra.Command {
	flags := &queryFlags{}

	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Show the joins and the rendered query for a filter document",
		Long: `Resolve a filter document against the schema and print the models the
query touches, the joins needed to reach them and the query the configured
driver would run. No database connection is opened.`,
		Example: `  # Customers with a large order
  golem explain --schema schema.yaml --from Customer \
    --filters '{"field": "orders.total", "op": ">", "value": 100}'

  # Render the aggregation pipeline instead of SQL
  golem explain --driver mongo --from Customer --filters @filters.json --order-by -name`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry, err := a.registry()
			if err != nil {
				return err
			}
			q, err := flags.build(cmd, registry)
			if err != nil {
				return err
			}
			return explain(cmd.OutOrStdout(), a.cfg.Driver, q)
		},
	}
	flags.register(cmd)

	return cmd
}

func explain(w io.Writer, driver string, q *core.Query) error {
	modelNameList := []string{}
	for _, model := range q.Models() {
		modelNameList = append(modelNameList, model.Name())
	}
	fmt.Fprintf(w, "Models: %s\n", strings.Join(modelNameList, ", "))

	if joinList := q.Joins(); len(joinList) > 0 {
		fmt.Fprintln(w, "Joins:")
		for _, join := range joinList {
			fmt.Fprintf(w, "  %s -> %s via %s.%s\n", join.Parent.Name(), join.Target.Name(), relationOwner(join).Name(), join.Relation.Name)
			for _, hop := range join.Hops() {
				fmt.Fprintf(w, "    %s.%s = %s.%s\n", hop.From, hop.FromColumn, hop.Collection, hop.ToColumn)
			}
		}
	}

	switch driver {
	case config.DriverMongo:
		pipeline, err := mongodriver.BuildPipeline(q)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Collection: %s\n", q.Entities()[0].Collection)
		fmt.Fprintln(w, "Pipeline:")
		for _, stage := range pipeline {
			data, err := bson.MarshalExtJSON(stage, false, false)
			if err != nil {
				return fmt.Errorf("failed to render stage: %w", err)
			}
			fmt.Fprintf(w, "  %s\n", data)
		}
	case config.DriverPostgres:
		sqlQuery, argList, err := postgres.BuildSelect(q)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "SQL: %s\n", sqlQuery)
		if len(argList) > 0 {
			fmt.Fprintf(w, "Args: %v\n", argList)
		}
	default:
		return fmt.Errorf("%w: unknown driver %q", config.ErrInvalidConfig, driver)
	}
	return nil
}

// relationOwner is the model the joined relation is declared on.
func relationOwner(join core.Join) *core.SchemaCore {
	if join.Reverse {
		return join.Target
	}
	return join.Parent
}
