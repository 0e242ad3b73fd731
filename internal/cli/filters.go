package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/leandroluk/golemfilter/core"
	"github.com/spf13/cobra"
)

// queryFlags are the flags shared by the commands that build a query.
type queryFlags struct {
	from    string
	filters string
	orderBy []string
	limit   int
	offset  int
}

func (f *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.from, "from", "", "Model to query")
	cmd.Flags().StringVar(&f.filters, "filters", "", "Filter document as JSON, @file to read it from a file or @- for stdin")
	cmd.Flags().StringArrayVar(&f.orderBy, "order-by", nil, "Order by field, prefix with - for descending (repeatable)")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "Maximum number of rows")
	cmd.Flags().IntVar(&f.offset, "offset", 0, "Number of rows to skip")
	_ = cmd.MarkFlagRequired("from")
}

// filterDocument returns the raw filter document named by the --filters flag.
func (f *queryFlags) filterDocument(stdin io.Reader) ([]byte, error) {
	path, fromFile := strings.CutPrefix(f.filters, "@")
	if !fromFile {
		return []byte(f.filters), nil
	}
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read filters: %w", err)
	}
	return data, nil
}

// build resolves the flags against registry into a query.
func (f *queryFlags) build(cmd *cobra.Command, registry *core.Registry) (*core.Query, error) {
	schema, ok := registry.Schema(f.from)
	if !ok {
		return nil, fmt.Errorf("unknown model %q (known: %s)", f.from, strings.Join(registry.Names(), ", "))
	}

	data, err := f.filterDocument(cmd.InOrStdin())
	if err != nil {
		return nil, err
	}
	conditionList, err := core.ParseFilters(data)
	if err != nil {
		return nil, err
	}

	q, err := core.ApplyFilters(core.NewQuery(schema), registry, conditionList...)
	if err != nil {
		return nil, err
	}

	for _, field := range f.orderBy {
		if name, desc := strings.CutPrefix(field, "-"); desc {
			q = q.OrderBy(name, -1)
		} else {
			q = q.OrderBy(field, 1)
		}
	}
	if f.limit > 0 {
		q = q.Limit(f.limit)
	}
	if f.offset > 0 {
		q = q.Offset(f.offset)
	}
	return q, nil
}
