// Package postgres implements core.Driver on PostgreSQL through pgx.
// This file renders a core.Query, joins included, into SQL.
package postgres

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/leandroluk/golemfilter/core"
)

// statement accumulates positional arguments while SQL is rendered.
type statement struct {
	argList []any
}

func (s *statement) bind(value any) string {
	s.argList = append(s.argList, value)
	return fmt.Sprintf("$%d", len(s.argList))
}

func formatTable(database string, collection string) string {
	if database != "" {
		return pgx.Identifier{database, collection}.Sanitize()
	}
	return pgx.Identifier{collection}.Sanitize()
}

func formatColumn(collection string, column string) string {
	if collection != "" {
		return pgx.Identifier{collection, column}.Sanitize()
	}
	return pgx.Identifier{column}.Sanitize()
}

// BuildSelect renders q into a SELECT of the columns of its first entity.
//
// Each join adds one JOIN per hop; many-to-many joins go through their join
// table. Rows of the first entity repeat once per matching joined row.
//
// Example:
//
//	sqlQuery, argList, err := postgres.BuildSelect(q)
//	// SELECT "customers"."id", "customers"."name" FROM "customers"
//	// JOIN "orders" ON "customers"."id" = "orders"."customer_id"
//	// WHERE "orders"."total" > $1
func BuildSelect(q *core.Query) (string, []any, error) {
	entityList := q.Entities()
	if len(entityList) == 0 {
		return "", nil, fmt.Errorf("%w: query has no entities", core.ErrUnsupportedQuery)
	}

	primary := entityList[0]
	columnNameList := make([]string, 0, len(primary.Fields))
	for _, field := range primary.Fields {
		columnNameList = append(columnNameList, formatColumn(primary.Collection, field.DatabaseColumnName))
	}
	if len(columnNameList) == 0 {
		return "", nil, fmt.Errorf("%w: model %s has no columns", core.ErrUnsupportedQuery, primary.Name())
	}

	stmt := &statement{}
	body, err := buildBody(q, stmt)
	if err != nil {
		return "", nil, err
	}
	sqlQuery := "SELECT " + strings.Join(columnNameList, ", ") + body

	where := q.Where()
	if len(where.Sort) > 0 {
		orderPartList := []string{}
		for _, sortItem := range where.Sort {
			if sortItem.Collection == "" {
				return "", nil, fmt.Errorf("%w: cannot order by `%s`: no model of the query has that column", core.ErrInvalidFilter, sortItem.FieldName)
			}
			direction := "ASC"
			if sortItem.Order < 0 {
				direction = "DESC"
			}
			orderPartList = append(orderPartList, formatColumn(sortItem.Collection, sortItem.FieldName)+" "+direction)
		}
		sqlQuery += " ORDER BY " + strings.Join(orderPartList, ", ")
	}
	if where.Limit > 0 {
		sqlQuery += fmt.Sprintf(" LIMIT %d", where.Limit)
	}
	if where.Offset > 0 {
		sqlQuery += fmt.Sprintf(" OFFSET %d", where.Offset)
	}
	return sqlQuery, stmt.argList, nil
}

// BuildCount renders q into a SELECT COUNT(*), ignoring ordering and
// pagination.
func BuildCount(q *core.Query) (string, []any, error) {
	if len(q.Entities()) == 0 {
		return "", nil, fmt.Errorf("%w: query has no entities", core.ErrUnsupportedQuery)
	}
	stmt := &statement{}
	body, err := buildBody(q, stmt)
	if err != nil {
		return "", nil, err
	}
	return "SELECT COUNT(*)" + body, stmt.argList, nil
}

// buildBody renders the FROM, JOIN and WHERE clauses of q.
func buildBody(q *core.Query, stmt *statement) (string, error) {
	tableList := []string{}
	for _, schema := range q.Entities() {
		tableList = append(tableList, formatTable(schema.Database, schema.Collection))
	}

	var builder strings.Builder
	builder.WriteString(" FROM ")
	builder.WriteString(strings.Join(tableList, ", "))

	for _, join := range q.Joins() {
		for _, hop := range join.Hops() {
			fmt.Fprintf(&builder, " JOIN %s ON %s = %s",
				formatTable(hop.Database, hop.Collection),
				formatColumn(hop.From, hop.FromColumn),
				formatColumn(hop.Collection, hop.ToColumn),
			)
		}
	}

	if condition := q.Where().Condition; condition != nil {
		whereClause, err := buildCondition(condition, stmt)
		if err != nil {
			return "", err
		}
		builder.WriteString(" WHERE ")
		builder.WriteString(whereClause)
	}
	return builder.String(), nil
}

func buildCondition(condition *core.Condition, stmt *statement) (string, error) {
	if condition.Operator == nil {
		return "", fmt.Errorf("%w: condition on `%s` has no operator", core.ErrInvalidFilter, condition.FieldName)
	}

	if condition.IsGroup() {
		partList := []string{}
		for _, child := range condition.Children {
			if child == nil {
				continue
			}
			part, err := buildCondition(child, stmt)
			if err != nil {
				return "", err
			}
			partList = append(partList, part)
		}
		if len(partList) == 0 {
			if *condition.Operator == core.OpOr {
				return "FALSE", nil
			}
			return "TRUE", nil
		}
		switch *condition.Operator {
		case core.OpOr:
			return "(" + strings.Join(partList, " OR ") + ")", nil
		case core.OpNot:
			return "NOT (" + strings.Join(partList, " AND ") + ")", nil
		default:
			return "(" + strings.Join(partList, " AND ") + ")", nil
		}
	}

	column := formatColumn(condition.Collection, condition.FieldName)
	switch *condition.Operator {
	case core.OpNil:
		return column + " IS NULL", nil
	case core.OpEq:
		return column + " = " + stmt.bind(condition.Value), nil
	case core.OpNe:
		return column + " <> " + stmt.bind(condition.Value), nil
	case core.OpGt:
		return column + " > " + stmt.bind(condition.Value), nil
	case core.OpGte:
		return column + " >= " + stmt.bind(condition.Value), nil
	case core.OpLt:
		return column + " < " + stmt.bind(condition.Value), nil
	case core.OpLte:
		return column + " <= " + stmt.bind(condition.Value), nil
	case core.OpLike:
		return column + " LIKE " + stmt.bind(condition.Value), nil
	case core.OpILike:
		return column + " ILIKE " + stmt.bind(condition.Value), nil
	case core.OpIn:
		valueList := listOf(condition.Value)
		if len(valueList) == 0 {
			return "FALSE", nil
		}
		placeholderList := make([]string, 0, len(valueList))
		for _, value := range valueList {
			placeholderList = append(placeholderList, stmt.bind(value))
		}
		return column + " IN (" + strings.Join(placeholderList, ", ") + ")", nil
	}
	return "", fmt.Errorf("%w: operator %s", core.ErrUnsupportedQuery, *condition.Operator)
}

// listOf flattens an IN value into its elements. A value that is not a
// slice is a list of one.
func listOf(value any) []any {
	if valueList, ok := value.([]any); ok {
		return valueList
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return []any{value}
	}
	valueList := make([]any, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		valueList = append(valueList, rv.Index(i).Interface())
	}
	return valueList
}
