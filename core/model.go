// Package core provides the fundamental building blocks of the golem ORM.
// This file defines the Model[T], which represents the entry point for reading
// a specific schema (entity). A Model resolves filters, honours soft-deletes
// and maps rows back into T.
package core

import (
	"context"
)

// Model represents a repository-like abstraction for a schema T.
//
// It wraps a SchemaMeta[T], a Driver and the Registry used to resolve
// filters naming other models.
type Model[T any] struct {
	schema   *SchemaMeta[T]
	driver   Driver
	registry *Registry
}

// NewModel creates a new Model instance bound to a schema, driver and registry.
//
// Example:
//
//	customerModel := core.NewModel(customerSchema, postgresDriver, registry)
func NewModel[T any](schema *SchemaMeta[T], driver Driver, registry *Registry) *Model[T] {
	return &Model[T]{schema: schema, driver: driver, registry: registry}
}

// Schema returns the schema of the model.
func (m *Model[T]) Schema() *SchemaMeta[T] {
	return m.schema
}

// Query starts a query selecting T.
func (m *Model[T]) Query() *Query {
	return NewQuery(&m.schema.SchemaCore)
}

// Filter resolves conditions against q, adding the joins they need.
//
// Example:
//
//	q, err := customerModel.Filter(customerModel.Query(),
//		core.Cond("orders.total").Gt(100),
//	)
func (m *Model[T]) Filter(q *Query, conditions ...*Condition) (*Query, error) {
	return ApplyFilters(q, m.registry, conditions...)
}

// WithTenant creates a new Model[T] instance bound to a different database.
//
// It clones the schema and replaces only the Database name in SchemaCore.
// This is useful for multi-tenant or sharded architectures.
func (m *Model[T]) WithTenant(database string) *Model[T] {
	cloneSchema := *m.schema
	cloneSchema.Database = database
	return &Model[T]{schema: &cloneSchema, driver: m.driver, registry: m.registry}
}

// withSoftDelete applies soft-delete filtering rules to a query.
// It excludes deleted records unless WithDeleted or OnlyDeleted is set.
func (m *Model[T]) withSoftDelete(q *Query) *Query {
	if m.schema.deletedAtField == nil {
		return q
	}
	where := q.Where()
	deleted := &Condition{
		FieldName:  m.schema.deletedAtField.DatabaseColumnName,
		Collection: m.schema.Collection,
	}

	if where.OnlyDeleted {
		return q.Filter(deleted.Nil().Not())
	}
	if !where.WithDeleted {
		return q.Filter(deleted.Nil())
	}
	return q
}

// FindMany returns every T matching q.
func (m *Model[T]) FindMany(ctx context.Context, q *Query) ([]T, error) {
	q = m.withSoftDelete(q)

	var results []T
	err := dispatchOperation(ctx, OperationFind, q, func() error {
		rows, err := m.driver.Find(ctx, q)
		if err != nil {
			return err
		}
		results = make([]T, 0, len(rows))
		for _, row := range rows {
			value := new(T)
			mapToStruct(&m.schema.SchemaCore, row, value)
			results = append(results, *value)
		}
		return nil
	})
	return results, err
}

// FindOne returns the first T matching q, or nil when nothing matches.
func (m *Model[T]) FindOne(ctx context.Context, q *Query) (*T, error) {
	results, err := m.FindMany(ctx, q.Limit(1))
	if err != nil || len(results) == 0 {
		return nil, err
	}
	return &results[0], nil
}

// Count returns the number of entities matching the query.
//
// It applies soft-delete rules automatically and delegates counting to the driver.
func (m *Model[T]) Count(ctx context.Context, q *Query) (int64, error) {
	q = m.withSoftDelete(q)
	var count int64
	err := dispatchOperation(ctx, OperationCount, q, func() error {
		var err error
		count, err = m.driver.Count(ctx, q)
		return err
	})
	return count, err
}
