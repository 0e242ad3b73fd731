// Package filter resolves declarative filter trees against a relational query.
//
// It maps a filter's field reference (optionally qualified by a relationship,
// as in "orders.total") onto a concrete column, decides which model a filter
// applies to when a query spans several models, and adds the joins a filter
// tree needs before predicates are built.
//
// The package only reads models and queries through the Model and Query
// interfaces. The golem core package provides the concrete implementations.
package filter
