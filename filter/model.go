package filter

import (
	"fmt"
	"slices"
	"strings"
)

// Model exposes the schema of a relational entity type.
type Model interface {
	// Name is unique among all models of a registry.
	Name() string
	ColumnNames() []string
	RelationshipNames() []string
	// RelatedModel returns the model on the other side of a relationship.
	RelatedModel(relationship string) (Model, bool)
}

// Column is a resolved reference to a column of a model.
type Column struct {
	Model Model
	Name  string
}

func (c Column) String() string {
	return c.Model.Name() + separator + c.Name
}

// Resolve maps a field name onto a column of model.
//
// A plain name must be a column of model. A dotted name ("orders.total")
// must name a relationship of model followed by a column of the related
// model. Deeper paths are not supported.
//
// Example:
//
//	column, err := filter.Resolve(customer, "orders.total")
//	// column.Model is Order, column.Name is "total"
func Resolve(model Model, field string) (Column, error) {
	parts := strings.Split(field, separator)
	switch len(parts) {
	case 1:
		if slices.Contains(model.ColumnNames(), field) {
			return Column{Model: model, Name: field}, nil
		}
	case 2:
		relationName, columnName := parts[0], parts[1]
		if slices.Contains(model.RelationshipNames(), relationName) {
			related, ok := model.RelatedModel(relationName)
			if ok && slices.Contains(related.ColumnNames(), columnName) {
				return Column{Model: related, Name: columnName}, nil
			}
		}
	}
	return Column{}, fmt.Errorf("%w: model %s has no column `%s`", ErrFieldNotFound, model.Name(), field)
}
