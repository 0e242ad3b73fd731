// Package core provides the fundamental building blocks of the golem ORM.
// It defines abstractions for queries, models, schema handling, and drivers.
package core

import "github.com/leandroluk/golemfilter/filter"

// Condition represents a single clause in a query filter.
//
// A condition can target a specific field (FieldName) with a given operator
// (Eq, Gt, Like, In, etc.) and a comparison value. Conditions can also
// be nested using Children, enabling composition of complex logical
// expressions with AND, OR, and NOT.
//
// FieldName may be qualified by a relationship ("orders.total") and
// ModelName may pin the condition to one model of a multi-model query.
// Once resolved by ApplyFilters, FieldName is a plain column name and
// Collection names the table it belongs to.
//
// Example:
//
//	cond := (&Condition{FieldName: "orders.total"}).Gt(100).
//		And((&Condition{FieldName: "status"}).Eq("active"))
type Condition struct {
	ModelName  string       // Model the condition applies to, if not the default
	FieldName  string       // The field/column name this condition applies to
	Operator   *Operator    // The comparison operator (Eq, Gt, Like, etc.)
	Value      any          // The comparison value
	Children   []*Condition // Nested conditions (for AND, OR, NOT expressions)
	Collection string       // Table of the resolved column
}

// Cond starts a condition on a field, optionally pinned to a model.
//
// Example:
//
//	core.Cond("total", "Order").Gte(100)
func Cond(fieldName string, modelName ...string) *Condition {
	c := &Condition{FieldName: fieldName}
	if len(modelName) > 0 {
		c.ModelName = modelName[0]
	}
	return c
}

// IsGroup reports whether the condition combines child conditions.
func (c *Condition) IsGroup() bool {
	return c.Operator != nil && c.Operator.IsLogical()
}

// Node converts the condition into a filter tree node.
func (c *Condition) Node() filter.Node {
	if c.IsGroup() {
		nodeList := make([]filter.Node, 0, len(c.Children))
		for _, child := range c.Children {
			if child != nil {
				nodeList = append(nodeList, child.Node())
			}
		}
		return filter.Group{Filters: nodeList}
	}
	return filter.Leaf{Field: c.FieldName, Model: c.ModelName}
}

// And combines this condition with additional conditions using the logical AND operator.
func (c *Condition) And(conditions ...*Condition) *Condition {
	return &Condition{
		Operator: &OpAnd,
		Children: append([]*Condition{c}, conditions...),
	}
}

// Or combines this condition with additional conditions using the logical OR operator.
func (c *Condition) Or(conditions ...*Condition) *Condition {
	return &Condition{
		Operator: &OpOr,
		Children: append([]*Condition{c}, conditions...),
	}
}

// Not negates this condition using the logical NOT operator.
func (c *Condition) Not() *Condition {
	return &Condition{
		Operator: &OpNot,
		Children: []*Condition{c},
	}
}

// Nil sets this condition to check for NULL values (IS NULL).
func (c *Condition) Nil() *Condition {
	c.Operator = &OpNil
	c.Value = nil
	return c
}

// Eq sets this condition to check for equality (=).
func (c *Condition) Eq(v any) *Condition {
	c.Operator = &OpEq
	c.Value = v
	return c
}

// Ne sets this condition to check for inequality (<>).
func (c *Condition) Ne(v any) *Condition {
	c.Operator = &OpNe
	c.Value = v
	return c
}

// Gt sets this condition to check for "greater than" (>).
func (c *Condition) Gt(v any) *Condition {
	c.Operator = &OpGt
	c.Value = v
	return c
}

// Gte sets this condition to check for "greater than or equal" (>=).
func (c *Condition) Gte(v any) *Condition {
	c.Operator = &OpGte
	c.Value = v
	return c
}

// Lt sets this condition to check for "less than" (<).
func (c *Condition) Lt(v any) *Condition {
	c.Operator = &OpLt
	c.Value = v
	return c
}

// Lte sets this condition to check for "less than or equal" (<=).
func (c *Condition) Lte(v any) *Condition {
	c.Operator = &OpLte
	c.Value = v
	return c
}

// Like sets this condition to perform a pattern match (SQL LIKE / regex equivalent).
func (c *Condition) Like(v any) *Condition {
	c.Operator = &OpLike
	c.Value = v
	return c
}

// ILike is Like ignoring case.
func (c *Condition) ILike(v any) *Condition {
	c.Operator = &OpILike
	c.Value = v
	return c
}

// In sets this condition to check whether the field value is contained in the provided list.
func (c *Condition) In(values ...any) *Condition {
	c.Operator = &OpIn
	c.Value = values
	return c
}

// FieldOf starts a condition on the column behind a struct field of T,
// pinned to T's model.
//
// Example:
//
//	core.FieldOf(customerSchema, func(c *Customer) *string { return &c.Name }).Eq("Ada")
func FieldOf[T any, F any](schema *SchemaMeta[T], selector func(*T) *F) *Condition {
	field, ok := schema.fieldsByOffset[offsetOf(selector)]
	if !ok {
		panic("core: FieldOf: field not found by selector")
	}
	return &Condition{ModelName: schema.Name(), FieldName: field.DatabaseColumnName}
}
