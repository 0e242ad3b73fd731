// Package core provides the fundamental building blocks of the golem ORM.
// This file turns filter conditions written against model and relationship
// names into table-qualified conditions on a query.
package core

import (
	"errors"
	"fmt"

	"github.com/leandroluk/golemfilter/filter"
)

// ErrInvalidFilter is returned for conditions or filter documents that are
// malformed, such as a field condition without an operator.
var ErrInvalidFilter = errors.New("invalid filter")

// ApplyFilters resolves conditions against q and returns q filtered by them.
//
// Before resolving, it joins the relationships referenced by dotted fields of
// the query's only model, then every model named by a condition (looked up in
// registry, which may be nil), then the relationships referenced by dotted
// fields pinned to those named models. Named models may be reached through
// the relationships joined first. Joins that cannot be derived are skipped.
// Each field condition is then resolved to a column of a model of the query.
//
// Any resolution error aborts the whole call; q is never partially filtered.
//
// Example:
//
//	q, err := core.ApplyFilters(core.NewQuery(&customerSchema.SchemaCore), registry,
//		core.Cond("name").Like("A%"),
//		core.Cond("orders.total").Gt(100),
//		core.Cond("tags.label", "Order").Eq("gift"),
//	)
func ApplyFilters(q *Query, registry *Registry, conditions ...*Condition) (*Query, error) {
	nodeList := make([]filter.Node, 0, len(conditions))
	for _, condition := range conditions {
		if condition != nil {
			nodeList = append(nodeList, condition.Node())
		}
	}

	defaultModel, _ := filter.DefaultModel(q)

	// Leaves are planned against the model they resolve to.
	defaultLeafList := []filter.Node{}
	pinnedNameList := []string{}
	pinnedLeafMap := map[string][]filter.Node{}
	filter.Walk(nodeList, func(leaf filter.Leaf) {
		if leaf.Model == "" || (defaultModel != nil && leaf.Model == defaultModel.Name()) {
			defaultLeafList = append(defaultLeafList, leaf)
			return
		}
		if _, seen := pinnedLeafMap[leaf.Model]; !seen {
			pinnedNameList = append(pinnedNameList, leaf.Model)
		}
		pinnedLeafMap[leaf.Model] = append(pinnedLeafMap[leaf.Model], leaf)
	})

	if defaultModel != nil {
		q = filter.PlanImplicitJoins(q, defaultModel, defaultLeafList)
	}
	if nameList := filter.NamedModels(nodeList); registry != nil && len(nameList) > 0 {
		var err error
		if q, err = filter.AutoJoin(q, registry, nameList...); err != nil {
			return nil, err
		}
	}
	for _, name := range pinnedNameList {
		if model, ok := filter.ModelsInQuery(q)[name]; ok {
			q = filter.PlanImplicitJoins(q, model, pinnedLeafMap[name])
		}
	}

	resolvedList := make([]*Condition, 0, len(conditions))
	for _, condition := range conditions {
		if condition == nil {
			continue
		}
		resolved, err := resolveCondition(q, defaultModel, condition)
		if err != nil {
			return nil, err
		}
		resolvedList = append(resolvedList, resolved)
	}
	return q.Filter(resolvedList...), nil
}

// resolveCondition returns a copy of condition whose field conditions name
// plain columns qualified by their table.
func resolveCondition(q *Query, defaultModel filter.Model, condition *Condition) (*Condition, error) {
	if condition.IsGroup() {
		childList := make([]*Condition, 0, len(condition.Children))
		for _, child := range condition.Children {
			if child == nil {
				continue
			}
			resolved, err := resolveCondition(q, defaultModel, child)
			if err != nil {
				return nil, err
			}
			childList = append(childList, resolved)
		}
		return &Condition{Operator: condition.Operator, Children: childList}, nil
	}

	if condition.Operator == nil {
		return nil, fmt.Errorf("%w: condition on `%s` has no operator", ErrInvalidFilter, condition.FieldName)
	}

	model, err := filter.ResolveModel(filter.Leaf{Field: condition.FieldName, Model: condition.ModelName}, q, defaultModel)
	if err != nil {
		return nil, err
	}
	column, err := filter.Resolve(model, condition.FieldName)
	if err != nil {
		return nil, err
	}
	schema, ok := q.schema(column.Model.Name())
	if !ok {
		return nil, fmt.Errorf("%w: query does not contain model `%s` required by `%s`",
			filter.ErrBadSpec, column.Model.Name(), condition.FieldName)
	}

	return &Condition{
		FieldName:  column.Name,
		Operator:   condition.Operator,
		Value:      condition.Value,
		Collection: schema.Collection,
	}, nil
}
