package filter

import "fmt"

// PlanImplicitJoins joins every relationship of model referenced by a dotted
// leaf in nodes ("orders.total" joins model's "orders").
//
// Joins are best effort: a join that cannot be derived leaves the query as
// it was and planning continues. If the relationship really is unreachable,
// resolving the leaf later reports it.
//
// Example:
//
//	q = filter.PlanImplicitJoins(q, customer, []filter.Node{
//		filter.Leaf{Field: "name"},
//		filter.Leaf{Field: "orders.total"},
//	})
func PlanImplicitJoins[Q Query[Q]](q Q, model Model, nodes []Node) Q {
	Walk(nodes, func(leaf Leaf) {
		relationName, ok := leaf.relation()
		if !ok {
			return
		}
		next, result := q.JoinRelation(model, relationName)
		if result != Joined {
			logger.Debug("implicit join skipped",
				"model", model.Name(), "relation", relationName, "result", result)
			return
		}
		q = next
	})
	return q
}

// AutoJoin joins each named model that is not yet part of q. Models are
// looked up in registry; joins that cannot be derived are skipped.
//
// It fails with ErrBadQuery when q holds no models and with ErrBadSpec when
// a name is not registered.
func AutoJoin[Q Query[Q]](q Q, registry Registry, names ...string) (Q, error) {
	if len(q.Models()) == 0 {
		return q, fmt.Errorf("%w: query contains no models", ErrBadQuery)
	}

	for _, name := range names {
		model, ok := registry.Lookup(name)
		if !ok {
			return q, fmt.Errorf("%w: model `%s` is not registered", ErrBadSpec, name)
		}
		if _, present := ModelsInQuery(q)[name]; present {
			continue
		}
		next, result := q.JoinModel(model)
		if result != Joined {
			logger.Debug("named join skipped", "model", name, "result", result)
			continue
		}
		q = next
	}
	return q, nil
}
