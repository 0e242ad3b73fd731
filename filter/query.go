package filter

import "fmt"

// JoinResult reports the outcome of a join attempt.
type JoinResult int

const (
	// Joined means the join was added to the returned query.
	Joined JoinResult = iota
	// AlreadyPresent means the target model was already part of the query.
	AlreadyPresent
	// NotJoinable means the join cannot be derived automatically, for
	// example when several relationship paths lead to the target.
	NotJoinable
)

func (r JoinResult) String() string {
	switch r {
	case Joined:
		return "joined"
	case AlreadyPresent:
		return "already-present"
	case NotJoinable:
		return "not-joinable"
	default:
		return fmt.Sprintf("JoinResult(%d)", int(r))
	}
}

// ModelSource lists the models taking part in a query: its primary entities
// first, then the targets of its joins.
type ModelSource interface {
	Models() []Model
}

// Query is a relational query that can be extended with joins. Q is the
// concrete query type; joins never mutate the receiver and return the
// query to continue with instead.
type Query[Q any] interface {
	ModelSource
	// JoinRelation joins the model behind relationship of parent.
	JoinRelation(parent Model, relationship string) (Q, JoinResult)
	// JoinModel joins target through whatever relationship links it to the
	// models already in the query.
	JoinModel(target Model) (Q, JoinResult)
}

// Registry finds models by name.
type Registry interface {
	Lookup(name string) (Model, bool)
}

// ModelsInQuery returns the models of q keyed by name. When two models share
// a name the later one wins.
func ModelsInQuery(q ModelSource) map[string]Model {
	modelMap := make(map[string]Model)
	for _, model := range q.Models() {
		modelMap[model.Name()] = model
	}
	return modelMap
}

// DefaultModel returns the only model of q, or false when q holds zero or
// several models.
func DefaultModel(q ModelSource) (Model, bool) {
	modelMap := ModelsInQuery(q)
	if len(modelMap) != 1 {
		return nil, false
	}
	for _, model := range modelMap {
		return model, true
	}
	return nil, false
}

// ResolveModel returns the model that the leaf spec applies to within q.
//
// A spec naming a model resolves to that model, which must be in q. A spec
// without a model resolves to the only model of q or, when q holds several,
// to defaultModel. Without a default the leaf is ambiguous.
func ResolveModel(spec Leaf, q ModelSource, defaultModel Model) (Model, error) {
	modelMap := ModelsInQuery(q)
	if len(modelMap) == 0 {
		return nil, fmt.Errorf("%w: query contains no models", ErrBadQuery)
	}

	if spec.Model != "" {
		model, ok := modelMap[spec.Model]
		if !ok {
			return nil, fmt.Errorf("%w: query does not contain model `%s`", ErrBadSpec, spec.Model)
		}
		return model, nil
	}

	if len(modelMap) == 1 {
		for _, model := range modelMap {
			return model, nil
		}
	}
	if defaultModel != nil {
		return defaultModel, nil
	}
	return nil, fmt.Errorf("%w: ambiguous spec; please specify a model", ErrBadSpec)
}
