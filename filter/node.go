package filter

import "strings"

// separator splits a relationship name from a field name ("orders.total").
const separator = "."

// Node is an element of a filter tree: either a Leaf or a Group.
type Node interface {
	isNode()
}

// Leaf is a single field-based filter, optionally scoped to a named model.
type Leaf struct {
	Field string
	Model string
}

// Group is a boolean composition (AND, OR, NOT) of child nodes.
type Group struct {
	Filters []Node
}

func (Leaf) isNode()  {}
func (Group) isNode() {}

// relation returns the relationship segment of a dotted field.
// ok is false unless the field has exactly one separator.
func (l Leaf) relation() (name string, ok bool) {
	parts := strings.Split(l.Field, separator)
	if len(parts) != 2 {
		return "", false
	}
	return parts[0], true
}

// Walk calls fn for every Leaf in nodes, depth first, in order.
func Walk(nodes []Node, fn func(Leaf)) {
	for _, node := range nodes {
		switch n := node.(type) {
		case Leaf:
			fn(n)
		case *Leaf:
			if n != nil {
				fn(*n)
			}
		case Group:
			Walk(n.Filters, fn)
		case *Group:
			if n != nil {
				Walk(n.Filters, fn)
			}
		}
	}
}

// NamedModels returns the distinct model names referenced by leaves in nodes,
// in the order they first appear.
func NamedModels(nodes []Node) []string {
	seen := map[string]bool{}
	nameList := []string{}
	Walk(nodes, func(leaf Leaf) {
		if leaf.Model == "" || seen[leaf.Model] {
			return
		}
		seen[leaf.Model] = true
		nameList = append(nameList, leaf.Model)
	})
	return nameList
}
