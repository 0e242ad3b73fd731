// Package core provides the fundamental building blocks of the golem ORM.
// This file defines the Query, an immutable description of the entities,
// joins, filters, ordering and pagination of a read.
package core

import (
	"slices"
	"strings"

	"github.com/leandroluk/golemfilter/filter"
)

// Sort represents an ordering rule used in queries.
//
// FieldName specifies which column/field to sort by.
// Order determines the direction: 1 for ascending (ASC), -1 for descending (DESC).
type Sort struct {
	FieldName  string
	Order      int // 1 = ASC, -1 = DESC
	Collection string
}

// Where encapsulates filtering and pagination options for queries.
type Where struct {
	Condition   *Condition
	Limit       int
	Offset      int
	Sort        []Sort
	WithDeleted bool
	OnlyDeleted bool
}

// Join is a relation joined into a query. Parent is already part of the
// query when the join is added; Target is the model the join brings in.
//
// Reverse is set when the relation is declared on Target and points back at
// Parent.
type Join struct {
	Parent   *SchemaCore
	Target   *SchemaCore
	Relation *RelationInternal
	Reverse  bool
}

// JoinHop is a single equi-join step: Collection is joined on
// From.FromColumn = Collection.ToColumn. Many-to-many joins take two hops
// through the join table.
type JoinHop struct {
	Database   string
	Collection string
	From       string
	FromColumn string
	ToColumn   string
}

// Hops lists the equi-join steps needed to reach Target from Parent.
func (j Join) Hops() []JoinHop {
	rel := j.Relation
	if rel.Kind == ManyToMany {
		localKey, joinLocalKey, joinForeignKey, foreignKey := rel.LocalKey, rel.JoinLocalKey, rel.JoinForeignKey, rel.ForeignKey
		if j.Reverse {
			localKey, joinLocalKey, joinForeignKey, foreignKey = foreignKey, joinForeignKey, joinLocalKey, localKey
		}
		return []JoinHop{
			{Database: j.Target.Database, Collection: rel.JoinTable, From: j.Parent.Collection, FromColumn: localKey, ToColumn: joinLocalKey},
			{Database: j.Target.Database, Collection: j.Target.Collection, From: rel.JoinTable, FromColumn: joinForeignKey, ToColumn: foreignKey},
		}
	}

	fromColumn, toColumn := rel.LocalKey, rel.ForeignKey
	if j.Reverse {
		fromColumn, toColumn = toColumn, fromColumn
	}
	return []JoinHop{
		{Database: j.Target.Database, Collection: j.Target.Collection, From: j.Parent.Collection, FromColumn: fromColumn, ToColumn: toColumn},
	}
}

// signature identifies the join condition regardless of which side declared
// the relation, so a relation and its inverse count as one path.
func (j Join) signature() string {
	partList := []string{}
	for _, hop := range j.Hops() {
		left := hop.From + "." + hop.FromColumn
		right := hop.Collection + "." + hop.ToColumn
		if right < left {
			left, right = right, left
		}
		partList = append(partList, left+"="+right)
	}
	return strings.Join(partList, "|")
}

// Query describes a read against one or more primary entities plus the
// models joined into it.
//
// Query values are immutable: every builder method returns a new Query and
// leaves the receiver untouched, so callers must use the returned value.
//
// Example:
//
//	q := core.NewQuery(&customerSchema.SchemaCore).
//		Filter(core.Cond("name").Like("A%")).
//		OrderBy("name", 1).
//		Limit(10)
type Query struct {
	entityList []*SchemaCore
	joinList   []Join
	where      Where
}

var _ filter.Query[*Query] = (*Query)(nil)

// NewQuery creates a query selecting the given entities.
func NewQuery(schemas ...*SchemaCore) *Query {
	return &Query{entityList: slices.Clone(schemas)}
}

func (q *Query) clone() *Query {
	next := &Query{
		entityList: slices.Clone(q.entityList),
		joinList:   slices.Clone(q.joinList),
		where:      q.where,
	}
	next.where.Sort = slices.Clone(q.where.Sort)
	return next
}

// Entities returns the primary entities of the query.
func (q *Query) Entities() []*SchemaCore {
	return slices.Clone(q.entityList)
}

// Joins returns the joins of the query, in the order they were added.
func (q *Query) Joins() []Join {
	return slices.Clone(q.joinList)
}

// Where returns the filtering and pagination options of the query.
func (q *Query) Where() Where {
	where := q.where
	where.Sort = slices.Clone(q.where.Sort)
	return where
}

// Models returns the primary entities followed by the join targets.
func (q *Query) Models() []filter.Model {
	modelList := make([]filter.Model, 0, len(q.entityList)+len(q.joinList))
	for _, schema := range q.entityList {
		modelList = append(modelList, schema)
	}
	for _, join := range q.joinList {
		modelList = append(modelList, join.Target)
	}
	return modelList
}

// schema returns the schema named name if it takes part in the query.
func (q *Query) schema(name string) (*SchemaCore, bool) {
	for _, schema := range q.entityList {
		if schema.Name() == name {
			return schema, true
		}
	}
	for _, join := range q.joinList {
		if join.Target.Name() == name {
			return join.Target, true
		}
	}
	return nil, false
}

// schemaList returns every schema of the query without duplicates.
func (q *Query) schemaList() []*SchemaCore {
	seen := map[*SchemaCore]bool{}
	schemaList := []*SchemaCore{}
	for _, model := range q.Models() {
		schema := model.(*SchemaCore)
		if !seen[schema] {
			seen[schema] = true
			schemaList = append(schemaList, schema)
		}
	}
	return schemaList
}

func (q *Query) withJoin(join Join) *Query {
	next := q.clone()
	next.joinList = append(next.joinList, join)
	return next
}

// JoinRelation joins the model behind the named relation of parent.
//
// The join is NotJoinable when parent is not part of the query, has no such
// relation, or the relation lacks the keys to join on. It is AlreadyPresent
// when the related model is already part of the query.
func (q *Query) JoinRelation(parent filter.Model, relationship string) (*Query, filter.JoinResult) {
	parentSchema, ok := q.schema(parent.Name())
	if !ok {
		return q, filter.NotJoinable
	}
	relation := parentSchema.Relation(relationship)
	if relation == nil || !relation.joinable() {
		return q, filter.NotJoinable
	}
	if _, present := q.schema(relation.RefSchema.Name()); present {
		return q, filter.AlreadyPresent
	}
	return q.withJoin(Join{Parent: parentSchema, Target: relation.RefSchema, Relation: relation}), filter.Joined
}

// JoinModel joins target through the relation linking it to the query.
//
// Relations declared in either direction are considered. The join is
// Joined only when exactly one join condition links target to the models
// already in the query; with none, or with several, it is NotJoinable.
func (q *Query) JoinModel(target filter.Model) (*Query, filter.JoinResult) {
	if _, present := q.schema(target.Name()); present {
		return q, filter.AlreadyPresent
	}
	targetSchema, ok := target.(*SchemaCore)
	if !ok {
		return q, filter.NotJoinable
	}

	candidateMap := map[string]Join{}
	for _, schema := range q.schemaList() {
		for _, relation := range schema.Relations {
			if relation.joinable() && relation.RefSchema.Name() == targetSchema.Name() {
				join := Join{Parent: schema, Target: targetSchema, Relation: relation}
				candidateMap[join.signature()] = join
			}
		}
	}
	for _, relation := range targetSchema.Relations {
		if !relation.joinable() {
			continue
		}
		if parent, present := q.schema(relation.RefSchema.Name()); present {
			join := Join{Parent: parent, Target: targetSchema, Relation: relation, Reverse: true}
			candidateMap[join.signature()] = join
		}
	}

	if len(candidateMap) != 1 {
		return q, filter.NotJoinable
	}
	for _, join := range candidateMap {
		return q.withJoin(join), filter.Joined
	}
	return q, filter.NotJoinable
}

// Filter adds conditions to the query, combined with AND together with the
// conditions already present.
func (q *Query) Filter(conditions ...*Condition) *Query {
	next := q.clone()
	next.where.Condition = foldConditionsAnd(append([]*Condition{q.where.Condition}, conditions...)...)
	return next
}

// WithDeleted includes soft-deleted rows in the query results.
func (q *Query) WithDeleted() *Query {
	next := q.clone()
	next.where.WithDeleted = true
	return next
}

// OnlyDeleted restricts the query results to soft-deleted rows only.
func (q *Query) OnlyDeleted() *Query {
	next := q.clone()
	next.where.OnlyDeleted = true
	return next
}

// OrderBy adds an ordering rule to the query.
//
// Field is a column of the first entity, a column of a joined model
// qualified by its model name ("Order.total") or a column reached through a
// joined relationship of the first entity ("orders.total"). Order is 1 (ASC)
// or -1 (DESC). A field no model of the query holds is kept with an empty
// Collection and drivers refuse to render it.
func (q *Query) OrderBy(field string, order int) *Query {
	next := q.clone()
	next.where.Sort = append(next.where.Sort, q.resolveSort(field, order))
	return next
}

func (q *Query) resolveSort(field string, order int) Sort {
	unresolved := Sort{FieldName: field, Order: order}
	if modelName, columnName, ok := strings.Cut(field, "."); ok {
		if schema, present := q.schema(modelName); present {
			if schema.Column(columnName) == nil {
				return unresolved
			}
			return Sort{FieldName: columnName, Order: order, Collection: schema.Collection}
		}
	}
	if len(q.entityList) == 0 {
		return unresolved
	}
	column, err := filter.Resolve(q.entityList[0], field)
	if err != nil {
		return unresolved
	}
	schema, present := q.schema(column.Model.Name())
	if !present {
		return unresolved
	}
	return Sort{FieldName: column.Name, Order: order, Collection: schema.Collection}
}

// Limit sets the maximum number of results to return.
func (q *Query) Limit(limit int) *Query {
	next := q.clone()
	next.where.Limit = limit
	return next
}

// Offset sets the number of rows to skip before starting to return results.
func (q *Query) Offset(offset int) *Query {
	next := q.clone()
	next.where.Offset = offset
	return next
}
