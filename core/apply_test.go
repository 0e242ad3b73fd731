package core

import (
	"testing"

	"github.com/leandroluk/golemfilter/filter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyFilters(t *testing.T) {
	s := newShop()

	tests := []struct {
		name       string
		conditions []*Condition
		wantModels []string
		want       *Condition
	}{
		{
			name:       "column of the query model",
			conditions: []*Condition{Cond("name").Eq("Ada")},
			wantModels: []string{"Customer"},
			want:       &Condition{FieldName: "name", Operator: &OpEq, Value: "Ada", Collection: "customers"},
		},
		{
			name:       "relationship joined implicitly",
			conditions: []*Condition{Cond("orders.total").Gt(100)},
			wantModels: []string{"Customer", "Order"},
			want:       &Condition{FieldName: "total", Operator: &OpGt, Value: 100, Collection: "orders"},
		},
		{
			name:       "named model joined from the registry",
			conditions: []*Condition{Cond("city", "Address").Eq("Lisbon")},
			wantModels: []string{"Customer", "Address"},
			want:       &Condition{FieldName: "city", Operator: &OpEq, Value: "Lisbon", Collection: "addresses"},
		},
		{
			name:       "query model named explicitly",
			conditions: []*Condition{Cond("email", "Customer").Like("%@example.com")},
			wantModels: []string{"Customer"},
			want:       &Condition{FieldName: "email", Operator: &OpLike, Value: "%@example.com", Collection: "customers"},
		},
		{
			name:       "relationship of a named model",
			conditions: []*Condition{Cond("tags.label", "Order").Eq("gift")},
			wantModels: []string{"Customer", "Order", "Tag"},
			want:       &Condition{FieldName: "label", Operator: &OpEq, Value: "gift", Collection: "tags"},
		},
		{
			name:       "relationship of the query model named explicitly",
			conditions: []*Condition{Cond("orders.total", "Customer").Gt(1)},
			wantModels: []string{"Customer", "Order"},
			want:       &Condition{FieldName: "total", Operator: &OpGt, Value: 1, Collection: "orders"},
		},
		{
			name: "several conditions",
			conditions: []*Condition{
				Cond("name").Eq("Ada"),
				nil,
				Cond("orders.total").Gte(10),
			},
			wantModels: []string{"Customer", "Order"},
			want: &Condition{Operator: &OpAnd, Children: []*Condition{
				{FieldName: "name", Operator: &OpEq, Value: "Ada", Collection: "customers"},
				{FieldName: "total", Operator: &OpGte, Value: 10, Collection: "orders"},
			}},
		},
		{
			name: "nested groups",
			conditions: []*Condition{
				Cond("name").Eq("Ada").Or(
					Cond("orders.total").Lt(5).And(Cond("address.city").Eq("Porto")).Not(),
				),
			},
			wantModels: []string{"Customer", "Order", "Address"},
			want: &Condition{Operator: &OpOr, Children: []*Condition{
				{FieldName: "name", Operator: &OpEq, Value: "Ada", Collection: "customers"},
				{Operator: &OpNot, Children: []*Condition{
					{Operator: &OpAnd, Children: []*Condition{
						{FieldName: "total", Operator: &OpLt, Value: 5, Collection: "orders"},
						{FieldName: "city", Operator: &OpEq, Value: "Porto", Collection: "addresses"},
					}},
				}},
			}},
		},
		{
			name:       "no conditions",
			wantModels: []string{"Customer"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := NewQuery(&s.customer.SchemaCore)

			q, err := ApplyFilters(start, s.registry, tt.conditions...)
			require.NoError(t, err)
			assert.Equal(t, tt.wantModels, modelNameList(q))
			assert.Equal(t, tt.want, q.Where().Condition)
			assert.Equal(t, []string{"Customer"}, modelNameList(start))
		})
	}
}

func TestApplyFilters_DefaultModelAfterJoins(t *testing.T) {
	s := newShop()

	q, err := ApplyFilters(NewQuery(&s.customer.SchemaCore), s.registry,
		Cond("city", "Address").Eq("Lisbon"),
		Cond("id").Eq(1),
	)
	require.NoError(t, err)

	children := q.Where().Condition.Children
	require.Len(t, children, 2)
	assert.Equal(t, "customers", children[1].Collection, "unqualified fields stay on the starting model")
}

func TestApplyFilters_KeepsExistingConditions(t *testing.T) {
	s := newShop()
	existing := &Condition{FieldName: "email", Operator: &OpNil, Collection: "customers"}
	start := NewQuery(&s.customer.SchemaCore).Filter(existing).Limit(3)

	q, err := ApplyFilters(start, s.registry, Cond("name").Eq("Ada"))
	require.NoError(t, err)

	condition := q.Where().Condition
	require.Len(t, condition.Children, 2)
	assert.Same(t, existing, condition.Children[0])
	assert.Equal(t, 3, q.Where().Limit)
}

func TestApplyFilters_MultipleEntities(t *testing.T) {
	s := newShop()
	start := NewQuery(&s.customer.SchemaCore, &s.tag.SchemaCore)

	q, err := ApplyFilters(start, s.registry, Cond("label", "Tag").Eq("vip"))
	require.NoError(t, err)
	assert.Equal(t, "tags", q.Where().Condition.Collection)

	q, err = ApplyFilters(start, s.registry, Cond("orders.total", "Customer").Gt(1))
	require.NoError(t, err)
	assert.Equal(t, []string{"Customer", "Tag", "Order"}, modelNameList(q))
	assert.Equal(t, &Condition{FieldName: "total", Operator: &OpGt, Value: 1, Collection: "orders"}, q.Where().Condition)

	_, err = ApplyFilters(start, s.registry, Cond("label").Eq("vip"))
	require.ErrorIs(t, err, filter.ErrBadSpec)
	assert.Contains(t, err.Error(), "ambiguous spec")
}

func TestApplyFilters_Errors(t *testing.T) {
	s := newShop()
	user, message := messaging()
	messages := NewRegistry().MustRegister(user, message)

	source := NewSchemaCore("Source", "sources", "id")
	target := NewSchemaCore("Target", "targets", "id", "value")
	source.Relate(RelationInternal{Name: "targets", Kind: OneToMany, RefSchema: target})

	tests := []struct {
		name       string
		query      *Query
		registry   *Registry
		conditions []*Condition
		wantErr    error
	}{
		{
			name:       "unknown column",
			query:      NewQuery(&s.customer.SchemaCore),
			registry:   s.registry,
			conditions: []*Condition{Cond("phone").Eq("1")},
			wantErr:    filter.ErrFieldNotFound,
		},
		{
			name:       "unknown column of a relationship",
			query:      NewQuery(&s.customer.SchemaCore),
			registry:   s.registry,
			conditions: []*Condition{Cond("orders.weight").Eq(1)},
			wantErr:    filter.ErrFieldNotFound,
		},
		{
			name:       "unknown relationship",
			query:      NewQuery(&s.customer.SchemaCore),
			registry:   s.registry,
			conditions: []*Condition{Cond("invoices.total").Eq(1)},
			wantErr:    filter.ErrFieldNotFound,
		},
		{
			name:       "unregistered model",
			query:      NewQuery(&s.customer.SchemaCore),
			registry:   s.registry,
			conditions: []*Condition{Cond("total", "Invoice").Eq(1)},
			wantErr:    filter.ErrBadSpec,
		},
		{
			name:       "named model without registry",
			query:      NewQuery(&s.customer.SchemaCore),
			conditions: []*Condition{Cond("city", "Address").Eq("Lisbon")},
			wantErr:    filter.ErrBadSpec,
		},
		{
			name:       "named model with ambiguous join",
			query:      NewQuery(message),
			registry:   messages,
			conditions: []*Condition{Cond("name", "User").Eq("ada")},
			wantErr:    filter.ErrBadSpec,
		},
		{
			name:       "relationship that cannot be joined",
			query:      NewQuery(source),
			conditions: []*Condition{Cond("targets.value").Eq(1)},
			wantErr:    filter.ErrBadSpec,
		},
		{
			name:       "empty query",
			query:      NewQuery(),
			registry:   s.registry,
			conditions: []*Condition{Cond("name").Eq("Ada")},
			wantErr:    filter.ErrBadQuery,
		},
		{
			name:       "empty query with named model",
			query:      NewQuery(),
			registry:   s.registry,
			conditions: []*Condition{Cond("name", "Customer").Eq("Ada")},
			wantErr:    filter.ErrBadQuery,
		},
		{
			name:       "missing operator",
			query:      NewQuery(&s.customer.SchemaCore),
			registry:   s.registry,
			conditions: []*Condition{Cond("name").Eq("Ada").And(Cond("email"))},
			wantErr:    ErrInvalidFilter,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := ApplyFilters(tt.query, tt.registry, tt.conditions...)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, q)
		})
	}
}

func TestModelFilter(t *testing.T) {
	s := newShop()
	customers := NewModel(s.customer, nil, s.registry)

	q, err := customers.Filter(customers.Query(), FieldOf(s.customer, func(c *Customer) *string { return &c.Email }).Eq("ada@example.com"))
	require.NoError(t, err)
	assert.Equal(t, &Condition{FieldName: "email", Operator: &OpEq, Value: "ada@example.com", Collection: "customers"}, q.Where().Condition)
}
