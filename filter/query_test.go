package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelsInQuery(t *testing.T) {
	a := newFakeModel("A", "id")
	b := newFakeModel("B", "id")

	forward := ModelsInQuery(newFakeQuery(a, b))
	backward := ModelsInQuery(newFakeQuery(b, a))

	assert.Equal(t, map[string]Model{"A": a, "B": b}, forward)
	assert.Equal(t, forward, backward)
	assert.Empty(t, ModelsInQuery(newFakeQuery()))
}

func TestModelsInQuery_LaterNameWins(t *testing.T) {
	first := newFakeModel("A", "id")
	second := newFakeModel("A", "id", "name")

	modelMap := ModelsInQuery(newFakeQuery(first, second))

	require.Len(t, modelMap, 1)
	assert.Same(t, second, modelMap["A"])
}

func TestDefaultModel(t *testing.T) {
	a := newFakeModel("A", "id")
	b := newFakeModel("B", "id")

	model, ok := DefaultModel(newFakeQuery(a))
	require.True(t, ok)
	assert.Same(t, a, model)

	_, ok = DefaultModel(newFakeQuery(a, b))
	assert.False(t, ok)

	_, ok = DefaultModel(newFakeQuery())
	assert.False(t, ok)
}

func TestResolveModel(t *testing.T) {
	customer := newFakeModel("Customer", "id")
	order := newFakeModel("Order", "id")
	other := newFakeModel("Other", "id")

	tests := []struct {
		name         string
		spec         Leaf
		models       []Model
		defaultModel Model
		want         Model
		wantErr      error
	}{
		{
			name:   "explicit model present",
			spec:   Leaf{Field: "id", Model: "Order"},
			models: []Model{customer, order},
			want:   order,
		},
		{
			name:    "explicit model absent",
			spec:    Leaf{Field: "id", Model: "Invoice"},
			models:  []Model{customer, order},
			wantErr: ErrBadSpec,
		},
		{
			name:         "explicit model wins over default",
			spec:         Leaf{Field: "id", Model: "Customer"},
			models:       []Model{customer, order},
			defaultModel: order,
			want:         customer,
		},
		{
			name:   "single model",
			spec:   Leaf{Field: "id"},
			models: []Model{customer},
			want:   customer,
		},
		{
			name:         "single model ignores default",
			spec:         Leaf{Field: "id"},
			models:       []Model{customer},
			defaultModel: order,
			want:         customer,
		},
		{
			name:    "ambiguous",
			spec:    Leaf{Field: "id"},
			models:  []Model{customer, order},
			wantErr: ErrBadSpec,
		},
		{
			name:         "ambiguous with default",
			spec:         Leaf{Field: "id"},
			models:       []Model{customer, order},
			defaultModel: other,
			want:         other,
		},
		{
			name:    "empty query",
			spec:    Leaf{Field: "id"},
			wantErr: ErrBadQuery,
		},
		{
			name:         "empty query with explicit model and default",
			spec:         Leaf{Field: "id", Model: "Customer"},
			defaultModel: customer,
			wantErr:      ErrBadQuery,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model, err := ResolveModel(tt.spec, newFakeQuery(tt.models...), tt.defaultModel)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, model)
				return
			}
			require.NoError(t, err)
			assert.Same(t, tt.want, model)
		})
	}
}

func TestResolveModel_Messages(t *testing.T) {
	customer := newFakeModel("Customer", "id")
	order := newFakeModel("Order", "id")

	_, err := ResolveModel(Leaf{Model: "Invoice"}, newFakeQuery(customer), nil)
	assert.EqualError(t, err, "bad filter spec: query does not contain model `Invoice`")

	_, err = ResolveModel(Leaf{}, newFakeQuery(customer, order), nil)
	assert.EqualError(t, err, "bad filter spec: ambiguous spec; please specify a model")

	_, err = ResolveModel(Leaf{}, newFakeQuery(), nil)
	assert.EqualError(t, err, "bad query: query contains no models")
}

func TestJoinResult_String(t *testing.T) {
	assert.Equal(t, "joined", Joined.String())
	assert.Equal(t, "already-present", AlreadyPresent.String())
	assert.Equal(t, "not-joinable", NotJoinable.String())
	assert.Equal(t, "JoinResult(9)", JoinResult(9).String())
}
