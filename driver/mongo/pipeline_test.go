package mongo

import (
	"testing"

	"github.com/leandroluk/golemfilter/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type catalog struct {
	customer *core.SchemaCore
	order    *core.SchemaCore
	tag      *core.SchemaCore
	registry *core.Registry
}

func newCatalog() catalog {
	customer := core.NewSchemaCore("Customer", "customers", "_id", "name")
	order := core.NewSchemaCore("Order", "orders", "_id", "customer_id", "total")
	tag := core.NewSchemaCore("Tag", "tags", "_id", "label")

	customer.Relate(core.RelationInternal{
		Name: "orders", Kind: core.OneToMany, RefSchema: order, LocalKey: "_id", ForeignKey: "customer_id",
	})
	order.Relate(core.RelationInternal{
		Name: "tags", Kind: core.ManyToMany, RefSchema: tag, LocalKey: "_id", ForeignKey: "_id",
		JoinTable: "order_tags", JoinLocalKey: "order_id", JoinForeignKey: "tag_id",
	})
	registry := core.NewRegistry().MustRegister(customer, order, tag)
	return catalog{customer: customer, order: order, tag: tag, registry: registry}
}

func lookup(from string, localField string, foreignField string) bson.D {
	return bson.D{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: from},
		{Key: "localField", Value: localField},
		{Key: "foreignField", Value: foreignField},
		{Key: "as", Value: from},
	}}}
}

func unwind(path string) bson.D {
	return bson.D{{Key: "$unwind", Value: "$" + path}}
}

func TestBuildPipeline(t *testing.T) {
	c := newCatalog()

	q, err := core.ApplyFilters(core.NewQuery(c.customer), c.registry,
		core.Cond("name").Like("a_a%"),
		core.Cond("orders.total").Gt(100),
	)
	require.NoError(t, err)

	pipeline, err := BuildPipeline(q.OrderBy("Order.total", -1).Offset(10).Limit(5))
	require.NoError(t, err)
	assert.Equal(t, mongo.Pipeline{
		lookup("orders", "_id", "customer_id"),
		unwind("orders"),
		{{Key: "$match", Value: bson.M{"$and": []bson.M{
			{"name": primitive.Regex{Pattern: "^a.a.*$"}},
			{"orders.total": bson.M{"$gt": 100}},
		}}}},
		{{Key: "$sort", Value: bson.D{{Key: "orders.total", Value: -1}}}},
		{{Key: "$skip", Value: int64(10)}},
		{{Key: "$limit", Value: int64(5)}},
		{{Key: "$project", Value: bson.D{{Key: "orders", Value: 0}}}},
	}, pipeline)
}

func TestBuildPipeline_ManyToMany(t *testing.T) {
	c := newCatalog()

	q, err := core.ApplyFilters(core.NewQuery(c.customer), c.registry,
		core.Cond("orders.total").Gte(1),
		core.Cond("label", "Tag").In("vip"),
	)
	require.NoError(t, err)

	pipeline, err := BuildPipeline(q)
	require.NoError(t, err)
	assert.Equal(t, mongo.Pipeline{
		lookup("orders", "_id", "customer_id"),
		unwind("orders"),
		lookup("order_tags", "orders._id", "order_id"),
		unwind("order_tags"),
		lookup("tags", "order_tags.tag_id", "_id"),
		unwind("tags"),
		{{Key: "$match", Value: bson.M{"$and": []bson.M{
			{"orders.total": bson.M{"$gte": 1}},
			{"tags.label": bson.M{"$in": []any{"vip"}}},
		}}}},
		{{Key: "$project", Value: bson.D{
			{Key: "orders", Value: 0},
			{Key: "order_tags", Value: 0},
			{Key: "tags", Value: 0},
		}}},
	}, pipeline)
}

func TestBuildPipeline_PlainQuery(t *testing.T) {
	c := newCatalog()

	pipeline, err := BuildPipeline(core.NewQuery(c.order).OrderBy("total", 1))
	require.NoError(t, err)
	assert.Equal(t, mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "total", Value: 1}}}},
	}, pipeline)
}

func TestBuildFilter_Operators(t *testing.T) {
	c := newCatalog()
	q := core.NewQuery(c.customer)

	tests := []struct {
		name      string
		condition *core.Condition
		want      bson.M
	}{
		{"nil", core.Cond("name").Nil(), bson.M{"name": bson.M{"$eq": nil}}},
		{"eq", core.Cond("name").Eq("Ada"), bson.M{"name": "Ada"}},
		{"ne", core.Cond("name").Ne("Ada"), bson.M{"name": bson.M{"$ne": "Ada"}}},
		{"lt", core.Cond("name").Lt("B"), bson.M{"name": bson.M{"$lt": "B"}}},
		{"lte", core.Cond("name").Lte("B"), bson.M{"name": bson.M{"$lte": "B"}}},
		{"in single value", &core.Condition{FieldName: "name", Operator: &core.OpIn, Value: "Ada"}, bson.M{"name": bson.M{"$in": []any{"Ada"}}}},
		{"not", core.Cond("name").Eq("Ada").Not(), bson.M{"$nor": []bson.M{{"name": "Ada"}}}},
		{
			"not of several conditions",
			&core.Condition{Operator: &core.OpNot, Children: []*core.Condition{core.Cond("name").Eq("Ada"), core.Cond("name").Eq("Bob")}},
			bson.M{"$nor": []bson.M{{"$and": []bson.M{{"name": "Ada"}, {"name": "Bob"}}}}},
		},
		{"like", core.Cond("name").Like("A%"), bson.M{"name": primitive.Regex{Pattern: "^A.*$"}}},
		{"ilike", core.Cond("name").ILike("A%"), bson.M{"name": primitive.Regex{Pattern: "^A.*$", Options: "i"}}},
		{"or", core.Cond("name").Eq("Ada").Or(core.Cond("name").Eq("Bob")), bson.M{"$or": []bson.M{{"name": "Ada"}, {"name": "Bob"}}}},
		{"empty or", &core.Condition{Operator: &core.OpOr}, bson.M{"$nor": []bson.M{{}}}},
		{"empty and", &core.Condition{Operator: &core.OpAnd}, bson.M{}},
		{"joined column", &core.Condition{FieldName: "total", Operator: &core.OpEq, Value: 3, Collection: "orders"}, bson.M{"orders.total": 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildFilter(q, tt.condition)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := buildFilter(q, core.Cond("name"))
	require.ErrorIs(t, err, core.ErrInvalidFilter)
}

func TestBuildPipeline_UnresolvedSort(t *testing.T) {
	c := newCatalog()

	_, err := BuildPipeline(core.NewQuery(c.customer).OrderBy("orders.total", 1))
	require.ErrorIs(t, err, core.ErrInvalidFilter)
	assert.Contains(t, err.Error(), "cannot order by `orders.total`")
}

func TestBuildCountPipeline(t *testing.T) {
	c := newCatalog()
	q, err := core.ApplyFilters(core.NewQuery(c.customer), c.registry, core.Cond("orders.total").Gt(0))
	require.NoError(t, err)

	pipeline, err := BuildCountPipeline(q.Limit(1))
	require.NoError(t, err)
	assert.Equal(t, mongo.Pipeline{
		lookup("orders", "_id", "customer_id"),
		unwind("orders"),
		{{Key: "$match", Value: bson.M{"orders.total": bson.M{"$gt": 0}}}},
		{{Key: "$count", Value: "count"}},
	}, pipeline)
}

func TestBuildPipeline_Unsupported(t *testing.T) {
	c := newCatalog()

	_, err := BuildPipeline(core.NewQuery(c.customer, c.tag))
	require.ErrorIs(t, err, core.ErrUnsupportedQuery)

	_, err = BuildCountPipeline(core.NewQuery())
	require.ErrorIs(t, err, core.ErrUnsupportedQuery)

	archive := core.NewSchemaCore("Archive", "archives", "_id", "customer_id")
	archive.Database = "cold"
	c.customer.Relate(core.RelationInternal{
		Name: "archives", Kind: core.OneToMany, RefSchema: archive, LocalKey: "_id", ForeignKey: "customer_id",
	})
	q, _ := core.NewQuery(c.customer).JoinRelation(c.customer, "archives")
	_, err = BuildPipeline(q)
	require.ErrorIs(t, err, core.ErrUnsupportedQuery)
}

func TestToMongoLikePattern(t *testing.T) {
	assert.Equal(t, "^.*admin.$", toMongoLikePattern("%admin_"))
	assert.Equal(t, `^a\.b$`, toMongoLikePattern("a.b"))
}
