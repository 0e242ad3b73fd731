// Package mongo implements core.Driver on MongoDB. Joins are rendered as
// $lookup stages of an aggregation pipeline.
package mongo

import (
	"fmt"

	"github.com/leandroluk/golemfilter/core"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// BuildPipeline renders q into an aggregation pipeline over the collection
// of its only entity.
//
// Every join hop becomes a $lookup into a field named after the joined
// collection, followed by an $unwind that drops documents without a match.
// The joined fields are projected away at the end, so results keep the
// shape of the primary collection.
//
// Example:
//
//	pipeline, err := mongo.BuildPipeline(q)
//	// [{$lookup: {from: "orders", localField: "id", foreignField: "customer_id", as: "orders"}},
//	//  {$unwind: "$orders"},
//	//  {$match: {"orders.total": {$gt: 100}}},
//	//  {$project: {orders: 0}}]
func BuildPipeline(q *core.Query) (mongo.Pipeline, error) {
	pipeline, aliasList, err := buildStages(q)
	if err != nil {
		return nil, err
	}

	where := q.Where()
	if len(where.Sort) > 0 {
		sortDoc := bson.D{}
		for _, sortItem := range where.Sort {
			if sortItem.Collection == "" {
				return nil, fmt.Errorf("%w: cannot order by `%s`: no model of the query has that column", core.ErrInvalidFilter, sortItem.FieldName)
			}
			direction := 1
			if sortItem.Order < 0 {
				direction = -1
			}
			sortDoc = append(sortDoc, bson.E{Key: fieldPath(q, sortItem.Collection, sortItem.FieldName), Value: direction})
		}
		pipeline = append(pipeline, bson.D{{Key: "$sort", Value: sortDoc}})
	}
	if where.Offset > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$skip", Value: int64(where.Offset)}})
	}
	if where.Limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: int64(where.Limit)}})
	}
	if len(aliasList) > 0 {
		projection := bson.D{}
		for _, alias := range aliasList {
			projection = append(projection, bson.E{Key: alias, Value: 0})
		}
		pipeline = append(pipeline, bson.D{{Key: "$project", Value: projection}})
	}
	return pipeline, nil
}

// BuildCountPipeline renders q into a pipeline producing a single document
// {count: n}, ignoring ordering and pagination.
func BuildCountPipeline(q *core.Query) (mongo.Pipeline, error) {
	pipeline, _, err := buildStages(q)
	if err != nil {
		return nil, err
	}
	return append(pipeline, bson.D{{Key: "$count", Value: "count"}}), nil
}

// buildStages renders the $lookup, $unwind and $match stages of q and
// returns the fields the lookups were stored in.
func buildStages(q *core.Query) (mongo.Pipeline, []string, error) {
	entityList := q.Entities()
	if len(entityList) != 1 {
		return nil, nil, fmt.Errorf("%w: aggregation needs exactly one primary collection, got %d", core.ErrUnsupportedQuery, len(entityList))
	}
	primary := entityList[0]

	pipeline := mongo.Pipeline{}
	aliasList := []string{}
	for _, join := range q.Joins() {
		for _, hop := range join.Hops() {
			if hop.Database != primary.Database {
				return nil, nil, fmt.Errorf("%w: cannot $lookup %s across databases", core.ErrUnsupportedQuery, hop.Collection)
			}
			localField := hop.FromColumn
			if hop.From != primary.Collection {
				localField = hop.From + "." + hop.FromColumn
			}
			pipeline = append(pipeline,
				bson.D{{Key: "$lookup", Value: bson.D{
					{Key: "from", Value: hop.Collection},
					{Key: "localField", Value: localField},
					{Key: "foreignField", Value: hop.ToColumn},
					{Key: "as", Value: hop.Collection},
				}}},
				bson.D{{Key: "$unwind", Value: "$" + hop.Collection}},
			)
			aliasList = append(aliasList, hop.Collection)
		}
	}

	if condition := q.Where().Condition; condition != nil {
		match, err := buildFilter(q, condition)
		if err != nil {
			return nil, nil, err
		}
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: match}})
	}
	return pipeline, aliasList, nil
}

func buildFilter(q *core.Query, condition *core.Condition) (bson.M, error) {
	if condition.Operator == nil {
		return nil, fmt.Errorf("%w: condition on `%s` has no operator", core.ErrInvalidFilter, condition.FieldName)
	}

	if condition.IsGroup() {
		childFilterList := make([]bson.M, 0, len(condition.Children))
		for _, child := range condition.Children {
			if child == nil {
				continue
			}
			childFilter, err := buildFilter(q, child)
			if err != nil {
				return nil, err
			}
			childFilterList = append(childFilterList, childFilter)
		}
		if len(childFilterList) == 0 {
			if *condition.Operator == core.OpOr {
				return bson.M{"$nor": []bson.M{{}}}, nil
			}
			return bson.M{}, nil
		}
		switch *condition.Operator {
		case core.OpOr:
			return bson.M{"$or": childFilterList}, nil
		case core.OpNot:
			// NOT negates the conjunction of its children, as in SQL.
			if len(childFilterList) > 1 {
				return bson.M{"$nor": []bson.M{{"$and": childFilterList}}}, nil
			}
			return bson.M{"$nor": childFilterList}, nil
		default:
			return bson.M{"$and": childFilterList}, nil
		}
	}

	fieldName := fieldPath(q, condition.Collection, condition.FieldName)
	switch *condition.Operator {
	case core.OpNil:
		return bson.M{fieldName: bson.M{"$eq": nil}}, nil
	case core.OpEq:
		return bson.M{fieldName: condition.Value}, nil
	case core.OpNe:
		return bson.M{fieldName: bson.M{"$ne": condition.Value}}, nil
	case core.OpGt:
		return bson.M{fieldName: bson.M{"$gt": condition.Value}}, nil
	case core.OpGte:
		return bson.M{fieldName: bson.M{"$gte": condition.Value}}, nil
	case core.OpLt:
		return bson.M{fieldName: bson.M{"$lt": condition.Value}}, nil
	case core.OpLte:
		return bson.M{fieldName: bson.M{"$lte": condition.Value}}, nil
	case core.OpLike:
		pattern := toMongoLikePattern(fmt.Sprintf("%v", condition.Value))
		return bson.M{fieldName: primitive.Regex{Pattern: pattern}}, nil
	case core.OpILike:
		pattern := toMongoLikePattern(fmt.Sprintf("%v", condition.Value))
		return bson.M{fieldName: primitive.Regex{Pattern: pattern, Options: "i"}}, nil
	case core.OpIn:
		var array []any
		switch v := condition.Value.(type) {
		case []any:
			array = v
		default:
			array = []any{condition.Value}
		}
		return bson.M{fieldName: bson.M{"$in": array}}, nil
	}
	return nil, fmt.Errorf("%w: operator %s", core.ErrUnsupportedQuery, *condition.Operator)
}
