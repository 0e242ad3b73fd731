package mongo

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/leandroluk/golemfilter/core"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	mopt "go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var errNoDatabase = errors.New("mongo driver: database name is empty (set Schema.Database or the default database)")

//region MongoDriver

// MongoDriver runs queries as aggregation pipelines.
type MongoDriver struct {
	client          *mongo.Client
	defaultDatabase string
	logger          *slog.Logger
}

var _ core.Driver = (*MongoDriver)(nil)

// Option configures a MongoDriver.
type Option func(*MongoDriver)

// WithLogger sets the logger pipelines are logged to at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(driver *MongoDriver) { driver.logger = logger }
}

func NewMongoDriver(ctx context.Context, uri string, defaultDB string, opts ...Option) (*MongoDriver, error) {
	clientOpts := mopt.Client().ApplyURI(uri)
	clientOpts.SetConnectTimeout(10 * time.Second).SetServerSelectionTimeout(10 * time.Second)
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, err
	}
	if err := verifyConnection(ctx, client); err != nil {
		return nil, err
	}
	driver := &MongoDriver{client: client, defaultDatabase: defaultDB, logger: slog.Default()}
	for _, opt := range opts {
		opt(driver)
	}
	return driver, nil
}

// pinger is the part of *mongo.Client verifyConnection needs.
type pinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
	Disconnect(ctx context.Context) error
}

// verifyConnection pings client and disconnects it when the ping fails.
func verifyConnection(ctx context.Context, client pinger) error {
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return err
	}
	return nil
}

func (driver *MongoDriver) coll(schema *core.SchemaCore) (*mongo.Collection, error) {
	dbName := driver.defaultDatabase
	if schema.Database != "" {
		dbName = schema.Database
	}
	if dbName == "" {
		return nil, errNoDatabase
	}
	return driver.client.Database(dbName).Collection(schema.Collection), nil
}

// withSession attaches the session of the transaction carried by ctx, if any.
func (driver *MongoDriver) withSession(ctx context.Context) context.Context {
	if mt, ok := core.TransactionFrom(ctx).(*mongoTransaction); ok {
		return mt.bind(ctx)
	}
	return ctx
}

func (driver *MongoDriver) aggregate(ctx context.Context, query *core.Query, pipeline mongo.Pipeline) (*mongo.Cursor, error) {
	collection, err := driver.coll(query.Entities()[0])
	if err != nil {
		return nil, err
	}
	driver.logger.DebugContext(ctx, "mongo aggregate", "collection", collection.Name(), "stages", len(pipeline))
	return collection.Aggregate(driver.withSession(ctx), pipeline)
}

func (driver *MongoDriver) Connect(ctx context.Context) error {
	return driver.client.Ping(ctx, nil)
}

func (driver *MongoDriver) Ping(ctx context.Context) error {
	return driver.client.Ping(ctx, nil)
}

func (driver *MongoDriver) Close(ctx context.Context) error {
	return driver.client.Disconnect(ctx)
}

func (driver *MongoDriver) Transaction(ctx context.Context) (core.Transaction, error) {
	session, err := driver.client.StartSession()
	if err != nil {
		return nil, err
	}
	if err := session.StartTransaction(snapshotTransaction); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &mongoTransaction{session: session}, nil
}

// Find returns the documents of the primary collection matching query.
func (driver *MongoDriver) Find(ctx context.Context, query *core.Query) ([]map[string]any, error) {
	pipeline, err := BuildPipeline(query)
	if err != nil {
		return nil, err
	}
	cursor, err := driver.aggregate(ctx, query, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var resultList []map[string]any
	for cursor.Next(ctx) {
		var bsonMap bson.M
		if err := cursor.Decode(&bsonMap); err != nil {
			return nil, err
		}
		resultList = append(resultList, map[string]any(bsonMap))
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return resultList, nil
}

// Count returns the number of documents matching query.
func (driver *MongoDriver) Count(ctx context.Context, query *core.Query) (int64, error) {
	pipeline, err := BuildCountPipeline(query)
	if err != nil {
		return 0, err
	}
	cursor, err := driver.aggregate(ctx, query, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var result struct {
		Count int64 `bson:"count"`
	}
	if !cursor.Next(ctx) {
		return 0, cursor.Err()
	}
	if err := cursor.Decode(&result); err != nil {
		return 0, err
	}
	return result.Count, nil
}

//endregion
