package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	mopt "go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
)

// snapshotTransaction makes every aggregation of a transaction read from
// one snapshot.
var snapshotTransaction = mopt.Transaction().SetReadConcern(readconcern.Snapshot())

// mongoTransaction holds the session a transaction runs in. Commit and
// Rollback end the session.
type mongoTransaction struct {
	session mongo.Session
}

func (transaction *mongoTransaction) Commit(ctx context.Context) error {
	defer transaction.session.EndSession(ctx)
	return transaction.session.CommitTransaction(ctx)
}

func (transaction *mongoTransaction) Rollback(ctx context.Context) error {
	defer transaction.session.EndSession(ctx)
	return transaction.session.AbortTransaction(ctx)
}

// bind returns ctx attached to the transaction's session.
func (transaction *mongoTransaction) bind(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, transaction.session)
}
