// Package store wraps the Mongo client behind the few operations the engines
// need: aggregation with external sorting allowed, batch finds for the
// client-side joins, and a layout health check. The service never writes.
package store

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/pdclabs/chairview/internal/errors"
	"github.com/pdclabs/chairview/internal/metrics"
)

const (
	connectTimeout = 10 * time.Second
	layoutCheckTTL = 60 * time.Second
)

// Store is the shared, pooled Mongo connection.
type Store struct {
	client *mongo.Client

	layoutMu        sync.Mutex
	layoutCheckedAt time.Time
	layoutErr       error
}

// Connect dials the deployment and verifies it is reachable. Failures are
// classified so the caller can exit with a useful message.
func Connect(ctx context.Context, uri string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.WrapStoreError("connect", "", "", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.WrapStoreError("ping", "", "", err)
	}
	return &Store{client: client}, nil
}

// Aggregate runs pipeline against db.coll with AllowDiskUse set, decoding
// every result document into out (a pointer to a slice).
func (s *Store) Aggregate(ctx context.Context, db, coll string, pipeline mongo.Pipeline, out any) error {
	started := time.Now()

	cursor, err := s.client.Database(db).Collection(coll).
		Aggregate(ctx, pipeline, options.Aggregate().SetAllowDiskUse(true))
	if err == nil {
		err = cursor.All(ctx, out)
	}

	metrics.RecordStoreQuery(db, coll, "aggregate", time.Since(started), err)
	if err != nil {
		return errors.WrapStoreError("aggregate", db, coll, err)
	}
	return nil
}

// Find runs a filter query against db.coll, decoding all matches into out.
func (s *Store) Find(ctx context.Context, db, coll string, filter any, out any, opts ...*options.FindOptions) error {
	started := time.Now()

	cursor, err := s.client.Database(db).Collection(coll).Find(ctx, filter, opts...)
	if err == nil {
		err = cursor.All(ctx, out)
	}

	metrics.RecordStoreQuery(db, coll, "find", time.Since(started), err)
	if err != nil {
		return errors.WrapStoreError("find", db, coll, err)
	}
	return nil
}

// Ping verifies the deployment is still reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return errors.WrapStoreError("ping", "", "", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// CheckLayout verifies that collections live in their designated databases.
// The result is memoized briefly so health probes stay cheap.
func (s *Store) CheckLayout(ctx context.Context) error {
	s.layoutMu.Lock()
	defer s.layoutMu.Unlock()

	if !s.layoutCheckedAt.IsZero() && time.Since(s.layoutCheckedAt) < layoutCheckTTL {
		return s.layoutErr
	}

	perDB := make(map[string][]string, 3)
	for _, db := range []string{DBActivity, DBRegistry, DBCrucible} {
		names, err := s.client.Database(db).ListCollectionNames(ctx, bson.D{})
		if err != nil {
			// leave the memo untouched so a transient failure retries next probe
			return errors.WrapStoreError("list_collections", db, "", err)
		}
		perDB[db] = names
	}

	s.layoutErr = layoutViolations(perDB)
	s.layoutCheckedAt = time.Now()
	return s.layoutErr
}
