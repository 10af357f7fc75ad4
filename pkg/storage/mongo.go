package storage

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/orthoroute/pkg/cache"
	"github.com/matzehuels/orthoroute/pkg/diagram"
	errs "github.com/matzehuels/orthoroute/pkg/errors"
)

// DefaultCollection is the collection MongoStore uses when none is given.
const DefaultCollection = "diagrams"

// MongoOptions configures a MongoStore.
type MongoOptions struct {
	URI        string
	Database   string
	Collection string
}

// MongoStore keeps one document per diagram, keyed by diagram ID.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, opts MongoOptions) (*MongoStore, error) {
	if opts.Database == "" {
		return nil, errs.New(errs.ErrCodeInvalidConfig, "mongo database name is required")
	}
	if opts.Collection == "" {
		opts.Collection = DefaultCollection
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "ping mongo")
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(opts.Database).Collection(opts.Collection),
	}, nil
}

func (m *MongoStore) Get(ctx context.Context, id string) (diagram.Snapshot, error) {
	var snap diagram.Snapshot
	err := cache.RetryWithBackoff(ctx, func() error {
		return transient(m.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&snap))
	})
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return diagram.Snapshot{}, ErrNotFound
	case err != nil:
		return diagram.Snapshot{}, errs.Wrap(errs.ErrCodeStorage, err, "get diagram %s", id)
	}
	return snap, nil
}

func (m *MongoStore) Put(ctx context.Context, snap diagram.Snapshot) error {
	if err := errs.ValidateID(snap.ID); err != nil {
		return err
	}
	err := cache.RetryWithBackoff(ctx, func() error {
		_, err := m.coll.ReplaceOne(ctx, bson.M{"_id": snap.ID}, snap, options.Replace().SetUpsert(true))
		return transient(err)
	})
	if err != nil {
		return errs.Wrap(errs.ErrCodeStorage, err, "put diagram %s", snap.ID)
	}
	return nil
}

func (m *MongoStore) Delete(ctx context.Context, id string) error {
	err := cache.RetryWithBackoff(ctx, func() error {
		_, err := m.coll.DeleteOne(ctx, bson.M{"_id": id})
		return transient(err)
	})
	if err != nil {
		return errs.Wrap(errs.ErrCodeStorage, err, "delete diagram %s", id)
	}
	return nil
}

// List projects away shapes and connections; the counts come from an
// aggregation over the stored arrays.
func (m *MongoStore) List(ctx context.Context) ([]Summary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$project", Value: bson.M{
			"name":        1,
			"version":     1,
			"updated_at":  1,
			"shapes":      bson.M{"$size": bson.M{"$ifNull": bson.A{"$shapes", bson.A{}}}},
			"connections": bson.M{"$size": bson.M{"$ifNull": bson.A{"$connections", bson.A{}}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: 1}}}},
	}

	var rows []struct {
		Summary     `bson:",inline"`
		Shapes      int `bson:"shapes"`
		Connections int `bson:"connections"`
	}
	err := cache.RetryWithBackoff(ctx, func() error {
		cur, err := m.coll.Aggregate(ctx, pipeline)
		if err != nil {
			return transient(err)
		}
		return transient(cur.All(ctx, &rows))
	})
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "list diagrams")
	}

	out := make([]Summary, len(rows))
	for i, r := range rows {
		out[i] = r.Summary
		out[i].Shapes, out[i].Connections = r.Shapes, r.Connections
	}
	return out, nil
}

// Close disconnects the client.
func (m *MongoStore) Close() error {
	if err := m.client.Disconnect(context.Background()); err != nil {
		return fmt.Errorf("disconnect mongo: %w", err)
	}
	return nil
}

// transient marks network and timeout errors as retryable.
func transient(err error) error {
	if err != nil && (mongo.IsNetworkError(err) || mongo.IsTimeout(err)) {
		return cache.Retryable(err)
	}
	return err
}

var _ Store = (*MongoStore)(nil)
