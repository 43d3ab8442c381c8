package dataset

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/PeterZhouSZ/string2shape/pkg/observability"
)

// MongoStore inserts records into a MongoDB collection, for corpora shared
// across machines.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// MongoOpts configures the MongoDB connection.
type MongoOpts struct {
	URI        string // defaults to mongodb://localhost:27017
	Database   string // defaults to string2shape
	Collection string // defaults to structures
}

func (o MongoOpts) withDefaults() MongoOpts {
	if o.URI == "" {
		o.URI = "mongodb://localhost:27017"
	}
	if o.Database == "" {
		o.Database = "string2shape"
	}
	if o.Collection == "" {
		o.Collection = "structures"
	}
	return o
}

// NewMongoStore connects to MongoDB and verifies the connection with a ping.
func NewMongoStore(ctx context.Context, opts MongoOpts) (*MongoStore, error) {
	opts = opts.withDefaults()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(opts.Database).Collection(opts.Collection),
	}, nil
}

// Put inserts one record.
func (s *MongoStore) Put(ctx context.Context, rec Record) error {
	if _, err := s.coll.InsertOne(ctx, rec); err != nil {
		observability.Dataset().OnRecordError(ctx, "mongo", err)
		return err
	}
	observability.Dataset().OnRecordWrite(ctx, "mongo", len(rec.Encoded))
	return nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
