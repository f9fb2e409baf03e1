package store

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/matzehuels/cladding/pkg/buildinfo"
	"github.com/matzehuels/cladding/pkg/core/layout"
	"github.com/matzehuels/cladding/pkg/errors"
)

// Mongo defaults.
const (
	DefaultMongoDatabase   = "cladding"
	DefaultMongoCollection = "layouts"
)

// MongoConfig configures [NewMongoStore].
type MongoConfig struct {
	URI        string        `toml:"uri"`
	Database   string        `toml:"database"`
	Collection string        `toml:"collection"`
	Timeout    time.Duration `toml:"timeout"`
}

// MongoStore saves each run as one document keyed by run ID. Summary
// fields are top-level for listing; the full result is kept as its JSON
// encoding because seeds use the full uint64 range, which BSON integers
// cannot hold.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	own    bool
}

type document struct {
	Summary `bson:",inline"`
	Seed    string `bson:"seed"`
	Result  []byte `bson:"result"`
}

// NewMongoStore connects to MongoDB, pings the primary and ensures the
// createdAt index used by List.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.URI == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "mongo uri is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI).SetTimeout(cfg.Timeout).SetAppName(buildinfo.UserAgent()))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	s := NewMongoStoreFromClient(client, cfg.Database, cfg.Collection)
	s.own = true
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

// NewMongoStoreFromClient wraps an existing client. Close does not
// disconnect it.
func NewMongoStoreFromClient(client *mongo.Client, database, collection string) *MongoStore {
	if database == "" {
		database = DefaultMongoDatabase
	}
	if collection == "" {
		collection = DefaultMongoCollection
	}
	return &MongoStore{client: client, coll: client.Database(database).Collection(collection)}
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// Commit upserts res.
func (s *MongoStore) Commit(ctx context.Context, res *layout.Result) error {
	if err := validate(res); err != nil {
		return err
	}
	doc, err := toDocument(res)
	if err != nil {
		return err
	}
	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": res.RunID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save layout %s: %w", res.RunID, err)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, runID string) (*layout.Result, error) {
	var doc document
	err := s.coll.FindOne(ctx, bson.M{"_id": runID}).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(runID)
	}
	if err != nil {
		return nil, fmt.Errorf("load layout %s: %w", runID, err)
	}
	return doc.result()
}

func (s *MongoStore) List(ctx context.Context, limit int) ([]Summary, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limitOf(limit))).
		SetProjection(bson.M{"result": 0, "seed": 0})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list layouts: %w", err)
	}
	var out []Summary
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("list layouts: %w", err)
	}
	return out, nil
}

func (s *MongoStore) Delete(ctx context.Context, runID string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": runID}); err != nil {
		return fmt.Errorf("delete layout %s: %w", runID, err)
	}
	return nil
}

// Close disconnects the client when the store created it.
func (s *MongoStore) Close() error {
	if !s.own {
		return nil
	}
	return s.client.Disconnect(context.Background())
}

func toDocument(res *layout.Result) (document, error) {
	data, err := json.Marshal(res)
	if err != nil {
		return document{}, fmt.Errorf("encode layout %s: %w", res.RunID, err)
	}
	return document{
		Summary: Summarize(res),
		Seed:    fmt.Sprint(res.Seed),
		Result:  data,
	}, nil
}

func (d document) result() (*layout.Result, error) {
	var res layout.Result
	if err := json.Unmarshal(d.Result, &res); err != nil {
		return nil, fmt.Errorf("decode layout %s: %w", d.RunID, err)
	}
	return &res, nil
}

var _ Store = (*MongoStore)(nil)
