package storage

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Revolution-Populi/revpop-samples/client/config"
	clienterrors "github.com/Revolution-Populi/revpop-samples/client/errors"
)

// MongoStore keeps blobs as documents {_id, data} in a collection
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	db     string
}

// NewMongoStore connects to uri and pings the server
func NewMongoStore(ctx context.Context, uri, dbName, collName string) (*MongoStore, error) {
	if uri == "" {
		return nil, errors.New("mongo uri is empty")
	}
	cli, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := cli.Ping(pctx, nil); err != nil {
		_ = cli.Disconnect(ctx)
		return nil, err
	}

	return &MongoStore{
		client: cli,
		coll:   cli.Database(dbName).Collection(collName),
		db:     dbName,
	}, nil
}

func (m *MongoStore) Backend() string { return config.BackendMongo }

func (m *MongoStore) Put(ctx context.Context, data []byte) (string, error) {
	id, err := blobID(data)
	if err != nil {
		return "", err
	}

	_, err = m.coll.UpdateByID(
		ctx,
		id,
		bson.M{
			"$set": bson.M{
				"data": data,
			},
			"$setOnInsert": bson.M{
				"createdAt": time.Now(),
			},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return "", clienterrors.NewStorageError(m.Backend(), "put", err)
	}
	return id, nil
}

func (m *MongoStore) Get(ctx context.Context, id string) ([]byte, error) {
	var doc struct {
		Data []byte `bson:"data"`
	}
	err := m.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(m.Backend(), id)
	}
	if err != nil {
		return nil, clienterrors.NewStorageError(m.Backend(), "get", err)
	}

	if err := checkBlob(m.Backend(), id, doc.Data); err != nil {
		return nil, err
	}
	return doc.Data, nil
}

func (m *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := m.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return clienterrors.NewStorageError(m.Backend(), "delete", err)
	}
	if res.DeletedCount == 0 {
		return notFound(m.Backend(), id)
	}
	return nil
}

func (m *MongoStore) URL(id string) string {
	return "mongodb://" + m.db + "/" + m.coll.Name() + "/" + id
}

func (m *MongoStore) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
