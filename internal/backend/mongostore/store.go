// Package mongostore implements service.Service on a MongoDB collection.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"countdo/internal/config"
	"countdo/internal/logging"
	"countdo/internal/service"
)

// OpTimeout bounds every round trip to the server.
const OpTimeout = 5 * time.Second

// document is the stored shape of a task.
type document struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Text      string             `bson:"text"`
	Completed bool               `bson:"completed"`
	Deadline  string             `bson:"deadline"`
}

func (d document) task() service.Task {
	return service.Task{
		ID:        d.ID.Hex(),
		Text:      d.Text,
		Completed: d.Completed,
		Deadline:  d.Deadline,
	}
}

// Store is a service.Service over one collection.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
	logger *log.Logger
}

// Connect dials uri and checks the server responds.
func Connect(ctx context.Context, uri, database, collection string, logger *log.Logger) (*Store, error) {
	if uri == "" {
		return nil, fmt.Errorf("%w: mongodb uri is not set (add mongo_uri to config.toml or set COUNTDO_MONGO_URI)", config.ErrIncomplete)
	}
	if collection == "" {
		collection = service.DefaultCollection
	}
	if logger == nil {
		logger = logging.Discard()
	}

	ctx, cancel := context.WithTimeout(ctx, OpTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetTimeout(OpTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		disconnect(client, logger)
		return nil, fmt.Errorf("failed to reach mongodb: %w", err)
	}

	return &Store{
		client: client,
		coll:   client.Database(database).Collection(collection),
		logger: logger,
	}, nil
}

func disconnect(client *mongo.Client, logger *log.Logger) {
	if err := client.Disconnect(context.Background()); err != nil {
		logger.Debug("mongo disconnect after failed ping", "err", err)
	}
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), OpTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// ListAll returns every document, oldest first.
func (s *Store) ListAll(ctx context.Context) ([]service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, OpTimeout)
	defer cancel()

	// ObjectIDs start with their creation time.
	cur, err := s.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, wrapError("list", "", err)
	}
	defer cur.Close(ctx)

	var docs []document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, wrapError("list", "", err)
	}

	result := make([]service.Task, 0, len(docs))
	for _, d := range docs {
		result = append(result, d.task())
	}
	s.logger.Debug("mongo list", "collection", s.coll.Name(), "count", len(result))
	return result, nil
}

// Create inserts a document and returns its ObjectID in hex.
func (s *Store) Create(ctx context.Context, text, deadline string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, OpTimeout)
	defer cancel()

	res, err := s.coll.InsertOne(ctx, document{Text: text, Deadline: deadline})
	if err != nil {
		return "", wrapError("create", "", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", service.Wrap("create", "", fmt.Errorf("unexpected inserted id %v", res.InsertedID))
	}

	s.logger.Debug("mongo create", "id", oid.Hex())
	return oid.Hex(), nil
}

// UpdateFields applies a $set of the given fields.
func (s *Store) UpdateFields(ctx context.Context, id string, fields service.Fields) error {
	oid, err := objectID(id)
	if err != nil {
		return service.Wrap("update", id, err)
	}

	ctx, cancel := context.WithTimeout(ctx, OpTimeout)
	defer cancel()

	if fields.Empty() {
		err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Err()
		return wrapError("update", id, err)
	}

	res, err := s.coll.UpdateByID(ctx, oid, bson.M{"$set": setDoc(fields)})
	if err != nil {
		return wrapError("update", id, err)
	}
	if res.MatchedCount == 0 {
		return service.Wrap("update", id, service.ErrNotFound)
	}

	s.logger.Debug("mongo update", "id", id)
	return nil
}

// Delete removes one document. A missing document is an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return service.Wrap("delete", id, err)
	}

	ctx, cancel := context.WithTimeout(ctx, OpTimeout)
	defer cancel()

	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return wrapError("delete", id, err)
	}
	if res.DeletedCount == 0 {
		return service.Wrap("delete", id, service.ErrNotFound)
	}

	s.logger.Debug("mongo delete", "id", id)
	return nil
}

// objectID parses a hex id. Malformed ids cannot exist in the collection.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, service.ErrNotFound
	}
	return oid, nil
}

func setDoc(fields service.Fields) bson.M {
	set := bson.M{}
	if fields.Text != nil {
		set["text"] = *fields.Text
	}
	if fields.Completed != nil {
		set["completed"] = *fields.Completed
	}
	if fields.Deadline != nil {
		set["deadline"] = *fields.Deadline
	}
	return set
}

func wrapError(op, id string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return service.Wrap(op, id, service.ErrNotFound)
	case mongo.IsTimeout(err), errors.Is(err, context.DeadlineExceeded):
		return service.Wrap(op, id, fmt.Errorf("%w: %v", service.ErrTimeout, err))
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && (cmdErr.Code == 13 || cmdErr.Code == 18) {
		// Unauthorized, AuthenticationFailed
		return service.Wrap(op, id, fmt.Errorf("%w: %v", service.ErrUnauthorized, err))
	}
	return service.Wrap(op, id, err)
}
