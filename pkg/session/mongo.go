package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/depmatrix/depmatrix/pkg/matrix"
	"github.com/depmatrix/depmatrix/pkg/path"
)

// MongoStore is a MongoDB-backed session store for server deployments.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// mongoSession is the document form of a Session. Actions are stored
// as explicit subdocuments because the wire form of an action is a
// sum type, not a flat struct.
type mongoSession struct {
	ID        string        `bson:"_id"`
	Name      string        `bson:"name,omitempty"`
	GraphHash string        `bson:"graph_hash"`
	Actions   []mongoAction `bson:"actions"`
	CreatedAt time.Time     `bson:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at"`
}

type mongoAction struct {
	Type      string `bson:"type"`
	Node      string `bson:"node"`
	Direction string `bson:"direction,omitempty"`
}

// NewMongoStore connects to MongoDB and returns a store over the
// sessions collection of the given database.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return &MongoStore{
		client:     client,
		collection: client.Database(database).Collection("sessions"),
	}, nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*Session, error) {
	var doc mongoSession
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	return fromMongo(doc)
}

func (s *MongoStore) Set(ctx context.Context, sess *Session) error {
	doc := toMongo(sess)
	_, err := s.collection.ReplaceOne(ctx,
		bson.M{"_id": sess.ID},
		doc,
		options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	if _, err := s.collection.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context) ([]*Session, error) {
	cur, err := s.collection.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer cur.Close(ctx)

	var out []*Session
	for cur.Next(ctx) {
		var doc mongoSession
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode session: %w", err)
		}
		sess, err := fromMongo(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, cur.Err()
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func toMongo(sess *Session) mongoSession {
	doc := mongoSession{
		ID:        sess.ID,
		Name:      sess.Name,
		GraphHash: sess.GraphHash,
		Actions:   make([]mongoAction, 0, len(sess.Actions)),
		CreatedAt: sess.CreatedAt,
		UpdatedAt: sess.UpdatedAt,
	}
	for _, a := range sess.Actions {
		ma := mongoAction{Type: string(a.Type), Node: a.Node}
		if a.Type == path.ActionFocus {
			ma.Direction = a.Direction.String()
		}
		doc.Actions = append(doc.Actions, ma)
	}
	return doc
}

func fromMongo(doc mongoSession) (*Session, error) {
	sess := &Session{
		ID:        doc.ID,
		Name:      doc.Name,
		GraphHash: doc.GraphHash,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
	for _, ma := range doc.Actions {
		switch path.ActionType(ma.Type) {
		case path.ActionExpand:
			sess.Actions = append(sess.Actions, path.NewExpand(ma.Node))
		case path.ActionFocus:
			kind, err := matrix.ParseFocusKind(ma.Direction)
			if err != nil {
				return nil, fmt.Errorf("session %s: %w", doc.ID, err)
			}
			sess.Actions = append(sess.Actions, path.NewFocus(ma.Node, kind))
		default:
			return nil, fmt.Errorf("session %s: unknown action type %q", doc.ID, ma.Type)
		}
	}
	return sess, nil
}

var _ Store = (*MongoStore)(nil)
