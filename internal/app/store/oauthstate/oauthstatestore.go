// internal/app/store/oauthstate/oauthstatestore.go
package oauthstate

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrInvalidState is returned when a callback presents a state token
// that is unknown, already used, or expired.
var ErrInvalidState = errors.New("invalid or expired oauth state")

// TTL is how long an issued state token stays valid. The TTL index on
// expires_at reaps stragglers; Validate checks it explicitly so a token
// cannot outlive its window while waiting for the reaper.
const TTL = 10 * time.Minute

type stateDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	State     string             `bson:"state"`
	Redirect  string             `bson:"redirect"`
	ExpiresAt time.Time          `bson:"expires_at"`
}

// Store persists one-time OAuth state tokens so the login flow works
// across instances without sticky sessions.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("oauth_states")}
}

// Save records a freshly issued state token with its post-login
// redirect target.
func (s *Store) Save(ctx context.Context, state, redirect string) error {
	doc := stateDoc{
		ID:        primitive.NewObjectID(),
		State:     state,
		Redirect:  redirect,
		ExpiresAt: time.Now().UTC().Add(TTL),
	}
	_, err := s.c.InsertOne(ctx, doc)
	return err
}

// Validate consumes a state token: the token is deleted as it is
// checked, so each one authorizes exactly one callback. Returns the
// stored redirect target.
func (s *Store) Validate(ctx context.Context, state string) (string, error) {
	var doc stateDoc
	err := s.c.FindOneAndDelete(ctx, bson.M{"state": state}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", ErrInvalidState
	}
	if err != nil {
		return "", err
	}
	if time.Now().UTC().After(doc.ExpiresAt) {
		return "", ErrInvalidState
	}
	return doc.Redirect, nil
}

// CleanupExpired removes expired tokens. The TTL index normally handles
// this; the call exists for tests and for servers without TTL monitors.
func (s *Store) CleanupExpired(ctx context.Context) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lt": time.Now().UTC()}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
