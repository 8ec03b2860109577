// internal/app/store/joinrequests/joinrequeststore.go
package joinrequests

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cyscom-vit/clubportal/internal/app/store/enrollment"
	"github.com/cyscom-vit/clubportal/internal/app/system/limits"
	"github.com/cyscom-vit/clubportal/internal/app/system/txn"
	"github.com/cyscom-vit/clubportal/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

var (
	// ErrAlreadyPending is returned when the user already has a pending
	// request for the same project.
	ErrAlreadyPending = errors.New("a pending join request already exists for this project")

	// ErrAlreadyProcessed is returned when a reviewer acts on a request
	// that another reviewer already approved or rejected.
	ErrAlreadyProcessed = errors.New("join request was already processed")

	// ErrNothingToWithdraw is returned when a withdraw finds no pending
	// request to delete.
	ErrNothingToWithdraw = errors.New("no pending join request to withdraw")
)

// Store manages the join-request review workflow. Approval composes the
// enrollment engine's membership transaction with the status flip so a
// request can only ever be consumed once.
type Store struct {
	db     *mongo.Database
	c      *mongo.Collection
	log    *zap.Logger
	engine *enrollment.Engine
}

func New(db *mongo.Database, log *zap.Logger, engine *enrollment.Engine) *Store {
	return &Store{
		db:     db,
		c:      db.Collection("join_requests"),
		log:    log,
		engine: engine,
	}
}

// Create files a pending join request for the user. A request against
// a project that is already full is refused at filing time rather than
// queued in the hope a seat frees up. The full/member checks here are
// optimistic; approval re-checks them inside the transaction. The
// partial unique index on (user_id, project_id) for pending requests
// makes the duplicate check race-proof.
func (s *Store) Create(ctx context.Context, userID, projectID primitive.ObjectID) (models.JoinRequest, error) {
	var project models.Project
	if err := s.db.Collection("projects").FindOne(ctx, bson.M{"_id": projectID}).Decode(&project); err != nil {
		return models.JoinRequest{}, err
	}
	if project.HasMember(userID) {
		return models.JoinRequest{}, enrollment.ErrAlreadyMember
	}
	if len(project.Members) >= limits.ProjectMemberLimit {
		return models.JoinRequest{}, enrollment.ErrProjectFull
	}

	req := models.JoinRequest{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		ProjectID:   projectID,
		Status:      models.JoinRequestPending,
		RequestedAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, req); err != nil {
		if wafflemongo.IsDup(err) {
			return models.JoinRequest{}, ErrAlreadyPending
		}
		return models.JoinRequest{}, err
	}
	return req, nil
}

// GetByID loads a join request. Returns mongo.ErrNoDocuments if absent.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.JoinRequest, error) {
	var req models.JoinRequest
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

// Approve grants the request: the pending re-check, the membership
// write, and the status flip commit together or not at all. If the
// project filled up in the meantime the request stays pending and the
// caller gets ErrProjectFull.
func (s *Store) Approve(ctx context.Context, requestID, reviewerID primitive.ObjectID) error {
	err := txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		var req models.JoinRequest
		if err := s.c.FindOne(ctx, bson.M{"_id": requestID}).Decode(&req); err != nil {
			return err
		}
		if req.Status != models.JoinRequestPending {
			return ErrAlreadyProcessed
		}

		if err := s.engine.JoinProjectTx(ctx, req.UserID, req.ProjectID); err != nil {
			return err
		}

		now := time.Now().UTC()
		_, err := s.c.UpdateOne(ctx,
			bson.M{"_id": requestID},
			bson.M{"$set": bson.M{
				"status":      models.JoinRequestApproved,
				"reviewed_by": reviewerID,
				"reviewed_at": now,
			}})
		return err
	})
	return s.wrap(err)
}

// Reject marks the request rejected. Racing reviewers are serialized by
// the pending re-check inside the transaction.
func (s *Store) Reject(ctx context.Context, requestID, reviewerID primitive.ObjectID) error {
	err := txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		var req models.JoinRequest
		if err := s.c.FindOne(ctx, bson.M{"_id": requestID}).Decode(&req); err != nil {
			return err
		}
		if req.Status != models.JoinRequestPending {
			return ErrAlreadyProcessed
		}

		now := time.Now().UTC()
		_, err := s.c.UpdateOne(ctx,
			bson.M{"_id": requestID},
			bson.M{"$set": bson.M{
				"status":      models.JoinRequestRejected,
				"reviewed_by": reviewerID,
				"reviewed_at": now,
			}})
		return err
	})
	return s.wrap(err)
}

// Withdraw deletes the user's pending request for a project. Only
// pending requests can be withdrawn; processed ones stay as history.
func (s *Store) Withdraw(ctx context.Context, userID, projectID primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{
		"user_id":    userID,
		"project_id": projectID,
		"status":     models.JoinRequestPending,
	})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNothingToWithdraw
	}
	return nil
}

// ListPending returns pending requests oldest first, for the admin
// review queue.
func (s *Store) ListPending(ctx context.Context) ([]models.JoinRequest, error) {
	opts := options.Find().SetSort(bson.D{{Key: "requested_at", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"status": models.JoinRequestPending}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.JoinRequest
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByUser returns all of a user's requests, newest first.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.JoinRequest, error) {
	opts := options.Find().SetSort(bson.D{{Key: "requested_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.JoinRequest
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) wrap(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrAlreadyProcessed) ||
		errors.Is(err, enrollment.ErrProjectFull) ||
		errors.Is(err, enrollment.ErrAlreadyMember) ||
		errors.Is(err, enrollment.ErrAlreadyInProject) ||
		errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}
	if txn.IsTransient(err) {
		s.log.Warn("join request transaction exhausted retries", zap.Error(err))
		return fmt.Errorf("%w: %v", enrollment.ErrTransactionAborted, err)
	}
	return err
}
