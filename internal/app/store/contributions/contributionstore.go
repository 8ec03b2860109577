// internal/app/store/contributions/contributionstore.go
package contributions

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cyscom-vit/clubportal/internal/app/store/enrollment"
	"github.com/cyscom-vit/clubportal/internal/app/system/htmlsanitize"
	"github.com/cyscom-vit/clubportal/internal/app/system/limits"
	"github.com/cyscom-vit/clubportal/internal/app/system/txn"
	"github.com/cyscom-vit/clubportal/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

var (
	// ErrAlreadyProcessed is returned when a reviewer acts on a
	// contribution that was already verified or rejected.
	ErrAlreadyProcessed = errors.New("contribution was already processed")

	// ErrInvalidPoints is returned for a negative or out-of-range
	// points award.
	ErrInvalidPoints = errors.New("invalid points value")

	// ErrEmptyText is returned when the submission has no text after
	// sanitization.
	ErrEmptyText = errors.New("contribution text is required")

	// ErrTextTooLong is returned when the submission text exceeds the
	// length limit.
	ErrTextTooLong = errors.New("contribution text is too long")
)

// FileRemover deletes a stored attachment. The default removes from the
// local filesystem; tests substitute a recorder.
type FileRemover func(path string) error

// Store manages contribution submissions and their review. Verification
// couples the status flip with the member's point award in one
// transaction so double-verification can never double-count.
type Store struct {
	db     *mongo.Database
	c      *mongo.Collection
	log    *zap.Logger
	remove FileRemover
}

func New(db *mongo.Database, log *zap.Logger) *Store {
	return &Store{
		db:     db,
		c:      db.Collection("contributions"),
		log:    log,
		remove: os.Remove,
	}
}

// WithFileRemover overrides attachment deletion, for tests.
func (s *Store) WithFileRemover(fn FileRemover) *Store {
	s.remove = fn
	return s
}

// Submit files a pending contribution. Text is sanitized before
// storage; attachmentPath may be empty.
func (s *Store) Submit(ctx context.Context, userID primitive.ObjectID, projectID *primitive.ObjectID, text, attachmentPath string) (models.Contribution, error) {
	text = strings.TrimSpace(htmlsanitize.Sanitize(text))
	if text == "" {
		return models.Contribution{}, ErrEmptyText
	}
	if len(text) > limits.MaxContributionTextLen {
		return models.Contribution{}, ErrTextTooLong
	}

	contrib := models.Contribution{
		ID:             primitive.NewObjectID(),
		UserID:         userID,
		ProjectID:      projectID,
		Text:           text,
		AttachmentPath: attachmentPath,
		Status:         models.ContributionPending,
		CreatedAt:      time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, contrib); err != nil {
		return models.Contribution{}, err
	}
	return contrib, nil
}

// GetByID loads a contribution. Returns mongo.ErrNoDocuments if absent.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Contribution, error) {
	var contrib models.Contribution
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&contrib); err != nil {
		return nil, err
	}
	return &contrib, nil
}

// Verify awards exactly the given points for a pending contribution;
// zero is a valid award. Callers that want the default award pass
// limits.DefaultContributionPoints themselves. The pending re-check
// and the member's total_points increment commit atomically with the
// status flip, so a racing second verification hits
// ErrAlreadyProcessed instead of awarding twice.
func (s *Store) Verify(ctx context.Context, contributionID, reviewerID primitive.ObjectID, points int) error {
	if points < 0 || points > limits.MaxContributionPoints {
		return ErrInvalidPoints
	}

	err := txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		var contrib models.Contribution
		if err := s.c.FindOne(ctx, bson.M{"_id": contributionID}).Decode(&contrib); err != nil {
			return err
		}
		if contrib.Status != models.ContributionPending {
			return ErrAlreadyProcessed
		}

		now := time.Now().UTC()
		if _, err := s.c.UpdateOne(ctx,
			bson.M{"_id": contributionID},
			bson.M{"$set": bson.M{
				"status":         models.ContributionVerified,
				"points_awarded": points,
				"verified_by":    reviewerID,
				"verified_at":    now,
			}}); err != nil {
			return err
		}

		_, err := s.db.Collection("users").UpdateOne(ctx,
			bson.M{"_id": contrib.UserID},
			bson.M{
				"$inc": bson.M{"total_points": points},
				"$set": bson.M{"updated_at": now},
			})
		return err
	})
	return s.wrap(err)
}

// Reject marks the contribution rejected and deletes its attachment.
// The attachment delete is best effort; a failure is logged and does
// not undo the rejection.
func (s *Store) Reject(ctx context.Context, contributionID, reviewerID primitive.ObjectID) error {
	var attachmentPath string
	err := txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		var contrib models.Contribution
		if err := s.c.FindOne(ctx, bson.M{"_id": contributionID}).Decode(&contrib); err != nil {
			return err
		}
		if contrib.Status != models.ContributionPending {
			return ErrAlreadyProcessed
		}
		attachmentPath = contrib.AttachmentPath

		now := time.Now().UTC()
		_, err := s.c.UpdateOne(ctx,
			bson.M{"_id": contributionID},
			bson.M{"$set": bson.M{
				"status":      models.ContributionRejected,
				"verified_by": reviewerID,
				"verified_at": now,
			}})
		return err
	})
	if err != nil {
		return s.wrap(err)
	}

	if attachmentPath != "" {
		if rmErr := s.remove(attachmentPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			s.log.Warn("failed to delete rejected contribution attachment",
				zap.String("path", attachmentPath),
				zap.Error(rmErr))
		}
	}
	return nil
}

// ListPending returns pending contributions oldest first, for the
// review queue.
func (s *Store) ListPending(ctx context.Context) ([]models.Contribution, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"status": models.ContributionPending}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Contribution
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByUser returns all of a user's contributions, newest first.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Contribution, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Contribution
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) wrap(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrAlreadyProcessed) || errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}
	if txn.IsTransient(err) {
		s.log.Warn("contribution transaction exhausted retries", zap.Error(err))
		return fmt.Errorf("%w: %v", enrollment.ErrTransactionAborted, err)
	}
	return err
}
