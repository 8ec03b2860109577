// internal/app/store/metrics/metricsstore.go
package metrics

import (
	"context"

	"github.com/cyscom-vit/clubportal/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Summary is the admin dashboard snapshot. Counts are computed
// independently and are not a consistent cut of the database.
type Summary struct {
	Members              int64 `json:"members"`
	Departments          int64 `json:"departments"`
	SeatsFilled          int64 `json:"seats_filled"`
	Projects             int64 `json:"projects"`
	PendingJoinRequests  int64 `json:"pending_join_requests"`
	PendingContributions int64 `json:"pending_contributions"`
}

// Store computes dashboard counts. Failures in individual counts are
// logged and reported as zero rather than failing the whole snapshot.
type Store struct {
	db  *mongo.Database
	log *zap.Logger
}

func New(db *mongo.Database, log *zap.Logger) *Store {
	return &Store{db: db, log: log}
}

func (s *Store) Summarize(ctx context.Context) Summary {
	var sum Summary
	sum.Members = s.count(ctx, "users", bson.M{"role": "member"})
	sum.Departments = s.count(ctx, "departments", bson.M{})
	sum.Projects = s.count(ctx, "projects", bson.M{})
	sum.PendingJoinRequests = s.count(ctx, "join_requests", bson.M{"status": models.JoinRequestPending})
	sum.PendingContributions = s.count(ctx, "contributions", bson.M{"status": models.ContributionPending})
	sum.SeatsFilled = s.seatsFilled(ctx)
	return sum
}

func (s *Store) count(ctx context.Context, collection string, filter bson.M) int64 {
	n, err := s.db.Collection(collection).CountDocuments(ctx, filter)
	if err != nil {
		s.log.Warn("dashboard count failed",
			zap.String("collection", collection),
			zap.Error(err))
		return 0
	}
	return n
}

func (s *Store) seatsFilled(ctx context.Context) int64 {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$filled_count"},
		}}},
	}
	cur, err := s.db.Collection("departments").Aggregate(ctx, pipeline)
	if err != nil {
		s.log.Warn("dashboard seat aggregation failed", zap.Error(err))
		return 0
	}
	defer cur.Close(ctx)

	var out []struct {
		Total int64 `bson:"total"`
	}
	if err := cur.All(ctx, &out); err != nil {
		s.log.Warn("dashboard seat aggregation decode failed", zap.Error(err))
		return 0
	}
	if len(out) == 0 {
		return 0
	}
	return out[0].Total
}
