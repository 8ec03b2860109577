// internal/app/store/departments/departmentstore.go
package departmentstore

import (
	"context"
	"errors"
	"time"

	"github.com/cyscom-vit/clubportal/internal/app/system/htmlsanitize"
	"github.com/cyscom-vit/clubportal/internal/app/system/normalize"
	"github.com/cyscom-vit/clubportal/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store wraps the departments collection. Besides plain CRUD it holds
// the capacity ledger: filled_count is only ever written through
// ReserveSeat/ReleaseSeat, composed inside an enrollment transaction
// together with the user write they summarize.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("departments")}
}

var (
	// ErrCapacityExceeded aborts the enclosing transaction when a
	// reservation would push filled_count past capacity.
	ErrCapacityExceeded = errors.New("department is full")

	// ErrDuplicateDepartment is returned when creating a department
	// whose ID already exists.
	ErrDuplicateDepartment = errors.New("a department with this id already exists")

	errEmptyID = errors.New("department id must not be empty")
)

// GetByID loads a department by slug. Returns mongo.ErrNoDocuments if absent.
func (s *Store) GetByID(ctx context.Context, deptID string) (*models.Department, error) {
	var d models.Department
	if err := s.c.FindOne(ctx, bson.M{"_id": deptID}).Decode(&d); err != nil {
		return nil, err
	}
	return &d, nil
}

// GetAllByID batch-loads the named departments, keyed by slug. Callers
// inside a transaction use this to perform every read before any write.
// A missing slug is simply absent from the map.
func (s *Store) GetAllByID(ctx context.Context, deptIDs []string) (map[string]*models.Department, error) {
	out := make(map[string]*models.Department, len(deptIDs))
	if len(deptIDs) == 0 {
		return out, nil
	}

	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": deptIDs}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var d models.Department
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		dd := d
		out[d.ID] = &dd
	}
	return out, cur.Err()
}

// List returns all departments sorted by name.
func (s *Store) List(ctx context.Context) ([]models.Department, error) {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var depts []models.Department
	if err := cur.All(ctx, &depts); err != nil {
		return nil, err
	}
	return depts, nil
}

// Create inserts a new department with a zero fill count.
func (s *Store) Create(ctx context.Context, deptID, name string, capacity int) (models.Department, error) {
	deptID = normalize.DeptID(deptID)
	if deptID == "" {
		return models.Department{}, errEmptyID
	}
	if capacity < 0 {
		capacity = 0
	}

	now := time.Now().UTC()
	d := models.Department{
		ID:          deptID,
		Name:        htmlsanitize.StripTags(normalize.Name(name)),
		Capacity:    capacity,
		FilledCount: 0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.c.InsertOne(ctx, d); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Department{}, ErrDuplicateDepartment
		}
		return models.Department{}, err
	}
	return d, nil
}

// UpdateCapacity sets a department's capacity. Lowering capacity below
// the current fill count is allowed; the ledger only blocks new
// reservations, it never evicts members.
func (s *Store) UpdateCapacity(ctx context.Context, deptID string, capacity int) error {
	if capacity < 0 {
		capacity = 0
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": deptID},
		bson.M{"$set": bson.M{"capacity": capacity, "updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ReserveSeat takes one seat in the loaded department snapshot.
//
// Must be called with a transaction (session) context and a snapshot
// read in the same transaction: the conflict-retry loop is what makes
// the read-check-increment safe under concurrent writers. Returns
// ErrCapacityExceeded to abort the whole transaction when no seat is
// open; nothing is written in that case.
func (s *Store) ReserveSeat(ctx context.Context, dept *models.Department) error {
	if dept.Capacity > 0 && dept.FilledCount+1 > dept.Capacity {
		return ErrCapacityExceeded
	}
	dept.FilledCount++
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": dept.ID},
		bson.M{"$set": bson.M{"filled_count": dept.FilledCount, "updated_at": time.Now().UTC()}})
	return err
}

// ReleaseSeat frees one seat, flooring at zero to absorb any historical
// counter drift. Same transactional contract as ReserveSeat.
func (s *Store) ReleaseSeat(ctx context.Context, dept *models.Department) error {
	if dept.FilledCount > 0 {
		dept.FilledCount--
	}
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": dept.ID},
		bson.M{"$set": bson.M{"filled_count": dept.FilledCount, "updated_at": time.Now().UTC()}})
	return err
}

// Delete removes a department document. Callers are expected to have
// checked that no user still references it.
func (s *Store) Delete(ctx context.Context, deptID string) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": deptID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
