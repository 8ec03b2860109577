// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/cyscom-vit/clubportal/internal/app/system/normalize"
	"github.com/cyscom-vit/clubportal/internal/app/system/status"
	"github.com/cyscom-vit/clubportal/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

var (
	// ErrDuplicateEmail is returned when a user with this email already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")

	// ErrBadRole and ErrBadStatus flag invalid enum values on create
	// or role change.
	ErrBadRole   = errors.New(`role must be "member"|"admin"|"superadmin"`)
	ErrBadStatus = errors.New(`status must be "active"|"disabled"`)

	// ErrInvalidCredentials covers both unknown email and wrong
	// password so callers cannot probe which one failed.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email.
// Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByGoogleID looks up a user by linked Google account ID.
func (s *Store) GetByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"google_id": googleID}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user after normalizing & validating fields.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.FullName = normalize.Name(u.FullName)
	u.FullNameCI = text.Fold(u.FullName)
	u.Email = normalize.Email(u.Email)
	if u.Status == "" {
		u.Status = status.Active
	}
	if u.Departments == nil {
		u.Departments = []string{}
	}

	switch u.Role {
	case "member", "admin", "superadmin":
	default:
		return models.User{}, ErrBadRole
	}
	if !status.IsValid(u.Status) {
		return models.User{}, ErrBadStatus
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// EnsureByGoogle returns the user for a Google sign-in, creating a
// member account on first authentication. An existing account found by
// email gets the Google ID linked.
func (s *Store) EnsureByGoogle(ctx context.Context, googleID, email, fullName string) (*models.User, error) {
	if u, err := s.GetByGoogleID(ctx, googleID); err == nil {
		return u, nil
	} else if err != mongo.ErrNoDocuments {
		return nil, err
	}

	u, err := s.GetByEmail(ctx, email)
	if err == nil {
		if u.GoogleID == nil || *u.GoogleID == "" {
			_, linkErr := s.c.UpdateOne(ctx,
				bson.M{"_id": u.ID},
				bson.M{"$set": bson.M{"google_id": googleID, "updated_at": time.Now().UTC()}})
			if linkErr != nil {
				return nil, linkErr
			}
			u.GoogleID = &googleID
		}
		return u, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	created, err := s.Create(ctx, models.User{
		FullName: fullName,
		Email:    email,
		GoogleID: &googleID,
		Role:     "member",
	})
	if err == ErrDuplicateEmail {
		// Concurrent first sign-in from another tab; take the winner.
		return s.GetByEmail(ctx, email)
	}
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// SetRole changes a user's role.
func (s *Store) SetRole(ctx context.Context, id primitive.ObjectID, role string) error {
	switch normalize.Role(role) {
	case "member", "admin", "superadmin":
	default:
		return ErrBadRole
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"role": normalize.Role(role), "updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// PromoteByEmail upserts the given role onto an existing account, used
// by the startup superadmin bootstrap. Missing accounts are not
// created; the user must sign in first.
func (s *Store) PromoteByEmail(ctx context.Context, email, role string) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"email": normalize.Email(email)},
		bson.M{"$set": bson.M{"role": normalize.Role(role), "updated_at": time.Now().UTC()}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// SetPassword hashes and stores a password for the given account.
func (s *Store) SetPassword(ctx context.Context, id primitive.ObjectID, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return err
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"password_hash": string(hash), "updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Authenticate checks an email/password pair against the stored hash.
// Accounts without a password set cannot authenticate this way.
func (s *Store) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.GetByEmail(ctx, email)
	if err == mongo.ErrNoDocuments {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if u.PasswordHash == nil || *u.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// LeaderboardEntry is one row of the points leaderboard.
type LeaderboardEntry struct {
	UserID      primitive.ObjectID `bson:"_id" json:"user_id"`
	FullName    string             `bson:"full_name" json:"full_name"`
	TotalPoints int                `bson:"total_points" json:"total_points"`
	ProjectID   *primitive.ObjectID `bson:"project_id,omitempty" json:"project_id,omitempty"`
}

// Leaderboard returns the top members sorted by points descending,
// name ascending as the tiebreak.
func (s *Store) Leaderboard(ctx context.Context, limit int64) ([]LeaderboardEntry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "total_points", Value: -1}, {Key: "full_name_ci", Value: 1}}).
		SetLimit(limit).
		SetProjection(bson.M{"full_name": 1, "total_points": 1, "project_id": 1})

	cur, err := s.c.Find(ctx, bson.M{"role": "member", "status": status.Active}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var entries []LeaderboardEntry
	if err := cur.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
