package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/cyscom-vit/clubportal/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates a test user with the given role and no department
// selection.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email, role string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:          primitive.NewObjectID(),
		FullName:    fullName,
		FullNameCI:  text.Fold(fullName),
		Email:       email,
		Role:        role,
		Status:      "active",
		Departments: []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := f.db.Collection("users").InsertOne(ctx, user)
	if err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateMember creates a test user with the member role.
func (f *Fixtures) CreateMember(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, "member")
}

// CreateAdmin creates a test user with the admin role.
func (f *Fixtures) CreateAdmin(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, "admin")
}

// CreateUserWithDepartments creates a test member already enrolled in the
// given departments. Department filled counts are not touched; set those
// up with CreateDepartmentFilled when a test needs them consistent.
func (f *Fixtures) CreateUserWithDepartments(ctx context.Context, fullName, email string, depts []string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:          primitive.NewObjectID(),
		FullName:    fullName,
		FullNameCI:  text.Fold(fullName),
		Email:       email,
		Role:        "member",
		Status:      "active",
		Departments: depts,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := f.db.Collection("users").InsertOne(ctx, user)
	if err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateDepartment creates a test department with zero filled seats.
func (f *Fixtures) CreateDepartment(ctx context.Context, id, name string, capacity int) models.Department {
	f.t.Helper()
	return f.CreateDepartmentFilled(ctx, id, name, capacity, 0)
}

// CreateDepartmentFilled creates a test department with the given filled
// count.
func (f *Fixtures) CreateDepartmentFilled(ctx context.Context, id, name string, capacity, filled int) models.Department {
	f.t.Helper()

	now := time.Now().UTC()
	dept := models.Department{
		ID:          id,
		Name:        name,
		Capacity:    capacity,
		FilledCount: filled,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := f.db.Collection("departments").InsertOne(ctx, dept)
	if err != nil {
		f.t.Fatalf("failed to create test department: %v", err)
	}

	return dept
}

// CreateProject creates a test project in the given department with the
// given members.
func (f *Fixtures) CreateProject(ctx context.Context, name, dept string, members ...primitive.ObjectID) models.Project {
	f.t.Helper()

	if members == nil {
		members = []primitive.ObjectID{}
	}
	now := time.Now().UTC()
	project := models.Project{
		ID:          primitive.NewObjectID(),
		Name:        name,
		NameCI:      text.Fold(name),
		Description: "Test project description",
		Department:  dept,
		Members:     members,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := f.db.Collection("projects").InsertOne(ctx, project)
	if err != nil {
		f.t.Fatalf("failed to create test project: %v", err)
	}

	return project
}

// CreateJoinRequest creates a join request in the given status.
func (f *Fixtures) CreateJoinRequest(ctx context.Context, userID, projectID primitive.ObjectID, status string) models.JoinRequest {
	f.t.Helper()

	req := models.JoinRequest{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		ProjectID:   projectID,
		Status:      status,
		RequestedAt: time.Now().UTC(),
	}

	_, err := f.db.Collection("join_requests").InsertOne(ctx, req)
	if err != nil {
		f.t.Fatalf("failed to create test join request: %v", err)
	}

	return req
}

// CreateContribution creates a contribution in the given status.
func (f *Fixtures) CreateContribution(ctx context.Context, userID primitive.ObjectID, body, status string) models.Contribution {
	f.t.Helper()

	contrib := models.Contribution{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Text:      body,
		Status:    status,
		CreatedAt: time.Now().UTC(),
	}

	_, err := f.db.Collection("contributions").InsertOne(ctx, contrib)
	if err != nil {
		f.t.Fatalf("failed to create test contribution: %v", err)
	}

	return contrib
}
