package projects_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cyscom-vit/clubportal/internal/app/features/projects"
	"github.com/cyscom-vit/clubportal/internal/app/store/enrollment"
	joinrequeststore "github.com/cyscom-vit/clubportal/internal/app/store/joinrequests"
	"github.com/cyscom-vit/clubportal/internal/app/system/indexes"
	"github.com/cyscom-vit/clubportal/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*projects.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	engine := enrollment.NewEngine(db, logger)
	requests := joinrequeststore.New(db, logger, engine)
	handler := projects.NewHandler(db, engine, requests, logger)
	fixtures := testutil.NewFixtures(t, db)
	return handler, fixtures
}

func TestHandleJoin_CreatesPendingRequest(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	db := fixtures.DB()
	member := fixtures.CreateMember(ctx, "Joiner", "joiner@test.com")
	project := fixtures.CreateProject(ctx, "Phishing Sim", "technical")

	req := httptest.NewRequest("POST", "/projects/"+project.ID.Hex()+"/join", nil)
	req = testutil.WithChiURLParam(req, "id", project.ID.Hex())
	req = testutil.WithUser(req, testutil.MemberUserWithID(member.ID))

	rec := httptest.NewRecorder()
	handler.HandleJoin(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	count, err := db.Collection("join_requests").CountDocuments(ctx,
		bson.M{"user_id": member.ID, "project_id": project.ID, "status": "pending"})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 pending request, got %d", count)
	}

	// Membership is not granted until an admin approves.
	var proj struct {
		Members []primitive.ObjectID `bson:"members"`
	}
	if err := db.Collection("projects").FindOne(ctx, bson.M{"_id": project.ID}).Decode(&proj); err != nil {
		t.Fatalf("FindOne failed: %v", err)
	}
	if len(proj.Members) != 0 {
		t.Errorf("expected no members yet, got %v", proj.Members)
	}
}

func TestHandleJoin_DuplicatePending(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	member := fixtures.CreateMember(ctx, "Eager", "eager@test.com")
	project := fixtures.CreateProject(ctx, "CTF Platform", "technical")
	fixtures.CreateJoinRequest(ctx, member.ID, project.ID, "pending")

	req := httptest.NewRequest("POST", "/projects/"+project.ID.Hex()+"/join", nil)
	req = testutil.WithChiURLParam(req, "id", project.ID.Hex())
	req = testutil.WithUser(req, testutil.MemberUserWithID(member.ID))

	rec := httptest.NewRecorder()
	handler.HandleJoin(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("expected status %d, got %d: %s", http.StatusConflict, rec.Code, rec.Body.String())
	}
}

func TestHandleJoin_FullProject(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	member := fixtures.CreateMember(ctx, "Late", "late@test.com")
	full := []primitive.ObjectID{
		primitive.NewObjectID(), primitive.NewObjectID(),
		primitive.NewObjectID(), primitive.NewObjectID(),
	}
	project := fixtures.CreateProject(ctx, "Full House", "technical", full...)

	req := httptest.NewRequest("POST", "/projects/"+project.ID.Hex()+"/join", nil)
	req = testutil.WithChiURLParam(req, "id", project.ID.Hex())
	req = testutil.WithUser(req, testutil.MemberUserWithID(member.ID))

	rec := httptest.NewRecorder()
	handler.HandleJoin(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("expected status %d, got %d", http.StatusConflict, rec.Code)
	}
}

func TestHandleWithdraw(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	db := fixtures.DB()
	member := fixtures.CreateMember(ctx, "Changed Mind", "changed@test.com")
	project := fixtures.CreateProject(ctx, "Blog Revamp", "design")
	fixtures.CreateJoinRequest(ctx, member.ID, project.ID, "pending")

	req := httptest.NewRequest("DELETE", "/projects/"+project.ID.Hex()+"/join", nil)
	req = testutil.WithChiURLParam(req, "id", project.ID.Hex())
	req = testutil.WithUser(req, testutil.MemberUserWithID(member.ID))

	rec := httptest.NewRecorder()
	handler.HandleWithdraw(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	count, _ := db.Collection("join_requests").CountDocuments(ctx,
		bson.M{"user_id": member.ID, "status": "pending"})
	if count != 0 {
		t.Errorf("expected pending request to be gone, got %d", count)
	}
}

func TestHandleWithdraw_NothingPending(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	member := fixtures.CreateMember(ctx, "No Request", "norequest@test.com")
	project := fixtures.CreateProject(ctx, "Workshop Series", "events")

	req := httptest.NewRequest("DELETE", "/projects/"+project.ID.Hex()+"/join", nil)
	req = testutil.WithChiURLParam(req, "id", project.ID.Hex())
	req = testutil.WithUser(req, testutil.MemberUserWithID(member.ID))

	rec := httptest.NewRecorder()
	handler.HandleWithdraw(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("expected status %d, got %d", http.StatusConflict, rec.Code)
	}
}

func TestHandleLeave(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	db := fixtures.DB()
	member := fixtures.CreateMember(ctx, "Leaver", "leaver@test.com")
	project := fixtures.CreateProject(ctx, "Newsletter", "design", member.ID)
	_, err := db.Collection("users").UpdateOne(ctx,
		bson.M{"_id": member.ID},
		bson.M{"$set": bson.M{"project_id": project.ID}})
	if err != nil {
		t.Fatalf("UpdateOne failed: %v", err)
	}

	req := httptest.NewRequest("POST", "/projects/"+project.ID.Hex()+"/leave", nil)
	req = testutil.WithChiURLParam(req, "id", project.ID.Hex())
	req = testutil.WithUser(req, testutil.MemberUserWithID(member.ID))

	rec := httptest.NewRecorder()
	handler.HandleLeave(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var proj struct {
		Members []primitive.ObjectID `bson:"members"`
	}
	if err := db.Collection("projects").FindOne(ctx, bson.M{"_id": project.ID}).Decode(&proj); err != nil {
		t.Fatalf("FindOne failed: %v", err)
	}
	if len(proj.Members) != 0 {
		t.Errorf("expected member removed, got %v", proj.Members)
	}
}

func TestHandleCreateAndDelete(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	db := fixtures.DB()

	body := `{"name":"Recon Toolkit","description":"OSINT tooling","department":"technical"}`
	req := httptest.NewRequest("POST", "/admin/projects", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = testutil.WithUser(req, testutil.AdminUser())

	rec := httptest.NewRecorder()
	handler.HandleCreate(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var created struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := db.Collection("projects").FindOne(ctx, bson.M{"name": "Recon Toolkit"}).Decode(&created); err != nil {
		t.Fatalf("FindOne failed: %v", err)
	}

	delReq := httptest.NewRequest("DELETE", "/admin/projects/"+created.ID.Hex(), nil)
	delReq = testutil.WithChiURLParam(delReq, "id", created.ID.Hex())
	delReq = testutil.WithUser(delReq, testutil.AdminUser())

	delRec := httptest.NewRecorder()
	handler.HandleDelete(delRec, delReq)

	if delRec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, delRec.Code, delRec.Body.String())
	}

	count, _ := db.Collection("projects").CountDocuments(ctx, bson.M{"_id": created.ID})
	if count != 0 {
		t.Errorf("expected project deleted, got %d", count)
	}
}
