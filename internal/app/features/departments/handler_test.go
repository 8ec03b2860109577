package departments_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cyscom-vit/clubportal/internal/app/features/departments"
	"github.com/cyscom-vit/clubportal/internal/app/store/enrollment"
	"github.com/cyscom-vit/clubportal/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*departments.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	engine := enrollment.NewEngine(db, logger)
	handler := departments.NewHandler(db, engine, logger)
	fixtures := testutil.NewFixtures(t, db)
	return handler, fixtures
}

func TestHandleSelect_Member_Success(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	db := fixtures.DB()
	member := fixtures.CreateMember(ctx, "Selecting Member", "select@test.com")
	fixtures.CreateDepartment(ctx, "technical", "Technical", 10)
	fixtures.CreateDepartment(ctx, "design", "Design", 10)

	body := `{"departments":["Technical","Design"]}`
	req := httptest.NewRequest("POST", "/departments/select", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = testutil.WithUser(req, testutil.MemberUserWithID(member.ID))

	rec := httptest.NewRecorder()
	handler.HandleSelect(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var user struct {
		Departments []string `bson:"departments"`
	}
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": member.ID}).Decode(&user); err != nil {
		t.Fatalf("FindOne failed: %v", err)
	}
	if len(user.Departments) != 2 {
		t.Fatalf("expected 2 departments, got %v", user.Departments)
	}

	var dept struct {
		FilledCount int `bson:"filled_count"`
	}
	if err := db.Collection("departments").FindOne(ctx, bson.M{"_id": "technical"}).Decode(&dept); err != nil {
		t.Fatalf("FindOne department failed: %v", err)
	}
	if dept.FilledCount != 1 {
		t.Errorf("filled_count: got %d, want 1", dept.FilledCount)
	}
}

func TestHandleSelect_WrongSize(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	member := fixtures.CreateMember(ctx, "One Dept", "onedept@test.com")
	fixtures.CreateDepartment(ctx, "technical", "Technical", 10)

	body := `{"departments":["technical"]}`
	req := httptest.NewRequest("POST", "/departments/select", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = testutil.WithUser(req, testutil.MemberUserWithID(member.ID))

	rec := httptest.NewRecorder()
	handler.HandleSelect(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestHandleSelect_LockedAfterCommit(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	member := fixtures.CreateUserWithDepartments(ctx, "Locked Member", "locked@test.com",
		[]string{"technical", "design"})
	fixtures.CreateDepartmentFilled(ctx, "technical", "Technical", 10, 1)
	fixtures.CreateDepartmentFilled(ctx, "design", "Design", 10, 1)
	fixtures.CreateDepartment(ctx, "events", "Events", 10)

	body := `{"departments":["technical","events"]}`
	req := httptest.NewRequest("POST", "/departments/select", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = testutil.WithUser(req, testutil.MemberUserWithID(member.ID))

	rec := httptest.NewRecorder()
	handler.HandleSelect(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("expected status %d, got %d: %s", http.StatusConflict, rec.Code, rec.Body.String())
	}
}

func TestHandleSelect_Unauthenticated(t *testing.T) {
	handler, _ := newTestHandler(t)

	body := `{"departments":["technical","design"]}`
	req := httptest.NewRequest("POST", "/departments/select", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	handler.HandleSelect(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestHandleCreate_Admin(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	db := fixtures.DB()

	body := `{"id":"technical","name":"Technical","capacity":25}`
	req := httptest.NewRequest("POST", "/admin/departments", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = testutil.WithUser(req, testutil.AdminUser())

	rec := httptest.NewRecorder()
	handler.HandleCreate(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var dept struct {
		Name        string `bson:"name"`
		Capacity    int    `bson:"capacity"`
		FilledCount int    `bson:"filled_count"`
	}
	if err := db.Collection("departments").FindOne(ctx, bson.M{"_id": "technical"}).Decode(&dept); err != nil {
		t.Fatalf("FindOne failed: %v", err)
	}
	if dept.Capacity != 25 {
		t.Errorf("capacity: got %d, want 25", dept.Capacity)
	}
	if dept.FilledCount != 0 {
		t.Errorf("filled_count: got %d, want 0", dept.FilledCount)
	}
}

func TestHandleCreate_Validation(t *testing.T) {
	handler, _ := newTestHandler(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing_name", `{"id":"x","capacity":10}`},
		{"negative_capacity", `{"id":"x","name":"X","capacity":-1}`},
		{"bad_json", `{`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/admin/departments", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			req = testutil.WithUser(req, testutil.AdminUser())

			rec := httptest.NewRecorder()
			handler.HandleCreate(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
			}
		})
	}
}

func TestHandleUpdateCapacity_BelowFilled(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	db := fixtures.DB()
	fixtures.CreateDepartmentFilled(ctx, "technical", "Technical", 10, 7)

	body := `{"capacity":5}`
	req := httptest.NewRequest("PUT", "/admin/departments/technical/capacity", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = testutil.WithChiURLParam(req, "id", "technical")
	req = testutil.WithUser(req, testutil.AdminUser())

	rec := httptest.NewRecorder()
	handler.HandleUpdateCapacity(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var dept struct {
		Capacity    int `bson:"capacity"`
		FilledCount int `bson:"filled_count"`
	}
	if err := db.Collection("departments").FindOne(ctx, bson.M{"_id": "technical"}).Decode(&dept); err != nil {
		t.Fatalf("FindOne failed: %v", err)
	}
	if dept.Capacity != 5 {
		t.Errorf("capacity: got %d, want 5", dept.Capacity)
	}
	if dept.FilledCount != 7 {
		t.Errorf("filled_count should be untouched: got %d, want 7", dept.FilledCount)
	}
}

func TestHandleAssign_AdminBypassesLock(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	db := fixtures.DB()
	member := fixtures.CreateUserWithDepartments(ctx, "Reassigned", "reassign@test.com",
		[]string{"technical", "design"})
	fixtures.CreateDepartmentFilled(ctx, "technical", "Technical", 10, 1)
	fixtures.CreateDepartmentFilled(ctx, "design", "Design", 10, 1)
	fixtures.CreateDepartment(ctx, "events", "Events", 10)

	body := `{"departments":["technical","events"]}`
	req := httptest.NewRequest("PUT", "/admin/users/"+member.ID.Hex()+"/departments", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = testutil.WithChiURLParam(req, "id", member.ID.Hex())
	req = testutil.WithUser(req, testutil.AdminUser())

	rec := httptest.NewRecorder()
	handler.HandleAssign(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var design struct {
		FilledCount int `bson:"filled_count"`
	}
	if err := db.Collection("departments").FindOne(ctx, bson.M{"_id": "design"}).Decode(&design); err != nil {
		t.Fatalf("FindOne failed: %v", err)
	}
	if design.FilledCount != 0 {
		t.Errorf("design seat should be released: got %d, want 0", design.FilledCount)
	}
}

func TestHandleReset_ClearsSelection(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	db := fixtures.DB()
	member := fixtures.CreateUserWithDepartments(ctx, "Reset Me", "reset@test.com",
		[]string{"technical", "design"})
	fixtures.CreateDepartmentFilled(ctx, "technical", "Technical", 10, 1)
	fixtures.CreateDepartmentFilled(ctx, "design", "Design", 10, 1)

	req := httptest.NewRequest("POST", "/admin/users/"+member.ID.Hex()+"/departments/reset", nil)
	req = testutil.WithChiURLParam(req, "id", member.ID.Hex())
	req = testutil.WithUser(req, testutil.AdminUser())

	rec := httptest.NewRecorder()
	handler.HandleReset(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var user struct {
		Departments []string `bson:"departments"`
	}
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": member.ID}).Decode(&user); err != nil {
		t.Fatalf("FindOne failed: %v", err)
	}
	if len(user.Departments) != 0 {
		t.Errorf("departments should be cleared, got %v", user.Departments)
	}
}

func TestHandleDelete_NotFound(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := httptest.NewRequest("DELETE", "/admin/departments/ghost", nil)
	req = testutil.WithChiURLParam(req, "id", "ghost")
	req = testutil.WithUser(req, testutil.AdminUser())

	rec := httptest.NewRecorder()
	handler.HandleDelete(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}
