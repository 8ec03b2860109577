package userinfo_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cyscom-vit/clubportal/internal/app/features/userinfo"
	"github.com/cyscom-vit/clubportal/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*userinfo.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	handler := userinfo.NewHandler(db, zap.NewNop())
	fixtures := testutil.NewFixtures(t, db)
	return handler, fixtures
}

func TestServeUserInfo_Anonymous(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := httptest.NewRequest("GET", "/api/user", nil)
	rec := httptest.NewRecorder()
	handler.ServeUserInfo(rec, req)

	var resp struct {
		IsAuthenticated bool   `json:"isAuthenticated"`
		Name            string `json:"name"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.IsAuthenticated {
		t.Error("expected isAuthenticated=false for anonymous request")
	}
	if resp.Name != "" {
		t.Errorf("expected empty name, got %q", resp.Name)
	}
}

func TestServeUserInfo_SignedIn(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := testutil.NewAuthenticatedRequest("GET", "/api/user", testutil.MemberUser())
	rec := httptest.NewRecorder()
	handler.ServeUserInfo(rec, req)

	var resp struct {
		IsAuthenticated bool   `json:"isAuthenticated"`
		Role            string `json:"role"`
		Email           string `json:"email"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.IsAuthenticated {
		t.Error("expected isAuthenticated=true")
	}
	if resp.Role != "member" {
		t.Errorf("role: got %q, want %q", resp.Role, "member")
	}
	if resp.Email != "member@test.com" {
		t.Errorf("email: got %q, want %q", resp.Email, "member@test.com")
	}
}

func TestServeProfile(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	member := fixtures.CreateUserWithDepartments(ctx, "Profiled", "profiled@test.com",
		[]string{"technical", "design"})

	req := testutil.NewAuthenticatedRequest("GET", "/me", testutil.MemberUserWithID(member.ID))
	rec := httptest.NewRecorder()
	handler.ServeProfile(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var resp struct {
		Email       string   `json:"email"`
		Departments []string `json:"departments"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Email != "profiled@test.com" {
		t.Errorf("email: got %q, want %q", resp.Email, "profiled@test.com")
	}
	if len(resp.Departments) != 2 {
		t.Errorf("expected 2 departments, got %v", resp.Departments)
	}
}

func TestServeProfile_Unauthenticated(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := httptest.NewRequest("GET", "/me", nil)
	rec := httptest.NewRecorder()
	handler.ServeProfile(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}
