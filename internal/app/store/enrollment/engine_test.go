package enrollment_test

import (
	"errors"
	"testing"

	departmentstore "github.com/cyscom-vit/clubportal/internal/app/store/departments"
	"github.com/cyscom-vit/clubportal/internal/app/store/enrollment"
	"github.com/cyscom-vit/clubportal/internal/domain/models"
	"github.com/cyscom-vit/clubportal/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newTestEngine(t *testing.T) (*enrollment.Engine, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	engine := enrollment.NewEngine(db, zap.NewNop())
	fixtures := testutil.NewFixtures(t, db)
	return engine, fixtures
}

func memberActor(id primitive.ObjectID) enrollment.Actor {
	return enrollment.Actor{UserID: id, Role: "member"}
}

func adminActor() enrollment.Actor {
	return enrollment.Actor{UserID: primitive.NewObjectID(), Role: "admin"}
}

func loadUser(t *testing.T, f *testutil.Fixtures, id primitive.ObjectID) models.User {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	var user models.User
	if err := f.DB().Collection("users").FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		t.Fatalf("load user: %v", err)
	}
	return user
}

func loadDept(t *testing.T, f *testutil.Fixtures, id string) models.Department {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	var dept models.Department
	if err := f.DB().Collection("departments").FindOne(ctx, bson.M{"_id": id}).Decode(&dept); err != nil {
		t.Fatalf("load department %s: %v", id, err)
	}
	return dept
}

func TestSelectDepartments_FreshSelection(t *testing.T) {
	engine, fixtures := newTestEngine(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateMember(ctx, "Asha Rao", "asha@example.com")
	fixtures.CreateDepartment(ctx, "web-dev", "Web Development", 10)
	fixtures.CreateDepartment(ctx, "design", "Design", 10)

	err := engine.SelectDepartments(ctx, user.ID, []string{"web-dev", "design"}, memberActor(user.ID))
	if err != nil {
		t.Fatalf("SelectDepartments: %v", err)
	}

	got := loadUser(t, fixtures, user.ID)
	if len(got.Departments) != 2 || got.Departments[0] != "web-dev" || got.Departments[1] != "design" {
		t.Errorf("departments = %v, want [web-dev design]", got.Departments)
	}
	if d := loadDept(t, fixtures, "web-dev"); d.FilledCount != 1 {
		t.Errorf("web-dev filled_count = %d, want 1", d.FilledCount)
	}
	if d := loadDept(t, fixtures, "design"); d.FilledCount != 1 {
		t.Errorf("design filled_count = %d, want 1", d.FilledCount)
	}
}

func TestSelectDepartments_WrongSize(t *testing.T) {
	engine, fixtures := newTestEngine(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateMember(ctx, "Asha Rao", "asha@example.com")
	fixtures.CreateDepartment(ctx, "web-dev", "Web Development", 10)

	err := engine.SelectDepartments(ctx, user.ID, []string{"web-dev"}, memberActor(user.ID))
	if !errors.Is(err, enrollment.ErrSelectionSize) {
		t.Errorf("err = %v, want ErrSelectionSize", err)
	}
}

func TestSelectDepartments_CapacityAbortsAtomically(t *testing.T) {
	engine, fixtures := newTestEngine(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateMember(ctx, "Asha Rao", "asha@example.com")
	fixtures.CreateDepartment(ctx, "web-dev", "Web Development", 10)
	fixtures.CreateDepartmentFilled(ctx, "design", "Design", 1, 1)

	err := engine.SelectDepartments(ctx, user.ID, []string{"web-dev", "design"}, memberActor(user.ID))
	if !errors.Is(err, departmentstore.ErrCapacityExceeded) {
		t.Fatalf("err = %v, want ErrCapacityExceeded", err)
	}

	// Nothing may change: the web-dev reservation made inside the
	// aborted transaction must roll back with it.
	got := loadUser(t, fixtures, user.ID)
	if len(got.Departments) != 0 {
		t.Errorf("departments = %v, want empty", got.Departments)
	}
	if d := loadDept(t, fixtures, "web-dev"); d.FilledCount != 0 {
		t.Errorf("web-dev filled_count = %d, want 0", d.FilledCount)
	}
	if d := loadDept(t, fixtures, "design"); d.FilledCount != 1 {
		t.Errorf("design filled_count = %d, want 1", d.FilledCount)
	}
}

func TestSelectDepartments_LockedForMembers(t *testing.T) {
	engine, fixtures := newTestEngine(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateUserWithDepartments(ctx, "Asha Rao", "asha@example.com", []string{"web-dev", "design"})
	fixtures.CreateDepartmentFilled(ctx, "web-dev", "Web Development", 10, 1)
	fixtures.CreateDepartmentFilled(ctx, "design", "Design", 10, 1)
	fixtures.CreateDepartment(ctx, "open-source", "Open Source", 10)

	err := engine.SelectDepartments(ctx, user.ID, []string{"web-dev", "open-source"}, memberActor(user.ID))
	if !errors.Is(err, enrollment.ErrSelectionLocked) {
		t.Errorf("err = %v, want ErrSelectionLocked", err)
	}
}

func TestSelectDepartments_AdminSwapReleasesOldSeat(t *testing.T) {
	engine, fixtures := newTestEngine(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateUserWithDepartments(ctx, "Asha Rao", "asha@example.com", []string{"web-dev", "design"})
	fixtures.CreateDepartmentFilled(ctx, "web-dev", "Web Development", 10, 1)
	fixtures.CreateDepartmentFilled(ctx, "design", "Design", 10, 1)
	fixtures.CreateDepartment(ctx, "open-source", "Open Source", 10)

	err := engine.SelectDepartments(ctx, user.ID, []string{"web-dev", "open-source"}, adminActor())
	if err != nil {
		t.Fatalf("SelectDepartments: %v", err)
	}

	got := loadUser(t, fixtures, user.ID)
	if len(got.Departments) != 2 || got.Departments[0] != "web-dev" || got.Departments[1] != "open-source" {
		t.Errorf("departments = %v, want [web-dev open-source]", got.Departments)
	}
	if d := loadDept(t, fixtures, "design"); d.FilledCount != 0 {
		t.Errorf("design filled_count = %d, want 0", d.FilledCount)
	}
	if d := loadDept(t, fixtures, "open-source"); d.FilledCount != 1 {
		t.Errorf("open-source filled_count = %d, want 1", d.FilledCount)
	}
	// Unchanged department keeps its seat.
	if d := loadDept(t, fixtures, "web-dev"); d.FilledCount != 1 {
		t.Errorf("web-dev filled_count = %d, want 1", d.FilledCount)
	}
}

func TestSelectDepartments_UnknownDepartment(t *testing.T) {
	engine, fixtures := newTestEngine(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateMember(ctx, "Asha Rao", "asha@example.com")
	fixtures.CreateDepartment(ctx, "web-dev", "Web Development", 10)

	err := engine.SelectDepartments(ctx, user.ID, []string{"web-dev", "no-such"}, memberActor(user.ID))
	if !errors.Is(err, enrollment.ErrDepartmentNotFound) {
		t.Fatalf("err = %v, want ErrDepartmentNotFound", err)
	}
	if d := loadDept(t, fixtures, "web-dev"); d.FilledCount != 0 {
		t.Errorf("web-dev filled_count = %d, want 0", d.FilledCount)
	}
}

func TestSelectDepartments_NoOpKeepsCounts(t *testing.T) {
	engine, fixtures := newTestEngine(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateUserWithDepartments(ctx, "Asha Rao", "asha@example.com", []string{"web-dev", "design"})
	fixtures.CreateDepartmentFilled(ctx, "web-dev", "Web Development", 10, 1)
	fixtures.CreateDepartmentFilled(ctx, "design", "Design", 10, 1)

	err := engine.SelectDepartments(ctx, user.ID, []string{"design", "web-dev"}, adminActor())
	if err != nil {
		t.Fatalf("SelectDepartments: %v", err)
	}
	if d := loadDept(t, fixtures, "web-dev"); d.FilledCount != 1 {
		t.Errorf("web-dev filled_count = %d, want 1", d.FilledCount)
	}
}

func TestResetDepartments(t *testing.T) {
	engine, fixtures := newTestEngine(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateUserWithDepartments(ctx, "Asha Rao", "asha@example.com", []string{"web-dev", "design"})
	fixtures.CreateDepartmentFilled(ctx, "web-dev", "Web Development", 10, 3)
	fixtures.CreateDepartmentFilled(ctx, "design", "Design", 10, 1)

	if err := engine.ResetDepartments(ctx, user.ID, memberActor(user.ID)); !errors.Is(err, enrollment.ErrSelectionLocked) {
		t.Fatalf("member reset err = %v, want ErrSelectionLocked", err)
	}

	if err := engine.ResetDepartments(ctx, user.ID, adminActor()); err != nil {
		t.Fatalf("ResetDepartments: %v", err)
	}

	got := loadUser(t, fixtures, user.ID)
	if len(got.Departments) != 0 {
		t.Errorf("departments = %v, want empty", got.Departments)
	}
	if d := loadDept(t, fixtures, "web-dev"); d.FilledCount != 2 {
		t.Errorf("web-dev filled_count = %d, want 2", d.FilledCount)
	}
	if d := loadDept(t, fixtures, "design"); d.FilledCount != 0 {
		t.Errorf("design filled_count = %d, want 0", d.FilledCount)
	}
}

func TestJoinProject(t *testing.T) {
	engine, fixtures := newTestEngine(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateMember(ctx, "Asha Rao", "asha@example.com")
	project := fixtures.CreateProject(ctx, "Portal Revamp", "web-dev")

	if err := engine.JoinProject(ctx, user.ID, project.ID); err != nil {
		t.Fatalf("JoinProject: %v", err)
	}

	got := loadUser(t, fixtures, user.ID)
	if got.ProjectID == nil || *got.ProjectID != project.ID {
		t.Errorf("project_id = %v, want %v", got.ProjectID, project.ID)
	}

	var p models.Project
	if err := fixtures.DB().Collection("projects").FindOne(ctx, bson.M{"_id": project.ID}).Decode(&p); err != nil {
		t.Fatalf("load project: %v", err)
	}
	if !p.HasMember(user.ID) {
		t.Errorf("members = %v, missing user", p.Members)
	}

	if err := engine.JoinProject(ctx, user.ID, project.ID); !errors.Is(err, enrollment.ErrAlreadyMember) {
		t.Errorf("second join err = %v, want ErrAlreadyMember", err)
	}
}

func TestJoinProject_Full(t *testing.T) {
	engine, fixtures := newTestEngine(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateMember(ctx, "Asha Rao", "asha@example.com")
	full := []primitive.ObjectID{
		primitive.NewObjectID(), primitive.NewObjectID(),
		primitive.NewObjectID(), primitive.NewObjectID(),
	}
	project := fixtures.CreateProject(ctx, "Portal Revamp", "web-dev", full...)

	if err := engine.JoinProject(ctx, user.ID, project.ID); !errors.Is(err, enrollment.ErrProjectFull) {
		t.Errorf("err = %v, want ErrProjectFull", err)
	}
}

func TestJoinProject_AlreadyInAnother(t *testing.T) {
	engine, fixtures := newTestEngine(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateMember(ctx, "Asha Rao", "asha@example.com")
	first := fixtures.CreateProject(ctx, "Portal Revamp", "web-dev")
	second := fixtures.CreateProject(ctx, "CTF Platform", "cybersec")

	if err := engine.JoinProject(ctx, user.ID, first.ID); err != nil {
		t.Fatalf("JoinProject: %v", err)
	}
	if err := engine.JoinProject(ctx, user.ID, second.ID); !errors.Is(err, enrollment.ErrAlreadyInProject) {
		t.Errorf("err = %v, want ErrAlreadyInProject", err)
	}
}

func TestLeaveProject(t *testing.T) {
	engine, fixtures := newTestEngine(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateMember(ctx, "Asha Rao", "asha@example.com")
	project := fixtures.CreateProject(ctx, "Portal Revamp", "web-dev")

	if err := engine.LeaveProject(ctx, user.ID, project.ID); !errors.Is(err, enrollment.ErrNotAMember) {
		t.Fatalf("leaving unjoined project err = %v, want ErrNotAMember", err)
	}

	if err := engine.JoinProject(ctx, user.ID, project.ID); err != nil {
		t.Fatalf("JoinProject: %v", err)
	}
	if err := engine.LeaveProject(ctx, user.ID, project.ID); err != nil {
		t.Fatalf("LeaveProject: %v", err)
	}

	got := loadUser(t, fixtures, user.ID)
	if got.ProjectID != nil {
		t.Errorf("project_id = %v, want nil", got.ProjectID)
	}

	var p models.Project
	if err := fixtures.DB().Collection("projects").FindOne(ctx, bson.M{"_id": project.ID}).Decode(&p); err != nil {
		t.Fatalf("load project: %v", err)
	}
	if p.HasMember(user.ID) {
		t.Errorf("members = %v, user still present", p.Members)
	}
}
