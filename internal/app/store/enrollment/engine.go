// internal/app/store/enrollment/engine.go
package enrollment

// The enrollment engine binds user department/project selections to
// department capacity and project membership limits. Every mutation is
// a single multi-document transaction: all reads batched first, then
// the capacity-ledger writes and the user write, so a conflict retry
// re-runs a pure snapshot function and a failed reservation leaves
// nothing behind.

import (
	"context"
	"errors"
	"fmt"
	"time"

	departmentstore "github.com/cyscom-vit/clubportal/internal/app/store/departments"
	"github.com/cyscom-vit/clubportal/internal/app/system/limits"
	"github.com/cyscom-vit/clubportal/internal/app/system/txn"
	"github.com/cyscom-vit/clubportal/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Engine struct {
	db    *mongo.Database
	log   *zap.Logger
	depts *departmentstore.Store
}

func NewEngine(db *mongo.Database, log *zap.Logger) *Engine {
	return &Engine{
		db:    db,
		log:   log,
		depts: departmentstore.New(db),
	}
}

// Actor identifies who is invoking an engine operation. The engine
// enforces the selection lock itself rather than trusting UI state.
type Actor struct {
	UserID primitive.ObjectID
	Role   string // member | admin | superadmin
}

// IsPrivileged reports whether the actor may bypass member-only limits.
func (a Actor) IsPrivileged() bool {
	return a.Role == "admin" || a.Role == "superadmin"
}

// SelectDepartments applies a user's department-selection delta as one
// all-or-nothing transaction: reserve every added department, release
// every removed one, and write the user's selection. If any reservation
// would exceed capacity the whole transaction aborts with
// ErrCapacityExceeded (from the departments store) and nothing changes.
//
// Ordinary members must select exactly limits.RequiredDepartments and
// may not change a completed selection (ErrSelectionLocked). Privileged
// actors may set 0..limits.MaxDepartmentsPerUser on any user's behalf.
func (e *Engine) SelectDepartments(ctx context.Context, userID primitive.ObjectID, target []string, actor Actor) error {
	target = NormalizeSelection(target)

	if actor.IsPrivileged() {
		if len(target) > limits.MaxDepartmentsPerUser {
			return ErrSelectionSize
		}
	} else {
		if len(target) != limits.RequiredDepartments {
			return ErrSelectionSize
		}
	}

	err := txn.Run(ctx, e.db, e.log, func(ctx context.Context) error {
		// Reads first: user, then every touched department in one batch.
		var user models.User
		if err := e.db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			return err
		}

		if !actor.IsPrivileged() && len(user.Departments) >= limits.RequiredDepartments {
			return ErrSelectionLocked
		}

		added, removed := SelectionDiff(user.Departments, target)
		if len(added) == 0 && len(removed) == 0 {
			return nil
		}

		touched := append(append([]string{}, added...), removed...)
		deptDocs, err := e.depts.GetAllByID(ctx, touched)
		if err != nil {
			return err
		}

		// Writes: reserve additions, release removals, then the user.
		for _, id := range added {
			dept, ok := deptDocs[id]
			if !ok {
				return fmt.Errorf("%w: %s", ErrDepartmentNotFound, id)
			}
			if err := e.depts.ReserveSeat(ctx, dept); err != nil {
				return err
			}
		}
		for _, id := range removed {
			dept, ok := deptDocs[id]
			if !ok {
				// Department deleted since the user picked it; the
				// seat no longer exists to release.
				e.log.Warn("releasing seat in missing department",
					zap.String("dept_id", id),
					zap.String("user_id", userID.Hex()))
				continue
			}
			if err := e.depts.ReleaseSeat(ctx, dept); err != nil {
				return err
			}
		}

		_, err = e.db.Collection("users").UpdateOne(ctx,
			bson.M{"_id": userID},
			bson.M{"$set": bson.M{"departments": target, "updated_at": time.Now().UTC()}})
		return err
	})
	return e.wrap(err)
}

// ResetDepartments clears a user's selection, releasing every seat.
// Admin-only by construction: the caller passes a privileged actor.
func (e *Engine) ResetDepartments(ctx context.Context, userID primitive.ObjectID, actor Actor) error {
	if !actor.IsPrivileged() {
		return ErrSelectionLocked
	}
	return e.SelectDepartments(ctx, userID, nil, actor)
}

// wrap maps exhausted-retry transaction failures to the retryable
// sentinel and passes expected outcomes through untouched.
func (e *Engine) wrap(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrSelectionLocked) ||
		errors.Is(err, ErrDepartmentNotFound) ||
		errors.Is(err, ErrProjectFull) ||
		errors.Is(err, ErrAlreadyMember) ||
		errors.Is(err, ErrAlreadyInProject) ||
		errors.Is(err, ErrNotAMember) ||
		errors.Is(err, departmentstore.ErrCapacityExceeded) ||
		errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}
	if txn.IsTransient(err) {
		e.log.Warn("enrollment transaction exhausted retries", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrTransactionAborted, err)
	}
	return err
}
