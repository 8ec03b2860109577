// internal/app/store/enrollment/membership.go
package enrollment

import (
	"context"
	"time"

	"github.com/cyscom-vit/clubportal/internal/app/system/limits"
	"github.com/cyscom-vit/clubportal/internal/app/system/txn"
	"github.com/cyscom-vit/clubportal/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// JoinProject adds a user to a project's members array and sets the
// user's project_id, atomically. Members never call this directly; it
// runs on the admin-approval path.
func (e *Engine) JoinProject(ctx context.Context, userID, projectID primitive.ObjectID) error {
	err := txn.Run(ctx, e.db, e.log, func(ctx context.Context) error {
		return e.JoinProjectTx(ctx, userID, projectID)
	})
	return e.wrap(err)
}

// JoinProjectTx is the transaction body of JoinProject, exposed so the
// join-request approval can compose it with the request status flip in
// one transaction. ctx must be a session context; reads precede writes.
func (e *Engine) JoinProjectTx(ctx context.Context, userID, projectID primitive.ObjectID) error {
	var project models.Project
	if err := e.db.Collection("projects").FindOne(ctx, bson.M{"_id": projectID}).Decode(&project); err != nil {
		return err
	}
	var user models.User
	if err := e.db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		return err
	}

	// Live re-checks: capacity may have changed since the caller's
	// optimistic look. Last committer wins; the loser aborts here.
	if project.HasMember(userID) {
		return ErrAlreadyMember
	}
	if len(project.Members) >= limits.ProjectMemberLimit {
		return ErrProjectFull
	}
	if user.ProjectID != nil && *user.ProjectID != projectID {
		return ErrAlreadyInProject
	}

	now := time.Now().UTC()
	members := append(append([]primitive.ObjectID{}, project.Members...), userID)
	if _, err := e.db.Collection("projects").UpdateOne(ctx,
		bson.M{"_id": projectID},
		bson.M{"$set": bson.M{"members": members, "updated_at": now}}); err != nil {
		return err
	}
	_, err := e.db.Collection("users").UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"project_id": projectID, "updated_at": now}})
	return err
}

// LeaveProject removes a user from a project's members array and clears
// the user's project_id, atomically.
func (e *Engine) LeaveProject(ctx context.Context, userID, projectID primitive.ObjectID) error {
	err := txn.Run(ctx, e.db, e.log, func(ctx context.Context) error {
		var project models.Project
		if err := e.db.Collection("projects").FindOne(ctx, bson.M{"_id": projectID}).Decode(&project); err != nil {
			return err
		}

		if !project.HasMember(userID) {
			return ErrNotAMember
		}

		members := make([]primitive.ObjectID, 0, len(project.Members))
		for _, m := range project.Members {
			if m != userID {
				members = append(members, m)
			}
		}

		now := time.Now().UTC()
		if _, err := e.db.Collection("projects").UpdateOne(ctx,
			bson.M{"_id": projectID},
			bson.M{"$set": bson.M{"members": members, "updated_at": now}}); err != nil {
			return err
		}
		_, err := e.db.Collection("users").UpdateOne(ctx,
			bson.M{"_id": userID},
			bson.M{"$unset": bson.M{"project_id": ""}, "$set": bson.M{"updated_at": now}})
		return err
	})
	return e.wrap(err)
}
