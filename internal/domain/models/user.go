// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a club member or administrator.
//
// NOTE:
//   - Departments holds the user's department selection (slugs, at most
//     two). Department fill counters are derived from these arrays and
//     change only in the same transaction that changes them
//     (see store/enrollment).
//   - ProjectID mirrors membership in projects.members: a user appears
//     in at most one project's members array at a time.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName   string             `bson:"full_name" json:"full_name"`
	FullNameCI string             `bson:"full_name_ci" json:"full_name_ci"` // lowercase, diacritics-stripped
	Email      string             `bson:"email" json:"email"`
	GoogleID   *string            `bson:"google_id,omitempty" json:"google_id,omitempty"`
	Role       string             `bson:"role" json:"role"` // member | admin | superadmin
	Status     string             `bson:"status,omitempty" json:"status,omitempty"`

	// PasswordHash backs the local password fallback for accounts that
	// cannot use Google sign-in. Never serialized to JSON.
	PasswordHash *string `bson:"password_hash,omitempty" json:"-"`

	Departments []string            `bson:"departments" json:"departments"`
	TotalPoints int                 `bson:"total_points" json:"total_points"`
	ProjectID   *primitive.ObjectID `bson:"project_id,omitempty" json:"project_id,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasDepartment reports whether the user's selection contains the slug.
func (u *User) HasDepartment(deptID string) bool {
	for _, d := range u.Departments {
		if d == deptID {
			return true
		}
	}
	return false
}
