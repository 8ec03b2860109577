// internal/domain/models/contribution.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Contribution status values. Verification is irreversible and awards
// points to the owning user in the same transaction.
const (
	ContributionPending  = "pending"
	ContributionVerified = "verified"
	ContributionRejected = "rejected"
)

// Contribution is a unit of submitted work awaiting admin review.
type Contribution struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID  `bson:"user_id" json:"user_id"`
	ProjectID *primitive.ObjectID `bson:"project_id,omitempty" json:"project_id,omitempty"`
	Text      string              `bson:"text" json:"text"`

	// AttachmentPath points at an uploaded file on local storage.
	// It is metadata only here; rejection removes the file best-effort.
	AttachmentPath string `bson:"attachment_path,omitempty" json:"attachment_path,omitempty"`

	Status        string              `bson:"status" json:"status"`
	PointsAwarded int                 `bson:"points_awarded" json:"points_awarded"` // 0 until verified
	VerifiedBy    *primitive.ObjectID `bson:"verified_by,omitempty" json:"verified_by,omitempty"`
	VerifiedAt    *time.Time          `bson:"verified_at,omitempty" json:"verified_at,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
