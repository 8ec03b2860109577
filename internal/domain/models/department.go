// internal/domain/models/department.go
package models

import "time"

// Department is a club department with a bounded number of seats.
//
// FilledCount is a materialized counter: it must always equal the number
// of users whose departments array contains this department's ID. It is
// maintained incrementally by the enrollment engine, never recomputed,
// and only written inside a transaction that also writes the referencing
// user document. Invariant: 0 <= FilledCount <= Capacity when Capacity > 0.
type Department struct {
	ID          string `bson:"_id" json:"dept_id"` // slug, e.g. "technical"
	Name        string `bson:"name" json:"name"`
	Capacity    int    `bson:"capacity" json:"capacity"` // 0 = unlimited
	FilledCount int    `bson:"filled_count" json:"filled_count"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsFull reports whether the department has no open seats.
func (d *Department) IsFull() bool {
	return d.Capacity > 0 && d.FilledCount >= d.Capacity
}
