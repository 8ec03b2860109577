// internal/app/store/enrollment/errors.go
package enrollment

import "errors"

// Expected conflict outcomes. Handlers surface these as corrective
// messages; none of them leaves partial state behind because every
// mutation is all-or-nothing.
var (
	// ErrSelectionLocked: an ordinary member with a completed
	// department selection tried to change it. Only admins may.
	ErrSelectionLocked = errors.New("department selection is locked")

	// ErrSelectionSize: the target selection has the wrong number of
	// departments for the caller's role.
	ErrSelectionSize = errors.New("invalid department selection size")

	// ErrDepartmentNotFound: the target selection names an unknown
	// department. A logic error, not retried.
	ErrDepartmentNotFound = errors.New("department not found")

	// ErrProjectFull: the project has no open seat.
	ErrProjectFull = errors.New("project is full")

	// ErrAlreadyMember: the user is already on this project.
	ErrAlreadyMember = errors.New("user is already a member of this project")

	// ErrAlreadyInProject: the user is on a different project; a user
	// holds at most one project membership at a time.
	ErrAlreadyInProject = errors.New("user is already in another project")

	// ErrNotAMember: leave was called for a project the user is not on.
	ErrNotAMember = errors.New("user is not a member of this project")

	// ErrTransactionAborted: the store's conflict-retry budget was
	// exhausted. Transient; the caller may retry the whole operation.
	ErrTransactionAborted = errors.New("transaction aborted, please retry")
)
