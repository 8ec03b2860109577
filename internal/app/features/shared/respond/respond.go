// internal/app/features/shared/respond/respond.go
package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cyscom-vit/clubportal/internal/app/store/contributions"
	departmentstore "github.com/cyscom-vit/clubportal/internal/app/store/departments"
	"github.com/cyscom-vit/clubportal/internal/app/store/enrollment"
	"github.com/cyscom-vit/clubportal/internal/app/store/joinrequests"
	projectstore "github.com/cyscom-vit/clubportal/internal/app/store/projects"
	userstore "github.com/cyscom-vit/clubportal/internal/app/store/users"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// JSON writes v as the JSON response body with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes a JSON error body with the given status.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// StoreError maps a store error to a response. Expected conflicts map
// to 4xx with the sentinel's message; exhausted transaction retries map
// to 503 so the client knows a retry may succeed; anything else is a
// 500 with the detail kept out of the body.
func StoreError(w http.ResponseWriter, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		Error(w, http.StatusNotFound, "not found")
	case errors.Is(err, enrollment.ErrSelectionLocked):
		Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, enrollment.ErrSelectionSize),
		errors.Is(err, contributions.ErrInvalidPoints),
		errors.Is(err, contributions.ErrEmptyText),
		errors.Is(err, contributions.ErrTextTooLong),
		errors.Is(err, userstore.ErrBadRole),
		errors.Is(err, userstore.ErrBadStatus):
		Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, enrollment.ErrDepartmentNotFound):
		Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, departmentstore.ErrCapacityExceeded),
		errors.Is(err, enrollment.ErrProjectFull),
		errors.Is(err, enrollment.ErrAlreadyMember),
		errors.Is(err, enrollment.ErrAlreadyInProject),
		errors.Is(err, enrollment.ErrNotAMember),
		errors.Is(err, joinrequests.ErrAlreadyPending),
		errors.Is(err, joinrequests.ErrAlreadyProcessed),
		errors.Is(err, joinrequests.ErrNothingToWithdraw),
		errors.Is(err, contributions.ErrAlreadyProcessed),
		errors.Is(err, departmentstore.ErrDuplicateDepartment),
		errors.Is(err, projectstore.ErrDuplicateName),
		errors.Is(err, userstore.ErrDuplicateEmail):
		Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, enrollment.ErrTransactionAborted):
		Error(w, http.StatusServiceUnavailable, "conflicting updates, please retry")
	default:
		log.Error("request failed", zap.Error(err))
		Error(w, http.StatusInternalServerError, "internal error")
	}
}
