package service

import (
	"database/sql"
	"errors"

	"github.com/autocare/autocare-api/internal/models"
	appErrors "github.com/autocare/autocare-api/pkg/errors"
)

// authorize re-checks the capability table for the acting user.
func authorize(actor *models.User, c models.Capability) error {
	if actor == nil {
		return appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}
	if !actor.Role.Can(c) {
		return appErrors.Clone(appErrors.ErrForbidden, "action not allowed for role "+actor.Role.String())
	}
	return nil
}

// readsAll reports whether ownership filters are lifted for the actor.
func readsAll(actor *models.User) bool {
	return actor != nil && actor.Role.Can(models.CapReadAll)
}

// ownerScope returns the owner filter to apply to listings.
func ownerScope(actor *models.User) *int64 {
	if readsAll(actor) {
		return nil
	}
	id := actor.ID
	return &id
}

// lookupError maps a repository read failure to a response error.
func lookupError(err error, notFound string, failure string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	return appErrors.Internal(err, failure)
}
