package directory

import (
	"errors"
)

// Sentinel errors for expected lifecycle conditions. Unexpected collaborator
// failures are wrapped with ErrStorage instead.
var (
	ErrDuplicateOrganization = errors.New("organization with this name already exists")
	ErrDuplicateEmail        = errors.New("email already in use by another admin")
	ErrOrganizationNotFound  = errors.New("organization not found")
	ErrNotAuthorized         = errors.New("not authorized to manage this organization")
	ErrProvisioningFailed    = errors.New("failed to provision organization")
	ErrUpdateFailed          = errors.New("failed to update organization")
	ErrStorage               = errors.New("storage failure")
)
