package models

import (
	"time"
)

// AdminAccount represents the credential record for an organization's admin.
// Emails are unique across the whole directory, not per organization. In the
// steady state each organization has exactly one admin account; this is a
// directory-level convention rather than an enforced constraint.
type AdminAccount struct {
	AdminID      string // UUIDv7
	Email        string
	PasswordHash string // opaque, produced by a PasswordHasher
	OrgID        string // owning organization
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
