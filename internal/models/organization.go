package models

import (
	"time"
)

// Organization represents a registered tenant. Each organization owns a
// dynamically named collection in the document store, derived from its name
// at creation or rename time.
type Organization struct {
	OrgID        string // UUIDv7
	Name         string // human name, unique across all organizations
	CollectionID string // derived storage collection identifier
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// OrganizationWithAdmin is an Organization joined with its admin account's
// id and email. The join is computed on read and never persisted.
type OrganizationWithAdmin struct {
	Organization

	AdminID    string
	AdminEmail string
}
