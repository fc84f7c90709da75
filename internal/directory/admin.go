// Package directory implements the organization lifecycle core: admin
// credential records and the organization create/rename/delete protocol,
// built on a collection-level document store.
package directory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/wolfeidau/tenantd/internal/docstore"
	"github.com/wolfeidau/tenantd/internal/models"
)

// PasswordHasher hashes and verifies admin passwords. The hash format is
// opaque to the directory.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

// AdminDirectory manages admin credential records. Emails are unique across
// the whole directory; uniqueness is checked here and backed by a store
// unique index against racing inserts.
type AdminDirectory struct {
	store  docstore.DocumentStore
	hasher PasswordHasher
}

// NewAdminDirectory creates an admin directory on the given store.
func NewAdminDirectory(store docstore.DocumentStore, hasher PasswordHasher) *AdminDirectory {
	return &AdminDirectory{store: store, hasher: hasher}
}

// Init creates the master collection and its email unique index.
func (d *AdminDirectory) Init(ctx context.Context) error {
	if err := d.store.CreateCollection(ctx, collectionAdmins); err != nil {
		return fmt.Errorf("failed to create admin collection: %w", err)
	}
	if err := d.store.EnsureUniqueIndex(ctx, collectionAdmins, "email"); err != nil {
		return fmt.Errorf("failed to index admin emails: %w", err)
	}
	return nil
}

// CreateAccount hashes the password and persists a new admin account for an
// organization. Fails with ErrDuplicateEmail if any account already holds
// the email.
func (d *AdminDirectory) CreateAccount(ctx context.Context, email, password, orgID string) (*models.AdminAccount, error) {
	existing, err := d.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateEmail
	}

	hash, err := d.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	admin := &models.AdminAccount{
		AdminID:      uuid.Must(uuid.NewV7()).String(),
		Email:        email,
		PasswordHash: hash,
		OrgID:        orgID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := d.store.InsertOne(ctx, collectionAdmins, adminToDoc(admin)); err != nil {
		if errors.Is(err, docstore.ErrDuplicateKey) {
			// A racing insert beat the check above; the store's unique
			// index is the real safety net.
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	log.Debug().
		Str("admin_id", admin.AdminID).
		Str("org_id", orgID).
		Msg("Created admin account")

	return admin, nil
}

// Authenticate looks up an account by email and verifies the password.
// Returns (nil, nil) when the email is unknown or the password does not
// match; the caller decides how to surface that. No lockout or rate
// limiting here.
func (d *AdminDirectory) Authenticate(ctx context.Context, email, password string) (*models.AdminAccount, error) {
	admin, err := d.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if admin == nil || !d.hasher.Verify(password, admin.PasswordHash) {
		return nil, nil
	}
	return admin, nil
}

// FindByID returns the account with the given id, or nil if absent.
func (d *AdminDirectory) FindByID(ctx context.Context, adminID string) (*models.AdminAccount, error) {
	return d.findOne(ctx, docstore.Document{"admin_id": adminID})
}

// FindByEmail returns the account holding the given email, or nil if absent.
func (d *AdminDirectory) FindByEmail(ctx context.Context, email string) (*models.AdminAccount, error) {
	return d.findOne(ctx, docstore.Document{"email": email})
}

// FindByOrganization returns the organization's admin account, or nil if
// absent. Organizations hold one admin account in the steady state, so the
// first match wins.
func (d *AdminDirectory) FindByOrganization(ctx context.Context, orgID string) (*models.AdminAccount, error) {
	return d.findOne(ctx, docstore.Document{"org_id": orgID})
}

func (d *AdminDirectory) findOne(ctx context.Context, filter docstore.Document) (*models.AdminAccount, error) {
	doc, err := d.store.FindOne(ctx, collectionAdmins, filter)
	if err != nil {
		if errors.Is(err, docstore.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return adminFromDoc(doc), nil
}

// UpdateCredentials applies a new email and/or password to an account.
// A call with neither field reports (false, nil): nothing changed. Fails
// with ErrDuplicateEmail if another account already holds the new email.
func (d *AdminDirectory) UpdateCredentials(ctx context.Context, adminID string, newEmail, newPassword *string) (bool, error) {
	if newEmail == nil && newPassword == nil {
		return false, nil
	}

	set := docstore.Document{"updated_at": encodeTime(time.Now())}

	if newEmail != nil {
		holder, err := d.FindByEmail(ctx, *newEmail)
		if err != nil {
			return false, err
		}
		if holder != nil && holder.AdminID != adminID {
			return false, ErrDuplicateEmail
		}
		set["email"] = *newEmail
	}

	if newPassword != nil {
		hash, err := d.hasher.Hash(*newPassword)
		if err != nil {
			return false, fmt.Errorf("failed to hash password: %w", err)
		}
		set["password_hash"] = hash
	}

	updated, err := d.store.UpdateOne(ctx, collectionAdmins,
		docstore.Document{"admin_id": adminID}, set)
	if err != nil {
		if errors.Is(err, docstore.ErrDuplicateKey) {
			return false, ErrDuplicateEmail
		}
		return false, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return updated, nil
}

// DeleteAccount removes an account. Reports whether a record was removed;
// zero matches is not an error.
func (d *AdminDirectory) DeleteAccount(ctx context.Context, adminID string) (bool, error) {
	removed, err := d.store.DeleteOne(ctx, collectionAdmins, docstore.Document{"admin_id": adminID})
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return removed, nil
}

// DeleteAllForOrganization removes every account owned by an organization
// and returns the count removed.
func (d *AdminDirectory) DeleteAllForOrganization(ctx context.Context, orgID string) (int64, error) {
	count, err := d.store.DeleteMany(ctx, collectionAdmins, docstore.Document{"org_id": orgID})
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return count, nil
}
