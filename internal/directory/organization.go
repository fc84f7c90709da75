package directory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/wolfeidau/tenantd/internal/docstore"
	"github.com/wolfeidau/tenantd/internal/models"
	"github.com/wolfeidau/tenantd/internal/naming"
)

const dropRetries = 3

// OrganizationDirectory coordinates the organization lifecycle: the
// organization record, its admin account, and its dynamically named tenant
// collection. The three resources are kept consistent with compensating
// actions, not transactions; a crash mid-sequence can leave an orphan that
// needs external reconciliation.
type OrganizationDirectory struct {
	store  docstore.DocumentStore
	admins *AdminDirectory
}

// NewOrganizationDirectory creates the lifecycle directory on the given
// store and admin directory.
func NewOrganizationDirectory(store docstore.DocumentStore, admins *AdminDirectory) *OrganizationDirectory {
	return &OrganizationDirectory{store: store, admins: admins}
}

// Init creates the master collection and its name unique index.
func (d *OrganizationDirectory) Init(ctx context.Context) error {
	if err := d.store.CreateCollection(ctx, collectionOrganizations); err != nil {
		return fmt.Errorf("failed to create organization collection: %w", err)
	}
	if err := d.store.EnsureUniqueIndex(ctx, collectionOrganizations, "name"); err != nil {
		return fmt.Errorf("failed to index organization names: %w", err)
	}
	return nil
}

// Create provisions a new organization: the organization record first, then
// its tenant collection, then its admin account. If either of the later
// steps fails the record is deleted and the collection dropped best-effort,
// and the cause is surfaced wrapped in ErrProvisioningFailed.
func (d *OrganizationDirectory) Create(ctx context.Context, name, adminEmail, adminPassword string) (*models.OrganizationWithAdmin, error) {
	existing, err := d.findByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateOrganization
	}

	now := time.Now()
	org := &models.Organization{
		OrgID:        uuid.Must(uuid.NewV7()).String(),
		Name:         name,
		CollectionID: naming.CollectionID(name),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The record goes in first; its id is the source of truth for the
	// remaining steps.
	if err := d.store.InsertOne(ctx, collectionOrganizations, orgToDoc(org)); err != nil {
		if errors.Is(err, docstore.ErrDuplicateKey) {
			return nil, ErrDuplicateOrganization
		}
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	admin, err := d.provision(ctx, org, adminEmail, adminPassword)
	if err != nil {
		d.rollbackCreate(ctx, org)
		return nil, fmt.Errorf("%w: %w", ErrProvisioningFailed, err)
	}

	log.Info().
		Str("org_id", org.OrgID).
		Str("name", org.Name).
		Str("collection_id", org.CollectionID).
		Msg("Provisioned organization")

	return &models.OrganizationWithAdmin{
		Organization: *org,
		AdminID:      admin.AdminID,
		AdminEmail:   admin.Email,
	}, nil
}

func (d *OrganizationDirectory) provision(ctx context.Context, org *models.Organization, adminEmail, adminPassword string) (*models.AdminAccount, error) {
	if err := d.store.CreateCollection(ctx, org.CollectionID); err != nil {
		return nil, fmt.Errorf("failed to create tenant collection: %w", err)
	}
	return d.admins.CreateAccount(ctx, adminEmail, adminPassword, org.OrgID)
}

// rollbackCreate undoes a partially provisioned organization. The record
// delete is escalated through logging only; the collection drop is
// best-effort. A crash between the failed step and this compensation can
// still leave an orphaned record or collection.
func (d *OrganizationDirectory) rollbackCreate(ctx context.Context, org *models.Organization) {
	if _, err := d.store.DeleteOne(ctx, collectionOrganizations,
		docstore.Document{"org_id": org.OrgID}); err != nil {
		log.Warn().Err(err).
			Str("org_id", org.OrgID).
			Msg("Rollback failed to delete organization record, manual cleanup needed")
	}
	d.bestEffortDrop(ctx, org.CollectionID)
}

// Get returns the organization with the given name, joined with its admin's
// id and email when one exists.
func (d *OrganizationDirectory) Get(ctx context.Context, name string) (*models.OrganizationWithAdmin, error) {
	org, err := d.findByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, ErrOrganizationNotFound
	}

	view := &models.OrganizationWithAdmin{Organization: *org}
	admin, err := d.admins.FindByOrganization(ctx, org.OrgID)
	if err != nil {
		return nil, err
	}
	if admin != nil {
		view.AdminID = admin.AdminID
		view.AdminEmail = admin.Email
	}
	return view, nil
}

// GetByID returns the bare organization record with the given id.
func (d *OrganizationDirectory) GetByID(ctx context.Context, orgID string) (*models.Organization, error) {
	doc, err := d.store.FindOne(ctx, collectionOrganizations, docstore.Document{"org_id": orgID})
	if err != nil {
		if errors.Is(err, docstore.ErrNoDocuments) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return orgFromDoc(doc), nil
}

// ListAll returns an unordered snapshot of every organization record.
func (d *OrganizationDirectory) ListAll(ctx context.Context) ([]*models.Organization, error) {
	docs, err := d.store.Find(ctx, collectionOrganizations, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	orgs := make([]*models.Organization, 0, len(docs))
	for _, doc := range docs {
		orgs = append(orgs, orgFromDoc(doc))
	}
	return orgs, nil
}

// Rename moves an organization to a new name and migrates its tenant
// collection: create the new collection, bulk-copy every document, persist
// the record, then drop the old collection best-effort. New admin
// credentials are applied last when supplied. A failure before the record
// is persisted drops the new collection and surfaces ErrUpdateFailed; the
// record is untouched in that path.
func (d *OrganizationDirectory) Rename(ctx context.Context, oldName, newName string, newEmail, newPassword *string) (*models.OrganizationWithAdmin, error) {
	org, err := d.findByName(ctx, oldName)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, ErrOrganizationNotFound
	}

	if newName != oldName {
		existing, err := d.findByName(ctx, newName)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, ErrDuplicateOrganization
		}
	}

	oldCollection := org.CollectionID
	newCollection := naming.CollectionID(newName)

	// Distinct names can sanitize to the same collection id. Migrating a
	// collection onto itself would duplicate then destroy the data, so the
	// collection steps are skipped and only the record changes.
	if newCollection != oldCollection {
		if err := d.migrateCollection(ctx, oldCollection, newCollection); err != nil {
			d.bestEffortDrop(ctx, newCollection)
			return nil, fmt.Errorf("%w: %w", ErrUpdateFailed, err)
		}
	}

	set := docstore.Document{
		"name":          newName,
		"collection_id": newCollection,
		"updated_at":    encodeTime(time.Now()),
	}
	if _, err := d.store.UpdateOne(ctx, collectionOrganizations,
		docstore.Document{"org_id": org.OrgID}, set); err != nil {
		if newCollection != oldCollection {
			d.bestEffortDrop(ctx, newCollection)
		}
		if errors.Is(err, docstore.ErrDuplicateKey) {
			return nil, ErrDuplicateOrganization
		}
		return nil, fmt.Errorf("%w: %w", ErrUpdateFailed, err)
	}

	// The record now points at the new collection, so a failed drop leaves
	// at most a harmless leak needing external cleanup.
	if newCollection != oldCollection {
		d.bestEffortDrop(ctx, oldCollection)
	}

	if newEmail != nil || newPassword != nil {
		admin, err := d.admins.FindByOrganization(ctx, org.OrgID)
		if err != nil {
			return nil, err
		}
		if admin != nil {
			if _, err := d.admins.UpdateCredentials(ctx, admin.AdminID, newEmail, newPassword); err != nil {
				// The rename itself is already persisted.
				return nil, err
			}
		}
	}

	log.Info().
		Str("org_id", org.OrgID).
		Str("old_name", oldName).
		Str("new_name", newName).
		Msg("Renamed organization")

	return d.Get(ctx, newName)
}

func (d *OrganizationDirectory) migrateCollection(ctx context.Context, oldCollection, newCollection string) error {
	if err := d.store.CreateCollection(ctx, newCollection); err != nil {
		return fmt.Errorf("failed to create tenant collection: %w", err)
	}

	exists, err := d.store.CollectionExists(ctx, oldCollection)
	if err != nil {
		return fmt.Errorf("failed to check tenant collection: %w", err)
	}
	if !exists {
		return nil
	}

	// Read-all-then-insert-all, no paging. Tenant collections are assumed
	// modest in size; this is a known scalability boundary.
	docs, err := d.store.Find(ctx, oldCollection, nil)
	if err != nil {
		return fmt.Errorf("failed to read tenant collection: %w", err)
	}
	if len(docs) == 0 {
		return nil
	}
	if err := d.store.InsertMany(ctx, newCollection, docs); err != nil {
		return fmt.Errorf("failed to copy tenant collection: %w", err)
	}
	return nil
}

// Delete removes an organization, its admin accounts, and its tenant
// collection. Only the organization's own admin may delete it. Data and
// credentials go before the record so a crash mid-sequence leaves at worst
// a dangling record pointing at already-gone resources, which is safely
// re-deletable.
func (d *OrganizationDirectory) Delete(ctx context.Context, name, requestingAdminID string) (bool, error) {
	org, err := d.findByName(ctx, name)
	if err != nil {
		return false, err
	}
	if org == nil {
		return false, ErrOrganizationNotFound
	}

	admin, err := d.admins.FindByID(ctx, requestingAdminID)
	if err != nil {
		return false, err
	}
	if admin == nil || admin.OrgID != org.OrgID {
		return false, ErrNotAuthorized
	}

	d.bestEffortDrop(ctx, org.CollectionID)

	if _, err := d.admins.DeleteAllForOrganization(ctx, org.OrgID); err != nil {
		return false, err
	}

	removed, err := d.store.DeleteOne(ctx, collectionOrganizations,
		docstore.Document{"org_id": org.OrgID})
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	log.Info().
		Str("org_id", org.OrgID).
		Str("name", name).
		Msg("Deleted organization")

	return removed, nil
}

func (d *OrganizationDirectory) findByName(ctx context.Context, name string) (*models.Organization, error) {
	doc, err := d.store.FindOne(ctx, collectionOrganizations, docstore.Document{"name": name})
	if err != nil {
		if errors.Is(err, docstore.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return orgFromDoc(doc), nil
}

// bestEffortDrop drops a tenant collection with a bounded retry. Failures
// are logged and swallowed; the organization record is the source of truth
// and a leaked collection is recoverable by external cleanup.
func (d *OrganizationDirectory) bestEffortDrop(ctx context.Context, collection string) {
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, d.store.DropCollection(ctx, collection)
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxTries(dropRetries))
	if err != nil {
		log.Warn().Err(err).
			Str("collection", collection).
			Msg("Failed to drop tenant collection, manual cleanup needed")
	}
}
