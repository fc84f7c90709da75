package directory

import (
	"time"

	"github.com/wolfeidau/tenantd/internal/docstore"
	"github.com/wolfeidau/tenantd/internal/models"
)

// Master collections. Tenant collections are named by the naming codec and
// can never collide with these because of its prefix.
const (
	collectionOrganizations = "organizations"
	collectionAdmins        = "admin_users"
)

// Timestamps are stored as RFC 3339 strings so documents round-trip
// identically through the in-memory and jsonb backends.

func encodeTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func decodeTime(v any) time.Time {
	s, ok := v.(string)
	if !ok {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func docString(doc docstore.Document, key string) string {
	s, _ := doc[key].(string)
	return s
}

func orgToDoc(org *models.Organization) docstore.Document {
	return docstore.Document{
		"org_id":        org.OrgID,
		"name":          org.Name,
		"collection_id": org.CollectionID,
		"created_at":    encodeTime(org.CreatedAt),
		"updated_at":    encodeTime(org.UpdatedAt),
	}
}

func orgFromDoc(doc docstore.Document) *models.Organization {
	return &models.Organization{
		OrgID:        docString(doc, "org_id"),
		Name:         docString(doc, "name"),
		CollectionID: docString(doc, "collection_id"),
		CreatedAt:    decodeTime(doc["created_at"]),
		UpdatedAt:    decodeTime(doc["updated_at"]),
	}
}

func adminToDoc(admin *models.AdminAccount) docstore.Document {
	return docstore.Document{
		"admin_id":      admin.AdminID,
		"email":         admin.Email,
		"password_hash": admin.PasswordHash,
		"org_id":        admin.OrgID,
		"created_at":    encodeTime(admin.CreatedAt),
		"updated_at":    encodeTime(admin.UpdatedAt),
	}
}

func adminFromDoc(doc docstore.Document) *models.AdminAccount {
	return &models.AdminAccount{
		AdminID:      docString(doc, "admin_id"),
		Email:        docString(doc, "email"),
		PasswordHash: docString(doc, "password_hash"),
		OrgID:        docString(doc, "org_id"),
		CreatedAt:    decodeTime(doc["created_at"]),
		UpdatedAt:    decodeTime(doc["updated_at"]),
	}
}
