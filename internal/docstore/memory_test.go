package docstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryStoreCollections(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	exists, err := store.CollectionExists(ctx, "org_testco")
	require.NoError(t, err)
	require.False(t, exists)

	require.NoError(t, store.CreateCollection(ctx, "org_testco"))

	// Idempotent create keeps existing documents.
	require.NoError(t, store.InsertOne(ctx, "org_testco", Document{"k": "v"}))
	require.NoError(t, store.CreateCollection(ctx, "org_testco"))

	docs, err := store.Find(ctx, "org_testco", nil)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	require.NoError(t, store.DropCollection(ctx, "org_testco"))

	exists, err = store.CollectionExists(ctx, "org_testco")
	require.NoError(t, err)
	require.False(t, exists)

	// Dropping an absent collection is a no-op.
	require.NoError(t, store.DropCollection(ctx, "org_testco"))
}

func TestMemoryStoreCRUD(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.CreateCollection(ctx, "admins"))
	require.NoError(t, store.InsertMany(ctx, "admins", []Document{
		{"admin_id": "a1", "org_id": "o1", "email": "a@b.com"},
		{"admin_id": "a2", "org_id": "o1", "email": "c@d.com"},
		{"admin_id": "a3", "org_id": "o2", "email": "e@f.com"},
	}))

	t.Run("find one", func(t *testing.T) {
		doc, err := store.FindOne(ctx, "admins", Document{"email": "c@d.com"})
		require.NoError(t, err)
		require.Equal(t, "a2", doc["admin_id"])

		_, err = store.FindOne(ctx, "admins", Document{"email": "nobody"})
		require.ErrorIs(t, err, ErrNoDocuments)
	})

	t.Run("find many", func(t *testing.T) {
		docs, err := store.Find(ctx, "admins", Document{"org_id": "o1"})
		require.NoError(t, err)
		require.Len(t, docs, 2)
	})

	t.Run("update one", func(t *testing.T) {
		updated, err := store.UpdateOne(ctx, "admins",
			Document{"admin_id": "a1"}, Document{"email": "new@b.com"})
		require.NoError(t, err)
		require.True(t, updated)

		doc, err := store.FindOne(ctx, "admins", Document{"admin_id": "a1"})
		require.NoError(t, err)
		require.Equal(t, "new@b.com", doc["email"])

		updated, err = store.UpdateOne(ctx, "admins",
			Document{"admin_id": "missing"}, Document{"email": "x"})
		require.NoError(t, err)
		require.False(t, updated)
	})

	t.Run("delete one and many", func(t *testing.T) {
		removed, err := store.DeleteOne(ctx, "admins", Document{"admin_id": "a3"})
		require.NoError(t, err)
		require.True(t, removed)

		count, err := store.DeleteMany(ctx, "admins", Document{"org_id": "o1"})
		require.NoError(t, err)
		require.EqualValues(t, 2, count)

		count, err = store.DeleteMany(ctx, "admins", Document{"org_id": "o1"})
		require.NoError(t, err)
		require.EqualValues(t, 0, count)
	})
}

func TestMemoryStoreUniqueIndex(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.CreateCollection(ctx, "admins"))
	require.NoError(t, store.EnsureUniqueIndex(ctx, "admins", "email"))
	require.NoError(t, store.EnsureUniqueIndex(ctx, "admins", "email"))

	require.NoError(t, store.InsertOne(ctx, "admins",
		Document{"admin_id": "a1", "email": "a@b.com"}))

	err := store.InsertOne(ctx, "admins",
		Document{"admin_id": "a2", "email": "a@b.com"})
	require.ErrorIs(t, err, ErrDuplicateKey)

	require.NoError(t, store.InsertOne(ctx, "admins",
		Document{"admin_id": "a2", "email": "c@d.com"}))

	// Updates are checked against every other document.
	_, err = store.UpdateOne(ctx, "admins",
		Document{"admin_id": "a2"}, Document{"email": "a@b.com"})
	require.ErrorIs(t, err, ErrDuplicateKey)

	// Setting a document's unique field to its current value is allowed.
	updated, err := store.UpdateOne(ctx, "admins",
		Document{"admin_id": "a2"}, Document{"email": "c@d.com"})
	require.NoError(t, err)
	require.True(t, updated)
}

func TestMemoryStoreCopiesDocuments(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	original := Document{"admin_id": "a1", "email": "a@b.com"}
	require.NoError(t, store.InsertOne(ctx, "admins", original))

	original["email"] = "mutated"

	doc, err := store.FindOne(ctx, "admins", Document{"admin_id": "a1"})
	require.NoError(t, err)
	require.Equal(t, "a@b.com", doc["email"])

	doc["email"] = "mutated again"

	doc, err = store.FindOne(ctx, "admins", Document{"admin_id": "a1"})
	require.NoError(t, err)
	require.Equal(t, "a@b.com", doc["email"])
}
