package directory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wolfeidau/tenantd/internal/docstore"
)

// fakeHasher is a transparent PasswordHasher so unit tests stay fast. The
// real bcrypt implementation is covered in the auth package.
type fakeHasher struct{}

func (fakeHasher) Hash(plain string) (string, error) { return "hashed:" + plain, nil }
func (fakeHasher) Verify(plain, hash string) bool    { return "hashed:"+plain == hash }

func newAdminDirectory(t *testing.T) *AdminDirectory {
	t.Helper()
	admins := NewAdminDirectory(docstore.NewMemoryStore(), fakeHasher{})
	require.NoError(t, admins.Init(context.Background()))
	return admins
}

func TestAdminDirectoryCreateAccount(t *testing.T) {
	ctx := context.Background()
	admins := newAdminDirectory(t)

	admin, err := admins.CreateAccount(ctx, "a@b.com", "Abcdef12", "org-1")
	require.NoError(t, err)
	require.NotEmpty(t, admin.AdminID)
	require.Equal(t, "a@b.com", admin.Email)
	require.Equal(t, "org-1", admin.OrgID)
	require.NotEqual(t, "Abcdef12", admin.PasswordHash)

	t.Run("duplicate email anywhere in the directory", func(t *testing.T) {
		_, err := admins.CreateAccount(ctx, "a@b.com", "Other123", "org-2")
		require.ErrorIs(t, err, ErrDuplicateEmail)
	})
}

func TestAdminDirectoryAuthenticate(t *testing.T) {
	ctx := context.Background()
	admins := newAdminDirectory(t)

	created, err := admins.CreateAccount(ctx, "a@b.com", "Abcdef12", "org-1")
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		admin, err := admins.Authenticate(ctx, "a@b.com", "Abcdef12")
		require.NoError(t, err)
		require.NotNil(t, admin)
		require.Equal(t, created.AdminID, admin.AdminID)
	})

	t.Run("wrong password", func(t *testing.T) {
		admin, err := admins.Authenticate(ctx, "a@b.com", "Wrong123")
		require.NoError(t, err)
		require.Nil(t, admin)
	})

	t.Run("unknown email", func(t *testing.T) {
		admin, err := admins.Authenticate(ctx, "nobody@b.com", "Abcdef12")
		require.NoError(t, err)
		require.Nil(t, admin)
	})
}

func TestAdminDirectoryLookups(t *testing.T) {
	ctx := context.Background()
	admins := newAdminDirectory(t)

	created, err := admins.CreateAccount(ctx, "a@b.com", "Abcdef12", "org-1")
	require.NoError(t, err)

	byID, err := admins.FindByID(ctx, created.AdminID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	require.Equal(t, "a@b.com", byID.Email)

	byEmail, err := admins.FindByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	require.Equal(t, created.AdminID, byEmail.AdminID)

	byOrg, err := admins.FindByOrganization(ctx, "org-1")
	require.NoError(t, err)
	require.NotNil(t, byOrg)
	require.Equal(t, created.AdminID, byOrg.AdminID)

	missing, err := admins.FindByID(ctx, "nope")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestAdminDirectoryUpdateCredentials(t *testing.T) {
	ctx := context.Background()
	admins := newAdminDirectory(t)

	first, err := admins.CreateAccount(ctx, "a@b.com", "Abcdef12", "org-1")
	require.NoError(t, err)
	_, err = admins.CreateAccount(ctx, "c@d.com", "Abcdef12", "org-2")
	require.NoError(t, err)

	t.Run("no fields is a no-op", func(t *testing.T) {
		changed, err := admins.UpdateCredentials(ctx, first.AdminID, nil, nil)
		require.NoError(t, err)
		require.False(t, changed)
	})

	t.Run("email taken by another account", func(t *testing.T) {
		email := "c@d.com"
		_, err := admins.UpdateCredentials(ctx, first.AdminID, &email, nil)
		require.ErrorIs(t, err, ErrDuplicateEmail)
	})

	t.Run("own email is not a conflict", func(t *testing.T) {
		email := "a@b.com"
		password := "Newpass12"
		changed, err := admins.UpdateCredentials(ctx, first.AdminID, &email, &password)
		require.NoError(t, err)
		require.True(t, changed)

		admin, err := admins.Authenticate(ctx, "a@b.com", "Newpass12")
		require.NoError(t, err)
		require.NotNil(t, admin)
	})

	t.Run("new email applied", func(t *testing.T) {
		email := "new@b.com"
		changed, err := admins.UpdateCredentials(ctx, first.AdminID, &email, nil)
		require.NoError(t, err)
		require.True(t, changed)

		admin, err := admins.FindByEmail(ctx, "new@b.com")
		require.NoError(t, err)
		require.NotNil(t, admin)
		require.Equal(t, first.AdminID, admin.AdminID)
	})
}

func TestAdminDirectoryDelete(t *testing.T) {
	ctx := context.Background()
	admins := newAdminDirectory(t)

	created, err := admins.CreateAccount(ctx, "a@b.com", "Abcdef12", "org-1")
	require.NoError(t, err)

	removed, err := admins.DeleteAccount(ctx, created.AdminID)
	require.NoError(t, err)
	require.True(t, removed)

	// Unconditional removal never fails on zero matches.
	removed, err = admins.DeleteAccount(ctx, created.AdminID)
	require.NoError(t, err)
	require.False(t, removed)

	count, err := admins.DeleteAllForOrganization(ctx, "org-1")
	require.NoError(t, err)
	require.EqualValues(t, 0, count)
}
