// Package auth authenticates admin credentials, issues and verifies session
// tokens, and authorizes an actor against an organization.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wolfeidau/tenantd/internal/directory"
	"github.com/wolfeidau/tenantd/internal/models"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUnknownActor       = errors.New("token subject no longer exists")
	ErrForbidden          = errors.New("forbidden")
)

// Actor is a live admin account annotated with the token claims it was
// resolved from.
type Actor struct {
	Admin  *models.AdminAccount
	Claims *Claims
}

// AccessControl ties the admin directory to the token issuer.
type AccessControl struct {
	admins   *directory.AdminDirectory
	issuer   TokenIssuer
	tokenTTL time.Duration
}

// NewAccessControl creates an access control service issuing tokens with the
// given TTL.
func NewAccessControl(admins *directory.AdminDirectory, issuer TokenIssuer, tokenTTL time.Duration) *AccessControl {
	return &AccessControl{
		admins:   admins,
		issuer:   issuer,
		tokenTTL: tokenTTL,
	}
}

// Login authenticates the credentials and issues a session token embedding
// the admin id, organization id, and email.
func (a *AccessControl) Login(ctx context.Context, email, password string) (string, error) {
	admin, err := a.admins.Authenticate(ctx, email, password)
	if err != nil {
		return "", err
	}
	if admin == nil {
		return "", ErrInvalidCredentials
	}

	claims := &Claims{OrgID: admin.OrgID, Email: admin.Email}
	claims.Subject = admin.AdminID

	token, err := a.issuer.Issue(claims, a.tokenTTL)
	if err != nil {
		return "", err
	}

	log.Debug().
		Str("admin_id", admin.AdminID).
		Str("org_id", admin.OrgID).
		Msg("Issued session token")

	return token, nil
}

// ResolveActor verifies a token and resolves its subject to a live admin
// account. Fails with ErrInvalidToken when the token does not verify and
// ErrUnknownActor when the embedded admin id no longer resolves.
func (a *AccessControl) ResolveActor(ctx context.Context, token string) (*Actor, error) {
	claims, err := a.issuer.Verify(token)
	if err != nil {
		return nil, err
	}

	admin, err := a.admins.FindByID(ctx, claims.AdminID())
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, ErrUnknownActor
	}

	return &Actor{Admin: admin, Claims: claims}, nil
}

// AuthorizeForOrganization fails with ErrForbidden unless the actor belongs
// to the organization.
func (a *AccessControl) AuthorizeForOrganization(actor *Actor, orgID string) error {
	if actor == nil || actor.Admin == nil || actor.Admin.OrgID != orgID {
		return ErrForbidden
	}
	return nil
}
