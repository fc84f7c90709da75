package commands

import (
	"context"
	"fmt"

	"github.com/wolfeidau/tenantd/internal/validate"
)

type OrgCmd struct {
	Create OrgCreateCmd `cmd:"" help:"Register an organization with its admin account"`
	Rename OrgRenameCmd `cmd:"" help:"Rename an organization and migrate its collection"`
	Delete OrgDeleteCmd `cmd:"" help:"Delete an organization (owning admin only)"`
	List   OrgListCmd   `cmd:"" help:"List all organizations"`
}

type OrgCreateCmd struct {
	Name     string `arg:"" help:"Organization name (3-50 characters)"`
	Email    string `required:"" help:"Admin email address"`
	Password string `required:"" help:"Admin password"`
}

func (c *OrgCreateCmd) Run(ctx context.Context, globals *Globals) error {
	if err := validate.OrganizationName(c.Name); err != nil {
		return err
	}
	if err := validate.Email(c.Email); err != nil {
		return err
	}
	if err := validate.PasswordStrength(c.Password); err != nil {
		return err
	}

	e, _, err := newEnv(ctx, globals)
	if err != nil {
		return err
	}
	defer e.cleanup()

	org, err := e.orgs.Create(ctx, c.Name, c.Email, c.Password)
	if err != nil {
		return err
	}

	fmt.Printf("created organization %s (id %s, collection %s, admin %s)\n",
		org.Name, org.OrgID, org.CollectionID, org.AdminEmail)
	return nil
}

type OrgRenameCmd struct {
	OldName string `arg:"" help:"Current organization name"`
	NewName string `arg:"" help:"New organization name"`

	Email    string `help:"New admin email address (optional)"`
	Password string `help:"New admin password (optional)"`
}

func (c *OrgRenameCmd) Run(ctx context.Context, globals *Globals) error {
	if err := validate.OrganizationName(c.NewName); err != nil {
		return err
	}

	var newEmail, newPassword *string
	if c.Email != "" {
		if err := validate.Email(c.Email); err != nil {
			return err
		}
		newEmail = &c.Email
	}
	if c.Password != "" {
		if err := validate.PasswordStrength(c.Password); err != nil {
			return err
		}
		newPassword = &c.Password
	}

	e, _, err := newEnv(ctx, globals)
	if err != nil {
		return err
	}
	defer e.cleanup()

	org, err := e.orgs.Rename(ctx, c.OldName, c.NewName, newEmail, newPassword)
	if err != nil {
		return err
	}

	fmt.Printf("renamed organization to %s (collection %s)\n", org.Name, org.CollectionID)
	return nil
}

type OrgDeleteCmd struct {
	Name  string `arg:"" help:"Organization name"`
	Token string `required:"" help:"Session token of the organization's admin"`
}

func (c *OrgDeleteCmd) Run(ctx context.Context, globals *Globals) error {
	e, cfg, err := newEnv(ctx, globals)
	if err != nil {
		return err
	}
	defer e.cleanup()

	ac, err := newAccessControl(e, cfg)
	if err != nil {
		return err
	}

	actor, err := ac.ResolveActor(ctx, c.Token)
	if err != nil {
		return err
	}

	removed, err := e.orgs.Delete(ctx, c.Name, actor.Admin.AdminID)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("organization record was already gone")
	}

	fmt.Printf("deleted organization %s\n", c.Name)
	return nil
}

type OrgListCmd struct{}

func (c *OrgListCmd) Run(ctx context.Context, globals *Globals) error {
	e, _, err := newEnv(ctx, globals)
	if err != nil {
		return err
	}
	defer e.cleanup()

	orgs, err := e.orgs.ListAll(ctx)
	if err != nil {
		return err
	}

	for _, org := range orgs {
		fmt.Printf("%s\t%s\t%s\n", org.OrgID, org.Name, org.CollectionID)
	}
	return nil
}
