package commands

import (
	"context"
	"fmt"
)

type LoginCmd struct {
	Email    string `required:"" help:"Admin email address"`
	Password string `required:"" help:"Admin password"`
}

func (c *LoginCmd) Run(ctx context.Context, globals *Globals) error {
	e, cfg, err := newEnv(ctx, globals)
	if err != nil {
		return err
	}
	defer e.cleanup()

	ac, err := newAccessControl(e, cfg)
	if err != nil {
		return err
	}

	token, err := ac.Login(ctx, c.Email, c.Password)
	if err != nil {
		return err
	}

	fmt.Println(token)
	return nil
}

type WhoamiCmd struct {
	Token string `arg:"" help:"Session token"`
}

func (c *WhoamiCmd) Run(ctx context.Context, globals *Globals) error {
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

	fmt.Printf("admin %s (%s) of organization %s, token expires %s\n",
		actor.Admin.AdminID, actor.Admin.Email, actor.Claims.OrgID,
		actor.Claims.ExpiresAt.Format("2006-01-02 15:04:05 MST"))
	return nil
}
