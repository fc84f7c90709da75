package main

import (
	"context"
	"os"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/wolfeidau/tenantd/cmd/tenantd/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Org    commands.OrgCmd    `cmd:"" help:"Manage organizations"`
		Login  commands.LoginCmd  `cmd:"" help:"Authenticate an admin and print a session token"`
		Whoami commands.WhoamiCmd `cmd:"" help:"Resolve a session token"`

		Config  string `help:"Path to config file." default:"tenantd.yml"`
		Debug   bool   `help:"Enable debug mode."`
		Version kong.VersionFlag
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cli.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	err := cmd.Run(&commands.Globals{Config: cli.Config, Debug: cli.Debug, Version: version})
	cmd.FatalIfErrorf(err)
}
