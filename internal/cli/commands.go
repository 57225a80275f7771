package cli

import (
	"bufio"
	"context"

	"github.com/dmitrijs2005/runas/internal/common"
	"github.com/dmitrijs2005/runas/internal/config"
	urfave "github.com/urfave/cli/v2"
)

const (
	FlagForce       = "force"
	FlagUsername    = "username"
	FlagInteractive = "interactive"
	FlagBatch       = "batch"
	FlagRemove      = "remove"
)

var forceFlag = &urfave.BoolFlag{
	Name:    FlagForce,
	Aliases: []string{"f"},
	Usage:   "run even if the cluster health is RED",
}

// New returns the runas command-line application.
func New(version string, streams Streams) *urfave.App {
	reader := bufio.NewReader(streams.In)

	// -v belongs to --verbose
	urfave.VersionFlag = &urfave.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}

	return &urfave.App{
		Name:                   "runas",
		Usage:                  "run a privileged cluster action as a temporary file realm superuser",
		Version:                version,
		Suggest:                true,
		UseShortOptionHandling: true,
		Reader:                 streams.In,
		Writer:                 streams.Out,
		ErrWriter:              streams.Err,
		Flags:                  config.Flags(),
		OnUsageError: func(_ *urfave.Context, err error, _ bool) error {
			return common.NewError(common.ExitUsage, "", err)
		},
		Commands: []*urfave.Command{
			{
				Name:  "health",
				Usage: "verify the cluster accepts a temporary superuser and print its health",
				Flags: []urfave.Flag{forceFlag},
				Action: withApp(streams, func(ctx context.Context, c *urfave.Context, a *App) error {
					return a.Health(ctx, c.Bool(FlagForce))
				}),
			},
			{
				Name:  "reset-password",
				Usage: "reset the password of a native realm user",
				Flags: []urfave.Flag{
					forceFlag,
					&urfave.StringFlag{
						Name:    FlagUsername,
						Aliases: []string{"u"},
						Usage:   "user whose password is reset",
					},
					&urfave.BoolFlag{
						Name:    FlagInteractive,
						Aliases: []string{"i"},
						Usage:   "prompt for the new password instead of generating one",
					},
					&urfave.BoolFlag{
						Name:    FlagBatch,
						Aliases: []string{"b"},
						Usage:   "do not ask for confirmation",
					},
				},
				Action: withApp(streams, func(ctx context.Context, c *urfave.Context, a *App) error {
					return a.ResetPassword(ctx, reader, ResetPasswordOptions{
						Username:    c.String(FlagUsername),
						Interactive: c.Bool(FlagInteractive),
						Batch:       c.Bool(FlagBatch),
						Force:       c.Bool(FlagForce),
					})
				}),
			},
			{
				Name:  "features",
				Usage: "list the features the cluster can snapshot",
				Flags: []urfave.Flag{forceFlag},
				Action: withApp(streams, func(ctx context.Context, c *urfave.Context, a *App) error {
					return a.Features(ctx, c.Bool(FlagForce))
				}),
			},
			{
				Name:  "sweep",
				Usage: "find temporary users left behind by interrupted runs",
				Flags: []urfave.Flag{
					&urfave.BoolFlag{
						Name:  FlagRemove,
						Usage: "remove the users that were found",
					},
				},
				Action: withApp(streams, func(ctx context.Context, c *urfave.Context, a *App) error {
					return a.Sweep(ctx, c.Bool(FlagRemove))
				}),
			},
		},
	}
}

// withApp loads the configuration and builds an App around fn.
func withApp(streams Streams, fn func(ctx context.Context, c *urfave.Context, a *App) error) urfave.ActionFunc {
	return func(c *urfave.Context) error {
		if c.NArg() > 0 {
			return common.NewError(common.ExitUsage, "unexpected arguments: "+c.Args().First(), nil)
		}
		cfg, err := config.Load(c)
		if err != nil {
			return err
		}
		ctx := c.Context
		a, err := NewApp(ctx, cfg, streams)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := fn(ctx, c, a); err != nil {
			a.logger.Debug(ctx, "command failed", "command", c.Command.Name, "error", err)
			return err
		}
		return nil
	}
}
