package main

import (
	"context"
	"fmt"
	"os"

	goversion "github.com/caarlos0/go-version"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/okra-platform/dtogen/internal/commands"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	version   = "dev"
	commit    = "HEAD"
	date      = "now"
	builtBy   = ""
	treeState = ""
)

const (
	appName        = "dtogen"
	appDescription = "Generate Swift JSON marshalling code for DTOs declared in a GraphQL-style schema"
	appSite        = "https://github.com/okra-platform/dtogen"
)

func buildVersion(version, commit, date, builtBy, treeState string) goversion.Info {
	return goversion.GetVersionInfo(
		goversion.WithAppDetails(appName, appDescription, appSite),
		func(i *goversion.Info) {
			if commit != "" {
				i.GitCommit = commit
			}
			if version != "" {
				i.GitVersion = version
			}
			if treeState != "" {
				i.GitTreeState = treeState
			}
			if date != "" {
				i.BuildDate = date
			}
			if builtBy != "" {
				i.BuiltBy = builtBy
			}
		},
	)
}

func main() {
	ctrl := &commands.Controller{
		Flags: &commands.Flags{},
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	info := buildVersion(version, commit, date, builtBy, treeState)

	app := &cli.Command{
		Name:    appName,
		Usage:   appDescription,
		Version: info.GitVersion,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("DTOGEN_LOG_LEVEL"),
				Value:       "warn",
				Destination: &ctrl.Flags.LogLevel,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			level, err := zerolog.ParseLevel(c.String("log-level"))
			if err != nil {
				return ctx, fmt.Errorf("failed to parse log level: %w", err)
			}

			log.Logger = log.Level(level)
			ctrl.Logger = log.Logger

			return ctx, nil
		},
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Create dtogen.json and an example schema",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "project name; prompts when empty"},
					&cli.StringFlag{Name: "schema", Usage: "schema path relative to the project"},
					&cli.BoolFlag{Name: "objc", Usage: "expose marshalling helpers to Objective-C"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return ctrl.Init(ctx, commands.InitOptions{
						Name:        c.String("name"),
						Schema:      c.String("schema"),
						SupportObjC: c.Bool("objc"),
					})
				},
			},
			{
				Name:  "generate",
				Usage: "Generate marshalling code from the schema",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "check", Usage: "fail if the generated code is out of date"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return ctrl.Generate(ctx, commands.GenerateOptions{Check: c.Bool("check")})
				},
			},
			{
				Name:  "watch",
				Usage: "Regenerate whenever the schema changes",
				Action: func(ctx context.Context, c *cli.Command) error {
					return ctrl.Watch(ctx)
				},
			},
			{
				Name:      "decode",
				Usage:     "Decode a JSON payload the way the generated code would",
				ArgsUsage: "[file|-]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Usage: "DTO to decode as", Required: true},
					&cli.BoolFlag{Name: "array", Usage: "decode a JSON array of the DTO"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return ctrl.Decode(ctx, commands.DecodeOptions{
						Type:  c.String("type"),
						Array: c.Bool("array"),
						Path:  c.Args().First(),
					})
				},
			},
			{
				Name:  "version",
				Usage: "Print detailed version information",
				Action: func(ctx context.Context, c *cli.Command) error {
					fmt.Println(info.String())
					return nil
				},
			},
		},
	}

	ctx := context.Background()

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal().Err(err).Msg("failed to run dtogen")
	}
}
