package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/kristianernst/fast-slides/internal"
	"github.com/kristianernst/fast-slides/internal/projectsvc"
	"github.com/kristianernst/fast-slides/internal/validate"
)

var (
	errValidationFailed = errors.New("validation failed")
	errAuditFailed      = errors.New("asset audit failed")
)

type serviceAction func(ctx context.Context, cmd *cli.Command, svc *projectsvc.Service) (any, error)

// withService opens the project service for one command and prints the
// returned value as indented JSON on stdout.
func withService(action serviceAction) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger, logCloser := internal.NewLogger(cfg.App, os.Stderr)
		defer logCloser.Close()

		svc, closeSvc, err := internal.OpenService(cfg, logger)
		if err != nil {
			return err
		}
		defer closeSvc()

		out, err := action(ctx, cmd, svc)
		if out != nil && (err == nil || errors.Is(err, errValidationFailed) || errors.Is(err, errAuditFailed)) {
			if perr := printJSON(os.Stdout, out); perr != nil {
				return perr
			}
		}
		return err
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func argPath(cmd *cli.Command, what string) (string, error) {
	p := cmd.Args().First()
	if p == "" {
		return "", fmt.Errorf("missing %s argument", what)
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs, nil
	}
	return p, nil
}

func commands() []*cli.Command {
	return []*cli.Command{
		{
			Name:   "serve",
			Usage:  "Run the agent hook HTTP server and the live validator",
			Action: serve,
		},
		{
			Name:   "mcp",
			Usage:  "Serve the deck tools over MCP on stdio",
			Action: serveMCP,
		},
		{
			Name:  "state",
			Usage: "Print the registry and the recent projects",
			Action: withService(func(ctx context.Context, _ *cli.Command, svc *projectsvc.Service) (any, error) {
				return svc.AppState(ctx)
			}),
		},
		{
			Name:      "open",
			Usage:     "Open a project and remember it",
			ArgsUsage: "<project>",
			Action: withService(func(ctx context.Context, cmd *cli.Command, svc *projectsvc.Service) (any, error) {
				p, err := argPath(cmd, "project")
				if err != nil {
					return nil, err
				}
				return svc.OpenProject(ctx, p)
			}),
		},
		{
			Name:      "validate",
			Usage:     "Validate a project; exits non-zero when errors are found",
			ArgsUsage: "<project>",
			Action: withService(func(ctx context.Context, cmd *cli.Command, svc *projectsvc.Service) (any, error) {
				p, err := argPath(cmd, "project")
				if err != nil {
					return nil, err
				}
				report, err := svc.Validate(ctx, p)
				if err != nil {
					return nil, err
				}
				if !report.OK() {
					return report, errValidationFailed
				}
				return report, nil
			}),
		},
		{
			Name:      "audit",
			Usage:     "Compare referenced assets with the files on disk",
			ArgsUsage: "<project>",
			Flags: []cli.Flag{
				&cli.IntFlag{Name: "top", Value: validate.DefaultTop, Usage: "How many of the largest files to list"},
				&cli.BoolFlag{Name: "strict", Usage: "Fail when unused asset files exist"},
			},
			Action: withService(func(ctx context.Context, cmd *cli.Command, svc *projectsvc.Service) (any, error) {
				p, err := argPath(cmd, "project")
				if err != nil {
					return nil, err
				}
				report, err := svc.Audit(ctx, p, int(cmd.Int("top")))
				if err != nil {
					return nil, err
				}
				if report.Failed(cmd.Bool("strict")) {
					return report, errAuditFailed
				}
				return report, nil
			}),
		},
		{
			Name:      "history",
			Usage:     "Show recent validation runs of a project",
			ArgsUsage: "<project>",
			Flags: []cli.Flag{
				&cli.IntFlag{Name: "limit", Value: 20, Usage: "Maximum number of runs"},
			},
			Action: withService(func(ctx context.Context, cmd *cli.Command, svc *projectsvc.Service) (any, error) {
				p, err := argPath(cmd, "project")
				if err != nil {
					return nil, err
				}
				return svc.History(ctx, p, int(cmd.Int("limit")))
			}),
		},
		{
			Name:      "search",
			Usage:     "Search journaled validation findings",
			ArgsUsage: "<query>",
			Flags: []cli.Flag{
				&cli.IntFlag{Name: "limit", Value: 20, Usage: "Maximum number of findings"},
			},
			Action: withService(func(ctx context.Context, cmd *cli.Command, svc *projectsvc.Service) (any, error) {
				q := cmd.Args().First()
				if q == "" {
					return nil, errors.New("missing query argument")
				}
				return svc.SearchFindings(ctx, q, int(cmd.Int("limit")))
			}),
		},
		{
			Name:  "create",
			Usage: "Create a new project with a starter deck",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "root", Required: true, Usage: "Folder to create the project in"},
				&cli.StringFlag{Name: "name", Required: true, Usage: "Project folder name"},
				&cli.StringFlag{Name: "title", Usage: "Deck title"},
				&cli.StringFlag{Name: "subtitle", Usage: "Deck subtitle"},
				&cli.StringFlag{Name: "date", Usage: "Date label on the title slide"},
			},
			Action: withService(func(ctx context.Context, cmd *cli.Command, svc *projectsvc.Service) (any, error) {
				return svc.CreateProject(ctx, projectsvc.CreateProjectRequest{
					Root:      cmd.String("root"),
					Name:      cmd.String("name"),
					Title:     cmd.String("title"),
					Subtitle:  cmd.String("subtitle"),
					DateLabel: cmd.String("date"),
				})
			}),
		},
		{
			Name:      "add-root",
			Usage:     "Register a projects root",
			ArgsUsage: "<folder>",
			Action: withService(func(ctx context.Context, cmd *cli.Command, svc *projectsvc.Service) (any, error) {
				p, err := argPath(cmd, "folder")
				if err != nil {
					return nil, err
				}
				return svc.AddRoot(ctx, p)
			}),
		},
		{
			Name:      "remove-root",
			Usage:     "Forget a projects root",
			ArgsUsage: "<folder>",
			Action: withService(func(ctx context.Context, cmd *cli.Command, svc *projectsvc.Service) (any, error) {
				p, err := argPath(cmd, "folder")
				if err != nil {
					return nil, err
				}
				return svc.RemoveRoot(ctx, p)
			}),
		},
		{
			Name:      "remove-project",
			Usage:     "Forget a recent project",
			ArgsUsage: "<project>",
			Action: withService(func(ctx context.Context, cmd *cli.Command, svc *projectsvc.Service) (any, error) {
				p, err := argPath(cmd, "project")
				if err != nil {
					return nil, err
				}
				return svc.RemoveProject(ctx, p)
			}),
		},
		{
			Name:      "preview-url",
			Usage:     "Print the preview link for a project",
			ArgsUsage: "<project>",
			Action: withService(func(_ context.Context, cmd *cli.Command, svc *projectsvc.Service) (any, error) {
				p, err := argPath(cmd, "project")
				if err != nil {
					return nil, err
				}
				return svc.PreviewURL(p)
			}),
		},
		{
			Name:      "asset-url",
			Usage:     "Resolve an asset reference to a data URL",
			ArgsUsage: "<project> <src>",
			Action: withService(func(ctx context.Context, cmd *cli.Command, svc *projectsvc.Service) (any, error) {
				p, err := argPath(cmd, "project")
				if err != nil {
					return nil, err
				}
				return svc.ResolveAssetDataURL(ctx, p, cmd.Args().Get(1))
			}),
		},
		{
			Name:      "reveal",
			Usage:     "Show a project folder in the file manager",
			ArgsUsage: "<path>",
			Action: withService(func(ctx context.Context, cmd *cli.Command, svc *projectsvc.Service) (any, error) {
				p, err := argPath(cmd, "path")
				if err != nil {
					return nil, err
				}
				return nil, svc.Reveal(ctx, p)
			}),
		},
		{
			Name:      "export-skill",
			Usage:     "Pack the FastSlides agent skill into a zip archive",
			ArgsUsage: "<destination>",
			Action: withService(func(ctx context.Context, cmd *cli.Command, svc *projectsvc.Service) (any, error) {
				dest := cmd.Args().First()
				if dest == "" {
					return nil, errors.New("missing destination argument")
				}
				return svc.ExportSkill(ctx, dest)
			}),
		},
	}
}
