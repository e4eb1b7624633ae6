package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/docsync/docsync/internal/adapter"
	"github.com/docsync/docsync/internal/backup"
	"github.com/docsync/docsync/internal/config"
	"github.com/docsync/docsync/internal/progress"
	"github.com/docsync/docsync/internal/store"
	"github.com/docsync/docsync/internal/sync"
	"github.com/docsync/docsync/internal/ui"
)

// env bundles the services a command needs, built from flags and config.
type env struct {
	cfg     *config.Config
	baseDir string
	store   *store.Store
	local   *adapter.Local
}

func buildEnv(cmd *cli.Command) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	baseDir, err := filepath.Abs(cmd.String("dir"))
	if err != nil {
		return nil, err
	}

	return &env{
		cfg:     cfg,
		baseDir: baseDir,
		store:   store.New(baseDir),
		local:   adapter.NewLocal(baseDir),
	}, nil
}

// notion builds the remote adapter, failing early when no token is set.
func (e *env) notion() (*adapter.Notion, error) {
	if e.cfg.Notion.Token == "" {
		return nil, fmt.Errorf("no Notion token configured; set %s or notion.token in %s",
			config.TokenEnvVar, config.FilePath())
	}
	return adapter.NewNotion(e.cfg.Notion.Token), nil
}

// service builds the sync service, wiring the backup hook when enabled.
func (e *env) service() (*sync.Service, error) {
	remote, err := e.notion()
	if err != nil {
		return nil, err
	}

	var opts []sync.Option
	if e.cfg.Sync.AutoBackup && e.cfg.Backup.Enabled {
		opts = append(opts, sync.WithLocalBackup(backup.NewManager(e.baseDir).Hook()))
	}

	return sync.NewService(e.store, e.local, remote, opts...), nil
}

func (e *env) parentPageID(cmd *cli.Command) (string, error) {
	parent := cmd.String("parent")
	if parent == "" {
		parent = e.cfg.Notion.ParentPageID
	}
	if parent == "" {
		return "", errors.New("no parent page; pass --parent or set notion.parent_page_id")
	}
	return parent, nil
}

func initCommand() *cli.Command {
	return &cli.Command{
		Name:      "init",
		Usage:     "Pair every markdown file in a directory with a new Notion page",
		UsageText: "docsync init [--parent PAGE_ID] [directory]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "parent",
				Usage: "Notion page ID under which new pages are created",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			e, err := buildEnv(cmd)
			if err != nil {
				return err
			}
			remote, err := e.notion()
			if err != nil {
				return err
			}
			parent, err := e.parentPageID(cmd)
			if err != nil {
				return err
			}

			dir := e.baseDir
			if cmd.Args().Len() > 0 {
				dir = cmd.Args().Get(0)
			}

			init := sync.NewInitializer(e.store, e.local, remote)
			result, err := init.InitDirectory(ctx, dir, parent)
			if err != nil {
				return err
			}

			for _, pair := range result.Created {
				fmt.Println(ui.StatusSuccess(fmt.Sprintf("%s → %s", pair.LocalPath, pair.RemoteURI)))
			}
			for _, path := range result.Skipped {
				fmt.Println(ui.StatusSkipped(fmt.Sprintf("%s (already paired)", path)))
			}
			fmt.Printf("\n%s created, %s skipped\n",
				ui.Bold(fmt.Sprint(len(result.Created))),
				ui.Dim(fmt.Sprint(len(result.Skipped))))
			return nil
		},
	}
}

func pairCommand() *cli.Command {
	return &cli.Command{
		Name:      "pair",
		Usage:     "Pair a single markdown file with a Notion page",
		UsageText: "docsync pair [--parent PAGE_ID | --remote URI] <file>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "parent",
				Usage: "Create a new page under this Notion page ID",
			},
			&cli.StringFlag{
				Name:  "remote",
				Usage: "Attach to an existing page (notion://<page-id>)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return errors.New("pair requires exactly one file argument")
			}
			path := cmd.Args().Get(0)

			e, err := buildEnv(cmd)
			if err != nil {
				return err
			}
			remote, err := e.notion()
			if err != nil {
				return err
			}
			init := sync.NewInitializer(e.store, e.local, remote)

			if uri := cmd.String("remote"); uri != "" {
				pair, err := init.AttachFile(ctx, path, uri)
				if err != nil {
					return err
				}
				fmt.Println(ui.StatusSuccess(fmt.Sprintf("%s attached to %s", pair.LocalPath, pair.RemoteURI)))
				fmt.Println(ui.Dim("run 'docsync sync' to reconcile the two versions"))
				return nil
			}

			parent, err := e.parentPageID(cmd)
			if err != nil {
				return err
			}
			pair, err := init.PairFile(ctx, path, parent)
			if err != nil {
				return err
			}
			fmt.Println(ui.StatusSuccess(fmt.Sprintf("%s → %s", pair.LocalPath, pair.RemoteURI)))
			return nil
		},
	}
}

func syncCommand() *cli.Command {
	return &cli.Command{
		Name:      "sync",
		Usage:     "Sync all pairs, or one file when given",
		UsageText: "docsync sync [--force push|pull] [file]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "force",
				Usage: "Bypass conflict detection: 'push' or 'pull'",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			force, err := parseForce(cmd.String("force"))
			if err != nil {
				return err
			}
			return runSync(ctx, cmd, force)
		},
	}
}

func pushCommand() *cli.Command {
	return &cli.Command{
		Name:      "push",
		Usage:     "Force local content to Notion, ignoring conflicts",
		UsageText: "docsync push [file]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runSync(ctx, cmd, sync.DirectionPush)
		},
	}
}

func pullCommand() *cli.Command {
	return &cli.Command{
		Name:      "pull",
		Usage:     "Force Notion content to local files, ignoring conflicts",
		UsageText: "docsync pull [file]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runSync(ctx, cmd, sync.DirectionPull)
		},
	}
}

func parseForce(value string) (sync.Direction, error) {
	switch value {
	case "":
		return sync.DirectionNone, nil
	case "push":
		return sync.DirectionPush, nil
	case "pull":
		return sync.DirectionPull, nil
	default:
		return sync.DirectionNone, fmt.Errorf("invalid --force value %q (want push or pull)", value)
	}
}

func runSync(ctx context.Context, cmd *cli.Command, force sync.Direction) error {
	e, err := buildEnv(cmd)
	if err != nil {
		return err
	}
	svc, err := e.service()
	if err != nil {
		return err
	}

	if cmd.Args().Len() > 0 {
		result, err := svc.SyncFile(ctx, cmd.Args().Get(0), force)
		if err != nil {
			return err
		}
		fmt.Printf("%s %s: %s\n", ui.StatusSymbol(result.Status), result.LocalPath, result.Message)
		if result.IsConflict() {
			fmt.Println(ui.Dim("run 'docsync resolve' to pick a side"))
		}
		return nil
	}

	var bar *progress.Bar
	svc.OnProgress(func(done, total int) {
		if bar == nil {
			bar = progress.Simple(int64(total), "Syncing")
		}
		_ = bar.Set(done)
	})

	summary, err := svc.SyncAll(ctx, force)
	if bar != nil {
		_ = bar.Clear()
	}
	if err != nil {
		return err
	}
	printSummary(summary)
	return nil
}

func printSummary(summary *sync.Summary) {
	for _, result := range summary.Results {
		fmt.Printf("%s %s: %s\n", ui.StatusSymbol(result.Status), result.LocalPath, result.Message)
	}

	fmt.Printf("\n%d pairs: %s synced, %s unchanged",
		summary.Total,
		ui.Success(fmt.Sprint(summary.Success)),
		ui.Dim(fmt.Sprint(summary.NoChanges)))
	if summary.Conflicts > 0 {
		fmt.Printf(", %s conflicts", ui.Warning(fmt.Sprint(summary.Conflicts)))
	}
	if summary.Errors > 0 {
		fmt.Printf(", %s errors", ui.Error(fmt.Sprint(summary.Errors)))
	}
	fmt.Println()

	if summary.HasConflicts() {
		fmt.Println(ui.Dim("run 'docsync resolve' to pick a side"))
	}
}

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show pairing and conflict state without syncing",
		Action: func(_ context.Context, cmd *cli.Command) error {
			e, err := buildEnv(cmd)
			if err != nil {
				return err
			}

			status, err := sync.NewService(e.store, e.local, nil).Status()
			if err != nil {
				return err
			}
			if !status.Initialized {
				fmt.Println(ui.StatusSkipped("not initialized; run 'docsync init' first"))
				return nil
			}
			if len(status.Pairs) == 0 {
				fmt.Println(ui.StatusSkipped("no pairs configured"))
				return nil
			}

			fmt.Println(ui.Header(fmt.Sprintf("%-40s %-30s %-12s %s", "LOCAL", "REMOTE", "STATE", "LAST SYNC")))
			for _, pair := range status.Pairs {
				state := ui.Success("synced")
				switch {
				case pair.HasConflict:
					state = ui.Warning("conflict")
				case pair.LastError != "":
					state = ui.Error("error")
				case pair.LastSync.IsZero():
					state = ui.Dim("pending")
				}

				lastSync := "-"
				if !pair.LastSync.IsZero() {
					lastSync = pair.LastSync.Format("2006-01-02 15:04")
				}
				fmt.Printf("%-40s %-30s %-12s %s\n", pair.LocalPath, pair.RemoteURI, state, lastSync)
			}
			return nil
		},
	}
}

func unpairCommand() *cli.Command {
	return &cli.Command{
		Name:      "unpair",
		Usage:     "Remove a sync pair (the file and page are left alone)",
		UsageText: "docsync unpair <file-or-pair-id>",
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return errors.New("unpair requires exactly one argument")
			}
			target := cmd.Args().Get(0)

			e, err := buildEnv(cmd)
			if err != nil {
				return err
			}

			pairs, err := e.store.ListPairs()
			if err != nil {
				return err
			}

			want := filepath.Clean(target)
			if !filepath.IsAbs(want) {
				want = filepath.Join(e.baseDir, want)
			}
			for _, pair := range pairs {
				pairPath := pair.LocalPath
				if !filepath.IsAbs(pairPath) {
					pairPath = filepath.Join(e.baseDir, pairPath)
				}
				if pair.ID == target || filepath.Clean(pairPath) == want {
					if err := e.store.RemovePair(pair.ID); err != nil {
						return err
					}
					fmt.Println(ui.StatusSuccess(fmt.Sprintf("unpaired %s", pair.LocalPath)))
					return nil
				}
			}
			return fmt.Errorf("no pair matches %q", target)
		},
	}
}

func backupCommand() *cli.Command {
	return &cli.Command{
		Name:  "backup",
		Usage: "Manage pre-overwrite backups",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recorded backups, newest first",
				Action: func(_ context.Context, cmd *cli.Command) error {
					e, err := buildEnv(cmd)
					if err != nil {
						return err
					}
					backups, err := backup.NewManager(e.baseDir).List()
					if err != nil {
						return err
					}
					if len(backups) == 0 {
						fmt.Println(ui.StatusSkipped("no backups"))
						return nil
					}
					for _, meta := range backups {
						fmt.Printf("%s  %s  %s (%d bytes)\n",
							meta.CreatedAt.Format("2006-01-02 15:04:05"),
							ui.Bold(meta.ID), meta.SourcePath, meta.Size)
					}
					return nil
				},
			},
			{
				Name:  "prune",
				Usage: "Delete old backups per the retention policy",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Preview deletions without deleting",
					},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					e, err := buildEnv(cmd)
					if err != nil {
						return err
					}

					opts := backup.DefaultCleanupOptions()
					opts.MaxBackups = e.cfg.Backup.MaxBackups
					opts.DryRun = cmd.Bool("dry-run")

					removed, err := backup.NewManager(e.baseDir).Cleanup(opts)
					if err != nil {
						return err
					}
					verb := "removed"
					if opts.DryRun {
						verb = "would remove"
					}
					fmt.Printf("%s %d backup(s)\n", verb, len(removed))
					return nil
				},
			},
		},
	}
}

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Display the effective configuration",
		Action: func(_ context.Context, cmd *cli.Command) error {
			e, err := buildEnv(cmd)
			if err != nil {
				return err
			}

			shown := *e.cfg
			if shown.Notion.Token != "" {
				shown.Notion.Token = "(set)"
			}

			data, err := yaml.Marshal(&shown)
			if err != nil {
				return err
			}
			fmt.Printf("# %s\n%s", config.FilePath(), data)
			return nil
		},
	}
}
