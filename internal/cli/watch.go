package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/docsync/docsync/internal/ui"
	"github.com/docsync/docsync/internal/watch"
)

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Continuously sync: react to local edits and poll Notion for remote ones",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "debounce",
				Usage: "Quiet period after a local edit before syncing (overrides config)",
			},
			&cli.DurationFlag{
				Name:  "poll",
				Usage: "Remote poll interval; 0 disables polling (overrides config)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			e, err := buildEnv(cmd)
			if err != nil {
				return err
			}
			svc, err := e.service()
			if err != nil {
				return err
			}

			debounce := e.cfg.Watch.Debounce
			if cmd.IsSet("debounce") {
				debounce = cmd.Duration("debounce")
			}
			pollInterval := e.cfg.Watch.PollInterval
			if cmd.IsSet("poll") {
				pollInterval = cmd.Duration("poll")
			}

			watcher, err := watch.NewWatcher(e.baseDir, debounce)
			if err != nil {
				return err
			}

			var poller *watch.Poller
			if pollInterval > 0 {
				remote, err := e.notion()
				if err != nil {
					return err
				}
				poller = watch.NewPoller(remote, e.store, pollInterval)
			}

			fmt.Println(ui.Info(fmt.Sprintf("watching %s (ctrl+c to stop)", e.baseDir)))

			err = watch.NewService(svc, watcher, poller).Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}
