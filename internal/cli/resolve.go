package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/docsync/docsync/internal/model"
	"github.com/docsync/docsync/internal/sync"
	"github.com/docsync/docsync/internal/ui"
	"github.com/docsync/docsync/internal/ui/tui"
)

func resolveCommand() *cli.Command {
	return &cli.Command{
		Name:  "resolve",
		Usage: "Resolve conflicted pairs interactively",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "no-tui",
				Usage: "Use plain prompts instead of the full-screen picker",
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

			conflicted, err := svc.ListConflicts()
			if err != nil {
				return err
			}
			if len(conflicted) == 0 {
				fmt.Println(ui.StatusSuccess("no conflicts"))
				return nil
			}

			items, err := buildConflictItems(ctx, e, conflicted)
			if err != nil {
				return err
			}

			var resolutions []tui.PairResolution
			if ui.IsInteractive() && !cmd.Bool("no-tui") {
				resolutions, err = runResolveTUI(items)
			} else {
				resolutions, err = newConflictPrompter(nil, nil).promptAll(items)
			}
			if err != nil {
				return err
			}

			return applyResolutions(ctx, e, svc, items, resolutions)
		},
	}
}

// buildConflictItems reads both sides of each conflicted pair and computes
// the diffs shown during resolution.
func buildConflictItems(ctx context.Context, e *env, pairs []model.SyncPair) ([]tui.ConflictItem, error) {
	remote, err := e.notion()
	if err != nil {
		return nil, err
	}

	items := make([]tui.ConflictItem, 0, len(pairs))
	for _, pair := range pairs {
		localDoc, err := e.local.Read(ctx, pair.LocalPath)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", pair.LocalPath, err)
		}
		remoteDoc, err := remote.Read(ctx, pair.RemoteURI)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", pair.RemoteURI, err)
		}

		hunks := sync.ComputeDiff(
			strings.Split(localDoc.Content, "\n"),
			strings.Split(remoteDoc.Content, "\n"),
		)
		items = append(items, tui.ConflictItem{
			Pair:      pair,
			LocalDoc:  localDoc,
			RemoteDoc: remoteDoc,
			Hunks:     hunks,
			Summary:   sync.Summarize(hunks),
		})
	}
	return items, nil
}

func runResolveTUI(items []tui.ConflictItem) ([]tui.PairResolution, error) {
	final, err := tui.Run(tui.NewResolveListModel(items))
	if err != nil {
		return nil, err
	}

	m, ok := final.(tui.ResolveListModel)
	if !ok {
		return nil, fmt.Errorf("unexpected model type %T", final)
	}
	result := m.Result()
	if result.Action != tui.ResolveActionApply {
		fmt.Println(ui.StatusSkipped("resolution cancelled"))
		return nil, nil
	}
	return result.Resolutions, nil
}

// applyResolutions applies each chosen strategy through the sync service so
// state changes are persisted. Manual merges write a conflict-marked file
// and leave the pair conflicted for a later explicit push.
func applyResolutions(ctx context.Context, e *env, svc *sync.Service, items []tui.ConflictItem, resolutions []tui.PairResolution) error {
	byID := make(map[string]tui.ConflictItem, len(items))
	for _, item := range items {
		byID[item.Pair.ID] = item
	}

	for _, res := range resolutions {
		switch res.Strategy {
		case sync.UseLocal:
			if _, err := svc.SyncFile(ctx, res.LocalPath, sync.DirectionPush); err != nil {
				return err
			}
			fmt.Println(ui.StatusSuccess(fmt.Sprintf("%s: kept local", res.LocalPath)))

		case sync.UseRemote:
			if _, err := svc.SyncFile(ctx, res.LocalPath, sync.DirectionPull); err != nil {
				return err
			}
			fmt.Println(ui.StatusSuccess(fmt.Sprintf("%s: kept remote", res.LocalPath)))

		case sync.MergeManual:
			item, ok := byID[res.PairID]
			if !ok {
				continue
			}
			merged := item.LocalDoc
			merged.Content = svc.Resolver().FormatMergeContent(item.LocalDoc, item.RemoteDoc)
			if err := e.local.Write(ctx, res.LocalPath, merged); err != nil {
				return err
			}
			fmt.Println(ui.StatusConflict(fmt.Sprintf(
				"%s: conflict markers written; edit the file, then run 'docsync push %s'",
				res.LocalPath, res.LocalPath)))
		}
	}
	return nil
}

// conflictPrompter handles plain-text conflict resolution for non-TTY runs.
type conflictPrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newConflictPrompter(in io.Reader, out io.Writer) *conflictPrompter {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &conflictPrompter{in: bufio.NewReader(in), out: out}
}

// promptAll walks every conflict, showing a bounded diff and reading a
// numbered choice.
func (p *conflictPrompter) promptAll(items []tui.ConflictItem) ([]tui.PairResolution, error) {
	fmt.Fprintf(p.out, "\n%d conflict(s) need resolution.\n\n", len(items))

	var resolutions []tui.PairResolution
	for i, item := range items {
		fmt.Fprintf(p.out, "--- Conflict %d of %d: %s ---\n", i+1, len(items), item.Pair.LocalPath)
		fmt.Fprintf(p.out, "Remote: %s\n", item.Pair.RemoteURI)
		fmt.Fprintf(p.out, "Changes: %s\n\n", item.DiffSummary())
		fmt.Fprintln(p.out, sync.FormatUnified(item.Hunks, "LOCAL", "REMOTE", 20))

		strategy, skip, err := p.promptChoice(item)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", item.Pair.LocalPath, err)
		}
		if skip {
			fmt.Fprintf(p.out, "%s\n\n", ui.StatusSkipped("skipped"))
			continue
		}

		resolutions = append(resolutions, tui.PairResolution{
			PairID:    item.Pair.ID,
			LocalPath: item.Pair.LocalPath,
			Strategy:  strategy,
		})
		fmt.Fprintf(p.out, "%s\n\n", ui.StatusSuccess(fmt.Sprintf("chose %s", strategy)))
	}
	return resolutions, nil
}

func (p *conflictPrompter) promptChoice(item tui.ConflictItem) (sync.Strategy, bool, error) {
	fmt.Fprintln(p.out, "How would you like to resolve this conflict?")
	fmt.Fprintln(p.out, "  1. Use local version (overwrite Notion)")
	fmt.Fprintln(p.out, "  2. Use remote version (overwrite local file)")
	fmt.Fprintln(p.out, "  3. Manual merge (write conflict markers)")
	fmt.Fprintln(p.out, "  4. Skip this pair")
	fmt.Fprintln(p.out, "  5. Show full local content")
	fmt.Fprintln(p.out, "  6. Show full remote content")
	fmt.Fprint(p.out, "\nEnter choice [1-6]: ")

	for {
		response, err := p.in.ReadString('\n')
		if err != nil {
			return "", false, err
		}

		choice, err := strconv.Atoi(strings.TrimSpace(response))
		if err != nil || choice < 1 || choice > 6 {
			fmt.Fprint(p.out, "Invalid choice. Enter 1-6: ")
			continue
		}

		switch choice {
		case 1:
			return sync.UseLocal, false, nil
		case 2:
			return sync.UseRemote, false, nil
		case 3:
			return sync.MergeManual, false, nil
		case 4:
			return "", true, nil
		case 5:
			p.showFullContent("LOCAL", item.LocalDoc.Content)
			fmt.Fprint(p.out, "\nEnter choice [1-6]: ")
		case 6:
			p.showFullContent("REMOTE", item.RemoteDoc.Content)
			fmt.Fprint(p.out, "\nEnter choice [1-6]: ")
		}
	}
}

func (p *conflictPrompter) showFullContent(label, content string) {
	fmt.Fprintf(p.out, "\n=== %s CONTENT ===\n", label)
	fmt.Fprintln(p.out, strings.Repeat("-", 50))
	for i, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "%4d | %s\n", i+1, line)
	}
	fmt.Fprintln(p.out, strings.Repeat("-", 50))
}
