package commands

import (
	"context"
	"fmt"
	"slices"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/hunk/internal/core/theme"
)

// ThemeNameCompleter suggests theme names and aliases as positional
// completions.
//
// When the user's last typed argument starts with "-", it falls back to the
// default flag completion behavior.
func ThemeNameCompleter() cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		if args := cmd.Args(); args.Present() {
			last := args.Slice()[args.Len()-1]
			if len(last) > 0 && last[0] == '-' {
				cli.DefaultCompleteWithFlags(ctx, cmd)
				return
			}
		}

		w := cmd.Root().Writer
		for _, name := range themeCompletions() {
			_, _ = fmt.Fprintln(w, name)
		}
	}
}

func themeCompletions() []string {
	names := theme.Names()
	for alias := range theme.Aliases() {
		names = append(names, alias)
	}
	slices.Sort(names)
	return names
}
