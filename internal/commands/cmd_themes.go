package commands

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/hunk/internal/core/theme"
)

type ThemesCmd struct {
	flags *Flags
}

// NewThemesCmd creates a new themes command.
func NewThemesCmd(flags *Flags) *ThemesCmd {
	return &ThemesCmd{flags: flags}
}

// Register adds the themes command to the application.
func (cmd *ThemesCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "themes",
		Usage:     "List color themes",
		UsageText: "hunk themes [name]",
		Description: `Lists the built-in themes and marks the one hunk would use from the
config file and the HUNK_THEME environment variable.

Pass a theme name to print its role colors.`,
		ShellComplete: ThemeNameCompleter(),
		Action:        cmd.run,
	})
	return app
}

func (cmd *ThemesCmd) run(_ context.Context, c *cli.Command) error {
	w := c.Root().Writer

	if name := c.Args().First(); name != "" {
		t, ok := theme.Lookup(name)
		if !ok {
			return fmt.Errorf("unknown theme %q, run 'hunk themes' for the list", name)
		}
		_, err := fmt.Fprintln(w, rolesTable(t).Render())
		return err
	}

	src := theme.EnvSources("", cmd.flags.Config.Theme)
	src.DetectDark = nil
	res, _ := theme.Resolve(src)

	_, err := fmt.Fprintln(w, themesTable(res.Theme.Name).Render())
	return err
}

// themesTable lists every preset. active is marked.
func themesTable(active string) table.Writer {
	byTheme := make(map[string][]string)
	for alias, name := range theme.Aliases() {
		byTheme[name] = append(byTheme[name], alias)
	}

	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"", "NAME", "BACKGROUND", "SYNTAX", "ALIASES"})
	for _, name := range theme.Names() {
		t := theme.MustLookup(name)

		mark := ""
		if name == active {
			mark = "*"
		}
		bg := "light"
		if t.Dark {
			bg = "dark"
		}
		aliases := byTheme[name]
		slices.Sort(aliases)

		tw.AppendRow(table.Row{mark, name, bg, t.ChromaStyle, strings.Join(aliases, ", ")})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignCenter},
	})
	tw.SetStyle(table.StyleLight)
	return tw
}

func rolesTable(t theme.Theme) table.Writer {
	tw := table.NewWriter()
	tw.SetTitle(t.Name)
	tw.AppendHeader(table.Row{"ROLE", "COLOR"})
	for _, r := range theme.Roles() {
		tw.AppendRow(table.Row{r.String(), t.Hex(r)})
	}
	tw.SetStyle(table.StyleLight)
	return tw
}
