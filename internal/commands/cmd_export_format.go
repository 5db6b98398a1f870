package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/hunk/internal/core/annotation"
	"github.com/hay-kot/hunk/internal/core/diffmodel"
)

const sampleDiff = `diff --git a/handler.go b/handler.go
--- a/handler.go
+++ b/handler.go
@@ -10,3 +10,6 @@ func handle(r *Request) error {
 	req := r.Body
+	if req == nil {
+		return errNilBody
+	}
 	return process(req)
 }
`

type ExportFormatCmd struct {
	flags  *Flags
	format string
}

// NewExportFormatCmd creates a new export-format command.
func NewExportFormatCmd(flags *Flags) *ExportFormatCmd {
	return &ExportFormatCmd{flags: flags}
}

// Register adds the export-format command to the application.
func (cmd *ExportFormatCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "export-format",
		Usage:     "Print a sample annotation export",
		UsageText: "hunk export-format [--format json|yaml|markdown]",
		Description: `Prints an export of one sample annotation so tools that consume
annotation files can see the schema. JSON and YAML exports can be loaded
back with --import.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Usage:       "export format (json, yaml, markdown)",
				Value:       string(annotation.FormatJSON),
				Destination: &cmd.format,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *ExportFormatCmd) run(_ context.Context, c *cli.Command) error {
	format, err := annotation.ParseFormat(cmd.format)
	if err != nil {
		return err
	}

	data, err := sampleExport(format)
	if err != nil {
		return err
	}
	_, err = c.Root().Writer.Write(data)
	return err
}

func sampleExport(format annotation.Format) ([]byte, error) {
	m, warnings := diffmodel.Build(sampleDiff, diffmodel.Options{})
	if len(warnings) > 0 {
		return nil, fmt.Errorf("sample diff: %w", warnings[0])
	}

	f := &m.Files[0]
	store := annotation.NewStore(0)
	if _, err := store.Add(annotation.AnchorAt(f, &f.Hunks[0], 1), "fix null check: return a typed error"); err != nil {
		return nil, err
	}

	return store.Export(format, annotation.ExportOptions{Target: "HEAD~1..HEAD", Model: m})
}
