// Command docgen generates CLI reference documentation from the hunk command
// definitions. Output is written to docs/cli-reference.md.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	docs "github.com/urfave/cli-docs/v3"

	"github.com/hay-kot/hunk/internal/commands"
)

func main() {
	root := commands.NewApp(&commands.Flags{})

	md, err := docs.ToMarkdown(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error generating docs: %v\n", err)
		os.Exit(1)
	}

	outPath := "docs/cli-reference.md"
	if len(os.Args) > 1 {
		outPath = os.Args[1]
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "error creating output dir: %v\n", err)
		os.Exit(1)
	}

	header := "# CLI Reference\n\n> Generated by `go run ./cmd/docgen`. Do not edit by hand.\n\n"
	if err := os.WriteFile(outPath, []byte(header+md), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "error writing docs: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("wrote %s\n", outPath)
}
