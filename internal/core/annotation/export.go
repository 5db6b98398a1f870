package annotation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hay-kot/hunk/internal/core/diffmodel"
)

// Format is an export encoding.
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
)

// ExportVersion is written into every machine-readable export.
const ExportVersion = 1

// maxSnippetLines bounds the diff excerpt included per markdown entry.
const maxSnippetLines = 5

// Formats lists the supported export formats.
func Formats() []Format {
	return []Format{FormatJSON, FormatYAML, FormatMarkdown}
}

// ParseFormat validates a format name. "md" and "yml" are accepted.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unknown export format %q", s)
	}
}

// Ext returns the file extension used for the format.
func (f Format) Ext() string {
	switch f {
	case FormatYAML:
		return ".yaml"
	case FormatMarkdown:
		return ".md"
	default:
		return ".json"
	}
}

// Record is the serialized form of one annotation. Ids are not exported;
// importing assigns fresh ones.
type Record struct {
	Path       string              `json:"path" yaml:"path"`
	Anchor     diffmodel.AnchorKey `json:"anchor" yaml:"anchor"`
	LineOffset *int                `json:"line_offset,omitempty" yaml:"line_offset,omitempty"`
	Context    []string            `json:"context,omitempty" yaml:"context,omitempty"`
	OldStart   int                 `json:"old_start,omitempty" yaml:"old_start,omitempty"`
	Text       string              `json:"text" yaml:"text"`
	CreatedAt  time.Time           `json:"created_at" yaml:"created_at"`
}

// Document is the envelope of a machine-readable export.
type Document struct {
	Version     int      `json:"version" yaml:"version"`
	Target      string   `json:"target,omitempty" yaml:"target,omitempty"`
	Annotations []Record `json:"annotations" yaml:"annotations"`
}

// ExportOptions adds context for the export.
type ExportOptions struct {
	// Target describes what was reviewed (a ref, range or PR).
	Target string
	// Model is used by the markdown format for line spans and snippets.
	Model *diffmodel.Model
}

// Export serializes every annotation.
func (s *Store) Export(format Format, opts ExportOptions) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(s.document(opts.Target), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
		return append(data, '\n'), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(s.document(opts.Target)); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	case FormatMarkdown:
		return s.markdown(opts), nil
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
}

func (s *Store) document(target string) Document {
	doc := Document{
		Version:     ExportVersion,
		Target:      target,
		Annotations: make([]Record, 0, len(s.items)),
	}
	for _, a := range s.items {
		c := a.clone()
		doc.Annotations = append(doc.Annotations, Record{
			Path:       c.Anchor.Path,
			Anchor:     c.Anchor.Hunk,
			LineOffset: c.Anchor.LineOffset,
			Context:    c.Anchor.Context,
			OldStart:   c.Anchor.OldStart,
			Text:       c.Text,
			CreatedAt:  c.CreatedAt,
		})
	}
	return doc
}

func (s *Store) markdown(opts ExportOptions) []byte {
	var b strings.Builder

	title := "Annotations"
	if opts.Target != "" {
		title += " for " + opts.Target
	}
	b.WriteString("# " + title + "\n\n")

	if len(s.items) == 0 {
		b.WriteString("_No annotations._\n")
		return []byte(b.String())
	}

	for _, a := range s.items {
		loc, err := Location{}, ErrAnchorUnresolved
		if opts.Model != nil {
			loc, err = s.Resolve(opts.Model, *a)
		}
		if err != nil {
			fmt.Fprintf(&b, "- %s (orphaned)\n", a.Anchor.Path)
			writeComment(&b, a.Text)
			continue
		}

		h := &opts.Model.Files[loc.File].Hunks[loc.Hunk]
		from, to := 0, len(h.Lines)-1
		if loc.Line >= 0 {
			from, to = loc.Line, loc.Line
		}
		start, end := h.Span(from, to)
		if start == end {
			fmt.Fprintf(&b, "- %s:L%d\n", a.Anchor.Path, start)
		} else {
			fmt.Fprintf(&b, "- %s:L%d-%d\n", a.Anchor.Path, start, end)
		}

		if n := to - from + 1; n > 0 && n <= maxSnippetLines {
			b.WriteString("  ```diff\n")
			for _, l := range h.Lines[from : to+1] {
				b.WriteString("  " + l.Kind.Prefix() + l.Text + "\n")
			}
			b.WriteString("  ```\n")
		}
		writeComment(&b, a.Text)
	}

	return []byte(b.String())
}

func writeComment(b *strings.Builder, text string) {
	lines := strings.Split(text, "\n")
	b.WriteString("  comment: " + lines[0] + "\n")
	for _, l := range lines[1:] {
		b.WriteString("  " + l + "\n")
	}
	b.WriteString("\n")
}

// Import decodes a JSON or YAML export and appends its annotations with
// fresh ids. Anchors and timestamps are kept verbatim. Nothing is added if
// any record is invalid.
func (s *Store) Import(data []byte) (int, error) {
	doc, err := decode(data)
	if err != nil {
		return 0, err
	}
	if doc.Version > ExportVersion {
		return 0, fmt.Errorf("unsupported export version %d", doc.Version)
	}

	imported := make([]*Annotation, 0, len(doc.Annotations))
	for i, r := range doc.Annotations {
		anchor := Anchor{
			Path:       r.Path,
			Hunk:       r.Anchor,
			LineOffset: r.LineOffset,
			Context:    r.Context,
			OldStart:   r.OldStart,
		}
		if !anchor.valid() {
			return 0, fmt.Errorf("record %d: %w", i, ErrInvalidAnchor)
		}
		text := strings.TrimSpace(r.Text)
		if text == "" {
			return 0, fmt.Errorf("record %d: %w", i, ErrEmptyText)
		}
		created := r.CreatedAt
		if created.IsZero() {
			created = s.now().UTC()
		}
		imported = append(imported, &Annotation{
			ID:        s.newID(),
			Anchor:    anchor.clone(),
			Text:      text,
			CreatedAt: created,
		})
	}

	s.items = append(s.items, imported...)
	return len(imported), nil
}

func decode(data []byte) (Document, error) {
	var doc Document

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return doc, errors.New("import: empty input")
	}

	if trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return doc, fmt.Errorf("decode json: %w", err)
		}
		return doc, nil
	}

	if err := yaml.Unmarshal(trimmed, &doc); err != nil {
		return doc, fmt.Errorf("decode yaml: %w", err)
	}
	return doc, nil
}
