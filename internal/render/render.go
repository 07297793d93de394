package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-isatty"
)

const wordWrap = 120

// Renderer prints markdown documents to an output stream.
type Renderer struct {
	out io.Writer
	tr  *glamour.TermRenderer
}

// New returns a Renderer writing to out. Terminals get the styled output;
// anything else gets the plain style.
func New(out io.Writer) (*Renderer, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(wordWrap)}
	if isTerminal(out) {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle("notty"))
	}
	tr, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating markdown renderer: %w", err)
	}
	return &Renderer{out: out, tr: tr}, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Markdown renders md and writes it out.
func (r *Renderer) Markdown(md string) error {
	s, err := r.tr.Render(md)
	if err != nil {
		return fmt.Errorf("rendering output: %w", err)
	}
	_, err = io.WriteString(r.out, s)
	return err
}

// Table returns a markdown table. Columns whose header starts with a space
// are right-aligned.
func Table(headers []string, rows [][]string) string {
	var b strings.Builder
	names := make([]string, len(headers))
	align := make([]string, len(headers))
	for i, h := range headers {
		if strings.HasPrefix(h, " ") {
			align[i] = "---:"
		} else {
			align[i] = "---"
		}
		names[i] = escape(strings.TrimSpace(h))
	}
	b.WriteString("| " + strings.Join(names, " | ") + " |\n")
	b.WriteString("|" + strings.Join(align, "|") + "|\n")
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = escape(c)
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	return b.String()
}

func escape(s string) string {
	return strings.NewReplacer("|", `\|`, "*", `\*`, "_", `\_`, "\n", " ").Replace(s)
}
