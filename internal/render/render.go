// Package render produces the terminal output for interpretations and
// conversion results. Columns are aligned by visual width so wide
// runes in displays do not skew the table.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/tokenlens/tokenlens/core/format"
)

// Styles holds the lipgloss styles used for terminal output.
type Styles struct {
	Header  lipgloss.Style
	Format  lipgloss.Style
	Path    lipgloss.Style
	Strong  lipgloss.Style
	Weak    lipgloss.Style
	Note    lipgloss.Style
	NoColor bool
}

// DefaultStyles returns the standard color scheme.
func DefaultStyles() Styles {
	return Styles{
		Header: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Format: lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		Path:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Strong: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Weak:   lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Note:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true),
	}
}

// PlainStyles returns styles that emit no escape sequences, for piped
// output and tests.
func PlainStyles() Styles {
	return Styles{
		Header: lipgloss.NewStyle(),
		Format: lipgloss.NewStyle(),
		Path:   lipgloss.NewStyle(),
		Strong: lipgloss.NewStyle(),
		Weak:   lipgloss.NewStyle(),
		Note:   lipgloss.NewStyle(),

		NoColor: true,
	}
}

// Renderer writes human-readable result tables.
type Renderer struct {
	w      io.Writer
	styles Styles
}

// New returns a Renderer writing to w.
func New(w io.Writer, styles Styles) *Renderer {
	return &Renderer{w: w, styles: styles}
}

// Interpretations prints the recognized readings of the input, one per
// line, highest confidence first.
func (r *Renderer) Interpretations(in []format.Interpretation) {
	if len(in) == 0 {
		fmt.Fprintln(r.w, "no interpretation")
		return
	}
	idWidth := 0
	for _, it := range in {
		if w := runewidth.StringWidth(it.Format); w > idWidth {
			idWidth = w
		}
	}
	for _, it := range in {
		conf := fmt.Sprintf("%3.0f%%", it.Confidence*100)
		confStyle := r.styles.Weak
		if it.Confidence >= 0.8 {
			confStyle = r.styles.Strong
		}
		line := fmt.Sprintf("%s  %s  %s",
			r.styles.Format.Render(pad(it.Format, idWidth)),
			confStyle.Render(conf),
			it.Description)
		fmt.Fprintln(r.w, strings.TrimRight(line, " "))
	}
}

// Conversions prints reachable representations grouped under a header,
// in the order they were discovered.
func (r *Renderer) Conversions(convs []format.Conversion) {
	if len(convs) == 0 {
		return
	}
	idWidth := 0
	for _, c := range convs {
		if w := runewidth.StringWidth(c.TargetFormat); w > idWidth {
			idWidth = w
		}
	}
	fmt.Fprintln(r.w, r.styles.Header.Render("representations"))
	for _, c := range convs {
		display := c.Display
		if display == "" {
			display = c.Value.String()
		}
		line := fmt.Sprintf("  %s  %s",
			r.styles.Format.Render(pad(c.TargetFormat, idWidth)),
			display)
		if c.Lossy {
			line += "  " + r.styles.Note.Render("(lossy)")
		}
		if len(c.Path) > 1 {
			line += "  " + r.styles.Path.Render("via "+strings.Join(c.Path, " > "))
		}
		fmt.Fprintln(r.w, strings.TrimRight(line, " "))
	}
}

// Infos prints the format catalog.
func (r *Renderer) Infos(infos []format.Info) {
	idWidth := 0
	for _, info := range infos {
		if w := runewidth.StringWidth(info.ID); w > idWidth {
			idWidth = w
		}
	}
	for _, info := range infos {
		line := fmt.Sprintf("%s  %s",
			r.styles.Format.Render(pad(info.ID, idWidth)),
			info.Description)
		if len(info.Aliases) > 0 {
			line += "  " + r.styles.Path.Render("("+strings.Join(info.Aliases, ", ")+")")
		}
		fmt.Fprintln(r.w, strings.TrimRight(line, " "))
	}
}

// Annotation prints one scanned token with its best reading.
func (r *Renderer) Annotation(text string, line, offset int, best format.Interpretation, notes []string) {
	loc := r.styles.Path.Render(fmt.Sprintf("%d:%d", line, offset))
	out := fmt.Sprintf("%s %s  %s %s", loc, text,
		r.styles.Format.Render(best.Format), best.Description)
	for _, n := range notes {
		out += "  " + r.styles.Note.Render(n)
	}
	fmt.Fprintln(r.w, strings.TrimRight(out, " "))
}

func pad(s string, width int) string {
	if w := runewidth.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
