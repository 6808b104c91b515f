package diagnostics

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// ColorEnabled resolves a color mode (auto, always, never) for w.
// In auto mode only terminals get colors, and NO_COLOR turns them off.
func ColorEnabled(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Printer renders reports as human readable text.
type Printer struct {
	w       io.Writer
	phase   *color.Color
	code    *color.Color
	pos     *color.Color
	summary *color.Color
}

func NewPrinter(w io.Writer, mode string) *Printer {
	p := &Printer{
		w:       w,
		phase:   color.New(color.FgCyan, color.Bold),
		code:    color.New(color.FgRed, color.Bold),
		pos:     color.New(color.Faint),
		summary: color.New(color.Bold),
	}
	enabled := ColorEnabled(mode, w)
	for _, c := range []*color.Color{p.phase, p.code, p.pos, p.summary} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Print writes every section of r, then a one-line summary.
func (p *Printer) Print(r *Report) {
	for _, s := range r.Sections {
		fmt.Fprintf(p.w, "%s\n", p.phase.Sprintf("%s errors:", s.Phase))
		for _, e := range s.Errors {
			pos := e.Position()
			if pos != "" {
				pos = p.pos.Sprint(pos) + " "
			}
			fmt.Fprintf(p.w, "  %s%s %s%s\n", pos, p.code.Sprintf("[%s]", e.Code), e.Location(), e.Message)
		}
	}
	n := len(r.Errors())
	switch n {
	case 0:
		fmt.Fprintln(p.w, p.summary.Sprint("no errors"))
	case 1:
		fmt.Fprintln(p.w, p.summary.Sprint("1 error"))
	default:
		fmt.Fprintln(p.w, p.summary.Sprintf("%d errors", n))
	}
}
