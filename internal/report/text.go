package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

var (
	passColor = color.New(color.FgGreen, color.Bold)
	failColor = color.New(color.FgRed, color.Bold)
	skipColor = color.New(color.FgYellow)
	dimColor  = color.New(color.Faint)
)

// TextOptions controls the text renderer.
type TextOptions struct {
	// Verbose prints diagnostics and timings of passing cases too.
	Verbose bool
}

// WriteText renders doc for a terminal. Colors follow color.NoColor.
func WriteText(w io.Writer, doc Document, opts TextOptions) error {
	tw := &errWriter{w: w}
	header := strings.TrimSpace(fmt.Sprintf("%s %s", doc.Meta.Tool, doc.Meta.Version))
	if doc.Meta.Target != "" {
		header += "  target " + doc.Meta.Target
	}
	if doc.Meta.Compiler != "" {
		header += "  cc " + strings.TrimSpace(doc.Meta.Compiler+" "+doc.Meta.CompilerVersion)
	}
	tw.printf("%s\n", header)

	width := 0
	for _, e := range doc.Entries {
		width = max(width, runewidth.StringWidth(e.Case))
	}
	for _, e := range doc.Entries {
		name := runewidth.FillRight(e.Case, width)
		switch {
		case e.Success:
			tw.printf("  %s  %s  %s\n", passColor.Sprint("PASS"), name, dimColor.Sprintf("%.1fms", e.Timings.TotalMS))
		case e.Skipped:
			tw.printf("  %s  %s\n", skipColor.Sprint("SKIP"), name)
		default:
			tw.printf("  %s  %s  %s\n", failColor.Sprint("FAIL"), name, e.Cause)
		}
		if (!e.Success && !e.Skipped) || opts.Verbose {
			for _, line := range e.Diagnostics {
				tw.printf("        %s\n", line)
			}
		}
		if opts.Verbose {
			for _, p := range e.Timings.Phases {
				tw.printf("        %s\n", dimColor.Sprintf("%-10s %7.2f ms", p.Name, p.DurationMS))
			}
		}
	}

	s := doc.Summary
	summary := fmt.Sprintf("%d passed, %d failed, %d skipped in %.0fms", s.Passed, s.Failed, s.Skipped, doc.ElapsedMS)
	if s.OK() {
		tw.printf("%s\n", passColor.Sprint(summary))
	} else {
		tw.printf("%s\n", failColor.Sprint(summary))
	}
	return tw.err
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
