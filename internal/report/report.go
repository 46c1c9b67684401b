// Package report renders suite results as colored text, JSON or
// MessagePack, and reads the machine formats back.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"abiverify/internal/diag"
	"abiverify/internal/observ"
	"abiverify/internal/suite"
)

// Format selects a renderer.
type Format string

const (
	FormatText    Format = "text"
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

// ParseFormat accepts a format name in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatMsgpack:
		return f, nil
	case "":
		return FormatText, nil
	}
	return "", fmt.Errorf("unsupported format %q (must be text, json or msgpack)", s)
}

// Meta describes the run a document reports on.
type Meta struct {
	Tool            string `json:"tool" msgpack:"tool"`
	Version         string `json:"version" msgpack:"version"`
	Target          string `json:"target" msgpack:"target"`
	Compiler        string `json:"compiler" msgpack:"compiler"`
	CompilerVersion string `json:"compiler_version,omitempty" msgpack:"compiler_version,omitempty"`
	GeneratedAt     string `json:"generated_at,omitempty" msgpack:"generated_at,omitempty"`
}

// Entry is the serialized verdict of one case.
type Entry struct {
	Case             string            `json:"case" msgpack:"case"`
	Success          bool              `json:"success" msgpack:"success"`
	Skipped          bool              `json:"skipped,omitempty" msgpack:"skipped,omitempty"`
	Stage            string            `json:"stage" msgpack:"stage"`
	Cause            string            `json:"cause,omitempty" msgpack:"cause,omitempty"`
	Diagnostics      []string          `json:"diagnostics,omitempty" msgpack:"diagnostics,omitempty"`
	FailedAssertions []string          `json:"failed_assertions,omitempty" msgpack:"failed_assertions,omitempty"`
	Compiler         []diag.Diagnostic `json:"compiler,omitempty" msgpack:"compiler,omitempty"`
	Timings          observ.Report     `json:"timings" msgpack:"timings"`
}

// Document is a complete report.
type Document struct {
	Meta      Meta          `json:"meta" msgpack:"meta"`
	Summary   suite.Summary `json:"summary" msgpack:"summary"`
	ElapsedMS float64       `json:"elapsed_ms" msgpack:"elapsed_ms"`
	Entries   []Entry       `json:"entries" msgpack:"entries"`
}

// Build converts a suite result into a document.
func Build(meta Meta, res suite.Result) Document {
	doc := Document{
		Meta:      meta,
		Summary:   res.Summary(),
		ElapsedMS: float64(res.Elapsed) / float64(time.Millisecond),
		Entries:   make([]Entry, 0, len(res.Verdicts)),
	}
	for _, v := range res.Verdicts {
		e := Entry{
			Case:        v.Case,
			Success:     v.Success,
			Stage:       v.Stage.String(),
			Diagnostics: v.Diagnostics,
			Timings:     v.Timings,
		}
		if !v.Success {
			e.Skipped = errors.Is(v.Err, suite.ErrSkipped)
			e.Cause = v.Cause()
			e.FailedAssertions = v.FailedAssertions()
			bag := diag.FromLines(v.Diagnostics)
			bag.Dedup()
			e.Compiler = bag.Items()
		}
		doc.Entries = append(doc.Entries, e)
	}
	return doc
}

// Write renders doc in format f.
func Write(w io.Writer, f Format, doc Document, opts TextOptions) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatMsgpack:
		return msgpack.NewEncoder(w).Encode(doc)
	case FormatText, "":
		return WriteText(w, doc, opts)
	}
	return fmt.Errorf("unsupported format %q", f)
}

// Read decodes a document written in a machine format.
func Read(r io.Reader, f Format) (Document, error) {
	var doc Document
	switch f {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return Document{}, fmt.Errorf("decode json report: %w", err)
		}
	case FormatMsgpack:
		if err := msgpack.NewDecoder(r).Decode(&doc); err != nil {
			return Document{}, fmt.Errorf("decode msgpack report: %w", err)
		}
	default:
		return Document{}, fmt.Errorf("cannot read %q reports", f)
	}
	return doc, nil
}
