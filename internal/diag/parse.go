package diag

import (
	"regexp"
	"strconv"
	"strings"
)

// file:line[:col]: severity: message
var lineRE = regexp.MustCompile(`^(.+?):(\d+)(?::(\d+))?: (fatal error|error|warning|note): (.*)$`)

// driver and linker errors carry no position: "cc1: error: ...".
var toolRE = regexp.MustCompile(`^([^\s:]+): (fatal error|error|warning|note): (.*)$`)

const staticAssertPrefix = "static assertion failed: "

// Parse splits compiler output into diagnostics. Lines that do not start a
// diagnostic are kept as context of the previous one; leading unmatched
// lines are dropped.
func Parse(lines []string) []Diagnostic {
	var out []Diagnostic
	for _, line := range lines {
		if d, ok := parseLine(line); ok {
			out = append(out, d)
			continue
		}
		if len(out) > 0 && line != "" {
			last := &out[len(out)-1]
			last.Context = append(last.Context, line)
		}
	}
	return out
}

func parseLine(line string) (Diagnostic, bool) {
	if m := lineRE.FindStringSubmatch(line); m != nil {
		sev, _ := parseSeverity(m[4])
		d := Diagnostic{Severity: sev, Pos: Position{File: m[1]}, Message: m[5]}
		d.Pos.Line, _ = strconv.Atoi(m[2])
		if m[3] != "" {
			d.Pos.Col, _ = strconv.Atoi(m[3])
		}
		return d, true
	}
	if m := toolRE.FindStringSubmatch(line); m != nil {
		sev, _ := parseSeverity(m[2])
		return Diagnostic{Severity: sev, Pos: Position{File: m[1]}, Message: m[3]}, true
	}
	return Diagnostic{}, false
}

// FailedAssertions returns the messages of failed static assertions, with
// the surrounding quotes removed.
func FailedAssertions(diags []Diagnostic) []string {
	var out []string
	for _, d := range diags {
		if d.Severity < SevError || !strings.HasPrefix(d.Message, staticAssertPrefix) {
			continue
		}
		msg := strings.TrimPrefix(d.Message, staticAssertPrefix)
		if unq, err := strconv.Unquote(msg); err == nil {
			msg = unq
		}
		out = append(out, msg)
	}
	return out
}
