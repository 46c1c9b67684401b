package toolchain

import (
	"fmt"
	"strings"
)

// CompilationFailure reports a compiler run that exited non-zero.
// Diagnostics is the compiler's stderr, byte for byte.
type CompilationFailure struct {
	Command     string
	ExitCode    int
	Diagnostics string
}

func (e *CompilationFailure) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := strings.TrimSpace(e.Diagnostics)
	if msg == "" {
		return fmt.Sprintf("compilation failed with exit code %d: %s", e.ExitCode, e.Command)
	}
	return fmt.Sprintf("compilation failed with exit code %d:\n%s", e.ExitCode, e.Diagnostics)
}

// Lines returns the diagnostics split into lines, without the trailing
// empty line.
func (e *CompilationFailure) Lines() []string {
	if e == nil {
		return nil
	}
	return splitLines(e.Diagnostics)
}

// ExecutionFailure reports a compiled program that exited non-zero.
type ExecutionFailure struct {
	Path     string
	ExitCode int
	Output   string
}

func (e *ExecutionFailure) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := strings.TrimSpace(e.Output)
	if msg == "" {
		return fmt.Sprintf("%s exited with code %d", e.Path, e.ExitCode)
	}
	return fmt.Sprintf("%s exited with code %d:\n%s", e.Path, e.ExitCode, e.Output)
}

// Lines returns the program output split into lines.
func (e *ExecutionFailure) Lines() []string {
	if e == nil {
		return nil
	}
	return splitLines(e.Output)
}

func splitLines(s string) []string {
	s = strings.TrimRight(s, "\r\n")
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, "\r")
	}
	return lines
}
