package diag

import "fmt"

// Position is a location in a compiled file. Line and Col are 1-based;
// zero means unknown.
type Position struct {
	File string `json:"file" msgpack:"file"`
	Line int    `json:"line,omitempty" msgpack:"line,omitempty"`
	Col  int    `json:"col,omitempty" msgpack:"col,omitempty"`
}

func (p Position) String() string {
	switch {
	case p.Line == 0:
		return p.File
	case p.Col == 0:
		return fmt.Sprintf("%s:%d", p.File, p.Line)
	default:
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
	}
}

type Diagnostic struct {
	Severity Severity `json:"severity" msgpack:"severity"`
	Pos      Position `json:"pos" msgpack:"pos"`
	Message  string   `json:"message" msgpack:"message"`
	// Context holds the lines that followed the diagnostic verbatim.
	Context []string `json:"context,omitempty" msgpack:"context,omitempty"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Pos, d.Severity, d.Message)
}
