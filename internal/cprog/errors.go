package cprog

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAlreadyHasEntryPoint is returned when a second entry point is opened.
	ErrAlreadyHasEntryPoint = errors.New("program already has an entry point")
	// ErrNoOpenEntryPoint is returned when closing an entry point that was never opened.
	ErrNoOpenEntryPoint = errors.New("program has no open entry point")
	// ErrAlreadyCompiled is returned when a program is compiled twice.
	ErrAlreadyCompiled = errors.New("program already compiled")
)

// MissingHeaderError reports a header absent from every search path.
type MissingHeaderError struct {
	Header   string
	Searched []string
}

func (e *MissingHeaderError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if len(e.Searched) == 0 {
		return fmt.Sprintf("include header %q could not be found; the compiler reported no search paths", e.Header)
	}
	return fmt.Sprintf("include header %q could not be found; searched in %s", e.Header, strings.Join(e.Searched, ", "))
}
