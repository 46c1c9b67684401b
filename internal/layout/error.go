package layout

import (
	"fmt"
	"strings"
)

// LayoutErrorKind enumerates descriptor and layout calculation errors.
type LayoutErrorKind uint8

const (
	// LayoutErrUnknownType indicates a field type that is neither a scalar
	// of the target nor a declared struct.
	LayoutErrUnknownType LayoutErrorKind = iota + 1
	// LayoutErrRecursive indicates a struct that contains itself by value.
	LayoutErrRecursive
	LayoutErrUnknownStruct
	LayoutErrDuplicateStruct
	LayoutErrDuplicateField
	LayoutErrEmptyName
	LayoutErrNegative
	LayoutErrCountConversion
)

// LayoutError represents an invalid descriptor or a failed layout.
type LayoutError struct {
	Kind   LayoutErrorKind
	Struct string
	Field  string
	Type   string   // for LayoutErrUnknownType
	Cycle  []string // for LayoutErrRecursive
	Value  int64    // for LayoutErrNegative
	Err    error    // for LayoutErrCountConversion
}

func (e *LayoutError) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case LayoutErrUnknownType:
		return fmt.Sprintf("%s.%s: unknown type %q", e.Struct, e.Field, e.Type)
	case LayoutErrRecursive:
		return fmt.Sprintf("struct %s contains itself by value (cycle: %s)", e.Struct, strings.Join(e.Cycle, " -> "))
	case LayoutErrUnknownStruct:
		return fmt.Sprintf("unknown struct %q", e.Struct)
	case LayoutErrDuplicateStruct:
		return fmt.Sprintf("struct %q declared twice", e.Struct)
	case LayoutErrDuplicateField:
		return fmt.Sprintf("%s: field %q declared twice", e.Struct, e.Field)
	case LayoutErrEmptyName:
		if e.Struct == "" {
			return "descriptor has no name"
		}
		return fmt.Sprintf("%s: field has no name", e.Struct)
	case LayoutErrNegative:
		if e.Field == "" {
			return fmt.Sprintf("%s: negative size %d", e.Struct, e.Value)
		}
		return fmt.Sprintf("%s.%s: negative offset or size %d", e.Struct, e.Field, e.Value)
	case LayoutErrCountConversion:
		return fmt.Sprintf("%s.%s: array count conversion error: %v", e.Struct, e.Field, e.Err)
	default:
		return fmt.Sprintf("layout error kind=%d struct %s", e.Kind, e.Struct)
	}
}

func (e *LayoutError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
