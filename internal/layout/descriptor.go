package layout

// Field is one member of a layout descriptor.
type Field struct {
	Name   string
	Offset int
	Size   int
	// Private members (padding, reserved words) are laid out but not
	// asserted: their names are not part of the C API.
	Private bool
}

// Struct is a layout descriptor: the claimed size and member offsets of a
// native C type. Headers and GNUSource describe how to reach the type
// from C.
type Struct struct {
	Name      string // descriptor name, e.g. "timespec64"
	CType     string // C spelling, e.g. "struct timespec"
	Headers   []string
	GNUSource bool
	Fields    []Field
	Size      int
	Align     int // 0 when unknown
}

// Field returns the named member.
func (s Struct) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Public returns the members that are part of the C API, in order.
func (s Struct) Public() []Field {
	out := make([]Field, 0, len(s.Fields))
	for _, f := range s.Fields {
		if !f.Private {
			out = append(out, f)
		}
	}
	return out
}

// Validate checks that the descriptor is well formed. It does not check
// that offsets are consistent with the size: that is what the compiler is
// asked to judge.
func (s Struct) Validate() error {
	if s.Name == "" {
		return &LayoutError{Kind: LayoutErrEmptyName}
	}
	if s.Size < 0 {
		return &LayoutError{Kind: LayoutErrNegative, Struct: s.Name, Value: int64(s.Size)}
	}
	seen := make(map[string]struct{}, len(s.Fields))
	for _, f := range s.Fields {
		if f.Name == "" {
			return &LayoutError{Kind: LayoutErrEmptyName, Struct: s.Name}
		}
		if _, dup := seen[f.Name]; dup {
			return &LayoutError{Kind: LayoutErrDuplicateField, Struct: s.Name, Field: f.Name}
		}
		seen[f.Name] = struct{}{}
		if f.Offset < 0 {
			return &LayoutError{Kind: LayoutErrNegative, Struct: s.Name, Field: f.Name, Value: int64(f.Offset)}
		}
		if f.Size < 0 {
			return &LayoutError{Kind: LayoutErrNegative, Struct: s.Name, Field: f.Name, Value: int64(f.Size)}
		}
	}
	return nil
}

// FieldDecl declares a struct member by C type. Count > 0 makes it a
// fixed array of Count elements.
type FieldDecl struct {
	Name    string
	Type    string
	Count   uint32
	Private bool
}

// StructDecl declares a C struct member by member; Engine.LayoutOf turns
// it into a Struct for a given Target.
type StructDecl struct {
	Name      string
	CType     string
	Headers   []string
	GNUSource bool
	Fields    []FieldDecl
}
