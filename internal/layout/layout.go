// Package layout holds layout descriptors: the sizes and member offsets
// that hand-written bindings claim for native C types, per target ABI.
//
// Descriptors are either written out literally (Struct) or declared member
// by member (StructDecl) and laid out by an Engine using the target's
// natural-alignment rules, the way a C compiler lays out a struct without
// packing attributes.
package layout

import (
	"fortio.org/safecast"
)

// Engine computes descriptors from declarations for one Target.
// It is not safe for concurrent use.
type Engine struct {
	Target Target

	decls map[string]StructDecl
	cache *cache
}

// New creates a new Engine for the specified target.
func New(target Target) *Engine {
	return &Engine{
		Target: target,
		decls:  make(map[string]StructDecl, 8),
		cache:  newCache(),
	}
}

// Declare registers struct declarations. Declared structs may be used as
// member types of later or earlier declarations.
func (e *Engine) Declare(decls ...StructDecl) error {
	for _, d := range decls {
		if d.Name == "" {
			return &LayoutError{Kind: LayoutErrEmptyName}
		}
		if _, dup := e.decls[d.Name]; dup {
			return &LayoutError{Kind: LayoutErrDuplicateStruct, Struct: d.Name}
		}
		e.decls[d.Name] = d
	}
	return nil
}

type layoutState struct {
	stack []string
	index map[string]int
}

func newLayoutState() *layoutState {
	return &layoutState{index: make(map[string]int, 8)}
}

// LayoutOf computes and caches the descriptor of a declared struct.
func (e *Engine) LayoutOf(name string) (Struct, error) {
	if e.cache == nil {
		e.cache = newCache()
	}
	s, err := e.layoutOf(name, newLayoutState())
	if err != nil {
		return Struct{}, err
	}
	return s, nil
}

func (e *Engine) layoutOf(name string, state *layoutState) (Struct, *LayoutError) {
	if cached, ok := e.cache.get(name); ok {
		if cached.Err != nil {
			return Struct{}, cached.Err
		}
		return cached.Layout, nil
	}
	decl, ok := e.decls[name]
	if !ok {
		return Struct{}, &LayoutError{Kind: LayoutErrUnknownStruct, Struct: name}
	}

	if idx, ok := state.index[name]; ok {
		cycle := append(append([]string(nil), state.stack[idx:]...), name)
		err := &LayoutError{Kind: LayoutErrRecursive, Struct: name, Cycle: cycle}
		e.cache.put(name, &cacheEntry{Err: err})
		return Struct{}, err
	}

	state.index[name] = len(state.stack)
	state.stack = append(state.stack, name)
	s, err := e.structLayout(decl, state)
	state.stack = state.stack[:len(state.stack)-1]
	delete(state.index, name)

	if err != nil {
		e.cache.put(name, &cacheEntry{Err: err})
		return Struct{}, err
	}
	e.cache.put(name, &cacheEntry{Layout: s})
	return s, nil
}

func (e *Engine) structLayout(decl StructDecl, state *layoutState) (Struct, *LayoutError) {
	out := Struct{
		Name:      decl.Name,
		CType:     decl.CType,
		Headers:   append([]string(nil), decl.Headers...),
		GNUSource: decl.GNUSource,
		Fields:    make([]Field, 0, len(decl.Fields)),
	}
	if out.CType == "" {
		out.CType = "struct " + decl.Name
	}

	seen := make(map[string]struct{}, len(decl.Fields))
	size := 0
	align := 1
	for _, f := range decl.Fields {
		if f.Name == "" {
			return Struct{}, &LayoutError{Kind: LayoutErrEmptyName, Struct: decl.Name}
		}
		if _, dup := seen[f.Name]; dup {
			return Struct{}, &LayoutError{Kind: LayoutErrDuplicateField, Struct: decl.Name, Field: f.Name}
		}
		seen[f.Name] = struct{}{}

		fl, err := e.memberLayout(decl.Name, f, state)
		if err != nil {
			return Struct{}, err
		}
		size = roundUp(size, fl.Align)
		out.Fields = append(out.Fields, Field{Name: f.Name, Offset: size, Size: fl.Size, Private: f.Private})
		size += fl.Size
		align = maxInt(align, fl.Align)
	}
	out.Size = roundUp(size, align)
	out.Align = align
	return out, nil
}

func (e *Engine) memberLayout(owner string, f FieldDecl, state *layoutState) (Scalar, *LayoutError) {
	elem, err := e.typeLayout(owner, f, state)
	if err != nil {
		return Scalar{}, err
	}
	if f.Count == 0 {
		return elem, nil
	}
	n, convErr := safecast.Conv[int](f.Count)
	if convErr != nil {
		return Scalar{}, &LayoutError{Kind: LayoutErrCountConversion, Struct: owner, Field: f.Name, Err: convErr}
	}
	stride := roundUp(elem.Size, elem.Align)
	return Scalar{Size: stride * n, Align: elem.Align}, nil
}

func (e *Engine) typeLayout(owner string, f FieldDecl, state *layoutState) (Scalar, *LayoutError) {
	if s, ok := e.Target.Scalar(f.Type); ok {
		return s, nil
	}
	if _, ok := e.decls[f.Type]; !ok {
		return Scalar{}, &LayoutError{Kind: LayoutErrUnknownType, Struct: owner, Field: f.Name, Type: f.Type}
	}
	nested, err := e.layoutOf(f.Type, state)
	if err != nil {
		return Scalar{}, err
	}
	return Scalar{Size: nested.Size, Align: maxInt(1, nested.Align)}, nil
}

func roundUp(n, align int) int {
	if align <= 1 {
		return n
	}
	r := n % align
	if r == 0 {
		return n
	}
	return n + (align - r)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
