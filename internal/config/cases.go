package config

import (
	"fmt"

	"fortio.org/safecast"

	"abiverify/internal/cprog"
	"abiverify/internal/layout"
	"abiverify/internal/verify"
)

// Jobs returns [suite].jobs as an int; 0 means unset.
func (c Config) Jobs() (int, error) {
	n, err := safecast.Conv[int](c.Suite.Jobs)
	if err != nil {
		return 0, fmt.Errorf("[suite].jobs: %w", err)
	}
	return n, nil
}

// Struct converts a descriptor entry into a layout.Struct.
func (s StructConfig) Struct() (layout.Struct, error) {
	out := layout.Struct{
		Name:      s.Name,
		CType:     s.CType,
		Headers:   append([]string(nil), s.Headers...),
		GNUSource: s.GNUSource,
		Fields:    make([]layout.Field, 0, len(s.Fields)),
	}
	if out.CType == "" {
		out.CType = "struct " + s.Name
	}
	size, err := toInt(s.Size, s.Name, "size")
	if err != nil {
		return layout.Struct{}, err
	}
	out.Size = size
	for _, f := range s.Fields {
		off, err := toInt(f.Offset, s.Name, f.Name+".offset")
		if err != nil {
			return layout.Struct{}, err
		}
		fsize, err := toInt(f.Size, s.Name, f.Name+".size")
		if err != nil {
			return layout.Struct{}, err
		}
		out.Fields = append(out.Fields, layout.Field{Name: f.Name, Offset: off, Size: fsize, Private: f.Private})
	}
	if err := out.Validate(); err != nil {
		return layout.Struct{}, err
	}
	return out, nil
}

func toInt(v *int64, owner, what string) (int, error) {
	if v == nil {
		return 0, fmt.Errorf("%s: missing %s", owner, what)
	}
	n, err := safecast.Conv[int](*v)
	if err != nil {
		return 0, fmt.Errorf("%s: %s: %w", owner, what, err)
	}
	return n, nil
}

// Cases returns the manifest's own cases: descriptors first, then
// assertion groups, each in file order.
func (c Config) Cases() ([]verify.Case, error) {
	out := make([]verify.Case, 0, len(c.Structs)+len(c.Asserts))
	for _, s := range c.Structs {
		st, err := s.Struct()
		if err != nil {
			return nil, err
		}
		out = append(out, verify.StructCase{Layout: st, Guard: s.Guard, FieldSizes: s.FieldSizes})
	}
	for _, a := range c.Asserts {
		ec := verify.ExprCase{
			Label:    a.Name,
			Includes: cprog.IncludeSpec{Headers: a.Headers, GNUSource: a.GNUSource},
			Guard:    a.Guard,
		}
		for _, chk := range a.Checks {
			ec.Asserts = append(ec.Asserts, verify.Assertion{Cond: chk.Cond, Message: chk.Message})
		}
		out = append(out, ec)
	}
	return out, nil
}
