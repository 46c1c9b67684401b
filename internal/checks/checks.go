// Package checks holds the verification cases that ship with abiverify:
// the layouts of struct stat and struct timespec, the widths of the libc
// typedefs they are built from, and the device number encoding.
package checks

import (
	"fmt"

	"abiverify/internal/cprog"
	"abiverify/internal/layout"
	"abiverify/internal/verify"
)

// Names of the built-in cases, in run order.
const (
	Stat     = "stat"
	Timespec = "timespec"
	Widths   = "abi-widths"
	Devnum   = "devnum"
)

// Names lists every built-in case.
func Names() []string {
	return []string{Stat, Timespec, Widths, Devnum}
}

// widthTypes are asserted by the abi-widths case.
var widthTypes = []string{
	"dev_t", "ino_t", "nlink_t", "mode_t", "uid_t", "gid_t",
	"off_t", "blksize_t", "blkcnt_t", "time_t", "long", "void*",
}

// Builtin returns the built-in cases for target t. Layout assertions are
// guarded by the target's architecture macro, so they only bite when the
// compiler targets t.
func Builtin(t layout.Target) ([]verify.Case, error) {
	engine, err := layout.BuiltinEngine(t)
	if err != nil {
		return nil, err
	}
	stat, err := engine.LayoutOf("stat")
	if err != nil {
		return nil, err
	}
	ts, err := engine.LayoutOf("timespec")
	if err != nil {
		return nil, err
	}
	return []verify.Case{
		verify.StructCase{Label: Stat, Layout: stat, Guard: t.Predef, FieldSizes: true},
		verify.StructCase{Label: Timespec, Layout: ts, Guard: t.Predef, FieldSizes: true},
		WidthCase(t),
		DevnumCase(),
	}, nil
}

// WidthCase asserts sizeof for the typedefs struct layouts are built from.
func WidthCase(t layout.Target) verify.ExprCase {
	c := verify.ExprCase{
		Label:    Widths,
		Includes: cprog.IncludeSpec{Headers: []string{"sys/types.h"}},
		Guard:    t.Predef,
	}
	for _, name := range widthTypes {
		s, ok := t.Scalar(name)
		if !ok {
			continue
		}
		c.Asserts = append(c.Asserts, verify.Assertion{Cond: fmt.Sprintf("sizeof(%s) == %d", name, s.Size)})
	}
	return c
}

// Select returns the cases named in names, in the order given. An unknown
// name is an error.
func Select(cases []verify.Case, names []string) ([]verify.Case, error) {
	if len(names) == 0 {
		return cases, nil
	}
	byName := make(map[string]verify.Case, len(cases))
	for _, c := range cases {
		byName[c.Name()] = c
	}
	out := make([]verify.Case, 0, len(names))
	for _, name := range names {
		c, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown case %q", name)
		}
		out = append(out, c)
	}
	return out, nil
}
