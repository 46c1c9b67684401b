// Package cprog assembles small C translation units out of typed
// directives and compiles them with a toolchain.Toolchain.
//
// A Program is append-only. Includes are checked against the compiler's
// system search paths when they are added, so a missing header fails the
// program before any compiler run. Preprocessor conditionals (IfDef/Else/Endif)
// are passed through unchecked; balancing them is the caller's job.
package cprog

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"abiverify/internal/toolchain"
)

// GNUSourceMacro enables GNU extensions in glibc headers.
const GNUSourceMacro = "_GNU_SOURCE"

// SearchPaths provides the compiler's include search list.
// *toolchain.Resolver and toolchain.SearchPathSet implement it.
type SearchPaths interface {
	Resolve(ctx context.Context) (toolchain.SearchPathSet, error)
}

// IncludeSpec is a group of headers plus the feature macro they need.
type IncludeSpec struct {
	Headers   []string
	GNUSource bool
}

// Program is a C translation unit under construction.
type Program struct {
	paths     SearchPaths
	items     []Directive
	hasEntry  bool
	entryOpen bool
	compiled  bool
	artifact  *toolchain.Artifact
}

// New returns an empty program that checks includes against paths.
func New(paths SearchPaths) *Program {
	return &Program{paths: paths}
}

// AddInclude appends `#include <header>` once header is known to exist in
// one of the compiler's search paths.
func (p *Program) AddInclude(ctx context.Context, header string) error {
	var searched toolchain.SearchPathSet
	if p.paths != nil {
		paths, err := p.paths.Resolve(ctx)
		if err != nil {
			return fmt.Errorf("resolve include paths for %q: %w", header, err)
		}
		searched = paths
	}
	log := Logger()
	found := false
	for _, dir := range searched {
		if toolchain.Contains(dir, header) {
			log.Debug("found header", zap.String("header", header), zap.String("dir", dir))
			found = true
			break
		}
		log.Debug("header not in search path", zap.String("header", header), zap.String("dir", dir))
	}
	if !found {
		return &MissingHeaderError{Header: header, Searched: append([]string(nil), searched...)}
	}
	p.items = append(p.items, Directive{Kind: KindInclude, Name: header})
	return nil
}

// AddIncludes adds every header in order, stopping at the first failure.
func (p *Program) AddIncludes(ctx context.Context, headers ...string) error {
	for _, h := range headers {
		if err := p.AddInclude(ctx, h); err != nil {
			return err
		}
	}
	return nil
}

// AddIncludeSpec defines the group's feature macro, then includes its headers.
func (p *Program) AddIncludeSpec(ctx context.Context, spec IncludeSpec) error {
	if spec.GNUSource {
		p.Define(GNUSourceMacro)
	}
	return p.AddIncludes(ctx, spec.Headers...)
}

// Define appends `#define symbol`.
func (p *Program) Define(symbol string) {
	p.items = append(p.items, Directive{Kind: KindDefine, Name: symbol})
}

// IfDef appends `#ifdef symbol`.
func (p *Program) IfDef(symbol string) {
	p.items = append(p.items, Directive{Kind: KindIfDef, Name: symbol})
}

// Else appends `#else`.
func (p *Program) Else() {
	p.items = append(p.items, Directive{Kind: KindElse})
}

// Error appends `#error "message"`, failing any compile that reaches it.
func (p *Program) Error(message string) {
	p.items = append(p.items, Directive{Kind: KindError, Message: message})
}

// Endif appends `#endif`.
func (p *Program) Endif() {
	p.items = append(p.items, Directive{Kind: KindEndif})
}

// StaticAssert appends a compile-time assertion that cond is non-zero.
func (p *Program) StaticAssert(cond, message string) {
	p.items = append(p.items, Directive{Kind: KindAssert, Expr: cond, Message: message})
}

// BeginEntryPoint opens main. A program has at most one.
func (p *Program) BeginEntryPoint() error {
	if p.hasEntry {
		return ErrAlreadyHasEntryPoint
	}
	p.hasEntry = true
	p.entryOpen = true
	p.items = append(p.items, Directive{Kind: KindEntryBegin})
	return nil
}

// EndEntryPoint closes main with `return 0;`.
func (p *Program) EndEntryPoint() error {
	if !p.entryOpen {
		return ErrNoOpenEntryPoint
	}
	p.entryOpen = false
	p.items = append(p.items, Directive{Kind: KindEntryEnd})
	return nil
}

// AddCall appends a call statement. With a non-empty result the return
// value is assigned to it.
func (p *Program) AddCall(result, function string, args ...string) {
	p.items = append(p.items, Directive{
		Kind:   KindCall,
		Name:   function,
		Result: result,
		Args:   append([]string(nil), args...),
	})
}

// Raw appends line verbatim.
func (p *Program) Raw(line string) {
	p.items = append(p.items, Directive{Kind: KindRaw, Expr: line})
}

// HasEntryPoint reports whether main was opened.
func (p *Program) HasEntryPoint() bool {
	return p.hasEntry
}

// Directives returns a copy of the program's directives.
func (p *Program) Directives() []Directive {
	return append([]Directive(nil), p.items...)
}

// Render returns the program text.
func (p *Program) Render() string {
	var b strings.Builder
	for _, d := range p.items {
		d.render(&b)
	}
	return b.String()
}

func (p *Program) String() string { return p.Render() }

// Compile builds the program once. When no entry point was opened an
// empty one is added first. The returned artifact stays owned by the
// program and is removed by Close.
func (p *Program) Compile(ctx context.Context, tc *toolchain.Toolchain) (*toolchain.Artifact, error) {
	if p.compiled {
		return nil, ErrAlreadyCompiled
	}
	p.compiled = true
	if !p.hasEntry {
		if err := p.BeginEntryPoint(); err != nil {
			return nil, err
		}
		if err := p.EndEntryPoint(); err != nil {
			return nil, err
		}
	}
	if tc == nil {
		tc = toolchain.Default()
	}
	art, err := tc.Build(ctx, p.Render())
	if err != nil {
		return nil, err
	}
	p.artifact = art
	return art, nil
}

// Close removes the compiled artifact, if any.
func (p *Program) Close() error {
	if p == nil || p.artifact == nil {
		return nil
	}
	return p.artifact.Dispose()
}
