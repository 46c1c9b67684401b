package verify

import (
	"context"
	"fmt"

	"abiverify/internal/cprog"
	"abiverify/internal/layout"
)

// Case is one verification: it fills a program with the checks it needs.
type Case interface {
	Name() string
	Build(ctx context.Context, p *cprog.Program) error
	// Runtime reports whether the compiled program must also be run.
	Runtime() bool
}

// OutputChecker is implemented by runtime cases that validate what the
// program printed.
type OutputChecker interface {
	CheckOutput(stdout string) error
}

// Assertion is a single `_Static_assert`.
type Assertion struct {
	Cond    string `toml:"cond" json:"cond"`
	Message string `toml:"message" json:"message,omitempty"`
}

// emitAsserts writes asserts, wrapped in #ifdef guard when one is set. A
// compiler that does not define guard hits #error instead of silently
// compiling nothing.
func emitAsserts(p *cprog.Program, name, guard string, asserts []Assertion) {
	if guard != "" {
		p.IfDef(guard)
	}
	for _, a := range asserts {
		p.StaticAssert(a.Cond, a.Message)
	}
	if guard != "" {
		p.Else()
		p.Error(GuardMessage(name, guard))
		p.Endif()
	}
}

// GuardMessage is the #error text emitted when a case's guard macro is not
// defined by the compiler.
func GuardMessage(name, guard string) string {
	return name + ": compiler does not define " + guard
}

// StructCase checks a layout descriptor against the compiler's sizeof and
// offsetof. Private members are not asserted.
type StructCase struct {
	Label  string // defaults to Layout.Name
	Layout layout.Struct
	// Guard wraps the assertions in #ifdef Guard; compilers without it
	// fail the case.
	Guard string
	// FieldSizes also asserts the size of every public member.
	FieldSizes bool
}

func (c StructCase) Name() string {
	if c.Label != "" {
		return c.Label
	}
	return c.Layout.Name
}

func (c StructCase) Runtime() bool { return false }

// Assertions lists the checks in emission order: member offsets (and
// sizes), then the total size.
func (c StructCase) Assertions() []Assertion {
	name, ctype := c.Name(), c.Layout.CType
	if ctype == "" {
		ctype = "struct " + c.Layout.Name
	}
	public := c.Layout.Public()
	out := make([]Assertion, 0, 2*len(public)+1)
	add := func(cond string) {
		out = append(out, Assertion{Cond: cond, Message: name + ": " + cond})
	}
	for _, f := range public {
		add(fmt.Sprintf("offsetof(%s, %s) == %d", ctype, f.Name, f.Offset))
		if c.FieldSizes {
			add(fmt.Sprintf("sizeof(((%s*)0)->%s) == %d", ctype, f.Name, f.Size))
		}
	}
	add(fmt.Sprintf("sizeof(%s) == %d", ctype, c.Layout.Size))
	return out
}

func (c StructCase) Build(ctx context.Context, p *cprog.Program) error {
	if err := c.Layout.Validate(); err != nil {
		return err
	}
	headers := []string{"stddef.h"}
	for _, h := range c.Layout.Headers {
		if h != "stddef.h" {
			headers = append(headers, h)
		}
	}
	if err := p.AddIncludeSpec(ctx, cprog.IncludeSpec{Headers: headers, GNUSource: c.Layout.GNUSource}); err != nil {
		return err
	}
	emitAsserts(p, c.Name(), c.Guard, c.Assertions())
	return nil
}

// ExprCase is a named group of arbitrary static assertions.
type ExprCase struct {
	Label    string
	Includes cprog.IncludeSpec
	Guard    string
	Asserts  []Assertion
}

func (c ExprCase) Name() string  { return c.Label }
func (c ExprCase) Runtime() bool { return false }

func (c ExprCase) Build(ctx context.Context, p *cprog.Program) error {
	if len(c.Asserts) == 0 {
		return fmt.Errorf("%s: no assertions", c.Label)
	}
	if err := p.AddIncludeSpec(ctx, c.Includes); err != nil {
		return err
	}
	asserts := make([]Assertion, len(c.Asserts))
	for i, a := range c.Asserts {
		if a.Message == "" {
			a.Message = c.Label + ": " + a.Cond
		}
		asserts[i] = a
	}
	emitAsserts(p, c.Label, c.Guard, asserts)
	return nil
}

// RuntimeCase checks facts that are not constant expressions: Body fills
// main, the program is run, and Check validates its stdout. Body signals a
// mismatch by returning non-zero from main.
type RuntimeCase struct {
	Label    string
	Includes cprog.IncludeSpec
	Body     func(p *cprog.Program)
	Check    func(stdout string) error
}

func (c RuntimeCase) Name() string  { return c.Label }
func (c RuntimeCase) Runtime() bool { return true }

func (c RuntimeCase) Build(ctx context.Context, p *cprog.Program) error {
	if err := p.AddIncludeSpec(ctx, c.Includes); err != nil {
		return err
	}
	if err := p.BeginEntryPoint(); err != nil {
		return err
	}
	if c.Body != nil {
		c.Body(p)
	}
	return p.EndEntryPoint()
}

func (c RuntimeCase) CheckOutput(stdout string) error {
	if c.Check == nil {
		return nil
	}
	return c.Check(stdout)
}
