package cprog

import (
	"strings"
)

// Kind identifies a directive variant.
type Kind uint8

const (
	// KindInclude is `#include <Name>`.
	KindInclude Kind = iota + 1
	// KindDefine is `#define Name`.
	KindDefine
	KindIfDef
	KindElse
	KindEndif
	// KindError is `#error "Message"`.
	KindError
	// KindAssert is `_Static_assert(Expr, "Message");`.
	KindAssert
	// KindCall is `Name(Args...);` or `Result = Name(Args...);`.
	KindCall
	// KindRaw is a verbatim line.
	KindRaw
	KindEntryBegin
	KindEntryEnd
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindInclude:
		return "include"
	case KindDefine:
		return "define"
	case KindIfDef:
		return "ifdef"
	case KindElse:
		return "else"
	case KindEndif:
		return "endif"
	case KindError:
		return "error"
	case KindAssert:
		return "assert"
	case KindCall:
		return "call"
	case KindRaw:
		return "raw"
	case KindEntryBegin:
		return "entry-begin"
	case KindEntryEnd:
		return "entry-end"
	default:
		return "unknown"
	}
}

// Directive is one element of a synthesized program.
type Directive struct {
	Kind    Kind
	Name    string // header, macro or function name
	Expr    string // assertion condition or raw text
	Message string // assertion message
	Result  string // call result variable, empty for a bare call
	Args    []string
}

var messageEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

func (d Directive) render(b *strings.Builder) {
	switch d.Kind {
	case KindInclude:
		b.WriteString("#include <")
		b.WriteString(d.Name)
		b.WriteString(">\n")
	case KindDefine:
		b.WriteString("#define ")
		b.WriteString(d.Name)
		b.WriteByte('\n')
	case KindIfDef:
		b.WriteString("#ifdef ")
		b.WriteString(d.Name)
		b.WriteByte('\n')
	case KindElse:
		b.WriteString("#else\n")
	case KindEndif:
		b.WriteString("#endif\n")
	case KindError:
		b.WriteString("#error \"")
		b.WriteString(messageEscaper.Replace(d.Message))
		b.WriteString("\"\n")
	case KindAssert:
		b.WriteString("_Static_assert(")
		b.WriteString(d.Expr)
		b.WriteString(", \"")
		b.WriteString(messageEscaper.Replace(d.Message))
		b.WriteString("\");\n")
	case KindCall:
		if d.Result != "" {
			b.WriteString(d.Result)
			b.WriteString(" = ")
		}
		b.WriteString(d.Name)
		b.WriteByte('(')
		b.WriteString(strings.Join(d.Args, ", "))
		b.WriteString(");\n")
	case KindRaw:
		b.WriteString(d.Expr)
		b.WriteByte('\n')
	case KindEntryBegin:
		b.WriteString("int main(int argc, char* argv[]) {\n")
	case KindEntryEnd:
		b.WriteString("return 0;\n}\n")
	}
}
