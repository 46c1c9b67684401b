// Package diag turns the text a C compiler writes to stderr into structured
// diagnostics.
//
// The verifier keeps the compiler's stderr verbatim as the primary record of
// a failed compilation. This package is the secondary, structured view used
// by reports: it recognizes GCC/Clang style lines of the form
//
//	file:line:col: severity: message
//
// and leaves everything else (include traces, caret lines, source excerpts)
// attached to the preceding diagnostic as context.
//
// Failed `_Static_assert`s are the diagnostics the verifier cares about most;
// FailedAssertions extracts their messages so a report can name the exact
// layout claim that did not hold.
package diag
