// Package toolchain drives the host C compiler on behalf of the verifier.
//
// It owns three concerns:
//
//   - discovering the preprocessor's system include search list
//     (Resolver, resolved at most once per process and compiler);
//   - compiling a rendered translation unit into a temporary executable
//     (Toolchain.Build), with a fixed flag set;
//   - the lifetime of the temporary source/executable pair (Artifact).
//
// Nothing here retries: a failed compile is deterministic and is
// returned to the caller as *CompilationFailure with the compiler's
// stderr untouched.
package toolchain
