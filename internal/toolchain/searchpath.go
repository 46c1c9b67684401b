package toolchain

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
)

const (
	searchStartBanner = "#include <...> search starts here:"
	searchEndBanner   = "End of search list."
	frameworkSuffix   = " (framework directory)"
)

// ErrNoSearchPaths is returned by a strict resolver when the compiler
// reported no system include directories.
var ErrNoSearchPaths = errors.New("no compiler include search paths found")

// SearchPathSet is the ordered list of directories the preprocessor
// searches for <...> includes. Entries are unique.
type SearchPathSet []string

// Resolve returns the set itself, so a fixed set can stand in for a Resolver.
func (s SearchPathSet) Resolve(context.Context) (SearchPathSet, error) {
	return s, nil
}

// Find returns the first directory that contains header.
func (s SearchPathSet) Find(header string) (string, bool) {
	for _, dir := range s {
		if Contains(dir, header) {
			return dir, true
		}
	}
	return "", false
}

// Contains reports whether header exists as a regular file under dir.
func Contains(dir, header string) bool {
	info, err := os.Stat(filepath.Join(dir, header))
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// ParseSearchList extracts the angle-bracket include list from the
// preprocessor's verbose stderr. Lines outside the bracketed region are
// ignored; banners match case-insensitively.
func ParseSearchList(r io.Reader) (SearchPathSet, error) {
	var (
		paths   SearchPathSet
		seen    = make(map[string]struct{})
		inList  bool
		scanner = bufio.NewScanner(r)
	)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if !inList {
			inList = bannerEqual(line, searchStartBanner)
			continue
		}
		if bannerEqual(line, searchEndBanner) {
			break
		}
		dir := strings.TrimSpace(strings.TrimSuffix(line, frameworkSuffix))
		if dir == "" {
			continue
		}
		if _, dup := seen[dir]; dup {
			continue
		}
		seen[dir] = struct{}{}
		paths = append(paths, dir)
	}
	if err := scanner.Err(); err != nil {
		return paths, fmt.Errorf("read preprocessor output: %w", err)
	}
	return paths, nil
}

func bannerEqual(line, banner string) bool {
	// Caser is stateful, one per comparison
	fold := cases.Fold()
	return fold.String(line) == fold.String(banner)
}

// Resolver discovers a compiler's system include directories. The first
// completed resolution is cached for the resolver's lifetime and every later
// call observes it unchanged, even if the environment has changed since.
// Create one with NewResolver.
type Resolver struct {
	CC     string
	Runner Runner
	// Strict turns an empty result into ErrNoSearchPaths. It is checked on
	// every Resolve, so resolvers sharing a discovery may differ here.
	Strict bool

	found *discovery
}

// discovery is the cached outcome of one compiler query.
type discovery struct {
	once  sync.Once
	paths SearchPathSet
	err   error
}

// NewResolver returns a resolver for cc. A nil runner means ExecRunner.
func NewResolver(cc string, runner Runner) *Resolver {
	if strings.TrimSpace(cc) == "" {
		cc = DefaultCompiler
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Resolver{CC: cc, Runner: runner, found: &discovery{}}
}

// withStrict returns a resolver that shares r's cached discovery.
func (r *Resolver) withStrict(strict bool) *Resolver {
	return &Resolver{CC: r.CC, Runner: r.Runner, Strict: strict, found: r.found}
}

// Resolve returns the compiler's include search list, running the
// compiler on first use only. The first caller's context is detached from
// cancellation so an abandoned caller cannot poison the cache.
func (r *Resolver) Resolve(ctx context.Context) (SearchPathSet, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	d := r.found
	d.once.Do(func() {
		d.paths, d.err = r.discover(context.WithoutCancel(ctx))
	})
	if d.err != nil {
		return nil, d.err
	}
	if len(d.paths) == 0 && r.Strict {
		return nil, fmt.Errorf("%s: %w", r.CC, ErrNoSearchPaths)
	}
	return d.paths, nil
}

func (r *Resolver) discover(ctx context.Context) (SearchPathSet, error) {
	inv := Invocation{
		Name:  r.CC,
		Args:  []string{"-E", "-Wp,-v", "-"},
		Stdin: "\n",
	}
	log := Logger().With(zap.String("cc", r.CC))
	log.Debug("discovering include search paths", zap.String("cmd", inv.String()))

	out, err := r.Runner.Run(ctx, inv)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to query include search paths: %w", r.CC, err)
	}
	paths, err := ParseSearchList(strings.NewReader(string(out.Stderr)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.CC, err)
	}
	for _, dir := range paths {
		log.Debug("found compiler search path", zap.String("dir", dir))
	}
	if len(paths) == 0 {
		log.Warn("!! NO COMPILER SEARCH PATHS FOUND !!", zap.Int("exit_code", out.ExitCode))
		return SearchPathSet{}, nil
	}
	return paths, nil
}
