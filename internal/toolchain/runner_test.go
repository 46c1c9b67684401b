package toolchain

import (
	"context"
	"sync"
)

type fakeRunner struct {
	mu    sync.Mutex
	calls []Invocation
	fn    func(inv Invocation) (Outcome, error)
}

func (f *fakeRunner) Run(_ context.Context, inv Invocation) (Outcome, error) {
	f.mu.Lock()
	f.calls = append(f.calls, inv)
	fn := f.fn
	f.mu.Unlock()
	if fn == nil {
		return Outcome{}, nil
	}
	return fn(inv)
}

func (f *fakeRunner) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeRunner) last() Invocation {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return Invocation{}
	}
	return f.calls[len(f.calls)-1]
}
