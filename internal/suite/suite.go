// Package suite runs many verification cases concurrently and collects
// their verdicts in input order.
package suite

import (
	"context"
	"errors"
	"runtime"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"abiverify/internal/verify"
)

// ErrSkipped marks the verdict of a case that did not run, either because
// an earlier case failed in fail-fast mode or because ctx was cancelled.
var ErrSkipped = errors.New("not run")

// Options controls a suite run.
type Options struct {
	// Jobs bounds the number of cases in flight; <= 0 means GOMAXPROCS.
	Jobs int
	// FailFast stops starting new cases after the first failure.
	FailFast bool
	Sink     ProgressSink
}

// Result holds one verdict per case, in input order.
type Result struct {
	Verdicts []verify.Verdict `json:"verdicts" msgpack:"verdicts"`
	Elapsed  time.Duration    `json:"elapsed_ns" msgpack:"elapsed_ns"`
}

// Summary counts verdicts.
type Summary struct {
	Total   int `json:"total" msgpack:"total"`
	Passed  int `json:"passed" msgpack:"passed"`
	Failed  int `json:"failed" msgpack:"failed"`
	Skipped int `json:"skipped" msgpack:"skipped"`
}

// OK reports whether every case passed.
func (s Summary) OK() bool { return s.Failed == 0 && s.Skipped == 0 }

// Summary counts the result's verdicts.
func (r Result) Summary() Summary {
	s := Summary{Total: len(r.Verdicts)}
	for _, v := range r.Verdicts {
		switch {
		case v.Success:
			s.Passed++
		case errors.Is(v.Err, ErrSkipped):
			s.Skipped++
		default:
			s.Failed++
		}
	}
	return s
}

// Failed returns the failed verdicts, skipped ones excluded.
func (r Result) Failed() []verify.Verdict {
	var out []verify.Verdict
	for _, v := range r.Verdicts {
		if !v.Success && !errors.Is(v.Err, ErrSkipped) {
			out = append(out, v)
		}
	}
	return out
}

// Run verifies every case with h. A failing case never affects its
// siblings unless opts.FailFast is set; the returned error is only non-nil
// when ctx was cancelled.
func Run(ctx context.Context, h *verify.Harness, cases []verify.Case, opts Options) (Result, error) {
	start := time.Now()
	if h == nil {
		h = &verify.Harness{}
	}
	sink := opts.Sink
	if sink == nil {
		sink = SinkFunc(nil)
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	log := Logger()

	harness := *h
	harness.OnStage = func(c verify.Case, s verify.Stage) {
		if h.OnStage != nil {
			h.OnStage(c, s)
		}
		sink.OnEvent(Event{Case: c.Name(), Stage: s, Status: StatusWorking})
	}

	verdicts := make([]verify.Verdict, len(cases))
	ran := make([]bool, len(cases))
	for _, c := range cases {
		sink.OnEvent(Event{Case: c.Name(), Status: StatusQueued})
	}

	// cases in flight when fail-fast trips are left to finish
	var stopped atomic.Bool
	var g errgroup.Group
	g.SetLimit(max(1, min(jobs, len(cases))))
	for i, c := range cases {
		g.Go(func() error {
			if stopped.Load() || ctx.Err() != nil {
				return nil
			}
			caseStart := time.Now()
			v := harness.Run(ctx, c)
			verdicts[i] = v
			ran[i] = true

			evt := Event{Case: c.Name(), Stage: v.Stage, Status: StatusPassed, Elapsed: time.Since(caseStart)}
			if !v.Success {
				evt.Status = StatusFailed
				evt.Err = v.Err
				log.Info("case failed", zap.String("case", v.Case), zap.String("cause", v.Cause()))
			}
			sink.OnEvent(evt)
			if !v.Success && opts.FailFast {
				stopped.Store(true)
			}
			return nil
		})
	}
	_ = g.Wait()

	for i, c := range cases {
		if ran[i] {
			continue
		}
		verdicts[i] = verify.Verdict{Case: c.Name(), Err: ErrSkipped, Error: ErrSkipped.Error()}
		sink.OnEvent(Event{Case: c.Name(), Status: StatusSkipped})
	}
	res := Result{Verdicts: verdicts, Elapsed: time.Since(start)}
	err := ctx.Err()
	s := res.Summary()
	log.Debug("suite finished",
		zap.Int("passed", s.Passed),
		zap.Int("failed", s.Failed),
		zap.Int("skipped", s.Skipped),
		zap.Duration("elapsed", res.Elapsed))
	return res, err
}
