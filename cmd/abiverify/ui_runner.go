package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"abiverify/internal/suite"
	"abiverify/internal/ui"
	"abiverify/internal/verify"
)

type suiteOutcome struct {
	result suite.Result
	err    error
}

// runSuiteWithUI runs the suite while a progress view consumes its events.
func runSuiteWithUI(ctx context.Context, title string, h *verify.Harness, cases []verify.Case, opts suite.Options) (suite.Result, error) {
	events := make(chan suite.Event, 256)
	outcomeCh := make(chan suiteOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Sink = suite.ChannelSink{Ch: events}
		res, err := suite.Run(ctx, h, cases, optsCopy)
		outcomeCh <- suiteOutcome{result: res, err: err}
		close(events)
	}()

	names := make([]string, len(cases))
	for i, c := range cases {
		names[i] = c.Name()
	}
	model := ui.NewProgressModel(title, names, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()
	// the view may quit early (ctrl-c); keep draining so the suite finishes
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
