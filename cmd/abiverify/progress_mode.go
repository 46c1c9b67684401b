package main

import (
	"fmt"
	"os"
	"strings"
)

// progressMode selects when check draws live progress. It is a pflag.Value,
// so a bad --ui value is rejected while flags are parsed.
type progressMode string

const (
	progressAuto progressMode = "auto"
	progressOn   progressMode = "on"
	progressOff  progressMode = "off"
)

func (m *progressMode) String() string {
	if *m == "" {
		return string(progressAuto)
	}
	return string(*m)
}

func (m *progressMode) Set(value string) error {
	switch mode := progressMode(strings.ToLower(strings.TrimSpace(value))); mode {
	case "":
		*m = progressAuto
	case progressAuto, progressOn, progressOff:
		*m = mode
	default:
		return fmt.Errorf("expected auto, on or off")
	}
	return nil
}

func (m *progressMode) Type() string { return "mode" }

// draws reports whether progress is drawn. In auto mode both stdout and
// stderr must be terminals: the report and the logs share the screen with
// the progress list.
func (m progressMode) draws() bool {
	switch m {
	case progressOn:
		return true
	case progressOff:
		return false
	default:
		return isTerminal(os.Stdout) && isTerminal(os.Stderr)
	}
}
