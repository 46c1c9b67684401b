package suite

import (
	"time"

	"abiverify/internal/verify"
)

// Status captures the progress state of a case.
type Status string

const (
	// StatusQueued indicates the case is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the case is in the stage named by the event.
	StatusWorking Status = "working"
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	// StatusSkipped indicates the case never ran because the suite stopped.
	StatusSkipped Status = "skipped"
)

// Event reports progress for a case (or for the whole suite when Case is
// empty).
type Event struct {
	Case    string
	Stage   verify.Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Implementations must be safe for
// concurrent use.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// SinkFunc adapts a function to ProgressSink.
type SinkFunc func(Event)

func (f SinkFunc) OnEvent(evt Event) {
	if f != nil {
		f(evt)
	}
}
