package diag

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SevNote is for notes attached to an earlier diagnostic.
	SevNote Severity = iota
	// SevWarning is for warning diagnostics.
	SevWarning
	SevError
	// SevFatal stops the compiler, e.g. a missing header.
	SevFatal
)

func (s Severity) String() string {
	switch s {
	case SevNote:
		return "NOTE"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	case SevFatal:
		return "FATAL"
	}
	return "UNKNOWN"
}

// parseSeverity maps the compiler's severity word.
func parseSeverity(word string) (Severity, bool) {
	switch word {
	case "note":
		return SevNote, true
	case "warning":
		return SevWarning, true
	case "error":
		return SevError, true
	case "fatal error":
		return SevFatal, true
	}
	return 0, false
}
