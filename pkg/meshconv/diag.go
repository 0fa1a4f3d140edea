package meshconv

import (
	"fmt"
	"sync"
)

// Severity of a diagnostic.
type Severity int

const (
	SevWarn  Severity = iota // Substitute and continue
	SevFatal                 // Abandon the current mesh
)

// String returns "warn" or "fatal".
func (s Severity) String() string {
	if s == SevFatal {
		return "fatal"
	}
	return "warn"
}

// Code identifies a diagnostic condition.
type Code string

const (
	CodeDegenerateFace  Code = "degenerate_face"
	CodeBadFaceIndex    Code = "bad_face_index"
	CodeMappingError    Code = "mapping_error"
	CodeBadNormal       Code = "bad_normal"
	CodeBadGradient     Code = "bad_gradient"
	CodeMissingChannel  Code = "missing_channel"
	CodeInsufficientUVs Code = "insufficient_uvs"
	CodeTooManyUVs      Code = "too_many_uvs"
	CodeSuspiciousUV    Code = "suspicious_uv"
	CodeNotRenderable   Code = "not_renderable"
	CodeSkinMismatch    Code = "skin_mismatch"
	CodeNoBones         Code = "no_bones"
	CodeBoneRange       Code = "bone_range"
	CodeCapacity        Code = "capacity_exceeded"
)

// Diagnostic is one report sent to a Sink.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Context  string // Mesh name
	Message  string
}

// String formats the diagnostic for logs.
func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] %s (%s): %s", d.Severity, d.Code, d.Context, d.Message)
}

// Sink receives diagnostics. Implementations must be safe for concurrent use
// when conversions run in parallel.
type Sink interface {
	Report(d Diagnostic)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(d Diagnostic)

// Report calls f.
func (f SinkFunc) Report(d Diagnostic) {
	f(d)
}

// discard drops every report.
type discard struct{}

func (discard) Report(Diagnostic) {}

// OnceSink forwards each warning code only the first time it is seen across
// all conversions sharing the sink. Fatal reports always pass through.
// It reproduces process-wide "already warned" behavior; the converter already
// suppresses repeats within a single conversion.
type OnceSink struct {
	next Sink

	mu     sync.Mutex
	warned map[Code]bool
}

// NewOnceSink wraps next.
func NewOnceSink(next Sink) *OnceSink {
	return &OnceSink{next: next, warned: make(map[Code]bool)}
}

// Report implements Sink.
func (s *OnceSink) Report(d Diagnostic) {
	if d.Severity == SevWarn {
		s.mu.Lock()
		seen := s.warned[d.Code]
		s.warned[d.Code] = true
		s.mu.Unlock()
		if seen {
			return
		}
	}
	s.next.Report(d)
}

// Reset forgets every warning seen so far.
func (s *OnceSink) Reset() {
	s.mu.Lock()
	clear(s.warned)
	s.mu.Unlock()
}
