// Package diaglog routes converter diagnostics to zap and tallies them per code.
package diaglog

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/meshspan/pkg/meshconv"
)

// Count is the tally for one diagnostic code.
type Count struct {
	Code   meshconv.Code
	Warn   int
	Fatal  int
	Meshes int // Distinct meshes that reported the code
}

// Sink logs every diagnostic it receives. Safe for concurrent use.
type Sink struct {
	log *zap.Logger

	mu     sync.Mutex
	counts map[meshconv.Code]*Count
	meshes map[meshconv.Code]map[string]struct{}
}

// New returns a sink writing to log. A nil log discards output but still counts.
func New(log *zap.Logger) *Sink {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sink{
		log:    log,
		counts: make(map[meshconv.Code]*Count),
		meshes: make(map[meshconv.Code]map[string]struct{}),
	}
}

// Report implements meshconv.Sink.
func (s *Sink) Report(d meshconv.Diagnostic) {
	fields := []zap.Field{
		zap.String("code", string(d.Code)),
		zap.String("mesh", d.Context),
	}
	if d.Severity == meshconv.SevFatal {
		s.log.Error(d.Message, fields...)
	} else {
		s.log.Warn(d.Message, fields...)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.counts[d.Code]
	if !ok {
		c = &Count{Code: d.Code}
		s.counts[d.Code] = c
		s.meshes[d.Code] = make(map[string]struct{})
	}
	if d.Severity == meshconv.SevFatal {
		c.Fatal++
	} else {
		c.Warn++
	}
	if _, seen := s.meshes[d.Code][d.Context]; !seen {
		s.meshes[d.Code][d.Context] = struct{}{}
		c.Meshes++
	}
}

// Counts returns a snapshot ordered by code.
func (s *Sink) Counts() []Count {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Count, 0, len(s.counts))
	for _, c := range s.counts {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Fatals returns the number of fatal reports seen.
func (s *Sink) Fatals() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.counts {
		n += c.Fatal
	}
	return n
}

// LogSummary writes one info line per code.
func (s *Sink) LogSummary() {
	for _, c := range s.Counts() {
		s.log.Info("diagnostic summary",
			zap.String("code", string(c.Code)),
			zap.Int("warn", c.Warn),
			zap.Int("fatal", c.Fatal),
			zap.Int("meshes", c.Meshes),
		)
	}
}
