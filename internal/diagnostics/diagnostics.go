// Package diagnostics implements the Crema compiler's diagnostic sink:
// the taxonomy of spec §7 (duplicate declaration, undefined reference, type
// mismatch, recursion, up-cast warning, internal/emitter bug) and the
// source-location-carrying error type both the analyzer and the emitter
// report through.
//
// Modeled on sentra/internal/errors.SentraError: a typed error with an
// Error() rendering, rather than bare fmt.Errorf strings, so the driver can
// distinguish fatal diagnostics from warnings without string-matching.
package diagnostics

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"
)

// Severity distinguishes fatal diagnostics (disable subsequent passes, per
// spec §7 "Propagation policy") from warnings (do not).
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Kind is the diagnostic taxonomy of spec §7.
type Kind string

const (
	KindDuplicateDeclaration Kind = "duplicate-declaration"
	KindUndefinedReference   Kind = "undefined-reference"
	KindTypeMismatch         Kind = "type-mismatch"
	KindRecursion            Kind = "recursion"
	KindUpCast               Kind = "up-cast"
	KindInternal             Kind = "internal"
)

// Location is a source position. The parser/lexer populate it; the core
// only ever copies it onto diagnostics it raises against an AST node.
type Location struct {
	Line   int
	Column int
}

// Diagnostic is a single reported condition: which construct it names, at
// what severity, and where.
type Diagnostic struct {
	Kind     Kind
	Severity Severity
	Message  string
	Subject  string // the offending construct's name, per spec §7 "User-visible behavior"
	Location Location
}

func (d *Diagnostic) Error() string {
	if d.Location.Line > 0 {
		return fmt.Sprintf("%s: %s (%d:%d)", d.Severity, d.Message, d.Location.Line, d.Location.Column)
	}
	return fmt.Sprintf("%s: %s", d.Severity, d.Message)
}

// Sink collects diagnostics in source order, as spec §5 "Ordering
// guarantees" requires: "Diagnostics for a single translation unit are
// emitted in source order of the offending nodes."
type Sink struct {
	diags []*Diagnostic
}

// NewSink returns an empty diagnostic sink.
func NewSink() *Sink {
	return &Sink{}
}

func (s *Sink) report(kind Kind, sev Severity, loc Location, subject, format string, args ...interface{}) {
	s.diags = append(s.diags, &Diagnostic{
		Kind:     kind,
		Severity: sev,
		Message:  fmt.Sprintf(format, args...),
		Subject:  subject,
		Location: loc,
	})
}

// Errorf reports a fatal diagnostic of the given kind against subject.
func (s *Sink) Errorf(kind Kind, loc Location, subject, format string, args ...interface{}) {
	s.report(kind, SeverityError, loc, subject, format, args...)
}

// Warnf reports a non-fatal up-cast warning (spec §7, the only warning kind
// spec defines).
func (s *Sink) Warnf(loc Location, subject, format string, args ...interface{}) {
	s.report(KindUpCast, SeverityWarning, loc, subject, format, args...)
}

// Diagnostics returns every diagnostic reported so far, in source order
// (spec §5). The analyzer's pre-registration pass and its whole-program
// recursion check report outside the left-to-right walk, so the list is
// stably sorted by location; diagnostics at the same location keep their
// report order.
func (s *Sink) Diagnostics() []*Diagnostic {
	sort.SliceStable(s.diags, func(i, j int) bool {
		a, b := s.diags[i].Location, s.diags[j].Location
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
	return s.diags
}

// HasErrors reports whether any fatal (non-warning) diagnostic was
// recorded. Per spec §7: "A compilation unit fails iff any fatal diagnostic
// was emitted."
func (s *Sink) HasErrors() bool {
	for _, d := range s.diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// InternalError wraps an emitter-side condition that spec §7 classifies as
// "a bug, not a user error" — an unsupported coercion or a missing runtime
// declaration that the analyzer should have already rejected. It is never
// added to a Sink (it is not a user-facing diagnostic); it is returned up
// the Go call stack like any other unexpected-state error, annotated with a
// stack trace via github.com/pkg/errors so a maintainer can locate the
// emitter bug that let an ill-typed node reach codegen.
func InternalError(format string, args ...interface{}) error {
	return errors.Wrap(fmt.Errorf(format, args...), "crema: internal emitter error")
}
