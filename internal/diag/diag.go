package diag

import (
	"fmt"
	"sort"
)

// Span is a half-open byte range into a source file.
type Span struct {
	Start uint32 `json:"start"`
	End   uint32 `json:"end"`
}

// NewSpan builds a span from byte offsets.
func NewSpan(start, end uint32) Span {
	return Span{Start: start, End: end}
}

// Between returns the span covering both s and other.
func (s Span) Between(other Span) Span {
	out := s
	if other.Start < out.Start {
		out.Start = other.Start
	}
	if other.End > out.End {
		out.End = other.End
	}
	return out
}

// SourceLocation identifies the file a piece of IR originated from.
// The empty value marks compiler-generated IR with no user-authored source.
type SourceLocation string

// Generated is the location of IR synthesized by the compiler itself.
func Generated() SourceLocation { return "" }

// Standalone builds a source location for a single on-disk module.
func Standalone(path string) SourceLocation { return SourceLocation(path) }

// Path returns the file path behind the location.
func (l SourceLocation) Path() string { return string(l) }

// IsGenerated reports whether the location has no user-authored source.
func (l SourceLocation) IsGenerated() bool { return l == "" }

// Location is a span inside a specific source file.
type Location struct {
	Source SourceLocation `json:"source"`
	Span   Span           `json:"span"`
}

// NewLocation pairs a source file with a span inside it.
func NewLocation(source SourceLocation, span Span) Location {
	return Location{Source: source, Span: span}
}

func (l Location) String() string {
	if l.Source.IsGenerated() {
		return "<generated>"
	}
	return fmt.Sprintf("%s:%d-%d", l.Source.Path(), l.Span.Start, l.Span.End)
}

// WithLocation pairs a value with the location it was read from.
type WithLocation[T any] struct {
	Item     T
	Location Location
}

// WithLoc is shorthand for constructing a WithLocation.
func WithLoc[T any](item T, loc Location) WithLocation[T] {
	return WithLocation[T]{Item: item, Location: loc}
}

// Annotation is a secondary span attached to a diagnostic, used to point at
// a related site (a previous definition, a conflicting import).
type Annotation struct {
	Message  string   `json:"message"`
	Location Location `json:"location"`
}

// Diagnostic is a user-facing error tied to a source span. Recoverable
// failures are reported as batches of diagnostics rather than aborting on
// the first one.
type Diagnostic struct {
	Message     string       `json:"message"`
	Location    Location     `json:"location"`
	Annotations []Annotation `json:"annotations,omitempty"`
}

// Errorf builds a diagnostic at the given location.
func Errorf(loc Location, format string, args ...any) *Diagnostic {
	return &Diagnostic{Message: fmt.Sprintf(format, args...), Location: loc}
}

// Annotate attaches a secondary span with explanatory text and returns the
// diagnostic for chaining.
func (d *Diagnostic) Annotate(message string, loc Location) *Diagnostic {
	d.Annotations = append(d.Annotations, Annotation{Message: message, Location: loc})
	return d
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s", d.Location, d.Message)
}

// TryAll runs every step, merging all diagnostics instead of stopping at the
// first failing step. This maximizes the diagnostic yield per run.
func TryAll(steps ...func() []*Diagnostic) []*Diagnostic {
	var all []*Diagnostic
	for _, step := range steps {
		all = append(all, step()...)
	}
	return all
}

// Sort orders diagnostics by source file, then span start, so batched output
// is stable across runs.
func Sort(diagnostics []*Diagnostic) {
	sort.SliceStable(diagnostics, func(i, j int) bool {
		a, b := diagnostics[i].Location, diagnostics[j].Location
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		return a.Span.Start < b.Span.Start
	})
}
