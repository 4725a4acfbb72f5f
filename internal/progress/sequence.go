package progress

import "iter"

// Sequence is a resumable computation that is advanced one value at a time.
//
// Next returns (value, true, nil) for each produced value, (zero, false, nil)
// once the sequence is exhausted, and a non-nil error on an unexpected fault.
// Result reports the final result carried by an exhausted sequence; false
// means the sequence finished without one.
type Sequence[P, R any] interface {
	Next() (P, bool, error)
	Result() (R, bool)
}

// Stopper is implemented by sequences that hold resources (goroutines,
// handles) which must be released if iteration ends early.
type Stopper interface {
	Stop()
}

// Factory produces the sequence for one drive cycle.
type Factory[P, R any] func() (Sequence[P, R], error)

// generated adapts a push-style producer to a pull Sequence via iter.Pull.
type generated[P, R any] struct {
	next func() (P, bool)
	stop func()

	result R
	err    error
	done   bool
}

// Generate turns body into a Sequence. Every call to yield becomes one value
// of the sequence; body's return value becomes the final result and a
// non-nil error is reported as a fault by Next. yield returns false when
// the consumer stopped early and body should return.
//
// body does not start running until the first call to Next.
func Generate[P, R any](body func(yield func(P) bool) (R, error)) Sequence[P, R] {
	g := &generated[P, R]{}
	g.next, g.stop = iter.Pull(func(yield func(P) bool) {
		g.result, g.err = body(yield)
		g.done = true
	})
	return g
}

func (g *generated[P, R]) Next() (P, bool, error) {
	v, ok := g.next()
	if ok {
		return v, true, nil
	}
	return v, false, g.err
}

func (g *generated[P, R]) Result() (R, bool) {
	return g.result, g.done && g.err == nil
}

func (g *generated[P, R]) Stop() { g.stop() }

type sliceSequence[P, R any] struct {
	values []P
	pos    int
	result R
}

// FromSlice returns a sequence yielding values in order and finishing with result.
func FromSlice[P, R any](values []P, result R) Sequence[P, R] {
	return &sliceSequence[P, R]{values: values, result: result}
}

func (s *sliceSequence[P, R]) Next() (P, bool, error) {
	if s.pos >= len(s.values) {
		var zero P
		return zero, false, nil
	}
	v := s.values[s.pos]
	s.pos++
	return v, true, nil
}

func (s *sliceSequence[P, R]) Result() (R, bool) {
	return s.result, s.pos >= len(s.values)
}

type seqSequence[P, R any] struct {
	next func() (P, bool)
	stop func()
}

// FromSeq wraps a standard library iterator. It carries no final result.
func FromSeq[P, R any](seq iter.Seq[P]) Sequence[P, R] {
	next, stop := iter.Pull(seq)
	return &seqSequence[P, R]{next: next, stop: stop}
}

func (s *seqSequence[P, R]) Next() (P, bool, error) {
	v, ok := s.next()
	return v, ok, nil
}

func (s *seqSequence[P, R]) Result() (R, bool) {
	var zero R
	return zero, false
}

func (s *seqSequence[P, R]) Stop() { s.stop() }
