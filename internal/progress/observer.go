package progress

// Completion is the final result of a drive cycle. OK is false when the
// result is absent, either because the sequence carried none or because
// the cycle ended on a fault.
type Completion[R any] struct {
	Value R
	OK    bool
}

// Get returns the value and whether it is present.
func (c Completion[R]) Get() (R, bool) {
	return c.Value, c.OK
}

// Observer receives the notifications of a drive cycle.
// OnProgress is called zero or more times in production order, then
// OnComplete exactly once.
type Observer[P, R any] interface {
	OnProgress(value P)
	OnComplete(result Completion[R])
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs[P, R any] struct {
	Progress func(P)
	Complete func(Completion[R])
}

func (o ObserverFuncs[P, R]) OnProgress(value P) {
	if o.Progress != nil {
		o.Progress(value)
	}
}

func (o ObserverFuncs[P, R]) OnComplete(result Completion[R]) {
	if o.Complete != nil {
		o.Complete(result)
	}
}
