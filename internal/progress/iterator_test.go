package progress

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// event is one notification as seen by a recorder
type event struct {
	kind  string // "progress" or "complete"
	value any
	ok    bool
}

type recorder[P, R any] struct {
	mu     sync.Mutex
	events []event
}

func (r *recorder[P, R]) OnProgress(value P) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event{kind: "progress", value: value, ok: true})
}

func (r *recorder[P, R]) OnComplete(result Completion[R]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var v any
	if result.OK {
		v = result.Value
	}
	r.events = append(r.events, event{kind: "complete", value: v, ok: result.OK})
}

func (r *recorder[P, R]) snapshot() []event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

func progressEv(v any) event { return event{kind: "progress", value: v, ok: true} }
func completeEv(v any) event { return event{kind: "complete", value: v, ok: true} }
func absentEv() event        { return event{kind: "complete"} }

// captureLogger returns a logger writing JSON lines into the returned buffer
func captureLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

func logEntries(t *testing.T, buf *bytes.Buffer, level string) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		if entry["level"] == level {
			out = append(out, entry)
		}
	}
	return out
}

func TestIterator_YieldsThenResult(t *testing.T) {
	logger, _ := captureLogger()
	it := New(func() (Sequence[string, string], error) {
		return FromSlice([]string{"a", "b", "c"}, "R"), nil
	}, WithLogger(logger))
	rec := &recorder[string, string]{}
	it.Subscribe(rec)

	require.NoError(t, it.Run())

	assert.Equal(t, []event{
		progressEv("a"),
		progressEv("b"),
		progressEv("c"),
		completeEv("R"),
	}, rec.snapshot())
	assert.Equal(t, StateCompleted, it.State())
}

func TestIterator_EmptySequence(t *testing.T) {
	it := New(func() (Sequence[int, string], error) {
		return FromSlice[int]([]int{}, "R"), nil
	})
	rec := &recorder[int, string]{}
	it.Subscribe(rec)

	require.NoError(t, it.Run())

	assert.Equal(t, []event{completeEv("R")}, rec.snapshot())
}

func TestIterator_FaultAfterFirstValue(t *testing.T) {
	logger, buf := captureLogger()
	boom := errors.New("disk went away")
	it := New(func() (Sequence[string, int], error) {
		return Generate(func(yield func(string) bool) (int, error) {
			yield("a")
			return 0, boom
		}), nil
	}, WithLogger(logger), WithName("scan"))
	rec := &recorder[string, int]{}
	it.Subscribe(rec)

	require.NotPanics(t, func() {
		require.NoError(t, it.Run())
	})

	assert.Equal(t, []event{progressEv("a"), absentEv()}, rec.snapshot())

	errs := logEntries(t, buf, "ERROR")
	require.Len(t, errs, 1)
	assert.Equal(t, "iteration failed", errs[0]["msg"])
	assert.Equal(t, "scan", errs[0]["name"])
	assert.Contains(t, errs[0]["error"], "disk went away")
}

func TestIterator_PanicAfterFirstValue(t *testing.T) {
	logger, buf := captureLogger()
	it := New(func() (Sequence[string, int], error) {
		return Generate(func(yield func(string) bool) (int, error) {
			yield("a")
			panic("corrupt header")
		}), nil
	}, WithLogger(logger))
	rec := &recorder[string, int]{}
	it.Subscribe(rec)

	require.NotPanics(t, func() {
		require.NoError(t, it.Run())
	})

	assert.Equal(t, []event{progressEv("a"), absentEv()}, rec.snapshot())
	errs := logEntries(t, buf, "ERROR")
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0]["error"], "corrupt header")
}

func TestIterator_FactoryFaults(t *testing.T) {
	tests := []struct {
		name    string
		factory Factory[int, int]
		wantLog string
	}{
		{
			name: "error",
			factory: func() (Sequence[int, int], error) {
				return nil, errors.New("no such directory")
			},
			wantLog: "no such directory",
		},
		{
			name: "panic",
			factory: func() (Sequence[int, int], error) {
				panic("factory exploded")
			},
			wantLog: "factory exploded",
		},
		{
			name: "nil sequence",
			factory: func() (Sequence[int, int], error) {
				return nil, nil
			},
			wantLog: ErrNilSequence.Error(),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			logger, buf := captureLogger()
			it := New(tc.factory, WithLogger(logger))
			rec := &recorder[int, int]{}
			it.Subscribe(rec)

			require.NoError(t, it.Run())

			assert.Equal(t, []event{absentEv()}, rec.snapshot())
			errs := logEntries(t, buf, "ERROR")
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0]["error"], tc.wantLog)
		})
	}
}

func TestIterator_NothingBeforeRun(t *testing.T) {
	called := false
	it := New(func() (Sequence[int, int], error) {
		called = true
		return FromSlice([]int{1}, 2), nil
	})
	rec := &recorder[int, int]{}
	it.Subscribe(rec)

	assert.False(t, called)
	assert.Empty(t, rec.snapshot())
	assert.Equal(t, StateNotStarted, it.State())
}

func TestIterator_SecondRunRejected(t *testing.T) {
	calls := 0
	it := New(func() (Sequence[int, int], error) {
		calls++
		return FromSlice([]int{1, 2}, 3), nil
	})
	rec := &recorder[int, int]{}
	it.Subscribe(rec)

	require.NoError(t, it.Run())
	err := it.Run()

	assert.ErrorIs(t, err, ErrAlreadyRun)
	assert.Equal(t, 1, calls)
	assert.Len(t, rec.snapshot(), 3)
}

func TestIterator_MultipleObserversInOrder(t *testing.T) {
	var order []string
	it := New(func() (Sequence[int, int], error) {
		return FromSlice([]int{1}, 9), nil
	})
	for _, name := range []string{"first", "second"} {
		it.Subscribe(ObserverFuncs[int, int]{
			Progress: func(int) { order = append(order, name+":progress") },
			Complete: func(Completion[int]) { order = append(order, name+":complete") },
		})
	}

	require.NoError(t, it.Run())

	assert.Equal(t, []string{
		"first:progress", "second:progress",
		"first:complete", "second:complete",
	}, order)
}

func TestIterator_SubscribeAfterRunIgnored(t *testing.T) {
	it := New(func() (Sequence[int, int], error) {
		return FromSlice([]int{1}, 2), nil
	})
	require.NoError(t, it.Run())

	rec := &recorder[int, int]{}
	it.Subscribe(rec)

	assert.Empty(t, rec.snapshot())
}

func TestIterator_ListenerPanicStillCompletes(t *testing.T) {
	logger, buf := captureLogger()
	stopped := false
	it := New(func() (Sequence[int, int], error) {
		return Generate(func(yield func(int) bool) (int, error) {
			for i := 0; i < 5; i++ {
				if !yield(i) {
					stopped = true
					return 0, nil
				}
			}
			return 5, nil
		}), nil
	}, WithLogger(logger))
	it.Subscribe(ObserverFuncs[int, int]{
		Progress: func(v int) {
			if v == 1 {
				panic("listener bug")
			}
		},
	})
	rec := &recorder[int, int]{}
	it.Subscribe(rec)

	require.NoError(t, it.Run())

	assert.Equal(t, []event{progressEv(0), absentEv()}, rec.snapshot())
	assert.True(t, stopped, "producer should be released when the cycle ends early")
	assert.Len(t, logEntries(t, buf, "ERROR"), 1)
}

func TestIterator_ZeroValueResultIsPresent(t *testing.T) {
	it := New(func() (Sequence[int, int], error) {
		return Generate(func(yield func(int) bool) (int, error) {
			return 0, nil
		}), nil
	})
	var got Completion[int]
	it.Subscribe(ObserverFuncs[int, int]{Complete: func(c Completion[int]) { got = c }})

	require.NoError(t, it.Run())

	v, ok := got.Get()
	assert.True(t, ok)
	assert.Equal(t, 0, v)
}

func TestIterator_CompletionAlwaysLast(t *testing.T) {
	for n := 0; n < 20; n++ {
		values := make([]int, n)
		for i := range values {
			values[i] = i
		}
		it := New(func() (Sequence[int, int], error) {
			return FromSlice(values, n), nil
		})
		rec := &recorder[int, int]{}
		it.Subscribe(rec)
		require.NoError(t, it.Run())

		events := rec.snapshot()
		require.Len(t, events, n+1)
		for i, ev := range events[:n] {
			assert.Equal(t, progressEv(i), ev)
		}
		assert.Equal(t, completeEv(n), events[n])
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "not started", StateNotStarted.String())
	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "completed", StateCompleted.String())
	assert.Equal(t, "State(7)", State(7).String())
}
