// Package verify subscribes to a publisher with an expectation sequence and
// asserts that the delivered signal sequence matches: literal expected
// values, an expected error, an expected completion. Demand can be driven
// step by step to exercise backpressure.
package verify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/7vars/grx"
)

type stepKind int

const (
	stepNext stepKind = iota
	stepRequest
	stepCancel
	stepComplete
	stepError
)

type step[T any] struct {
	kind  stepKind
	value T
	n     int64
	match func(*testing.T, error)
}

type Verifier[T any] struct {
	publisher grx.Publisher[T]
	initial   int64
	steps     []step[T]
}

// Create starts a verifier that requests unbounded demand on subscribe.
func Create[T any](p grx.Publisher[T]) *Verifier[T] {
	return &Verifier[T]{publisher: p, initial: grx.RequestUnbounded}
}

// CreateWithDemand starts a verifier that requests n on subscribe; further
// demand is driven with ThenRequest.
func CreateWithDemand[T any](p grx.Publisher[T], n int64) *Verifier[T] {
	return &Verifier[T]{publisher: p, initial: n}
}

func (v *Verifier[T]) ExpectNext(values ...T) *Verifier[T] {
	for _, value := range values {
		v.steps = append(v.steps, step[T]{kind: stepNext, value: value})
	}
	return v
}

func (v *Verifier[T]) ThenRequest(n int64) *Verifier[T] {
	v.steps = append(v.steps, step[T]{kind: stepRequest, n: n})
	return v
}

func (v *Verifier[T]) ThenCancel() *Verifier[T] {
	v.steps = append(v.steps, step[T]{kind: stepCancel})
	return v
}

func (v *Verifier[T]) ExpectComplete() *Verifier[T] {
	v.steps = append(v.steps, step[T]{kind: stepComplete})
	return v
}

func (v *Verifier[T]) ExpectError(match func(*testing.T, error)) *Verifier[T] {
	v.steps = append(v.steps, step[T]{kind: stepError, match: match})
	return v
}

// Verify subscribes and walks the expectation sequence, failing the test on
// the first mismatch. After a terminal expectation or a cancel it asserts
// that no further signals arrive.
func (v *Verifier[T]) Verify(t *testing.T) {
	t.Helper()
	timeout := grx.Configuration().GetDurationDefault("grx.verify.timeout", 5*time.Second)
	rec := &recorder[T]{
		initial: v.initial,
		signals: make(chan grx.Signal[T], 1024),
	}
	v.publisher.Subscribe(rec)

	for _, s := range v.steps {
		switch s.kind {
		case stepNext:
			sig := rec.await(t, timeout)
			require.Equalf(t, grx.SignalNext, sig.Type, "expected onNext(%v), got %s", s.value, sig)
			require.Equal(t, s.value, sig.Value)
		case stepRequest:
			rec.sub.Request(s.n)
		case stepCancel:
			rec.sub.Cancel()
		case stepComplete:
			sig := rec.await(t, timeout)
			require.Equalf(t, grx.SignalComplete, sig.Type, "expected onComplete, got %s", sig)
		case stepError:
			sig := rec.await(t, timeout)
			require.Equalf(t, grx.SignalError, sig.Type, "expected onError, got %s", sig)
			if s.match != nil {
				s.match(t, sig.Err)
			}
		}
	}

	rec.expectSilence(t)
}

// VerifyComplete expects completion as the next signal, then verifies.
func (v *Verifier[T]) VerifyComplete(t *testing.T) {
	t.Helper()
	v.ExpectComplete().Verify(t)
}

// VerifyError expects any error as the next signal, then verifies.
func (v *Verifier[T]) VerifyError(t *testing.T) {
	t.Helper()
	v.ExpectError(nil).Verify(t)
}

func (v *Verifier[T]) VerifyErrorIs(t *testing.T, want error) {
	t.Helper()
	v.ExpectError(func(t *testing.T, err error) {
		t.Helper()
		require.ErrorIs(t, err, want)
	}).Verify(t)
}

func (v *Verifier[T]) VerifyErrorMessage(t *testing.T, msg string) {
	t.Helper()
	v.ExpectError(func(t *testing.T, err error) {
		t.Helper()
		require.EqualError(t, err, msg)
	}).Verify(t)
}

type recorder[T any] struct {
	initial int64
	signals chan grx.Signal[T]
	sub     grx.Subscription
}

func (r *recorder[T]) OnSubscribe(s grx.Subscription) {
	r.sub = s
	if r.initial > 0 {
		s.Request(r.initial)
	}
}

func (r *recorder[T]) OnNext(v T) {
	r.signals <- grx.NextSignal(v)
}

func (r *recorder[T]) OnError(err error) {
	r.signals <- grx.ErrorSignal[T](err)
}

func (r *recorder[T]) OnComplete() {
	r.signals <- grx.CompleteSignal[T]()
}

func (r *recorder[T]) await(t *testing.T, timeout time.Duration) grx.Signal[T] {
	t.Helper()
	select {
	case sig := <-r.signals:
		return sig
	case <-time.After(timeout):
		require.FailNow(t, "timed out waiting for a signal")
		return grx.Signal[T]{}
	}
}

// expectSilence gives stragglers a moment to arrive, then asserts none did.
func (r *recorder[T]) expectSilence(t *testing.T) {
	t.Helper()
	select {
	case sig := <-r.signals:
		require.FailNowf(t, "unexpected trailing signal", "%s", sig)
	case <-time.After(20 * time.Millisecond):
	}
}
