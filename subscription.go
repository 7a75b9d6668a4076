package grx

import (
	"errors"
	"io"
	"sync/atomic"
)

// Subscription states. Transitions out of stateActive are final; any signal
// attempted afterward is suppressed, not errored.
const (
	stateActive int32 = iota
	stateTerminated
	stateCancelled
)

// satAdd adds n to demand, saturating at RequestUnbounded. Callers must hold
// whatever guards demand.
func satAdd(demand, n int64) int64 {
	if demand == RequestUnbounded {
		return demand
	}
	sum := demand + n
	if sum < 0 {
		return RequestUnbounded
	}
	return sum
}

// addCap atomically accumulates demand, saturating at RequestUnbounded.
func addCap(demand *int64, n int64) int64 {
	for {
		cur := atomic.LoadInt64(demand)
		if cur == RequestUnbounded {
			return cur
		}
		next := satAdd(cur, n)
		if atomic.CompareAndSwapInt64(demand, cur, next) {
			return next
		}
	}
}

// produced atomically subtracts one emitted element from demand.
func produced(demand *int64) int64 {
	for {
		cur := atomic.LoadInt64(demand)
		if cur == RequestUnbounded {
			return cur
		}
		next := cur - 1
		if next < 0 {
			next = 0
		}
		if atomic.CompareAndSwapInt64(demand, cur, next) {
			return next
		}
	}
}

// coreSubscription carries the per-subscription demand accounting shared by
// the source subscriptions below. The wip counter serializes the drain loop:
// a reentrant Request from within OnNext bumps wip and returns, and the
// already-running drain picks up the new demand on its next pass instead of
// recursing.
type coreSubscription[T any] struct {
	actual Subscriber[T]
	demand int64
	wip    int64
	state  int32
}

func (s *coreSubscription[T]) active() bool {
	return atomic.LoadInt32(&s.state) == stateActive
}

func (s *coreSubscription[T]) terminate() bool {
	return atomic.CompareAndSwapInt32(&s.state, stateActive, stateTerminated)
}

func (s *coreSubscription[T]) Cancel() {
	atomic.CompareAndSwapInt32(&s.state, stateActive, stateCancelled)
}

func (s *coreSubscription[T]) badDemand() {
	if s.terminate() {
		s.actual.OnError(ErrBadDemand)
	}
}

// ===== slice source =====

// sliceSubscription emits a fixed finite sequence. Backs Just, Range and
// FromSlice; a single value is just a slice of one.
type sliceSubscription[T any] struct {
	coreSubscription[T]
	values []T
	index  int64
}

func newSliceSubscription[T any](actual Subscriber[T], values []T) *sliceSubscription[T] {
	return &sliceSubscription[T]{
		coreSubscription: coreSubscription[T]{actual: actual},
		values:           values,
	}
}

func (s *sliceSubscription[T]) Request(n int64) {
	if n <= 0 {
		s.badDemand()
		return
	}
	addCap(&s.demand, n)
	s.drain()
}

func (s *sliceSubscription[T]) drain() {
	if atomic.AddInt64(&s.wip, 1) != 1 {
		return
	}
	for {
		for atomic.LoadInt64(&s.demand) > 0 && s.active() && s.index < int64(len(s.values)) {
			v := s.values[s.index]
			s.index++
			produced(&s.demand)
			s.actual.OnNext(v)
		}
		if s.index >= int64(len(s.values)) && s.terminate() {
			s.actual.OnComplete()
		}
		if atomic.AddInt64(&s.wip, -1) == 0 {
			return
		}
	}
}

// ===== pull-function source =====

// funcSubscription pulls one element per unit of demand from a producer
// function. The producer signals exhaustion with io.EOF; any other error is
// delivered as OnError.
type funcSubscription[T any] struct {
	coreSubscription[T]
	next func() (T, error)
}

func newFuncSubscription[T any](actual Subscriber[T], next func() (T, error)) *funcSubscription[T] {
	return &funcSubscription[T]{
		coreSubscription: coreSubscription[T]{actual: actual},
		next:             next,
	}
}

func (s *funcSubscription[T]) Request(n int64) {
	if n <= 0 {
		s.badDemand()
		return
	}
	addCap(&s.demand, n)
	s.drain()
}

func (s *funcSubscription[T]) pull() (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = RuntimeError(r)
		}
	}()
	return s.next()
}

func (s *funcSubscription[T]) drain() {
	if atomic.AddInt64(&s.wip, 1) != 1 {
		return
	}
	for {
		for atomic.LoadInt64(&s.demand) > 0 && s.active() {
			v, err := s.pull()
			if err != nil {
				if errors.Is(err, io.EOF) {
					if s.terminate() {
						s.actual.OnComplete()
					}
				} else if s.terminate() {
					s.actual.OnError(err)
				}
				break
			}
			produced(&s.demand)
			s.actual.OnNext(v)
		}
		if atomic.AddInt64(&s.wip, -1) == 0 {
			return
		}
	}
}
