package grx

import (
	"sync"
	"sync/atomic"
)

// arbiterSubscription relays demand to the current upstream and carries the
// unfulfilled remainder across an upstream switch, so a substitute publisher
// spliced in by onErrorResume resumes against the demand the subscriber
// already granted.
type arbiterSubscription struct {
	mu        sync.Mutex
	current   Subscription
	requested int64
	cancelled bool
}

func (a *arbiterSubscription) Request(n int64) {
	a.mu.Lock()
	if n > 0 {
		a.requested = satAdd(a.requested, n)
	}
	cur := a.current
	a.mu.Unlock()
	if cur != nil {
		cur.Request(n)
	}
}

func (a *arbiterSubscription) Cancel() {
	a.mu.Lock()
	a.cancelled = true
	cur := a.current
	a.mu.Unlock()
	if cur != nil {
		cur.Cancel()
	}
}

// set switches to a new upstream, replaying the outstanding demand.
func (a *arbiterSubscription) set(s Subscription) {
	a.mu.Lock()
	a.current = s
	n := a.requested
	cancelled := a.cancelled
	a.mu.Unlock()
	if cancelled {
		s.Cancel()
		return
	}
	if n > 0 {
		s.Request(n)
	}
}

// produced accounts one value delivered downstream.
func (a *arbiterSubscription) produced() {
	a.mu.Lock()
	if a.requested != RequestUnbounded && a.requested > 0 {
		a.requested--
	}
	a.mu.Unlock()
}

// resumeSubscriber intercepts exactly one OnError and splices in the signal
// sequence of a substitute publisher. It re-subscribes itself to the
// substitute, so a second error passes through to the subscriber untouched.
type resumeSubscriber[T any] struct {
	actual     Subscriber[T]
	next       func(error) Publisher[T]
	arbiter    *arbiterSubscription
	subscribed int32
	resumed    int32
	done       int32
}

func newResumeSubscriber[T any](actual Subscriber[T], next func(error) Publisher[T]) *resumeSubscriber[T] {
	return &resumeSubscriber[T]{
		actual:  actual,
		next:    next,
		arbiter: &arbiterSubscription{},
	}
}

func (r *resumeSubscriber[T]) OnSubscribe(s Subscription) {
	if atomic.CompareAndSwapInt32(&r.subscribed, 0, 1) {
		r.arbiter.set(s)
		r.actual.OnSubscribe(r.arbiter)
		return
	}
	// substitute publisher attached; outstanding demand is replayed
	r.arbiter.set(s)
}

func (r *resumeSubscriber[T]) OnNext(v T) {
	if atomic.LoadInt32(&r.done) == 1 {
		return
	}
	r.arbiter.produced()
	r.actual.OnNext(v)
}

func (r *resumeSubscriber[T]) OnError(err error) {
	if atomic.CompareAndSwapInt32(&r.resumed, 0, 1) {
		p, perr := runMapper(func(e error) (Publisher[T], error) {
			return r.next(e), nil
		}, err)
		if perr == nil && p == nil {
			perr = RuntimeError("onErrorResume returned no publisher")
		}
		if perr != nil {
			if atomic.CompareAndSwapInt32(&r.done, 0, 1) {
				r.actual.OnError(perr)
			}
			return
		}
		p.Subscribe(r)
		return
	}
	if atomic.CompareAndSwapInt32(&r.done, 0, 1) {
		r.actual.OnError(err)
	}
}

func (r *resumeSubscriber[T]) OnComplete() {
	if atomic.CompareAndSwapInt32(&r.done, 0, 1) {
		r.actual.OnComplete()
	}
}
