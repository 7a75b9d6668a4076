package grx

import "sync/atomic"

// runMapper invokes a transforming callback, converting a panic into an
// error result.
func runMapper[T, K any](f func(T) (K, error), v T) (k K, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = RuntimeError(r)
		}
	}()
	return f(v)
}

func runSupplier[K any](f func() K) (k K, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = RuntimeError(r)
		}
	}()
	return f(), nil
}

func runPred[T any](f func(T) bool, v T) (keep bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = RuntimeError(r)
		}
	}()
	return f(v), nil
}

// ===== map =====

// mapSubscriber transforms each upstream value. Demand is one-to-one, so
// the upstream subscription passes straight through. A failing mapper
// cancels upstream and delivers the failure downstream; the exception never
// escapes OnNext.
type mapSubscriber[T, K any] struct {
	actual   Subscriber[K]
	mapper   func(T) (K, error)
	upstream Subscription
	done     int32
}

func (m *mapSubscriber[T, K]) fail(err error) {
	if atomic.CompareAndSwapInt32(&m.done, 0, 1) {
		if m.upstream != nil {
			m.upstream.Cancel()
		}
		m.actual.OnError(err)
	}
}

func (m *mapSubscriber[T, K]) OnSubscribe(s Subscription) {
	m.upstream = s
	m.actual.OnSubscribe(s)
}

func (m *mapSubscriber[T, K]) OnNext(v T) {
	if atomic.LoadInt32(&m.done) == 1 {
		return
	}
	k, err := runMapper(m.mapper, v)
	if err != nil {
		m.fail(err)
		return
	}
	m.actual.OnNext(k)
}

func (m *mapSubscriber[T, K]) OnError(err error) {
	if atomic.CompareAndSwapInt32(&m.done, 0, 1) {
		m.actual.OnError(err)
	}
}

func (m *mapSubscriber[T, K]) OnComplete() {
	if atomic.CompareAndSwapInt32(&m.done, 0, 1) {
		m.actual.OnComplete()
	}
}

// ===== filter =====

// filterSubscriber drops non-matching values, requesting a replacement from
// upstream for each drop so downstream demand stays honored.
type filterSubscriber[T any] struct {
	actual   Subscriber[T]
	pred     func(T) bool
	upstream Subscription
	done     int32
}

func (f *filterSubscriber[T]) OnSubscribe(s Subscription) {
	f.upstream = s
	f.actual.OnSubscribe(s)
}

func (f *filterSubscriber[T]) OnNext(v T) {
	if atomic.LoadInt32(&f.done) == 1 {
		return
	}
	keep, err := runPred(f.pred, v)
	if err != nil {
		if atomic.CompareAndSwapInt32(&f.done, 0, 1) {
			f.upstream.Cancel()
			f.actual.OnError(err)
		}
		return
	}
	if keep {
		f.actual.OnNext(v)
		return
	}
	f.upstream.Request(1)
}

func (f *filterSubscriber[T]) OnError(err error) {
	if atomic.CompareAndSwapInt32(&f.done, 0, 1) {
		f.actual.OnError(err)
	}
}

func (f *filterSubscriber[T]) OnComplete() {
	if atomic.CompareAndSwapInt32(&f.done, 0, 1) {
		f.actual.OnComplete()
	}
}

// ===== take =====

type takeSubscriber[T any] struct {
	actual    Subscriber[T]
	remaining int64
	upstream  Subscription
	done      int32
}

func (t *takeSubscriber[T]) OnSubscribe(s Subscription) {
	t.upstream = s
	if t.remaining <= 0 {
		t.actual.OnSubscribe(noopSubscription{})
		if atomic.CompareAndSwapInt32(&t.done, 0, 1) {
			s.Cancel()
			t.actual.OnComplete()
		}
		return
	}
	t.actual.OnSubscribe(s)
}

func (t *takeSubscriber[T]) OnNext(v T) {
	if atomic.LoadInt32(&t.done) == 1 {
		return
	}
	left := atomic.AddInt64(&t.remaining, -1)
	if left < 0 {
		return
	}
	t.actual.OnNext(v)
	if left == 0 && atomic.CompareAndSwapInt32(&t.done, 0, 1) {
		t.upstream.Cancel()
		t.actual.OnComplete()
	}
}

func (t *takeSubscriber[T]) OnError(err error) {
	if atomic.CompareAndSwapInt32(&t.done, 0, 1) {
		t.actual.OnError(err)
	}
}

func (t *takeSubscriber[T]) OnComplete() {
	if atomic.CompareAndSwapInt32(&t.done, 0, 1) {
		t.actual.OnComplete()
	}
}

// ===== doOn hooks =====

// doOnHooks are side-effect taps at the corresponding signal points. They
// must not alter the signal; a panicking hook is treated as the stage itself
// failing at that point and becomes an OnError.
type doOnHooks[T any] struct {
	onSubscribe func(Subscription)
	onRequest   func(int64)
	onCancel    func()
	onNext      func(T)
	onError     func(error)
	onComplete  func()
}

type doOnSubscriber[T any] struct {
	actual   Subscriber[T]
	hooks    doOnHooks[T]
	upstream Subscription
	done     int32
}

func (d *doOnSubscriber[T]) fail(err error) {
	if atomic.CompareAndSwapInt32(&d.done, 0, 1) {
		if d.upstream != nil {
			d.upstream.Cancel()
		}
		d.actual.OnError(err)
	}
}

func (d *doOnSubscriber[T]) OnSubscribe(s Subscription) {
	d.upstream = s
	wrapped := s
	if d.hooks.onRequest != nil || d.hooks.onCancel != nil {
		wrapped = &hookSubscription[T]{owner: d, sub: s}
	}
	if d.hooks.onSubscribe != nil {
		if err := runHook(func() { d.hooks.onSubscribe(s) }); err != nil {
			d.actual.OnSubscribe(noopSubscription{})
			d.fail(err)
			return
		}
	}
	d.actual.OnSubscribe(wrapped)
}

func (d *doOnSubscriber[T]) OnNext(v T) {
	if atomic.LoadInt32(&d.done) == 1 {
		return
	}
	if d.hooks.onNext != nil {
		if err := runHook(func() { d.hooks.onNext(v) }); err != nil {
			d.fail(err)
			return
		}
	}
	d.actual.OnNext(v)
}

func (d *doOnSubscriber[T]) OnError(err error) {
	if !atomic.CompareAndSwapInt32(&d.done, 0, 1) {
		return
	}
	if d.hooks.onError != nil {
		if herr := runHook(func() { d.hooks.onError(err) }); herr != nil {
			d.actual.OnError(herr)
			return
		}
	}
	d.actual.OnError(err)
}

func (d *doOnSubscriber[T]) OnComplete() {
	if !atomic.CompareAndSwapInt32(&d.done, 0, 1) {
		return
	}
	if d.hooks.onComplete != nil {
		if err := runHook(d.hooks.onComplete); err != nil {
			d.actual.OnError(err)
			return
		}
	}
	d.actual.OnComplete()
}

// hookSubscription taps Request and Cancel on their way upstream.
type hookSubscription[T any] struct {
	owner *doOnSubscriber[T]
	sub   Subscription
}

func (h *hookSubscription[T]) Request(n int64) {
	if h.owner.hooks.onRequest != nil {
		if err := runHook(func() { h.owner.hooks.onRequest(n) }); err != nil {
			h.owner.fail(err)
			return
		}
	}
	h.sub.Request(n)
}

func (h *hookSubscription[T]) Cancel() {
	if h.owner.hooks.onCancel != nil {
		if err := runHook(h.owner.hooks.onCancel); err != nil {
			h.owner.fail(err)
			return
		}
	}
	h.sub.Cancel()
}
