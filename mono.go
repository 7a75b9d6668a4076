package grx

// A Mono describes a sequence of at most one value: it emits one value then
// completes, completes empty, or errors. Like Flux it is an immutable
// description; every Subscribe starts an independent execution.
type Mono[T any] struct {
	subscribe func(Subscriber[T])
}

func newMono[T any](subscribe func(Subscriber[T])) *Mono[T] {
	return &Mono[T]{subscribe}
}

func (m *Mono[T]) Subscribe(s Subscriber[T]) {
	m.subscribe(s)
}

func (m *Mono[T]) SubscribeFuncs(fns SubscriberFuncs[T]) {
	m.Subscribe(fns.Build())
}

func (m *Mono[T]) SubscribeNext(next func(T)) {
	m.SubscribeFuncs(SubscriberFuncs[T]{OnNextFunc: next})
}

// AsFlux exposes the Mono as a Flux for merging and splicing.
func (m *Mono[T]) AsFlux() *Flux[T] {
	return newFlux(m.subscribe)
}

// ===== sources =====

// MonoJust emits the single given value, then completes.
func MonoJust[T any](value T) *Mono[T] {
	return newMono(func(s Subscriber[T]) {
		s.OnSubscribe(newSliceSubscription(s, []T{value}))
	})
}

// MonoEmpty completes immediately without emitting.
func MonoEmpty[T any]() *Mono[T] {
	return newMono(func(s Subscriber[T]) {
		s.OnSubscribe(noopSubscription{})
		s.OnComplete()
	})
}

// MonoError terminates immediately with err.
func MonoError[T any](err error) *Mono[T] {
	return newMono(func(s Subscriber[T]) {
		s.OnSubscribe(noopSubscription{})
		s.OnError(err)
	})
}

// MonoDefer builds a fresh Mono per subscriber.
func MonoDefer[T any](factory func() *Mono[T]) *Mono[T] {
	return newMono(func(s Subscriber[T]) {
		m, err := runSupplier(factory)
		if err == nil && m == nil {
			err = RuntimeError("defer factory returned no publisher")
		}
		if err != nil {
			s.OnSubscribe(noopSubscription{})
			s.OnError(err)
			return
		}
		m.Subscribe(s)
	})
}

// ===== operators =====

func (m *Mono[T]) Map(fn func(T) (T, error)) *Mono[T] {
	return MapMono(m, fn)
}

func (m *Mono[T]) Filter(pred func(T) bool) *Mono[T] {
	return newMono(func(s Subscriber[T]) {
		m.Subscribe(&filterSubscriber[T]{actual: s, pred: pred})
	})
}

func (m *Mono[T]) doOn(hooks doOnHooks[T]) *Mono[T] {
	return newMono(func(s Subscriber[T]) {
		m.Subscribe(&doOnSubscriber[T]{actual: s, hooks: hooks})
	})
}

func (m *Mono[T]) DoOnSubscribe(fn func(Subscription)) *Mono[T] {
	return m.doOn(doOnHooks[T]{onSubscribe: fn})
}

func (m *Mono[T]) DoOnRequest(fn func(int64)) *Mono[T] {
	return m.doOn(doOnHooks[T]{onRequest: fn})
}

func (m *Mono[T]) DoOnCancel(fn func()) *Mono[T] {
	return m.doOn(doOnHooks[T]{onCancel: fn})
}

func (m *Mono[T]) DoOnNext(fn func(T)) *Mono[T] {
	return m.doOn(doOnHooks[T]{onNext: fn})
}

func (m *Mono[T]) DoOnError(fn func(error)) *Mono[T] {
	return m.doOn(doOnHooks[T]{onError: fn})
}

func (m *Mono[T]) DoOnComplete(fn func()) *Mono[T] {
	return m.doOn(doOnHooks[T]{onComplete: fn})
}

// DoOnSuccess runs fn right before completion, with the emitted value or
// the zero value for an empty Mono. It does not run on error.
func (m *Mono[T]) DoOnSuccess(fn func(T)) *Mono[T] {
	return newMono(func(s Subscriber[T]) {
		var last T
		m.Subscribe(&doOnSubscriber[T]{
			actual: s,
			hooks: doOnHooks[T]{
				onNext:     func(v T) { last = v },
				onComplete: func() { fn(last) },
			},
		})
	})
}

func (m *Mono[T]) OnErrorReturn(fallback T) *Mono[T] {
	return m.OnErrorResume(func(error) *Mono[T] {
		return MonoJust(fallback)
	})
}

func (m *Mono[T]) OnErrorResume(fn func(error) *Mono[T]) *Mono[T] {
	return newMono(func(s Subscriber[T]) {
		m.Subscribe(newResumeSubscriber[T](s, func(err error) Publisher[T] {
			if next := fn(err); next != nil {
				return next
			}
			return nil
		}))
	})
}

func (m *Mono[T]) Async() *Mono[T] {
	return newMono(func(s Subscriber[T]) {
		m.Subscribe(newAsyncSubscriber(s))
	})
}

func (m *Mono[T]) Log() *Mono[T] {
	return newMono(func(s Subscriber[T]) {
		m.Subscribe(newLogSubscriber(s))
	})
}

// ===== type-changing operators =====

func MapMono[T, K any](m *Mono[T], fn func(T) (K, error)) *Mono[K] {
	return newMono(func(s Subscriber[K]) {
		m.Subscribe(&mapSubscriber[T, K]{actual: s, mapper: fn})
	})
}

// FlatMapMono maps the value, if any, to an inner Mono and continues with
// its outcome.
func FlatMapMono[T, K any](m *Mono[T], fn func(T) *Mono[K]) *Mono[K] {
	return newMono(func(s Subscriber[K]) {
		m.Subscribe(newFlatMapSubscriber[T, K](s, func(v T) (Publisher[K], error) {
			if inner := fn(v); inner != nil {
				return inner, nil
			}
			return nil, nil
		}))
	})
}
