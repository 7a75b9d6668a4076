package grx

// A Flux describes a sequence of zero or more values. It is an immutable
// description: operators return a new Flux wrapping this one, and every
// Subscribe starts an independent execution.
type Flux[T any] struct {
	subscribe func(Subscriber[T])
}

func newFlux[T any](subscribe func(Subscriber[T])) *Flux[T] {
	return &Flux[T]{subscribe}
}

func (f *Flux[T]) Subscribe(s Subscriber[T]) {
	f.subscribe(s)
}

// SubscribeFuncs subscribes with callback parts; nil parts get defaults
// (unbounded demand, logged unhandled errors).
func (f *Flux[T]) SubscribeFuncs(fns SubscriberFuncs[T]) {
	f.Subscribe(fns.Build())
}

// SubscribeNext subscribes with unbounded demand, invoking next per value.
func (f *Flux[T]) SubscribeNext(next func(T)) {
	f.SubscribeFuncs(SubscriberFuncs[T]{OnNextFunc: next})
}

// ===== sources =====

// Just emits the given values in order, then completes.
func Just[T any](values ...T) *Flux[T] {
	return FromSlice(values)
}

// Range emits count consecutive ints starting at start.
func Range(start, count int) *Flux[int] {
	values := make([]int, 0, count)
	for i := 0; i < count; i++ {
		values = append(values, start+i)
	}
	return FromSlice(values)
}

func FromSlice[T any](values []T) *Flux[T] {
	return newFlux(func(s Subscriber[T]) {
		s.OnSubscribe(newSliceSubscription(s, values))
	})
}

// FromFunc pulls one value per unit of demand from f. Returning io.EOF
// completes the sequence; any other error terminates it with OnError.
func FromFunc[T any](f func() (T, error)) *Flux[T] {
	return newFlux(func(s Subscriber[T]) {
		s.OnSubscribe(newFuncSubscription(s, f))
	})
}

// Empty completes immediately without emitting.
func Empty[T any]() *Flux[T] {
	return newFlux(func(s Subscriber[T]) {
		s.OnSubscribe(noopSubscription{})
		s.OnComplete()
	})
}

// Error terminates immediately with err. Terminal signals need no demand.
func Error[T any](err error) *Flux[T] {
	return newFlux(func(s Subscriber[T]) {
		s.OnSubscribe(noopSubscription{})
		s.OnError(err)
	})
}

// Defer builds a fresh Flux per subscriber.
func Defer[T any](factory func() *Flux[T]) *Flux[T] {
	return newFlux(func(s Subscriber[T]) {
		f, err := runSupplier(factory)
		if err == nil && f == nil {
			err = RuntimeError("defer factory returned no publisher")
		}
		if err != nil {
			s.OnSubscribe(noopSubscription{})
			s.OnError(err)
			return
		}
		f.Subscribe(s)
	})
}

// ===== operators =====

// Map transforms values in place. For a type-changing transform use the
// package-level Map.
func (f *Flux[T]) Map(fn func(T) (T, error)) *Flux[T] {
	return Map(f, fn)
}

func (f *Flux[T]) Filter(pred func(T) bool) *Flux[T] {
	return newFlux(func(s Subscriber[T]) {
		f.Subscribe(&filterSubscriber[T]{actual: s, pred: pred})
	})
}

func (f *Flux[T]) Take(n int64) *Flux[T] {
	return newFlux(func(s Subscriber[T]) {
		f.Subscribe(&takeSubscriber[T]{actual: s, remaining: n})
	})
}

func (f *Flux[T]) doOn(hooks doOnHooks[T]) *Flux[T] {
	return newFlux(func(s Subscriber[T]) {
		f.Subscribe(&doOnSubscriber[T]{actual: s, hooks: hooks})
	})
}

func (f *Flux[T]) DoOnSubscribe(fn func(Subscription)) *Flux[T] {
	return f.doOn(doOnHooks[T]{onSubscribe: fn})
}

func (f *Flux[T]) DoOnRequest(fn func(int64)) *Flux[T] {
	return f.doOn(doOnHooks[T]{onRequest: fn})
}

func (f *Flux[T]) DoOnCancel(fn func()) *Flux[T] {
	return f.doOn(doOnHooks[T]{onCancel: fn})
}

func (f *Flux[T]) DoOnNext(fn func(T)) *Flux[T] {
	return f.doOn(doOnHooks[T]{onNext: fn})
}

func (f *Flux[T]) DoOnError(fn func(error)) *Flux[T] {
	return f.doOn(doOnHooks[T]{onError: fn})
}

func (f *Flux[T]) DoOnComplete(fn func()) *Flux[T] {
	return f.doOn(doOnHooks[T]{onComplete: fn})
}

// OnErrorReturn replaces an upstream error with a single fallback value
// followed by completion.
func (f *Flux[T]) OnErrorReturn(fallback T) *Flux[T] {
	return f.OnErrorResume(func(error) *Flux[T] {
		return Just(fallback)
	})
}

// OnErrorResume intercepts one upstream error and splices in the sequence
// of the publisher returned by fn, resuming against the demand already
// granted downstream.
func (f *Flux[T]) OnErrorResume(fn func(error) *Flux[T]) *Flux[T] {
	return newFlux(func(s Subscriber[T]) {
		f.Subscribe(newResumeSubscriber[T](s, func(err error) Publisher[T] {
			if next := fn(err); next != nil {
				return next
			}
			return nil
		}))
	})
}

// Async hands signal delivery off to a dedicated goroutine.
func (f *Flux[T]) Async() *Flux[T] {
	return newFlux(func(s Subscriber[T]) {
		f.Subscribe(newAsyncSubscriber(s))
	})
}

// Log taps every signal of every subscription into the logger.
func (f *Flux[T]) Log() *Flux[T] {
	return newFlux(func(s Subscriber[T]) {
		f.Subscribe(newLogSubscriber(s))
	})
}

// ===== type-changing operators =====

// Map transforms each value of f with fn. A failing fn cancels upstream and
// terminates downstream with OnError.
func Map[T, K any](f *Flux[T], fn func(T) (K, error)) *Flux[K] {
	return newFlux(func(s Subscriber[K]) {
		f.Subscribe(&mapSubscriber[T, K]{actual: s, mapper: fn})
	})
}

// FlatMap subscribes to fn's publisher per upstream value and merges the
// resulting sequences. Downstream completes only after the upstream and all
// inner publishers have completed; any error terminates the merge.
func FlatMap[T, K any](f *Flux[T], fn func(T) *Flux[K]) *Flux[K] {
	return newFlux(func(s Subscriber[K]) {
		f.Subscribe(newFlatMapSubscriber[T, K](s, func(v T) (Publisher[K], error) {
			if inner := fn(v); inner != nil {
				return inner, nil
			}
			return nil, nil
		}))
	})
}
