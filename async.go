package grx

import "sync/atomic"

// asyncSubscriber moves signal delivery onto a dedicated goroutine: upstream
// signals are handed off through a bounded channel and a worker replays them
// downstream in order, which keeps the serial-signal invariant even when the
// producer runs elsewhere. Demand flows straight back upstream.
type asyncSubscriber[T any] struct {
	actual    Subscriber[T]
	events    chan Signal[T]
	abort     chan struct{}
	upstream  Subscription
	closed    int32
	cancelled int32
}

func newAsyncSubscriber[T any](actual Subscriber[T]) *asyncSubscriber[T] {
	size := config().GetIntDefault("grx.async.buffer", 16)
	if size < 1 {
		size = 1
	}
	return &asyncSubscriber[T]{
		actual: actual,
		events: make(chan Signal[T], size),
		abort:  make(chan struct{}),
	}
}

func (a *asyncSubscriber[T]) OnSubscribe(s Subscription) {
	a.upstream = s
	a.actual.OnSubscribe(&asyncSubscription[T]{a})
	go a.run()
}

func (a *asyncSubscriber[T]) run() {
	for {
		select {
		case <-a.abort:
			return
		case sig := <-a.events:
			if atomic.LoadInt32(&a.cancelled) == 1 {
				return
			}
			switch sig.Type {
			case SignalNext:
				a.actual.OnNext(sig.Value)
			case SignalError:
				a.actual.OnError(sig.Err)
				return
			case SignalComplete:
				a.actual.OnComplete()
				return
			}
		}
	}
}

func (a *asyncSubscriber[T]) emit(sig Signal[T]) {
	if sig.IsTerminal() {
		if !atomic.CompareAndSwapInt32(&a.closed, 0, 1) {
			return
		}
	} else if atomic.LoadInt32(&a.closed) == 1 {
		return
	}
	select {
	case a.events <- sig:
	case <-a.abort:
	}
}

func (a *asyncSubscriber[T]) OnNext(v T) {
	a.emit(NextSignal(v))
}

func (a *asyncSubscriber[T]) OnError(err error) {
	a.emit(ErrorSignal[T](err))
}

func (a *asyncSubscriber[T]) OnComplete() {
	a.emit(CompleteSignal[T]())
}

type asyncSubscription[T any] struct {
	a *asyncSubscriber[T]
}

func (s *asyncSubscription[T]) Request(n int64) {
	// hop off the worker goroutine: a synchronous upstream would otherwise
	// drain into the handoff channel while the worker is stuck inside the
	// reentrant OnNext that requested more
	go s.a.upstream.Request(n)
}

func (s *asyncSubscription[T]) Cancel() {
	if atomic.CompareAndSwapInt32(&s.a.cancelled, 0, 1) {
		close(s.a.abort)
		s.a.upstream.Cancel()
	}
}
