package grx

// SubscriberFuncs assembles a Subscriber from named callbacks, in the manner
// of the four subscribe arities most consumers want: next only, next+error,
// next+error+complete, or everything including the subscription hook.
type SubscriberFuncs[T any] struct {
	OnSubscribeFunc func(Subscription)
	OnNextFunc      func(T)
	OnErrorFunc     func(error)
	OnCompleteFunc  func()
}

// Build fills in any nil functions. A missing subscription hook requests
// unbounded demand; a missing error hook logs the error as unhandled.
func (s SubscriberFuncs[T]) Build() Subscriber[T] {
	fs := s
	if fs.OnSubscribeFunc == nil {
		fs.OnSubscribeFunc = func(sub Subscription) {
			sub.Request(RequestUnbounded)
		}
	}
	if fs.OnNextFunc == nil {
		fs.OnNextFunc = func(T) {}
	}
	if fs.OnErrorFunc == nil {
		fs.OnErrorFunc = func(err error) {
			newLogger().WithField("grx", "subscriber").Errorf("unhandled error: %v", err)
		}
	}
	if fs.OnCompleteFunc == nil {
		fs.OnCompleteFunc = func() {}
	}
	return &assembledSubscriber[T]{fs}
}

type assembledSubscriber[T any] struct {
	funcs SubscriberFuncs[T]
}

func (as *assembledSubscriber[T]) OnSubscribe(s Subscription) {
	as.funcs.OnSubscribeFunc(s)
}

func (as *assembledSubscriber[T]) OnNext(v T) {
	as.funcs.OnNextFunc(v)
}

func (as *assembledSubscriber[T]) OnError(err error) {
	as.funcs.OnErrorFunc(err)
}

func (as *assembledSubscriber[T]) OnComplete() {
	as.funcs.OnCompleteFunc()
}

// BaseSubscriber is an embeddable subscriber that keeps hold of its
// subscription so hooks can top up demand from within OnNext. Without an
// OnSubscribeHook it requests unbounded demand.
type BaseSubscriber[T any] struct {
	OnSubscribeHook func(*BaseSubscriber[T])
	OnNextHook      func(*BaseSubscriber[T], T)
	OnErrorHook     func(error)
	OnCompleteHook  func()

	subscription Subscription
}

func (b *BaseSubscriber[T]) Request(n int64) {
	if b.subscription != nil {
		b.subscription.Request(n)
	}
}

func (b *BaseSubscriber[T]) Cancel() {
	if b.subscription != nil {
		b.subscription.Cancel()
	}
}

func (b *BaseSubscriber[T]) OnSubscribe(s Subscription) {
	b.subscription = s
	if b.OnSubscribeHook != nil {
		b.OnSubscribeHook(b)
		return
	}
	s.Request(RequestUnbounded)
}

func (b *BaseSubscriber[T]) OnNext(v T) {
	if b.OnNextHook != nil {
		b.OnNextHook(b, v)
	}
}

func (b *BaseSubscriber[T]) OnError(err error) {
	if b.OnErrorHook != nil {
		b.OnErrorHook(err)
		return
	}
	newLogger().WithField("grx", "subscriber").Errorf("unhandled error: %v", err)
}

func (b *BaseSubscriber[T]) OnComplete() {
	if b.OnCompleteHook != nil {
		b.OnCompleteHook()
	}
}
