package grx

import "github.com/google/uuid"

// logSubscriber taps every signal of one subscription into the logger,
// correlated by a short per-subscription id. Logging never alters the
// signals or the demand passing through.
type logSubscriber[T any] struct {
	actual Subscriber[T]
	log    Logger
}

func newLogSubscriber[T any](actual Subscriber[T]) *logSubscriber[T] {
	return &logSubscriber[T]{
		actual: actual,
		log: newLogger().With(map[string]interface{}{
			"operator":     "log",
			"subscription": uuid.NewString()[:8],
		}),
	}
}

func (l *logSubscriber[T]) OnSubscribe(s Subscription) {
	l.log.Infof("%s", Signal[T]{Type: SignalSubscribe})
	l.actual.OnSubscribe(&logSubscription[T]{owner: l, sub: s})
}

func (l *logSubscriber[T]) OnNext(v T) {
	l.log.Infof("%s", NextSignal(v))
	l.actual.OnNext(v)
}

func (l *logSubscriber[T]) OnError(err error) {
	l.log.Errorf("%s", ErrorSignal[T](err))
	l.actual.OnError(err)
}

func (l *logSubscriber[T]) OnComplete() {
	l.log.Infof("%s", CompleteSignal[T]())
	l.actual.OnComplete()
}

type logSubscription[T any] struct {
	owner *logSubscriber[T]
	sub   Subscription
}

func (ls *logSubscription[T]) Request(n int64) {
	ls.owner.log.Infof("%s", Signal[T]{Type: SignalRequest, Demand: n})
	ls.sub.Request(n)
}

func (ls *logSubscription[T]) Cancel() {
	ls.owner.log.Infof("%s", Signal[T]{Type: SignalCancel})
	ls.sub.Cancel()
}
