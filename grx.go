// Package grx provides a demand-driven reactive-streams core: publishers
// emit values only against requested demand, signals flow through operator
// stages, and every subscription terminates with exactly one complete or
// error signal.
package grx

import "math"

// RequestUnbounded is the demand sentinel. Requesting it (or overflowing
// accumulated demand) switches a subscription to unbounded mode.
const RequestUnbounded = int64(math.MaxInt64)

// A Publisher is a provider of a potentially unbounded number of sequenced
// elements, publishing them according to the demand received from its
// Subscriber.
//
// Subscribe is a factory method: it can be called multiple times, each call
// starting a new, independent Subscription.
type Publisher[T any] interface {
	Subscribe(Subscriber[T])
}

// A Subscriber receives a call to OnSubscribe once after being passed to
// Publisher.Subscribe; the Subscription provided lets it request elements
// from the Publisher. After that it receives zero or more OnNext calls and
// exactly one terminal OnError or OnComplete.
type Subscriber[T any] interface {
	OnSubscribe(Subscription)
	OnNext(T)
	OnError(error)
	OnComplete()
}

// A Subscription represents the one-to-one lifecycle of a Subscriber
// subscribing to a Publisher.
type Subscription interface {
	// Request adds n to the outstanding demand. n must be positive;
	// accumulated demand saturates at RequestUnbounded. Safe to call from
	// within OnNext.
	Request(int64)
	// Cancel stops signal delivery. Idempotent.
	Cancel()
}

// A Processor is both a Subscriber and a Publisher.
type Processor[T, K any] interface {
	Subscriber[T]
	Publisher[K]
}

func Via[T, K any](pub Publisher[T], proc Processor[T, K]) Publisher[K] {
	pub.Subscribe(proc)
	return proc
}

func To[T any](pub Publisher[T], subs ...Subscriber[T]) {
	for _, sub := range subs {
		pub.Subscribe(sub)
	}
}

// noopSubscription is handed to subscribers of publishers that terminate
// immediately, before any demand can matter.
type noopSubscription struct{}

func (noopSubscription) Request(int64) {}
func (noopSubscription) Cancel()       {}
