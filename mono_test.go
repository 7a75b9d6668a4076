package grx_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/7vars/grx"
	"github.com/7vars/grx/verify"
)

func TestMonoSubscriber(t *testing.T) {
	name := grx.MonoJust("Petterson Santos").Log()

	verify.Create[string](name).
		ExpectNext("Petterson Santos").
		VerifyComplete(t)
}

func TestMonoSubscriberConsumer(t *testing.T) {
	var seen []string
	name := grx.MonoJust("Petterson Santos").
		Map(func(s string) (string, error) {
			return strings.ToUpper(s), nil
		}).
		DoOnNext(func(s string) { seen = append(seen, s) })

	verify.Create[string](name).
		ExpectNext("PETTERSON SANTOS").
		VerifyComplete(t)
	assert.Equal(t, []string{"PETTERSON SANTOS"}, seen)
}

func TestMonoSubscriberConsumerError(t *testing.T) {
	name := grx.MonoJust("Petterson Santos").
		Map(func(string) (string, error) {
			return "", errors.New("testing mono with error")
		})

	verify.Create[string](name).
		VerifyErrorMessage(t, "testing mono with error")
}

func TestMonoSubscriberConsumerComplete(t *testing.T) {
	completed := false
	name := grx.MonoJust("Petterson Santos").
		Map(func(s string) (string, error) {
			return strings.ToUpper(s), nil
		}).
		DoOnError(func(error) { t.Fatal("no error expected") }).
		DoOnComplete(func() { completed = true })

	verify.Create[string](name).
		ExpectNext("PETTERSON SANTOS").
		VerifyComplete(t)
	assert.True(t, completed)
}

func TestMonoSubscriberConsumerSubscription(t *testing.T) {
	var received []string
	completed := false

	grx.MonoJust("Petterson Santos").
		Map(func(s string) (string, error) {
			return strings.ToUpper(s), nil
		}).
		Subscribe(grx.SubscriberFuncs[string]{
			OnSubscribeFunc: func(s grx.Subscription) { s.Request(5) },
			OnNextFunc:      func(v string) { received = append(received, v) },
			OnCompleteFunc:  func() { completed = true },
		}.Build())

	assert.Equal(t, []string{"PETTERSON SANTOS"}, received)
	assert.True(t, completed)
}

func TestMonoDoOnMethods(t *testing.T) {
	subscribed := false
	var requested int64
	var nexts []string
	successes := 0

	name := grx.MonoJust("Petterson Santos").
		Map(func(s string) (string, error) {
			return strings.ToUpper(s), nil
		}).
		DoOnSubscribe(func(grx.Subscription) { subscribed = true }).
		DoOnRequest(func(n int64) { requested = n }).
		DoOnNext(func(s string) { nexts = append(nexts, s) })
	name = grx.FlatMapMono(name, func(string) *grx.Mono[string] {
		return grx.MonoEmpty[string]()
	})
	name = name.
		DoOnNext(func(s string) { t.Fatalf("value after empty flat map: %s", s) }).
		DoOnSuccess(func(string) { successes++ })

	verify.Create[string](name).VerifyComplete(t)

	assert.True(t, subscribed)
	assert.Equal(t, grx.RequestUnbounded, requested)
	assert.Equal(t, []string{"PETTERSON SANTOS"}, nexts)
	assert.Equal(t, 1, successes)
}

func TestMonoDoOnError(t *testing.T) {
	var seen error
	name := grx.MonoError[string](errors.New("testing mono with error")).
		DoOnError(func(err error) { seen = err }).
		DoOnNext(func(s string) { t.Fatalf("value after error: %s", s) })

	verify.Create[string](name).
		VerifyErrorMessage(t, "testing mono with error")
	assert.EqualError(t, seen, "testing mono with error")
}

func TestMonoDoOnErrorResume(t *testing.T) {
	var seen error
	name := grx.MonoError[string](errors.New("testing mono with error")).
		DoOnError(func(err error) { seen = err }).
		OnErrorResume(func(err error) *grx.Mono[string] {
			return grx.MonoJust("EMPTY")
		})

	verify.Create[string](name).
		ExpectNext("EMPTY").
		VerifyComplete(t)
	assert.EqualError(t, seen, "testing mono with error")
}

// The interceptor closest to the source claims the error. OnErrorReturn
// sits below the failing source here, so the outer resume never sees it.
func TestMonoOnErrorReturnThenResume(t *testing.T) {
	resumed := false
	name := grx.MonoError[string](errors.New("testing mono with error")).
		OnErrorReturn("EMPTY").
		OnErrorResume(func(err error) *grx.Mono[string] {
			resumed = true
			return grx.MonoJust("fallback")
		})

	verify.Create[string](name).
		ExpectNext("EMPTY").
		VerifyComplete(t)
	assert.False(t, resumed)
}

func TestMonoFilter(t *testing.T) {
	kept := grx.MonoJust(10).Filter(func(i int) bool { return i > 5 })
	verify.Create[int](kept).ExpectNext(10).VerifyComplete(t)

	dropped := grx.MonoJust(3).Filter(func(i int) bool { return i > 5 })
	verify.Create[int](dropped).VerifyComplete(t)
}

func TestMonoDefer(t *testing.T) {
	builds := 0
	deferred := grx.MonoDefer(func() *grx.Mono[int] {
		builds++
		return grx.MonoJust(builds)
	})

	verify.Create[int](deferred).ExpectNext(1).VerifyComplete(t)
	verify.Create[int](deferred).ExpectNext(2).VerifyComplete(t)
	assert.Equal(t, 2, builds)
}

func TestMonoAsFlux(t *testing.T) {
	verify.Create[string](grx.MonoJust("Petterson").AsFlux()).
		ExpectNext("Petterson").
		VerifyComplete(t)
}

func TestMonoAsync(t *testing.T) {
	name := grx.MonoJust("Petterson Santos").Async().
		Map(func(s string) (string, error) {
			return strings.ToUpper(s), nil
		})

	verify.Create[string](name).
		ExpectNext("PETTERSON SANTOS").
		VerifyComplete(t)
}
