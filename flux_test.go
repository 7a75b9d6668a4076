package grx_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/7vars/grx"
	"github.com/7vars/grx/verify"
)

func TestFluxSubscriber(t *testing.T) {
	names := grx.Just("Petterson", "Santos", "MoreReturn").Log()

	verify.Create[string](names).
		ExpectNext("Petterson", "Santos", "MoreReturn").
		VerifyComplete(t)
}

func TestFluxSubscriberNumbers(t *testing.T) {
	verify.Create[int](grx.Range(1, 5)).
		ExpectNext(1, 2, 3, 4, 5).
		VerifyComplete(t)
}

func TestFluxSubscriberFromSlice(t *testing.T) {
	names := grx.FromSlice([]string{"Petterson", "Santos"})
	names = grx.Map(names, func(s string) (string, error) {
		return strings.ToUpper(s), nil
	})

	verify.Create[string](names).
		ExpectNext("PETTERSON", "SANTOS").
		VerifyComplete(t)
}

func TestFluxSubscriberNumbersError(t *testing.T) {
	numbers := grx.Range(1, 5).Map(func(i int) (int, error) {
		if i == 4 {
			return 0, errors.New("index error")
		}
		return i, nil
	})

	verify.Create[int](numbers).
		ExpectNext(1, 2, 3).
		VerifyErrorMessage(t, "index error")
}

func TestFluxSubscriberNumbersUglyBackpressure(t *testing.T) {
	var received []int
	completed := false
	count := 0
	var sub grx.Subscription

	grx.Range(1, 10).Subscribe(grx.SubscriberFuncs[int]{
		OnSubscribeFunc: func(s grx.Subscription) {
			sub = s
			s.Request(2)
		},
		OnNextFunc: func(v int) {
			received = append(received, v)
			count++
			if count >= 2 {
				count = 0
				sub.Request(2)
			}
		},
		OnCompleteFunc: func() { completed = true },
	}.Build())

	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, received)
	assert.True(t, completed)
}

func TestFluxSubscriberPrettyBackpressure(t *testing.T) {
	var received []int
	completed := false
	count := 0

	grx.Range(1, 10).Subscribe(&grx.BaseSubscriber[int]{
		OnSubscribeHook: func(b *grx.BaseSubscriber[int]) {
			b.Request(2)
		},
		OnNextHook: func(b *grx.BaseSubscriber[int], v int) {
			received = append(received, v)
			count++
			if count >= 2 {
				count = 0
				b.Request(2)
			}
		},
		OnCompleteHook: func() { completed = true },
	})

	assert.Equal(t, 10, len(received))
	assert.True(t, completed)
}

func TestFluxDefer(t *testing.T) {
	builds := 0
	deferred := grx.Defer(func() *grx.Flux[int] {
		builds++
		return grx.Just(builds)
	})

	verify.Create[int](deferred).ExpectNext(1).VerifyComplete(t)
	verify.Create[int](deferred).ExpectNext(2).VerifyComplete(t)
	assert.Equal(t, 2, builds)
}

func TestFluxEmpty(t *testing.T) {
	verify.Create[string](grx.Empty[string]()).VerifyComplete(t)
}

func TestFluxError(t *testing.T) {
	verify.Create[string](grx.Error[string](errors.New("broken"))).
		VerifyErrorMessage(t, "broken")
}

func TestFluxAsync(t *testing.T) {
	numbers := grx.Range(1, 5).Async().Map(func(i int) (int, error) {
		return i * 2, nil
	})

	verify.Create[int](numbers).
		ExpectNext(2, 4, 6, 8, 10).
		VerifyComplete(t)
}
