package grx_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/7vars/grx"
	"github.com/7vars/grx/verify"
)

func TestMapChangesType(t *testing.T) {
	labels := grx.Map(grx.Range(1, 3), func(i int) (string, error) {
		return string(rune('a' + i - 1)), nil
	})

	verify.Create[string](labels).
		ExpectNext("a", "b", "c").
		VerifyComplete(t)
}

func TestMapFailureCancelsUpstream(t *testing.T) {
	cancelled := false
	numbers := grx.Range(1, 10).
		DoOnCancel(func() { cancelled = true }).
		Map(func(i int) (int, error) {
			if i == 4 {
				return 0, errors.New("index error")
			}
			return i, nil
		})

	verify.Create[int](numbers).
		ExpectNext(1, 2, 3).
		VerifyErrorMessage(t, "index error")
	assert.True(t, cancelled)
}

func TestMapPanicBecomesError(t *testing.T) {
	numbers := grx.Range(1, 3).Map(func(i int) (int, error) {
		if i == 2 {
			panic("mapper blew up")
		}
		return i, nil
	})

	verify.Create[int](numbers).
		ExpectNext(1).
		ExpectError(func(t *testing.T, err error) {
			var rerr grx.RuntimeErr
			require.ErrorAs(t, err, &rerr)
			require.Contains(t, err.Error(), "mapper blew up")
		}).
		Verify(t)
}

// A dropped value must not consume downstream demand: the filter requests a
// replacement from upstream per drop.
func TestFilterCompensatesDemand(t *testing.T) {
	evens := grx.Range(1, 10).Filter(func(i int) bool { return i%2 == 0 })

	verify.CreateWithDemand[int](evens, 2).
		ExpectNext(2, 4).
		ThenRequest(3).
		ExpectNext(6, 8, 10).
		ExpectComplete().
		Verify(t)
}

func TestFilterPanicBecomesError(t *testing.T) {
	numbers := grx.Range(1, 5).Filter(func(i int) bool {
		panic("bad predicate")
	})

	verify.Create[int](numbers).
		ExpectError(func(t *testing.T, err error) {
			require.Contains(t, err.Error(), "bad predicate")
		}).
		Verify(t)
}

func TestTake(t *testing.T) {
	cancelled := false
	numbers := grx.Range(1, 10).
		DoOnCancel(func() { cancelled = true }).
		Take(3)

	verify.Create[int](numbers).
		ExpectNext(1, 2, 3).
		VerifyComplete(t)
	assert.True(t, cancelled)
}

func TestTakeZero(t *testing.T) {
	verify.Create[int](grx.Range(1, 10).Take(0)).VerifyComplete(t)
}

func TestDoOnNextPanicBecomesError(t *testing.T) {
	numbers := grx.Range(1, 5).DoOnNext(func(i int) {
		if i == 3 {
			panic("hook blew up")
		}
	})

	verify.Create[int](numbers).
		ExpectNext(1, 2).
		ExpectError(func(t *testing.T, err error) {
			require.Contains(t, err.Error(), "hook blew up")
		}).
		Verify(t)
}

func TestDoOnRequestSeesDemand(t *testing.T) {
	var requests []int64
	numbers := grx.Range(1, 4).DoOnRequest(func(n int64) {
		requests = append(requests, n)
	})

	verify.CreateWithDemand[int](numbers, 2).
		ExpectNext(1, 2).
		ThenRequest(2).
		ExpectNext(3, 4).
		ExpectComplete().
		Verify(t)
	assert.Equal(t, []int64{2, 2}, requests)
}

// ===== flatMap =====

func TestFlatMapMergesAllInners(t *testing.T) {
	merged := grx.FlatMap(grx.Just(1, 2, 3), func(i int) *grx.Flux[int] {
		return grx.Just(i*10, i*10+1)
	})

	verify.Create[int](merged).
		ExpectNext(10, 11, 20, 21, 30, 31).
		VerifyComplete(t)
}

func TestFlatMapHonorsDemand(t *testing.T) {
	merged := grx.FlatMap(grx.Just(1, 2, 3), func(i int) *grx.Flux[int] {
		return grx.Just(i*10, i*10+1)
	})

	verify.CreateWithDemand[int](merged, 2).
		ExpectNext(10, 11).
		ThenRequest(4).
		ExpectNext(20, 21, 30, 31).
		ExpectComplete().
		Verify(t)
}

func TestFlatMapInnerError(t *testing.T) {
	boom := errors.New("inner boom")
	merged := grx.FlatMap(grx.Just(1, 2, 3), func(i int) *grx.Flux[int] {
		if i == 2 {
			return grx.Error[int](boom)
		}
		return grx.Just(i * 10)
	})

	verify.Create[int](merged).
		ExpectNext(10).
		VerifyErrorIs(t, boom)
}

func TestFlatMapEmptyInners(t *testing.T) {
	merged := grx.FlatMap(grx.Just(1, 2, 3), func(int) *grx.Flux[int] {
		return grx.Empty[int]()
	})

	verify.Create[int](merged).VerifyComplete(t)
}

func TestFlatMapNilInnerFails(t *testing.T) {
	merged := grx.FlatMap(grx.Just(1), func(int) *grx.Flux[int] {
		return nil
	})

	verify.Create[int](merged).VerifyError(t)
}

// ===== error interception =====

func TestOnErrorReturn(t *testing.T) {
	recovered := grx.Error[string](errors.New("broken")).
		OnErrorReturn("EMPTY")

	verify.Create[string](recovered).
		ExpectNext("EMPTY").
		VerifyComplete(t)
}

func TestOnErrorResumeSplicesSequence(t *testing.T) {
	i := 0
	source := grx.FromFunc(func() (int, error) {
		i++
		if i > 2 {
			return 0, errors.New("source broke")
		}
		return i, nil
	})
	recovered := source.OnErrorResume(func(err error) *grx.Flux[int] {
		return grx.Just(97, 98, 99)
	})

	verify.Create[int](recovered).
		ExpectNext(1, 2, 97, 98, 99).
		VerifyComplete(t)
}

// Demand granted before the failure carries across the splice: the
// substitute starts with the unfulfilled remainder, not from zero.
func TestOnErrorResumeCarriesDemand(t *testing.T) {
	i := 0
	source := grx.FromFunc(func() (int, error) {
		i++
		if i > 2 {
			return 0, errors.New("source broke")
		}
		return i, nil
	})
	recovered := source.OnErrorResume(func(error) *grx.Flux[int] {
		return grx.Just(3)
	})

	verify.CreateWithDemand[int](recovered, 2).
		ExpectNext(1, 2).
		ThenRequest(1).
		ExpectNext(3).
		ExpectComplete().
		Verify(t)
}

func TestOnErrorResumeSecondErrorPassesThrough(t *testing.T) {
	second := errors.New("fallback broke too")
	recovered := grx.Error[int](errors.New("first")).
		OnErrorResume(func(error) *grx.Flux[int] {
			return grx.Error[int](second)
		})

	verify.Create[int](recovered).VerifyErrorIs(t, second)
}

func TestOnErrorResumeNilPublisherFails(t *testing.T) {
	recovered := grx.Error[int](errors.New("first")).
		OnErrorResume(func(error) *grx.Flux[int] {
			return nil
		})

	verify.Create[int](recovered).VerifyError(t)
}

func TestOnErrorResumePanicFails(t *testing.T) {
	recovered := grx.Error[int](errors.New("first")).
		OnErrorResume(func(error) *grx.Flux[int] {
			panic("resume blew up")
		})

	verify.Create[int](recovered).
		ExpectError(func(t *testing.T, err error) {
			require.Contains(t, err.Error(), "resume blew up")
		}).
		Verify(t)
}

// ===== async =====

func TestAsyncDeliversAllSignals(t *testing.T) {
	verify.Create[int](grx.Range(1, 20).Async()).
		ExpectNext(1, 2, 3, 4, 5, 6, 7, 8, 9, 10,
			11, 12, 13, 14, 15, 16, 17, 18, 19, 20).
		VerifyComplete(t)
}

func TestAsyncError(t *testing.T) {
	boom := errors.New("boom")
	verify.Create[int](grx.Error[int](boom).Async()).
		VerifyErrorIs(t, boom)
}

func TestAsyncCancelGoesSilent(t *testing.T) {
	verify.CreateWithDemand[int](grx.Range(1, 100).Async(), 1).
		ExpectNext(1).
		ThenCancel().
		Verify(t)
}
