package grx

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextSignal(t *testing.T) {
	sig := NextSignal(10)
	assert.Equal(t, SignalNext, sig.Type)
	assert.Equal(t, 10, sig.Value)
	assert.False(t, sig.IsError())
	assert.False(t, sig.IsTerminal())
	assert.Equal(t, "onNext(10)", sig.String())
}

func TestErrorSignal(t *testing.T) {
	sig := ErrorSignal[int](errors.New("boom"))
	assert.Equal(t, SignalError, sig.Type)
	assert.True(t, sig.IsError())
	assert.True(t, sig.IsTerminal())
	assert.Equal(t, "onError(boom)", sig.String())
}

func TestCompleteSignal(t *testing.T) {
	sig := CompleteSignal[int]()
	assert.True(t, sig.IsTerminal())
	assert.False(t, sig.IsError())
	assert.Equal(t, "onComplete()", sig.String())
}

func TestRequestSignalString(t *testing.T) {
	assert.Equal(t, "request(3)", Signal[int]{Type: SignalRequest, Demand: 3}.String())
	assert.Equal(t, "request(unbounded)", Signal[int]{Type: SignalRequest, Demand: RequestUnbounded}.String())
	assert.Equal(t, "cancel()", Signal[int]{Type: SignalCancel}.String())
}
