package grx

import "fmt"

type SignalType int

const (
	SignalSubscribe SignalType = iota
	SignalNext
	SignalError
	SignalComplete
	SignalRequest
	SignalCancel
)

func (st SignalType) String() string {
	switch st {
	case SignalSubscribe:
		return "onSubscribe"
	case SignalNext:
		return "onNext"
	case SignalError:
		return "onError"
	case SignalComplete:
		return "onComplete"
	case SignalRequest:
		return "request"
	case SignalCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

// Signal is the tagged-variant form of a subscriber callback. The engine
// itself dispatches through the Subscriber interface; Signal exists for the
// places that record or forward signals as values (the async stage, the Log
// operator, verification harnesses).
type Signal[T any] struct {
	Type   SignalType
	Value  T
	Err    error
	Demand int64
}

func NextSignal[T any](v T) Signal[T] {
	return Signal[T]{Type: SignalNext, Value: v}
}

func ErrorSignal[T any](err error) Signal[T] {
	return Signal[T]{Type: SignalError, Err: err}
}

func CompleteSignal[T any]() Signal[T] {
	return Signal[T]{Type: SignalComplete}
}

func (s Signal[T]) IsError() bool {
	return s.Type == SignalError
}

func (s Signal[T]) IsTerminal() bool {
	return s.Type == SignalError || s.Type == SignalComplete
}

func (s Signal[T]) String() string {
	switch s.Type {
	case SignalNext:
		return fmt.Sprintf("onNext(%v)", s.Value)
	case SignalError:
		return fmt.Sprintf("onError(%v)", s.Err)
	case SignalRequest:
		if s.Demand == RequestUnbounded {
			return "request(unbounded)"
		}
		return fmt.Sprintf("request(%d)", s.Demand)
	default:
		return s.Type.String() + "()"
	}
}
