package grx

import (
	"sync"

	"github.com/eapache/queue"
)

// Multicast is a hot Processor: values pushed through the Emitter side fan
// out to every current subscriber, each with its own demand accounting and
// an optional subscribe-time filter. A terminal push terminates all
// subscribers; late subscribers receive the terminal immediately.
type Multicast[T any] struct {
	mu   sync.Mutex
	subs map[*multicastInner[T]]struct{}
	done bool
	err  error
}

func NewMulticast[T any]() *Multicast[T] {
	return &Multicast[T]{
		subs: make(map[*multicastInner[T]]struct{}),
	}
}

// ===== emitter side =====

func (m *Multicast[T]) Emit(v T) {
	for _, inner := range m.snapshot() {
		inner.push(v)
	}
}

func (m *Multicast[T]) EmitError(err error) {
	m.mu.Lock()
	if m.done {
		m.mu.Unlock()
		return
	}
	m.done = true
	m.err = err
	m.mu.Unlock()
	for _, inner := range m.snapshot() {
		inner.finish(err)
	}
}

func (m *Multicast[T]) Close() {
	m.mu.Lock()
	if m.done {
		m.mu.Unlock()
		return
	}
	m.done = true
	m.mu.Unlock()
	for _, inner := range m.snapshot() {
		inner.finish(nil)
	}
}

func (m *Multicast[T]) snapshot() []*multicastInner[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	inners := make([]*multicastInner[T], 0, len(m.subs))
	for inner := range m.subs {
		inners = append(inners, inner)
	}
	return inners
}

func (m *Multicast[T]) remove(inner *multicastInner[T]) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subs, inner)
}

// ===== publisher side =====

func (m *Multicast[T]) Subscribe(s Subscriber[T]) {
	m.SubscribeFilter(s, nil)
}

// SubscribeFilter registers a subscriber that only receives values matching
// the filter. Values are matched at push time; non-matching values do not
// consume the subscriber's demand.
func (m *Multicast[T]) SubscribeFilter(s Subscriber[T], filter func(T) bool) {
	m.mu.Lock()
	if m.done {
		err := m.err
		m.mu.Unlock()
		s.OnSubscribe(noopSubscription{})
		if err != nil {
			s.OnError(err)
			return
		}
		s.OnComplete()
		return
	}
	inner := &multicastInner[T]{
		parent: m,
		actual: s,
		filter: filter,
		buffer: queue.New(),
	}
	m.subs[inner] = struct{}{}
	m.mu.Unlock()
	s.OnSubscribe(inner)
}

// ===== subscriber side (Processor) =====

func (m *Multicast[T]) OnSubscribe(s Subscription) {
	s.Request(RequestUnbounded)
}

func (m *Multicast[T]) OnNext(v T) {
	m.Emit(v)
}

func (m *Multicast[T]) OnError(err error) {
	m.EmitError(err)
}

func (m *Multicast[T]) OnComplete() {
	m.Close()
}

// AsFlux exposes the multicast as a Flux for operator chaining.
func (m *Multicast[T]) AsFlux() *Flux[T] {
	return newFlux(m.Subscribe)
}

// multicastInner is one subscriber's view: values pushed faster than the
// subscriber requests are buffered and drained against its demand.
type multicastInner[T any] struct {
	parent *Multicast[T]
	actual Subscriber[T]
	filter func(T) bool

	mu        sync.Mutex
	buffer    *queue.Queue
	demand    int64
	emitting  bool
	terminal  bool
	err       error
	done      bool
	cancelled bool
}

func (i *multicastInner[T]) Request(n int64) {
	if n <= 0 {
		i.finish(ErrBadDemand)
		return
	}
	i.mu.Lock()
	i.demand = satAdd(i.demand, n)
	i.mu.Unlock()
	i.drain()
}

func (i *multicastInner[T]) Cancel() {
	i.mu.Lock()
	i.cancelled = true
	i.mu.Unlock()
	i.parent.remove(i)
}

func (i *multicastInner[T]) push(v T) {
	if i.filter != nil {
		keep, err := runPred(i.filter, v)
		if err != nil {
			i.finish(err)
			return
		}
		if !keep {
			return
		}
	}
	i.mu.Lock()
	if i.done || i.cancelled || i.terminal {
		i.mu.Unlock()
		return
	}
	i.buffer.Add(v)
	i.mu.Unlock()
	i.drain()
}

// finish queues the terminal; buffered values drain first.
func (i *multicastInner[T]) finish(err error) {
	i.mu.Lock()
	if i.done || i.cancelled || i.terminal {
		i.mu.Unlock()
		return
	}
	i.terminal = true
	i.err = err
	i.mu.Unlock()
	i.drain()
}

func (i *multicastInner[T]) drain() {
	i.mu.Lock()
	if i.emitting {
		i.mu.Unlock()
		return
	}
	i.emitting = true
	for {
		if i.cancelled || i.done {
			break
		}
		if i.buffer.Length() > 0 && i.demand > 0 {
			v := i.buffer.Remove().(T)
			if i.demand != RequestUnbounded {
				i.demand--
			}
			i.mu.Unlock()
			i.actual.OnNext(v)
			i.mu.Lock()
			continue
		}
		if i.terminal && i.buffer.Length() == 0 {
			i.done = true
			err := i.err
			i.mu.Unlock()
			if err != nil {
				i.actual.OnError(err)
			} else {
				i.actual.OnComplete()
			}
			i.mu.Lock()
			break
		}
		break
	}
	done := i.done
	i.emitting = false
	i.mu.Unlock()
	if done {
		i.parent.remove(i)
	}
}
