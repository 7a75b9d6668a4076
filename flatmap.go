package grx

import (
	"sync"

	"github.com/eapache/queue"
)

// mergeCoordinator fans the signals of an outer publisher and the inner
// publishers it spawns into one downstream sequence. Inner values are
// buffered and drained against downstream demand; the drain runs with the
// emitting flag set so that a reentrant Request from within OnNext tops up
// demand and returns instead of recursing. Completion is emitted only after
// the outer and every inner have completed; any error terminates the whole
// merge.
type mergeCoordinator[K any] struct {
	mu        sync.Mutex
	actual    Subscriber[K]
	buffer    *queue.Queue
	demand    int64
	emitting  bool
	active    int
	outer     Subscription
	inners    []Subscription
	err       error
	done      bool
	cancelled bool
}

func newMergeCoordinator[K any](actual Subscriber[K]) *mergeCoordinator[K] {
	return &mergeCoordinator[K]{
		actual: actual,
		buffer: queue.New(),
		active: 1, // the outer publisher
	}
}

// ===== downstream subscription =====

func (c *mergeCoordinator[K]) Request(n int64) {
	if n <= 0 {
		c.fail(ErrBadDemand)
		return
	}
	c.mu.Lock()
	c.demand = satAdd(c.demand, n)
	c.mu.Unlock()
	c.drain()
}

func (c *mergeCoordinator[K]) Cancel() {
	c.mu.Lock()
	if c.cancelled || c.done {
		c.mu.Unlock()
		return
	}
	c.cancelled = true
	subs := c.upstreams()
	c.mu.Unlock()
	for _, sub := range subs {
		sub.Cancel()
	}
}

// upstreams must be called with the lock held.
func (c *mergeCoordinator[K]) upstreams() []Subscription {
	subs := make([]Subscription, 0, len(c.inners)+1)
	if c.outer != nil {
		subs = append(subs, c.outer)
	}
	subs = append(subs, c.inners...)
	return subs
}

// ===== signal intake =====

func (c *mergeCoordinator[K]) push(v K) {
	c.mu.Lock()
	if c.done || c.cancelled {
		c.mu.Unlock()
		return
	}
	c.buffer.Add(v)
	c.mu.Unlock()
	c.drain()
}

func (c *mergeCoordinator[K]) fail(err error) {
	c.mu.Lock()
	if c.done || c.cancelled || c.err != nil {
		c.mu.Unlock()
		return
	}
	c.err = err
	subs := c.upstreams()
	c.mu.Unlock()
	for _, sub := range subs {
		sub.Cancel()
	}
	c.drain()
}

func (c *mergeCoordinator[K]) addInner(s Subscription) bool {
	c.mu.Lock()
	if c.done || c.cancelled || c.err != nil {
		c.mu.Unlock()
		s.Cancel()
		return false
	}
	c.active++
	c.inners = append(c.inners, s)
	c.mu.Unlock()
	return true
}

func (c *mergeCoordinator[K]) partDone() {
	c.mu.Lock()
	c.active--
	c.mu.Unlock()
	c.drain()
}

func (c *mergeCoordinator[K]) drain() {
	c.mu.Lock()
	if c.emitting {
		c.mu.Unlock()
		return
	}
	c.emitting = true
	for {
		if c.cancelled || c.done {
			break
		}
		if c.err != nil {
			c.done = true
			err := c.err
			c.mu.Unlock()
			c.actual.OnError(err)
			c.mu.Lock()
			break
		}
		if c.buffer.Length() > 0 && c.demand > 0 {
			v := c.buffer.Remove().(K)
			if c.demand != RequestUnbounded {
				c.demand--
			}
			c.mu.Unlock()
			c.actual.OnNext(v)
			c.mu.Lock()
			continue
		}
		if c.buffer.Length() == 0 && c.active == 0 {
			c.done = true
			c.mu.Unlock()
			c.actual.OnComplete()
			c.mu.Lock()
			break
		}
		break
	}
	c.emitting = false
	c.mu.Unlock()
}

// flatMapSubscriber is the outer-side subscriber: each upstream value is
// mapped to a publisher whose subscription joins the merge.
type flatMapSubscriber[T, K any] struct {
	coord  *mergeCoordinator[K]
	mapper func(T) (Publisher[K], error)
}

func newFlatMapSubscriber[T, K any](actual Subscriber[K], mapper func(T) (Publisher[K], error)) *flatMapSubscriber[T, K] {
	return &flatMapSubscriber[T, K]{
		coord:  newMergeCoordinator(actual),
		mapper: mapper,
	}
}

func (f *flatMapSubscriber[T, K]) OnSubscribe(s Subscription) {
	f.coord.mu.Lock()
	f.coord.outer = s
	f.coord.mu.Unlock()
	f.coord.actual.OnSubscribe(f.coord)
	// outer demand is decoupled from downstream demand: each outer value may
	// expand into many merged values
	s.Request(RequestUnbounded)
}

func (f *flatMapSubscriber[T, K]) OnNext(v T) {
	p, err := runMapper(f.mapper, v)
	if err == nil && p == nil {
		err = RuntimeError("flatMap returned no publisher")
	}
	if err != nil {
		f.coord.fail(err)
		return
	}
	p.Subscribe(&mergeInnerSubscriber[K]{coord: f.coord})
}

func (f *flatMapSubscriber[T, K]) OnError(err error) {
	f.coord.fail(err)
}

func (f *flatMapSubscriber[T, K]) OnComplete() {
	f.coord.partDone()
}

type mergeInnerSubscriber[K any] struct {
	coord *mergeCoordinator[K]
}

func (m *mergeInnerSubscriber[K]) OnSubscribe(s Subscription) {
	if m.coord.addInner(s) {
		s.Request(RequestUnbounded)
	}
}

func (m *mergeInnerSubscriber[K]) OnNext(v K) {
	m.coord.push(v)
}

func (m *mergeInnerSubscriber[K]) OnError(err error) {
	m.coord.fail(err)
}

func (m *mergeInnerSubscriber[K]) OnComplete() {
	m.coord.partDone()
}
