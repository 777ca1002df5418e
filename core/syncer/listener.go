package syncer

import (
	"sync"

	"go.uber.org/zap"

	"storesync/core/observe"
)

// Listener controls an engine's subscription to its backend's change
// events. On and Off are idempotent and never double-subscribe; the active
// state is observable.
type Listener struct {
	mu     sync.Mutex
	start  func() (stop func())
	stop   func()
	active *observe.Container[bool]
}

func newListener(start func() func(), logger *zap.Logger) *Listener {
	return &Listener{
		start:  start,
		active: observe.NewContainer(false, logger),
	}
}

// On starts listening. Calling On while already listening is a no-op.
func (l *Listener) On() {
	l.mu.Lock()
	if l.stop != nil {
		l.mu.Unlock()
		return
	}
	l.stop = l.start()
	l.mu.Unlock()

	l.active.Commit(true, observe.OriginUser)
}

// Off stops listening. Calling Off while not listening is a no-op.
func (l *Listener) Off() {
	l.mu.Lock()
	if l.stop == nil {
		l.mu.Unlock()
		return
	}
	stop := l.stop
	l.stop = nil
	l.mu.Unlock()

	stop()
	l.active.Commit(false, observe.OriginUser)
}

// Toggle flips the listening state.
func (l *Listener) Toggle() {
	if l.Active() {
		l.Off()
	} else {
		l.On()
	}
}

// Active reports whether the listener is currently subscribed.
func (l *Listener) Active() bool {
	return l.active.Get()
}

// SubscribeActive observes the listening state. fn is invoked immediately
// with the current state and after every On/Off transition. The returned
// cancel func is idempotent.
func (l *Listener) SubscribeActive(fn func(active bool)) (cancel func()) {
	return l.active.Subscribe(func(v bool, _ observe.Origin) { fn(v) })
}
