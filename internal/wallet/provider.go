package wallet

import (
	"context"
	"math/big"
	"sync"
	"time"
)

const defaultWatchInterval = 2 * time.Second

// Provider is a wallet backend of one kind. Implementations must be safe for
// concurrent use; events may be delivered from any goroutine.
type Provider interface {
	Kind() Kind
	Vendor(ctx context.Context) (string, error)
	RequestAccounts(ctx context.Context) ([]string, error)
	Disconnect(ctx context.Context) error
	Balance(ctx context.Context, address string) (*big.Int, error)
	Subscribe(handler func(Event)) (unsubscribe func())
}

// listeners is the subscription registry shared by the providers. onFirst runs
// when the first handler is added and onLast when the last one is removed, so
// providers can start and stop their watchers.
type listeners struct {
	mu       sync.Mutex
	nextID   int
	handlers map[int]func(Event)
	onFirst  func()
	onLast   func()
}

func (l *listeners) add(h func(Event)) func() {
	l.mu.Lock()
	if l.handlers == nil {
		l.handlers = make(map[int]func(Event))
	}
	id := l.nextID
	l.nextID++
	l.handlers[id] = h
	first := len(l.handlers) == 1
	l.mu.Unlock()

	if first && l.onFirst != nil {
		l.onFirst()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.handlers, id)
			last := len(l.handlers) == 0
			l.mu.Unlock()
			if last && l.onLast != nil {
				l.onLast()
			}
		})
	}
}

func (l *listeners) emit(ev Event) {
	l.mu.Lock()
	hs := make([]func(Event), 0, len(l.handlers))
	for _, h := range l.handlers {
		hs = append(hs, h)
	}
	l.mu.Unlock()

	for _, h := range hs {
		h(ev)
	}
}

// watcher runs poll on a ticker until stopped. stop may run inside poll (an
// event handler unsubscribing), so it only cancels and never waits.
type watcher struct {
	mu     sync.Mutex
	cancel context.CancelFunc
}

func (w *watcher) start(interval time.Duration, poll func(ctx context.Context)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		return
	}
	if interval <= 0 {
		interval = defaultWatchInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				poll(ctx)
			}
		}
	}()
}

func (w *watcher) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
}
