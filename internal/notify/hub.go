package notify

import (
	"context"
	"sync"
)

// Subscription — подписка на канал. События читаются из C.
type Subscription struct {
	C <-chan Event

	ch      chan Event
	channel string
}

// Hub — рассылка событий подписчикам внутри процесса.
// Медленный подписчик теряет события, публикация не блокируется.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*Subscription]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: map[string]map[*Subscription]struct{}{}}
}

func (h *Hub) Subscribe(channel string, buffer int) *Subscription {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Event, buffer)
	s := &Subscription{C: ch, ch: ch, channel: channel}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[channel] == nil {
		h.subs[channel] = map[*Subscription]struct{}{}
	}
	h.subs[channel][s] = struct{}{}
	return s
}

// Unsubscribe закрывает канал подписки.
func (h *Hub) Unsubscribe(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[s.channel]
	if !ok {
		return
	}
	if _, ok := set[s]; !ok {
		return
	}
	delete(set, s)
	if len(set) == 0 {
		delete(h.subs, s.channel)
	}
	close(s.ch)
}

func (h *Hub) Publish(_ context.Context, e Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := map[*Subscription]bool{}
	for _, channel := range e.Channels {
		for s := range h.subs[channel] {
			if delivered[s] {
				continue
			}
			delivered[s] = true
			select {
			case s.ch <- e:
			default:
			}
		}
	}
	return nil
}

// Close закрывает все подписки. Открытые потоки событий завершаются.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for channel, set := range h.subs {
		for s := range set {
			close(s.ch)
		}
		delete(h.subs, channel)
	}
}
