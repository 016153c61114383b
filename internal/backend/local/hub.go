package local

import (
	"context"
	"sync"

	"taskflow/internal/model"
)

// feedHub fans task change events out to per-user subscribers, giving the
// local backend the same change-feed semantics as the remote service.
type feedHub struct {
	mu   sync.Mutex
	next int
	subs map[string]map[int]chan model.TaskChange
}

func newFeedHub() *feedHub {
	return &feedHub{subs: make(map[string]map[int]chan model.TaskChange)}
}

// subscribe registers a feed for the user. The channel is closed when ctx
// is cancelled.
func (h *feedHub) subscribe(ctx context.Context, userID string) <-chan model.TaskChange {
	ch := make(chan model.TaskChange, 64)

	h.mu.Lock()
	id := h.next
	h.next++
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[int]chan model.TaskChange)
	}
	h.subs[userID][id] = ch
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		if subs, ok := h.subs[userID]; ok {
			delete(subs, id)
			if len(subs) == 0 {
				delete(h.subs, userID)
			}
		}
		h.mu.Unlock()
		close(ch)
	}()

	return ch
}

// publish delivers a change to every subscriber of the user. Slow
// subscribers drop events rather than block the mutation path.
func (h *feedHub) publish(userID string, change model.TaskChange) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs[userID] {
		select {
		case ch <- change:
		default:
		}
	}
}
