package websocket

import (
	"sync"

	"github.com/rocketscienceinc/tictactoe4x4-backend/internal/entity"
)

const defaultSubscriberBuffer = 16

type subscriber struct {
	ch   chan *entity.SessionState
	once sync.Once
}

func (that *subscriber) close() {
	that.once.Do(func() { close(that.ch) })
}

// Hub fans session states out to the sockets watching each session.
// A subscriber whose buffer is full is dropped and its channel closed.
type Hub struct {
	mu     sync.Mutex
	subs   map[string]map[*subscriber]struct{}
	buffer int
}

func NewHub() *Hub {
	return &Hub{
		subs:   make(map[string]map[*subscriber]struct{}),
		buffer: defaultSubscriberBuffer,
	}
}

// Subscribe registers for updates of session id. The returned func unsubscribes and is safe to call twice.
func (that *Hub) Subscribe(id string) (<-chan *entity.SessionState, func()) {
	sub := &subscriber{ch: make(chan *entity.SessionState, that.buffer)}

	that.mu.Lock()
	set, ok := that.subs[id]
	if !ok {
		set = make(map[*subscriber]struct{})
		that.subs[id] = set
	}
	set[sub] = struct{}{}
	that.mu.Unlock()

	return sub.ch, func() {
		that.remove(id, sub)
		sub.close()
	}
}

// Publish implements the session manager's publisher. It never blocks.
func (that *Hub) Publish(state *entity.SessionState) {
	that.mu.Lock()
	defer that.mu.Unlock()

	for sub := range that.subs[state.ID] {
		select {
		case sub.ch <- state:
		default:
			delete(that.subs[state.ID], sub)
			sub.close()
		}
	}

	if len(that.subs[state.ID]) == 0 {
		delete(that.subs, state.ID)
	}
}

// Subscribers - number of live subscribers of session id.
func (that *Hub) Subscribers(id string) int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.subs[id])
}

func (that *Hub) remove(id string, sub *subscriber) {
	that.mu.Lock()
	defer that.mu.Unlock()

	set, ok := that.subs[id]
	if !ok {
		return
	}

	delete(set, sub)
	if len(set) == 0 {
		delete(that.subs, id)
	}
}
