// Package sse implements a Server-Sent Events broker for window lifecycle
// updates.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// DefaultKeepAlive is how often an idle stream gets a comment line.
const DefaultKeepAlive = 25 * time.Second

// retryMillis is the reconnect delay suggested to EventSource clients.
const retryMillis = 2000

// Event types.
const (
	TypeWindowOpened    = "window.opened"
	TypeWindowDestroyed = "window.destroyed"
	TypeHubSummary      = "hub.summary"
)

// Event is one SSE message. Window scopes the event to a single note window;
// an empty Window reaches every client.
type Event struct {
	Type   string `json:"type"`
	Window string `json:"window,omitempty"`
	Data   any    `json:"data"`
}

type subscription struct {
	ch     chan []byte
	window string
}

// Broker manages SSE client connections and broadcasts events. Every
// message carries an increasing id. The latest hub summary is replayed to
// each new client so a page opened late starts from the current list.
//
// Concurrency model: a single internal goroutine owns the client set.
// Public methods talk to it through channels, so no mutexes are required.
type Broker struct {
	keepAlive time.Duration

	subscribeCh   chan subscription
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// Option configures a Broker.
type Option func(*Broker)

// WithKeepAlive sets the idle keep-alive interval. Zero or less disables it.
func WithKeepAlive(d time.Duration) Option {
	return func(b *Broker) { b.keepAlive = d }
}

// NewBroker creates a broker and starts its loop.
func NewBroker(opts ...Option) *Broker {
	b := &Broker{
		keepAlive:     DefaultKeepAlive,
		subscribeCh:   make(chan subscription),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	var (
		clients     = make(map[chan []byte]string)
		seq         uint64
		lastSummary []byte
	)

	broadcast := func(event Event) {
		payload, err := json.Marshal(event)
		if err != nil {
			return
		}
		seq++
		raw := []byte(fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", seq, event.Type, payload))
		if event.Type == TypeHubSummary {
			lastSummary = raw
		}

		for ch, window := range clients {
			if window != "" && event.Window != "" && window != event.Window {
				continue
			}
			select {
			case ch <- raw:
			default:
				// Client buffer full; skip to avoid blocking the broker loop.
			}
		}
	}

	for {
		select {
		case <-b.stopCh:
			// Flush what was queued before Close so the last lifecycle
			// events still reach connected pages.
			for pending := true; pending; {
				select {
				case event := <-b.publishCh:
					broadcast(event)
				default:
					pending = false
				}
			}
			for ch := range clients {
				close(ch)
			}
			return

		case sub := <-b.subscribeCh:
			clients[sub.ch] = sub.window
			if lastSummary != nil {
				sub.ch <- lastSummary
			}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			broadcast(event)

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close stops the broker loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a client. A non-empty window limits window-scoped events
// to that window.
func (b *Broker) Subscribe(window string) chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- subscription{ch: ch, window: window}:
	case <-b.stopped:
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish queues an event for delivery. It never blocks on slow clients.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// PublishWindow publishes a window-scoped event.
func (b *Broker) PublishWindow(kind, window string) {
	b.Publish(Event{Type: kind, Window: window, Data: map[string]string{"id": window}})
}

// PublishSummary publishes the list of open notes to every client.
func (b *Broker) PublishSummary(ids []string) {
	if ids == nil {
		ids = []string{}
	}
	b.Publish(Event{Type: TypeHubSummary, Data: map[string][]string{"open": ids}})
}

// ServeHTTP is the SSE endpoint handler. The optional `window` query
// parameter scopes the stream to one note window.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "retry: %d\n\n", retryMillis)
	flusher.Flush()

	ch := b.Subscribe(r.URL.Query().Get("window"))
	defer b.Unsubscribe(ch)

	var tick <-chan time.Time
	if b.keepAlive > 0 {
		ticker := time.NewTicker(b.keepAlive)
		defer ticker.Stop()
		tick = ticker.C
	}

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			_, _ = w.Write([]byte(": keep-alive\n\n"))
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
