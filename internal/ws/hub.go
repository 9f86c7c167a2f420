package ws

import (
	"encoding/json"
	"sync"
	"time"

	"battle-royale-backend/internal/battle"

	"github.com/decred/slog"
)

type WSMessage struct {
	Type string      `json:"type"`
	Seq  uint64      `json:"seq,omitempty"`
	At   time.Time   `json:"at"`
	Data interface{} `json:"data"`
}

// Subscriber receives encoded messages for one session. Send must not block.
type Subscriber interface {
	Send([]byte) error
	Close() error
}

type delivery struct {
	data     []byte
	seq      uint64
	to       Subscriber // nil for every subscriber
	snapshot bool
}

// follower tracks one subscriber. While a snapshot for it is queued,
// broadcasts are held back; events the latest snapshot already covers
// (seq <= after) are never sent.
type follower struct {
	pending int
	after   uint64
	held    []delivery
}

// topic fans the messages of one session out in publish order. Its queue is
// drained by a single goroutine so a slow socket never blocks Publish.
type topic struct {
	code string
	log  slog.Logger

	mu     sync.Mutex
	subs   map[Subscriber]*follower
	queue  []delivery
	notify chan struct{}
	stop   chan struct{}
	closed bool
}

type Hub struct {
	log slog.Logger

	mu       sync.RWMutex
	sessions map[string]*topic
	wg       sync.WaitGroup
}

func NewHub(log slog.Logger) *Hub {
	if log == nil {
		log = slog.Disabled
	}
	return &Hub{
		log:      log,
		sessions: make(map[string]*topic),
	}
}

// Publish implements battle.Publisher.
func (h *Hub) Publish(code string, ev battle.Event) {
	h.mu.RLock()
	t, ok := h.sessions[code]
	h.mu.RUnlock()
	if !ok {
		return
	}

	data, err := json.Marshal(WSMessage{Type: ev.Type, Seq: ev.Seq, At: ev.At, Data: ev.Data})
	if err != nil {
		h.log.Errorf("marshal %s for session %s: %v", ev.Type, code, err)
		return
	}
	t.enqueue(delivery{data: data, seq: ev.Seq})
}

// Subscribe adds sub to the session, then takes the snapshot and queues it
// for sub alone. Events published while the snapshot is taken reach sub
// after it, minus those the snapshot already reflects.
func (h *Hub) Subscribe(code string, sub Subscriber, snapshot func() battle.StateView) {
	h.mu.Lock()
	t, ok := h.sessions[code]
	if !ok {
		t = &topic{
			code:   code,
			log:    h.log,
			subs:   make(map[Subscriber]*follower),
			notify: make(chan struct{}, 1),
			stop:   make(chan struct{}),
		}
		h.sessions[code] = t
		h.wg.Add(1)
		go func() {
			defer h.wg.Done()
			t.run()
		}()
	}
	t.mu.Lock()
	t.subs[sub] = &follower{pending: 1}
	n := len(t.subs)
	t.mu.Unlock()
	h.mu.Unlock()

	h.log.Debugf("client subscribed to session %s (total: %d)", code, n)
	t.queueSnapshot(sub, snapshot(), false)
}

// Resync queues a current_state message for sub. Broadcasts for sub wait
// behind it.
func (h *Hub) Resync(code string, sub Subscriber, snapshot battle.StateView) {
	h.mu.RLock()
	t, ok := h.sessions[code]
	h.mu.RUnlock()
	if !ok {
		return
	}
	t.queueSnapshot(sub, snapshot, true)
}

// Unsubscribe removes sub and closes it. The session's topic goes away with
// its last subscriber.
func (h *Hub) Unsubscribe(code string, sub Subscriber) {
	h.mu.Lock()
	t, ok := h.sessions[code]
	if !ok {
		h.mu.Unlock()
		return
	}
	t.mu.Lock()
	_, present := t.subs[sub]
	delete(t.subs, sub)
	empty := len(t.subs) == 0
	if empty {
		t.closed = true
		close(t.stop)
		delete(h.sessions, code)
	}
	t.mu.Unlock()
	h.mu.Unlock()

	if present {
		sub.Close()
		h.log.Debugf("client left session %s", code)
	}
}

// Subscribers reports how many clients follow code.
func (h *Hub) Subscribers(code string) int {
	h.mu.RLock()
	t, ok := h.sessions[code]
	h.mu.RUnlock()
	if !ok {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subs)
}

// Shutdown closes every subscriber and waits for the fan-out goroutines.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	topics := h.sessions
	h.sessions = make(map[string]*topic)
	h.mu.Unlock()

	for _, t := range topics {
		t.mu.Lock()
		subs := make([]Subscriber, 0, len(t.subs))
		for s := range t.subs {
			subs = append(subs, s)
		}
		t.subs = map[Subscriber]*follower{}
		if !t.closed {
			t.closed = true
			close(t.stop)
		}
		t.mu.Unlock()
		for _, s := range subs {
			s.Close()
		}
	}
	h.wg.Wait()
}

func (t *topic) enqueue(d delivery) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.queue = append(t.queue, d)
	t.mu.Unlock()
	t.wake()
}

// queueSnapshot queues view for sub. hold is false when the follower was
// created holding, as Subscribe does.
func (t *topic) queueSnapshot(sub Subscriber, view battle.StateView, hold bool) {
	data, err := json.Marshal(WSMessage{Type: battle.EventCurrentState, Seq: view.Seq, At: time.Now(), Data: view})
	if err != nil {
		t.log.Errorf("marshal snapshot for session %s: %v", t.code, err)
		t.drop(sub)
		return
	}

	t.mu.Lock()
	f, ok := t.subs[sub]
	if t.closed || !ok {
		t.mu.Unlock()
		return
	}
	if hold {
		f.pending++
	}
	t.queue = append(t.queue, delivery{data: data, seq: view.Seq, to: sub, snapshot: true})
	t.mu.Unlock()
	t.wake()
}

func (t *topic) wake() {
	select {
	case t.notify <- struct{}{}:
	default:
	}
}

func (t *topic) run() {
	for {
		select {
		case <-t.stop:
			return
		case <-t.notify:
		}

		for {
			t.mu.Lock()
			if len(t.queue) == 0 || t.closed {
				t.mu.Unlock()
				break
			}
			d := t.queue[0]
			t.queue[0] = delivery{}
			t.queue = t.queue[1:]
			sends := t.route(d)
			t.mu.Unlock()

			for _, o := range sends {
				for _, data := range o.data {
					if err := o.sub.Send(data); err != nil {
						t.log.Warnf("dropping subscriber of session %s: %v", t.code, err)
						t.drop(o.sub)
						break
					}
				}
			}
		}
	}
}

type outbound struct {
	sub  Subscriber
	data [][]byte
}

// route decides what d means for each follower. Called with t.mu held.
func (t *topic) route(d delivery) []outbound {
	if d.to != nil {
		f, ok := t.subs[d.to]
		if !ok {
			return nil
		}
		if !d.snapshot {
			return []outbound{{sub: d.to, data: [][]byte{d.data}}}
		}
		out := outbound{sub: d.to, data: [][]byte{d.data}}
		f.pending--
		if d.seq > f.after {
			f.after = d.seq
		}
		if f.pending == 0 {
			for _, h := range f.held {
				if h.seq == 0 || h.seq > f.after {
					out.data = append(out.data, h.data)
				}
			}
			f.held = nil
		}
		return []outbound{out}
	}

	out := make([]outbound, 0, len(t.subs))
	for s, f := range t.subs {
		switch {
		case f.pending > 0:
			f.held = append(f.held, d)
		case d.seq != 0 && d.seq <= f.after:
		default:
			out = append(out, outbound{sub: s, data: [][]byte{d.data}})
		}
	}
	return out
}

func (t *topic) drop(s Subscriber) {
	t.mu.Lock()
	_, ok := t.subs[s]
	delete(t.subs, s)
	t.mu.Unlock()
	if ok {
		s.Close()
	}
}
