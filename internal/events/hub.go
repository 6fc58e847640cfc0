// Package events fans out record change notifications. One stream per
// record kind, resolved at startup; observation is read-only and fully
// independent of the mutation paths.
package events

import (
	"errors"
	"sync"

	"github.com/loopworks/therapysync/internal/records/domain"
)

const (
	OutcomeInserted        = "inserted"
	OutcomeUpdated         = "updated"
	OutcomeInvalidated     = "invalidated"
	OutcomeEnded           = "ended"
	OutcomeUpdatedRemoteID = "updated_remote_id"
	OutcomeUpdatedDuration = "updated_duration"
)

const (
	DefaultBufferSize       = 50
	DefaultSubscriberBuffer = 16
)

var ErrUnknownKind = errors.New("unknown_record_kind")

// ChangeEvent describes one durable record change. Consumers needing
// ordering must sort by Timestamp; arrival order across concurrent
// mutations is not guaranteed.
type ChangeEvent struct {
	Kind      domain.RecordKind `json:"kind"`
	Outcome   string            `json:"outcome"`
	RecordID  int64             `json:"record_id"`
	Timestamp int64             `json:"timestamp"`
}

type Hub struct {
	streams          map[domain.RecordKind]*stream
	bufferSize       int
	subscriberBuffer int
}

type stream struct {
	mu     sync.Mutex
	buffer []ChangeEvent
	subs   map[uint64]chan ChangeEvent
	nextID uint64
}

type Subscription struct {
	hub  *Hub
	kind domain.RecordKind
	id   uint64
	ch   chan ChangeEvent
	once sync.Once
}

// NewHub allocates one stream per record kind. The registry is fixed at
// construction; there is no runtime type inspection on the publish path.
func NewHub() *Hub {
	streams := make(map[domain.RecordKind]*stream, len(domain.Kinds()))
	for _, kind := range domain.Kinds() {
		streams[kind] = &stream{subs: make(map[uint64]chan ChangeEvent)}
	}
	return &Hub{
		streams:          streams,
		bufferSize:       DefaultBufferSize,
		subscriberBuffer: DefaultSubscriberBuffer,
	}
}

// Publish delivers the event to every subscriber of its kind. Slow
// subscribers drop events rather than block the mutation path.
func (h *Hub) Publish(event ChangeEvent) {
	if h == nil {
		return
	}
	s := h.streams[event.Kind]
	if s == nil {
		return
	}

	s.mu.Lock()
	s.buffer = append(s.buffer, event)
	if len(s.buffer) > h.bufferSize {
		s.buffer = s.buffer[len(s.buffer)-h.bufferSize:]
	}
	subs := make([]chan ChangeEvent, 0, len(s.subs))
	for _, ch := range s.subs {
		subs = append(subs, ch)
	}
	s.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// Subscribe attaches to the stream of one record kind and returns the
// retained tail of recent events.
func (h *Hub) Subscribe(kind domain.RecordKind) (*Subscription, []ChangeEvent, error) {
	if h == nil {
		return nil, nil, errors.New("hub_unavailable")
	}
	s := h.streams[kind]
	if s == nil {
		return nil, nil, ErrUnknownKind
	}

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	ch := make(chan ChangeEvent, h.subscriberBuffer)
	s.subs[id] = ch
	tail := append([]ChangeEvent(nil), s.buffer...)
	s.mu.Unlock()

	return &Subscription{hub: h, kind: kind, id: id, ch: ch}, tail, nil
}

func (h *Hub) unsubscribe(kind domain.RecordKind, id uint64) {
	if h == nil {
		return
	}
	s := h.streams[kind]
	if s == nil {
		return
	}
	s.mu.Lock()
	delete(s.subs, id)
	s.mu.Unlock()
}

func (s *Subscription) Events() <-chan ChangeEvent {
	if s == nil {
		return nil
	}
	return s.ch
}

func (s *Subscription) Close() {
	if s == nil || s.hub == nil {
		return
	}
	s.once.Do(func() {
		s.hub.unsubscribe(s.kind, s.id)
	})
}
