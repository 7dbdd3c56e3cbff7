// Package event provides the typed publish/subscribe bus that decouples the
// dialogue and quiz state machines from whatever presents them.
//
// A Bus is an explicitly constructed value owned by a single session. It is not
// safe for concurrent use on its own; the owning session serializes access.
package event

import (
	"log"
	"reflect"
)

type registration struct {
	id      uint64
	handler any // func(T)
}

// Bus routes published messages to handlers registered for the message type.
// Handlers run synchronously, in registration order. Registering the same
// handler twice is not deduplicated: it will be invoked twice per publish.
type Bus struct {
	nextID     uint64
	handlers   map[reflect.Type][]registration
	publishing map[reflect.Type]bool
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		handlers:   make(map[reflect.Type][]registration),
		publishing: make(map[reflect.Type]bool),
	}
}

// Subscription identifies one registration so it can be removed later.
// Go functions are not comparable, so removal goes through this token rather
// than by handler value.
type Subscription struct {
	bus *Bus
	typ reflect.Type
	id  uint64
}

// Unsubscribe removes the registration. Calling it again, or on a registration
// already cleared by Shutdown, is a no-op.
func (s Subscription) Unsubscribe() {
	if s.bus == nil {
		return
	}
	regs := s.bus.handlers[s.typ]
	for i, reg := range regs {
		if reg.id == s.id {
			s.bus.handlers[s.typ] = append(regs[:i:i], regs[i+1:]...)
			return
		}
	}
}

// Shutdown clears every registration. The bus stays usable but silent until
// handlers are registered again.
func (b *Bus) Shutdown() {
	b.handlers = make(map[reflect.Type][]registration)
	b.publishing = make(map[reflect.Type]bool)
}

// HandlerCount returns the number of registrations for T.
func HandlerCount[T any](b *Bus) int {
	return len(b.handlers[typeOf[T]()])
}

// Subscribe registers fn for messages of type T.
func Subscribe[T any](b *Bus, fn func(T)) Subscription {
	typ := typeOf[T]()
	b.nextID++
	id := b.nextID
	b.handlers[typ] = append(b.handlers[typ], registration{id: id, handler: fn})
	return Subscription{bus: b, typ: typ, id: id}
}

// Publish invokes all handlers registered for T, synchronously and in
// registration order. Publishing T from inside a handler for T is dropped with
// a warning: letting it through would recurse without bound.
func Publish[T any](b *Bus, msg T) {
	typ := typeOf[T]()
	if b.publishing[typ] {
		log.Printf("event: dropped re-entrant publish of %v", typ)
		return
	}
	regs := b.handlers[typ]
	if len(regs) == 0 {
		return
	}
	b.publishing[typ] = true
	defer func() { b.publishing[typ] = false }()

	// Snapshot so handlers can unsubscribe themselves mid-publish.
	snapshot := make([]registration, len(regs))
	copy(snapshot, regs)
	for _, reg := range snapshot {
		reg.handler.(func(T))(msg)
	}
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
