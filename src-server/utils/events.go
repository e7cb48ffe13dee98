package utils

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

type EventKind string

const (
	EventReady          EventKind = "READY"
	EventGuildCreate    EventKind = "GUILD_CREATE"
	EventMemberAdd      EventKind = "GUILD_MEMBER_ADD"
	EventMemberUpdate   EventKind = "GUILD_MEMBER_UPDATE"
	EventMemberRemove   EventKind = "GUILD_MEMBER_REMOVE"
	EventPresenceUpdate EventKind = "PRESENCE_UPDATE"
)

type EventHandler func(ctx context.Context, event any) error

type namedEventHandler struct {
	name    string
	handler EventHandler
}

// EventRouter maps gateway event kinds to the handlers interested in them.
// main feeds it from discordgo; tests call Dispatch directly.
type EventRouter struct {
	mu       sync.RWMutex
	handlers map[EventKind][]namedEventHandler
}

func NewEventRouter() *EventRouter {
	return &EventRouter{handlers: make(map[EventKind][]namedEventHandler)}
}

func (r *EventRouter) On(kind EventKind, name string, handler EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[kind] = append(r.handlers[kind], namedEventHandler{name: name, handler: handler})
}

// Dispatch runs every handler of kind in registration order. One failing
// handler doesn't stop the others.
func (r *EventRouter) Dispatch(ctx context.Context, kind EventKind, event any) error {
	r.mu.RLock()
	handlers := r.handlers[kind]
	r.mu.RUnlock()

	var errs []error
	for _, h := range handlers {
		if err := h.handler(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", h.name, err))
		}
	}
	return errors.Join(errs...)
}

func (r *EventRouter) Count(kind EventKind) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers[kind])
}

// Typed adapts a handler of one concrete event type, e.g.
// func(context.Context, *discordgo.GuildMemberAdd) error.
func Typed[T any](fn func(ctx context.Context, event T) error) EventHandler {
	return func(ctx context.Context, event any) error {
		typed, ok := event.(T)
		if !ok {
			return fmt.Errorf("unexpected event type %T", event)
		}
		return fn(ctx, typed)
	}
}

// DispatchEvent routes event and reports whatever fails.
func (as *AppState) DispatchEvent(kind EventKind, event any) {
	if err := as.Events.Dispatch(context.Background(), kind, event); err != nil {
		as.ReportError(err, string(kind))
	}
}
