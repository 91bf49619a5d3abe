package workbench

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/kispace-io/appspace/internal/log"
)

var (
	// ErrUnknownCommand is returned when executing an undefined command.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrNoHandler is returned when a defined command has no handler.
	ErrNoHandler = errors.New("command has no handler")
)

// Handler executes a command. params is the registry's argument envelope.
type Handler func(ctx context.Context, params map[string]any) (any, error)

// Command is a command definition.
type Command struct {
	ID       string `json:"id"`
	Title    string `json:"title,omitempty"`
	Category string `json:"category,omitempty"`
	Source   string `json:"source,omitempty"` // contributing extension id
}

type handlerEntry struct {
	token   uint64
	handler Handler
}

// CommandRegistry holds command definitions and at most one handler per
// command. Safe for concurrent use.
type CommandRegistry struct {
	mu       sync.RWMutex
	commands map[string]Command
	handlers map[string]handlerEntry
	seq      uint64
}

// NewCommandRegistry returns an empty registry.
func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{
		commands: make(map[string]Command),
		handlers: make(map[string]handlerEntry),
	}
}

// HasCommand reports whether id is defined.
func (r *CommandRegistry) HasCommand(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.commands[id]
	return ok
}

// RegisterCommand defines cmd, replacing any previous definition with the
// same id. Handlers are kept.
func (r *CommandRegistry) RegisterCommand(cmd Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[cmd.ID] = cmd
}

// RegisterHandler installs h for id, replacing the current handler. The
// returned func removes h, and only h: once another handler has replaced it
// the call does nothing.
func (r *CommandRegistry) RegisterHandler(id string, h Handler) (unregister func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.commands[id]; !ok {
		r.commands[id] = Command{ID: id}
	}
	r.seq++
	token := r.seq
	r.handlers[id] = handlerEntry{token: token, handler: h}
	log.Debug(log.CatWorkbench, "handler registered", "command", id)

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if cur, ok := r.handlers[id]; ok && cur.token == token {
			delete(r.handlers, id)
			log.Debug(log.CatWorkbench, "handler unregistered", "command", id)
		}
	}
}

// HasHandler reports whether id currently has a handler.
func (r *CommandRegistry) HasHandler(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handlers[id]
	return ok
}

// ExecuteCommand runs the handler of id with params.
func (r *CommandRegistry) ExecuteCommand(ctx context.Context, id string, params map[string]any) (any, error) {
	r.mu.RLock()
	_, defined := r.commands[id]
	entry, hasHandler := r.handlers[id]
	r.mu.RUnlock()

	if !defined {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, id)
	}
	if !hasHandler {
		return nil, fmt.Errorf("%w: %s", ErrNoHandler, id)
	}
	return entry.handler(ctx, params)
}

// Commands returns every definition ordered by id.
func (r *CommandRegistry) Commands() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Command, 0, len(r.commands))
	for _, c := range r.commands {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// RemoveSource drops every definition and handler contributed by source.
func (r *CommandRegistry) RemoveSource(source string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, c := range r.commands {
		if c.Source == source {
			delete(r.commands, id)
			delete(r.handlers, id)
			n++
		}
	}
	return n
}
