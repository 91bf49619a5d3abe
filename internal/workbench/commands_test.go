package workbench

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kispace-io/appspace/internal/log"
)

func echo(tag string) Handler {
	return func(_ context.Context, params map[string]any) (any, error) {
		return tag, nil
	}
}

func TestCommandRegistry_Execute(t *testing.T) {
	log.Discard()
	r := NewCommandRegistry()
	ctx := context.Background()

	_, err := r.ExecuteCommand(ctx, "missing", nil)
	require.ErrorIs(t, err, ErrUnknownCommand)

	r.RegisterCommand(Command{ID: "defined.only", Title: "Defined"})
	_, err = r.ExecuteCommand(ctx, "defined.only", nil)
	require.ErrorIs(t, err, ErrNoHandler)

	r.RegisterHandler("hello", func(_ context.Context, params map[string]any) (any, error) {
		return params["args"], nil
	})
	assert.True(t, r.HasCommand("hello"), "registering a handler defines the command")

	got, err := r.ExecuteCommand(ctx, "hello", map[string]any{"args": []any{1, "two"}})
	require.NoError(t, err)
	assert.Equal(t, []any{1, "two"}, got)
}

func TestCommandRegistry_UnregisterIsTokenGuarded(t *testing.T) {
	log.Discard()
	r := NewCommandRegistry()
	ctx := context.Background()

	unregisterFirst := r.RegisterHandler("cmd", echo("first"))
	unregisterSecond := r.RegisterHandler("cmd", echo("second"))

	unregisterFirst()
	got, err := r.ExecuteCommand(ctx, "cmd", nil)
	require.NoError(t, err)
	assert.Equal(t, "second", got, "stale unregister must not remove the replacement")

	unregisterSecond()
	assert.False(t, r.HasHandler("cmd"))
	assert.True(t, r.HasCommand("cmd"), "definition outlives its handler")
}

func TestCommandRegistry_CommandsAndRemoveSource(t *testing.T) {
	r := NewCommandRegistry()
	r.RegisterCommand(Command{ID: "b.cmd", Source: "acme.b"})
	r.RegisterCommand(Command{ID: "a.cmd", Source: "acme.a"})
	r.RegisterHandler("b.cmd", echo("b"))

	var ids []string
	for _, c := range r.Commands() {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"a.cmd", "b.cmd"}, ids)

	assert.Equal(t, 1, r.RemoveSource("acme.b"))
	assert.False(t, r.HasCommand("b.cmd"))
	assert.False(t, r.HasHandler("b.cmd"))
}
