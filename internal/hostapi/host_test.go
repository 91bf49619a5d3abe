package hostapi

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kispace-io/appspace/internal/log"
	"github.com/kispace-io/appspace/internal/workbench"
)

type recordingActivator struct {
	activated   int
	deactivated int
	deactErr    error
}

func (a *recordingActivator) Activate(ctx context.Context, api *API, rc *RuntimeContext) error {
	a.activated++
	_, err := api.Commands.RegisterCommand("hello.say", func(name string) string { return "hello " + name }, nil)
	return err
}

func (a *recordingActivator) Deactivate(ctx context.Context) error {
	a.deactivated++
	return a.deactErr
}

func TestHost_ActivateAndDeactivate(t *testing.T) {
	log.Discard()
	ctx := context.Background()
	reg := workbench.NewCommandRegistry()
	h := NewHost(reg, workbench.NewResources(nil))
	act := &recordingActivator{}

	em, err := h.Activate(ctx, testPackage(t), act)
	require.NoError(t, err)
	assert.Equal(t, 1, act.activated)
	assert.Equal(t, []string{"acme.hello"}, h.Active())

	got, ok := h.Emulator("acme.hello")
	require.True(t, ok)
	assert.Same(t, em, got)

	assert.True(t, reg.HasCommand("hello.other"), "contributed commands are defined")
	out, err := reg.ExecuteCommand(ctx, "hello.say", map[string]any{"args": []any{"bob"}})
	require.NoError(t, err)
	assert.Equal(t, "hello bob", out)

	require.NoError(t, h.Deactivate(ctx, "acme.hello"))
	assert.Equal(t, 1, act.deactivated)
	assert.Empty(t, h.Active())
	assert.False(t, reg.HasHandler("hello.say"))

	require.NoError(t, h.Deactivate(ctx, "acme.hello"), "unknown ids are ignored")
}

func TestHost_ReactivateReplacesInstance(t *testing.T) {
	log.Discard()
	ctx := context.Background()
	h := NewHost(workbench.NewCommandRegistry(), nil)
	first := &recordingActivator{}

	a, err := h.Activate(ctx, testPackage(t), first)
	require.NoError(t, err)
	b, err := h.Activate(ctx, testPackage(t), nil)
	require.NoError(t, err)

	assert.NotSame(t, a, b)
	assert.Equal(t, 1, first.deactivated)
	assert.Equal(t, []string{"acme.hello"}, h.Active())
	assert.Empty(t, a.GetCommands())
}

func TestHost_StateSurvivesReactivation(t *testing.T) {
	log.Discard()
	ctx := context.Background()
	h := NewHost(workbench.NewCommandRegistry(), nil)

	a, err := h.Activate(ctx, testPackage(t), nil)
	require.NoError(t, err)
	a.Context().GlobalState.Update("runs", 1)
	a.Context().WorkspaceState.Update("open", "README.md")
	require.NoError(t, h.Deactivate(ctx, "acme.hello"))

	b, err := h.Activate(ctx, testPackage(t), nil)
	require.NoError(t, err)
	assert.NotEqual(t, a.Context().InstanceID, b.Context().InstanceID)
	assert.Equal(t, 1, b.Context().GlobalState.Get("runs", 0))
	assert.Equal(t, "README.md", b.Context().WorkspaceState.Get("open", ""))
}

func TestHost_FailedActivationIsDisposed(t *testing.T) {
	log.Discard()
	ctx := context.Background()
	reg := workbench.NewCommandRegistry()
	h := NewHost(reg, nil)
	boom := errors.New("boom")

	_, err := h.Activate(ctx, testPackage(t), ActivatorFunc(func(ctx context.Context, api *API, rc *RuntimeContext) error {
		if _, err := api.Commands.RegisterCommand("half.done", func() {}, nil); err != nil {
			return err
		}
		return boom
	}))
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "activating acme.hello")
	assert.Empty(t, h.Active())
	assert.False(t, reg.HasHandler("half.done"))
}

func TestHost_Close(t *testing.T) {
	log.Discard()
	ctx := context.Background()
	h := NewHost(workbench.NewCommandRegistry(), nil)

	failing := &recordingActivator{deactErr: errors.New("stuck")}
	_, err := h.Activate(ctx, testPackage(t), failing)
	require.NoError(t, err)

	other := testPackage(t)
	other.ExtensionID = "acme.other"
	_, err = h.Activate(ctx, other, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"acme.hello", "acme.other"}, h.Active())

	h.Close(ctx)
	assert.Empty(t, h.Active())
	assert.Equal(t, 1, failing.deactivated)
}
