package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherIgnoresBlankText(t *testing.T) {
	remote := newFakeRemote()
	d := NewCommandDispatcher("srv-1", remote)

	for _, text := range []string{"", "   ", "\t\n"} {
		sent, err := d.Send(context.Background(), text)
		assert.NoError(t, err)
		assert.False(t, sent)
	}
	assert.Empty(t, remote.commandLog())

	sent, err := d.Send(context.Background(), "list")
	require.NoError(t, err)
	assert.True(t, sent)
	assert.Equal(t, []string{"list"}, remote.commandLog())
}

func TestDispatcherDraft(t *testing.T) {
	remote := newFakeRemote()
	d := NewCommandDispatcher("srv-1", remote)

	d.SetDraft("say hel")
	assert.Equal(t, "say hel", d.Draft())

	_, err := d.Send(context.Background(), "say hello")
	require.NoError(t, err)
	assert.Empty(t, d.Draft(), "cleared on success")

	remote.commandErr = errors.New("server offline")
	_, err = d.Send(context.Background(), "say again")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindActionFailed))
	assert.Equal(t, "say again", d.Draft(), "kept on failure")
}

func TestQuickActionCompose(t *testing.T) {
	qa := QuickAction{Title: "Make Operator", Prefix: "op"}

	text, err := qa.Compose("Steve")
	require.NoError(t, err)
	assert.Equal(t, "op Steve", text)

	text, err = qa.Compose("  Steve  ")
	require.NoError(t, err)
	assert.Equal(t, "op Steve", text)

	_, err = qa.Compose("   ")
	assert.ErrorIs(t, err, ErrEmptyArgument)
}

func TestDispatcherQuickActionFlow(t *testing.T) {
	remote := newFakeRemote()
	d := NewCommandDispatcher("srv-1", remote)

	_, err := d.SubmitQuickAction(context.Background(), "Steve")
	assert.ErrorIs(t, err, ErrNoQuickAction)

	d.OpenQuickAction("Make Operator", "op")
	qa, ok := d.QuickAction()
	require.True(t, ok)
	assert.Equal(t, "Make Operator", qa.Title)

	_, err = d.SubmitQuickAction(context.Background(), " ")
	assert.ErrorIs(t, err, ErrEmptyArgument)
	_, ok = d.QuickAction()
	assert.True(t, ok, "still open after an empty argument")
	assert.Empty(t, remote.commandLog())

	text, err := d.SubmitQuickAction(context.Background(), "Steve")
	require.NoError(t, err)
	assert.Equal(t, "op Steve", text)
	assert.Equal(t, []string{"op Steve"}, remote.commandLog())

	_, ok = d.QuickAction()
	assert.False(t, ok, "consumed")
	assert.Empty(t, d.Draft(), "quick actions do not touch the draft")
}

func TestDispatcherCancelQuickAction(t *testing.T) {
	d := NewCommandDispatcher("srv-1", newFakeRemote())
	d.OpenQuickAction("Kick Player", "kick")
	d.CancelQuickAction()
	_, ok := d.QuickAction()
	assert.False(t, ok)
}
