package session

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/liftlog/coach/internal/model"
	appErr "github.com/liftlog/coach/internal/pkg/errors"
)

func TestRegistrySnapshotNoSession(t *testing.T) {
	reg := NewRegistry()
	_, _, err := reg.Snapshot(1, 0)
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestSessionAppendAndSnapshot(t *testing.T) {
	reg := NewRegistry()
	s := reg.Start(1)
	s.Append(model.Event{Kind: model.EventStatus, Text: "Checking your question..."})
	s.Append(model.Event{Kind: model.EventAnswer, Text: "done"})

	events, terminal, err := reg.Snapshot(1, 0)
	require.NoError(t, err)
	require.False(t, terminal)
	require.Len(t, events, 2)
	require.Equal(t, model.EventStatus, events[0].Kind)
	require.Equal(t, model.EventAnswer, events[1].Kind)

	// offset skips already-delivered events
	events, _, err = reg.Snapshot(1, 1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "done", events[0].Text)
}

func TestSessionTerminalStopsWrites(t *testing.T) {
	reg := NewRegistry()
	s := reg.Start(1)
	s.Append(model.Event{Kind: model.EventTerminal})
	s.Append(model.Event{Kind: model.EventStatus, Text: "late"})

	events, terminal, err := reg.Snapshot(1, 0)
	require.NoError(t, err)
	require.True(t, terminal)
	require.Len(t, events, 1)
}

func TestSnapshotOutOfRangeOffset(t *testing.T) {
	reg := NewRegistry()
	s := reg.Start(1)
	s.Append(model.Event{Kind: model.EventStatus, Text: "one"})

	events, _, err := reg.Snapshot(1, 99)
	require.NoError(t, err)
	require.Empty(t, events)
}

func TestClearOnlyAfterTerminal(t *testing.T) {
	reg := NewRegistry()
	s := reg.Start(1)
	s.Append(model.Event{Kind: model.EventStatus, Text: "working"})

	reg.Clear(1)
	_, _, err := reg.Snapshot(1, 0)
	require.NoError(t, err, "in-flight session must survive Clear")

	s.Append(model.Event{Kind: model.EventTerminal})
	reg.Clear(1)
	_, _, err = reg.Snapshot(1, 0)
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestStartReplacesSession(t *testing.T) {
	reg := NewRegistry()
	old := reg.Start(1)
	old.Append(model.Event{Kind: model.EventStatus, Text: "old"})

	reg.Start(1)
	// the stale orchestrator writes into its orphaned log only
	old.Append(model.Event{Kind: model.EventAnswer, Text: "stale"})

	events, _, err := reg.Snapshot(1, 0)
	require.NoError(t, err)
	require.Empty(t, events)
}
