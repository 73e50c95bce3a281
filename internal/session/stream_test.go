package session

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitOpen(t *testing.T, s *StreamSession) {
	t.Helper()
	require.Eventually(t, func() bool { return s.State() == StreamOpen }, time.Second, time.Millisecond)
}

func countLines(lines []string, want string) int {
	n := 0
	for _, l := range lines {
		if l == want {
			n++
		}
	}
	return n
}

func TestStreamSessionLifecycle(t *testing.T) {
	remote := newFakeRemote()
	s := NewStreamSession("srv-1", remote)
	assert.Equal(t, StreamClosed, s.State())
	assert.NotEmpty(t, s.ID())

	require.True(t, s.Open(context.Background()))
	waitOpen(t, s)

	conn := remote.lastConn()
	conn.lines <- "[Server thread/INFO]: Done (3.2s)!"
	conn.lines <- "[Server thread/INFO]: Alex joined the game"
	require.Eventually(t, func() bool { return s.Buffer().Len() == 4 }, time.Second, time.Millisecond)

	assert.Equal(t, []string{
		lineConnecting,
		lineConnected,
		"[Server thread/INFO]: Done (3.2s)!",
		"[Server thread/INFO]: Alex joined the game",
	}, s.Buffer().Lines())

	require.True(t, s.Close(ReasonStopped))
	assert.False(t, s.Close(ReasonStopped))
	assert.False(t, s.Close(ReasonError))

	lines := s.Buffer().Lines()
	require.Len(t, lines, 5)
	assert.Equal(t, terminalLine(ReasonStopped, nil), lines[4])
	assert.Equal(t, StreamClosed, s.State())
	assert.True(t, s.Buffer().Frozen())
	assert.True(t, conn.isClosed())

	reason, err := s.CloseReason()
	assert.Equal(t, ReasonStopped, reason)
	assert.NoError(t, err)
}

func TestStreamSessionOpenTwiceIsRejected(t *testing.T) {
	remote := newFakeRemote()
	s := NewStreamSession("srv-1", remote)

	assert.True(t, s.Open(context.Background()))
	assert.False(t, s.Open(context.Background()))
	waitOpen(t, s)
	defer s.Close(ReasonDeactivated)

	assert.Equal(t, 1, remote.dialCount())
	assert.Equal(t, 1, countLines(s.Buffer().Lines(), lineConnecting))
}

func TestStreamSessionCannotReopenAfterClose(t *testing.T) {
	remote := newFakeRemote()
	s := NewStreamSession("srv-1", remote)
	s.Open(context.Background())
	waitOpen(t, s)
	s.Close(ReasonStopped)

	assert.False(t, s.Open(context.Background()))
}

func TestStreamSessionCloseReasons(t *testing.T) {
	tests := []struct {
		name   string
		finish func(c *fakeConn)
		reason CloseReason
		want   string
	}{
		{
			name:   "remote close",
			finish: func(c *fakeConn) { c.errc <- io.EOF },
			reason: ReasonRemoteClosed,
			want:   "--- log stream closed by server ---",
		},
		{
			name:   "read error",
			finish: func(c *fakeConn) { c.errc <- errors.New("connection reset") },
			reason: ReasonError,
			want:   "--- log stream error: connection reset ---",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := newFakeRemote()
			var hookCalls atomic.Int32
			s := NewStreamSession("srv-1", remote, WithCloseHook(func(CloseReason, error) { hookCalls.Add(1) }))
			s.Open(context.Background())
			waitOpen(t, s)

			tt.finish(remote.lastConn())
			require.Eventually(t, func() bool { return s.State() == StreamClosed }, time.Second, time.Millisecond)

			reason, _ := s.CloseReason()
			assert.Equal(t, tt.reason, reason)
			lines := s.Buffer().Lines()
			assert.Equal(t, tt.want, lines[len(lines)-1])

			assert.False(t, s.Close(ReasonStopped), "already closed")
			assert.Equal(t, int32(1), hookCalls.Load())
		})
	}
}

func TestStreamSessionDialFailure(t *testing.T) {
	remote := newFakeRemote()
	remote.dialErr = errors.New("403 forbidden")
	s := NewStreamSession("srv-1", remote)

	s.Open(context.Background())
	require.Eventually(t, func() bool { return s.State() == StreamClosed }, time.Second, time.Millisecond)

	lines := s.Buffer().Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, lineConnecting, lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "--- log stream error: "))
	assert.Contains(t, lines[1], "403 forbidden")
}

func TestStreamSessionClosedWhileDialing(t *testing.T) {
	remote := newFakeRemote()
	remote.dialGate = make(chan struct{})
	s := NewStreamSession("srv-1", remote)

	s.Open(context.Background())
	assert.Equal(t, StreamConnecting, s.State())
	require.True(t, s.Close(ReasonDeactivated))

	close(remote.dialGate)
	require.Eventually(t, func() bool { return remote.dialCount() == 1 }, time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return remote.lastConn().isClosed() }, time.Second, time.Millisecond)

	assert.Equal(t, []string{lineConnecting, terminalLine(ReasonDeactivated, nil)}, s.Buffer().Lines())
	assert.Equal(t, StreamClosed, s.State())
}

func TestStreamSessionCloseBeforeOpen(t *testing.T) {
	s := NewStreamSession("srv-1", newFakeRemote())
	assert.False(t, s.Close(ReasonStopped))
	assert.Zero(t, s.Buffer().Len())
}

func TestStreamSessionNotifies(t *testing.T) {
	remote := newFakeRemote()
	var notes atomic.Int32
	s := NewStreamSession("srv-1", remote, WithNotify(func() { notes.Add(1) }))

	s.Open(context.Background())
	waitOpen(t, s)
	remote.lastConn().lines <- "hello"
	require.Eventually(t, func() bool { return s.Buffer().Len() == 3 }, time.Second, time.Millisecond)
	s.Close(ReasonStopped)

	// connecting, connected, one line, closed
	assert.Equal(t, int32(4), notes.Load())
}

func TestStreamSessionCapacity(t *testing.T) {
	remote := newFakeRemote()
	s := NewStreamSession("srv-1", remote, WithCapacity(3))
	s.Open(context.Background())
	waitOpen(t, s)

	conn := remote.lastConn()
	for _, l := range []string{"a", "b", "c"} {
		conn.lines <- l
	}
	require.Eventually(t, func() bool { return s.Buffer().Evicted() == 2 }, time.Second, time.Millisecond)
	assert.Equal(t, []string{"a", "b", "c"}, s.Buffer().Lines())
	s.Close(ReasonStopped)
}
