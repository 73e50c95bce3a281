package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/sync/errgroup"

	"servctl/internal/panel"
	"servctl/internal/session"
)

// ServerStatus is a one-shot view of a server and the tunnel.
type ServerStatus struct {
	Server  session.ManagedProcess
	Running bool
	Tunnel  session.TunnelState
}

// Status fetches the server's identity, run state and the tunnel state
// concurrently.
func (s *Services) Status(ctx context.Context, serverID string) (ServerStatus, error) {
	var st ServerStatus
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		proc, err := s.Remote.Resolve(gctx, serverID)
		if err != nil {
			return err
		}
		st.Server = proc
		return nil
	})
	g.Go(func() error {
		rs, err := s.Remote.GetProcessStatus(gctx, serverID)
		if err != nil {
			return fmt.Errorf("server status: %w", err)
		}
		st.Running = rs.Running
		return nil
	})
	g.Go(func() error {
		ts, err := s.Remote.GetTunnelStatus(gctx)
		if err != nil {
			return fmt.Errorf("tunnel status: %w", err)
		}
		st.Tunnel = ts
		return nil
	})

	if err := g.Wait(); err != nil {
		return ServerStatus{}, err
	}
	return st, nil
}

// TunnelStatus fetches the tunnel state.
func (s *Services) TunnelStatus(ctx context.Context) (session.TunnelState, error) {
	return s.Remote.GetTunnelStatus(ctx)
}

// Servers lists the servers known to the panel.
func (s *Services) Servers(ctx context.Context) ([]panel.Server, error) {
	return s.Client.ListServers(ctx)
}

// Action runs one lifecycle action through an action gate and waits for
// the remote calls. A restart waits for both halves.
func (s *Services) Action(ctx context.Context, serverID string, target session.Target, kind session.ActionKind, port int) error {
	if target == session.TargetProcess {
		if _, err := s.Remote.Resolve(ctx, serverID); err != nil {
			return &session.Error{Kind: session.KindTargetNotFound, Op: string(kind), Err: err}
		}
	}
	gate := session.NewActionGate(serverID, s.Remote, s.SessionConfig().Gate, session.GateHooks{})
	if port == 0 {
		port = s.Settings.Tunnel.DefaultPort
	}
	gate.SetTunnelPort(port)
	return gate.SubmitWait(ctx, target, kind)
}

// Send runs one console command. Blank commands are refused here since a
// one-shot invocation that sends nothing is almost certainly a mistake.
func (s *Services) Send(ctx context.Context, serverID, text string) error {
	d := session.NewCommandDispatcher(serverID, s.Remote)
	sent, err := d.Send(ctx, text)
	if err != nil {
		return err
	}
	if !sent {
		return errors.New("command is empty")
	}
	return nil
}

// Quick composes prefix and arg like a quick action and sends the result.
func (s *Services) Quick(ctx context.Context, serverID, prefix, arg string) (string, error) {
	d := session.NewCommandDispatcher(serverID, s.Remote)
	d.OpenQuickAction(prefix, prefix)
	return d.SubmitQuickAction(ctx, arg)
}

// FollowLogs streams the server's console output to w until the stream
// closes or ctx is done.
func (s *Services) FollowLogs(ctx context.Context, serverID string, w io.Writer) error {
	conn, err := s.Remote.OpenLogStream(ctx, serverID)
	if err != nil {
		return err
	}
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		_ = conn.Close()
	}()

	for {
		line, err := conn.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("log stream: %w", err)
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, "\r\n")); err != nil {
			return err
		}
	}
}
