package app

import (
	"context"
	"errors"

	"servctl/internal/panel"
	"servctl/internal/session"
)

// Remote adapts the panel client to the interfaces of the session core.
type Remote struct {
	client   *panel.Client
	registry *panel.Registry
}

// NewRemote wraps client.
func NewRemote(client *panel.Client) *Remote {
	return &Remote{client: client, registry: panel.NewRegistry(client)}
}

var (
	_ session.Remote   = (*Remote)(nil)
	_ session.Registry = (*Remote)(nil)
)

func (r *Remote) GetProcessStatus(ctx context.Context, processID string) (session.RunState, error) {
	st, err := r.client.GetProcessStatus(ctx, processID)
	if err != nil {
		return session.RunState{}, err
	}
	return session.RunState{Running: st.Running}, nil
}

func (r *Remote) GetTunnelStatus(ctx context.Context) (session.TunnelState, error) {
	st, err := r.client.GetTunnelStatus(ctx)
	if err != nil {
		return session.TunnelState{}, err
	}
	return session.TunnelState{Running: st.Running, PublicURL: st.URL}, nil
}

func (r *Remote) PostProcessAction(ctx context.Context, processID string, kind session.ActionKind) error {
	return r.client.PostProcessAction(ctx, processID, string(kind))
}

func (r *Remote) PostTunnelAction(ctx context.Context, kind session.ActionKind, port int) error {
	return r.client.PostTunnelAction(ctx, string(kind), port)
}

func (r *Remote) PostCommand(ctx context.Context, processID, text string) error {
	return r.client.PostCommand(ctx, processID, text)
}

func (r *Remote) OpenLogStream(ctx context.Context, processID string) (session.LogConn, error) {
	stream, err := r.client.OpenLogStream(ctx, processID)
	if err != nil {
		return nil, err
	}
	return stream, nil
}

// Resolve looks processID up in the panel's server list.
func (r *Remote) Resolve(ctx context.Context, processID string) (session.ManagedProcess, error) {
	s, err := r.registry.Resolve(ctx, processID)
	if err != nil {
		return session.ManagedProcess{}, err
	}
	return session.ManagedProcess{ID: s.ID, Name: s.Name, Version: s.Version}, nil
}

// IsNotFound reports whether err means the server id is unknown to the panel.
func IsNotFound(err error) bool {
	return errors.Is(err, panel.ErrServerNotFound)
}
