package panel

import (
	"context"
	"fmt"
)

// Registry resolves server ids against the panel's server list.
type Registry struct {
	client *Client
}

// NewRegistry creates a registry backed by client.
func NewRegistry(client *Client) *Registry {
	return &Registry{client: client}
}

// Resolve returns the server with the given id or ErrServerNotFound.
func (r *Registry) Resolve(ctx context.Context, serverID string) (Server, error) {
	servers, err := r.client.ListServers(ctx)
	if err != nil {
		return Server{}, fmt.Errorf("list servers: %w", err)
	}
	for _, s := range servers {
		if s.ID == serverID {
			return s, nil
		}
	}
	return Server{}, fmt.Errorf("%w: %s", ErrServerNotFound, serverID)
}
