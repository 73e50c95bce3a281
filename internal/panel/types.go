package panel

// ProcessStatus is the answer of GET /servers/{id}/status.
type ProcessStatus struct {
	Running bool `json:"running"`
}

// TunnelStatus is the answer of GET /tunnel/status. URL is empty while the
// tunnel is down.
type TunnelStatus struct {
	Running bool   `json:"running"`
	URL     string `json:"url"`
}

// Server is one entry of GET /servers.
type Server struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Lifecycle actions accepted by the panel.
const (
	ActionStart   = "start"
	ActionStop    = "stop"
	ActionRestart = "restart"
)

type tunnelStartRequest struct {
	PortData struct {
		Port int `json:"port"`
	} `json:"port_data"`
}

type commandRequest struct {
	Command string `json:"command"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
