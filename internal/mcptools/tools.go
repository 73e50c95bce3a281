package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"servctl/internal/app"
	"servctl/internal/panel"
	"servctl/internal/session"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	defaultTailSeconds = 5
	maxTailSeconds     = 60
	defaultTailLines   = 100
)

// Backend is the console functionality exposed as tools. *app.Services
// implements it.
type Backend interface {
	Status(ctx context.Context, serverID string) (app.ServerStatus, error)
	TunnelStatus(ctx context.Context) (session.TunnelState, error)
	Servers(ctx context.Context) ([]panel.Server, error)
	Action(ctx context.Context, serverID string, target session.Target, kind session.ActionKind, port int) error
	Send(ctx context.Context, serverID, text string) error
	Quick(ctx context.Context, serverID, prefix, arg string) (string, error)
	FollowLogs(ctx context.Context, serverID string, w io.Writer) error
}

var _ Backend = (*app.Services)(nil)

// Tools provides MCP tools for operating game servers through the panel.
type Tools struct {
	backend Backend
}

// NewTools creates the tool set backed by b.
func NewTools(b Backend) *Tools {
	return &Tools{backend: b}
}

func serverIDParam() mcp.ToolOption {
	return mcp.WithString("server_id",
		mcp.Required(),
		mcp.Description("Id of the server as listed by server_list"),
	)
}

// ServerTools returns every tool together with its handler.
func (t *Tools) ServerTools() []server.ServerTool {
	return []server.ServerTool{
		{
			Tool: mcp.NewTool("server_list",
				mcp.WithDescription("List the servers known to the panel"),
			),
			Handler: t.HandleServerList,
		},
		{
			Tool: mcp.NewTool("server_status",
				mcp.WithDescription("Get whether a server is running, plus the tunnel state"),
				serverIDParam(),
			),
			Handler: t.HandleServerStatus,
		},
		{
			Tool: mcp.NewTool("server_start",
				mcp.WithDescription("Start a server"),
				serverIDParam(),
			),
			Handler: t.processAction(session.ActionStart),
		},
		{
			Tool: mcp.NewTool("server_stop",
				mcp.WithDescription("Stop a server"),
				serverIDParam(),
			),
			Handler: t.processAction(session.ActionStop),
		},
		{
			Tool: mcp.NewTool("server_restart",
				mcp.WithDescription("Restart a server: stop, wait, then start"),
				serverIDParam(),
			),
			Handler: t.processAction(session.ActionRestart),
		},
		{
			Tool: mcp.NewTool("tunnel_status",
				mcp.WithDescription("Get the state and public URL of the shared tunnel"),
			),
			Handler: t.HandleTunnelStatus,
		},
		{
			Tool: mcp.NewTool("tunnel_start",
				mcp.WithDescription("Start the shared tunnel"),
				mcp.WithNumber("port",
					mcp.Description("Local port to expose, defaults to the configured tunnel port"),
				),
			),
			Handler: t.tunnelAction(session.ActionStart),
		},
		{
			Tool: mcp.NewTool("tunnel_stop",
				mcp.WithDescription("Stop the shared tunnel"),
			),
			Handler: t.tunnelAction(session.ActionStop),
		},
		{
			Tool: mcp.NewTool("send_command",
				mcp.WithDescription("Send a console command to a running server"),
				serverIDParam(),
				mcp.WithString("command",
					mcp.Required(),
					mcp.Description("Console command, e.g. 'say hello'"),
				),
			),
			Handler: t.HandleSendCommand,
		},
		{
			Tool: mcp.NewTool("quick_action",
				mcp.WithDescription("Run a templated command such as 'op <player>' or 'kick <player>'"),
				serverIDParam(),
				mcp.WithString("command",
					mcp.Required(),
					mcp.Description("Command prefix, e.g. 'op'"),
				),
				mcp.WithString("argument",
					mcp.Required(),
					mcp.Description("Argument appended to the prefix, e.g. a player name"),
				),
			),
			Handler: t.HandleQuickAction,
		},
		{
			Tool: mcp.NewTool("tail_logs",
				mcp.WithDescription("Follow a server's console for a few seconds and return the lines received"),
				serverIDParam(),
				mcp.WithNumber("seconds",
					mcp.Description(fmt.Sprintf("How long to listen, default %d, at most %d", defaultTailSeconds, maxTailSeconds)),
				),
				mcp.WithNumber("max_lines",
					mcp.Description(fmt.Sprintf("Return at most this many of the newest lines, default %d", defaultTailLines)),
				),
			),
			Handler: t.HandleTailLogs,
		},
	}
}

// HandleServerList handles the server_list tool call
func (t *Tools) HandleServerList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	servers, err := t.backend.Servers(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list servers: %v", err)), nil
	}
	return jsonResult(map[string]interface{}{
		"servers": servers,
		"total":   len(servers),
	})
}

// HandleServerStatus handles the server_status tool call
func (t *Tools) HandleServerStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("server_id")
	if err != nil {
		return mcp.NewToolResultError("server_id is required"), nil
	}
	st, err := t.backend.Status(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get server status: %v", err)), nil
	}
	return jsonResult(map[string]interface{}{
		"id":      st.Server.ID,
		"name":    st.Server.Name,
		"version": st.Server.Version,
		"running": st.Running,
		"tunnel": map[string]interface{}{
			"running": st.Tunnel.Running,
			"url":     st.Tunnel.PublicURL,
		},
	})
}

func (t *Tools) processAction(kind session.ActionKind) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("server_id")
		if err != nil {
			return mcp.NewToolResultError("server_id is required"), nil
		}
		if err := t.backend.Action(ctx, id, session.TargetProcess, kind, 0); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to %s server: %v", kind, err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Requested %s of server '%s'", kind, id)), nil
	}
}

// HandleTunnelStatus handles the tunnel_status tool call
func (t *Tools) HandleTunnelStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ts, err := t.backend.TunnelStatus(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get tunnel status: %v", err)), nil
	}
	return jsonResult(map[string]interface{}{
		"running": ts.Running,
		"url":     ts.PublicURL,
	})
}

func (t *Tools) tunnelAction(kind session.ActionKind) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		port, err := intArg(req, "port", 0)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := t.backend.Action(ctx, "", session.TargetTunnel, kind, port); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to %s tunnel: %v", kind, err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Requested tunnel %s", kind)), nil
	}
}

// HandleSendCommand handles the send_command tool call
func (t *Tools) HandleSendCommand(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("server_id")
	if err != nil {
		return mcp.NewToolResultError("server_id is required"), nil
	}
	command, err := req.RequireString("command")
	if err != nil {
		return mcp.NewToolResultError("command is required"), nil
	}
	if err := t.backend.Send(ctx, id, command); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to send command: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Sent '%s' to server '%s'", command, id)), nil
}

// HandleQuickAction handles the quick_action tool call
func (t *Tools) HandleQuickAction(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("server_id")
	if err != nil {
		return mcp.NewToolResultError("server_id is required"), nil
	}
	prefix, err := req.RequireString("command")
	if err != nil {
		return mcp.NewToolResultError("command is required"), nil
	}
	arg, err := req.RequireString("argument")
	if err != nil {
		return mcp.NewToolResultError("argument is required"), nil
	}
	text, err := t.backend.Quick(ctx, id, prefix, arg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to run quick action: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Sent '%s' to server '%s'", text, id)), nil
}

// HandleTailLogs handles the tail_logs tool call
func (t *Tools) HandleTailLogs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("server_id")
	if err != nil {
		return mcp.NewToolResultError("server_id is required"), nil
	}
	seconds, err := intArg(req, "seconds", defaultTailSeconds)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	maxLines, err := intArg(req, "max_lines", defaultTailLines)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	seconds = min(max(seconds, 1), maxTailSeconds)
	maxLines = max(maxLines, 1)

	ctx, cancel := context.WithTimeout(ctx, time.Duration(seconds)*time.Second)
	defer cancel()

	tail := &tailWriter{max: maxLines}
	if err := t.backend.FollowLogs(ctx, id, tail); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to read logs: %v", err)), nil
	}
	lines := tail.Lines()
	if len(lines) == 0 {
		return mcp.NewToolResultText("No console output received"), nil
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	resultJSON, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(resultJSON)), nil
}

// intArg reads an optional numeric argument. JSON numbers arrive as float64.
func intArg(req mcp.CallToolRequest, name string, def int) (int, error) {
	raw, ok := req.GetArguments()[name]
	if !ok || raw == nil {
		return def, nil
	}
	switch v := raw.(type) {
	case float64:
		return int(v), nil
	case int:
		return v, nil
	default:
		return 0, fmt.Errorf("%s must be a number", name)
	}
}

// tailWriter keeps the newest max lines written to it.
type tailWriter struct {
	mu    sync.Mutex
	max   int
	lines []string
}

func (w *tailWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, l := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		w.lines = append(w.lines, l)
	}
	if len(w.lines) > w.max {
		w.lines = w.lines[len(w.lines)-w.max:]
	}
	return len(p), nil
}

func (w *tailWriter) Lines() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.lines...)
}
