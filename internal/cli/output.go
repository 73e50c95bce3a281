// Package cli formats the results of the one-shot commands as a table, JSON
// or YAML.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"servctl/internal/app"
	"servctl/internal/panel"
	"servctl/internal/session"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"
)

// OutputFormat represents the output format for CLI commands
type OutputFormat string

const (
	OutputFormatTable OutputFormat = "table"
	OutputFormatJSON  OutputFormat = "json"
	OutputFormatYAML  OutputFormat = "yaml"
)

// ParseOutputFormat validates a --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case OutputFormatTable, OutputFormatJSON, OutputFormatYAML:
		return f, nil
	case "":
		return OutputFormatTable, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s (use table, json or yaml)", s)
	}
}

type serverView struct {
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version" yaml:"version"`
}

type tunnelView struct {
	Running bool   `json:"running" yaml:"running"`
	URL     string `json:"url,omitempty" yaml:"url,omitempty"`
}

type statusView struct {
	ID      string     `json:"id" yaml:"id"`
	Name    string     `json:"name" yaml:"name"`
	Version string     `json:"version" yaml:"version"`
	Running bool       `json:"running" yaml:"running"`
	Tunnel  tunnelView `json:"tunnel" yaml:"tunnel"`
}

// Printer writes command results in one format.
type Printer struct {
	out    io.Writer
	format OutputFormat
}

// NewPrinter creates a printer writing to out.
func NewPrinter(out io.Writer, format OutputFormat) *Printer {
	return &Printer{out: out, format: format}
}

// Servers prints the server list.
func (p *Printer) Servers(servers []panel.Server) error {
	views := make([]serverView, 0, len(servers))
	for _, s := range servers {
		views = append(views, serverView{ID: s.ID, Name: s.Name, Version: s.Version})
	}
	if p.format != OutputFormatTable {
		return p.encode(views)
	}

	if len(views) == 0 {
		fmt.Fprintln(p.out, text.FgYellow.Sprint("No servers found"))
		return nil
	}
	t := p.newTable()
	t.AppendHeader(table.Row{"ID", "Name", "Version"})
	for _, v := range views {
		t.AppendRow(table.Row{v.ID, v.Name, dash(v.Version)})
	}
	t.Render()
	fmt.Fprintf(p.out, "\n%s %d servers\n", text.FgHiBlue.Sprint("Total:"), len(views))
	return nil
}

// Status prints one server's state together with the tunnel.
func (p *Printer) Status(st app.ServerStatus) error {
	v := statusView{
		ID:      st.Server.ID,
		Name:    st.Server.Name,
		Version: st.Server.Version,
		Running: st.Running,
		Tunnel:  tunnelView{Running: st.Tunnel.Running, URL: st.Tunnel.PublicURL},
	}
	if p.format != OutputFormatTable {
		return p.encode(v)
	}

	t := p.newTable()
	t.AppendHeader(table.Row{"Property", "Value"})
	t.AppendRows([]table.Row{
		{"server", fmt.Sprintf("%s (%s)", v.Name, v.ID)},
		{"version", dash(v.Version)},
		{"state", formatRunning(v.Running)},
		{"tunnel", formatRunning(v.Tunnel.Running)},
		{"address", dash(v.Tunnel.URL)},
	})
	t.Render()
	return nil
}

// Tunnel prints the tunnel state.
func (p *Printer) Tunnel(ts session.TunnelState) error {
	v := tunnelView{Running: ts.Running, URL: ts.PublicURL}
	if p.format != OutputFormatTable {
		return p.encode(v)
	}

	t := p.newTable()
	t.AppendHeader(table.Row{"Property", "Value"})
	t.AppendRows([]table.Row{
		{"tunnel", formatRunning(v.Running)},
		{"address", dash(v.URL)},
	})
	t.Render()
	return nil
}

func (p *Printer) newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(p.out)
	t.SetStyle(table.StyleRounded)
	return t
}

func (p *Printer) encode(v interface{}) error {
	switch p.format {
	case OutputFormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
		fmt.Fprintln(p.out, string(data))
		return nil
	case OutputFormatYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to convert to YAML: %w", err)
		}
		fmt.Fprint(p.out, string(data))
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s", p.format)
	}
}

func formatRunning(running bool) string {
	if running {
		return text.FgGreen.Sprint("🟢 online")
	}
	return text.FgRed.Sprint("🔴 offline")
}

func dash(s string) string {
	if s == "" {
		return text.FgHiBlack.Sprint("-")
	}
	return s
}
