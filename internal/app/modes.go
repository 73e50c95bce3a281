package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"servctl/internal/session"
	"servctl/internal/tui"
	"servctl/pkg/logging"
)

// runCLIMode attaches to the server and prints its console and state
// changes until interrupted.
func runCLIMode(ctx context.Context, config *Config, services *Services, out io.Writer) error {
	logging.Info("CLI", "Running in no-TUI mode.")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctrl := services.NewController()
	if err := ctrl.Activate(ctx, config.ServerID); err != nil {
		logging.Error("CLI", err, "Failed to attach to %s", config.ServerID)
		return err
	}
	defer ctrl.Deactivate()

	proc := ctrl.Process()
	logging.Info("CLI", "Attached to %s (%s %s). Press Ctrl+C to detach.", proc.ID, proc.Name, proc.Version)

	printer := &logPrinter{out: out}
	return followController(ctx, ctrl, printer, out)
}

func followController(ctx context.Context, ctrl *session.Controller, printer *logPrinter, out io.Writer) error {
	// Events can be dropped under load, so logs are also flushed periodically.
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Info("CLI", "--- Detaching ---")
			ctrl.Deactivate()
			printer.flush(ctrl)
			return nil
		case <-ticker.C:
			printer.flush(ctrl)
		case ev := <-ctrl.Events():
			switch ev.Kind {
			case session.EventRunState:
				rs, _ := ctrl.RunState()
				fmt.Fprintf(out, "[servctl] server %s\n", runningLabel(rs.Running))
			case session.EventTunnelState:
				ts, _ := ctrl.TunnelState()
				if ts.Running {
					fmt.Fprintf(out, "[servctl] tunnel online at %s\n", ts.PublicURL)
				} else {
					fmt.Fprintln(out, "[servctl] tunnel offline")
				}
			case session.EventStream:
				printer.flush(ctrl)
			case session.EventError:
				if err := ctrl.LastError(); err != nil {
					logging.Error("CLI", err, "Session error")
				}
			}
		}
	}
}

func runningLabel(running bool) string {
	if running {
		return "online"
	}
	return "offline"
}

// logPrinter writes the lines of the controller's log buffer that were not
// printed yet, starting over whenever a new stream session begins.
type logPrinter struct {
	out      io.Writer
	streamID string
	printed  int
}

func (p *logPrinter) flush(ctrl *session.Controller) {
	id := ctrl.StreamID()
	if id != p.streamID {
		p.streamID = id
		p.printed = 0
	}
	lines := ctrl.Logs()
	if len(lines) < p.printed {
		// Lines were evicted by the capacity limit.
		p.printed = 0
	}
	for _, l := range lines[p.printed:] {
		fmt.Fprintln(p.out, l)
	}
	p.printed = len(lines)
}

// runTUIMode executes the interactive terminal UI mode
func runTUIMode(ctx context.Context, config *Config, services *Services) error {
	logging.Info("CLI", "Starting TUI mode...")

	// Switch logging to channel-based system for TUI integration
	logLevel, _ := logging.ParseLevel(services.Settings.Logging.Level)
	if config.Debug {
		logLevel = logging.LevelDebug
	}
	logChan := logging.InitForTUI(logLevel)
	defer logging.CloseTUIChannel()

	if services.Settings.Logging.File != "" {
		if err := logging.SetLogFile(services.Settings.Logging.File); err != nil {
			logging.Warn("TUI-Lifecycle", "%v", err)
		}
	}

	ctrl := services.NewController()
	defer ctrl.Deactivate()

	p := tui.NewProgram(tui.Options{
		Controller:   ctrl,
		ServerID:     config.ServerID,
		QuickActions: services.QuickActions(),
		DebugMode:    config.Debug,
	}, logChan)

	// Run the TUI until user exits
	if _, err := p.Run(); err != nil {
		logging.Error("TUI-Lifecycle", err, "Error running TUI program")
		return err
	}
	logging.Info("TUI-Lifecycle", "TUI exited.")
	return nil
}
