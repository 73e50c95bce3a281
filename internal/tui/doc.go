// Package tui provides the interactive console dashboard for servctl.
//
// The dashboard is a Bubble Tea program bound to one session.Controller. It
// shows the server and tunnel status, the live console output of the server,
// and lets the operator run lifecycle actions, console commands and quick
// actions from the keyboard.
//
// # Message Flow
//
// The controller owns all session state. The model never mutates it
// directly; it calls controller operations and re-reads state when the
// controller signals a change:
//
//  1. session.Controller emits an Event on its Events() channel
//  2. waitForEvent converts it into a sessionEventMsg
//  3. Update re-reads the controller (run state, logs, controls, last error)
//  4. View renders the refreshed model
//
// Blocking operations (activation, console commands) run as tea.Cmds and
// report back through result messages. Log entries of the application
// itself arrive on the logging channel and are kept in the activity log
// overlay.
//
// # Usage
//
//	ctrl := services.NewController()
//	defer ctrl.Deactivate()
//	p := tui.NewProgram(tui.Options{
//	    Controller:   ctrl,
//	    ServerID:     "survival",
//	    QuickActions: services.QuickActions(),
//	}, logChannel)
//	_, err := p.Run()
package tui
