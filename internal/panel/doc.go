// Package panel is the client for the remote game-server panel API.
//
// It covers the REST endpoints the console needs (status, lifecycle
// actions, console commands, the server list and token login) and the
// websocket log stream. Errors returned by the panel are reported as
// *APIError.
package panel
