// Package session implements the live operational session of the console.
//
// A Controller binds one managed server to:
//
//   - two Pollers (server run state and the shared tunnel), the only source
//     of truth for what is running,
//   - at most one StreamSession carrying the server's console output, opened
//     and closed purely as a function of the polled run state,
//   - an ActionGate that lets one lifecycle action per target be in flight,
//   - a CommandDispatcher for console commands and quick actions.
//
// Every asynchronous completion (poll result, dial result, settle timer)
// checks an epoch before mutating state, so nothing leaks past Stop or
// Deactivate.
package session
