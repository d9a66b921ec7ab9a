// Package cli provides the interactive fleet console.
//
// It wires configuration, the local credential store, the API client and the
// session manager into a REPL. On start the session resumes from the stored
// credential; a background watcher probes the backend and shows online or
// offline in the prompt.
//
// Every command belongs to a screen. Before a command runs, the route guard
// checks the session: protected screens wait while the session is settling
// and send the user to sign-in when there is no session.
//
// The REPL is started with App.Run, which blocks until the user exits.
package cli
