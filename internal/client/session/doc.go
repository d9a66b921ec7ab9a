// Package session owns the console's credential lifecycle.
//
// A Manager moves through three states. It starts Booting, reading the
// stored credential; from there it settles in Unauthenticated or
// Authenticated. Only its own actions change its state, and every change is
// broadcast to subscribers.
//
// Actions never return errors. Each reports a bool and, where the user
// should hear about it, a notification. Each takes a context; a response that
// arrives after the context ended, or after a newer action superseded it, is
// discarded and the action reports false.
//
// The credential held by the Manager is what the API transport attaches to
// outgoing requests (see Manager.Token). Local expiry checks are advisory:
// whatever the server rejects is rejected.
package session
