// Package keyring defines the credential backend contract used by
// paramstore-keyring.
//
// A Backend stores, retrieves and deletes a single secret addressed by a
// (service, username) pair. The shape mirrors the OS keyring API exposed by
// github.com/zalando/go-keyring, with a context added to every call because
// remote backends block on network I/O.
//
// # Backends
//
// Two backends ship with this module:
//   - paramstore (package pkg/paramstore): AWS Systems Manager Parameter Store
//   - native (this package): the operating system's secret vault
//
// Backends are created by name through a Registry so that command-line tools
// can select one from configuration.
//
// # Error Handling
//
// A missing credential is always reported as *NotFoundError, which matches
// ErrNotFound with errors.Is. Callers can therefore tell "never stored" apart
// from transport or permission failures without inspecting provider-specific
// error codes.
package keyring
