// Package authflow drives the authentication flows of a browser-based
// back office against a remote auth service: password login with an
// optional one-time-code challenge, signup, and the forgot-password /
// reset-password pair with a resend cooldown.
//
// The package is the host-agnostic core. It owns the flow state machine
// and talks only to injected collaborators: a [Service] for all network
// interaction, a [SessionStore] for session persistence, a [Notifier]
// for user-facing notices, and a [Navigator] for route changes. A
// [Controller] is built through [Builder.Build] and is safe for
// concurrent use after construction, though hosts are expected to drive
// it from a single UI event loop.
//
// # Architecture boundaries
//
// authflow is the public surface. It exposes [Controller], [Builder],
// [Config], the per-flow field records, and the collaborator
// interfaces. Reference collaborator implementations live in the
// session and service subpackages and import this package, never the
// other way around.
//
// # What this package must NOT do
//
//   - Perform navigation itself; it only signals the [Navigator].
//   - Retain credentials beyond the duration of a submit call.
//   - Queue or cancel in-flight remote calls. While a submit is in
//     flight every further submit fails fast with [ErrSubmitInFlight].
package authflow
