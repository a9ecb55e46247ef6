// Package session ships the SessionStore implementations consumed by
// the authflow controller: a signed-cookie codec, a Redis-backed store
// for server-assisted persistence, and an in-memory store for tests
// and demos. Route guards outside the core read sessions back through
// the same types.
package session
