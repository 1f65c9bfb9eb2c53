// Package tasks runs browse sessions against provider backends on behalf of the navigation core.
//
// # Sessions
//
// [Manager.Start] begins a [Session] for a source or container and calls the provider's
// [services.Backend.Browse] on its own goroutine. Every result the backend emits is posted back
// as a [Delivery] tagged with the session's token. The navigation goroutine hands each delivery
// to [Manager.Apply], which reports whether the node should reach the render sink.
//
// # Supersession
//
// At most one session is live. Starting another, or calling [Manager.Stop], supersedes it:
// its context is cancelled, but a backend that keeps emitting is tolerated. Those late deliveries
// carry a stale token and Apply drops them. Tokens increase monotonically for the life of the
// Manager, so a delivery is forwarded only if its token equals the live one.
//
// Session states:
//
//	Created -> Streaming -> Completed | Failed | Superseded
//
// # Pagination
//
// A session requests a single page of the configured size. A backend may flag that more
// items exist; the session records it but never requests the next page itself.
//
// # Error Handling
//
//   - [shared.ErrNotBrowsable] : Start was given a leaf, an unknown provider, or a provider without browse
//   - [BrowseFailedError] : the backend reported an error; matches [shared.ErrBrowseFailed]
package tasks
