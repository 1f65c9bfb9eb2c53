// Package services defines the [Backend] interface for content providers and implements it
// for local directories, the SQLite library catalog, and remote mbx instances.
//
// # Backend Interface
//
// Every provider exposes one operation to the navigation core: [Backend.Browse] lists a page
// of a container's children (or the provider root) and reports them through an [Emitter],
// one [Result] per node. The last result of a page has Remaining == 0, or carries an error.
// Browse is always called on its own goroutine and may block; it never touches navigation state.
//
// # Filesystem Implementation
//
// [FSBackend] maps directories to containers and media files to leaves. .strm and .url files
// become leaves whose URL is read from the file.
//
// # Library Implementation
//
// [LibraryBackend] browses the catalog tables maintained by the repositories package.
//
// # Remote Implementation
//
// [RemoteBackend] browses a provider exported by another mbx instance (see the server package).
// Requests are rate limited with [rate.Limiter] and optionally authenticated with OAuth2
// client credentials. Nodes are decoded and emitted one by one as the response streams in.
//
// # Playback
//
// [CommandPlayer] hands a resolved leaf to an external program and does not wait for it.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrNotFound] : container ID unknown to the provider
//   - [shared.ErrAPIRequest] : HTTP request to a remote provider failed
//   - [shared.ErrInvalidArgument] : page or container malformed
package services
