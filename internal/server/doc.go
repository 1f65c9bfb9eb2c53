// Package server exports registered providers over HTTP.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally, registering "METHOD /path" patterns so
// the mux answers other methods with 405.
//
// # Routes
//
//	GET /providers                                     → []ProviderInfo
//	GET /providers/{name}/browse?container=&offset=&count= → BrowseResponse
//	GET /health                                        → {"status":"ok","providers":n}
//	GET /metrics                                       → Prometheus exposition
//
// The browse response is the wire format the remote backend in package services streams, so one
// instance can browse another. Count is encoded before the nodes.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
