// Package metrics provides Prometheus instrumentation for mbx.
//
// All metrics are prefixed with "mbx_" and registered on the default registry,
// which the server package exposes at /metrics.
//
// # Browse Metrics
//
// Track browse sessions started by the navigation core:
//   - BrowseSessionsStarted: Counter of sessions by provider
//   - BrowseSessionsTotal: Counter of finished sessions by provider and outcome
//   - BrowseSessionDuration: Histogram of time from start to terminal result
//   - BrowseDeliveriesTotal: Counter of results by disposition (forwarded, dropped)
//
// # HTTP Metrics
//
// Track the export server:
//   - HTTPRequestsTotal: Counter of requests by route and status
//   - HTTPRequestDuration: Histogram of request duration by route
package metrics
