// Package models defines the navigation data model and the catalog entities for mbx.
//
// The package contains two categories of types:
//
// 1. Navigation values: immutable values passed between providers, the browse session manager and render sinks
//   - [Provider] : A content provider's stable name and [Capability] set
//   - [Node] : Sum type over [Source], [Container] and [Leaf]
//   - [Page] : A bounded (offset, count) browse request
//   - [Playable] : A leaf resolved to a URL and [MediaKind] for playback handoff
//
// 2. Persistent Entities: Database-backed catalog rows used by the library provider
//   - [CatalogContainer] : A browsable grouping inside the catalog
//   - [CatalogItem] : A playable entry inside the catalog
//
// Persistent entities implement the [Model] interface providing ID, timestamps and validation.
// The [Repository] interface defines standard CRUD operations for database access.
package models
