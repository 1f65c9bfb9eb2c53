// Package repositories implements SQLite persistence for the library catalog.
//
// The catalog is a tree of containers with playable items hanging off them. Items and containers with
// an empty parent live at the library root. All repositories support soft deletes via deleted_at
// timestamps and exclude deleted records from queries by default.
//
// Key Implementations:
//   - [ContainerRepository] : Catalog containers with parent/child lookups and paging
//   - [ItemRepository] : Catalog items with per-container paging
//   - [Importer] : Walks a directory and mirrors it into the catalog
//
// Sequence numbers provide stable ordering independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
