// Package domain contains the core entities and value objects for feedview.
//
// It has no dependencies on infrastructure (storage, brokers, terminals,
// logging) and holds only the rules the list depends on.
//
// # Entities
//
//   - [Entry]: a synced feed item (id, title, optional link, publish time)
//   - [ResultSet]: an ordered snapshot of entries produced by a [Query]
//   - [SyncState]: Idle, Pending or Active, folded from a [SyncStatus]
//   - [ListView]: the formatted projection handed to a renderer
//
// # Errors
//
// Interaction failures are typed ([MissingLinkError], [InvalidSelectionError],
// [DataSourceUnavailableError]) and each matches a sentinel through errors.Is.
// [KindOf] maps them onto the [ErrorKind] reported to the embedding.
package domain
