// Package core provides the business logic for contact management.
//
// This package holds all domain logic independent of any UI or transport
// layer. It is used by the HTTP server, the contactctl CLI and tests without
// modification.
//
// # Architecture
//
//   - Service: the entry point for every operation (import, list, CRUD, stats).
//   - Store: the storage collaborator, implemented by internal/store for
//     PostgreSQL and SQLite.
//   - NameResolver: turns free-text tag and meeting-place names into ids.
//   - CompileFilter: turns a FilterSpec into an owner-scoped SQL query.
//
// # Bulk Import
//
// [Service.ImportContacts] accepts up to [MaxImportBatch] drafts:
//
//  1. The batch is checked by [ValidateBatch]; violations return a *PreconditionError
//  2. One resolver per entity kind preloads the owner's names
//  3. Each draft is validated, resolved and created on its own
//  4. The [ImportResult] counts successes and failures and lists one message per failure
//
// Name matching is case-insensitive and the first casing seen wins. Two
// concurrent batches may race to create the same name; the storage unique
// index decides and the loser records a per-item failure.
//
// # Listing
//
// [Service.ListContacts] compiles a [FilterSpec] with [CompileFilter].
// Search is a case-insensitive substring match over name, occupation and
// where-met; tag filtering matches contacts carrying any of the given tags.
// Without SortBy, contacts are ordered newest first.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError] and
// to HTTP statuses with [StatusFor]. Codes are grouped as IMP, VAL, DB, REQ
// and RATE; ERR000 is the fallback.
package core
