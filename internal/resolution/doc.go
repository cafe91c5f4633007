// Package resolution persists per-record match state in SQLite and exposes
// the operations a resolution run needs.
//
// The Store manages database connections, schema migrations, idempotent
// initialization from the catalog, cursor-based pending pagination, outcome
// persistence, and summary queries. A partial unique index on matched ASINs
// enforces that an external identifier is claimed by at most one resolved
// record; violations surface as ErrASINConflict so the runner can downgrade
// the outcome instead of overwriting an existing assignment.
//
// Treat this package as the single source of truth for resolution semantics;
// when you add statuses or match methods, update the migration set.
package resolution
