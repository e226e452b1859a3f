// Package migrations embeds the schema migrations for the SQL backends.
package migrations

import "embed"

// FS holds one subdirectory per dialect, in golang-migrate file naming.
//
//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
