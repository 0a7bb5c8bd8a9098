// Package migrations embeds the versioned SQL schema files.
package migrations

import "embed"

// FS holds one sub-directory per backend, each with NNN_name.sql files.
//
//go:embed sqlite/*.sql
var FS embed.FS
