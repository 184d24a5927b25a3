// Package migrations embeds the versioned schema for each supported database.
package migrations

import "embed"

// FS holds one directory of golang-migrate files per driver ("postgres", "sqlite").
//
//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS
