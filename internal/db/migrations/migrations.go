// Package migrations embeds the SQL schema migrations applied by goose.
package migrations

import "embed"

// Migrations holds the versioned .sql files.
//
//go:embed *.sql
var Migrations embed.FS
