// Package migrations embeds the SQL schema migrations for the relational
// profile store.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
