// Package migrations embeds the SQL schema migrations so binaries need no migrations directory.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
