// Package migrations embeds the SQL schema for the incident log.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
