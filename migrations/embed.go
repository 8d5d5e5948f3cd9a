// Package migrations embeds the goose SQL migrations for the Postgres
// key-value backend.
package migrations

import "embed"

// FS holds all *.sql migration files embedded at compile time.
// app.OpenStorage and the integration tests hand it to goose.NewProvider.
//
//go:embed *.sql
var FS embed.FS
