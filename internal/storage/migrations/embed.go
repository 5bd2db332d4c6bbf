// Package migrations embeds and applies the database schemas. Files run in
// name order; every statement is idempotent.
package migrations

import "embed"

// PostgresFS holds the record store schema.
//
//go:embed postgres/*.sql
var PostgresFS embed.FS

// ClickhouseFS holds the run statistics schema.
//
//go:embed clickhouse/*.sql
var ClickhouseFS embed.FS
