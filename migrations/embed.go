// Package migrations holds the detection history schema.
package migrations

import "embed"

// FS contains the golang-migrate up and down scripts.
//
//go:embed *.sql
var FS embed.FS
