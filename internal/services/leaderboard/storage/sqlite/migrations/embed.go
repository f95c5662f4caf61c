package migrations

import "embed"

// FS contains embedded SQLite migrations for score storage. Files are
// text/template sources rendered with the target table name.
//
//go:embed *.sql
var FS embed.FS
