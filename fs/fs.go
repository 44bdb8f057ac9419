package appfs

import "embed"

// FS holds the database migrations and the HTML templates.
//
//go:embed migrations/*.sql templates/*.gohtml
var FS embed.FS
