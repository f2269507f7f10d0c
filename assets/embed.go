// Package assets bundles files shipped inside the binary.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed sql/*.sql
var sqlFS embed.FS

// Migrations returns the SQL migration scripts, rooted at the sql directory.
func Migrations() fs.FS {
	sub, err := fs.Sub(sqlFS, "sql")
	if err != nil {
		// Only possible if the embed pattern above is changed.
		panic(err)
	}
	return sub
}
