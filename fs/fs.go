// Package appfs embeds static application assets.
package appfs

import "embed"

//go:embed migrations/*.sql
var FS embed.FS
