// Package appfs embeds the static assets shipped with the binaries: SQL migrations, templates and assets.
package appfs

import "embed"

//go:embed assets migrations templates templates/email/_*
var FS embed.FS
