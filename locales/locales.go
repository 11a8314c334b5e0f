// Package locales embeds the translation catalogs.
package locales

import "embed"

//go:embed active.*.toml
var FS embed.FS
