// Package web holds the embedded map client served at the root path.
package web

import "embed"

//go:embed index.html assets
var Content embed.FS
