package views

import "embed"

// Assets holds the stylesheet served under /static.
//
//go:embed static
var Assets embed.FS
