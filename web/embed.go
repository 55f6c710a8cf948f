package web

import "embed"

// FS holds the browser dashboard: page, styles and the WebSocket client.
//
//go:embed *.html *.css *.js
var FS embed.FS
