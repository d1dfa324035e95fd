// Package web embeds the browser client: a Leaflet map of rating pins and
// the ranked list, talking to /entries.
package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var static embed.FS

// Handler serves the client's static files, with index.html at "/".
func Handler() http.Handler {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic(err) // the embedded tree always has static/
	}
	return http.FileServer(http.FS(sub))
}
