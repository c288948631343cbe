package httpapi

import (
	"embed"
	"io/fs"
	"net/http"
)

// The form UI is compiled into the binary so a deploy is one file.
//
//go:embed static/*
var uiAssets embed.FS

func newStaticHandler() http.Handler {
	ui, err := fs.Sub(uiAssets, "static")
	if err != nil {
		return http.NotFoundHandler()
	}
	return http.FileServer(http.FS(ui))
}
