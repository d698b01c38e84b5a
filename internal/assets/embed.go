// Package assets serves the console's stylesheet and script embedded via go:embed.
// URLs carry a content fingerprint so browsers can cache them for good and still
// pick up a new build.
package assets

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strings"
	"sync"
)

//go:embed static
var staticFS embed.FS

// Prefix is where the file server is mounted.
const Prefix = "/static/"

var (
	fingerprintsOnce sync.Once
	fingerprints     map[string]string
)

// mimeFromExt returns the MIME type for a file extension.
// Falls back to the standard library's MIME database,
// then to "application/octet-stream" if unknown.
func mimeFromExt(ext string) string {
	switch ext {
	case ".js", ".mjs":
		return "application/javascript"
	case ".css":
		return "text/css; charset=utf-8"
	case ".svg":
		return "image/svg+xml"
	default:
		if ct := mime.TypeByExtension(ext); ct != "" {
			return ct
		}
		return "application/octet-stream"
	}
}

// loadFingerprints hashes every embedded file once.
func loadFingerprints() {
	fingerprints = make(map[string]string)
	_ = fs.WalkDir(staticFS, "static", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := staticFS.ReadFile(p)
		if err != nil {
			return err
		}
		sum := sha256.Sum256(data)
		fingerprints[strings.TrimPrefix(p, "static/")] = hex.EncodeToString(sum[:])[:12]
		return nil
	})
}

// URL returns the public URL of an embedded file with its fingerprint as the v parameter.
// Unknown names are returned unversioned.
func URL(name string) string {
	fingerprintsOnce.Do(loadFingerprints)
	name = strings.TrimPrefix(name, "/")
	if v, ok := fingerprints[name]; ok {
		return Prefix + name + "?v=" + v
	}
	return Prefix + name
}

// FileServer returns an http.Handler that serves the embedded static files.
// Versioned URLs get immutable cache headers, the rest get no-cache.
// The handler expects paths relative to the static root (strip Prefix before calling).
func FileServer() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic("assets: failed to create sub filesystem: " + err.Error())
	}
	fileServer := http.FileServer(http.FS(sub))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ext := strings.ToLower(path.Ext(r.URL.Path))
		if ext != "" {
			w.Header().Set("Content-Type", mimeFromExt(ext))
		}

		if r.URL.Query().Get("v") != "" {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		} else {
			w.Header().Set("Cache-Control", "no-cache")
		}

		fileServer.ServeHTTP(w, r)
	})
}
