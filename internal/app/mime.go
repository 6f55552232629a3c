package app

import (
	"log"
	"mime"
)

// Minimal containers can lack /etc/mime.types, which would make the static
// file server hand out the stylesheet as text/plain.
func init() {
	ensureMimeType(".css", "text/css; charset=utf-8")
}

func ensureMimeType(ext, typ string) {
	if mime.TypeByExtension(ext) != "" {
		return
	}
	if err := mime.AddExtensionType(ext, typ); err != nil {
		log.Printf("app: failed to register MIME type for %s: %v", ext, err)
	}
}
