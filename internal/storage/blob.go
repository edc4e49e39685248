// Package storage keeps uploaded images and hands back references the catalog can store.
package storage

import (
	"context"
	"io"
	"path"
	"regexp"
	"strings"
	"time"
)

// Upload is a file received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// BlobStore persists uploaded files.
type BlobStore interface {
	// Put stores body under key and returns a stable reference (usually a URL path).
	Put(ctx context.Context, key, contentType string, body io.Reader) (string, error)
	// Delete removes the object behind ref. Unknown refs are not an error.
	Delete(ctx context.Context, ref string) error
}

var unsafeChars = regexp.MustCompile(`[^a-z0-9._-]+`)

// SafeFilename reduces a client supplied filename to a flat, lower case name.
func SafeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.ToLower(path.Base(name))
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return "file"
	}
	return name
}

// ObjectKey builds a unique-enough key such as "products/20260102150405_burger.png".
func ObjectKey(prefix, filename string, now time.Time) string {
	key := now.UTC().Format("20060102150405") + "_" + SafeFilename(filename)
	if prefix == "" {
		return key
	}
	return strings.Trim(prefix, "/") + "/" + key
}
