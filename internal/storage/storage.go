// Package storage pushes image objects to a public-read object store.
package storage

import (
	"context"
	"io"
	"net/url"
	"strings"
)

// ACLPublicRead marks objects anyone can fetch by URL.
const ACLPublicRead = "public-read"

// ObjectStore stores objects under caller-chosen keys. Put makes a single
// attempt; overwriting an existing key is allowed.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string, size int64) error
	URL(key string) string
}

// objectURL joins base and key, escaping the key as a path. A base written as
// a format string ("https://host/%s") is accepted and the verb dropped.
func objectURL(base, key string) string {
	base = strings.TrimRight(strings.TrimSuffix(base, "%s"), "/")
	u, err := url.Parse(base)
	if err != nil {
		return base + "/" + key
	}
	u.Path = u.Path + "/" + key
	u.RawPath = ""
	return u.String()
}
