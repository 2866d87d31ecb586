package query

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Key identifies a cached query result. Parts are compared by their JSON
// encoding, so maps and structs with the same content produce the same key.
type Key []any

// NewKey builds a key for an endpoint in the same shape the generated API
// bindings use: method, path and optional request parameters.
func NewKey(method, path string, params ...any) Key {
	k := Key{strings.ToLower(method), path}
	return append(k, params...)
}

func (k Key) String() string {
	return strings.Join(k.parts(), "/")
}

func (k Key) hash() string {
	return "[" + strings.Join(k.parts(), ",") + "]"
}

func (k Key) parts() []string {
	out := make([]string, len(k))
	for i, p := range k {
		out[i] = encodePart(p)
	}
	return out
}

// HasPrefix reports whether every part of prefix matches the leading parts
// of k. An empty prefix matches every key.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i := range prefix {
		if encodePart(k[i]) != encodePart(prefix[i]) {
			return false
		}
	}
	return true
}

func encodePart(p any) string {
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Sprintf("%#v", p)
	}
	return string(b)
}
