// Package kv provides the durable key-value registers the preset store
// persists into. Every Put replaces the whole value for a key in one atomic
// step; there is no append or partial update.
package kv

import "errors"

var ErrNotFound = errors.New("key not found")

// Store is a last-write-wins key-value register.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(key string) ([]byte, error)
	// Put atomically replaces the value stored under key.
	Put(key string, data []byte) error
}
