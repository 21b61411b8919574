// Package storage provides the durable key-value stores that hold the simulator state.
package storage

import "errors"

// ErrCorrupt is returned by OpenFile when the state file exists but cannot be parsed.
// The returned store is still usable and starts empty.
var ErrCorrupt = errors.New("state file is corrupt")

// Store is a string-keyed durable store.
// Set writes every entry of the batch together, overwriting prior values.
type Store interface {
	Get(key string) (string, bool)
	Set(entries map[string]string) error
}
