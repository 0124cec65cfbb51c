package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// DocumentStore is an opaque keyed document store: whole-value reads
// and writes on slash-separated paths, fresh-key allocation under a
// collection path, and value subscriptions that deliver the full
// current value immediately and on every subsequent change.
type DocumentStore interface {
	// Create allocates a fresh unique child key under path without
	// writing anything.
	Create(ctx context.Context, path string) (string, error)
	// Read unmarshals the value at path into v. Returns ErrNotFound
	// when the path holds no value.
	Read(ctx context.Context, path string, v interface{}) error
	// Write overwrites the whole value at path. No merge.
	Write(ctx context.Context, path string, v interface{}) error
	// Subscribe registers a value listener at path. ctx scopes
	// establishment only; delivery continues until the returned
	// cancel function is called.
	Subscribe(ctx context.Context, path string, onValue func(json.RawMessage), onError func(error)) (func(), error)
	// ServerTimestamp returns a placeholder the store resolves to the
	// server clock at write time.
	ServerTimestamp() interface{}
}

type ErrNotFound struct {
	Path string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("not found: %s", e.Path)
}

func IsNotFound(err error) bool {
	_, ok := err.(*ErrNotFound)
	return ok
}
