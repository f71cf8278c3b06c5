// Package objstore reads and writes image objects in buckets. S3 is the
// production store; Memory backs tests and local runs.
package objstore

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
)

// ErrNotFound is returned when a bucket has no object under the key.
var ErrNotFound = errors.New("object not found")

// Object is one stored blob.
type Object struct {
	Bucket      string
	Key         string
	Data        []byte
	ContentType string
}

// Store reads and writes objects.
type Store interface {
	Get(ctx context.Context, bucket, key string) (Object, error)
	Put(ctx context.Context, obj Object) error
}

// Memory is an in-memory Store. It is safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	objects map[string]Object
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{objects: make(map[string]Object)}
}

func memKey(bucket, key string) string {
	return bucket + "/" + key
}

// Get returns a copy of the stored object.
func (m *Memory) Get(ctx context.Context, bucket, key string) (Object, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[memKey(bucket, key)]
	if !ok {
		return Object{}, fmt.Errorf("%s/%s: %w", bucket, key, ErrNotFound)
	}
	obj.Data = slices.Clone(obj.Data)
	return obj, nil
}

// Put stores a copy of obj, replacing any previous object under its key.
func (m *Memory) Put(ctx context.Context, obj Object) error {
	if obj.Bucket == "" || obj.Key == "" {
		return fmt.Errorf("put: bucket and key are required")
	}
	obj.Data = slices.Clone(obj.Data)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[memKey(obj.Bucket, obj.Key)] = obj
	return nil
}

// Keys returns the stored "bucket/key" names, sorted.
func (m *Memory) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.objects))
}
