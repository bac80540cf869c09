package helper

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"strings"
	"sync"

	"rumble_backend/internals/helpers/apperr"
)

/*
BlobStore keeps submission page images under opaque labels.
Get needs the etag returned by Put; a mismatching object counts as missing.
*/
type BlobStore interface {
	Get(ctx context.Context, label, etag string) ([]byte, error)
	Put(ctx context.Context, label string, data []byte, contentType string) (etag string, err error)
	Remove(ctx context.Context, label string) error
}

// --------------------------------------------------
// Mock for unit tests
// --------------------------------------------------

type MockBlobStore struct {
	GetFn    func(ctx context.Context, label, etag string) ([]byte, error)
	PutFn    func(ctx context.Context, label string, data []byte, contentType string) (string, error)
	RemoveFn func(ctx context.Context, label string) error
}

func (m *MockBlobStore) Get(ctx context.Context, label, etag string) ([]byte, error) {
	if m.GetFn == nil {
		return nil, errors.New("not implemented")
	}
	return m.GetFn(ctx, label, etag)
}

func (m *MockBlobStore) Put(ctx context.Context, label string, data []byte, contentType string) (string, error) {
	if m.PutFn == nil {
		return "", errors.New("not implemented")
	}
	return m.PutFn(ctx, label, data, contentType)
}

func (m *MockBlobStore) Remove(ctx context.Context, label string) error {
	if m.RemoveFn == nil {
		return errors.New("not implemented")
	}
	return m.RemoveFn(ctx, label)
}

// MemoryBlobStore keeps blobs in a map; etag is the hex md5 of the bytes,
// as OSS computes it for simple uploads. Used by local mode and tests.
type MemoryBlobStore struct {
	mu    sync.RWMutex
	blobs map[string]memBlob
}

type memBlob struct {
	data []byte
	etag string
}

func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{blobs: map[string]memBlob{}}
}

func (s *MemoryBlobStore) Get(_ context.Context, label, etag string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blobs[label]
	if !ok || (etag != "" && b.etag != etag) {
		return nil, apperr.NotFound("artifact %s not found", label)
	}
	return append([]byte(nil), b.data...), nil
}

func (s *MemoryBlobStore) Put(_ context.Context, label string, data []byte, _ string) (string, error) {
	sum := md5.Sum(data)
	etag := strings.ToUpper(hex.EncodeToString(sum[:]))
	s.mu.Lock()
	s.blobs[label] = memBlob{data: append([]byte(nil), data...), etag: etag}
	s.mu.Unlock()
	return etag, nil
}

func (s *MemoryBlobStore) Remove(_ context.Context, label string) error {
	s.mu.Lock()
	delete(s.blobs, label)
	s.mu.Unlock()
	return nil
}
