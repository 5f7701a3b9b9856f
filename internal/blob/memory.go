package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

type memoryObject struct {
	data []byte
	info Info
}

// Memory is an in-process store for tests and throwaway deployments.
type Memory struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
}

// NewMemory returns an empty memory store.
func NewMemory() *Memory {
	return &Memory{objects: make(map[string]memoryObject)}
}

func (m *Memory) Driver() Driver { return DriverMemory }

func (m *Memory) Put(_ context.Context, key string, r io.Reader, contentType string) (Info, error) {
	k, err := CleanKey(key)
	if err != nil {
		return Info{}, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return Info{}, fmt.Errorf("reading blob: %w", err)
	}
	info := Info{Key: k, Size: int64(len(data)), ContentType: contentType, LastModified: time.Now().UTC()}

	m.mu.Lock()
	m.objects[k] = memoryObject{data: data, info: info}
	m.mu.Unlock()
	return info, nil
}

func (m *Memory) Get(ctx context.Context, key string) (Info, io.ReadCloser, error) {
	k, err := CleanKey(key)
	if err != nil {
		return Info{}, nil, err
	}
	m.mu.RLock()
	obj, ok := m.objects[k]
	m.mu.RUnlock()
	if !ok {
		return Info{}, nil, fmt.Errorf("%s: %w", k, ErrNotFound)
	}
	return obj.info, io.NopCloser(bytes.NewReader(obj.data)), nil
}

func (m *Memory) Head(ctx context.Context, key string) (Info, error) {
	info, rc, err := m.Get(ctx, key)
	if err != nil {
		return Info{}, err
	}
	rc.Close()
	return info, nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	k, err := CleanKey(key)
	if err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.objects, k)
	m.mu.Unlock()
	return nil
}
