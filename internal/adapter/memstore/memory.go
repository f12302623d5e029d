package memstore

import (
	"fmt"
	"sync"

	"docstage/internal/domain"
)

type MemoryStore struct {
	mu        sync.RWMutex
	artifacts map[domain.Kind]map[string][]byte
	order     map[domain.Kind][]string
	lastChunk int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		artifacts: make(map[domain.Kind]map[string][]byte),
		order:     make(map[domain.Kind][]string),
	}
}

func (s *MemoryStore) Put(kind domain.Kind, name string, raw []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.artifacts[kind] == nil {
		s.artifacts[kind] = make(map[string][]byte)
	}
	if _, ok := s.artifacts[kind][name]; ok {
		s.removeOrder(kind, name)
	}
	s.artifacts[kind][name] = append([]byte(nil), raw...)
	s.order[kind] = append(s.order[kind], name)
	return nil
}

func (s *MemoryStore) Get(kind domain.Kind, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.artifacts[kind][name]
	if !ok {
		return nil, fmt.Errorf("%w: %s %s", domain.ErrNotFound, kind, name)
	}
	return append([]byte(nil), raw...), nil
}

func (s *MemoryStore) Delete(kind domain.Kind, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.artifacts[kind][name]; !ok {
		return false, nil
	}
	delete(s.artifacts[kind], name)
	s.removeOrder(kind, name)
	return true, nil
}

func (s *MemoryStore) List(kind domain.Kind) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, len(s.order[kind]))
	copy(names, s.order[kind])
	return names, nil
}

func (s *MemoryStore) NextChunkID(n int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	first := s.lastChunk + 1
	s.lastChunk += n
	return first, nil
}

func (s *MemoryStore) Close() error {
	return nil
}

func (s *MemoryStore) removeOrder(kind domain.Kind, name string) {
	names := s.order[kind]
	for i, n := range names {
		if n == name {
			s.order[kind] = append(names[:i:i], names[i+1:]...)
			return
		}
	}
}
