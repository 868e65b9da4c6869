package cache

import (
	"context"
	"sync"

	"sc2-coach/internal/domain"
)

// MemoryStore is a Store kept entirely in process memory. It backs
// tests and store-less deployments; records do not survive a restart.
type MemoryStore struct {
	mu         sync.RWMutex
	timeSeries map[string]domain.CachedTimeSeries
	indexes    map[string]domain.CachedReplayIndex
	metadata   map[string]domain.CacheMetadata
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		timeSeries: make(map[string]domain.CachedTimeSeries),
		indexes:    make(map[string]domain.CachedReplayIndex),
		metadata:   make(map[string]domain.CacheMetadata),
	}
}

func (s *MemoryStore) GetTimeSeries(_ context.Context, key string) (*domain.CachedTimeSeries, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.timeSeries[key]
	if !ok {
		return nil, nil
	}
	rec.Data.Points = append([]domain.TimeSeriesPoint(nil), rec.Data.Points...)
	return &rec, nil
}

func (s *MemoryStore) PutTimeSeries(_ context.Context, rec domain.CachedTimeSeries) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.Data.Points = append([]domain.TimeSeriesPoint(nil), rec.Data.Points...)
	s.timeSeries[rec.CacheKey] = rec
	return nil
}

func (s *MemoryStore) GetReplayIndex(_ context.Context, userID string) (*domain.CachedReplayIndex, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.indexes[userID]
	if !ok {
		return nil, nil
	}
	rec.ReplayIDs = append([]string(nil), rec.ReplayIDs...)
	return &rec, nil
}

func (s *MemoryStore) PutReplayIndex(_ context.Context, rec domain.CachedReplayIndex) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.ReplayIDs = append([]string(nil), rec.ReplayIDs...)
	s.indexes[rec.UserID] = rec
	return nil
}

func (s *MemoryStore) GetMetadata(_ context.Context, userID string) (*domain.CacheMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.metadata[userID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (s *MemoryStore) PutMetadata(_ context.Context, rec domain.CacheMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metadata[rec.UserID] = rec
	return nil
}

func (s *MemoryStore) ClearUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, rec := range s.timeSeries {
		if rec.UserID == userID {
			delete(s.timeSeries, key)
		}
	}
	delete(s.indexes, userID)
	delete(s.metadata, userID)
	return nil
}

func (s *MemoryStore) ClearAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.timeSeries = make(map[string]domain.CachedTimeSeries)
	s.indexes = make(map[string]domain.CachedReplayIndex)
	s.metadata = make(map[string]domain.CacheMetadata)
	return nil
}
