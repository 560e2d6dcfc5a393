// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package services_test contains the test suite for the services package.
// This file tests the fingerprint function and the cache service's
// best-effort get-or-compute contract, using an in-memory store in place of
// MongoDB.
package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/audynce/go-prompt-analysis/internal/core/model"
	"github.com/audynce/go-prompt-analysis/internal/core/services"
	"github.com/stretchr/testify/require"
)

// memoryStore is an in-process CacheStore used to exercise the cache service
// without a running MongoDB. failing simulates an unreachable store.
type memoryStore struct {
	entries map[string]*model.CacheEntry
	failing bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{entries: make(map[string]*model.CacheEntry)}
}

func (s *memoryStore) FindOne(_ context.Context, fingerprint string) (*model.CacheEntry, error) {
	if s.failing {
		return nil, errors.New("store unreachable")
	}
	entry, ok := s.entries[fingerprint]
	if !ok {
		return nil, nil
	}
	return entry, nil
}

func (s *memoryStore) Upsert(_ context.Context, entry *model.CacheEntry) error {
	if s.failing {
		return errors.New("store unreachable")
	}
	s.entries[entry.Fingerprint] = entry
	return nil
}

func TestFingerprintDeterminism(t *testing.T) {
	genres := []string{"jazz", "soul"}
	artists := []string{"Nina Simone"}

	first := services.Fingerprint("a rainy day", genres, artists)
	second := services.Fingerprint("a rainy day", genres, artists)
	require.Equal(t, first, second)

	// Changing any input field changes the fingerprint.
	require.NotEqual(t, first, services.Fingerprint("a sunny day", genres, artists))
	require.NotEqual(t, first, services.Fingerprint("a rainy day", []string{"jazz"}, artists))
	require.NotEqual(t, first, services.Fingerprint("a rainy day", genres, nil))
}

// TestFingerprintFieldBoundaries verifies content cannot be shuffled across
// fields into a colliding key.
func TestFingerprintFieldBoundaries(t *testing.T) {
	a := services.Fingerprint("prompt", []string{"jazz,soul"}, nil)
	b := services.Fingerprint("prompt", []string{"jazz", "soul"}, nil)
	require.NotEqual(t, a, b)

	c := services.Fingerprint("prompt jazz", nil, nil)
	d := services.Fingerprint("prompt", []string{"jazz"}, nil)
	require.NotEqual(t, c, d)
}

// TestGetOrComputeServesSecondRequestFromCache issues the same request twice
// and verifies the second one never reaches the compute function and returns
// the stored result verbatim.
func TestGetOrComputeServesSecondRequestFromCache(t *testing.T) {
	ctx := context.Background()
	cache := services.NewCacheService(newMemoryStore())
	request := &model.AnalysisRequest{
		Prompt:         "ninety words of story, give or take",
		SelectedGenres: []string{"indie"},
	}

	calls := 0
	compute := func(ctx context.Context, fingerprint string) *model.AnalysisResult {
		calls++
		return &model.AnalysisResult{
			AnalysisID: "ai-test-1",
			Mode:       model.ModeDirect,
			Direct:     &model.DirectResult{Theme: "Test", SearchQuery: "indie test"},
		}
	}

	first := cache.GetOrCompute(ctx, request, compute)
	second := cache.GetOrCompute(ctx, request, compute)

	require.Equal(t, 1, calls)
	require.Equal(t, first.AnalysisID, second.AnalysisID)
	require.Equal(t, first.Direct, second.Direct)
}

// TestUpsertIdempotence writes the same result twice and verifies only the
// stored timestamp moves.
func TestUpsertIdempotence(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	cache := services.NewCacheService(store)

	result := &model.AnalysisResult{
		AnalysisID: "ai-test-2",
		Mode:       model.ModeDirect,
		Direct:     &model.DirectResult{Theme: "Test", SearchQuery: "soft piano"},
	}

	cache.Put(ctx, "fp-1", result)
	firstWrite := store.entries["fp-1"].CachedAt
	time.Sleep(5 * time.Millisecond)
	cache.Put(ctx, "fp-1", result)

	require.Len(t, store.entries, 1)
	require.Equal(t, *result, store.entries["fp-1"].Result)
	require.True(t, store.entries["fp-1"].CachedAt.After(firstWrite))

	cached := cache.Get(ctx, "fp-1")
	require.NotNil(t, cached)
	require.Equal(t, result.AnalysisID, cached.AnalysisID)
}

// TestCacheDegradesWhenStoreUnreachable verifies reads become misses and
// writes become no-ops, never errors.
func TestCacheDegradesWhenStoreUnreachable(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	store.failing = true
	cache := services.NewCacheService(store)

	require.Nil(t, cache.Get(ctx, "fp-2"))
	cache.Put(ctx, "fp-2", &model.AnalysisResult{AnalysisID: "ai-test-3", Mode: model.ModeDirect})

	calls := 0
	result := cache.GetOrCompute(ctx, &model.AnalysisRequest{Prompt: "anything"}, func(ctx context.Context, fingerprint string) *model.AnalysisResult {
		calls++
		return &model.AnalysisResult{AnalysisID: "ai-test-4", Mode: model.ModeDirect}
	})
	require.Equal(t, 1, calls)
	require.Equal(t, "ai-test-4", result.AnalysisID)
}

// TestCacheWithoutStore covers the unconfigured-cache deployment: a nil
// store behaves like a cache that never hits.
func TestCacheWithoutStore(t *testing.T) {
	ctx := context.Background()
	cache := services.NewCacheService(nil)

	require.Nil(t, cache.Get(ctx, "fp-3"))
	cache.Put(ctx, "fp-3", &model.AnalysisResult{AnalysisID: "ai-test-5", Mode: model.ModeDirect})
	require.Nil(t, cache.Get(ctx, "fp-3"))
}
