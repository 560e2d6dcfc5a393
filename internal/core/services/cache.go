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

// Package services contains the business logic above the command chains.
// This file implements the result cache: a content-addressed memo of
// analysis results keyed by a fingerprint of the request inputs. The cache
// is best-effort throughout; an unreachable store degrades every lookup to
// a miss and every write to a no-op, never the request itself.
package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/audynce/go-prompt-analysis/internal/core/model"
)

// fingerprintSeparator keeps the prompt, genre, and artist sections of the
// fingerprint input from running together, so reshuffling content between
// fields cannot produce a colliding key.
const fingerprintSeparator = "\x1f"

// Fingerprint derives the cache key for a request from the fields that
// affect its result. It is a pure function: identical prompt, genres, and
// artists always produce the same key.
func Fingerprint(prompt string, selectedGenres []string, topArtists []string) string {
	h := sha256.New()
	h.Write([]byte(prompt))
	h.Write([]byte(fingerprintSeparator))
	h.Write([]byte(strings.Join(selectedGenres, ",")))
	h.Write([]byte(fingerprintSeparator))
	h.Write([]byte(strings.Join(topArtists, ",")))
	return hex.EncodeToString(h.Sum(nil))
}

// CacheStore is the persistence boundary of the cache. Implementations
// provide per-key atomicity for Upsert; the service layers no locking on
// top.
type CacheStore interface {
	// FindOne returns the entry for a fingerprint, or (nil, nil) when no
	// entry exists.
	FindOne(ctx context.Context, fingerprint string) (*model.CacheEntry, error)
	// Upsert writes the entry, replacing any previous entry with the same
	// fingerprint.
	Upsert(ctx context.Context, entry *model.CacheEntry) error
}

// MongoCacheStore keeps cache entries in a MongoDB collection with the
// fingerprint as the document id.
type MongoCacheStore struct {
	collection *mongo.Collection
}

func NewMongoCacheStore(client *mongo.Client, database string, collection string) *MongoCacheStore {
	return &MongoCacheStore{collection: client.Database(database).Collection(collection)}
}

func (s *MongoCacheStore) FindOne(ctx context.Context, fingerprint string) (*model.CacheEntry, error) {
	var entry model.CacheEntry
	err := s.collection.FindOne(ctx, bson.M{"_id": fingerprint}).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache lookup failed: %w", err)
	}
	return &entry, nil
}

func (s *MongoCacheStore) Upsert(ctx context.Context, entry *model.CacheEntry) error {
	opts := options.Replace().SetUpsert(true)
	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": entry.Fingerprint}, entry, opts)
	if err != nil {
		return fmt.Errorf("cache upsert failed: %w", err)
	}
	return nil
}

// CacheService wraps a CacheStore with best-effort semantics and hit/miss
// accounting. A nil store is a valid configuration in which every Get
// misses and every Put is a no-op.
type CacheService struct {
	store       CacheStore
	hitCounter  metric.Int64Counter
	missCounter metric.Int64Counter
}

func NewCacheService(store CacheStore) *CacheService {
	meter := otel.Meter("github.com/audynce/go-prompt-analysis")
	hitCounter, err := meter.Int64Counter("analysis.cache.counter.hit")
	if err != nil {
		log.Printf("error creating cache hit counter: %v\n", err)
	}
	missCounter, err := meter.Int64Counter("analysis.cache.counter.miss")
	if err != nil {
		log.Printf("error creating cache miss counter: %v\n", err)
	}
	return &CacheService{
		store:       store,
		hitCounter:  hitCounter,
		missCounter: missCounter,
	}
}

// Get returns the cached result for the fingerprint, or nil on a miss.
// Store failures are logged and reported as misses.
func (c *CacheService) Get(ctx context.Context, fingerprint string) *model.AnalysisResult {
	if c.store == nil {
		c.missCounter.Add(ctx, 1)
		return nil
	}
	entry, err := c.store.FindOne(ctx, fingerprint)
	if err != nil {
		log.Printf("cache read unavailable, treating as miss: %v\n", err)
		c.missCounter.Add(ctx, 1)
		return nil
	}
	if entry == nil {
		c.missCounter.Add(ctx, 1)
		return nil
	}
	c.hitCounter.Add(ctx, 1)
	return &entry.Result
}

// Put stores the result under the fingerprint. Store failures are logged
// and swallowed.
func (c *CacheService) Put(ctx context.Context, fingerprint string, result *model.AnalysisResult) {
	if c.store == nil {
		return
	}
	entry := &model.CacheEntry{
		Fingerprint: fingerprint,
		Result:      *result,
		CachedAt:    time.Now().UTC(),
	}
	if err := c.store.Upsert(ctx, entry); err != nil {
		log.Printf("cache write skipped: %v\n", err)
	}
}

// GetOrCompute returns the cached result for the request's fingerprint, or
// runs compute and stores its output. compute is never skipped for any
// reason other than a cache hit.
func (c *CacheService) GetOrCompute(
	ctx context.Context,
	request *model.AnalysisRequest,
	compute func(ctx context.Context, fingerprint string) *model.AnalysisResult,
) *model.AnalysisResult {
	fingerprint := Fingerprint(request.Prompt, request.SelectedGenres, request.TopArtists)
	if cached := c.Get(ctx, fingerprint); cached != nil {
		return cached
	}
	result := compute(ctx, fingerprint)
	c.Put(ctx, fingerprint, result)
	return result
}
