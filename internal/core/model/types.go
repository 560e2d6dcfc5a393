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

// Package model defines the core data structures of the analysis service:
// the incoming request, the typed analysis results, and the cache document.
// The JSON field names form the wire contract with the playlist frontend; the
// BSON tags shape the cache documents stored in Mongo.
package model

import "time"

// Mode selects the output shape of an analysis.
type Mode string

const (
	ModeStory  Mode = "STORY"  // Multi-scene breakdown of a narrative prompt.
	ModeDirect Mode = "DIRECT" // Single theme and search query for a short request.
)

// AnalysisRequest is the immutable input of one analysis. StoryThreshold is
// the word-count cutoff for story mode; zero means "use the configured
// default".
type AnalysisRequest struct {
	Prompt         string   `json:"prompt"`
	SelectedGenres []string `json:"selected_genres"`
	TopArtists     []string `json:"top_artists"`
	StoryThreshold int      `json:"story_threshold"`
}

// SceneResult is one scene of a story-mode analysis. SceneNumber values are
// contiguous starting at 1 and ordering is significant.
type SceneResult struct {
	SceneNumber int    `json:"scene_number" bson:"scene_number"`
	Description string `json:"description" bson:"description"`
	SearchQuery string `json:"search_query" bson:"search_query"`
}

// DirectResult is the single result of a direct-mode analysis.
type DirectResult struct {
	Theme       string `json:"theme" bson:"theme"`
	SearchQuery string `json:"search_query" bson:"search_query"`
}

// AnalysisResult is the tagged union returned to the caller. Exactly one of
// Scenes and Direct is populated, selected by Mode. AnalysisID is an opaque
// identifier used only for traceability, never for cache lookup.
type AnalysisResult struct {
	AnalysisID string         `json:"analysis_id" bson:"analysis_id"`
	Mode       Mode           `json:"mode" bson:"mode"`
	Scenes     []*SceneResult `json:"scenes,omitempty" bson:"scenes,omitempty"`
	Direct     *DirectResult  `json:"direct_analysis,omitempty" bson:"direct_analysis,omitempty"`
}

// CacheEntry is the cache document for one fingerprint. The fingerprint is
// the Mongo document id, which gives the upsert its per-key atomicity.
type CacheEntry struct {
	Fingerprint string         `bson:"_id" json:"fingerprint"`
	Result      AnalysisResult `bson:"result" json:"result"`
	CachedAt    time.Time      `bson:"cached_at" json:"cached_at"`
}

// StoryPayload and its element type describe the JSON object the generation
// model is instructed to emit in story mode. The prompt builders marshal
// example instances of these, so prompt schema and parser expectations cannot
// drift apart.
type StoryPayload struct {
	Scenes []ScenePayload `json:"scenes"`
}

// ScenePayload is one scene as emitted by the generation model, before scene
// numbers are assigned.
type ScenePayload struct {
	Description string `json:"description"`
	SearchQuery string `json:"search_query"`
}

// DirectPayload describes the JSON object the generation model is instructed
// to emit in direct mode.
type DirectPayload struct {
	Theme       string `json:"theme"`
	SearchQuery string `json:"search_query"`
}
