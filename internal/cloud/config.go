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

// Package cloud defines the data structures for application configuration,
// loaded from TOML files. It centralizes the configurable surface of the
// analysis service: the generation models, the cache store, the analysis
// thresholds, and the prompt templates sent to the models.
package cloud

import "google.golang.org/genai"

// DefaultSafetySettings defines the default content safety thresholds for the
// generation models. The service analyzes user-supplied listening prompts, so
// all categories are left unblocked and filtering is delegated to the caller.
var DefaultSafetySettings = []*genai.SafetySetting{
	{
		Category:  genai.HarmCategoryDangerousContent,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHarassment,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHateSpeech,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategorySexuallyExplicit,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
}

// PromptTemplates holds the text templates used to build the instructions sent
// to the generation model. Both templates embed the output schema verbatim;
// the response parsers expect exactly that schema, so the two halves of the
// contract live in one place.
type PromptTemplates struct {
	StoryPrompt  string `toml:"story"`  // Template for story-mode scene breakdown.
	DirectPrompt string `toml:"direct"` // Template for direct-mode theme extraction.
}

// GenerationModel represents the configuration for a single text-generation
// model, including sampling parameters and the call policy applied by the
// quota-aware wrapper.
type GenerationModel struct {
	Model              string  `toml:"model"`               // The model identifier (e.g. "gemini-2.0-flash").
	SystemInstructions string  `toml:"system_instructions"` // System instructions prepended to every call.
	Temperature        float32 `toml:"temperature"`         // Sampling temperature.
	TopP               float32 `toml:"top_p"`               // Nucleus sampling value.
	MaxTokens          int32   `toml:"max_tokens"`          // Output token budget.
	OutputFormat       string  `toml:"output_format"`       // Response MIME type (e.g. "application/json").
	RateLimit          int     `toml:"rate_limit"`          // Requests per second allowed through the wrapper.
	TimeoutInSeconds   int     `toml:"timeout_in_seconds"`  // Per-call deadline; generation can be slow to cold-start.
}

// CacheStore represents the configuration for the MongoDB-backed analysis
// cache. An empty URI disables caching; the service then computes every
// request from scratch.
type CacheStore struct {
	URI        string `toml:"uri"`        // Mongo connection string. Empty disables the cache.
	Database   string `toml:"database"`   // Database holding the cache collection.
	Collection string `toml:"collection"` // Collection of cached analyses.
}

// Analysis holds the thresholds and bounds of the analysis pipeline itself.
type Analysis struct {
	StoryThreshold  int `toml:"story_threshold"`   // Default word-count cutoff between DIRECT and STORY mode.
	MaxScenes       int `toml:"max_scenes"`        // Upper bound on scenes in a story result.
	PromptMinLength int `toml:"prompt_min_length"` // Minimum accepted prompt length in characters.
	PromptMaxLength int `toml:"prompt_max_length"` // Maximum accepted prompt length in characters.
}

// Config represents the overall configuration for the application, loaded from
// TOML files. It acts as the root container for all other configuration
// structs.
type Config struct {
	Application struct {
		Name            string `toml:"name"`              // The name of the application, used in telemetry.
		GoogleProjectId string `toml:"google_project_id"` // The Google Cloud project ID.
		GoogleLocation  string `toml:"location"`          // The Google Cloud location.
	} `toml:"application"`
	Analysis        Analysis                   `toml:"analysis"`
	CacheStore      CacheStore                 `toml:"cache_store"`
	PromptTemplates PromptTemplates            `toml:"prompt_templates"`
	AgentModels     map[string]GenerationModel `toml:"agent_models"` // Generation models keyed by a logical name (e.g. "creative-flash").
}

// NewConfig creates a new, initialized Config instance. The map fields must be
// non-nil before the TOML decoder populates them.
func NewConfig() *Config {
	return &Config{
		AgentModels: make(map[string]GenerationModel),
	}
}
