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

// Package model defines the core data structures of the analysis service.
// This file provides factory functions for hardcoded example payloads. The
// examples are marshaled into the prompts as few-shot guidance, which keeps
// the model's output consistent with the exact schema the parsers expect.
package model

// GetExampleStoryPayload creates a sample story payload embedded in the
// story-mode prompt to show the model the expected JSON structure.
func GetExampleStoryPayload() *StoryPayload {
	return &StoryPayload{
		Scenes: []ScenePayload{
			{
				Description: "Dawn breaks over an empty coastal road",
				SearchQuery: "slow ambient hopeful sunrise indie folk",
			},
			{
				Description: "The market swells with color and noise",
				SearchQuery: "chaotic high-energy world music market",
			},
		},
	}
}

// GetExampleDirectPayload creates a sample direct payload embedded in the
// direct-mode prompt.
func GetExampleDirectPayload() *DirectPayload {
	return &DirectPayload{
		Theme:       "Rainy Day Reading",
		SearchQuery: "chill rainy afternoon acoustic jazz",
	}
}
