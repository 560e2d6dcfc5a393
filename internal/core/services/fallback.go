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

// Package services holds the orchestration layer that sits above the command
// chains: the analysis entry point, the deterministic fallback generator, and
// the result cache. This file implements the fallback generator, the path
// taken whenever the generation model or the parser cannot produce a usable
// result. It is pure and deterministic so degraded provider conditions still
// yield stable, fully formed results.
package services

import (
	"strings"

	"github.com/audynce/go-prompt-analysis/internal/core/model"
)

const (
	fallbackDefaultGenre = "pop"
	fallbackDefaultTheme = "General playlist"
	directThemeMaxRunes  = 50
)

// fallbackArchetypes are the fixed narrative beats a fallback story follows.
// Each search query is the archetype's mood adjective joined with the
// caller's genres.
var fallbackArchetypes = []struct {
	description string
	mood        string
}{
	{description: "Opening - Setting the mood", mood: "calm"},
	{description: "Development - Building energy", mood: "upbeat"},
	{description: "Climax - Peak intensity", mood: "intense"},
	{description: "Resolution - Bringing it home", mood: "nostalgic"},
}

// FallbackGenerator produces rule-based analysis results from the request
// inputs alone. Every method is total.
type FallbackGenerator struct {
}

func NewFallbackGenerator() *FallbackGenerator {
	return &FallbackGenerator{}
}

// joinedGenres renders the genre list as a space-joined query fragment,
// substituting a neutral genre when the caller supplied none.
func joinedGenres(genres []string) string {
	kept := make([]string, 0, len(genres))
	for _, genre := range genres {
		genre = strings.TrimSpace(genre)
		if genre != "" {
			kept = append(kept, genre)
		}
	}
	if len(kept) == 0 {
		return fallbackDefaultGenre
	}
	return strings.Join(kept, " ")
}

// FallbackStory returns the fixed archetype scene sequence with search
// queries derived from the caller's genres.
func (f *FallbackGenerator) FallbackStory(genres []string, topArtists []string) []*model.SceneResult {
	genreFragment := joinedGenres(genres)
	scenes := make([]*model.SceneResult, 0, len(fallbackArchetypes))
	for i, archetype := range fallbackArchetypes {
		scenes = append(scenes, &model.SceneResult{
			SceneNumber: i + 1,
			Description: archetype.description,
			SearchQuery: archetype.mood + " " + genreFragment,
		})
	}
	return scenes
}

// FallbackDirect returns a theme truncated from the prompt and a search
// query built from the prompt plus the caller's genres.
func (f *FallbackGenerator) FallbackDirect(prompt string, genres []string, topArtists []string) *model.DirectResult {
	prompt = strings.TrimSpace(prompt)

	theme := fallbackDefaultTheme
	if prompt != "" {
		runes := []rune(prompt)
		if len(runes) > directThemeMaxRunes {
			runes = runes[:directThemeMaxRunes]
		}
		theme = string(runes)
	}

	parts := make([]string, 0, 2)
	if prompt != "" {
		parts = append(parts, prompt)
	}
	parts = append(parts, joinedGenres(genres))

	return &model.DirectResult{
		Theme:       theme,
		SearchQuery: strings.Join(parts, " "),
	}
}
