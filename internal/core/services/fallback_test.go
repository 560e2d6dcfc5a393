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
// This file tests the fallback generator, which must stay total and
// deterministic for any input.
package services_test

import (
	"strings"
	"testing"

	"github.com/audynce/go-prompt-analysis/internal/core/services"
	"github.com/zeebo/assert"
)

// TestFallbackStoryWithEmptyInputs verifies the degenerate case: no genres,
// no artists. The result must still be structurally valid.
func TestFallbackStoryWithEmptyInputs(t *testing.T) {
	fallback := services.NewFallbackGenerator()

	scenes := fallback.FallbackStory(nil, nil)
	assert.True(t, len(scenes) > 0)

	for i, scene := range scenes {
		assert.Equal(t, i+1, scene.SceneNumber)
		assert.True(t, len(scene.Description) > 0)
		assert.True(t, len(scene.SearchQuery) > 0)
		// With no genre signal the queries anchor on the neutral default.
		assert.True(t, strings.Contains(scene.SearchQuery, "pop"))
	}
}

// TestFallbackStoryUsesGenres verifies the caller's genres flow into every
// scene query.
func TestFallbackStoryUsesGenres(t *testing.T) {
	fallback := services.NewFallbackGenerator()

	scenes := fallback.FallbackStory([]string{"jazz", "soul"}, []string{"Nina Simone"})
	for _, scene := range scenes {
		assert.True(t, strings.Contains(scene.SearchQuery, "jazz soul"))
	}
}

// TestFallbackStoryIsDeterministic verifies identical inputs give identical
// output, which the cache depends on.
func TestFallbackStoryIsDeterministic(t *testing.T) {
	fallback := services.NewFallbackGenerator()

	first := fallback.FallbackStory([]string{"ambient"}, nil)
	second := fallback.FallbackStory([]string{"ambient"}, nil)
	assert.Equal(t, len(first), len(second))
	for i := range first {
		assert.DeepEqual(t, first[i], second[i])
	}
}

// TestFallbackDirectTruncatesTheme verifies the theme is a bounded prefix of
// the prompt.
func TestFallbackDirectTruncatesTheme(t *testing.T) {
	fallback := services.NewFallbackGenerator()
	longPrompt := strings.Repeat("melancholy winter evenings ", 5)

	result := fallback.FallbackDirect(longPrompt, nil, nil)
	assert.Equal(t, 50, len([]rune(result.Theme)))
	assert.True(t, strings.HasPrefix(strings.TrimSpace(longPrompt), result.Theme))
	assert.True(t, len(result.SearchQuery) > 0)
}

// TestFallbackDirectWithEmptyPrompt verifies the empty-string degenerate
// case still produces a non-empty result.
func TestFallbackDirectWithEmptyPrompt(t *testing.T) {
	fallback := services.NewFallbackGenerator()

	result := fallback.FallbackDirect("", nil, nil)
	assert.Equal(t, "General playlist", result.Theme)
	assert.True(t, len(result.SearchQuery) > 0)
}

// TestFallbackDirectCombinesPromptAndGenres verifies the search query
// carries both signals.
func TestFallbackDirectCombinesPromptAndGenres(t *testing.T) {
	fallback := services.NewFallbackGenerator()

	result := fallback.FallbackDirect("songs for a rooftop party", []string{"afrobeats"}, nil)
	assert.Equal(t, "songs for a rooftop party", result.Theme)
	assert.Equal(t, "songs for a rooftop party afrobeats", result.SearchQuery)
}
