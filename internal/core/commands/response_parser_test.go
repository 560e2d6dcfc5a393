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

// Package commands_test contains the test suite for the pipeline commands.
// This file tests the story and direct response parsers against the kinds
// of output real generation models produce.
package commands_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/audynce/go-prompt-analysis/internal/core/commands"
	test "github.com/audynce/go-prompt-analysis/internal/testutil"
	"github.com/zeebo/assert"
)

// TestStoryParserSkipsUnusableScenes feeds the canned model response, which
// contains one scene without a description and one without a search query.
// The unusable scene is dropped and the numbering stays contiguous.
func TestStoryParserSkipsUnusableScenes(t *testing.T) {
	parser := commands.NewStoryResponseParser("parse-story-response", "out", 5)

	scenes, err := parser.ParseScenes(test.GetTestStoryResponseText())
	assert.NoError(t, err)
	assert.Equal(t, 3, len(scenes))

	for i, scene := range scenes {
		assert.Equal(t, i+1, scene.SceneNumber)
		assert.True(t, len(scene.SearchQuery) > 0)
	}

	// The scene that arrived without a description gets a placeholder named
	// after its final position.
	assert.Equal(t, "Scene 2", scenes[1].Description)
	assert.Equal(t, "driving upbeat surf rock", scenes[1].SearchQuery)
}

// TestStoryParserCapsSceneCount verifies the configured maximum bounds the
// result even when the model over-delivers.
func TestStoryParserCapsSceneCount(t *testing.T) {
	var sb strings.Builder
	sb.WriteString(`{"scenes": [`)
	for i := 0; i < 9; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, `{"description": "beat %d", "search_query": "query %d"}`, i, i)
	}
	sb.WriteString(`]}`)

	parser := commands.NewStoryResponseParser("parse-story-response", "out", 5)
	scenes, err := parser.ParseScenes(sb.String())
	assert.NoError(t, err)
	assert.Equal(t, 5, len(scenes))
	assert.Equal(t, 5, scenes[4].SceneNumber)
}

// TestStoryParserAcceptsCamelCaseQuery verifies the camelCase field spelling
// some model generations use is treated as equivalent.
func TestStoryParserAcceptsCamelCaseQuery(t *testing.T) {
	text := `{"scenes":[{"description":"Calm start","searchQuery":"soft piano"}]}`

	parser := commands.NewStoryResponseParser("parse-story-response", "out", 5)
	scenes, err := parser.ParseScenes(text)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(scenes))
	assert.Equal(t, 1, scenes[0].SceneNumber)
	assert.Equal(t, "Calm start", scenes[0].Description)
	assert.Equal(t, "soft piano", scenes[0].SearchQuery)
}

// TestStoryParserRejectsEmptyResults covers the empty-list failure cases: no
// scenes array at all, and scenes that are all unusable.
func TestStoryParserRejectsEmptyResults(t *testing.T) {
	parser := commands.NewStoryResponseParser("parse-story-response", "out", 5)

	_, err := parser.ParseScenes(`{"mood": "upbeat"}`)
	assert.Error(t, err)

	_, err = parser.ParseScenes(`{"scenes": [{"description": "no query here"}]}`)
	assert.Error(t, err)

	_, err = parser.ParseScenes(`{"scenes": []}`)
	assert.Error(t, err)
}

// TestStoryParserToleratesWrongTypes verifies wrong-typed fields are treated
// as absent instead of failing the parse.
func TestStoryParserToleratesWrongTypes(t *testing.T) {
	text := `{"scenes": [{"description": 42, "search_query": "lofi beats"}, {"search_query": 7}]}`

	parser := commands.NewStoryResponseParser("parse-story-response", "out", 5)
	scenes, err := parser.ParseScenes(text)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(scenes))
	assert.Equal(t, "Scene 1", scenes[0].Description)
}

// TestDirectParserRecoversFromProse verifies the canned prose-wrapped direct
// response parses into a full result.
func TestDirectParserRecoversFromProse(t *testing.T) {
	parser := commands.NewDirectResponseParser("parse-direct-response", "out")

	result, err := parser.ParseDirect(test.GetTestDirectResponseText())
	assert.NoError(t, err)
	assert.Equal(t, "Rainy Day Reading", result.Theme)
	assert.Equal(t, "chill rainy afternoon acoustic jazz", result.SearchQuery)
}

// TestDirectParserDefaultsTheme verifies a missing theme falls back to the
// generic placeholder while the search query carries the result.
func TestDirectParserDefaultsTheme(t *testing.T) {
	parser := commands.NewDirectResponseParser("parse-direct-response", "out")

	result, err := parser.ParseDirect(`{"search_query": "dark futuristic electronic"}`)
	assert.NoError(t, err)
	assert.Equal(t, "Music playlist", result.Theme)
	assert.Equal(t, "dark futuristic electronic", result.SearchQuery)
}

// TestDirectParserRequiresSearchQuery verifies a response without a search
// query cannot be recovered.
func TestDirectParserRequiresSearchQuery(t *testing.T) {
	parser := commands.NewDirectResponseParser("parse-direct-response", "out")

	_, err := parser.ParseDirect(`{"theme": "Cyberpunk Chase"}`)
	assert.Error(t, err)
}
