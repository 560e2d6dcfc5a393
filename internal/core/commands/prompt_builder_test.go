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
// This file tests the prompt builders that render the configured templates
// into model instructions.
package commands_test

import (
	"context"
	"strings"
	"testing"

	"github.com/audynce/go-prompt-analysis/internal/core/commands"
	"github.com/audynce/go-prompt-analysis/internal/core/cor"
	"github.com/audynce/go-prompt-analysis/internal/core/model"
	test "github.com/audynce/go-prompt-analysis/internal/testutil"
	"github.com/zeebo/assert"
)

func runBuilder(t *testing.T, builder cor.Command, request *model.AnalysisRequest) string {
	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(context.Background())
	chainCtx.Add(cor.CtxIn, request)

	builder.Execute(chainCtx)
	assert.False(t, chainCtx.HasErrors())

	rendered, ok := chainCtx.Get(builder.GetOutputParam()).(string)
	assert.True(t, ok)
	return rendered
}

// TestStoryPromptBuilderRendersRequest verifies the narrative, genres, and
// artists all land in the instruction text, along with the example JSON that
// pins the output schema.
func TestStoryPromptBuilderRendersRequest(t *testing.T) {
	config := test.GetConfig()
	builder, err := commands.NewStoryPromptBuilder("build-story-prompt", config.PromptTemplates.StoryPrompt, config.Analysis.MaxScenes)
	assert.NoError(t, err)

	request := &model.AnalysisRequest{
		Prompt:         "A long road trip that starts at dawn and ends at a night market.",
		SelectedGenres: []string{"indie folk", "surf rock"},
		TopArtists:     []string{"Khruangbin"},
	}
	rendered := runBuilder(t, builder, request)

	assert.True(t, strings.Contains(rendered, request.Prompt))
	assert.True(t, strings.Contains(rendered, "indie folk, surf rock"))
	assert.True(t, strings.Contains(rendered, "Khruangbin"))
	// The schema shown to the model is marshaled from the same types the
	// parser decodes, so the rendered prompt always names the real fields.
	assert.True(t, strings.Contains(rendered, `"search_query"`))
	assert.True(t, strings.Contains(rendered, `"scenes"`))
}

// TestStoryPromptBuilderDefaultsEmptyLists verifies neutral placeholders
// stand in for missing genres and listening history.
func TestStoryPromptBuilderDefaultsEmptyLists(t *testing.T) {
	config := test.GetConfig()
	builder, err := commands.NewStoryPromptBuilder("build-story-prompt", config.PromptTemplates.StoryPrompt, config.Analysis.MaxScenes)
	assert.NoError(t, err)

	rendered := runBuilder(t, builder, &model.AnalysisRequest{Prompt: "A quiet morning by the sea."})

	assert.True(t, strings.Contains(rendered, "various genres"))
	assert.True(t, strings.Contains(rendered, "no listening history available"))
}

// TestDirectPromptBuilderRendersRequest verifies the direct template embeds
// the request and the direct-mode schema.
func TestDirectPromptBuilderRendersRequest(t *testing.T) {
	config := test.GetConfig()
	builder, err := commands.NewDirectPromptBuilder("build-direct-prompt", config.PromptTemplates.DirectPrompt)
	assert.NoError(t, err)

	request := &model.AnalysisRequest{
		Prompt:         "afrobeats for driving",
		SelectedGenres: []string{"afrobeats"},
	}
	rendered := runBuilder(t, builder, request)

	assert.True(t, strings.Contains(rendered, "afrobeats for driving"))
	assert.True(t, strings.Contains(rendered, `"theme"`))
	assert.True(t, strings.Contains(rendered, `"search_query"`))
}

// TestDirectPromptBuilderDefaultsGenres verifies the direct-mode genre
// placeholder differs from the story one, matching the template wording.
func TestDirectPromptBuilderDefaultsGenres(t *testing.T) {
	config := test.GetConfig()
	builder, err := commands.NewDirectPromptBuilder("build-direct-prompt", config.PromptTemplates.DirectPrompt)
	assert.NoError(t, err)

	rendered := runBuilder(t, builder, &model.AnalysisRequest{Prompt: "rainy study session"})
	assert.True(t, strings.Contains(rendered, "any genre"))
}
