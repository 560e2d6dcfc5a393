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

// Package commands provides the concrete command implementations of the
// analysis pipeline. This file defines the story-mode prompt builder: a pure
// command that renders the configured template with the user's narrative,
// preference signals, and a marshaled few-shot example of the output schema.
package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/audynce/go-prompt-analysis/internal/core/cor"
	"github.com/audynce/go-prompt-analysis/internal/core/model"
)

// Neutral placeholders used when a request carries no preference signals.
// The prompts always name a genre preference so the model has something to
// anchor the search queries on.
const (
	storyGenrePlaceholder  = "various genres"
	directGenrePlaceholder = "any genre"
	noArtistsPlaceholder   = "no listening history available"
)

func joinOrPlaceholder(values []string, placeholder string) string {
	trimmed := make([]string, 0, len(values))
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			trimmed = append(trimmed, s)
		}
	}
	if len(trimmed) == 0 {
		return placeholder
	}
	return strings.Join(trimmed, ", ")
}

// StoryPromptBuilder renders the story-mode instruction text. It has no state
// beyond its parsed template and never fails on user content; a template
// execution error indicates broken configuration and stops the chain.
type StoryPromptBuilder struct {
	cor.BaseCommand
	maxScenes int
	template  *template.Template
}

// NewStoryPromptBuilder constructs the builder from the configured template
// text and scene cap.
func NewStoryPromptBuilder(name string, templateText string, maxScenes int) (*StoryPromptBuilder, error) {
	tmpl, err := template.New(name).Parse(templateText)
	if err != nil {
		return nil, fmt.Errorf("failed to parse story prompt template: %w", err)
	}
	return &StoryPromptBuilder{
		BaseCommand: *cor.NewBaseCommand(name),
		maxScenes:   maxScenes,
		template:    tmpl,
	}, nil
}

// GenerateParams assembles the substitution map for the prompt template. The
// example JSON is marshaled from the same payload types the parser decodes
// into, keeping the schema communicated to the model in lockstep with what
// the parser accepts.
func (t *StoryPromptBuilder) GenerateParams(request *model.AnalysisRequest) map[string]interface{} {
	exampleJSON, _ := json.Marshal(model.GetExampleStoryPayload())
	return map[string]interface{}{
		"NARRATIVE":    request.Prompt,
		"GENRES":       joinOrPlaceholder(request.SelectedGenres, storyGenrePlaceholder),
		"TOP_ARTISTS":  joinOrPlaceholder(request.TopArtists, noArtistsPlaceholder),
		"MAX_SCENES":   t.maxScenes,
		"EXAMPLE_JSON": string(exampleJSON),
	}
}

// Execute renders the instruction text and pipes it to the generation step.
func (t *StoryPromptBuilder) Execute(context cor.Context) {
	request := context.Get(t.GetInputParam()).(*model.AnalysisRequest)

	var buffer bytes.Buffer
	if err := t.template.Execute(&buffer, t.GenerateParams(request)); err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("failed to execute story prompt template: %w", err))
		return
	}

	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(t.GetOutputParam(), buffer.String())
}
