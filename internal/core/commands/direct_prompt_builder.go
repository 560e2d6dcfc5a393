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
// analysis pipeline. This file defines the direct-mode prompt builder.
package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"text/template"

	"github.com/audynce/go-prompt-analysis/internal/core/cor"
	"github.com/audynce/go-prompt-analysis/internal/core/model"
)

// DirectPromptBuilder renders the direct-mode instruction text for short
// requests: a single theme plus one search query.
type DirectPromptBuilder struct {
	cor.BaseCommand
	template *template.Template
}

// NewDirectPromptBuilder constructs the builder from the configured template
// text.
func NewDirectPromptBuilder(name string, templateText string) (*DirectPromptBuilder, error) {
	tmpl, err := template.New(name).Parse(templateText)
	if err != nil {
		return nil, fmt.Errorf("failed to parse direct prompt template: %w", err)
	}
	return &DirectPromptBuilder{
		BaseCommand: *cor.NewBaseCommand(name),
		template:    tmpl,
	}, nil
}

// GenerateParams assembles the substitution map for the prompt template.
func (t *DirectPromptBuilder) GenerateParams(request *model.AnalysisRequest) map[string]interface{} {
	exampleJSON, _ := json.Marshal(model.GetExampleDirectPayload())
	return map[string]interface{}{
		"PROMPT":       request.Prompt,
		"GENRES":       joinOrPlaceholder(request.SelectedGenres, directGenrePlaceholder),
		"TOP_ARTISTS":  joinOrPlaceholder(request.TopArtists, noArtistsPlaceholder),
		"EXAMPLE_JSON": string(exampleJSON),
	}
}

// Execute renders the instruction text and pipes it to the generation step.
func (t *DirectPromptBuilder) Execute(context cor.Context) {
	request := context.Get(t.GetInputParam()).(*model.AnalysisRequest)

	var buffer bytes.Buffer
	if err := t.template.Execute(&buffer, t.GenerateParams(request)); err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("failed to execute direct prompt template: %w", err))
		return
	}

	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(t.GetOutputParam(), buffer.String())
}
