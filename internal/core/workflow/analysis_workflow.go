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

// Package workflow defines the high-level orchestrations that combine
// individual commands into coherent analysis pipelines.
package workflow

import (
	"github.com/audynce/go-prompt-analysis/internal/cloud"
	"github.com/audynce/go-prompt-analysis/internal/core/commands"
	"github.com/audynce/go-prompt-analysis/internal/core/cor"
)

// Context keys under which the workflows publish their parsed results.
const (
	StoryOutputParamName  = "__story_output__"
	DirectOutputParamName = "__direct_output__"
)

// StoryAnalysisWorkflow turns a narrative prompt into an ordered list of
// scene results. It is structured as a Chain of Responsibility that renders
// the story prompt, submits it to the generation model, and parses the JSON
// response into scenes.
type StoryAnalysisWorkflow struct {
	cor.BaseCommand
	config    *cloud.Config
	generator cloud.TextGenerator
	chain     cor.Chain
}

// Execute runs the story workflow by invoking the underlying chain.
func (w *StoryAnalysisWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

func (w *StoryAnalysisWorkflow) initializeChain() {
	out := cor.NewBaseChain(w.GetName())

	// Step 1: render the story prompt template with the analysis request.
	promptBuilder, err := commands.NewStoryPromptBuilder(
		"build-story-prompt",
		w.config.PromptTemplates.StoryPrompt,
		w.config.Analysis.MaxScenes)
	if err != nil {
		panic(err)
	}
	out.AddCommand(promptBuilder)

	// Step 2: submit the rendered prompt to the generation model.
	out.AddCommand(commands.NewTextGenerationCommand("generate-story-analysis", w.generator))

	// Step 3: parse the raw model output into scene results.
	out.AddCommand(commands.NewStoryResponseParser(
		"parse-story-response",
		StoryOutputParamName,
		w.config.Analysis.MaxScenes))

	w.chain = out
}

// NewStoryAnalysisPipeline builds a story workflow from the configured
// prompt template and the given generator.
func NewStoryAnalysisPipeline(config *cloud.Config, generator cloud.TextGenerator) *StoryAnalysisWorkflow {
	pipeline := &StoryAnalysisWorkflow{
		BaseCommand: *cor.NewBaseCommand("story-analysis-pipeline"),
		config:      config,
		generator:   generator,
	}
	pipeline.initializeChain()
	return pipeline
}

// DirectAnalysisWorkflow turns a short prompt into a single theme and
// search query. It mirrors the story workflow with direct-mode commands.
type DirectAnalysisWorkflow struct {
	cor.BaseCommand
	config    *cloud.Config
	generator cloud.TextGenerator
	chain     cor.Chain
}

// Execute runs the direct workflow by invoking the underlying chain.
func (w *DirectAnalysisWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

func (w *DirectAnalysisWorkflow) initializeChain() {
	out := cor.NewBaseChain(w.GetName())

	promptBuilder, err := commands.NewDirectPromptBuilder(
		"build-direct-prompt",
		w.config.PromptTemplates.DirectPrompt)
	if err != nil {
		panic(err)
	}
	out.AddCommand(promptBuilder)

	out.AddCommand(commands.NewTextGenerationCommand("generate-direct-analysis", w.generator))

	out.AddCommand(commands.NewDirectResponseParser(
		"parse-direct-response",
		DirectOutputParamName))

	w.chain = out
}

// NewDirectAnalysisPipeline builds a direct workflow from the configured
// prompt template and the given generator.
func NewDirectAnalysisPipeline(config *cloud.Config, generator cloud.TextGenerator) *DirectAnalysisWorkflow {
	pipeline := &DirectAnalysisWorkflow{
		BaseCommand: *cor.NewBaseCommand("direct-analysis-pipeline"),
		config:      config,
		generator:   generator,
	}
	pipeline.initializeChain()
	return pipeline
}
