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
// analysis pipeline. This file defines the generation step: it forwards the
// built instruction text to the generation provider and pipes the raw text
// response to the parser. Retry and timeout policy live inside the provider
// wrapper, not here.
package commands

import (
	"fmt"

	"github.com/audynce/go-prompt-analysis/internal/cloud"
	"github.com/audynce/go-prompt-analysis/internal/core/cor"
)

// TextGenerationCommand invokes the generation provider with the instruction
// text produced by a prompt builder.
type TextGenerationCommand struct {
	cor.BaseCommand
	generator cloud.TextGenerator
}

// NewTextGenerationCommand constructs the command around a provider handle.
func NewTextGenerationCommand(name string, generator cloud.TextGenerator) *TextGenerationCommand {
	return &TextGenerationCommand{
		BaseCommand: *cor.NewBaseCommand(name),
		generator:   generator,
	}
}

// Execute issues the generation call and pipes the trimmed raw text onward.
// Any provider failure stops the chain; the orchestrator substitutes the
// fallback result.
func (t *TextGenerationCommand) Execute(context cor.Context) {
	instruction := context.Get(t.GetInputParam()).(string)

	out, err := t.generator.GenerateText(context.GetContext(), instruction)
	if err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("generation request failed: %w", err))
		return
	}

	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(t.GetOutputParam(), out)
}
