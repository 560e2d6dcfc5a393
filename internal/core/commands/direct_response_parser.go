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
// analysis pipeline. This file defines the direct-mode response parser.
package commands

import (
	"github.com/audynce/go-prompt-analysis/internal/core/cor"
	"github.com/audynce/go-prompt-analysis/internal/core/model"
)

// defaultDirectTheme stands in when the model omits the theme. The search
// query has no such default; a response without one is unusable.
const defaultDirectTheme = "Music playlist"

// DirectResponseParser converts raw model output into a direct result.
type DirectResponseParser struct {
	cor.BaseCommand
}

// NewDirectResponseParser constructs the parser. outputParamName names the
// context key the result is stored under in addition to the chain's piped
// output.
func NewDirectResponseParser(name string, outputParamName string) *DirectResponseParser {
	out := &DirectResponseParser{BaseCommand: *cor.NewBaseCommand(name)}
	out.OutputParamName = outputParamName
	return out
}

// ParseDirect recovers a direct result from raw model text. A missing theme
// defaults; a missing search query is a ParseError.
func (s *DirectResponseParser) ParseDirect(text string) (*model.DirectResult, error) {
	obj, err := ExtractJSONObject(text)
	if err != nil {
		return nil, err
	}

	searchQuery, ok := stringField(obj, "search_query", "searchQuery")
	if !ok {
		return nil, &ParseError{Reason: "response contains no usable search query"}
	}
	theme, ok := stringField(obj, "theme")
	if !ok {
		theme = defaultDirectTheme
	}

	return &model.DirectResult{
		Theme:       theme,
		SearchQuery: searchQuery,
	}, nil
}

// Execute parses the piped raw text and stores the direct result.
func (s *DirectResponseParser) Execute(context cor.Context) {
	in := context.Get(s.GetInputParam()).(string)

	result, err := s.ParseDirect(in)
	if err != nil {
		s.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(s.GetName(), err)
		return
	}

	s.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(s.GetOutputParam(), result)
	context.Add(cor.CtxOut, result)
}
