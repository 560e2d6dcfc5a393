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
// analysis pipeline. This file defines the story-mode response parser, which
// turns the model's raw text into typed scene results. The parser is
// permissive about extra or malformed content and strict only about ending up
// with at least one usable scene.
package commands

import (
	"fmt"

	"github.com/audynce/go-prompt-analysis/internal/core/cor"
	"github.com/audynce/go-prompt-analysis/internal/core/model"
)

// StoryResponseParser converts raw model output into a bounded, contiguously
// numbered list of scene results.
type StoryResponseParser struct {
	cor.BaseCommand
	maxScenes int
}

// NewStoryResponseParser constructs the parser. outputParamName names the
// context key the scene list is stored under in addition to the chain's
// piped output.
func NewStoryResponseParser(name string, outputParamName string, maxScenes int) *StoryResponseParser {
	out := &StoryResponseParser{
		BaseCommand: *cor.NewBaseCommand(name),
		maxScenes:   maxScenes,
	}
	out.OutputParamName = outputParamName
	return out
}

// ParseScenes recovers scene results from raw model text. Scenes beyond the
// configured maximum are dropped, missing descriptions get a "Scene N"
// placeholder, and elements without a usable search query are skipped. Scene
// numbers are assigned 1..k after all skipping, so they are always
// contiguous. An empty final list is a ParseError.
func (s *StoryResponseParser) ParseScenes(text string) ([]*model.SceneResult, error) {
	obj, err := ExtractJSONObject(text)
	if err != nil {
		return nil, err
	}

	rawScenes, ok := obj["scenes"].([]interface{})
	if !ok || len(rawScenes) == 0 {
		return nil, &ParseError{Reason: "response contains no scenes array"}
	}

	scenes := make([]*model.SceneResult, 0, s.maxScenes)
	for _, rawScene := range rawScenes {
		if len(scenes) == s.maxScenes {
			break
		}
		sceneObj, ok := rawScene.(map[string]interface{})
		if !ok {
			continue
		}
		searchQuery, ok := stringField(sceneObj, "search_query", "searchQuery")
		if !ok {
			continue
		}
		number := len(scenes) + 1
		description, ok := stringField(sceneObj, "description")
		if !ok {
			description = fmt.Sprintf("Scene %d", number)
		}
		scenes = append(scenes, &model.SceneResult{
			SceneNumber: number,
			Description: description,
			SearchQuery: searchQuery,
		})
	}

	if len(scenes) == 0 {
		return nil, &ParseError{Reason: "no scene with a usable search query"}
	}
	return scenes, nil
}

// Execute parses the piped raw text and stores the scene list.
func (s *StoryResponseParser) Execute(context cor.Context) {
	in := context.Get(s.GetInputParam()).(string)

	scenes, err := s.ParseScenes(in)
	if err != nil {
		s.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(s.GetName(), err)
		return
	}

	s.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(s.GetOutputParam(), scenes)
	context.Add(cor.CtxOut, scenes)
}
