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

// Package test provides helpers and mock data for the test suite: test
// configuration loading and canned model responses in the shapes real
// generation models produce.
package test

import (
	"log"
	"os"
	"testing"

	"github.com/audynce/go-prompt-analysis/internal/cloud"
)

// StateManager caches the test configuration so it is loaded from the TOML
// files only once per test run.
type StateManager struct {
	config *cloud.Config
}

var state = &StateManager{}

// HandleErr fails the test when err is not nil.
func HandleErr(err error, t *testing.T) {
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// GetTestStoryResponseText returns a model response in the typical shape a
// real generation model produces: the JSON object wrapped in prose and a
// markdown fence, with one scene missing its description and one unusable
// scene without a search query.
func GetTestStoryResponseText() string {
	return "Sure! Here is the scene breakdown you asked for:\n" +
		"```json\n" +
		`{
  "scenes": [
    { "description": "Dawn breaks over an empty coastal road", "search_query": "slow ambient hopeful sunrise indie folk" },
    { "search_query": "driving upbeat surf rock" },
    { "description": "A scene the model forgot to finish" },
    { "description": "Night falls on the harbor", "search_query": "mellow nocturnal jazz trumpet" }
  ]
}` + "\n```\nLet me know if you want more scenes."
}

// GetTestDirectResponseText returns a direct-mode model response with prose
// around the JSON object.
func GetTestDirectResponseText() string {
	return `Here's my suggestion: {"theme": "Rainy Day Reading", "search_query": "chill rainy afternoon acoustic jazz"} Enjoy!`
}

// SetupOS points the configuration loader at the test TOML files.
func SetupOS() (err error) {
	err = os.Setenv(cloud.EnvConfigFilePrefix, "configs")
	if err != nil {
		return err
	}
	err = os.Setenv(cloud.EnvConfigRuntime, "test")
	return err
}

// GetConfig is a singleton accessor for the test configuration. Fields the
// TOML files do not provide fall back to built-in defaults, so tests behave
// the same regardless of which directory the test binary runs from.
func GetConfig() *cloud.Config {
	if state.config == nil {
		err := SetupOS()
		if err != nil {
			log.Fatalf("failed to setup environment for test: %v\n", err)
		}
		config := cloud.NewConfig()
		cloud.LoadConfig(&config)
		applyDefaults(config)
		state.config = config
	}
	return state.config
}

func applyDefaults(config *cloud.Config) {
	if config.Application.Name == "" {
		config.Application.Name = "prompt-analysis-test"
	}
	if config.Analysis.StoryThreshold == 0 {
		config.Analysis.StoryThreshold = 30
	}
	if config.Analysis.MaxScenes == 0 {
		config.Analysis.MaxScenes = 5
	}
	if config.Analysis.PromptMinLength == 0 {
		config.Analysis.PromptMinLength = 10
	}
	if config.Analysis.PromptMaxLength == 0 {
		config.Analysis.PromptMaxLength = 2000
	}
	if config.PromptTemplates.StoryPrompt == "" {
		config.PromptTemplates.StoryPrompt = "Break this story into up to {{.MAX_SCENES}} musical scenes.\n" +
			"Story: {{.NARRATIVE}}\nGenres: {{.GENRES}}\nArtists: {{.TOP_ARTISTS}}\n" +
			"Respond ONLY with valid JSON in this exact format:\n{{.EXAMPLE_JSON}}\n"
	}
	if config.PromptTemplates.DirectPrompt == "" {
		config.PromptTemplates.DirectPrompt = "Extract the theme and search query for this request.\n" +
			"Request: {{.PROMPT}}\nGenres: {{.GENRES}}\nArtists: {{.TOP_ARTISTS}}\n" +
			"Respond ONLY with valid JSON in this exact format:\n{{.EXAMPLE_JSON}}\n"
	}
}
