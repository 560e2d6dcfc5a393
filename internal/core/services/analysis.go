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

// Package services contains the business logic above the command chains.
// This file implements the analysis orchestrator, the pipeline entry point:
// it selects the mode, drives the matching workflow, and substitutes the
// fallback generator whenever the workflow cannot produce a result. Analyze
// is total; the caller always receives a fully formed result.
package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/audynce/go-prompt-analysis/internal/cloud"
	"github.com/audynce/go-prompt-analysis/internal/core/cor"
	"github.com/audynce/go-prompt-analysis/internal/core/model"
	"github.com/audynce/go-prompt-analysis/internal/core/workflow"
)

// analysisIDFingerprintLength is how much of the fingerprint the analysis id
// carries. Enough to correlate logs with cache entries; the id is for
// traceability only, never lookup.
const analysisIDFingerprintLength = 12

// AnalysisService turns analysis requests into results. One instance serves
// all requests; per-request state lives in the chain context.
type AnalysisService struct {
	config          *cloud.Config
	storyWorkflow   *workflow.StoryAnalysisWorkflow
	directWorkflow  *workflow.DirectAnalysisWorkflow
	fallback        *FallbackGenerator
	fallbackCounter metric.Int64Counter
}

// NewAnalysisService wires the orchestrator to its two workflows and the
// fallback generator. The generator is shared by both workflows so they draw
// from one rate limit.
func NewAnalysisService(config *cloud.Config, generator cloud.TextGenerator) *AnalysisService {
	meter := otel.Meter("github.com/audynce/go-prompt-analysis")
	fallbackCounter, err := meter.Int64Counter("analysis.counter.fallback")
	if err != nil {
		log.Printf("error creating fallback counter: %v\n", err)
	}
	return &AnalysisService{
		config:          config,
		storyWorkflow:   workflow.NewStoryAnalysisPipeline(config, generator),
		directWorkflow:  workflow.NewDirectAnalysisPipeline(config, generator),
		fallback:        NewFallbackGenerator(),
		fallbackCounter: fallbackCounter,
	}
}

// SelectMode derives the analysis mode from the prompt's whitespace-split
// word count. A count equal to the threshold is a story.
func SelectMode(prompt string, storyThreshold int) model.Mode {
	if len(strings.Fields(prompt)) >= storyThreshold {
		return model.ModeStory
	}
	return model.ModeDirect
}

// newAnalysisID mints the traceability id for one computation from the
// request fingerprint and the generation time.
func newAnalysisID(fingerprint string) string {
	return fmt.Sprintf("ai-%s-%d", fingerprint[:analysisIDFingerprintLength], time.Now().Unix())
}

// Analyze runs the full pipeline for one request. Every failure path ends in
// the fallback generator, so the returned result is always fully formed.
func (s *AnalysisService) Analyze(ctx context.Context, request *model.AnalysisRequest, fingerprint string) *model.AnalysisResult {
	mode := SelectMode(request.Prompt, request.StoryThreshold)

	result := &model.AnalysisResult{
		AnalysisID: newAnalysisID(fingerprint),
		Mode:       mode,
	}

	if mode == model.ModeStory {
		result.Scenes = s.analyzeStory(ctx, request)
	} else {
		result.Direct = s.analyzeDirect(ctx, request)
	}
	return result
}

func (s *AnalysisService) analyzeStory(ctx context.Context, request *model.AnalysisRequest) []*model.SceneResult {
	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(ctx)
	chainCtx.Add(cor.CtxIn, request)

	s.storyWorkflow.Execute(chainCtx)

	if chainCtx.HasErrors() {
		s.logWorkflowErrors("story", chainCtx)
		s.fallbackCounter.Add(ctx, 1)
		return s.fallback.FallbackStory(request.SelectedGenres, request.TopArtists)
	}
	scenes, ok := chainCtx.Get(workflow.StoryOutputParamName).([]*model.SceneResult)
	if !ok || len(scenes) == 0 {
		log.Printf("story workflow produced no output, using fallback\n")
		s.fallbackCounter.Add(ctx, 1)
		return s.fallback.FallbackStory(request.SelectedGenres, request.TopArtists)
	}
	return scenes
}

func (s *AnalysisService) analyzeDirect(ctx context.Context, request *model.AnalysisRequest) *model.DirectResult {
	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(ctx)
	chainCtx.Add(cor.CtxIn, request)

	s.directWorkflow.Execute(chainCtx)

	if chainCtx.HasErrors() {
		s.logWorkflowErrors("direct", chainCtx)
		s.fallbackCounter.Add(ctx, 1)
		return s.fallback.FallbackDirect(request.Prompt, request.SelectedGenres, request.TopArtists)
	}
	direct, ok := chainCtx.Get(workflow.DirectOutputParamName).(*model.DirectResult)
	if !ok {
		log.Printf("direct workflow produced no output, using fallback\n")
		s.fallbackCounter.Add(ctx, 1)
		return s.fallback.FallbackDirect(request.Prompt, request.SelectedGenres, request.TopArtists)
	}
	return direct
}

func (s *AnalysisService) logWorkflowErrors(mode string, chainCtx cor.Context) {
	for name, err := range chainCtx.GetErrors() {
		log.Printf("%s workflow command %s failed, using fallback: %v\n", mode, name, err)
	}
}
