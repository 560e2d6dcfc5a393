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

// Package main is the entry point for the prompt analysis server.
//
// The server exposes a REST API that turns free-form music prompts into
// structured search intents: long narrative prompts become an ordered scene
// list, short prompts become a single theme and search query. Results are
// memoized in a content-addressed cache so identical requests skip the
// generation model entirely. The server is instrumented with OpenTelemetry
// for logging, tracing, and metrics.
package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/audynce/go-prompt-analysis/internal/core/model"
	"github.com/audynce/go-prompt-analysis/internal/telemetry"
)

// requestIDHeader carries the id minted for each request so callers can
// quote it when reporting problems.
const requestIDHeader = "X-Request-ID"

func main() {
	telemetry.SetupLogging()
	slog.Info("Logging initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	config := GetConfig()

	_, err := telemetry.SetupOpenTelemetry(ctx, config)
	if err != nil {
		slog.Error("Failed to setup OpenTelemetry", "error", err)
		log.Fatal(err)
	}
	slog.Info("Tracing initialized")

	InitState(ctx)
	slog.Info("Initialized State")

	r := gin.Default()
	r.Use(otelgin.Middleware("prompt-analysis-server"))
	r.Use(cors.Default())
	r.Use(RequestID())

	apiV1 := r.Group("/api/v1")
	{
		AnalysisRouter(apiV1)
		StatusRouter(apiV1)
	}

	// The write timeout has to outlive the slowest generation call, which
	// can block for the full provider timeout before falling back.
	srv := &http.Server{
		Addr:         ":8080",
		Handler:      r,
		ReadTimeout:  20 * time.Second,
		WriteTimeout: 150 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to listen: ", "error", err)
		}
	}()
	slog.Info("Server Ready on port 8080")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutdown Server ...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server Shutdown Failed:", "error", err)
	}

	state.cloud.Close()
	log.Println("Server exiting")
}

// RequestID attaches a fresh id to every response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set(requestIDHeader, uuid.NewString())
		c.Next()
	}
}

// AnalysisRouter sets up the analysis endpoint.
//
// POST /analysis accepts `{prompt, selected_genres, top_artists,
// story_threshold}` and returns `{analysis_id, mode, scenes?,
// direct_analysis?}`. The response is always a fully formed result; provider
// failures degrade to a rule-based fallback rather than an error status.
func AnalysisRouter(r *gin.RouterGroup) {
	analysis := r.Group("/analysis")
	{
		analysis.POST("", func(c *gin.Context) {
			var request model.AnalysisRequest
			if err := c.ShouldBindJSON(&request); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
				return
			}

			// Prompt length limits are the only input validation; everything
			// past this point is total.
			promptLength := len(request.Prompt)
			if promptLength < state.config.Analysis.PromptMinLength {
				c.JSON(http.StatusBadRequest, gin.H{"error": "prompt is too short"})
				return
			}
			if promptLength > state.config.Analysis.PromptMaxLength {
				c.JSON(http.StatusBadRequest, gin.H{"error": "prompt is too long"})
				return
			}
			if request.StoryThreshold <= 0 {
				request.StoryThreshold = state.config.Analysis.StoryThreshold
			}

			result := state.cacheService.GetOrCompute(c.Request.Context(), &request,
				func(ctx context.Context, fingerprint string) *model.AnalysisResult {
					return state.analysisService.Analyze(ctx, &request, fingerprint)
				})
			c.JSON(http.StatusOK, result)
		})
	}
}

// StatusRouter sets up the service status endpoint, reporting the configured
// model and whether the cache store connected at startup.
func StatusRouter(r *gin.RouterGroup) {
	status := r.Group("/status")
	{
		status.GET("", func(c *gin.Context) {
			cacheState := "disconnected"
			if state.cloud.MongoClient != nil {
				cacheState = "connected"
			}
			c.JSON(http.StatusOK, gin.H{
				"service": state.config.Application.Name,
				"model":   state.config.AgentModels[AgentModelName].Model,
				"cache":   cacheState,
			})
		})
	}
}
