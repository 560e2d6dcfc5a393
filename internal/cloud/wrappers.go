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

// Package cloud provides components for interacting with Google Cloud
// services. This file implements a decorator around the Generative AI client
// that adds rate limiting, a per-call deadline, failure classification, and a
// single bounded retry for cold-start conditions. Generation providers can
// take tens of seconds to load a model, so the deadline is long and transient
// failures get exactly one more attempt before the pipeline falls back.
package cloud

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// transientRetryDelay is the fixed pause before the single automatic retry on
// a transient provider failure.
const transientRetryDelay = 2 * time.Second

// ProviderError classifies a generation failure. Transient failures (model
// still loading, quota exhaustion) may be retried once; permanent failures
// (auth, unknown model, malformed payload) are surfaced immediately. The
// orchestrator treats both the same way and substitutes a fallback result.
type ProviderError struct {
	Transient bool
	Err       error
}

func (e *ProviderError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("provider failure (%s): %v", kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// classifyProviderError wraps a genai call failure in a ProviderError.
// HTTP 503 is the provider's model-loading signal; 429 means quota pressure.
// Everything else is permanent.
func classifyProviderError(err error) *ProviderError {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		transient := apiErr.Code == 503 || apiErr.Code == 429
		return &ProviderError{Transient: transient, Err: err}
	}
	return &ProviderError{Transient: false, Err: err}
}

// TextGenerator is the narrow contract the pipeline commands use to call the
// generation provider: instruction text in, generated text out. The concrete
// implementation is QuotaAwareGenerativeAIModel; tests substitute fakes.
type TextGenerator interface {
	GenerateText(ctx context.Context, instruction string) (string, error)
}

// QuotaAwareGenerativeAIModel is a decorator over the genai model handle that
// enforces the configured request rate and call deadline, records token usage
// metrics, and classifies failures into ProviderError.
type QuotaAwareGenerativeAIModel struct {
	GenerativeContentConfig *genai.GenerateContentConfig // Sampling parameters, safety settings, and output format.
	ModelName               string
	ModelHandle             *genai.Models
	RateLimit               *rate.Limiter
	Timeout                 time.Duration

	inputTokenCounter  metric.Int64Counter
	outputTokenCounter metric.Int64Counter
	retryCounter       metric.Int64Counter
}

// NewQuotaAwareModel wraps a configured generation model with a rate limiter
// allowing requestsPerSecond calls and a per-call deadline of timeout.
func NewQuotaAwareModel(
	wrapped *genai.GenerateContentConfig,
	name string,
	handle *genai.Models,
	requestsPerSecond int,
	timeout time.Duration) *QuotaAwareGenerativeAIModel {

	out := &QuotaAwareGenerativeAIModel{
		GenerativeContentConfig: wrapped,
		ModelName:               name,
		ModelHandle:             handle,
		RateLimit:               rate.NewLimiter(rate.Every(time.Second), requestsPerSecond),
		Timeout:                 timeout,
	}

	meter := otel.Meter(name)
	out.inputTokenCounter, _ = meter.Int64Counter(fmt.Sprintf("%s.token.input", name))
	out.outputTokenCounter, _ = meter.Int64Counter(fmt.Sprintf("%s.token.output", name))
	out.retryCounter, _ = meter.Int64Counter(fmt.Sprintf("%s.retry", name))

	return out
}

// GenerateText issues one generation call for the given instruction text and
// returns the model's concatenated text output with surrounding whitespace and
// markdown code fences removed. The content of the text is not interpreted.
//
// A transient failure is retried exactly once after a short fixed delay; a
// cancelled context aborts immediately so the caller can fall back without
// blocking.
func (q *QuotaAwareGenerativeAIModel) GenerateText(ctx context.Context, instruction string) (string, error) {
	out, err := q.generateOnce(ctx, instruction)
	if err == nil {
		return out, nil
	}

	var provErr *ProviderError
	if errors.As(err, &provErr) && provErr.Transient {
		q.retryCounter.Add(ctx, 1)
		select {
		case <-ctx.Done():
			return "", &ProviderError{Transient: true, Err: ctx.Err()}
		case <-time.After(transientRetryDelay):
		}
		return q.generateOnce(ctx, instruction)
	}
	return "", err
}

func (q *QuotaAwareGenerativeAIModel) generateOnce(ctx context.Context, instruction string) (string, error) {
	if err := q.RateLimit.Wait(ctx); err != nil {
		return "", &ProviderError{Transient: true, Err: err}
	}

	callCtx, cancel := context.WithTimeout(ctx, q.Timeout)
	defer cancel()

	resp, err := q.ModelHandle.GenerateContent(callCtx, q.ModelName, genai.Text(instruction), q.GenerativeContentConfig)
	if err != nil {
		return "", classifyProviderError(err)
	}

	if resp.UsageMetadata != nil {
		q.inputTokenCounter.Add(ctx, int64(resp.UsageMetadata.PromptTokenCount))
		q.outputTokenCounter.Add(ctx, int64(resp.UsageMetadata.CandidatesTokenCount))
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			builder.WriteString(part.Text)
		}
	}

	value := strings.TrimSpace(builder.String())
	value = strings.TrimPrefix(value, "```json")
	value = strings.TrimPrefix(value, "```")
	value = strings.TrimSuffix(value, "```")
	return strings.TrimSpace(value), nil
}
