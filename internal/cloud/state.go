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

// Package cloud provides components for interacting with external services.
// This file initializes and holds the client objects the service depends on:
// the Generative AI client, the MongoDB client backing the analysis cache, and
// the configured generation models. It acts as a dependency injection
// container created once at process start and passed by reference to the
// services that need it.
package cloud

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"google.golang.org/genai"
)

// ServiceClients is a container for all the clients that talk to external
// collaborators. The cache client is optional: the service degrades to
// cache-miss behavior when Mongo is not configured or unreachable.
type ServiceClients struct {
	GenAIClient *genai.Client // Client for the Vertex AI generation provider.
	MongoClient *mongo.Client // Client for the analysis cache store. May be nil.
	AgentModels map[string]*QuotaAwareGenerativeAIModel
}

// Close releases the client connections. The genai client holds no closable
// transport in the current library version.
func (c *ServiceClients) Close() {
	if c.MongoClient != nil {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = c.MongoClient.Disconnect(disconnectCtx)
	}
}

// NewCloudServiceClients initializes all external clients from the
// configuration. A generation provider failure is fatal; a cache store
// failure is not, since the cache is best-effort.
func NewCloudServiceClients(ctx context.Context, config *Config) (cloud *ServiceClients, err error) {
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  config.Application.GoogleProjectId,
		Location: config.Application.GoogleLocation,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		slog.Error("error creating genai client", "error", err)
		return nil, err
	}

	var mc *mongo.Client
	if config.CacheStore.URI != "" {
		mc, err = mongo.Connect(ctx, options.Client().ApplyURI(config.CacheStore.URI))
		if err != nil {
			// Cache unavailability never prevents the service from answering.
			slog.Warn("cache store unavailable, continuing without cache", "error", err)
			mc = nil
		}
	} else {
		slog.Info("cache store not configured, caching disabled")
	}

	agentModels := make(map[string]*QuotaAwareGenerativeAIModel)
	for amKey := range config.AgentModels {
		values := config.AgentModels[amKey]
		generateConfig := &genai.GenerateContentConfig{
			Temperature:       genai.Ptr[float32](values.Temperature),
			TopP:              genai.Ptr[float32](values.TopP),
			MaxOutputTokens:   values.MaxTokens,
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: values.SystemInstructions}}},
			SafetySettings:    DefaultSafetySettings,
			ResponseMIMEType:  values.OutputFormat,
		}
		timeout := time.Duration(values.TimeoutInSeconds) * time.Second
		agentModels[amKey] = NewQuotaAwareModel(generateConfig, values.Model, gc.Models, values.RateLimit, timeout)
	}

	cloud = &ServiceClients{
		GenAIClient: gc,
		MongoClient: mc,
		AgentModels: agentModels,
	}
	return cloud, nil
}
