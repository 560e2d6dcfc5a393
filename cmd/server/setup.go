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

// Package main contains the setup and initialization logic for the
// application's state: configuration, cloud service clients, and the
// analysis and cache services shared by all request handlers.
package main

import (
	"context"
	"log"
	"os"

	"github.com/audynce/go-prompt-analysis/internal/cloud"
	"github.com/audynce/go-prompt-analysis/internal/core/services"
)

// AgentModelName is the logical name of the generation model configuration
// the analysis pipeline uses.
const AgentModelName = "analyzer"

// StateManager holds the shared dependencies of the server, avoiding global
// variables scattered across handlers.
type StateManager struct {
	config          *cloud.Config
	cloud           *cloud.ServiceClients
	analysisService *services.AnalysisService
	cacheService    *services.CacheService
}

var state = &StateManager{}

// SetupOS points the configuration loader at the config directory and the
// local runtime overlay.
func SetupOS() (err error) {
	err = os.Setenv(cloud.EnvConfigFilePrefix, "configs")
	if err != nil {
		return err
	}
	err = os.Setenv(cloud.EnvConfigRuntime, "local")
	return err
}

// GetConfig provides a singleton instance of the application configuration.
func GetConfig() *cloud.Config {
	if state.config == nil {
		err := SetupOS()
		if err != nil {
			log.Fatalf("failed to setup os: %v\n", err)
		}
		config := cloud.NewConfig()
		cloud.LoadConfig(&config)
		state.config = config
	}
	return state.config
}

// InitState creates the service clients and wires the analysis and cache
// services together. A cache store that fails to connect leaves the cache
// service in pass-through mode; the server still starts.
func InitState(ctx context.Context) {
	config := GetConfig()

	cloudClients, err := cloud.NewCloudServiceClients(ctx, config)
	if err != nil {
		panic(err)
	}
	state.cloud = cloudClients

	generator := cloudClients.AgentModels[AgentModelName]
	if generator == nil {
		log.Fatalf("no agent model named %q in configuration\n", AgentModelName)
	}

	var cacheStore services.CacheStore
	if cloudClients.MongoClient != nil {
		cacheStore = services.NewMongoCacheStore(
			cloudClients.MongoClient,
			config.CacheStore.Database,
			config.CacheStore.Collection)
	}

	state.analysisService = services.NewAnalysisService(config, generator)
	state.cacheService = services.NewCacheService(cacheStore)
}
