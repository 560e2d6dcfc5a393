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
// services. This file contains the hierarchical configuration loader: a base
// TOML file is read first, then an environment-specific file overwrites any
// values it repeats (e.g. ".env.toml" then ".env.test.toml").
package cloud

import (
	"errors"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	ConfigFileBaseName  = ".env"                   // Base name for configuration files.
	ConfigFileExtension = ".toml"                  // Extension for configuration files.
	ConfigSeparator     = "."                      // Separator in overlay file names.
	EnvConfigFilePrefix = "AUDYNCE_CONFIG_PREFIX"  // Env var pointing at the config directory.
	EnvConfigRuntime    = "AUDYNCE_RUNTIME"        // Env var naming the runtime (e.g. "local", "test").
)

func fileExists(in string) bool {
	_, err := os.Stat(in)
	return !errors.Is(err, os.ErrNotExist)
}

// LoadConfig populates baseConfig from the base TOML file and then from the
// runtime-specific overlay, if either exists. The runtime defaults to "test"
// so test runs never pick up production settings by accident.
func LoadConfig(baseConfig interface{}) {
	configurationFilePrefix := os.Getenv(EnvConfigFilePrefix)
	if len(configurationFilePrefix) > 0 && !strings.HasSuffix(configurationFilePrefix, string(os.PathSeparator)) {
		configurationFilePrefix = configurationFilePrefix + string(os.PathSeparator)
	}

	runtimeEnvironment := os.Getenv(EnvConfigRuntime)
	if runtimeEnvironment == "" {
		runtimeEnvironment = "test"
	}

	baseConfigFileName := configurationFilePrefix + ConfigFileBaseName + ConfigFileExtension
	envConfigFileName := configurationFilePrefix + ConfigFileBaseName + ConfigSeparator + runtimeEnvironment + ConfigFileExtension
	slog.Info("loading configuration", "base", baseConfigFileName, "overlay", envConfigFileName)

	if fileExists(baseConfigFileName) {
		_, err := toml.DecodeFile(baseConfigFileName, baseConfig)
		if err != nil {
			log.Fatalf("failed to decode base configuration file %s with error: %s", baseConfigFileName, err)
		}
	}

	if fileExists(envConfigFileName) {
		_, err := toml.DecodeFile(envConfigFileName, baseConfig)
		if err != nil {
			log.Fatalf("failed to decode environment configuration file: %s with error: %s", envConfigFileName, err)
		}
	}
}
