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
// analysis pipeline. This file defines the JSON extraction routine shared by
// the response parsers. Generation models wrap their JSON in prose, markdown,
// or truncated noise; the extraction contract is permissive about surrounding
// content and strict only about the presence of one well-formed object.
package commands

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseError reports that no usable result could be recovered from the
// model's raw output.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unparseable model response: %s", e.Reason)
}

// ExtractJSONObject locates the candidate JSON object in raw model output and
// validates it in two steps: slice from the first '{' to the last '}', then
// confirm the slice decodes as a JSON object. Prose before or after the
// object is tolerated; a missing delimiter pair or an undecodable slice is a
// ParseError.
func ExtractJSONObject(text string) (map[string]interface{}, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return nil, &ParseError{Reason: "no JSON object delimiters in response"}
	}

	candidate := text[start : end+1]
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(candidate), &obj); err != nil {
		return nil, &ParseError{Reason: fmt.Sprintf("candidate substring is not a JSON object: %v", err)}
	}
	return obj, nil
}

// stringField reads a string value from a decoded JSON object, trying each
// key in order. Models drift between snake_case and camelCase field names
// across generations, so callers pass both spellings. A missing or
// wrong-typed value is treated as absent, not as a failure.
func stringField(obj map[string]interface{}, keys ...string) (string, bool) {
	for _, key := range keys {
		raw, ok := obj[key]
		if !ok {
			continue
		}
		value, ok := raw.(string)
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}
		return strings.TrimSpace(value), true
	}
	return "", false
}
