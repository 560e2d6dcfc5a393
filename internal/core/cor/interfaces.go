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

// Package cor (Chain of Responsibility) provides the building blocks for the
// analysis pipeline: commands are atomic units of work, chains execute them in
// order, and a shared context carries data and errors between them.
package cor

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// CtxIn and CtxOut are the keys used to pipe the primary data flow through a
// chain: the value a command stores under CtxOut becomes the next command's
// CtxIn.
const (
	CtxIn  = "__IN__"
	CtxOut = "__OUT__"
)

// Context is the shared state object passed through a chain of commands. It
// carries data, collected errors, and the request-scoped Go context.
type Context interface {
	// SetContext sets the standard Go context used for cancellation and
	// trace propagation.
	SetContext(context context.Context)

	// GetContext retrieves the standard Go context.
	GetContext() context.Context

	// Add stores a key-value pair. Returns the Context for chaining.
	Add(key string, value interface{}) Context

	// AddError records an error under the name of the command that produced it.
	AddError(key string, err error)

	// GetErrors returns all errors collected during the workflow.
	GetErrors() map[string]error

	// Get retrieves a value by key, or nil.
	Get(key string) interface{}

	// Remove deletes a key-value pair.
	Remove(key string)

	// HasErrors reports whether any command has failed.
	HasErrors() bool
}

// Executable is any object with core execution logic.
type Executable interface {
	// Execute runs the business logic, reading inputs from and writing
	// outputs to the given context.
	Execute(context Context)
}

// Command represents an atomic, testable, thread-safe unit of work.
type Command interface {
	Executable

	// GetName returns the command's unique name, used for logging and telemetry.
	GetName() string

	// GetInputParam returns the context key holding this command's input.
	GetInputParam() string

	// GetOutputParam returns the context key this command writes its output to.
	GetOutputParam() string

	// IsExecutable reports whether the command can run against the current
	// context state.
	IsExecutable(context Context) bool

	// GetTracer returns the OpenTelemetry tracer for this command.
	GetTracer() trace.Tracer

	// GetMeter returns the OpenTelemetry meter for creating metrics.
	GetMeter() metric.Meter

	// GetSuccessCounter returns the counter for successful executions.
	GetSuccessCounter() metric.Int64Counter

	// GetErrorCounter returns the counter for failed executions.
	GetErrorCounter() metric.Int64Counter
}

// Chain is a sequence of commands. A Chain is itself a Command, so chains can
// nest.
type Chain interface {
	Command

	// ContinueOnFailure configures whether the chain keeps executing after a
	// command records an error.
	ContinueOnFailure(bool) Chain

	// AddCommand appends a command to the execution sequence.
	AddCommand(command Command) Chain
}
