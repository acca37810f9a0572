// Copyright 2026 Ambak Fintech
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package http

import (
	"context"
	"net/http"
	"os"
	"strings"

	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// ShouldLogFunc decides whether a request should emit structured log
// entries. Returning false skips the request and response records but still
// runs the handler with an ambient context installed.
type ShouldLogFunc func(context.Context, *http.Request) bool

// MiddlewareOptions controls the behaviour of [Middleware].
type MiddlewareOptions struct {
	ShouldLog          ShouldLogFunc
	SkipPathSubstrings []string

	// EnableOTel wraps the middleware chain with otelhttp so a server span
	// is created per request in addition to logging.
	EnableOTel     bool
	TracerProvider trace.TracerProvider
	Propagators    propagation.TextMapPropagator
}

// Option mutates MiddlewareOptions.
type Option func(*MiddlewareOptions)

// loadMiddlewareOptionsFromEnv builds MiddlewareOptions from the current
// process environment. Invalid values are ignored so functional options can
// supply overrides without additional error handling.
func loadMiddlewareOptionsFromEnv() MiddlewareOptions {
	var opts MiddlewareOptions
	if raw, ok := os.LookupEnv("AMLOG_HTTP_SKIP_PATH_SUBSTRINGS"); ok {
		opts.SkipPathSubstrings = splitAndClean(raw)
	}
	return opts
}

// WithShouldLog configures a predicate deciding whether a request emits log
// entries.
func WithShouldLog(fn ShouldLogFunc) Option {
	return func(o *MiddlewareOptions) { o.ShouldLog = fn }
}

// WithSkipPathSubstrings suppresses logging for requests whose path contains
// any of the given substrings (health checks, readiness probes).
func WithSkipPathSubstrings(substrings ...string) Option {
	cleaned := make([]string, 0, len(substrings))
	for _, s := range substrings {
		if s = strings.TrimSpace(s); s != "" {
			cleaned = append(cleaned, s)
		}
	}
	return func(o *MiddlewareOptions) { o.SkipPathSubstrings = cleaned }
}

// WithOTel enables otelhttp wrapping of the middleware chain.
func WithOTel(enable bool) Option {
	return func(o *MiddlewareOptions) { o.EnableOTel = enable }
}

// WithTracerProvider sets the tracer provider used when OTel wrapping is
// enabled.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *MiddlewareOptions) { o.TracerProvider = tp }
}

// WithPropagators sets the propagators used when OTel wrapping is enabled.
func WithPropagators(p propagation.TextMapPropagator) Option {
	return func(o *MiddlewareOptions) { o.Propagators = p }
}

// applyOptions resolves env defaults then functional overrides.
func applyOptions(opts []Option) *MiddlewareOptions {
	resolved := loadMiddlewareOptionsFromEnv()
	for _, opt := range opts {
		if opt != nil {
			opt(&resolved)
		}
	}
	return &resolved
}

// splitAndClean normalises comma-separated configuration strings into a
// slice of trimmed, non-empty values.
func splitAndClean(input string) []string {
	parts := strings.Split(input, ",")
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			cleaned = append(cleaned, part)
		}
	}
	return cleaned
}
