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

package amlog

import (
	"strings"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// SchemaType selects the output schema a record is rendered into.
type SchemaType string

// Supported output schemas.
const (
	SchemaGCP SchemaType = "gcp"
	SchemaAWS SchemaType = "aws"
)

// OutputFormat selects how the default backend serializes records.
type OutputFormat string

// Supported serialization formats for the default backend.
const (
	FormatJSON   OutputFormat = "json"
	FormatPretty OutputFormat = "pretty"
)

// Environment variable names read by LoadConfig.
const (
	envLogLevel         = "LOG_LEVEL"
	envLogFormat        = "LOG_FORMAT"
	envLogType          = "LOG_TYPE"
	envProjectID        = "PROJECT_ID"
	envServiceName      = "SERVICE_NAME"
	envSensitiveFields  = "LOG_SENSITIVE_FIELDS"
	envSensitiveHeaders = "LOG_SENSITIVE_HEADERS"
	envMaxStringBytes   = "LOG_MAX_STRING_BYTES"
	envMaxDepth         = "LOG_MAX_DEPTH"
	envMaxArrayLength   = "LOG_MAX_ARRAY_LENGTH"
	envMaxBodyBytes     = "LOG_MAX_BODY_BYTES"
	envBodyEnabled      = "LOG_BODY_ENABLED"
)

// Default values used when the environment does not override them.
const (
	defaultMaxStringBytes = 10 * 1024
	defaultMaxDepth       = 10
	defaultMaxArrayLength = 100
	defaultMaxBodyBytes   = 64 * 1024
	defaultServiceName    = "service"
)

// Config holds all resolved configuration values after processing defaults,
// environment variables, and programmatic options. It is constructed once at
// startup and treated as read-only afterwards; components receive it by
// reference at construction and never mutate it.
type Config struct {
	Level       Level
	Format      OutputFormat
	Schema      SchemaType
	ProjectID   string
	ServiceName string

	// SensitiveFields are additional body field names to redact, merged with
	// the built-in defaults. SensitiveHeaders, when non-nil, replaces the
	// built-in header list entirely.
	SensitiveFields  []string
	SensitiveHeaders []string

	// Bounds applied by the sanitizer and the response capture.
	MaxStringBytes int
	MaxDepth       int
	MaxArrayLength int
	MaxBodyBytes   int

	// BodyLogging enables buffering of request/response bodies for logging.
	BodyLogging bool
}

// LoadConfig resolves configuration from the process environment on top of
// built-in defaults. Invalid values fall back to their defaults rather than
// failing: configuration problems must not prevent a service from starting
// with logging.
func LoadConfig() Config {
	k := koanf.New(".")

	// Flat keys: LOG_LEVEL -> log_level. Load errors are impossible for the
	// env provider with a nil parser but keep the idiom of checking anyway.
	_ = k.Load(env.Provider("", ".", strings.ToLower), nil)

	cfg := Config{
		Level:          LevelInfo,
		Format:         FormatJSON,
		Schema:         SchemaGCP,
		ServiceName:    defaultServiceName,
		MaxStringBytes: defaultMaxStringBytes,
		MaxDepth:       defaultMaxDepth,
		MaxArrayLength: defaultMaxArrayLength,
		MaxBodyBytes:   defaultMaxBodyBytes,
	}

	if raw := k.String(lowered(envLogLevel)); raw != "" {
		if lvl, ok := ParseLevel(raw); ok {
			cfg.Level = lvl
		}
	}
	switch OutputFormat(strings.ToLower(k.String(lowered(envLogFormat)))) {
	case FormatPretty:
		cfg.Format = FormatPretty
	case FormatJSON:
		cfg.Format = FormatJSON
	}
	switch SchemaType(strings.ToLower(k.String(lowered(envLogType)))) {
	case SchemaAWS:
		cfg.Schema = SchemaAWS
	case SchemaGCP:
		cfg.Schema = SchemaGCP
	}

	cfg.ProjectID = strings.TrimSpace(k.String(lowered(envProjectID)))
	if cfg.ProjectID == "" {
		cfg.ProjectID = detectProjectID()
	}
	if svc := strings.TrimSpace(k.String(lowered(envServiceName))); svc != "" {
		cfg.ServiceName = svc
	}

	cfg.SensitiveFields = splitAndClean(k.String(lowered(envSensitiveFields)))
	if raw := strings.TrimSpace(k.String(lowered(envSensitiveHeaders))); raw != "" {
		cfg.SensitiveHeaders = splitAndClean(raw)
	}

	if v := k.Int(lowered(envMaxStringBytes)); v > 0 {
		cfg.MaxStringBytes = v
	}
	if v := k.Int(lowered(envMaxDepth)); v > 0 {
		cfg.MaxDepth = v
	}
	if v := k.Int(lowered(envMaxArrayLength)); v > 0 {
		cfg.MaxArrayLength = v
	}
	if v := k.Int(lowered(envMaxBodyBytes)); v > 0 {
		cfg.MaxBodyBytes = v
	}
	if k.Exists(lowered(envBodyEnabled)) {
		cfg.BodyLogging = k.Bool(lowered(envBodyEnabled))
	}

	return cfg
}

// lowered mirrors the key transformation applied when loading the env
// provider so lookups stay in sync with it.
func lowered(key string) string { return strings.ToLower(key) }

// splitAndClean normalizes comma-separated configuration strings into a
// slice of trimmed, non-empty values.
func splitAndClean(input string) []string {
	if strings.TrimSpace(input) == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		cleaned = append(cleaned, part)
	}
	return cleaned
}
