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
	"testing"

	"github.com/stretchr/testify/assert"
)

// Tests below use t.Setenv and therefore must not run in parallel.

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("PROJECT_ID", "test-project") // keep metadata detection out of the test

	cfg := LoadConfig()
	assert.Equal(t, LevelInfo, cfg.Level)
	assert.Equal(t, FormatJSON, cfg.Format)
	assert.Equal(t, SchemaGCP, cfg.Schema)
	assert.Equal(t, defaultServiceName, cfg.ServiceName)
	assert.Equal(t, defaultMaxStringBytes, cfg.MaxStringBytes)
	assert.Equal(t, defaultMaxDepth, cfg.MaxDepth)
	assert.Equal(t, defaultMaxArrayLength, cfg.MaxArrayLength)
	assert.Equal(t, defaultMaxBodyBytes, cfg.MaxBodyBytes)
	assert.False(t, cfg.BodyLogging)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "pretty")
	t.Setenv("LOG_TYPE", "aws")
	t.Setenv("PROJECT_ID", "my-project")
	t.Setenv("SERVICE_NAME", "billing")
	t.Setenv("LOG_SENSITIVE_FIELDS", "pan, aadhaar ,")
	t.Setenv("LOG_SENSITIVE_HEADERS", "x-custom-auth")
	t.Setenv("LOG_MAX_STRING_BYTES", "2048")
	t.Setenv("LOG_MAX_DEPTH", "4")
	t.Setenv("LOG_MAX_ARRAY_LENGTH", "25")
	t.Setenv("LOG_MAX_BODY_BYTES", "1024")
	t.Setenv("LOG_BODY_ENABLED", "true")

	cfg := LoadConfig()
	assert.Equal(t, LevelDebug, cfg.Level)
	assert.Equal(t, FormatPretty, cfg.Format)
	assert.Equal(t, SchemaAWS, cfg.Schema)
	assert.Equal(t, "my-project", cfg.ProjectID)
	assert.Equal(t, "billing", cfg.ServiceName)
	assert.Equal(t, []string{"pan", "aadhaar"}, cfg.SensitiveFields)
	assert.Equal(t, []string{"x-custom-auth"}, cfg.SensitiveHeaders)
	assert.Equal(t, 2048, cfg.MaxStringBytes)
	assert.Equal(t, 4, cfg.MaxDepth)
	assert.Equal(t, 25, cfg.MaxArrayLength)
	assert.Equal(t, 1024, cfg.MaxBodyBytes)
	assert.True(t, cfg.BodyLogging)
}

func TestLoadConfigInvalidValuesFallBack(t *testing.T) {
	t.Setenv("PROJECT_ID", "test-project")
	t.Setenv("LOG_LEVEL", "verbose")
	t.Setenv("LOG_FORMAT", "xml")
	t.Setenv("LOG_TYPE", "azure")
	t.Setenv("LOG_MAX_DEPTH", "-3")

	cfg := LoadConfig()
	assert.Equal(t, LevelInfo, cfg.Level)
	assert.Equal(t, FormatJSON, cfg.Format)
	assert.Equal(t, SchemaGCP, cfg.Schema)
	assert.Equal(t, defaultMaxDepth, cfg.MaxDepth)
}

func TestOptionsOverrideEnvironment(t *testing.T) {
	t.Setenv("PROJECT_ID", "env-project")
	t.Setenv("LOG_LEVEL", "debug")

	logger := New(
		WithLevel(LevelError),
		WithProjectID("opt-project"),
		WithSchema(SchemaAWS),
		WithServiceName("opt-service"),
		WithSensitiveFields("pan"),
		WithSensitiveHeaders("x-only-this"),
		WithMaxDepth(2),
		WithBodyLogging(true),
		WithBackend(&captureBackend{}),
	)

	cfg := logger.Config()
	assert.Equal(t, LevelError, cfg.Level)
	assert.Equal(t, "opt-project", cfg.ProjectID)
	assert.Equal(t, SchemaAWS, cfg.Schema)
	assert.Equal(t, "opt-service", cfg.ServiceName)
	assert.Contains(t, cfg.SensitiveFields, "pan")
	assert.Equal(t, []string{"x-only-this"}, cfg.SensitiveHeaders)
	assert.Equal(t, 2, cfg.MaxDepth)
	assert.True(t, cfg.BodyLogging)

	assert.False(t, logger.Enabled(LevelWarn))
	assert.True(t, logger.Enabled(LevelError))
}

func TestSplitAndClean(t *testing.T) {
	assert.Nil(t, splitAndClean(""))
	assert.Nil(t, splitAndClean("  "))
	assert.Equal(t, []string{"a", "b"}, splitAndClean(" a , b ,, "))
}
