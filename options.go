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

// Option configures a Logger during construction. Options are applied after
// environment variables, so programmatic settings win.
type Option func(*builderState)

type builderState struct {
	level            *Level
	format           *OutputFormat
	schema           *SchemaType
	projectID        *string
	serviceName      *string
	sensitiveFields  []string
	sensitiveHeaders []string
	maxStringBytes   *int
	maxDepth         *int
	maxArrayLength   *int
	maxBodyBytes     *int
	bodyLogging      *bool
	backend          Backend
}

// WithLevel sets the minimum severity emitted by the logger.
func WithLevel(level Level) Option {
	return func(b *builderState) { b.level = &level }
}

// WithFormat selects the serialization format of the default backend.
func WithFormat(format OutputFormat) Option {
	return func(b *builderState) { b.format = &format }
}

// WithSchema selects the output schema (GCP or AWS) records are rendered into.
func WithSchema(schema SchemaType) Option {
	return func(b *builderState) { b.schema = &schema }
}

// WithProjectID sets the Google Cloud project ID used for trace formatting.
func WithProjectID(projectID string) Option {
	return func(b *builderState) { b.projectID = &projectID }
}

// WithServiceName sets the service name stamped onto every record.
func WithServiceName(name string) Option {
	return func(b *builderState) { b.serviceName = &name }
}

// WithSensitiveFields adds body field names to the redaction set. The names
// are merged with the built-in defaults, matching LOG_SENSITIVE_FIELDS.
func WithSensitiveFields(fields ...string) Option {
	return func(b *builderState) { b.sensitiveFields = append(b.sensitiveFields, fields...) }
}

// WithSensitiveHeaders replaces the built-in sensitive header list,
// matching LOG_SENSITIVE_HEADERS.
func WithSensitiveHeaders(headers ...string) Option {
	return func(b *builderState) { b.sensitiveHeaders = append([]string{}, headers...) }
}

// WithMaxStringBytes bounds the string size the sanitizer pattern-scans.
func WithMaxStringBytes(n int) Option {
	return func(b *builderState) { b.maxStringBytes = &n }
}

// WithMaxDepth bounds the nesting depth the sanitizer descends into.
func WithMaxDepth(n int) Option {
	return func(b *builderState) { b.maxDepth = &n }
}

// WithMaxArrayLength bounds the number of array elements retained per array.
func WithMaxArrayLength(n int) Option {
	return func(b *builderState) { b.maxArrayLength = &n }
}

// WithMaxBodyBytes bounds the number of body bytes buffered for logging.
func WithMaxBodyBytes(n int) Option {
	return func(b *builderState) { b.maxBodyBytes = &n }
}

// WithBodyLogging toggles request/response body capture.
func WithBodyLogging(enabled bool) Option {
	return func(b *builderState) { b.bodyLogging = &enabled }
}

// WithBackend installs a custom Backend, replacing the one implied by the
// configured output format.
func WithBackend(backend Backend) Option {
	return func(b *builderState) { b.backend = backend }
}

// apply merges the builder state into a config resolved from the environment.
func (b *builderState) apply(cfg *Config) {
	if b.level != nil {
		cfg.Level = *b.level
	}
	if b.format != nil {
		cfg.Format = *b.format
	}
	if b.schema != nil {
		cfg.Schema = *b.schema
	}
	if b.projectID != nil {
		cfg.ProjectID = *b.projectID
	}
	if b.serviceName != nil {
		cfg.ServiceName = *b.serviceName
	}
	if len(b.sensitiveFields) > 0 {
		cfg.SensitiveFields = append(cfg.SensitiveFields, b.sensitiveFields...)
	}
	if b.sensitiveHeaders != nil {
		cfg.SensitiveHeaders = b.sensitiveHeaders
	}
	if b.maxStringBytes != nil && *b.maxStringBytes > 0 {
		cfg.MaxStringBytes = *b.maxStringBytes
	}
	if b.maxDepth != nil && *b.maxDepth > 0 {
		cfg.MaxDepth = *b.maxDepth
	}
	if b.maxArrayLength != nil && *b.maxArrayLength > 0 {
		cfg.MaxArrayLength = *b.maxArrayLength
	}
	if b.maxBodyBytes != nil && *b.maxBodyBytes > 0 {
		cfg.MaxBodyBytes = *b.maxBodyBytes
	}
	if b.bodyLogging != nil {
		cfg.BodyLogging = *b.bodyLogging
	}
}
