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
	"context"
	"net/http"
	"time"
)

// Logger renders structured records for the configured cloud schema and
// hands them to a Backend. All methods are safe for concurrent use; the
// logger holds no per-request state, which instead travels in the ambient
// RequestContext.
//
// Every severity method augments caller-supplied fields with the ambient
// request id, trace id, span id, and service name before handing off, and
// runs all fields through the sanitizer. Logging never panics outward and
// never alters the request being handled.
type Logger struct {
	cfg       Config
	registry  *SensitiveFieldRegistry
	sanitizer *Sanitizer
	backend   Backend
}

// New creates a Logger using a three-tier configuration strategy: built-in
// defaults first, environment variables on top, programmatic options last.
func New(opts ...Option) *Logger {
	cfg := LoadConfig()

	state := &builderState{}
	for _, opt := range opts {
		if opt != nil {
			opt(state)
		}
	}
	state.apply(&cfg)

	backend := state.backend
	if backend == nil {
		backend = newBackend(&cfg)
	}
	return NewWithConfig(cfg, backend)
}

// NewWithConfig creates a Logger from an already resolved configuration,
// bypassing the environment. A nil backend selects the default for the
// configured output format. Zero or negative sanitizer bounds are replaced
// with the package defaults so a sparsely populated Config cannot disable
// sanitization limits by accident.
func NewWithConfig(cfg Config, backend Backend) *Logger {
	normalizeBounds(&cfg)
	if backend == nil {
		backend = newBackend(&cfg)
	}
	registry := NewSensitiveFieldRegistry(cfg.SensitiveFields, cfg.SensitiveHeaders)
	return &Logger{
		cfg:       cfg,
		registry:  registry,
		sanitizer: NewSanitizer(registry, &cfg),
		backend:   backend,
	}
}

// normalizeBounds replaces unset bounds with the package defaults.
func normalizeBounds(cfg *Config) {
	if cfg.MaxStringBytes <= 0 {
		cfg.MaxStringBytes = defaultMaxStringBytes
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = defaultMaxDepth
	}
	if cfg.MaxArrayLength <= 0 {
		cfg.MaxArrayLength = defaultMaxArrayLength
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}
}

// Config returns a copy of the resolved configuration.
func (l *Logger) Config() Config { return l.cfg }

// Sanitizer exposes the logger's sanitizer for callers that redact data
// outside the logging path.
func (l *Logger) Sanitizer() *Sanitizer { return l.sanitizer }

// Enabled reports whether records at the given level would be emitted.
func (l *Logger) Enabled(level Level) bool { return level >= l.cfg.Level }

// Trace logs at trace severity.
func (l *Logger) Trace(ctx context.Context, msg string, fields Record) {
	l.log(ctx, LevelTrace, msg, fields)
}

// Debug logs at debug severity.
func (l *Logger) Debug(ctx context.Context, msg string, fields Record) {
	l.log(ctx, LevelDebug, msg, fields)
}

// Info logs at info severity.
func (l *Logger) Info(ctx context.Context, msg string, fields Record) {
	l.log(ctx, LevelInfo, msg, fields)
}

// Warn logs at warn severity.
func (l *Logger) Warn(ctx context.Context, msg string, fields Record) {
	l.log(ctx, LevelWarn, msg, fields)
}

// Error logs at error severity.
func (l *Logger) Error(ctx context.Context, msg string, fields Record) {
	l.log(ctx, LevelError, msg, fields)
}

// Fatal logs at fatal severity. Unlike log.Fatal it does not terminate the
// process: the logger observes requests, it does not own the process
// lifecycle.
func (l *Logger) Fatal(ctx context.Context, msg string, fields Record) {
	l.log(ctx, LevelFatal, msg, fields)
}

// LogRequest emits the pre-handler record for an inbound request. body, when
// body logging is enabled, carries the already-read request payload.
func (l *Logger) LogRequest(ctx context.Context, r *http.Request, body []byte) {
	if !l.Enabled(LevelInfo) {
		return
	}
	defer l.recoverEmit(LevelInfo)

	rc := RequestFromContext(ctx)
	rec := l.baseRecord(rc, LevelInfo, "request received")
	if !l.cfg.BodyLogging {
		body = nil
	}
	if hr := l.buildHTTPRequest(r, body); hr != nil {
		rec["httpRequest"] = hr
	}
	l.backend.Emit(LevelInfo, l.render(rec))
}

// LogResponse emits the completion record for a request. The severity is
// derived from the status code: 5xx logs at error, 4xx at warn, everything
// else at info.
func (l *Logger) LogResponse(ctx context.Context, r *http.Request, status int, size int64, latency time.Duration, headers http.Header, body []byte) {
	level := LevelFromStatus(status)
	if !l.Enabled(level) {
		return
	}
	defer l.recoverEmit(level)

	rc := RequestFromContext(ctx)
	rec := l.baseRecord(rc, level, "request completed")
	if !l.cfg.BodyLogging {
		body = nil
	}
	for k, v := range l.buildResponseFields(status, size, latency, headers, body) {
		rec[k] = v
	}
	if hr := l.buildHTTPRequest(r, nil); hr != nil {
		rec["httpRequest"] = hr
	}
	l.backend.Emit(level, l.render(rec))
}

// LogError emits an error record for a failed request, including the error
// type, message, code, stack, and HTTP status. The error itself is not
// altered or swallowed; callers re-raise it after logging.
func (l *Logger) LogError(ctx context.Context, err error, status int) {
	if err == nil || !l.Enabled(LevelError) {
		return
	}
	defer l.recoverEmit(LevelError)

	rc := RequestFromContext(ctx)
	rec := l.baseRecord(rc, LevelError, err.Error())
	for k, v := range l.buildErrorFields(err, status) {
		rec[k] = v
	}
	l.backend.Emit(LevelError, l.render(rec))
}

// log is the shared path behind the six severity methods.
func (l *Logger) log(ctx context.Context, level Level, msg string, fields Record) {
	if !l.Enabled(level) {
		return
	}
	defer l.recoverEmit(level)

	rc := RequestFromContext(ctx)
	rec := l.baseRecord(rc, level, msg)

	if len(fields) > 0 {
		sanitized, _ := l.sanitizer.Body(map[string]any(fields)).(map[string]any)
		for k, v := range sanitized {
			// Envelope and ambient identifiers win over caller fields.
			if _, reserved := rec[k]; reserved {
				continue
			}
			rec[k] = v
		}
	}
	l.backend.Emit(level, l.render(rec))
}

// render shapes the raw record into the active cloud schema.
func (l *Logger) render(rec Record) Record {
	if l.cfg.Schema == SchemaAWS {
		return formatAWS(rec, &l.cfg)
	}
	return formatGCP(rec, &l.cfg)
}

// recoverEmit guarantees that a panicking formatter or backend cannot crash
// the request path. The failure itself is reported through the backend with
// a minimal, always-serializable record.
func (l *Logger) recoverEmit(level Level) {
	if r := recover(); r != nil {
		func() {
			defer func() { _ = recover() }()
			l.backend.Emit(level, Record{
				"severity": LevelError.Bucket(),
				"message":  "[LOGGING FAILURE]",
				"reason":   toString(r),
			})
		}()
	}
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if err, ok := v.(error); ok {
		return err.Error()
	}
	return "panic"
}
