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
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type contextKey int

const requestContextKey contextKey = iota

// RequestContext is the per-request aggregate: a request id, the owned
// TraceContext, the start time, and free-form metadata handlers may attach.
// It is created once at the request entry boundary and lives exactly as long
// as the context.Context it is installed into; it is never persisted.
type RequestContext struct {
	requestID string
	trace     TraceContext
	start     time.Time

	mu       sync.RWMutex
	metadata map[string]any
}

// NewRequestContext builds a RequestContext from inbound headers. Exactly one
// trace-parsing strategy is selected based on the configured schema and
// header presence: in AWS mode the X-Amzn-Trace-Id header wins, falling back
// to a synthesized AWS-shaped context; otherwise X-Cloud-Trace-Context is
// preferred, then W3C traceparent, then a fresh context. The tracestate
// header is parsed unconditionally afterwards regardless of which header
// supplied the trace id.
func NewRequestContext(headers http.Header, cfg *Config) *RequestContext {
	schema := SchemaGCP
	if cfg != nil {
		schema = cfg.Schema
	}

	var tc TraceContext
	if schema == SchemaAWS {
		if h := headers.Get(HeaderAWSTrace); h != "" {
			tc = ParseAWSTraceID(h)
		} else {
			tc = NewTraceContext(SchemaAWS)
		}
	} else {
		switch {
		case headers.Get(HeaderCloudTrace) != "":
			tc = ParseCloudTrace(headers.Get(HeaderCloudTrace))
		case headers.Get(HeaderTraceParent) != "":
			tc = ParseTraceParent(headers.Get(HeaderTraceParent))
		default:
			tc = NewTraceContext(SchemaGCP)
		}
	}
	if state := ParseTraceState(headers.Get(HeaderTraceState)); state != nil {
		tc = tc.WithState(state)
	}

	requestID := strings.TrimSpace(headers.Get(HeaderRequestID))
	if requestID == "" {
		requestID = NewRequestID()
	}

	return &RequestContext{
		requestID: requestID,
		trace:     tc,
		start:     time.Now(),
		metadata:  make(map[string]any),
	}
}

// NewRequestID mints a short random hex token suitable as a request id.
func NewRequestID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}

// RequestID returns the id stable for the request's lifetime.
func (rc *RequestContext) RequestID() string { return rc.requestID }

// Trace returns the owned TraceContext.
func (rc *RequestContext) Trace() TraceContext { return rc.trace }

// Start returns the creation time of the context.
func (rc *RequestContext) Start() time.Time { return rc.start }

// Elapsed returns the time since the context was created, measured on the
// monotonic clock.
func (rc *RequestContext) Elapsed() time.Duration { return time.Since(rc.start) }

// SetMetadata attaches a key/value pair to the request. Metadata is never
// logged automatically.
func (rc *RequestContext) SetMetadata(key string, value any) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if rc.metadata == nil {
		rc.metadata = make(map[string]any)
	}
	rc.metadata[key] = value
}

// Metadata returns the value stored under key.
func (rc *RequestContext) Metadata(key string) (any, bool) {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	v, ok := rc.metadata[key]
	return v, ok
}

// Child derives a context for an outbound call: the request id is shared and
// the trace context becomes a child span. Metadata is not inherited.
func (rc *RequestContext) Child() *RequestContext {
	return &RequestContext{
		requestID: rc.requestID,
		trace:     rc.trace.CreateChildSpan(),
		start:     time.Now(),
		metadata:  make(map[string]any),
	}
}

// ContextWithRequest installs rc as the ambient request context. Any code
// executing within the returned context's lifetime, including goroutines it
// is handed to, can retrieve rc with RequestFromContext.
func ContextWithRequest(ctx context.Context, rc *RequestContext) context.Context {
	if ctx == nil || rc == nil {
		return ctx
	}
	return context.WithValue(ctx, requestContextKey, rc)
}

// RequestFromContext retrieves the ambient request context. Outside any
// request scope it returns a context with empty identifiers rather than nil,
// so callers never need to guard against absence.
func RequestFromContext(ctx context.Context) *RequestContext {
	if ctx != nil {
		if rc, ok := ctx.Value(requestContextKey).(*RequestContext); ok && rc != nil {
			return rc
		}
	}
	return &RequestContext{start: time.Now(), metadata: make(map[string]any)}
}

// HasRequest reports whether ctx carries an ambient request context.
func HasRequest(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	rc, ok := ctx.Value(requestContextKey).(*RequestContext)
	return ok && rc != nil
}
