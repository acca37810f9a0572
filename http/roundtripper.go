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
	stdhttp "net/http"
	"time"

	amlog "github.com/ambak-fintech/ambak-express-logger"
)

// Transport is an http.RoundTripper that propagates trace context on
// outbound requests. For each call it derives a child span from the ambient
// request context (minting a fresh context when none is present), injects
// the propagation headers appropriate for the configured schema, and leaves
// the original request untouched by operating on a clone.
//
// Wrap an http.Client with it:
//
//	client := &http.Client{Transport: &amloghttp.Transport{Logger: logger}}
type Transport struct {
	// Base performs the actual round trip. http.DefaultTransport when nil.
	Base stdhttp.RoundTripper

	// Logger supplies schema configuration and, when set, receives a debug
	// record per outbound call.
	Logger *amlog.Logger
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *stdhttp.Request) (*stdhttp.Response, error) {
	base := t.Base
	if base == nil {
		base = stdhttp.DefaultTransport
	}

	schema := amlog.SchemaGCP
	if t.Logger != nil {
		schema = t.Logger.Config().Schema
	}

	ctx := req.Context()
	parent := amlog.RequestFromContext(ctx)
	child := parent.Child()
	if child.Trace().IsZero() {
		child = amlog.NewRequestContext(stdhttp.Header{}, &amlog.Config{Schema: schema})
	}

	out := req.Clone(amlog.ContextWithRequest(ctx, child))
	injectTraceHeaders(out.Header, child, schema)

	start := time.Now()
	resp, err := base.RoundTrip(out)

	if t.Logger != nil && t.Logger.Enabled(amlog.LevelDebug) {
		fields := amlog.Record{
			"outboundMethod": out.Method,
			"outboundUrl":    out.URL.String(),
			"latencyMs":      float64(time.Since(start).Microseconds()) / 1000.0,
		}
		if err != nil {
			fields["outboundError"] = err.Error()
		} else if resp != nil {
			fields["outboundStatus"] = resp.StatusCode
		}
		t.Logger.Debug(out.Context(), "outbound request", fields)
	}
	return resp, err
}

// injectTraceHeaders writes the propagation headers for an outbound call.
func injectTraceHeaders(h stdhttp.Header, rc *amlog.RequestContext, schema amlog.SchemaType) {
	h.Set(amlog.HeaderRequestID, rc.RequestID())

	tc := rc.Trace()
	if tc.IsZero() {
		return
	}
	if schema == amlog.SchemaAWS {
		h.Set(amlog.HeaderAWSTrace, tc.AWSTraceID())
		return
	}
	h.Set(amlog.HeaderTraceParent, tc.TraceParent())
	if state := tc.State().String(); state != "" {
		h.Set(amlog.HeaderTraceState, state)
	}
	h.Set(amlog.HeaderCloudTrace, tc.CloudTrace())
}
