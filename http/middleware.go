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
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	stdhttp "net/http"

	amlog "github.com/ambak-fintech/ambak-express-logger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/ambak-fintech/ambak-express-logger/http"

// Middleware returns an http.Handler middleware that installs the ambient
// request context, adds trace propagation headers to the response, logs the
// request on entry and the response on completion, and logs (then re-raises)
// handler panics.
//
// Trace context selection follows the configured schema: AWS mode reads
// X-Amzn-Trace-Id, otherwise X-Cloud-Trace-Context is preferred, then W3C
// traceparent, with a fresh context generated when no header is usable. A
// malformed header never fails the request.
func Middleware(logger *amlog.Logger, opts ...Option) func(stdhttp.Handler) stdhttp.Handler {
	amlog.EnsurePropagation()

	cfg := logger.Config()
	options := applyOptions(opts)

	return func(next stdhttp.Handler) stdhttp.Handler {
		if next == nil {
			next = stdhttp.NotFoundHandler()
		}

		loggingHandler := stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
			rc := amlog.NewRequestContext(r.Header, &cfg)

			ctx := amlog.ContextWithRequest(r.Context(), rc)
			// Surface the correlation ids to OTel-instrumented code unless a
			// span is already active (otelhttp wrapping or an upstream SDK).
			if !trace.SpanContextFromContext(ctx).IsValid() {
				if sc, ok := rc.Trace().SpanContext(); ok {
					ctx = trace.ContextWithRemoteSpanContext(ctx, sc)
				}
			}
			r = r.WithContext(ctx)

			writeTraceHeaders(w.Header(), rc, cfg.Schema)

			if !shouldLog(options, r) {
				next.ServeHTTP(w, r)
				return
			}

			var requestBody []byte
			if cfg.BodyLogging && r.Body != nil && r.Body != stdhttp.NoBody {
				requestBody, r.Body = peekBody(r.Body, cfg.MaxBodyBytes)
			}
			logger.LogRequest(ctx, r, requestBody)

			recorder := newResponseRecorder(w, cfg.BodyLogging, cfg.MaxBodyBytes)

			defer func() {
				if p := recover(); p != nil {
					logger.LogError(ctx, recoveredError(p), stdhttp.StatusInternalServerError)
					panic(p)
				}
			}()

			start := time.Now()
			next.ServeHTTP(recorder, r)

			logger.LogResponse(ctx, r, recorder.Status(), recorder.BytesWritten(),
				time.Since(start), w.Header(), recorder.Body())
		})

		handlerChain := stdhttp.Handler(loggingHandler)
		if options.EnableOTel {
			otelOpts := []otelhttp.Option{}
			if options.TracerProvider != nil {
				otelOpts = append(otelOpts, otelhttp.WithTracerProvider(options.TracerProvider))
			}
			if options.Propagators != nil {
				otelOpts = append(otelOpts, otelhttp.WithPropagators(options.Propagators))
			}
			handlerChain = otelhttp.NewHandler(handlerChain, instrumentationName, otelOpts...)
		}
		return handlerChain
	}
}

// writeTraceHeaders sets the propagation headers on the response. The
// request id header is always present; trace headers follow the configured
// schema.
func writeTraceHeaders(h stdhttp.Header, rc *amlog.RequestContext, schema amlog.SchemaType) {
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

// shouldLog applies the skip-path substrings and the caller predicate.
func shouldLog(o *MiddlewareOptions, r *stdhttp.Request) bool {
	path := r.URL.Path
	for _, sub := range o.SkipPathSubstrings {
		if strings.Contains(path, sub) {
			return false
		}
	}
	if o.ShouldLog != nil {
		return o.ShouldLog(r.Context(), r)
	}
	return true
}

// peekBody reads up to limit bytes from body and returns the captured prefix
// together with a replacement reader that delivers the original stream to
// the handler untouched.
func peekBody(body io.ReadCloser, limit int) ([]byte, io.ReadCloser) {
	buf := make([]byte, limit)
	n, _ := io.ReadFull(body, buf)
	captured := buf[:n]

	return captured, &replayReader{
		Reader: io.MultiReader(bytes.NewReader(captured), body),
		closer: body,
	}
}

// replayReader re-serves captured bytes ahead of the remaining stream while
// preserving the original Close behavior.
type replayReader struct {
	io.Reader
	closer io.Closer
}

func (r *replayReader) Close() error { return r.closer.Close() }

// recoveredError normalizes a recovered panic value into an error for the
// error record.
func recoveredError(p any) error {
	if err, ok := p.(error); ok {
		return err
	}
	return fmt.Errorf("panic: %v", p)
}
