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
	"fmt"
	"net"
	"net/http"
	"os"
	"sync"
	"time"
)

// Record is a transient log record assembled just-in-time for one log call.
// It is consumed immediately by the schema renderer and handed to the
// backend; records are never stored or reused.
type Record map[string]any

var (
	hostnameOnce   sync.Once
	cachedHostname string
)

func processHostname() string {
	hostnameOnce.Do(func() {
		cachedHostname, _ = os.Hostname()
	})
	return cachedHostname
}

// baseRecord assembles the common envelope: severity fields, timestamp,
// message, process info, and the ambient correlation identifiers from rc.
// pid, hostname, and the raw level fields are transport-internal and are
// stripped by the schema renderers after extracting what they need.
func (l *Logger) baseRecord(rc *RequestContext, level Level, msg string) Record {
	rec := Record{
		"level":     int(level),
		"levelName": level.String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"message":   msg,
		"pid":       os.Getpid(),
		"hostname":  processHostname(),
	}
	if l.cfg.ServiceName != "" {
		rec["serviceName"] = l.cfg.ServiceName
	}
	if rc != nil {
		if rc.RequestID() != "" {
			rec["requestId"] = rc.RequestID()
		}
		if tc := rc.Trace(); !tc.IsZero() {
			rec["traceId"] = tc.TraceID()
			rec["spanId"] = tc.SpanID()
			rec["sampled"] = tc.Sampled()
		}
	}
	return rec
}

// buildHTTPRequest captures request metadata into the httpRequest sub-object
// shared by both schemas. Headers and query parameters pass through the
// sanitizer; the body, when provided, is sanitized field-by-field.
func (l *Logger) buildHTTPRequest(r *http.Request, body []byte) map[string]any {
	if r == nil {
		return nil
	}

	hr := map[string]any{
		"method":        r.Method,
		"url":           requestURL(r),
		"path":          r.URL.Path,
		"remoteIp":      remoteIP(r.RemoteAddr),
		"remoteAddress": r.RemoteAddr,
	}
	if r.ContentLength > 0 {
		hr["size"] = r.ContentLength
	}
	if ua := r.UserAgent(); ua != "" {
		hr["userAgent"] = ua
	}
	if params := flattenQuery(r); len(params) > 0 {
		hr["params"] = l.sanitizer.Body(params)
	}
	hr["headers"] = l.sanitizer.Headers(flattenHeaders(r.Header))
	if len(body) > 0 {
		hr["request_payload"] = l.sanitizer.Body(string(body))
	}
	return hr
}

// buildResponseFields captures response metadata for the completion record.
func (l *Logger) buildResponseFields(status int, size int64, latency time.Duration, headers http.Header, body []byte) Record {
	rec := Record{
		"status":    status,
		"latencyMs": float64(latency.Microseconds()) / 1000.0,
	}
	if size >= 0 {
		rec["responseSize"] = size
	}
	if len(headers) > 0 {
		rec["responseHeaders"] = l.sanitizer.Headers(flattenHeaders(headers))
	}
	if len(body) > 0 {
		rec["response_payload"] = l.sanitizer.Body(string(body))
	}
	return rec
}

// buildErrorFields renders err into the error sub-object carried by error
// records: type, message, code, stack, and HTTP status.
func (l *Logger) buildErrorFields(err error, status int) Record {
	if err == nil {
		return nil
	}
	errInfo := map[string]any{
		"type":    fmt.Sprintf("%T", err),
		"message": err.Error(),
	}
	if code := errorCode(err); code != 0 {
		errInfo["code"] = code
	}
	if status > 0 {
		errInfo["status"] = status
	}
	if stack := errorStack(err); stack != "" {
		errInfo["stack"] = stack
	}
	return Record{"error": errInfo}
}

// errorCode extracts a numeric code from errors that expose one.
func errorCode(err error) int {
	if coder, ok := err.(interface{ Code() int }); ok {
		return coder.Code()
	}
	if coder, ok := err.(interface{ StatusCode() int }); ok {
		return coder.StatusCode()
	}
	return 0
}

// requestURL reconstructs the full request URL including scheme and host.
func requestURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if r.URL.Scheme != "" {
		scheme = r.URL.Scheme
	}
	host := r.Host
	if host == "" {
		host = r.URL.Host
	}
	return scheme + "://" + host + r.URL.RequestURI()
}

// remoteIP strips the port from a host:port remote address.
func remoteIP(addr string) string {
	if addr == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

// flattenHeaders collapses a multi-value header map into first-value form
// for logging.
func flattenHeaders(h http.Header) map[string]string {
	if len(h) == 0 {
		return nil
	}
	out := make(map[string]string, len(h))
	for name, values := range h {
		if len(values) > 0 {
			out[name] = values[0]
		}
	}
	return out
}

// flattenQuery collapses query parameters into first-value form.
func flattenQuery(r *http.Request) map[string]any {
	query := r.URL.Query()
	if len(query) == 0 {
		return nil
	}
	out := make(map[string]any, len(query))
	for name, values := range query {
		if len(values) > 0 {
			out[name] = values[0]
		}
	}
	return out
}
