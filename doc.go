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

// Package amlog produces structured, redacted, trace-correlated log records
// for HTTP services and renders them in either the Google Cloud Logging or
// the AWS CloudWatch schema.
//
// The package has three cooperating parts:
//
//   - A trace-context engine ([TraceContext]) that parses, validates,
//     generates, and serializes correlation identifiers across the W3C
//     traceparent/tracestate, Google X-Cloud-Trace-Context, and AWS
//     X-Amzn-Trace-Id wire formats. Every parser is total: a malformed header
//     from an untrusted client yields a freshly generated context instead of
//     an error, trading a broken trace chain for an unbroken request.
//
//   - A recursive sanitization pipeline ([Sanitizer]) that redacts sensitive
//     field values by name and by pattern (credit cards, SSNs, emails,
//     base64/image payloads) while bounding recursion depth, array length,
//     and string size against attacker-controlled inputs.
//
//   - A per-request logging facade ([Logger]) whose severity methods merge
//     the ambient [RequestContext] (request id, trace id, span id, service
//     name) into every record before rendering it for the configured cloud
//     and handing it to a pluggable [Backend].
//
// Request scoping rides on context.Context: the http middleware installs a
// [RequestContext] once per inbound request, and any code executing within
// that request (including spawned goroutines that inherit the context)
// retrieves it with [RequestFromContext]. Concurrent requests never observe
// each other's identifiers.
//
// Configuration is resolved once at startup from the environment (LOG_LEVEL,
// LOG_FORMAT, LOG_TYPE, PROJECT_ID, SERVICE_NAME, and the redaction and size
// limit knobs) and may be overridden programmatically with functional
// options. Nothing mutates configuration after [New] returns.
//
// Logging never alters the HTTP response delivered to the client; the only
// externally visible effect is the set of trace propagation headers added to
// responses.
package amlog
