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

// Package http integrates amlog with net/http servers and clients.
//
// [Middleware] installs the per-request ambient context, adds trace
// propagation headers to responses, and emits the request, response, and
// error records. [Transport] is an http.RoundTripper that propagates a child
// span's headers on outbound calls.
//
// The middleware never alters the bytes, ordering, or status delivered to
// the client; body capture for logging buffers a bounded copy of the stream
// while passing writes through unmodified.
package http
