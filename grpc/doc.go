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

// Package grpc carries amlog request correlation across gRPC boundaries.
//
// [UnaryServerInterceptor] builds the ambient request context from incoming
// metadata and logs each RPC's completion with a severity derived from the
// status code. [UnaryClientInterceptor] injects a child span's trace headers
// into outgoing metadata so downstream services join the same trace.
//
// [ServerOptions] and [DialOptions] bundle the interceptors with optional
// otelgrpc stats handlers so servers and clients get RPC spans alongside the
// log records with one option set.
package grpc
