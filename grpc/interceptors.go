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

package grpc

import (
	"context"
	"net/http"
	"time"

	amlog "github.com/ambak-fintech/ambak-express-logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// UnaryServerInterceptor returns a grpc.UnaryServerInterceptor that installs
// the ambient request context from incoming metadata and logs each RPC on
// completion. Trace headers are read with the same precedence as the HTTP
// middleware; a missing or malformed header yields a fresh trace context.
func UnaryServerInterceptor(logger *amlog.Logger) grpc.UnaryServerInterceptor {
	cfg := logger.Config()

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		rc := amlog.NewRequestContext(headersFromIncoming(ctx), &cfg)
		ctx = amlog.ContextWithRequest(ctx, rc)

		start := time.Now()
		resp, err := handler(ctx, req)

		code := status.Code(err)
		fields := amlog.Record{
			"rpcMethod": info.FullMethod,
			"rpcCode":   code.String(),
			"latencyMs": float64(time.Since(start).Microseconds()) / 1000.0,
		}
		if err != nil {
			fields["rpcError"] = err.Error()
		}

		switch level := levelFromCode(code); level {
		case amlog.LevelError:
			logger.Error(ctx, "rpc completed", fields)
		case amlog.LevelWarn:
			logger.Warn(ctx, "rpc completed", fields)
		default:
			logger.Info(ctx, "rpc completed", fields)
		}
		return resp, err
	}
}

// UnaryClientInterceptor returns a grpc.UnaryClientInterceptor that derives a
// child span from the ambient request context and injects its trace headers
// into the outgoing metadata.
func UnaryClientInterceptor(logger *amlog.Logger) grpc.UnaryClientInterceptor {
	schema := amlog.SchemaGCP
	if logger != nil {
		schema = logger.Config().Schema
	}

	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		child := amlog.RequestFromContext(ctx).Child()
		if child.Trace().IsZero() {
			child = amlog.NewRequestContext(http.Header{}, &amlog.Config{Schema: schema})
		}

		ctx = metadata.AppendToOutgoingContext(ctx, outgoingPairs(child, schema)...)
		ctx = amlog.ContextWithRequest(ctx, child)
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// headersFromIncoming converts incoming gRPC metadata into an http.Header so
// the shared trace parsing applies unchanged. Metadata keys are already
// lowercase; http.Header canonicalizes on Get, so values are set through the
// canonical form.
func headersFromIncoming(ctx context.Context) http.Header {
	h := http.Header{}
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return h
	}
	for key, values := range md {
		if len(values) == 0 {
			continue
		}
		h.Set(key, values[0])
	}
	return h
}

// outgoingPairs lists the metadata key/value pairs for an outbound RPC.
func outgoingPairs(rc *amlog.RequestContext, schema amlog.SchemaType) []string {
	pairs := []string{amlog.HeaderRequestID, rc.RequestID()}

	tc := rc.Trace()
	if tc.IsZero() {
		return pairs
	}
	if schema == amlog.SchemaAWS {
		return append(pairs, amlog.HeaderAWSTrace, tc.AWSTraceID())
	}
	pairs = append(pairs, amlog.HeaderTraceParent, tc.TraceParent())
	if state := tc.State().String(); state != "" {
		pairs = append(pairs, amlog.HeaderTraceState, state)
	}
	return append(pairs, amlog.HeaderCloudTrace, tc.CloudTrace())
}

// levelFromCode maps a gRPC status code onto a log severity, mirroring the
// HTTP status mapping: server-side failures log at error, caller mistakes at
// warn, success at info.
func levelFromCode(code codes.Code) amlog.Level {
	switch code {
	case codes.OK:
		return amlog.LevelInfo
	case codes.InvalidArgument, codes.NotFound, codes.AlreadyExists,
		codes.PermissionDenied, codes.Unauthenticated, codes.FailedPrecondition,
		codes.OutOfRange, codes.Canceled:
		return amlog.LevelWarn
	default:
		return amlog.LevelError
	}
}
