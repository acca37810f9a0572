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
	amlog "github.com/ambak-fintech/ambak-express-logger"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
)

// InterceptorOptions controls the option helpers below.
type InterceptorOptions struct {
	// EnableOTel installs otelgrpc stats handlers so an RPC span is created
	// per call in addition to logging.
	EnableOTel     bool
	TracerProvider trace.TracerProvider
	Propagators    propagation.TextMapPropagator
}

// Option mutates InterceptorOptions.
type Option func(*InterceptorOptions)

// WithOTel enables otelgrpc stats-handler instrumentation.
func WithOTel(enable bool) Option {
	return func(o *InterceptorOptions) { o.EnableOTel = enable }
}

// WithTracerProvider sets the tracer provider used when OTel instrumentation
// is enabled.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *InterceptorOptions) { o.TracerProvider = tp }
}

// WithPropagators sets the propagators used when OTel instrumentation is
// enabled.
func WithPropagators(p propagation.TextMapPropagator) Option {
	return func(o *InterceptorOptions) { o.Propagators = p }
}

// ServerOptions returns grpc.ServerOptions that chain the logging
// interceptor and, when enabled, install an otelgrpc server stats handler.
func ServerOptions(logger *amlog.Logger, opts ...Option) []grpc.ServerOption {
	resolved := applyOptions(opts)

	var serverOpts []grpc.ServerOption
	if resolved.EnableOTel {
		serverOpts = append(serverOpts,
			grpc.StatsHandler(otelgrpc.NewServerHandler(statsHandlerOptions(resolved)...)))
	}
	return append(serverOpts, grpc.ChainUnaryInterceptor(UnaryServerInterceptor(logger)))
}

// DialOptions returns grpc.DialOptions that chain the propagating client
// interceptor and, when enabled, install an otelgrpc client stats handler.
func DialOptions(logger *amlog.Logger, opts ...Option) []grpc.DialOption {
	resolved := applyOptions(opts)

	var dialOpts []grpc.DialOption
	if resolved.EnableOTel {
		dialOpts = append(dialOpts,
			grpc.WithStatsHandler(otelgrpc.NewClientHandler(statsHandlerOptions(resolved)...)))
	}
	return append(dialOpts, grpc.WithChainUnaryInterceptor(UnaryClientInterceptor(logger)))
}

func applyOptions(opts []Option) *InterceptorOptions {
	var resolved InterceptorOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&resolved)
		}
	}
	return &resolved
}

// statsHandlerOptions translates the resolved options into otelgrpc options.
func statsHandlerOptions(o *InterceptorOptions) []otelgrpc.Option {
	var opts []otelgrpc.Option
	if o.TracerProvider != nil {
		opts = append(opts, otelgrpc.WithTracerProvider(o.TracerProvider))
	}
	if o.Propagators != nil {
		opts = append(opts, otelgrpc.WithPropagators(o.Propagators))
	}
	return opts
}
