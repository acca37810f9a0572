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
	"os"
	"strconv"
	"strings"
	"sync"

	gcppropagator "github.com/GoogleCloudPlatform/opentelemetry-operations-go/propagator"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

var installPropagatorOnce sync.Once

// EnsurePropagation configures a composite OpenTelemetry text map propagator
// that prefers the W3C Trace Context headers while accepting Google Cloud's
// legacy X-Cloud-Trace-Context header on ingress. The configuration is
// applied exactly once per process unless AMLOG_DISABLE_PROPAGATOR_AUTOSET
// is set to a truthy value.
//
// This keeps OTel-instrumented code in the same process agreeing with the
// logger about which trace a request belongs to. Applications remain free to
// override the global propagator afterwards with otel.SetTextMapPropagator.
func EnsurePropagation() {
	installPropagatorOnce.Do(func() {
		if propagatorAutoSetDisabled() {
			return
		}
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			gcppropagator.CloudTraceOneWayPropagator{},
			propagation.TraceContext{},
			propagation.Baggage{},
		))
	})
}

// propagatorAutoSetDisabled reports whether automatic propagator
// installation is disabled via the environment.
func propagatorAutoSetDisabled() bool {
	raw := strings.TrimSpace(os.Getenv("AMLOG_DISABLE_PROPAGATOR_AUTOSET"))
	if raw == "" {
		return false
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false
	}
	return b
}
