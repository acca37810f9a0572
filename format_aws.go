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
	"strings"
	"time"
)

// awsDefaultType tags records that carry no explicit type.
const awsDefaultType = "application"

// Request fields the AWS renderer lifts to the top level, preferring flat
// fields already present over the nested httpRequest object.
var awsRequestKeys = []string{
	"method",
	"url",
	"path",
	"params",
	"remoteAddress",
	"headers",
	"request_payload",
}

// formatAWS renders a raw record into the AWS CloudWatch schema. It
// guarantees severity, timestamp, type, and requestId are present, converts
// the trace id into X-Ray shape alongside a composite X-Amzn-Trace-Id string
// and a sampled boolean, flattens request fields, and deletes every
// GCP-specific key. The deletion runs unconditionally on each pass because
// upstream enrichment steps may have re-added those keys.
func formatAWS(rec Record, cfg *Config) Record {
	out := make(Record, len(rec)+4)
	for k, v := range rec {
		out[k] = v
	}

	out["severity"] = extractLevel(rec).Bucket()
	delete(out, "level")
	delete(out, "levelName")

	if ts, ok := out["timestamp"].(string); !ok || ts == "" {
		out["timestamp"] = time.Now().UTC().Format(time.RFC3339Nano)
	}
	if t, ok := out["type"].(string); !ok || t == "" {
		out["type"] = awsDefaultType
	}
	if id, ok := out["requestId"].(string); !ok || id == "" {
		out["requestId"] = NewRequestID()
	}

	if traceID, ok := out["traceId"].(string); ok && traceID != "" {
		xray := XRayTraceID(traceID)
		out["traceId"] = xray

		sampled := true
		if b, ok := out["sampled"].(bool); ok {
			sampled = b
		}
		out["sampled"] = sampled

		spanID, _ := out["spanId"].(string)
		if spanID == "" {
			spanID = randHex(8)
			out["spanId"] = spanID
		}
		out["xAmznTraceId"] = fmt.Sprintf("Root=%s;Parent=%s;Sampled=%d", xray, spanID, boolBit(sampled))
	}

	if hr, ok := out["httpRequest"].(map[string]any); ok {
		for _, key := range awsRequestKeys {
			if _, present := out[key]; present {
				continue
			}
			if v, present := hr[key]; present {
				out[key] = v
			}
		}
		delete(out, "httpRequest")
	}

	for key := range out {
		if strings.HasPrefix(key, "logging.googleapis.com/") {
			delete(out, key)
		}
	}
	delete(out, "resource")

	return out
}

func boolBit(b bool) int {
	if b {
		return 1
	}
	return 0
}
