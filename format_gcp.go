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

import "fmt"

// Structured payload keys recognized by Google Cloud Logging for automatic
// correlation with Cloud Trace.
const (
	gcpTraceKey   = "logging.googleapis.com/trace"
	gcpSpanKey    = "logging.googleapis.com/spanId"
	gcpSampledKey = "logging.googleapis.com/trace_sampled"
	gcpLabelsKey  = "logging.googleapis.com/labels"
)

// httpRequest keys preserved by the GCP renderer, mapped onto the canonical
// Cloud Logging httpRequest field names. Everything else is dropped.
var gcpHTTPRequestKeys = map[string]string{
	"method":    "requestMethod",
	"url":       "requestUrl",
	"remoteIp":  "remoteIp",
	"size":      "requestSize",
	"userAgent": "userAgent",
}

// formatGCP renders a raw record into the Google Cloud Logging schema.
// Transport-internal fields are stripped after extraction, the trace id is
// rewritten into projects/{project}/traces/{id} form, and the httpRequest
// sub-object is reduced to the keys Cloud Logging understands.
func formatGCP(rec Record, cfg *Config) Record {
	out := make(Record, len(rec)+4)
	for k, v := range rec {
		out[k] = v
	}

	out["severity"] = extractLevel(rec).GCPSeverity()
	delete(out, "level")
	delete(out, "levelName")
	delete(out, "pid")
	delete(out, "hostname")

	if traceID, ok := out["traceId"].(string); ok && traceID != "" && cfg.ProjectID != "" {
		out[gcpTraceKey] = fmt.Sprintf("projects/%s/traces/%s", cfg.ProjectID, traceID)
		if spanID, ok := out["spanId"].(string); ok && spanID != "" {
			out[gcpSpanKey] = spanID
		}
		if sampled, ok := out["sampled"].(bool); ok {
			out[gcpSampledKey] = sampled
		}
		delete(out, "traceId")
		delete(out, "spanId")
		delete(out, "sampled")
	}

	labels := map[string]string{}
	if cfg.ServiceName != "" {
		labels["service"] = cfg.ServiceName
	}
	if existing, ok := out[gcpLabelsKey].(map[string]string); ok {
		for k, v := range existing {
			labels[k] = v
		}
	}
	if len(labels) > 0 {
		out[gcpLabelsKey] = labels
	}

	if hr, ok := out["httpRequest"].(map[string]any); ok {
		filtered := make(map[string]any, len(gcpHTTPRequestKeys))
		for rawKey, gcpKey := range gcpHTTPRequestKeys {
			if v, present := hr[rawKey]; present {
				filtered[gcpKey] = v
			}
		}
		out["httpRequest"] = filtered
	}

	return out
}

// extractLevel recovers the numeric severity stashed in the raw record,
// defaulting to info when absent or mistyped.
func extractLevel(rec Record) Level {
	switch v := rec["level"].(type) {
	case int:
		return Level(v)
	case Level:
		return v
	case float64:
		return Level(int(v))
	}
	return LevelInfo
}
