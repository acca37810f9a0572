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
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// Header names consumed from inbound requests and set on outbound responses.
const (
	HeaderRequestID   = "X-Request-Id"
	HeaderTraceParent = "Traceparent"
	HeaderTraceState  = "Tracestate"
	HeaderCloudTrace  = "X-Cloud-Trace-Context"
	HeaderAWSTrace    = "X-Amzn-Trace-Id"
)

const (
	traceVersionDefault = "00"
	flagsSampled        = "01"
	flagsNotSampled     = "00"
)

var (
	traceParentPattern = regexp.MustCompile(`^([0-9a-f]{2})-([0-9a-f]{32})-([0-9a-f]{16})-([0-9a-f]{2})$`)
	cloudTraceIDChars  = regexp.MustCompile(`^[0-9a-fA-F]{1,32}$`)
	awsRootPattern     = regexp.MustCompile(`^1-[0-9a-f]{8}-[0-9a-f]{24}$`)
	hex32Pattern       = regexp.MustCompile(`^[0-9a-f]{32}$`)
	hex16Pattern       = regexp.MustCompile(`^[0-9a-f]{16}$`)
	nonHexChars        = regexp.MustCompile(`[^0-9a-f]`)
)

// randRead is swappable in tests.
var randRead = rand.Read

// TraceStateMember is a single vendor key/value pair from a W3C tracestate
// header. Values are opaque.
type TraceStateMember struct {
	Key   string
	Value string
}

// TraceState is the ordered vendor list carried alongside a trace id.
// Order is preserved across child spans.
type TraceState []TraceStateMember

// Get returns the value for a vendor key.
func (ts TraceState) Get(key string) (string, bool) {
	for _, m := range ts {
		if m.Key == key {
			return m.Value, true
		}
	}
	return "", false
}

// String serializes the trace state back into header form. It is the inverse
// of ParseTraceState for well-formed members.
func (ts TraceState) String() string {
	if len(ts) == 0 {
		return ""
	}
	parts := make([]string, len(ts))
	for i, m := range ts {
		parts[i] = m.Key + "=" + m.Value
	}
	return strings.Join(parts, ",")
}

// TraceContext carries the correlation identifiers for one unit of work.
// It is an immutable value: trace id and span id never change once set, and
// the only way to obtain a new span id is CreateChildSpan. A TraceContext
// never holds a malformed id; parsers regenerate instead of accepting one.
//
// The trace id is either a 32-hex-char W3C/GCP id or the full AWS X-Ray
// composite form "1-{8 hex seconds}-{24 hex random}". Formats that do not
// understand the AWS form treat it as an opaque string.
type TraceContext struct {
	version string
	traceID string
	spanID  string
	flags   string
	state   TraceState
}

// Version returns the two-hex-digit W3C version tag.
func (t TraceContext) Version() string { return t.version }

// TraceID returns the trace identifier.
func (t TraceContext) TraceID() string { return t.traceID }

// SpanID returns the 16-hex-char span identifier.
func (t TraceContext) SpanID() string { return t.spanID }

// Flags returns the two-hex-digit trace flags bitfield.
func (t TraceContext) Flags() string { return t.flags }

// State returns the ordered tracestate members.
func (t TraceContext) State() TraceState { return t.state }

// Sampled reports whether bit 0 of the flags is set.
func (t TraceContext) Sampled() bool {
	if len(t.flags) != 2 {
		return false
	}
	b, err := hex.DecodeString(t.flags)
	if err != nil {
		return false
	}
	return b[0]&0x01 != 0
}

// IsZero reports whether the context carries no identifiers, as returned for
// code running outside any request scope.
func (t TraceContext) IsZero() bool { return t.traceID == "" }

// NewTraceContext generates a fresh sampled context with a random 128-bit
// trace id and a random 64-bit span id. When schema is SchemaAWS the trace id
// takes the X-Ray composite form instead. It never fails.
func NewTraceContext(schema SchemaType) TraceContext {
	traceID := randHex(16)
	if schema == SchemaAWS {
		traceID = newXRayTraceID()
	}
	return TraceContext{
		version: traceVersionDefault,
		traceID: traceID,
		spanID:  randHex(8),
		flags:   flagsSampled,
	}
}

// ParseTraceParent parses a W3C traceparent header. The four dash-separated
// fields are validated against fixed-width hex patterns; any structural or
// pattern failure falls back to a freshly generated context. On success the
// incoming span id is treated as the caller's parent and discarded: a new
// random span id is minted for this hop while version, trace id, and flags
// are retained.
func ParseTraceParent(header string) TraceContext {
	m := traceParentPattern.FindStringSubmatch(strings.TrimSpace(strings.ToLower(header)))
	if m == nil {
		return NewTraceContext(SchemaGCP)
	}
	traceID := m[2]
	if traceID == strings.Repeat("0", 32) {
		return NewTraceContext(SchemaGCP)
	}
	return TraceContext{
		version: m[1],
		traceID: traceID,
		spanID:  randHex(8),
		flags:   m[4],
	}
}

// ParseCloudTrace parses a Google X-Cloud-Trace-Context header of the form
// TRACE_ID/SPAN_ID;o=FLAG. The trace id is left-padded to 32 hex chars; the
// span id for this hop is freshly minted. o=0 means not sampled; any other
// value (or an absent option) means sampled. Malformed headers fall back to a
// freshly generated context.
func ParseCloudTrace(header string) TraceContext {
	idPart := strings.TrimSpace(header)
	options := ""
	if cut, opts, ok := strings.Cut(idPart, ";"); ok {
		idPart = strings.TrimSpace(cut)
		options = strings.TrimSpace(opts)
	}
	traceID := idPart
	if slash := strings.IndexByte(idPart, '/'); slash >= 0 {
		traceID = idPart[:slash]
	}
	if !cloudTraceIDChars.MatchString(traceID) {
		return NewTraceContext(SchemaGCP)
	}

	traceID = strings.ToLower(traceID)
	if len(traceID) < 32 {
		traceID = strings.Repeat("0", 32-len(traceID)) + traceID
	}

	flags := flagsSampled
	if v, ok := strings.CutPrefix(options, "o="); ok && strings.TrimSpace(v) == "0" {
		flags = flagsNotSampled
	}
	return TraceContext{
		version: traceVersionDefault,
		traceID: traceID,
		spanID:  randHex(8),
		flags:   flags,
	}
}

// ParseAWSTraceID parses an AWS X-Amzn-Trace-Id header of the form
// Root=1-{ts}-{id};Parent={spanId};Sampled={0|1}. Fields may appear in any
// order and quoted values are accepted. A missing or malformed Root falls
// back to a freshly generated AWS-shaped context. The trace id stores the
// full composite Root value. When Parent parses it is always honored (the
// value is sanitized to hex and sized to 16 chars); otherwise a span id is
// minted. Sampled=0 means not sampled; anything else means sampled.
func ParseAWSTraceID(header string) TraceContext {
	var root, parent string
	flags := flagsSampled

	for _, field := range strings.Split(header, ";") {
		field = strings.Trim(strings.TrimSpace(field), `"`)
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"`)
		switch strings.ToLower(key) {
		case "root":
			root = strings.ToLower(value)
		case "parent":
			parent = value
		case "sampled":
			if value == "0" {
				flags = flagsNotSampled
			}
		}
	}

	if !awsRootPattern.MatchString(root) {
		return NewTraceContext(SchemaAWS)
	}

	spanID := sanitizeSpanID(parent)
	if spanID == "" {
		spanID = randHex(8)
	}
	return TraceContext{
		version: traceVersionDefault,
		traceID: root,
		spanID:  spanID,
		flags:   flags,
	}
}

// ParseTraceState best-effort parses a W3C tracestate header into the ordered
// vendor mapping. Malformed entries are silently skipped; the function never
// fails.
func ParseTraceState(header string) TraceState {
	if strings.TrimSpace(header) == "" {
		return nil
	}
	var ts TraceState
	for _, entry := range strings.Split(header, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		key, value, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}
		ts = append(ts, TraceStateMember{Key: key, Value: value})
	}
	return ts
}

// WithState returns a copy carrying the given tracestate. Identifiers are
// unchanged.
func (t TraceContext) WithState(state TraceState) TraceContext {
	t.state = state
	return t
}

// CreateChildSpan returns a child context for an outbound hop: version,
// trace id, flags, and tracestate are retained and a new span id is minted.
func (t TraceContext) CreateChildSpan() TraceContext {
	t.spanID = randHex(8)
	return t
}

// TraceParent serializes the context into W3C traceparent form. For the
// valid subset this is the inverse of ParseTraceParent (modulo the re-minted
// span id). AWS-shaped trace ids are serialized verbatim as opaque strings.
func (t TraceContext) TraceParent() string {
	version := t.version
	if version == "" {
		version = traceVersionDefault
	}
	flags := t.flags
	if flags == "" {
		flags = flagsNotSampled
	}
	return fmt.Sprintf("%s-%s-%s-%s", version, t.traceID, t.spanID, flags)
}

// CloudTrace serializes the context into X-Cloud-Trace-Context form.
func (t TraceContext) CloudTrace() string {
	return fmt.Sprintf("%s/%s;o=%d", t.traceID, t.spanID, t.sampledBit())
}

// AWSTraceID serializes the context into X-Amzn-Trace-Id form, converting a
// W3C-shaped trace id into the X-Ray composite on the way.
func (t TraceContext) AWSTraceID() string {
	return fmt.Sprintf("Root=%s;Parent=%s;Sampled=%d", XRayTraceID(t.traceID), t.spanID, t.sampledBit())
}

// SpanContext converts the context into an OpenTelemetry remote SpanContext
// so OTel-instrumented code downstream observes the same correlation ids.
// AWS-shaped trace ids cannot be represented and report ok=false.
func (t TraceContext) SpanContext() (trace.SpanContext, bool) {
	if !hex32Pattern.MatchString(t.traceID) || !hex16Pattern.MatchString(t.spanID) {
		return trace.SpanContext{}, false
	}
	traceID, err := trace.TraceIDFromHex(t.traceID)
	if err != nil {
		return trace.SpanContext{}, false
	}
	spanID, err := trace.SpanIDFromHex(t.spanID)
	if err != nil {
		return trace.SpanContext{}, false
	}
	var flags trace.TraceFlags
	if t.Sampled() {
		flags = trace.FlagsSampled
	}
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: flags,
		Remote:     true,
	})
	return sc, sc.IsValid()
}

func (t TraceContext) sampledBit() int {
	if t.Sampled() {
		return 1
	}
	return 0
}

// XRayTraceID converts an arbitrary trace id into the AWS X-Ray composite
// shape "1-{8 hex ts}-{24 hex id}". Ids already in that shape pass through;
// 32-hex ids split into timestamp and random halves; anything else is
// replaced by a freshly synthesized id.
func XRayTraceID(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	if awsRootPattern.MatchString(id) {
		return id
	}
	if hex32Pattern.MatchString(id) {
		return "1-" + id[:8] + "-" + id[8:]
	}
	return newXRayTraceID()
}

// newXRayTraceID synthesizes an X-Ray id from the current unix time and
// 96 random bits.
func newXRayTraceID() string {
	return fmt.Sprintf("1-%08x-%s", time.Now().Unix(), randHex(12))
}

// sanitizeSpanID coerces a parent span value into a 16-hex-char id,
// stripping non-hex characters and padding or truncating as needed.
// An empty result means the value was unusable.
func sanitizeSpanID(raw string) string {
	cleaned := nonHexChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(raw)), "")
	if cleaned == "" {
		return ""
	}
	if len(cleaned) > 16 {
		return cleaned[:16]
	}
	if len(cleaned) < 16 {
		return strings.Repeat("0", 16-len(cleaned)) + cleaned
	}
	return cleaned
}

// randHex returns n random bytes as a 2n-char lower-case hex string. Failures
// of the system random source degrade to a time-derived value rather than an
// error; id generation must never fail.
func randHex(n int) string {
	buf := make([]byte, n)
	if _, err := randRead(buf); err != nil {
		now := time.Now().UnixNano()
		for i := range buf {
			buf[i] = byte(now >> (uint(i%8) * 8))
		}
	}
	return hex.EncodeToString(buf)
}
