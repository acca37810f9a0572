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
	"regexp"
	"strings"
	"testing"
)

const (
	sampleTraceID = "0af7651916cd43dd8448eb211c80319c"
	sampleSpanID  = "b7ad6b7169203331"
)

var traceParentRE = regexp.MustCompile(`^00-[0-9a-f]{32}-[0-9a-f]{16}-[0-9a-f]{2}$`)

func TestNewTraceContext(t *testing.T) {
	t.Parallel()

	tc := NewTraceContext(SchemaGCP)
	if len(tc.TraceID()) != 32 {
		t.Errorf("trace id length = %d, want 32", len(tc.TraceID()))
	}
	if len(tc.SpanID()) != 16 {
		t.Errorf("span id length = %d, want 16", len(tc.SpanID()))
	}
	if !tc.Sampled() {
		t.Error("new context should be sampled")
	}
	if tc.IsZero() {
		t.Error("new context should not be zero")
	}
}

func TestNewTraceContextAWS(t *testing.T) {
	t.Parallel()

	tc := NewTraceContext(SchemaAWS)
	if !regexp.MustCompile(`^1-[0-9a-f]{8}-[0-9a-f]{24}$`).MatchString(tc.TraceID()) {
		t.Errorf("AWS trace id %q not in X-Ray composite form", tc.TraceID())
	}
}

func TestParseTraceParent(t *testing.T) {
	t.Parallel()

	header := "00-" + sampleTraceID + "-" + sampleSpanID + "-01"
	tc := ParseTraceParent(header)

	if tc.TraceID() != sampleTraceID {
		t.Errorf("trace id = %q, want %q", tc.TraceID(), sampleTraceID)
	}
	if tc.SpanID() == sampleSpanID {
		t.Error("span id should be re-minted, not inherited from the caller")
	}
	if len(tc.SpanID()) != 16 {
		t.Errorf("span id length = %d, want 16", len(tc.SpanID()))
	}
	if !tc.Sampled() {
		t.Error("flags 01 should report sampled")
	}
}

func TestParseTraceParentMalformed(t *testing.T) {
	t.Parallel()

	malformed := []string{
		"",
		"not-a-traceparent",
		"00-xyz-" + sampleSpanID + "-01",
		"00-" + sampleTraceID + "-" + sampleSpanID, // missing flags
		"00-" + strings.Repeat("0", 32) + "-" + sampleSpanID + "-01",
	}
	for _, header := range malformed {
		tc := ParseTraceParent(header)
		if tc.IsZero() {
			t.Errorf("ParseTraceParent(%q) returned zero context, want generated fallback", header)
		}
		if tc.TraceID() == strings.Repeat("0", 32) {
			t.Errorf("ParseTraceParent(%q) accepted the all-zero trace id", header)
		}
	}
}

func TestParseCloudTrace(t *testing.T) {
	t.Parallel()

	tc := ParseCloudTrace(sampleTraceID + "/12345;o=1")
	if tc.TraceID() != sampleTraceID {
		t.Errorf("trace id = %q, want %q", tc.TraceID(), sampleTraceID)
	}
	if !tc.Sampled() {
		t.Error("o=1 should report sampled")
	}

	if tc := ParseCloudTrace(sampleTraceID + "/12345;o=0"); tc.Sampled() {
		t.Error("o=0 should report not sampled")
	}
}

func TestParseCloudTraceOnlyExactZeroOptsOut(t *testing.T) {
	t.Parallel()

	// Only the exact value 0 opts out; o=01 and o=02 stay sampled.
	for _, options := range []string{"o=01", "o=02", "o=10", "o="} {
		if tc := ParseCloudTrace(sampleTraceID + "/12345;" + options); !tc.Sampled() {
			t.Errorf("ParseCloudTrace with %q should report sampled", options)
		}
	}
	if tc := ParseCloudTrace(sampleTraceID + "/12345"); !tc.Sampled() {
		t.Error("an absent option should report sampled")
	}
}

func TestParseCloudTracePadsShortIDs(t *testing.T) {
	t.Parallel()

	tc := ParseCloudTrace("abc123/1;o=1")
	if len(tc.TraceID()) != 32 {
		t.Fatalf("trace id length = %d, want 32", len(tc.TraceID()))
	}
	if !strings.HasSuffix(tc.TraceID(), "abc123") {
		t.Errorf("trace id %q should end with the original id", tc.TraceID())
	}
	if !strings.HasPrefix(tc.TraceID(), "0") {
		t.Errorf("trace id %q should be left-padded with zeros", tc.TraceID())
	}
}

func TestParseCloudTraceMalformed(t *testing.T) {
	t.Parallel()

	for _, header := range []string{"", "zzzz/1;o=1", strings.Repeat("a", 40) + "/1"} {
		tc := ParseCloudTrace(header)
		if tc.IsZero() || len(tc.TraceID()) != 32 {
			t.Errorf("ParseCloudTrace(%q) should fall back to a generated context", header)
		}
	}
}

func TestParseAWSTraceID(t *testing.T) {
	t.Parallel()

	root := "1-5759e988-bd862e3fe1be46a994272793"
	tc := ParseAWSTraceID("Root=" + root + ";Parent=53995c3f42cd8ad8;Sampled=1")

	if tc.TraceID() != root {
		t.Errorf("trace id = %q, want composite root %q", tc.TraceID(), root)
	}
	if tc.SpanID() != "53995c3f42cd8ad8" {
		t.Errorf("span id = %q, want honored Parent", tc.SpanID())
	}
	if !tc.Sampled() {
		t.Error("Sampled=1 should report sampled")
	}
}

func TestParseAWSTraceIDFieldOrderAndQuotes(t *testing.T) {
	t.Parallel()

	root := "1-5759e988-bd862e3fe1be46a994272793"
	tc := ParseAWSTraceID(`Sampled=0;Parent="53995c3f42cd8ad8";Root=` + root)
	if tc.TraceID() != root {
		t.Errorf("trace id = %q, want %q", tc.TraceID(), root)
	}
	if tc.SpanID() != "53995c3f42cd8ad8" {
		t.Errorf("span id = %q, want quoted Parent honored", tc.SpanID())
	}
	if tc.Sampled() {
		t.Error("Sampled=0 should report not sampled")
	}
}

func TestParseAWSTraceIDMalformedRoot(t *testing.T) {
	t.Parallel()

	for _, header := range []string{"", "Root=bogus", "Parent=53995c3f42cd8ad8"} {
		tc := ParseAWSTraceID(header)
		if tc.IsZero() {
			t.Errorf("ParseAWSTraceID(%q) returned zero context", header)
		}
		if !awsRootPattern.MatchString(tc.TraceID()) {
			t.Errorf("fallback trace id %q not AWS-shaped", tc.TraceID())
		}
	}
}

func TestParseAWSTraceIDSanitizesParent(t *testing.T) {
	t.Parallel()

	root := "1-5759e988-bd862e3fe1be46a994272793"
	tc := ParseAWSTraceID("Root=" + root + ";Parent=ABC-123")
	if len(tc.SpanID()) != 16 {
		t.Errorf("span id %q should be sized to 16 chars", tc.SpanID())
	}
	if strings.Contains(tc.SpanID(), "-") {
		t.Errorf("span id %q should contain only hex", tc.SpanID())
	}
}

func TestParseTraceState(t *testing.T) {
	t.Parallel()

	ts := ParseTraceState("vendor1=value1, vendor2=value2, malformed, =empty")
	if len(ts) != 2 {
		t.Fatalf("got %d members, want 2", len(ts))
	}
	if v, ok := ts.Get("vendor1"); !ok || v != "value1" {
		t.Errorf("Get(vendor1) = (%q, %v), want (value1, true)", v, ok)
	}
	if got := ts.String(); got != "vendor1=value1,vendor2=value2" {
		t.Errorf("String() = %q", got)
	}

	if ts := ParseTraceState(""); ts != nil {
		t.Errorf("empty header should parse to nil, got %v", ts)
	}
}

func TestCreateChildSpan(t *testing.T) {
	t.Parallel()

	parent := ParseTraceParent("00-" + sampleTraceID + "-" + sampleSpanID + "-01").
		WithState(TraceState{{Key: "vendor", Value: "v"}})
	child := parent.CreateChildSpan()

	if child.TraceID() != parent.TraceID() {
		t.Error("child must keep the parent trace id")
	}
	if child.SpanID() == parent.SpanID() {
		t.Error("child must mint a new span id")
	}
	if child.Flags() != parent.Flags() {
		t.Error("child must keep the parent flags")
	}
	if _, ok := child.State().Get("vendor"); !ok {
		t.Error("child must keep the tracestate")
	}
}

func TestTraceParentRoundTrip(t *testing.T) {
	t.Parallel()

	tc := ParseTraceParent("00-" + sampleTraceID + "-" + sampleSpanID + "-01")
	serialized := tc.TraceParent()
	if !traceParentRE.MatchString(serialized) {
		t.Fatalf("TraceParent() = %q, not a valid header", serialized)
	}
	reparsed := ParseTraceParent(serialized)
	if reparsed.TraceID() != tc.TraceID() {
		t.Errorf("round trip changed trace id: %q -> %q", tc.TraceID(), reparsed.TraceID())
	}
}

func TestCloudTraceSerialization(t *testing.T) {
	t.Parallel()

	tc := ParseCloudTrace(sampleTraceID + "/1;o=0")
	got := tc.CloudTrace()
	want := sampleTraceID + "/" + tc.SpanID() + ";o=0"
	if got != want {
		t.Errorf("CloudTrace() = %q, want %q", got, want)
	}
}

func TestAWSTraceIDSerialization(t *testing.T) {
	t.Parallel()

	tc := ParseTraceParent("00-" + sampleTraceID + "-" + sampleSpanID + "-01")
	got := tc.AWSTraceID()
	want := "Root=1-" + sampleTraceID[:8] + "-" + sampleTraceID[8:] + ";Parent=" + tc.SpanID() + ";Sampled=1"
	if got != want {
		t.Errorf("AWSTraceID() = %q, want %q", got, want)
	}
}

func TestXRayTraceID(t *testing.T) {
	t.Parallel()

	if got := XRayTraceID(sampleTraceID); got != "1-"+sampleTraceID[:8]+"-"+sampleTraceID[8:] {
		t.Errorf("XRayTraceID(32-hex) = %q", got)
	}
	composite := "1-5759e988-bd862e3fe1be46a994272793"
	if got := XRayTraceID(composite); got != composite {
		t.Errorf("XRayTraceID(composite) = %q, want pass-through", got)
	}
	if got := XRayTraceID("garbage"); !awsRootPattern.MatchString(got) {
		t.Errorf("XRayTraceID(garbage) = %q, want synthesized composite", got)
	}
}

func TestSpanContextBridge(t *testing.T) {
	t.Parallel()

	tc := ParseTraceParent("00-" + sampleTraceID + "-" + sampleSpanID + "-01")
	sc, ok := tc.SpanContext()
	if !ok {
		t.Fatal("expected a valid otel span context")
	}
	if sc.TraceID().String() != sampleTraceID {
		t.Errorf("otel trace id = %q, want %q", sc.TraceID().String(), sampleTraceID)
	}
	if !sc.IsRemote() {
		t.Error("bridged span context must be remote")
	}
	if !sc.IsSampled() {
		t.Error("bridged span context must carry the sampled flag")
	}

	aws := ParseAWSTraceID("Root=1-5759e988-bd862e3fe1be46a994272793")
	if _, ok := aws.SpanContext(); ok {
		t.Error("AWS composite trace id cannot bridge to an otel span context")
	}
}

func TestRandHexFallback(t *testing.T) {
	failingRead := func(b []byte) (int, error) {
		return 0, errTestRand
	}
	orig := randRead
	randRead = failingRead
	defer func() { randRead = orig }()

	got := randHex(8)
	if len(got) != 16 {
		t.Errorf("randHex(8) under failing source = %q, want 16 hex chars", got)
	}
}

type testRandError struct{}

func (testRandError) Error() string { return "rand unavailable" }

var errTestRand = testRandError{}
