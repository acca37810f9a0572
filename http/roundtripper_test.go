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

package http

import (
	"context"
	"strings"
	"testing"

	stdhttp "net/http"
	"net/http/httptest"

	amlog "github.com/ambak-fintech/ambak-express-logger"
)

func TestTransportPropagatesChildSpan(t *testing.T) {
	t.Parallel()
	logger, _ := newTestLogger(nil)
	cfg := logger.Config()

	var received stdhttp.Header
	srv := httptest.NewServer(stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		received = r.Header.Clone()
		w.WriteHeader(stdhttp.StatusOK)
	}))
	defer srv.Close()

	inbound := stdhttp.Header{}
	inbound.Set(amlog.HeaderTraceParent, "00-"+testTraceID+"-"+testSpanID+"-01")
	inbound.Set(amlog.HeaderRequestID, "req-outbound")
	rc := amlog.NewRequestContext(inbound, &cfg)
	ctx := amlog.ContextWithRequest(context.Background(), rc)

	client := &stdhttp.Client{Transport: &Transport{Logger: logger}}
	req, err := stdhttp.NewRequestWithContext(ctx, stdhttp.MethodGet, srv.URL, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	tp := received.Get(amlog.HeaderTraceParent)
	if tp == "" {
		t.Fatal("outbound request must carry a traceparent header")
	}
	parts := strings.Split(tp, "-")
	if len(parts) != 4 {
		t.Fatalf("malformed outbound traceparent %q", tp)
	}
	if parts[1] != testTraceID {
		t.Errorf("outbound trace id = %q, want the ambient id %q", parts[1], testTraceID)
	}
	if parts[2] == rc.Trace().SpanID() {
		t.Error("outbound span id must be a fresh child, not the server span")
	}
	if got := received.Get(amlog.HeaderRequestID); got != "req-outbound" {
		t.Errorf("outbound request id = %q, want the ambient id", got)
	}
	if received.Get(amlog.HeaderCloudTrace) == "" {
		t.Error("GCP mode should also set the cloud trace header")
	}
}

func TestTransportMintsContextOutsideRequestScope(t *testing.T) {
	t.Parallel()
	logger, _ := newTestLogger(nil)

	var received stdhttp.Header
	srv := httptest.NewServer(stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		received = r.Header.Clone()
		w.WriteHeader(stdhttp.StatusOK)
	}))
	defer srv.Close()

	client := &stdhttp.Client{Transport: &Transport{Logger: logger}}
	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if received.Get(amlog.HeaderTraceParent) == "" {
		t.Error("a fresh trace context must be minted outside any request scope")
	}
	if received.Get(amlog.HeaderRequestID) == "" {
		t.Error("a request id must be minted outside any request scope")
	}
}

func TestTransportAWSSchema(t *testing.T) {
	t.Parallel()
	logger, _ := newTestLogger(func(cfg *amlog.Config) {
		cfg.Schema = amlog.SchemaAWS
	})
	cfg := logger.Config()

	var received stdhttp.Header
	srv := httptest.NewServer(stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		received = r.Header.Clone()
		w.WriteHeader(stdhttp.StatusOK)
	}))
	defer srv.Close()

	root := "1-5759e988-bd862e3fe1be46a994272793"
	inbound := stdhttp.Header{}
	inbound.Set(amlog.HeaderAWSTrace, "Root="+root+";Sampled=1")
	rc := amlog.NewRequestContext(inbound, &cfg)
	ctx := amlog.ContextWithRequest(context.Background(), rc)

	client := &stdhttp.Client{Transport: &Transport{Logger: logger}}
	req, err := stdhttp.NewRequestWithContext(ctx, stdhttp.MethodGet, srv.URL, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	got := received.Get(amlog.HeaderAWSTrace)
	if !strings.Contains(got, "Root="+root) {
		t.Errorf("outbound aws header = %q, want Root=%s", got, root)
	}
	if received.Get(amlog.HeaderTraceParent) != "" {
		t.Error("AWS mode should not inject traceparent")
	}
}

func TestTransportDoesNotMutateOriginalRequest(t *testing.T) {
	t.Parallel()
	logger, _ := newTestLogger(nil)

	srv := httptest.NewServer(stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		w.WriteHeader(stdhttp.StatusOK)
	}))
	defer srv.Close()

	client := &stdhttp.Client{Transport: &Transport{Logger: logger}}
	req, err := stdhttp.NewRequest(stdhttp.MethodGet, srv.URL, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if req.Header.Get(amlog.HeaderTraceParent) != "" {
		t.Error("the caller's request must stay untouched; injection happens on a clone")
	}
}
