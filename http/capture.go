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
	"bufio"
	"bytes"
	"io"
	"net"
	stdhttp "net/http"
)

// responseRecorder decorates the real ResponseWriter to record the status
// code and byte count and, when body logging is enabled, to buffer a bounded
// copy of the body. Every write passes through to the wrapped writer
// unmodified, so the client never observes altered bytes or ordering. The
// wrapper is installed once per request and discarded afterwards; the
// underlying writer is never mutated.
type responseRecorder struct {
	stdhttp.ResponseWriter
	status       int
	wroteHeader  bool
	bytesWritten int64

	captureBody bool
	bodyLimit   int
	body        bytes.Buffer
}

// newResponseRecorder wraps w. When captureBody is true, up to bodyLimit
// bytes of the response body are buffered for logging.
func newResponseRecorder(w stdhttp.ResponseWriter, captureBody bool, bodyLimit int) *responseRecorder {
	return &responseRecorder{
		ResponseWriter: w,
		status:         stdhttp.StatusOK,
		captureBody:    captureBody,
		bodyLimit:      bodyLimit,
	}
}

// WriteHeader records the status code before delegating to the wrapped
// writer.
func (rr *responseRecorder) WriteHeader(status int) {
	if rr.wroteHeader {
		rr.ResponseWriter.WriteHeader(status)
		return
	}
	rr.status = status
	rr.wroteHeader = true
	rr.ResponseWriter.WriteHeader(status)
}

// Write buffers a bounded copy of the chunk when body capture is enabled and
// forwards the call to the underlying writer.
func (rr *responseRecorder) Write(p []byte) (int, error) {
	if !rr.wroteHeader {
		rr.WriteHeader(stdhttp.StatusOK)
	}
	if rr.captureBody && rr.body.Len() < rr.bodyLimit {
		remaining := rr.bodyLimit - rr.body.Len()
		if remaining > len(p) {
			remaining = len(p)
		}
		rr.body.Write(p[:remaining])
	}
	n, err := rr.ResponseWriter.Write(p)
	if n > 0 {
		rr.bytesWritten += int64(n)
	}
	return n, err
}

// ReadFrom streams data from src while tracking bytes for logging.
func (rr *responseRecorder) ReadFrom(src io.Reader) (int64, error) {
	if !rr.wroteHeader {
		rr.WriteHeader(stdhttp.StatusOK)
	}
	if rr.captureBody {
		// Route through Write so the body buffer stays bounded.
		return io.Copy(writerOnly{rr}, src)
	}
	if rf, ok := rr.ResponseWriter.(io.ReaderFrom); ok {
		n, err := rf.ReadFrom(src)
		if n > 0 {
			rr.bytesWritten += n
		}
		return n, err
	}
	n, err := io.Copy(rr.ResponseWriter, src)
	if n > 0 {
		rr.bytesWritten += n
	}
	return n, err
}

// writerOnly hides ReadFrom from io.Copy so it uses Write.
type writerOnly struct{ io.Writer }

// Status returns the HTTP status code written to the client, defaulting
// to 200.
func (rr *responseRecorder) Status() int {
	if rr.status == 0 {
		return stdhttp.StatusOK
	}
	return rr.status
}

// BytesWritten reports the cumulative number of bytes sent to the client.
func (rr *responseRecorder) BytesWritten() int64 { return rr.bytesWritten }

// Body returns the buffered body bytes, nil when capture is disabled.
func (rr *responseRecorder) Body() []byte {
	if !rr.captureBody {
		return nil
	}
	return rr.body.Bytes()
}

// Flush forwards the flush request to the underlying ResponseWriter when
// supported.
func (rr *responseRecorder) Flush() {
	if flusher, ok := rr.ResponseWriter.(stdhttp.Flusher); ok {
		flusher.Flush()
	}
}

// Hijack delegates to the wrapped Hijacker when supported, otherwise returns
// http.ErrNotSupported.
func (rr *responseRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := rr.ResponseWriter.(stdhttp.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, stdhttp.ErrNotSupported
}

// Push forwards HTTP/2 push requests when the underlying writer supports
// http.Pusher.
func (rr *responseRecorder) Push(target string, opts *stdhttp.PushOptions) error {
	if pusher, ok := rr.ResponseWriter.(stdhttp.Pusher); ok {
		return pusher.Push(target, opts)
	}
	return stdhttp.ErrNotSupported
}
