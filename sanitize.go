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
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// Redaction markers substituted for sensitive values. Markers never match the
// detection patterns or the sensitive-field names themselves, which keeps
// sanitization idempotent.
const (
	RedactedMarker      = "[REDACTED]"
	redactedCreditCard  = "[CREDIT CARD REDACTED]"
	redactedSSN         = "[SSN REDACTED]"
	redactedEmail       = "[EMAIL REDACTED]"
	redactedBase64      = "[BASE64 REDACTED]"
	redactedImage       = "[IMAGE REDACTED]"
	maxDepthMarker      = "[MAX DEPTH EXCEEDED]"
	oversizedStringFmt  = "[STRING TOO LARGE: ~%dKB]"
	base64MinCandidates = 256
	memoMaxEntries      = 1024
)

var (
	imageDataURIPattern = regexp.MustCompile(`^data:(?:image|application)/[a-zA-Z0-9.+-]+;base64,`)
	base64Pattern       = regexp.MustCompile(`^[A-Za-z0-9+/\s]{64,}={0,2}$`)
	creditCardPattern   = regexp.MustCompile(`\b(?:\d[ -]?){12,18}\d\b`)
	ssnPattern          = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)
	emailPattern        = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
)

// Sanitizer performs pure, synchronous redaction over arbitrary nested data.
// It is safe for concurrent use: its only mutable state is a bounded memo of
// string results, whose entries are idempotent pure functions of their key,
// so a size-capped, last-writer-wins insert policy suffices.
type Sanitizer struct {
	registry *SensitiveFieldRegistry

	maxStringBytes int
	maxDepth       int
	maxArrayLength int

	memoMu sync.RWMutex
	memo   map[string]string
}

// NewSanitizer builds a Sanitizer over the given registry using the bounds
// from cfg.
func NewSanitizer(registry *SensitiveFieldRegistry, cfg *Config) *Sanitizer {
	return &Sanitizer{
		registry:       registry,
		maxStringBytes: cfg.MaxStringBytes,
		maxDepth:       cfg.MaxDepth,
		maxArrayLength: cfg.MaxArrayLength,
		memo:           make(map[string]string),
	}
}

// Value sanitizes a single value keyed by its field name.
//
// A sensitive key redacts the value outright regardless of shape. Non-string
// values pass through unchanged. Strings within the size threshold are tested
// against the detection patterns in order (image data URI, generic base64,
// credit card, SSN, email); the first match wins. Strings above the threshold
// skip pattern matching entirely and collapse into a sized placeholder so
// pathological inputs cannot burn CPU in the regexp engine.
func (s *Sanitizer) Value(key string, value any) any {
	if key != "" && s.registry.IsSensitiveField(key) {
		return RedactedMarker
	}

	str, ok := value.(string)
	if !ok || str == "" {
		return value
	}

	if len(str) > s.maxStringBytes {
		return s.memoized(str, func() string {
			return fmt.Sprintf(oversizedStringFmt, (len(str)+1023)/1024)
		})
	}

	if imageDataURIPattern.MatchString(str) {
		return redactedImage
	}
	if len(str) >= base64MinCandidates || keyHintsPayload(key) {
		if base64Pattern.MatchString(str) {
			return s.memoized(str, func() string { return redactedBase64 })
		}
	}
	if creditCardPattern.MatchString(str) {
		return redactedCreditCard
	}
	if ssnPattern.MatchString(str) {
		return redactedSSN
	}
	if emailPattern.MatchString(str) {
		return redactedEmail
	}
	return str
}

// Body recursively sanitizes an arbitrary body value. Strings that look like
// JSON documents are parsed and redacted field-by-field; other strings pass
// through unchanged at the top level. Depth, array length, and string size
// are bounded per configuration.
func (s *Sanitizer) Body(value any) any {
	return s.body(value, 0)
}

func (s *Sanitizer) body(value any, depth int) any {
	if depth >= s.maxDepth {
		return maxDepthMarker
	}

	switch v := value.(type) {
	case string:
		if parsed, ok := parseJSONDocument(v); ok {
			return s.body(parsed, depth)
		}
		return v

	case map[string]any:
		out := make(map[string]any, len(v))
		for key, val := range v {
			child := val
			if isContainer(val) {
				child = s.body(val, depth+1)
			}
			out[key] = s.Value(key, child)
		}
		return out

	case map[string]string:
		out := make(map[string]any, len(v))
		for key, val := range v {
			out[key] = s.Value(key, val)
		}
		return out

	case []any:
		if len(v) > s.maxArrayLength {
			v = v[:s.maxArrayLength]
		}
		out := make([]any, len(v))
		for i, elem := range v {
			if isContainer(elem) {
				out[i] = s.body(elem, depth+1)
				continue
			}
			out[i] = s.Value("", elem)
		}
		return out
	}

	return value
}

// Headers sanitizes a header map in a single pass. Header names are matched
// case-insensitively against the header list; values are opaque strings and
// are never pattern-scanned or recursed into.
func (s *Sanitizer) Headers(headers map[string]string) map[string]string {
	if headers == nil {
		return nil
	}
	out := make(map[string]string, len(headers))
	for name, value := range headers {
		if s.registry.IsSensitiveHeader(name) {
			out[name] = RedactedMarker
			continue
		}
		out[name] = value
	}
	return out
}

// memoized returns the cached result for str or computes and caches it.
// The cache stops accepting entries at its cap; existing keys still update.
func (s *Sanitizer) memoized(str string, compute func() string) string {
	s.memoMu.RLock()
	cached, ok := s.memo[str]
	s.memoMu.RUnlock()
	if ok {
		return cached
	}

	result := compute()

	s.memoMu.Lock()
	if _, exists := s.memo[str]; exists || len(s.memo) < memoMaxEntries {
		s.memo[str] = result
	}
	s.memoMu.Unlock()
	return result
}

// parseJSONDocument decodes strings that syntactically look like JSON objects
// or arrays. Anything else, including scalars and malformed documents, is
// reported as not-a-document so it stays opaque.
func parseJSONDocument(s string) (any, bool) {
	trimmed := strings.TrimSpace(s)
	if len(trimmed) < 2 {
		return nil, false
	}
	if trimmed[0] != '{' && trimmed[0] != '[' {
		return nil, false
	}
	var parsed any
	if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil {
		return nil, false
	}
	return parsed, true
}

// isContainer reports whether the value is a nested structure the body walk
// should descend into.
func isContainer(v any) bool {
	switch v.(type) {
	case map[string]any, map[string]string, []any:
		return true
	}
	return false
}

// keyHintsPayload reports whether the field name suggests an embedded binary
// payload, which widens base64 detection to shorter strings.
func keyHintsPayload(key string) bool {
	lk := strings.ToLower(key)
	return strings.Contains(lk, "image") ||
		strings.Contains(lk, "attachment") ||
		strings.Contains(lk, "content")
}
