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

import "strings"

// defaultSensitiveFields is the built-in set of body field names whose values
// are always redacted. Caller-supplied names are merged on top.
var defaultSensitiveFields = []string{
	"password",
	"passwd",
	"secret",
	"token",
	"api_key",
	"apikey",
	"access_token",
	"refresh_token",
	"id_token",
	"authorization",
	"auth",
	"credit_card",
	"creditcard",
	"card_number",
	"cvv",
	"cvc",
	"pin",
	"otp",
	"ssn",
	"social_security",
	"private_key",
	"client_secret",
	"session_id",
	"cookie",
	"set-cookie",
}

// defaultSensitiveHeaders is the built-in list of header names whose values
// are redacted. Unlike the field set, a caller-supplied list replaces it.
var defaultSensitiveHeaders = []string{
	"authorization",
	"proxy-authorization",
	"cookie",
	"set-cookie",
	"x-api-key",
	"x-auth-token",
	"x-csrf-token",
	"x-session-id",
}

// SensitiveFieldRegistry holds the resolved redaction sets: lower-cased body
// field names and lower-cased header names. It is built once at configuration
// time and read-only afterwards, so concurrent membership tests need no
// locking.
type SensitiveFieldRegistry struct {
	fields  map[string]struct{}
	headers map[string]struct{}
}

// NewSensitiveFieldRegistry merges extraFields with the built-in field
// defaults and, when headerOverride is non-nil, replaces the built-in header
// list with it.
func NewSensitiveFieldRegistry(extraFields, headerOverride []string) *SensitiveFieldRegistry {
	r := &SensitiveFieldRegistry{
		fields:  make(map[string]struct{}, len(defaultSensitiveFields)+len(extraFields)),
		headers: make(map[string]struct{}, len(defaultSensitiveHeaders)),
	}
	for _, f := range defaultSensitiveFields {
		r.fields[strings.ToLower(f)] = struct{}{}
	}
	for _, f := range extraFields {
		if f = strings.TrimSpace(f); f != "" {
			r.fields[strings.ToLower(f)] = struct{}{}
		}
	}

	headers := defaultSensitiveHeaders
	if headerOverride != nil {
		headers = headerOverride
	}
	for _, h := range headers {
		if h = strings.TrimSpace(h); h != "" {
			r.headers[strings.ToLower(h)] = struct{}{}
		}
	}
	return r
}

// IsSensitiveField reports whether the body field name is redacted.
// Matching is case-insensitive.
func (r *SensitiveFieldRegistry) IsSensitiveField(name string) bool {
	_, ok := r.fields[strings.ToLower(name)]
	return ok
}

// IsSensitiveHeader reports whether the header name is redacted.
// Matching is case-insensitive.
func (r *SensitiveFieldRegistry) IsSensitiveHeader(name string) bool {
	_, ok := r.headers[strings.ToLower(name)]
	return ok
}
