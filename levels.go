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
)

// Level represents the severity of a log event. The numeric values follow
// the conventional structured-logging scale (trace=10 .. fatal=60) so that
// records carry a sortable severity usable by both target schemas.
type Level int

// The six severity levels understood by the logger.
const (
	LevelTrace Level = 10
	LevelDebug Level = 20
	LevelInfo  Level = 30
	LevelWarn  Level = 40
	LevelError Level = 50
	LevelFatal Level = 60
)

// String returns the lower-case level name ("trace", "debug", ...).
// Unknown values render as their numeric form.
func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "trace"
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelFatal:
		return "fatal"
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// GCPSeverity maps the level onto a Google Cloud Logging severity name.
// Levels below trace map to DEFAULT.
func (l Level) GCPSeverity() string {
	switch {
	case l < LevelTrace:
		return "DEFAULT"
	case l < LevelInfo:
		return "DEBUG"
	case l < LevelWarn:
		return "INFO"
	case l < LevelError:
		return "WARNING"
	case l < LevelFatal:
		return "ERROR"
	}
	return "CRITICAL"
}

// Bucket maps the level onto the five-bucket severity name set shared by the
// AWS renderer. It coincides with GCPSeverity except that sub-trace levels
// collapse into DEBUG rather than DEFAULT.
func (l Level) Bucket() string {
	if l < LevelTrace {
		return "DEBUG"
	}
	return l.GCPSeverity()
}

// ParseLevel converts a level name (case-insensitive) into a Level.
// Unrecognized names return LevelInfo and false.
func ParseLevel(name string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace":
		return LevelTrace, true
	case "debug":
		return LevelDebug, true
	case "info":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	case "fatal":
		return LevelFatal, true
	}
	return LevelInfo, false
}

// LevelFromStatus selects the severity for a response log from the HTTP
// status code: 5xx maps to error, 4xx to warn, everything else to info.
func LevelFromStatus(status int) Level {
	switch {
	case status >= 500:
		return LevelError
	case status >= 400:
		return LevelWarn
	}
	return LevelInfo
}
