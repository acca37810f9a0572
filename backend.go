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
	"io"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Backend is the minimal write contract the core consumes from the injected
// logging sink. Emit receives a fully rendered record; queueing, compression,
// and transport are the backend's concern, and the core treats the call as
// fire-and-forget.
type Backend interface {
	Emit(level Level, rec Record)
}

// newBackend selects the default backend implied by the configured output
// format.
func newBackend(cfg *Config) Backend {
	if cfg.Format == FormatPretty {
		return NewLogrusBackend(os.Stdout)
	}
	return NewJSONBackend(os.Stdout)
}

// JSONBackend writes one JSON object per record, newline-delimited, to an
// io.Writer. Writes are serialized by a mutex so concurrent requests never
// interleave bytes within a line.
type JSONBackend struct {
	mu sync.Mutex
	w  io.Writer
}

// NewJSONBackend returns a JSONBackend writing to w.
func NewJSONBackend(w io.Writer) *JSONBackend {
	return &JSONBackend{w: w}
}

// Emit serializes rec to a single JSON line. A record that cannot be
// serialized (a non-serializable value reached the formatter) is replaced
// with a typed error-marker record; emitting never fails outward.
func (b *JSONBackend) Emit(level Level, rec Record) {
	data, err := json.Marshal(rec)
	if err != nil {
		data, _ = json.Marshal(serializationFailureRecord(level, err))
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	_, _ = b.w.Write(append(data, '\n'))
}

// serializationFailureRecord builds the replacement record emitted when a
// log record cannot be marshaled.
func serializationFailureRecord(level Level, err error) Record {
	return Record{
		"severity":  level.Bucket(),
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"message":   "[UNSERIALIZABLE LOG RECORD]",
		"error":     err.Error(),
	}
}

// LogrusBackend renders records through a logrus text logger. It backs the
// pretty output format used during local development.
type LogrusBackend struct {
	logger *logrus.Logger
}

// NewLogrusBackend returns a LogrusBackend writing human-readable lines to w.
func NewLogrusBackend(w io.Writer) *LogrusBackend {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	// Filtering already happened in the Logger; pass everything through.
	l.SetLevel(logrus.TraceLevel)
	return &LogrusBackend{logger: l}
}

// NewLogrusBackendFrom wraps an existing logrus logger, letting applications
// that already run logrus reuse their configuration.
func NewLogrusBackendFrom(l *logrus.Logger) *LogrusBackend {
	return &LogrusBackend{logger: l}
}

// Emit logs the record at the logrus level matching the record severity. The
// message field becomes the logrus message; everything else becomes fields.
func (b *LogrusBackend) Emit(level Level, rec Record) {
	msg, _ := rec["message"].(string)
	fields := make(logrus.Fields, len(rec))
	for k, v := range rec {
		if k == "message" {
			continue
		}
		fields[k] = v
	}
	entry := b.logger.WithFields(fields)

	switch {
	case level >= LevelFatal:
		// logrus Fatal exits the process; an observing logger must not.
		entry.Error(msg)
	case level >= LevelError:
		entry.Error(msg)
	case level >= LevelWarn:
		entry.Warn(msg)
	case level >= LevelInfo:
		entry.Info(msg)
	case level >= LevelDebug:
		entry.Debug(msg)
	default:
		entry.Trace(msg)
	}
}
