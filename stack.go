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
	"errors"
	"runtime"
	"strconv"
	"strings"
	"sync"
)

const maxStackFrames = 64

var stackPCPool = sync.Pool{
	New: func() any {
		buf := make([]uintptr, maxStackFrames)
		return &buf
	},
}

// stackTracer is implemented by errors that carry their own program counters.
type stackTracer interface {
	StackTrace() []uintptr
}

// errorStack returns the stack trace for err: the error's own trace when it
// (or an error it wraps) implements stackTracer, otherwise the current
// goroutine's stack with logging-internal frames trimmed.
func errorStack(err error) string {
	var st stackTracer
	if errors.As(err, &st) {
		if pcs := st.StackTrace(); len(pcs) > 0 {
			if len(pcs) > maxStackFrames {
				pcs = pcs[:maxStackFrames]
			}
			return formatStackPCs(pcs)
		}
	}
	return captureStack()
}

// captureStack formats the current goroutine stack, skipping runtime and
// logging-internal frames so the first frame points at caller code.
func captureStack() string {
	bufPtr := stackPCPool.Get().(*[]uintptr)
	pcs := (*bufPtr)[:cap(*bufPtr)]

	n := runtime.Callers(2, pcs)
	if n == 0 {
		stackPCPool.Put(bufPtr)
		return ""
	}
	trimmed := trimInternalFrames(pcs[:n])
	if len(trimmed) == 0 {
		trimmed = pcs[:n]
	}
	stack := formatStackPCs(trimmed)
	stackPCPool.Put(bufPtr)
	return stack
}

// trimInternalFrames drops leading frames that belong to this module or the
// runtime while preserving the remainder.
func trimInternalFrames(pcs []uintptr) []uintptr {
	frames := runtime.CallersFrames(pcs)
	skip := 0
	for {
		frame, more := frames.Next()
		if !isInternalFrame(frame.Function) {
			break
		}
		skip++
		if !more {
			return nil
		}
	}
	return pcs[skip:]
}

func isInternalFrame(funcName string) bool {
	if funcName == "" {
		return false
	}
	return strings.HasPrefix(funcName, "runtime.") ||
		strings.HasPrefix(funcName, "github.com/ambak-fintech/ambak-express-logger.") ||
		strings.HasPrefix(funcName, "github.com/ambak-fintech/ambak-express-logger/")
}

// formatStackPCs renders program counters into the standard Go stack trace
// shape (function line, then tab-indented file:line).
func formatStackPCs(pcs []uintptr) string {
	if len(pcs) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.Grow(len(pcs) * 64)

	var intBuf [20]byte
	frames := runtime.CallersFrames(pcs)
	count := 0
	for {
		frame, more := frames.Next()
		if frame.PC == 0 {
			break
		}
		if frame.Function == "" || frame.Function == "runtime.goexit" {
			if !more {
				break
			}
			continue
		}

		sb.WriteString(frame.Function)
		sb.WriteByte('\n')
		sb.WriteByte('\t')
		sb.WriteString(frame.File)
		sb.WriteByte(':')
		sb.Write(strconv.AppendInt(intBuf[:0], int64(frame.Line), 10))
		sb.WriteByte('\n')

		count++
		if !more || count >= maxStackFrames {
			break
		}
	}
	return sb.String()
}
