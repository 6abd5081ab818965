package core

import (
	"encoding/json"
	"fmt"
	"log"
	"mortify/models"
	"runtime"
	"strings"
	"sync"
	"time"
)

// ErrorLogger keeps the most recent degraded-path errors in memory so they
// can be inspected through the admin API without reading the log file.
type ErrorLogger struct {
	mu        sync.RWMutex
	logs      []*models.ErrorLog
	maxLogs   int
	idCounter int
}

// ErrorLoggerInstance is the process-wide error ring.
var ErrorLoggerInstance = NewErrorLogger(100)

// NewErrorLogger creates a ring holding at most maxLogs entries.
func NewErrorLogger(maxLogs int) *ErrorLogger {
	if maxLogs <= 0 {
		maxLogs = 100
	}
	return &ErrorLogger{
		logs:    make([]*models.ErrorLog, 0, maxLogs),
		maxLogs: maxLogs,
	}
}

// LogError records an entry and mirrors it to the process log.
func (e *ErrorLogger) LogError(level, source, message, detail string, contextData map[string]interface{}) {
	stack := stackTrace(3)

	contextJSON := ""
	if contextData != nil {
		if data, err := json.Marshal(contextData); err == nil {
			contextJSON = string(data)
		}
	}

	e.mu.Lock()
	if len(e.logs) >= e.maxLogs {
		e.logs = append(e.logs[:0], e.logs[1:]...)
	}
	e.idCounter++
	e.logs = append(e.logs, &models.ErrorLog{
		ID:        e.idCounter,
		Timestamp: time.Now(),
		Level:     level,
		Source:    source,
		Message:   message,
		Detail:    detail,
		Stack:     stack,
		Context:   contextJSON,
	})
	e.mu.Unlock()

	if detail != "" {
		log.Printf("[%s] %s: %s (%s)", level, source, message, detail)
	} else {
		log.Printf("[%s] %s: %s", level, source, message)
	}
}

// GetErrorLogs returns the recorded entries, latest first.
func (e *ErrorLogger) GetErrorLogs() []*models.ErrorLog {
	e.mu.RLock()
	defer e.mu.RUnlock()

	total := len(e.logs)
	result := make([]*models.ErrorLog, total)
	for i := 0; i < total; i++ {
		result[i] = e.logs[total-1-i]
	}
	return result
}

// GetErrorLogByID returns a single entry, or nil once it was evicted.
func (e *ErrorLogger) GetErrorLogByID(id int) *models.ErrorLog {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, entry := range e.logs {
		if entry.ID == id {
			return entry
		}
	}
	return nil
}

// ClearErrorLogs removes all entries and restarts the ID sequence.
func (e *ErrorLogger) ClearErrorLogs() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.logs = make([]*models.ErrorLog, 0, e.maxLogs)
	e.idCounter = 0
}

func stackTrace(skip int) string {
	pcs := make([]uintptr, 10)
	n := runtime.Callers(skip+1, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var b strings.Builder
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&b, "%s:%d %s\n", frame.File, frame.Line, frame.Function)
		if !more {
			break
		}
	}
	return b.String()
}

// LogErrorWithDetail records an error with details
func LogErrorWithDetail(source, message, detail string) {
	ErrorLoggerInstance.LogError("ERROR", source, message, detail, nil)
}

// LogErrorWithContext records an error with context
func LogErrorWithContext(source, message, detail string, context map[string]interface{}) {
	ErrorLoggerInstance.LogError("ERROR", source, message, detail, context)
}

// LogWarn records a warning
func LogWarn(source, message, detail string) {
	ErrorLoggerInstance.LogError("WARN", source, message, detail, nil)
}
