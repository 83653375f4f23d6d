package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"time"
)

// LogRecorder is a callback that stores entries in an external
// datastore.
type LogRecorder func(le *LogEntry) error

// Logger captures interpreter audit events.
type Logger struct {
	mu     sync.Mutex
	record LogRecorder
	now    func() time.Time
}

// New creates a Logger over the given recorder.
func New(recorder LogRecorder) *Logger {
	return &Logger{record: recorder, now: time.Now}
}

// NewJsonLinesLogRecorder creates a Logger that exports entries in
// newline delimited JSON object format.
func NewJsonLinesLogRecorder(w io.Writer) *Logger {
	return New(func(le *LogEntry) error {
		entry, err := json.Marshal(le)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(entry))
		return err
	})
}

func (l *Logger) recordEvent(sessionID string, event Event) error {
	le := &LogEntry{
		TimestampMicros: l.now().UnixNano() / int64(time.Microsecond),
		SessionID:       sessionID,
	}
	event.attach(le)

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.record(le)
}

// NewSession creates a logger with a fresh session ID attached.
func (l *Logger) NewSession() *SessionLogger {
	return l.Session(fmt.Sprintf("%d", rand.Uint64()))
}

// Session creates a logger bound to an externally supplied session ID.
func (l *Logger) Session(id string) *SessionLogger {
	return &SessionLogger{logger: l, sessionID: id}
}

// Sessionless creates a logger for events outside any session.
func (l *Logger) Sessionless() *SessionLogger {
	return l.Session("")
}

// SessionLogger stamps every event with a shared session ID. A nil
// SessionLogger discards events, so callers never need to guard.
type SessionLogger struct {
	logger    *Logger
	sessionID string
}

// SessionID returns the ID every event is stamped with.
func (l *SessionLogger) SessionID() string {
	if l == nil {
		return ""
	}
	return l.sessionID
}

// Record writes one event to the log.
func (l *SessionLogger) Record(event Event) error {
	if l == nil || l.logger == nil {
		return nil
	}
	return l.logger.recordEvent(l.sessionID, event)
}
