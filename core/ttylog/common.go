package ttylog

import (
	"io"
	"log"
	"sync"
	"time"
)

// LogSink receives log events. Sinks must not retain an entry's Data
// beyond the call; recorders reuse their buffers.
type LogSink func(t *Entry) error

// LogSource adapts log readers.
type LogSource interface {
	// Next fetches the next available log entry. It returns io.EOF if the
	// source has no more log entries.
	Next() (*Entry, error)
}

// NewRealTimePlayback plays back the results in real-time.
// If maxSleep > 0, it's used as the maximum duration to pause.
func NewRealTimePlayback(maxSleep time.Duration, next LogSink) LogSink {
	var once sync.Once
	var prevTimeMicros int64

	return func(logEntry *Entry) error {
		once.Do(func() {
			prevTimeMicros = logEntry.TimestampMicros
		})

		delta := logEntry.TimestampMicros - prevTimeMicros
		prevTimeMicros = logEntry.TimestampMicros

		if maxSleep > 0 {
			sleepDuration := time.Duration(delta) * time.Microsecond
			if sleepDuration > maxSleep {
				sleepDuration = maxSleep
			}
			time.Sleep(sleepDuration)
		}

		return next(logEntry)
	}
}

// NewClientOutput writes stdout and stderr to the given writer.
func NewClientOutput(w io.Writer) LogSink {
	return func(logEntry *Entry) error {
		if logEntry.IO != nil && logEntry.IO.Fd != FDStdin {
			if _, err := w.Write(logEntry.IO.Data); err != nil {
				return err
			}
		}
		return nil
	}
}

// Replay reads a stream of events to a callback.
func Replay(recording LogSource, callback LogSink) (err error) {
	for {
		logEntry, err := recording.Next()
		switch {
		case err == io.EOF:
			return nil
		case err != nil:
			return err
		}

		if err := callback(logEntry); err != nil {
			return err
		}
	}
}

// Recorder wraps a session's streams and forwards everything moving
// over them to a LogSink.
type Recorder struct {
	mutex sync.Mutex
	sink  LogSink

	stdin  io.ReadCloser
	stdout io.Writer
	stderr io.Writer
}

// NewRecorder wraps the given streams so all traffic is forwarded to
// sink.
func NewRecorder(stdin io.ReadCloser, stdout, stderr io.Writer, sink LogSink) *Recorder {
	recorder := &Recorder{sink: sink}
	recorder.stdin = &recorderReadCloser{fd: FDStdin, r: recorder, wrapped: stdin}
	recorder.stdout = &recorderWriter{fd: FDStdout, r: recorder, wrapped: stdout}
	recorder.stderr = &recorderWriter{fd: FDStderr, r: recorder, wrapped: stderr}
	return recorder
}

// Stdin is the recorded read side of the session.
func (r *Recorder) Stdin() io.ReadCloser { return r.stdin }

// Stdout is the recorded write side of the session.
func (r *Recorder) Stdout() io.Writer { return r.stdout }

// Stderr is the recorded error side of the session.
func (r *Recorder) Stderr() io.Writer { return r.stderr }

// Close marks the end of the recording. The underlying streams stay
// open; they belong to the session.
func (r *Recorder) Close() error {
	r.logEvent(NewCloseEntry(time.Now().UnixMicro()))
	return nil
}

func (r *Recorder) logEvent(entry *Entry) {
	r.mutex.Lock()
	err := r.sink(entry)
	r.mutex.Unlock()
	if err != nil {
		log.Print(err)
	}
}

type recorderReadCloser struct {
	r       *Recorder
	fd      FD
	wrapped io.ReadCloser
}

var _ io.ReadCloser = (*recorderReadCloser)(nil)

func (rc *recorderReadCloser) Read(p []byte) (int, error) {
	amount, err := rc.wrapped.Read(p)
	if amount > 0 {
		rc.r.logEvent(NewIOEntry(time.Now().UnixMicro(), rc.fd, p[:amount]))
	}
	return amount, err
}

func (rc *recorderReadCloser) Close() error {
	return rc.wrapped.Close()
}

type recorderWriter struct {
	r       *Recorder
	fd      FD
	wrapped io.Writer
}

var _ io.Writer = (*recorderWriter)(nil)

func (rc *recorderWriter) Write(p []byte) (int, error) {
	amount, err := rc.wrapped.Write(p)
	if err == nil {
		rc.r.logEvent(NewIOEntry(time.Now().UnixMicro(), rc.fd, p))
	}
	return amount, err
}
